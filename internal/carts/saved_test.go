package carts

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/cartshare/cartshare-backend/pkg/enums"
	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
)

func TestSaveAndListSnapshots(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	cartID := mustCreate(t, env, "user_a")
	if _, err := env.service.AddItem(ctx, cartID, "user_a", "prod_001", 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	saved, err := env.service.Save(ctx, cartID, "user_a", "birthday list")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if len(saved.Items) != 1 || saved.Items[0].Quantity != 2 {
		t.Fatalf("unexpected snapshot %+v", saved.Items)
	}

	// The snapshot is a value copy: later cart changes do not touch it.
	if _, err := env.service.SetItemQuantity(ctx, cartID, "user_a", "prod_001", 5); err != nil {
		t.Fatalf("set quantity failed: %v", err)
	}
	list, err := env.service.ListSaved(ctx, "user_a")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].Items[0].Quantity != 2 {
		t.Fatalf("snapshot must be immutable, got %+v", list)
	}

	// Snapshots survive source cart deletion.
	if err := env.service.Delete(ctx, cartID, "user_a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	list, _ = env.service.ListSaved(ctx, "user_a")
	if len(list) != 1 {
		t.Fatal("snapshot must outlive the source cart")
	}

	// Strangers cannot save someone else's cart.
	otherID := mustCreate(t, env, "user_b")
	if _, err := env.service.Save(ctx, otherID, "user_z", "sneaky"); err == nil {
		t.Fatal("expected forbidden")
	}
}

func TestRestoreMergeAndReplace(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	cartID := mustCreate(t, env, "user_a")
	if _, err := env.service.AddItem(ctx, cartID, "user_a", "prod_001", 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	saved, err := env.service.Save(ctx, cartID, "user_a", "starter")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Merge stacks saved quantities onto matching lines.
	cart, issues, err := env.service.Restore(ctx, cartID, "user_a", saved.ID, enums.RestoreModeMerge)
	if err != nil {
		t.Fatalf("merge restore failed: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues %+v", issues)
	}
	if cart.Items["prod_001"].Quantity != 2 {
		t.Fatalf("expected merged quantity 2, got %d", cart.Items["prod_001"].Quantity)
	}

	// Replace discards current lines and restores the snapshot.
	if _, err := env.service.AddItem(ctx, cartID, "user_a", "prod_002", 3); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	cart, _, err = env.service.Restore(ctx, cartID, "user_a", saved.ID, enums.RestoreModeReplace)
	if err != nil {
		t.Fatalf("replace restore failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items["prod_001"].Quantity != 1 {
		t.Fatalf("expected snapshot state only, got %+v", cart.Items)
	}
	// Replaced lines hand their reservations back.
	available, _ := env.stock.GetAvailable(ctx, "prod_002")
	if available != 10 {
		t.Fatalf("expected prod_002 reservations released, available %d", available)
	}
}

func TestRestoreSkipsDiscontinuedProducts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	cartID := mustCreate(t, env, "user_a")
	if _, err := env.service.AddItem(ctx, cartID, "user_a", "prod_001", 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := env.service.AddItem(ctx, cartID, "user_a", "prod_002", 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	saved, err := env.service.Save(ctx, cartID, "user_a", "mixed")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	env.products.Discontinue("prod_002")

	cart, issues, err := env.service.Restore(ctx, cartID, "user_a", saved.ID, enums.RestoreModeReplace)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if len(issues) != 1 || issues[0].ProductID != "prod_002" {
		t.Fatalf("expected one issue for prod_002, got %+v", issues)
	}
	if _, ok := cart.Items["prod_002"]; ok {
		t.Fatal("discontinued product must not be restored")
	}
	if _, ok := cart.Items["prod_001"]; !ok {
		t.Fatal("valid lines must still be restored")
	}
}

func TestRestoreIsScopedToSnapshotOwner(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	cartID := mustCreate(t, env, "user_a")
	if _, err := env.service.AddItem(ctx, cartID, "user_a", "prod_001", 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	saved, err := env.service.Save(ctx, cartID, "user_a", "private")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	otherID := mustCreate(t, env, "user_b")
	_, _, err = env.service.Restore(ctx, otherID, "user_b", saved.ID, enums.RestoreModeMerge)
	expectCode(t, err, pkgerrors.CodeNotFound)

	_, _, err = env.service.Restore(ctx, cartID, "user_a", uuid.New(), enums.RestoreModeMerge)
	expectCode(t, err, pkgerrors.CodeNotFound)
}
