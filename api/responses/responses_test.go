package responses

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
	"github.com/cartshare/cartshare-backend/pkg/types"
)

func TestWriteSuccessEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"id": "cart_1"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok || data["id"] != "cart_1" {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestWriteErrorStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code       pkgerrors.Code
		wantStatus int
	}{
		{pkgerrors.CodeValidation, http.StatusBadRequest},
		{pkgerrors.CodeForbidden, http.StatusForbidden},
		{pkgerrors.CodeNotFound, http.StatusNotFound},
		{pkgerrors.CodeLocked, http.StatusLocked},
		{pkgerrors.CodeExpired, http.StatusLocked},
		{pkgerrors.CodeStock, http.StatusBadRequest},
		{pkgerrors.CodeDiscount, http.StatusBadRequest},
		{pkgerrors.CodeDependency, http.StatusServiceUnavailable},
		{pkgerrors.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(context.Background(), nil, rec, pkgerrors.New(tc.code, "boom"))
		if rec.Code != tc.wantStatus {
			t.Fatalf("code %s: expected status %d, got %d", tc.code, tc.wantStatus, rec.Code)
		}
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeInternal, "db credentials rejected"))

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if envelope.Error.Message == "db credentials rejected" {
		t.Fatal("internal error details must not leak to clients")
	}
}

func TestWriteErrorCarriesDetailsWhenAllowed(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeStock, "insufficient stock").
		WithDetails(map[string]any{"productId": "prod_003", "available": 1})
	WriteError(context.Background(), nil, rec, err)

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	details, ok := envelope.Error.Details.(map[string]any)
	if !ok || details["productId"] != "prod_003" {
		t.Fatalf("expected stock details, got %+v", envelope.Error.Details)
	}
}
