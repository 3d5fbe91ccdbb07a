package enums

// Capability is the resolved authorization level of a caller against a cart.
type Capability string

const (
	CapabilityOwner        Capability = "owner"
	CapabilityCollaborator Capability = "collaborator"
	CapabilityNone         Capability = "none"
)

// String implements fmt.Stringer.
func (c Capability) String() string {
	return string(c)
}

// CanMutateItems reports whether the capability allows item and discount mutation.
func (c Capability) CanMutateItems() bool {
	return c == CapabilityOwner || c == CapabilityCollaborator
}

// CanManage reports whether the capability allows collaborator management,
// deletion, and checkout.
func (c Capability) CanManage() bool {
	return c == CapabilityOwner
}
