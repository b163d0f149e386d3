// Package policy decides which caller may create, list, view or render an
// invoice or purchase order. Admins see everything; everyone else sees only
// records they are a party to.
package policy

import (
	"github.com/spec-kit/invoice-service/internal/domain"
	apperrors "github.com/spec-kit/invoice-service/pkg/util/errorutil"
)

// Operation names an action gated by the policy.
type Operation string

const (
	OpCreate Operation = "create"
	OpList   Operation = "list"
	OpView   Operation = "view"
	OpRender Operation = "render"
)

// Record is anything with a fixed set of party user ids.
type Record interface {
	Parties() []string
}

// IsParty reports whether userID is one of the record's parties.
func IsParty(userID string, record Record) bool {
	if userID == "" || record == nil {
		return false
	}
	for _, id := range record.Parties() {
		if id == userID {
			return true
		}
	}
	return false
}

// Authorize returns nil when caller may perform op on record. Create and list
// only need an authenticated caller; the list rows are narrowed separately by
// VisibilityFilter. View and render require admin or party membership.
func Authorize(caller domain.Identity, op Operation, record Record) error {
	if caller.ID == "" {
		return apperrors.NewUnauthorized("authentication required")
	}
	switch op {
	case OpCreate, OpList:
		return nil
	case OpView, OpRender:
		if caller.IsAdmin() || IsParty(caller.ID, record) {
			return nil
		}
		return apperrors.NewForbidden("access denied")
	default:
		return apperrors.NewForbidden("unsupported operation")
	}
}

// CanAccessInvoice reports whether caller may view or render inv.
func CanAccessInvoice(caller domain.Identity, inv *domain.Invoice) bool {
	if inv == nil {
		return false
	}
	return Authorize(caller, OpView, inv) == nil
}

// CanAccessPurchaseOrder reports whether caller may view po.
func CanAccessPurchaseOrder(caller domain.Identity, po *domain.PurchaseOrder) bool {
	if po == nil {
		return false
	}
	return Authorize(caller, OpView, po) == nil
}

// VisibilityFilter returns the party id list queries must be restricted to,
// or nil when the caller may see every record.
func VisibilityFilter(caller domain.Identity) *string {
	if caller.IsAdmin() {
		return nil
	}
	id := caller.ID
	return &id
}
