package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/invoice-service/internal/domain"
	"github.com/spec-kit/invoice-service/internal/repository/memory"
)

func validPurchaseOrderInput(number, vendor string) PurchaseOrderCreateInput {
	return PurchaseOrderCreateInput{
		PONumber: number,
		VendorID: vendor,
		Products: []ProductInput{{Description: "Bolts", Quantity: f64(100)}},
	}
}

func TestPurchaseOrderService(t *testing.T) {
	store := memory.NewStore()
	svc := NewPurchaseOrderService(PurchaseOrderDependencies{
		PurchaseOrderRepo: store.PurchaseOrders(),
		UserRepo:          store.Users(),
	})
	ctx := context.Background()
	alice := seedUser(t, store, "alice@example.com", domain.UserRoleParticipant)
	bob := seedUser(t, store, "bob@example.com", domain.UserRoleParticipant)
	carol := seedUser(t, store, "carol@example.com", domain.UserRoleParticipant)
	admin := seedUser(t, store, "admin@example.com", domain.UserRoleAdmin)

	po, err := svc.Create(ctx, alice, validPurchaseOrderInput("PO-1", bob.ID))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, po.CreatedBy.ID)
	assert.Equal(t, "bob@example.com", po.Vendor.Email)
	assert.Equal(t, domain.PurchaseOrderStatusPending, po.Status)

	t.Run("duplicate po number", func(t *testing.T) {
		_, err := svc.Create(ctx, carol, validPurchaseOrderInput("PO-1", alice.ID))
		assertCode(t, err, "DUPLICATE_KEY")
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Create(ctx, alice, PurchaseOrderCreateInput{VendorID: bob.ID})
		assertCode(t, err, "VALIDATION_FAILED")

		_, err = svc.Create(ctx, alice, PurchaseOrderCreateInput{
			PONumber: "PO-2",
			VendorID: bob.ID,
			Products: []ProductInput{{Description: "Nuts"}},
		})
		assertCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("unknown vendor", func(t *testing.T) {
		_, err := svc.Create(ctx, alice, validPurchaseOrderInput("PO-3", "7f1d1a52-0000-4000-8000-000000000000"))
		assertCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("visibility", func(t *testing.T) {
		other, err := svc.Create(ctx, carol, validPurchaseOrderInput("PO-4", carol.ID))
		require.NoError(t, err)

		list, err := svc.List(ctx, bob, PurchaseOrderListFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, po.ID, list[0].ID)
		assert.Equal(t, "alice@example.com", list[0].CreatedBy.Email)

		all, err := svc.List(ctx, admin, PurchaseOrderListFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		_, err = svc.Get(ctx, bob, other.ID)
		assertCode(t, err, "FORBIDDEN")

		got, err := svc.Get(ctx, admin, other.ID)
		require.NoError(t, err)
		assert.Equal(t, "PO-4", got.PONumber)

		_, err = svc.Get(ctx, bob, "nope")
		assertCode(t, err, "NOT_FOUND")
	})
}
