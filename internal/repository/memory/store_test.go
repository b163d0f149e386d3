package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/invoice-service/internal/domain"
	"github.com/spec-kit/invoice-service/internal/repository"
)

func seedUser(t *testing.T, s *Store, email string, role domain.UserRole) *domain.User {
	t.Helper()
	u := &domain.User{Name: email, Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestStore_Users(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "a@example.com", domain.UserRoleParticipant)

	got, err := s.Users().GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	err = s.Users().Create(ctx, &domain.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	_, err = s.Users().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_InvoiceUniquenessAndPopulation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	from := seedUser(t, s, "from@example.com", domain.UserRoleParticipant)
	to := seedUser(t, s, "to@example.com", domain.UserRoleParticipant)

	first := &domain.Invoice{
		InvoiceNumber: "INV-1",
		FromUser:      domain.Party{ID: from.ID},
		ToUser:        domain.Party{ID: to.ID},
		Client:        "Acme",
		Items:         []domain.InvoiceItem{{Description: "Widget", Quantity: 2, Price: 9.5}},
		Total:         20,
		Status:        domain.InvoiceStatusUnpaid,
	}
	require.NoError(t, s.Invoices().Create(ctx, first))
	assert.NotEmpty(t, first.ID)

	dup := *first
	dup.Client = "Other"
	assert.ErrorIs(t, s.Invoices().Create(ctx, &dup), repository.ErrDuplicateKey)

	got, err := s.Invoices().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Client, "first record must be unaffected")
	assert.Equal(t, "from@example.com", got.FromUser.Email)
	assert.Equal(t, "to@example.com", got.ToUser.Email)

	got.Items[0].Description = "mutated"
	again, err := s.Invoices().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", again.Items[0].Description, "reads return copies")
}

func TestStore_ListFilters(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seedUser(t, s, "a@example.com", domain.UserRoleParticipant)
	b := seedUser(t, s, "b@example.com", domain.UserRoleParticipant)
	c := seedUser(t, s, "c@example.com", domain.UserRoleParticipant)

	mk := func(num string, from, to *domain.User, status domain.InvoiceStatus) {
		require.NoError(t, s.Invoices().Create(ctx, &domain.Invoice{
			InvoiceNumber: num,
			FromUser:      domain.Party{ID: from.ID},
			ToUser:        domain.Party{ID: to.ID},
			Status:        status,
		}))
	}
	mk("INV-1", a, b, domain.InvoiceStatusUnpaid)
	mk("INV-2", b, c, domain.InvoiceStatusPaid)
	mk("INV-3", c, a, domain.InvoiceStatusUnpaid)

	all, err := s.Invoices().List(ctx, repository.InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "INV-3", all[0].InvoiceNumber, "newest first")

	forA, err := s.Invoices().List(ctx, repository.InvoiceFilter{PartyID: &a.ID})
	require.NoError(t, err)
	assert.Len(t, forA, 2)
	for _, inv := range forA {
		assert.Contains(t, inv.Parties(), a.ID)
	}

	paid, err := s.Invoices().List(ctx, repository.InvoiceFilter{Statuses: []domain.InvoiceStatus{domain.InvoiceStatusPaid}})
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "INV-2", paid[0].InvoiceNumber)

	paged, err := s.Invoices().List(ctx, repository.InvoiceFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "INV-2", paged[0].InvoiceNumber)

	beyond, err := s.Invoices().List(ctx, repository.InvoiceFilter{Limit: 5, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestStore_PurchaseOrders(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	buyer := seedUser(t, s, "buyer@example.com", domain.UserRoleParticipant)
	vendor := seedUser(t, s, "vendor@example.com", domain.UserRoleParticipant)
	other := seedUser(t, s, "other@example.com", domain.UserRoleParticipant)

	po := &domain.PurchaseOrder{
		PONumber:  "PO-1",
		CreatedBy: domain.Party{ID: buyer.ID},
		Vendor:    domain.Party{ID: vendor.ID},
		Products:  []domain.PurchaseOrderProduct{{Description: "Gloves", Quantity: 100}},
		Status:    domain.PurchaseOrderStatusPending,
	}
	require.NoError(t, s.PurchaseOrders().Create(ctx, po))
	assert.ErrorIs(t, s.PurchaseOrders().Create(ctx, &domain.PurchaseOrder{PONumber: "PO-1"}), repository.ErrDuplicateKey)

	byNumber, err := s.PurchaseOrders().GetByPONumber(ctx, "PO-1")
	require.NoError(t, err)
	assert.Equal(t, po.ID, byNumber.ID)
	assert.Equal(t, "vendor@example.com", byNumber.Vendor.Email)
	assert.Equal(t, "buyer@example.com", byNumber.CreatedBy.Email)

	forVendor, err := s.PurchaseOrders().List(ctx, repository.PurchaseOrderFilter{PartyID: &vendor.ID})
	require.NoError(t, err)
	assert.Len(t, forVendor, 1)

	forOther, err := s.PurchaseOrders().List(ctx, repository.PurchaseOrderFilter{PartyID: &other.ID})
	require.NoError(t, err)
	assert.Empty(t, forOther)
}

func TestStore_PasswordResets(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "reset@example.com", domain.UserRoleParticipant)

	tok := &repository.PasswordResetToken{UserID: u.ID, Token: "abc", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.PasswordResets().Create(ctx, tok))
	assert.NotEmpty(t, tok.ID)
	assert.ErrorIs(t, s.PasswordResets().Create(ctx, &repository.PasswordResetToken{Token: "abc"}), repository.ErrDuplicateKey)

	got, err := s.PasswordResets().GetByToken(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, got.Usable(time.Now()))

	require.NoError(t, s.PasswordResets().MarkUsed(ctx, tok.ID))
	assert.ErrorIs(t, s.PasswordResets().MarkUsed(ctx, tok.ID), repository.ErrNotFound)

	got, err = s.PasswordResets().GetByToken(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, got.Usable(time.Now()))

	require.NoError(t, s.Users().UpdatePassword(ctx, u.ID, "new-hash"))
	updated, err := s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", updated.PasswordHash)
	assert.ErrorIs(t, s.Users().UpdatePassword(ctx, "missing", "x"), repository.ErrNotFound)
}
