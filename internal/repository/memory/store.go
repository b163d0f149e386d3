// Package memory is an in-process Record Store. It backs the service when no
// Postgres DSN is configured and keeps the same unique-key and population
// semantics as the pgx repositories.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/invoice-service/internal/domain"
	"github.com/spec-kit/invoice-service/internal/repository"
)

// Store holds users, invoices, purchase orders and reset tokens behind one lock.
type Store struct {
	mu       sync.RWMutex
	seq      int64
	users    map[string]*domain.User
	invoices map[string]*invoiceRow
	orders   map[string]*orderRow
	resets   map[string]*repository.PasswordResetToken
}

type invoiceRow struct {
	seq int64
	inv domain.Invoice
}

type orderRow struct {
	seq int64
	po  domain.PurchaseOrder
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		invoices: make(map[string]*invoiceRow),
		orders:   make(map[string]*orderRow),
		resets:   make(map[string]*repository.PasswordResetToken),
	}
}

// Users exposes the store as a UserRepository.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Invoices exposes the store as an InvoiceRepository.
func (s *Store) Invoices() repository.InvoiceRepository { return invoiceRepo{s} }

// PurchaseOrders exposes the store as a PurchaseOrderRepository.
func (s *Store) PurchaseOrders() repository.PurchaseOrderRepository { return orderRepo{s} }

// PasswordResets exposes the store as a PasswordResetRepository.
func (s *Store) PasswordResets() repository.PasswordResetRepository { return resetRepo{s} }

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// party resolves a user reference; callers hold the lock.
func (s *Store) party(id string) domain.Party {
	if u, ok := s.users[id]; ok {
		return domain.PartyOf(u)
	}
	return domain.Party{ID: id}
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

type resetRepo struct{ s *Store }

func (r resetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.resets {
		if existing.Token == token.Token {
			return repository.ErrDuplicateKey
		}
	}
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now().UTC()
	stored := *token
	r.s.resets[token.ID] = &stored
	return nil
}

func (r resetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.resets {
		if t.Token == tokenStr {
			out := *t
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r resetRepo) MarkUsed(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.resets[id]
	if !ok || t.UsedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	t.UsedAt = &now
	return nil
}

type invoiceRepo struct{ s *Store }

func (r invoiceRepo) Create(_ context.Context, invoice *domain.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.invoices {
		if row.inv.InvoiceNumber == invoice.InvoiceNumber {
			return repository.ErrDuplicateKey
		}
	}
	invoice.ID = uuid.NewString()
	invoice.CreatedAt = time.Now().UTC()
	r.s.invoices[invoice.ID] = &invoiceRow{seq: r.s.nextSeq(), inv: cloneInvoice(*invoice)}
	return nil
}

func (r invoiceRepo) GetByID(_ context.Context, id string) (*domain.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.invoices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	inv := r.populate(row.inv)
	return &inv, nil
}

func (r invoiceRepo) List(_ context.Context, filter repository.InvoiceFilter) ([]domain.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*invoiceRow, 0, len(r.s.invoices))
	for _, row := range r.s.invoices {
		if filter.PartyID != nil && row.inv.FromUser.ID != *filter.PartyID && row.inv.ToUser.ID != *filter.PartyID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsInvoiceStatus(filter.Statuses, row.inv.Status) {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	result := []domain.Invoice{}
	for _, row := range page(rows, filter.Limit, filter.Offset) {
		result = append(result, r.populate(row.inv))
	}
	return result, nil
}

func (r invoiceRepo) populate(inv domain.Invoice) domain.Invoice {
	out := cloneInvoice(inv)
	out.FromUser = r.s.party(inv.FromUser.ID)
	out.ToUser = r.s.party(inv.ToUser.ID)
	return out
}

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, po *domain.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.orders {
		if row.po.PONumber == po.PONumber {
			return repository.ErrDuplicateKey
		}
	}
	po.ID = uuid.NewString()
	po.CreatedAt = time.Now().UTC()
	r.s.orders[po.ID] = &orderRow{seq: r.s.nextSeq(), po: cloneOrder(*po)}
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id string) (*domain.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	po := r.populate(row.po)
	return &po, nil
}

func (r orderRepo) GetByPONumber(_ context.Context, poNumber string) (*domain.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.orders {
		if row.po.PONumber == poNumber {
			po := r.populate(row.po)
			return &po, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r orderRepo) List(_ context.Context, filter repository.PurchaseOrderFilter) ([]domain.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]*orderRow, 0, len(r.s.orders))
	for _, row := range r.s.orders {
		if filter.PartyID != nil && row.po.CreatedBy.ID != *filter.PartyID && row.po.Vendor.ID != *filter.PartyID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsOrderStatus(filter.Statuses, row.po.Status) {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	result := []domain.PurchaseOrder{}
	for _, row := range page(rows, filter.Limit, filter.Offset) {
		result = append(result, r.populate(row.po))
	}
	return result, nil
}

func (r orderRepo) populate(po domain.PurchaseOrder) domain.PurchaseOrder {
	out := cloneOrder(po)
	out.CreatedBy = r.s.party(po.CreatedBy.ID)
	out.Vendor = r.s.party(po.Vendor.ID)
	return out
}

func page[T any](rows []T, limit, offset int) []T {
	n := len(rows)
	if offset < 0 {
		offset = 0
	}
	if offset >= n {
		return nil
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return rows[offset:end]
}

func cloneInvoice(inv domain.Invoice) domain.Invoice {
	inv.Items = append([]domain.InvoiceItem(nil), inv.Items...)
	if inv.PONumber != nil {
		po := *inv.PONumber
		inv.PONumber = &po
	}
	if inv.DueDate != nil {
		due := *inv.DueDate
		inv.DueDate = &due
	}
	return inv
}

func cloneOrder(po domain.PurchaseOrder) domain.PurchaseOrder {
	po.Products = append([]domain.PurchaseOrderProduct(nil), po.Products...)
	return po
}

func containsInvoiceStatus(list []domain.InvoiceStatus, s domain.InvoiceStatus) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsOrderStatus(list []domain.PurchaseOrderStatus, s domain.PurchaseOrderStatus) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}
