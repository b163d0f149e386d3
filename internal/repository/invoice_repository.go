package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/invoice-service/internal/domain"
)

// InvoiceFilter narrows invoice listings. A nil PartyID means unrestricted.
type InvoiceFilter struct {
	PartyID  *string
	Statuses []domain.InvoiceStatus
	Limit    int
	Offset   int
}

// InvoiceRepository encapsulates invoice persistence. Reads populate both parties.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]domain.Invoice, error)
}

type invoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository instantiates repository.
func NewInvoiceRepository(pool *pgxpool.Pool) InvoiceRepository {
	return &invoiceRepository{pool: pool}
}

const invoiceSelect = `
        SELECT i.id, i.invoice_number, i.client, i.po_number, i.items,
               i.shipping, i.tax, i.gst, i.total, i.due_date, i.status, i.created_at,
               f.id, f.name, f.email, f.role,
               t.id, t.name, t.email, t.role
        FROM invoices i
        JOIN users f ON f.id = i.from_user_id
        JOIN users t ON t.id = i.to_user_id`

func (r *invoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	const query = `
        INSERT INTO invoices (invoice_number, from_user_id, to_user_id, client, po_number, items,
                              shipping, tax, gst, total, due_date, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		invoice.InvoiceNumber,
		invoice.FromUser.ID,
		invoice.ToUser.ID,
		invoice.Client,
		invoice.PONumber,
		invoice.Items,
		invoice.Shipping,
		invoice.Tax,
		invoice.GST,
		invoice.Total,
		invoice.DueDate,
		invoice.Status,
	).Scan(&invoice.ID, &invoice.CreatedAt)
	return mapPgError(err)
}

func (r *invoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	rows, err := r.pool.Query(ctx, invoiceSelect+` WHERE i.id=$1`, id)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	invoices, err := scanInvoices(rows)
	if err != nil {
		return nil, mapPgError(err)
	}
	if len(invoices) == 0 {
		return nil, ErrNotFound
	}
	return &invoices[0], nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter) ([]domain.Invoice, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.PartyID != nil {
		args = append(args, *filter.PartyID)
		clauses = append(clauses, fmt.Sprintf("(i.from_user_id=$%d OR i.to_user_id=$%d)", len(args), len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("i.status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY i.created_at DESC, i.id%s`,
		invoiceSelect, strings.Join(clauses, " AND "), pageClause(filter.Limit, filter.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	result, err := scanInvoices(rows)
	if err != nil {
		return nil, mapPgError(err)
	}
	return result, nil
}

func scanInvoices(rows pgx.Rows) ([]domain.Invoice, error) {
	result := []domain.Invoice{}
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(
			&inv.ID,
			&inv.InvoiceNumber,
			&inv.Client,
			&inv.PONumber,
			&inv.Items,
			&inv.Shipping,
			&inv.Tax,
			&inv.GST,
			&inv.Total,
			&inv.DueDate,
			&inv.Status,
			&inv.CreatedAt,
			&inv.FromUser.ID,
			&inv.FromUser.Name,
			&inv.FromUser.Email,
			&inv.FromUser.Role,
			&inv.ToUser.ID,
			&inv.ToUser.Name,
			&inv.ToUser.Email,
			&inv.ToUser.Role,
		); err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}

// pageClause renders LIMIT/OFFSET. A non-positive limit returns every row.
func pageClause(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}
