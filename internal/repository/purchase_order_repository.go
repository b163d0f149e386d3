package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/invoice-service/internal/domain"
)

// PurchaseOrderFilter narrows purchase order listings. A nil PartyID means unrestricted.
type PurchaseOrderFilter struct {
	PartyID  *string
	Statuses []domain.PurchaseOrderStatus
	Limit    int
	Offset   int
}

// PurchaseOrderRepository encapsulates purchase order persistence.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *domain.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*domain.PurchaseOrder, error)
	GetByPONumber(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error)
	List(ctx context.Context, filter PurchaseOrderFilter) ([]domain.PurchaseOrder, error)
}

type purchaseOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPurchaseOrderRepository instantiates repository.
func NewPurchaseOrderRepository(pool *pgxpool.Pool) PurchaseOrderRepository {
	return &purchaseOrderRepository{pool: pool}
}

const purchaseOrderSelect = `
        SELECT p.id, p.po_number, p.products, p.status, p.created_at,
               c.id, c.name, c.email, c.role,
               v.id, v.name, v.email, v.role
        FROM purchase_orders p
        JOIN users c ON c.id = p.created_by
        JOIN users v ON v.id = p.vendor_id`

func (r *purchaseOrderRepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	const query = `
        INSERT INTO purchase_orders (po_number, created_by, vendor_id, products, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		po.PONumber,
		po.CreatedBy.ID,
		po.Vendor.ID,
		po.Products,
		po.Status,
	).Scan(&po.ID, &po.CreatedAt)
	return mapPgError(err)
}

func (r *purchaseOrderRepository) GetByID(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	return r.fetchSingle(ctx, purchaseOrderSelect+` WHERE p.id=$1`, id)
}

func (r *purchaseOrderRepository) GetByPONumber(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error) {
	return r.fetchSingle(ctx, purchaseOrderSelect+` WHERE p.po_number=$1`, poNumber)
}

func (r *purchaseOrderRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.PurchaseOrder, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	orders, err := scanPurchaseOrders(rows)
	if err != nil {
		return nil, mapPgError(err)
	}
	if len(orders) == 0 {
		return nil, ErrNotFound
	}
	return &orders[0], nil
}

func (r *purchaseOrderRepository) List(ctx context.Context, filter PurchaseOrderFilter) ([]domain.PurchaseOrder, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.PartyID != nil {
		args = append(args, *filter.PartyID)
		clauses = append(clauses, fmt.Sprintf("(p.created_by=$%d OR p.vendor_id=$%d)", len(args), len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("p.status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY p.created_at DESC, p.id%s`,
		purchaseOrderSelect, strings.Join(clauses, " AND "), pageClause(filter.Limit, filter.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	result, err := scanPurchaseOrders(rows)
	if err != nil {
		return nil, mapPgError(err)
	}
	return result, nil
}

func scanPurchaseOrders(rows pgx.Rows) ([]domain.PurchaseOrder, error) {
	result := []domain.PurchaseOrder{}
	for rows.Next() {
		var po domain.PurchaseOrder
		if err := rows.Scan(
			&po.ID,
			&po.PONumber,
			&po.Products,
			&po.Status,
			&po.CreatedAt,
			&po.CreatedBy.ID,
			&po.CreatedBy.Name,
			&po.CreatedBy.Email,
			&po.CreatedBy.Role,
			&po.Vendor.ID,
			&po.Vendor.Name,
			&po.Vendor.Email,
			&po.Vendor.Role,
		); err != nil {
			return nil, err
		}
		result = append(result, po)
	}
	return result, rows.Err()
}
