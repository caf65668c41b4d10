package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foundry-erp/foundry-erp/internal/money"
	"github.com/foundry-erp/foundry-erp/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for invoices.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ErrNotFound indicates resource not found.
var ErrNotFound = errors.New("invoices: not found")

// ErrDuplicateNumber indicates the invoice number is already taken.
var ErrDuplicateNumber = errors.New("invoices: number already exists")

const invoiceColumns = `id, number, party_id, issued_on, due_on, total_paise, description, created_at`

// Create inserts a new invoice. The number is generated when the input leaves
// it empty.
func (r *Repository) Create(ctx context.Context, input CreateInvoiceInput) (Invoice, error) {
	number := input.Number
	if number == "" {
		var err error
		number, err = r.GenerateNumber(ctx, input.IssuedOn)
		if err != nil {
			return Invoice{}, err
		}
	}

	query := `
		INSERT INTO invoices (number, party_id, issued_on, due_on, total_paise, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at`

	inv := Invoice{
		Number:      number,
		PartyID:     input.PartyID,
		IssuedOn:    input.IssuedOn,
		DueOn:       input.DueOn,
		Total:       input.Total,
		Description: input.Description,
	}
	err := r.pool.QueryRow(ctx, query,
		number,
		input.PartyID,
		input.IssuedOn,
		input.DueOn,
		input.Total.Paise(),
		input.Description,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Invoice{}, ErrDuplicateNumber
		}
		return Invoice{}, err
	}
	return inv, nil
}

// GenerateNumber produces the next invoice number for the issue year.
func (r *Repository) GenerateNumber(ctx context.Context, issuedOn time.Time) (string, error) {
	year := issuedOn.Year()
	if issuedOn.IsZero() {
		year = time.Now().Year()
	}
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE EXTRACT(YEAR FROM issued_on) = $1`, year,
	).Scan(&count)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%05d", year, count+1), nil
}

// GetByID fetches one invoice.
func (r *Repository) GetByID(ctx context.Context, id int64) (Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, ErrNotFound
	}
	return inv, err
}

// ListByParty returns every invoice issued to one party, oldest first.
func (r *Repository) ListByParty(ctx context.Context, partyID int64) ([]Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE party_id = $1 ORDER BY issued_on, id`
	rows, err := r.pool.Query(ctx, query, partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvoices(rows)
}

// ListWithBalances returns invoices joined with their active-payment sums, so
// list screens can show outstanding amounts without a query per row.
func (r *Repository) ListWithBalances(ctx context.Context, filter ListFilter) ([]InvoiceWithBalance, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
		SELECT i.id, i.number, i.party_id, i.issued_on, i.due_on, i.total_paise, i.description, i.created_at,
		       COALESCE(SUM(p.amount_paise) FILTER (WHERE p.status = 'ACTIVE'), 0) AS total_paid
		FROM invoices i
		LEFT JOIN payments p ON p.invoice_id = i.id
		WHERE ($1 = 0 OR i.party_id = $1)
		GROUP BY i.id
		HAVING NOT $2 OR i.total_paise > COALESCE(SUM(p.amount_paise) FILTER (WHERE p.status = 'ACTIVE'), 0)
		ORDER BY i.issued_on DESC, i.id DESC
		LIMIT $3`
	rows, err := r.pool.Query(ctx, query, filter.PartyID, filter.OnlyOutstanding, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InvoiceWithBalance
	for rows.Next() {
		var item InvoiceWithBalance
		var total, paid int64
		err := rows.Scan(&item.ID, &item.Number, &item.PartyID, &item.IssuedOn, &item.DueOn,
			&total, &item.Description, &item.CreatedAt, &paid)
		if err != nil {
			return nil, err
		}
		item.Total = money.Money(total)
		item.TotalPaid = money.Money(paid)
		item.Outstanding = item.Total.Sub(item.TotalPaid).ClampZero()
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanInvoices(rows pgx.Rows) ([]Invoice, error) {
	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var total int64
	err := row.Scan(&inv.ID, &inv.Number, &inv.PartyID, &inv.IssuedOn, &inv.DueOn, &total, &inv.Description, &inv.CreatedAt)
	if err != nil {
		return Invoice{}, err
	}
	inv.Total = money.Money(total)
	return inv, nil
}
