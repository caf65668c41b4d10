package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foundry-erp/foundry-erp/internal/money"
	"github.com/foundry-erp/foundry-erp/internal/platform/db"
)

// Repository is the PostgreSQL-backed PaymentStore.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ PaymentStore = (*Repository)(nil)

const paymentColumns = `id, invoice_id, party_id, amount_paise, paid_on, method, status, reference, remarks, batch_id, created_at, voided_at`

// ListActivePayments returns the countable payments for one invoice, oldest
// entry first.
func (r *Repository) ListActivePayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE invoice_id = $1 AND status = $2 ORDER BY paid_on, id`
	rows, err := r.pool.Query(ctx, query, invoiceID, RecordActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

// ListPaymentsByBatch returns every payment created by one allocation call,
// voided entries included, in allocation order.
func (r *Repository) ListPaymentsByBatch(ctx context.Context, batchID string) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE batch_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

// VoidPayment flips an ACTIVE payment to VOIDED. The row is never deleted.
func (r *Repository) VoidPayment(ctx context.Context, paymentID int64) (Payment, error) {
	query := `
		UPDATE payments SET status = $1, voided_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + paymentColumns
	row := r.pool.QueryRow(ctx, query, RecordVoided, time.Now(), paymentID, RecordActive)
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, ErrPaymentNotFound
	}
	return p, err
}

// WithInvoice runs fn in a RepeatableRead transaction holding a row lock on
// the invoice, serialising every check-then-write against it. Lock and
// serialization conflicts surface as ErrConcurrencyConflict so the caller can
// retry.
func (r *Repository) WithInvoice(ctx context.Context, invoiceID int64, fn func(ctx context.Context, tx PaymentTx) error) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, `SELECT id FROM invoices WHERE id = $1 FOR UPDATE`, invoiceID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvoiceNotFound
			}
			return err
		}
		return fn(ctx, &txStore{tx: tx})
	})
	if err != nil && db.IsSerializationFailure(err) {
		return ErrConcurrencyConflict
	}
	return err
}

type txStore struct {
	tx pgx.Tx
}

func (s *txStore) ListActivePayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE invoice_id = $1 AND status = $2 ORDER BY paid_on, id`
	rows, err := s.tx.Query(ctx, query, invoiceID, RecordActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (s *txStore) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	query := `
		INSERT INTO payments (invoice_id, party_id, amount_paise, paid_on, method, status, reference, remarks, batch_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`
	now := time.Now()
	err := s.tx.QueryRow(ctx, query,
		p.InvoiceID,
		p.PartyID,
		p.Amount.Paise(),
		p.PaidOn,
		p.Method,
		p.Status,
		p.Reference,
		p.Remarks,
		p.BatchID,
		now,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func scanPayments(rows pgx.Rows) ([]Payment, error) {
	var payments []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	var amount int64
	err := row.Scan(&p.ID, &p.InvoiceID, &p.PartyID, &amount, &p.PaidOn, &p.Method, &p.Status, &p.Reference, &p.Remarks, &p.BatchID, &p.CreatedAt, &p.VoidedAt)
	if err != nil {
		return Payment{}, err
	}
	p.Amount = money.Money(amount)
	return p, nil
}
