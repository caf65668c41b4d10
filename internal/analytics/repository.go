package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foundry-erp/foundry-erp/internal/money"
)

// PartyPending summarises one party's unsettled position.
type PartyPending struct {
	PartyID        int64       `json:"party_id"`
	PartyName      string      `json:"party_name"`
	Kind           string      `json:"kind"`
	OpenInvoices   int64       `json:"open_invoices"`
	Outstanding    money.Money `json:"outstanding_paise"`
	OldestUnpaidOn *time.Time  `json:"oldest_unpaid_on,omitempty"`
}

// AgingBucket summarises outstanding amounts inside one overdue band.
type AgingBucket struct {
	Bucket      string      `json:"bucket"`
	Outstanding money.Money `json:"outstanding_paise"`
	Invoices    int64       `json:"invoices"`
}

// Repository runs the ledger's reporting queries against PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// balancesCTE derives the outstanding amount per invoice from the payment
// ledger. Voided payments are excluded; outstanding is clamped at zero so an
// overpaid invoice does not offset the rest of the party's position.
const balancesCTE = `
	WITH balances AS (
		SELECT i.id, i.party_id, i.issued_on, COALESCE(i.due_on, i.issued_on) AS due_on,
		       GREATEST(i.total_paise - COALESCE(SUM(p.amount_paise) FILTER (WHERE p.status = 'ACTIVE'), 0), 0) AS outstanding
		FROM invoices i
		LEFT JOIN payments p ON p.invoice_id = i.id
		GROUP BY i.id
	)`

// PendingByParty lists every party carrying outstanding invoices, largest
// exposure first.
func (r *Repository) PendingByParty(ctx context.Context) ([]PartyPending, error) {
	query := balancesCTE + `
	SELECT pt.id, pt.name, pt.kind,
	       COUNT(*) AS open_invoices,
	       SUM(b.outstanding) AS outstanding,
	       MIN(b.issued_on) AS oldest_unpaid_on
	FROM balances b
	JOIN parties pt ON pt.id = b.party_id
	WHERE b.outstanding > 0
	GROUP BY pt.id, pt.name, pt.kind
	ORDER BY outstanding DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PartyPending
	for rows.Next() {
		var item PartyPending
		var outstanding int64
		if err := rows.Scan(&item.PartyID, &item.PartyName, &item.Kind,
			&item.OpenInvoices, &outstanding, &item.OldestUnpaidOn); err != nil {
			return nil, err
		}
		item.Outstanding = money.Money(outstanding)
		out = append(out, item)
	}
	return out, rows.Err()
}

// Aging buckets every outstanding invoice by days past due as of the given
// date.
func (r *Repository) Aging(ctx context.Context, asOf time.Time) ([]AgingBucket, error) {
	query := balancesCTE + `
	SELECT bucket, SUM(outstanding) AS outstanding, COUNT(*) AS invoices
	FROM (
		SELECT outstanding,
		       CASE
		           WHEN $1::date <= due_on THEN 'current'
		           WHEN $1::date - due_on <= 30 THEN '1-30'
		           WHEN $1::date - due_on <= 60 THEN '31-60'
		           WHEN $1::date - due_on <= 90 THEN '61-90'
		           WHEN $1::date - due_on <= 120 THEN '91-120'
		           ELSE '120+'
		       END AS bucket
		FROM balances
		WHERE outstanding > 0
	) banded
	GROUP BY bucket
	ORDER BY CASE bucket
		WHEN 'current' THEN 0 WHEN '1-30' THEN 1 WHEN '31-60' THEN 2
		WHEN '61-90' THEN 3 WHEN '91-120' THEN 4 ELSE 5 END`

	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AgingBucket
	for rows.Next() {
		var b AgingBucket
		var outstanding int64
		if err := rows.Scan(&b.Bucket, &outstanding, &b.Invoices); err != nil {
			return nil, err
		}
		b.Outstanding = money.Money(outstanding)
		out = append(out, b)
	}
	return out, rows.Err()
}
