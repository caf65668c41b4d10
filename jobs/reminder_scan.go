package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foundry-erp/foundry-erp/internal/money"
)

// ReminderScanJob walks the ledger for overdue invoices and queues one
// reminder email per party that has an address on file.
type ReminderScanJob struct {
	Pool   *pgxpool.Pool
	Client *Client
	Logger *slog.Logger
	clock  func() time.Time
}

// NewReminderScanJob wires dependencies for the scan handler.
func NewReminderScanJob(pool *pgxpool.Pool, client *Client, logger *slog.Logger) *ReminderScanJob {
	return &ReminderScanJob{
		Pool:   pool,
		Client: client,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type overdueParty struct {
	PartyID     int64
	Name        string
	Email       string
	Invoices    int64
	Outstanding money.Money
	OldestDueOn time.Time
}

// Handle processes reminder scan tasks.
func (j *ReminderScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("reminder scan: handler not configured")
	}
	var payload ReminderScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.MinDaysOverdue < 0 {
		payload.MinDaysOverdue = 0
	}

	now := j.now()
	logger := j.logger().With(slog.Int("min_days_overdue", payload.MinDaysOverdue))
	logger.Info("starting reminder scan")

	parties, err := j.fetchOverdue(ctx, now, payload.MinDaysOverdue)
	if err != nil {
		logger.Error("load overdue parties", slog.Any("error", err))
		return err
	}
	if len(parties) == 0 {
		logger.Info("no overdue invoices found")
		return nil
	}

	queued := 0
	for _, party := range parties {
		if party.Email == "" {
			logger.Warn("overdue party has no email", slog.Int64("party_id", party.PartyID))
			continue
		}
		if j.Client == nil {
			continue
		}
		if _, err := j.Client.EnqueueSendEmail(ctx, SendEmailPayload{
			To:      party.Email,
			Subject: fmt.Sprintf("Payment reminder: %d overdue invoice(s)", party.Invoices),
			Body: fmt.Sprintf(
				"Dear %s,\n\nOur records show %s outstanding across %d overdue invoice(s), the oldest due on %s. Kindly arrange payment.\n",
				party.Name, party.Outstanding.Format(), party.Invoices, party.OldestDueOn.Format("02 Jan 2006")),
		}); err != nil {
			logger.Error("queue reminder", slog.Int64("party_id", party.PartyID), slog.Any("error", err))
			return err
		}
		queued++
	}

	logger.Info("completed reminder scan",
		slog.Int("overdue_parties", len(parties)),
		slog.Int("reminders_queued", queued),
		slog.Duration("duration", time.Since(now)))
	return nil
}

func (j *ReminderScanJob) fetchOverdue(ctx context.Context, now time.Time, minDays int) ([]overdueParty, error) {
	cutoff := now.AddDate(0, 0, -minDays)
	query := `
		WITH balances AS (
			SELECT i.id, i.party_id, COALESCE(i.due_on, i.issued_on) AS due_on,
			       GREATEST(i.total_paise - COALESCE(SUM(p.amount_paise) FILTER (WHERE p.status = 'ACTIVE'), 0), 0) AS outstanding
			FROM invoices i
			LEFT JOIN payments p ON p.invoice_id = i.id
			GROUP BY i.id
		)
		SELECT pt.id, pt.name, pt.email,
		       COUNT(*) AS invoices,
		       SUM(b.outstanding) AS outstanding,
		       MIN(b.due_on) AS oldest_due_on
		FROM balances b
		JOIN parties pt ON pt.id = b.party_id
		WHERE b.outstanding > 0 AND b.due_on < $1
		GROUP BY pt.id, pt.name, pt.email
		ORDER BY outstanding DESC`

	rows, err := j.Pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []overdueParty
	for rows.Next() {
		var p overdueParty
		var outstanding int64
		if err := rows.Scan(&p.PartyID, &p.Name, &p.Email, &p.Invoices, &outstanding, &p.OldestDueOn); err != nil {
			return nil, err
		}
		p.Outstanding = money.Money(outstanding)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (j *ReminderScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *ReminderScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
