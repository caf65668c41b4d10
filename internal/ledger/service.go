package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foundry-erp/foundry-erp/internal/money"
)

// InvoiceSource supplies invoices produced upstream. The engine never writes
// through this port.
type InvoiceSource interface {
	GetInvoice(ctx context.Context, id int64) (Invoice, error)
	// ListInvoicesForParty may return invoices regardless of outstanding
	// status; the engine filters.
	ListInvoicesForParty(ctx context.Context, partyID int64) ([]Invoice, error)
}

// PaymentStore persists payment rows. WithInvoice runs fn inside one
// transaction holding a row lock on the invoice, so a balance check and the
// insert it guards cannot interleave with a concurrent writer. Implementations
// translate storage-level conflicts into ErrConcurrencyConflict.
type PaymentStore interface {
	ListActivePayments(ctx context.Context, invoiceID int64) ([]Payment, error)
	VoidPayment(ctx context.Context, paymentID int64) (Payment, error)
	WithInvoice(ctx context.Context, invoiceID int64, fn func(ctx context.Context, tx PaymentTx) error) error
}

// PaymentTx is the transactional slice of PaymentStore visible inside
// WithInvoice. ListActivePayments re-reads under the lock.
type PaymentTx interface {
	ListActivePayments(ctx context.Context, invoiceID int64) ([]Payment, error)
	InsertPayment(ctx context.Context, p Payment) (Payment, error)
}

// Invalidator is notified after every successful ledger write so downstream
// read caches can drop stale state.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service is the payment ledger engine: stateless between calls, storage
// injected, every operation synchronous.
type Service struct {
	invoices   InvoiceSource
	store      PaymentStore
	invalidate Invalidator
}

// NewService builds the engine around its storage ports.
func NewService(invoices InvoiceSource, store PaymentStore, invalidate Invalidator) *Service {
	return &Service{invoices: invoices, store: store, invalidate: invalidate}
}

// InvoiceBalance returns the invoice, its balance, and its derived status.
func (s *Service) InvoiceBalance(ctx context.Context, invoiceID int64) (Invoice, Balance, InvoiceStatus, error) {
	inv, err := s.invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		return Invoice{}, Balance{}, "", err
	}
	payments, err := s.store.ListActivePayments(ctx, invoiceID)
	if err != nil {
		return Invoice{}, Balance{}, "", err
	}
	bal := ComputeBalance(inv, payments)
	return inv, bal, StatusOf(bal), nil
}

// RecordPayment validates and appends one payment against one invoice. The
// balance check and the insert run under the invoice row lock: two concurrent
// payments cannot both pass the check against a stale outstanding value.
func (s *Service) RecordPayment(ctx context.Context, in RecordPaymentInput) (Payment, error) {
	if !in.Amount.IsPositive() {
		return Payment{}, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if strings.TrimSpace(in.Method) == "" {
		return Payment{}, &ValidationError{Field: "method", Reason: "required"}
	}
	inv, err := s.invoices.GetInvoice(ctx, in.InvoiceID)
	if err != nil {
		return Payment{}, err
	}

	var created Payment
	err = s.store.WithInvoice(ctx, inv.ID, func(ctx context.Context, tx PaymentTx) error {
		payments, err := tx.ListActivePayments(ctx, inv.ID)
		if err != nil {
			return err
		}
		bal := ComputeBalance(inv, payments)
		if in.Amount > bal.Outstanding {
			return &ExceedsOutstandingError{
				InvoiceID:   inv.ID,
				Outstanding: bal.Outstanding,
				Attempted:   in.Amount,
			}
		}
		created, err = tx.InsertPayment(ctx, Payment{
			InvoiceID: inv.ID,
			PartyID:   inv.PartyID,
			Amount:    in.Amount,
			PaidOn:    paidOn(in.PaidOn),
			Method:    in.Method,
			Status:    RecordActive,
			Reference: in.Reference,
			Remarks:   in.Remarks,
		})
		return err
	})
	if err != nil {
		return Payment{}, err
	}
	s.bump(ctx)
	return created, nil
}

// AllocatePayment distributes one lump sum across a party's outstanding
// invoices, oldest first, creating one payment per invoice touched. All
// payments from one call share a batch id so the set can be displayed or
// reversed together.
//
// Each invoice is settled in its own locked transaction with the outstanding
// balance re-read under the lock, so the guarantee is per-invoice rather than
// a party-wide lock. An amount that exceeds the party's total outstanding is
// reported back as Remaining; the engine does not invent a credit mechanism.
func (s *Service) AllocatePayment(ctx context.Context, in AllocateInput) (AllocationResult, error) {
	if !in.Amount.IsPositive() {
		return AllocationResult{}, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if in.PartyID <= 0 {
		return AllocationResult{}, &ValidationError{Field: "party_id", Reason: "required"}
	}
	if strings.TrimSpace(in.Method) == "" {
		return AllocationResult{}, &ValidationError{Field: "method", Reason: "required"}
	}

	invoices, err := s.invoices.ListInvoicesForParty(ctx, in.PartyID)
	if err != nil {
		return AllocationResult{}, err
	}

	candidates := make([]candidate, 0, len(invoices))
	for _, inv := range invoices {
		payments, err := s.store.ListActivePayments(ctx, inv.ID)
		if err != nil {
			return AllocationResult{}, err
		}
		bal := ComputeBalance(inv, payments)
		if !bal.Outstanding.IsPositive() {
			continue
		}
		candidates = append(candidates, candidate{Invoice: inv, Outstanding: bal.Outstanding})
	}
	sortOldestFirst(candidates)

	batch := uuid.New()
	result := AllocationResult{
		BatchID:   batch,
		Submitted: in.Amount,
		Remaining: in.Amount,
	}
	when := paidOn(in.PaidOn)

	for _, c := range candidates {
		if !result.Remaining.IsPositive() {
			break
		}
		var line AllocationLine
		touched := false
		err := s.store.WithInvoice(ctx, c.Invoice.ID, func(ctx context.Context, tx PaymentTx) error {
			payments, err := tx.ListActivePayments(ctx, c.Invoice.ID)
			if err != nil {
				return err
			}
			// Re-derive under the lock; the planning read may be stale.
			outstanding := ComputeBalance(c.Invoice, payments).Outstanding
			if !outstanding.IsPositive() {
				return nil
			}
			alloc := money.Min(result.Remaining, outstanding)
			if _, err := tx.InsertPayment(ctx, Payment{
				InvoiceID: c.Invoice.ID,
				PartyID:   in.PartyID,
				Amount:    alloc,
				PaidOn:    when,
				Method:    in.Method,
				Status:    RecordActive,
				Reference: in.Reference,
				Remarks:   in.Remarks,
				BatchID:   &batch,
			}); err != nil {
				return err
			}
			status := StatusPartiallyPaid
			if alloc == outstanding {
				status = StatusFullyPaid
			}
			line = AllocationLine{
				InvoiceID:         c.Invoice.ID,
				InvoiceNumber:     c.Invoice.Number,
				InvoiceDate:       c.Invoice.IssuedOn,
				OutstandingBefore: outstanding,
				Allocated:         alloc,
				Status:            status,
			}
			touched = true
			return nil
		})
		if err != nil {
			return AllocationResult{}, err
		}
		if !touched {
			continue
		}
		result.Lines = append(result.Lines, line)
		result.Allocated = result.Allocated.Add(line.Allocated)
		result.Remaining = result.Remaining.Sub(line.Allocated)
	}

	if len(result.Lines) > 0 {
		s.bump(ctx)
	}
	return result, nil
}

// WriteOff force-closes the remaining outstanding balance of one invoice with
// a synthetic zero-cash payment. The entry stays on the ledger permanently and
// is reversible only through the void path.
func (s *Service) WriteOff(ctx context.Context, in WriteOffInput) (Payment, error) {
	if strings.TrimSpace(in.Remarks) == "" {
		return Payment{}, &ValidationError{Field: "remarks", Reason: "required for write-off"}
	}
	inv, err := s.invoices.GetInvoice(ctx, in.InvoiceID)
	if err != nil {
		return Payment{}, err
	}

	var created Payment
	err = s.store.WithInvoice(ctx, inv.ID, func(ctx context.Context, tx PaymentTx) error {
		payments, err := tx.ListActivePayments(ctx, inv.ID)
		if err != nil {
			return err
		}
		bal := ComputeBalance(inv, payments)
		if !bal.Outstanding.IsPositive() {
			return &NothingToWriteOffError{InvoiceID: inv.ID}
		}
		created, err = tx.InsertPayment(ctx, Payment{
			InvoiceID: inv.ID,
			PartyID:   inv.PartyID,
			Amount:    bal.Outstanding,
			PaidOn:    time.Now(),
			Method:    MethodWriteOff,
			Status:    RecordActive,
			Remarks:   in.Remarks,
		})
		return err
	})
	if err != nil {
		return Payment{}, err
	}
	s.bump(ctx)
	return created, nil
}

// VoidPayment flips a payment to VOIDED, removing it from every sum while
// keeping the row for audit. Recomputing the balance afterwards reproduces the
// pre-payment state exactly.
func (s *Service) VoidPayment(ctx context.Context, paymentID int64) (Payment, error) {
	p, err := s.store.VoidPayment(ctx, paymentID)
	if err != nil {
		return Payment{}, err
	}
	s.bump(ctx)
	return p, nil
}

func (s *Service) bump(ctx context.Context) {
	if s.invalidate == nil {
		return
	}
	// Cache invalidation is best effort; a stale dashboard must not fail a write.
	_ = s.invalidate.Bump(ctx)
}

func paidOn(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
