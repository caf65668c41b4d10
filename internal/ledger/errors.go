package ledger

import (
	"errors"
	"fmt"

	"github.com/foundry-erp/foundry-erp/internal/money"
)

var (
	// ErrInvoiceNotFound indicates the referenced invoice does not exist.
	ErrInvoiceNotFound = errors.New("ledger: invoice not found")
	// ErrPaymentNotFound indicates the payment does not exist or is already voided.
	ErrPaymentNotFound = errors.New("ledger: payment not found or already voided")
	// ErrConcurrencyConflict indicates the check-then-write raced with another
	// writer. The operation re-reads fresh state, so retrying it is safe.
	ErrConcurrencyConflict = errors.New("ledger: concurrent modification, retry the operation")
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ledger: invalid %s: %s", e.Field, e.Reason)
}

// ExceedsOutstandingError rejects a single payment larger than the invoice's
// current outstanding balance. It carries the computed outstanding so the
// caller can show it.
type ExceedsOutstandingError struct {
	InvoiceID   int64
	Outstanding money.Money
	Attempted   money.Money
}

func (e *ExceedsOutstandingError) Error() string {
	return fmt.Sprintf("ledger: payment of %s exceeds outstanding %s on invoice %d",
		e.Attempted, e.Outstanding, e.InvoiceID)
}

// NothingToWriteOffError rejects a write-off against a settled invoice. A
// caller writing off a settled invoice indicates a logic error upstream, so
// this is surfaced rather than treated as a no-op success.
type NothingToWriteOffError struct {
	InvoiceID int64
}

func (e *NothingToWriteOffError) Error() string {
	return fmt.Sprintf("ledger: invoice %d has no outstanding balance to write off", e.InvoiceID)
}
