package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/foundry-erp/foundry-erp/internal/money"
)

// RecordStatus marks a payment row as countable or voided. Voided rows are
// excluded from every sum but never deleted, preserving the audit trail.
type RecordStatus string

const (
	RecordActive RecordStatus = "ACTIVE"
	RecordVoided RecordStatus = "VOIDED"
)

// InvoiceStatus is derived from the balance, never stored.
type InvoiceStatus string

const (
	StatusUnpaid        InvoiceStatus = "UNPAID"
	StatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	StatusFullyPaid     InvoiceStatus = "FULLY_PAID"
)

// MethodWriteOff tags the synthetic zero-cash payment that force-closes a
// residual balance.
const MethodWriteOff = "write-off"

// Invoice is the engine's read-only view of an upstream invoice. The total is
// fixed at issuance; the engine never mutates or deletes invoices.
type Invoice struct {
	ID       int64
	Number   string
	PartyID  int64
	IssuedOn time.Time
	Total    money.Money
}

// Payment is one ledger entry against an invoice.
type Payment struct {
	ID        int64
	InvoiceID int64
	PartyID   int64
	Amount    money.Money
	PaidOn    time.Time
	Method    string
	Status    RecordStatus
	Reference string
	Remarks   string
	BatchID   *uuid.UUID
	CreatedAt time.Time
	VoidedAt  *time.Time
}

// Balance is the derived payment state of one invoice.
type Balance struct {
	TotalPaid   money.Money
	Outstanding money.Money
	IsOverpaid  bool
}

// AllocationLine describes what one FIFO step did to one invoice.
type AllocationLine struct {
	InvoiceID         int64         `json:"invoice_id"`
	InvoiceNumber     string        `json:"invoice_number"`
	InvoiceDate       time.Time     `json:"invoice_date"`
	OutstandingBefore money.Money   `json:"outstanding_before_paise"`
	Allocated         money.Money   `json:"allocated_paise"`
	Status            InvoiceStatus `json:"status"`
}

// AllocationResult reports a whole FIFO allocation call. Allocated plus
// Remaining always equals Submitted; a fully unallocated amount is a valid
// outcome the caller must handle, not an error.
type AllocationResult struct {
	BatchID   uuid.UUID        `json:"batch_id"`
	Submitted money.Money      `json:"submitted_paise"`
	Allocated money.Money      `json:"allocated_paise"`
	Remaining money.Money      `json:"remaining_paise"`
	Lines     []AllocationLine `json:"lines"`
}

// RecordPaymentInput captures one manual payment against one invoice.
type RecordPaymentInput struct {
	InvoiceID int64
	Amount    money.Money
	PaidOn    time.Time
	Method    string
	Reference string
	Remarks   string
}

// AllocateInput captures a lump payment to spread across a party's invoices.
type AllocateInput struct {
	PartyID   int64
	Amount    money.Money
	PaidOn    time.Time
	Method    string
	Reference string
	Remarks   string
}

// WriteOffInput captures a write-off request. Remarks are mandatory; a
// write-off without a justification is not auditable.
type WriteOffInput struct {
	InvoiceID int64
	Remarks   string
}
