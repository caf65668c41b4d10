// Package invoices manages the registry of invoices the payment ledger settles
// against. Invoices are append-only from the ledger's point of view: once
// issued, the total is fixed and the row is never deleted.
package invoices

import (
	"time"

	"github.com/foundry-erp/foundry-erp/internal/money"
)

// Invoice is one issued invoice.
type Invoice struct {
	ID          int64       `json:"id"`
	Number      string      `json:"number"`
	PartyID     int64       `json:"party_id"`
	IssuedOn    time.Time   `json:"issued_on"`
	DueOn       time.Time   `json:"due_on"`
	Total       money.Money `json:"total_paise"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CreateInvoiceInput captures a new invoice. Number is generated when empty.
type CreateInvoiceInput struct {
	Number      string
	PartyID     int64
	IssuedOn    time.Time
	DueOn       time.Time
	Total       money.Money
	Description string
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	PartyID int64
	// OnlyOutstanding keeps invoices still carrying a balance.
	OnlyOutstanding bool
	Limit           int
}

// InvoiceWithBalance pairs an invoice with its aggregated payment state, as
// produced by the list query. Outstanding is clamped at zero.
type InvoiceWithBalance struct {
	Invoice
	TotalPaid   money.Money `json:"total_paid_paise"`
	Outstanding money.Money `json:"outstanding_paise"`
}
