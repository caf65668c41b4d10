// Package parties holds the master data for the vendors and customers the
// ledger settles invoices against.
package parties

import (
	"time"
)

// PartyKind distinguishes payables from receivables counterparties.
type PartyKind string

const (
	KindVendor   PartyKind = "VENDOR"
	KindCustomer PartyKind = "CUSTOMER"
)

// Party represents a billing counterparty
type Party struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Kind      PartyKind `json:"kind"`
	GSTIN     string    `json:"gstin,omitempty"`
	Address   string    `json:"address,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilters narrows party listings.
type ListFilters struct {
	Search string
	Kind   PartyKind
	Page   int
	Limit  int
}
