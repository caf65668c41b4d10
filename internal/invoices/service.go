package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RepositoryPort abstracts invoice storage.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateInvoiceInput) (Invoice, error)
	GetByID(ctx context.Context, id int64) (Invoice, error)
	ListByParty(ctx context.Context, partyID int64) ([]Invoice, error)
	ListWithBalances(ctx context.Context, filter ListFilter) ([]InvoiceWithBalance, error)
}

// PartyDirectory answers whether a party exists. Implemented by the parties
// module.
type PartyDirectory interface {
	PartyExists(ctx context.Context, id int64) (bool, error)
}

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invoices: invalid %s: %s", e.Field, e.Reason)
}

// Service implements invoice registration and lookup.
type Service struct {
	repo    RepositoryPort
	parties PartyDirectory
}

// NewService builds the invoice service.
func NewService(repo RepositoryPort, parties PartyDirectory) *Service {
	return &Service{repo: repo, parties: parties}
}

// Create validates and registers one invoice.
func (s *Service) Create(ctx context.Context, input CreateInvoiceInput) (Invoice, error) {
	if input.PartyID <= 0 {
		return Invoice{}, &ValidationError{Field: "party_id", Reason: "required"}
	}
	if !input.Total.IsPositive() {
		return Invoice{}, &ValidationError{Field: "total", Reason: "must be positive"}
	}
	if input.IssuedOn.IsZero() {
		input.IssuedOn = time.Now()
	}
	// An invoice without explicit terms is due on issue. Storing the zero time
	// instead would age it as overdue since year one.
	if input.DueOn.IsZero() {
		input.DueOn = input.IssuedOn
	}
	if input.DueOn.Before(input.IssuedOn) {
		return Invoice{}, &ValidationError{Field: "due_on", Reason: "cannot precede issue date"}
	}
	input.Number = strings.TrimSpace(input.Number)

	if s.parties != nil {
		ok, err := s.parties.PartyExists(ctx, input.PartyID)
		if err != nil {
			return Invoice{}, err
		}
		if !ok {
			return Invoice{}, &ValidationError{Field: "party_id", Reason: "unknown party"}
		}
	}
	return s.repo.Create(ctx, input)
}

// Get fetches one invoice.
func (s *Service) Get(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns invoices with their payment balances attached.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]InvoiceWithBalance, error) {
	return s.repo.ListWithBalances(ctx, filter)
}
