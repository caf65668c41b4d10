package invoices

import (
	"context"
	"errors"

	"github.com/foundry-erp/foundry-erp/internal/ledger"
)

// Source adapts the invoice repository to the ledger engine's read-only
// invoice port.
type Source struct {
	repo *Repository
}

// NewSource builds the adapter.
func NewSource(repo *Repository) *Source {
	return &Source{repo: repo}
}

var _ ledger.InvoiceSource = (*Source)(nil)

func (s *Source) GetInvoice(ctx context.Context, id int64) (ledger.Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ledger.Invoice{}, ledger.ErrInvoiceNotFound
		}
		return ledger.Invoice{}, err
	}
	return toLedgerInvoice(inv), nil
}

func (s *Source) ListInvoicesForParty(ctx context.Context, partyID int64) ([]ledger.Invoice, error) {
	list, err := s.repo.ListByParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Invoice, len(list))
	for i, inv := range list {
		out[i] = toLedgerInvoice(inv)
	}
	return out, nil
}

func toLedgerInvoice(inv Invoice) ledger.Invoice {
	return ledger.Invoice{
		ID:       inv.ID,
		Number:   inv.Number,
		PartyID:  inv.PartyID,
		IssuedOn: inv.IssuedOn,
		Total:    inv.Total,
	}
}
