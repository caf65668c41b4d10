package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/foundry-erp/foundry-erp/internal/money"
)

type memoryRepo struct {
	invoices map[int64]Invoice
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{invoices: make(map[int64]Invoice)}
}

func (m *memoryRepo) Create(_ context.Context, input CreateInvoiceInput) (Invoice, error) {
	for _, inv := range m.invoices {
		if input.Number != "" && inv.Number == input.Number {
			return Invoice{}, ErrDuplicateNumber
		}
	}
	m.nextID++
	inv := Invoice{
		ID:          m.nextID,
		Number:      input.Number,
		PartyID:     input.PartyID,
		IssuedOn:    input.IssuedOn,
		DueOn:       input.DueOn,
		Total:       input.Total,
		Description: input.Description,
		CreatedAt:   time.Now(),
	}
	m.invoices[inv.ID] = inv
	return inv, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return Invoice{}, ErrNotFound
	}
	return inv, nil
}

func (m *memoryRepo) ListByParty(_ context.Context, partyID int64) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		if inv.PartyID == partyID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListWithBalances(_ context.Context, filter ListFilter) ([]InvoiceWithBalance, error) {
	var out []InvoiceWithBalance
	for _, inv := range m.invoices {
		if filter.PartyID != 0 && inv.PartyID != filter.PartyID {
			continue
		}
		out = append(out, InvoiceWithBalance{Invoice: inv, Outstanding: inv.Total})
	}
	return out, nil
}

type allowAllParties struct{}

func (allowAllParties) PartyExists(context.Context, int64) (bool, error) { return true, nil }

type noParties struct{}

func (noParties) PartyExists(context.Context, int64) (bool, error) { return false, nil }

func TestCreateInvoice(t *testing.T) {
	svc := NewService(newMemoryRepo(), allowAllParties{})
	inv, err := svc.Create(context.Background(), CreateInvoiceInput{
		Number:  "INV-2026-00001",
		PartyID: 10,
		Total:   money.Money(100000),
	})
	require.NoError(t, err)
	require.NotZero(t, inv.ID)
	require.False(t, inv.IssuedOn.IsZero())
}

func TestCreateInvoiceDefaultsDueDateToIssueDate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, allowAllParties{})
	issued := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	inv, err := svc.Create(context.Background(), CreateInvoiceInput{
		PartyID:  10,
		IssuedOn: issued,
		Total:    money.Money(50000),
	})
	require.NoError(t, err)
	// The stored due date must never be the zero time; aging and reminder
	// scans would treat such an invoice as overdue since year one.
	stored := repo.invoices[inv.ID]
	require.False(t, stored.DueOn.IsZero())
	require.Equal(t, issued, stored.DueOn)
}

func TestCreateInvoiceKeepsExplicitDueDate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, allowAllParties{})
	issued := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	due := issued.AddDate(0, 0, 30)

	inv, err := svc.Create(context.Background(), CreateInvoiceInput{
		PartyID:  10,
		IssuedOn: issued,
		DueOn:    due,
		Total:    money.Money(50000),
	})
	require.NoError(t, err)
	require.Equal(t, due, repo.invoices[inv.ID].DueOn)
}

func TestCreateInvoiceRejectsNonPositiveTotal(t *testing.T) {
	svc := NewService(newMemoryRepo(), allowAllParties{})
	_, err := svc.Create(context.Background(), CreateInvoiceInput{PartyID: 10, Total: 0})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "total", vErr.Field)
}

func TestCreateInvoiceRejectsUnknownParty(t *testing.T) {
	svc := NewService(newMemoryRepo(), noParties{})
	_, err := svc.Create(context.Background(), CreateInvoiceInput{PartyID: 99, Total: 100})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "party_id", vErr.Field)
}

func TestCreateInvoiceRejectsDueBeforeIssue(t *testing.T) {
	svc := NewService(newMemoryRepo(), allowAllParties{})
	_, err := svc.Create(context.Background(), CreateInvoiceInput{
		PartyID:  10,
		Total:    100,
		IssuedOn: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueOn:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "due_on", vErr.Field)
}

func TestCreateInvoiceDuplicateNumber(t *testing.T) {
	svc := NewService(newMemoryRepo(), allowAllParties{})
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInvoiceInput{Number: "INV-1", PartyID: 10, Total: 100})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInvoiceInput{Number: "INV-1", PartyID: 10, Total: 100})
	require.ErrorIs(t, err, ErrDuplicateNumber)
}
