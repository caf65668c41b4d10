package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/foundry-erp/foundry-erp/internal/money"
)

func testInvoice(total money.Money) Invoice {
	return Invoice{
		ID:       1,
		Number:   "INV-001",
		PartyID:  10,
		IssuedOn: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Total:    total,
	}
}

func activePayment(invoiceID int64, amount money.Money) Payment {
	return Payment{InvoiceID: invoiceID, Amount: amount, Status: RecordActive}
}

func TestComputeBalanceUnpaid(t *testing.T) {
	inv := testInvoice(100000)
	bal := ComputeBalance(inv, nil)
	require.Equal(t, money.Money(0), bal.TotalPaid)
	require.Equal(t, money.Money(100000), bal.Outstanding)
	require.False(t, bal.IsOverpaid)
	require.Equal(t, StatusUnpaid, StatusOf(bal))
}

func TestComputeBalancePartiallyPaid(t *testing.T) {
	inv := testInvoice(100000)
	bal := ComputeBalance(inv, []Payment{activePayment(1, 40000)})
	require.Equal(t, money.Money(40000), bal.TotalPaid)
	require.Equal(t, money.Money(60000), bal.Outstanding)
	require.False(t, bal.IsOverpaid)
	require.Equal(t, StatusPartiallyPaid, StatusOf(bal))
}

func TestComputeBalanceFullyPaid(t *testing.T) {
	inv := testInvoice(100000)
	bal := ComputeBalance(inv, []Payment{activePayment(1, 60000), activePayment(1, 40000)})
	require.Equal(t, money.Money(100000), bal.TotalPaid)
	require.Equal(t, money.Money(0), bal.Outstanding)
	require.False(t, bal.IsOverpaid)
	require.Equal(t, StatusFullyPaid, StatusOf(bal))
}

func TestComputeBalanceIgnoresVoidedPayments(t *testing.T) {
	inv := testInvoice(100000)
	voided := activePayment(1, 99999)
	voided.Status = RecordVoided
	bal := ComputeBalance(inv, []Payment{voided, activePayment(1, 40000)})
	require.Equal(t, money.Money(40000), bal.TotalPaid)
	require.Equal(t, money.Money(60000), bal.Outstanding)
}

func TestComputeBalanceIgnoresOtherInvoices(t *testing.T) {
	inv := testInvoice(100000)
	bal := ComputeBalance(inv, []Payment{activePayment(1, 40000), activePayment(2, 40000)})
	require.Equal(t, money.Money(40000), bal.TotalPaid)
}

func TestComputeBalanceOverpaidClampsToZero(t *testing.T) {
	inv := testInvoice(100000)
	bal := ComputeBalance(inv, []Payment{activePayment(1, 120000)})
	require.Equal(t, money.Money(120000), bal.TotalPaid)
	require.Equal(t, money.Money(0), bal.Outstanding)
	require.True(t, bal.IsOverpaid)
	require.Equal(t, StatusFullyPaid, StatusOf(bal))
}

// Whenever totalPaid has not exceeded the invoice total, paid and outstanding
// must partition the total exactly, and outstanding never goes negative.
func TestComputeBalanceConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		total := money.Money(rng.Int63n(1_000_000))
		inv := testInvoice(total)
		var payments []Payment
		var paid money.Money
		for n := rng.Intn(6); n > 0; n-- {
			amt := money.Money(rng.Int63n(300_000) + 1)
			payments = append(payments, activePayment(1, amt))
			paid = paid.Add(amt)
		}
		bal := ComputeBalance(inv, payments)
		require.False(t, bal.Outstanding.IsNegative())
		if paid <= total {
			require.Equal(t, total, bal.TotalPaid.Add(bal.Outstanding))
			require.False(t, bal.IsOverpaid)
		} else {
			require.True(t, bal.IsOverpaid)
			require.True(t, bal.Outstanding.IsZero())
		}
	}
}
