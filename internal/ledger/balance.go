package ledger

import "github.com/foundry-erp/foundry-erp/internal/money"

// ComputeBalance sums the ACTIVE payments against an invoice and derives the
// outstanding balance. Pure function; every downstream status display is built
// on it.
//
// Outstanding is clamped at zero. A raw negative (overpayment, reachable only
// through external corrections such as data import) is surfaced via IsOverpaid
// instead of a negative amount owed.
func ComputeBalance(inv Invoice, payments []Payment) Balance {
	var paid money.Money
	for _, p := range payments {
		if p.Status != RecordActive {
			continue
		}
		if p.InvoiceID != inv.ID {
			continue
		}
		paid = paid.Add(p.Amount)
	}
	raw := inv.Total.Sub(paid)
	return Balance{
		TotalPaid:   paid,
		Outstanding: raw.ClampZero(),
		IsOverpaid:  raw.IsNegative(),
	}
}

// StatusOf derives the invoice lifecycle state from its balance.
func StatusOf(bal Balance) InvoiceStatus {
	switch {
	case bal.TotalPaid.IsZero():
		return StatusUnpaid
	case bal.Outstanding.IsPositive():
		return StatusPartiallyPaid
	default:
		return StatusFullyPaid
	}
}
