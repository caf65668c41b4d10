package ledger

import (
	"sort"

	"github.com/foundry-erp/foundry-erp/internal/money"
)

// candidate is an invoice still carrying an outstanding balance, paired with
// that balance as read at planning time.
type candidate struct {
	Invoice     Invoice
	Outstanding money.Money
}

// sortOldestFirst orders candidates by invoice date ascending, id ascending on
// equal dates. This ordering is the FIFO contract: the payer is assumed to
// clear their oldest debts first, mirroring standard accounts practice. The id
// tiebreak keeps the walk deterministic when dates collide.
func sortOldestFirst(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].Invoice.IssuedOn, candidates[j].Invoice.IssuedOn
		if di.Equal(dj) {
			return candidates[i].Invoice.ID < candidates[j].Invoice.ID
		}
		return di.Before(dj)
	})
}
