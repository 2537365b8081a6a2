package aggregate

import (
	"github.com/shopspring/decimal"

	"classroom-ledger/internal/domain"
)

// totals is the money fold shared by every payment summary.
type totals struct {
	due, paid, pending, overdue decimal.Decimal

	delaySum   int
	delayCount int
}

// add folds one payment whose status has already been refreshed.
func (t *totals) add(p domain.Payment) {
	t.due = t.due.Add(dec(p.Amount))
	t.paid = t.paid.Add(dec(p.Paid()))
	switch p.Status {
	case domain.StatusPending:
		t.pending = t.pending.Add(dec(p.Amount))
	case domain.StatusOverdue:
		t.overdue = t.overdue.Add(dec(p.Remaining()))
	}
	if d, ok := paymentDelay(p); ok {
		t.delaySum += d
		t.delayCount++
	}
}

func (t totals) collectionRate() float64 {
	return rate(t.paid, t.due)
}

func (t totals) averageDelay() float64 {
	if t.delayCount == 0 {
		return 0
	}
	return float64(t.delaySum) / float64(t.delayCount)
}

func fold(payments []domain.Payment) totals {
	var t totals
	for _, p := range payments {
		t.add(p)
	}
	return t
}
