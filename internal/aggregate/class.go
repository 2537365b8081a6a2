package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"classroom-ledger/internal/domain"
)

// SummarizeClass folds a class's payments into a ClassPaymentOverview.
func SummarizeClass(payments []domain.Payment, now time.Time) domain.ClassPaymentOverview {
	current := refreshAll(payments, now)
	t := fold(current)

	o := domain.ClassPaymentOverview{
		TotalDue:            toFloat(t.due),
		TotalPaid:           toFloat(t.paid),
		TotalPending:        toFloat(t.pending),
		TotalOverdue:        toFloat(t.overdue),
		CollectionRate:      t.collectionRate(),
		AveragePaymentDelay: t.averageDelay(),
	}

	type balance struct {
		due, paid, outstanding decimal.Decimal
		overdue                bool
	}
	students := make(map[string]*balance)
	var order []string

	for _, p := range current {
		if o.ClassID == "" {
			o.ClassID = p.ClassID
		}

		b, ok := students[p.StudentID]
		if !ok {
			b = &balance{}
			students[p.StudentID] = b
			order = append(order, p.StudentID)
		}
		b.due = b.due.Add(dec(p.Amount))
		b.paid = b.paid.Add(dec(p.Paid()))

		switch p.Status {
		case domain.StatusPaid:
			o.PaymentDistribution.Paid++
		case domain.StatusPending:
			o.PaymentDistribution.Pending++
			b.outstanding = b.outstanding.Add(dec(p.Remaining()))
		case domain.StatusOverdue:
			o.PaymentDistribution.Overdue++
			b.outstanding = b.outstanding.Add(dec(p.Remaining()))
			b.overdue = true
		case domain.StatusPartial:
			b.outstanding = b.outstanding.Add(dec(p.Remaining()))
		case domain.StatusCancelled:
			o.PaymentDistribution.Cancelled++
		}
	}

	o.TotalStudents = len(students)
	o.Students = make([]domain.StudentBalance, 0, len(order))
	for _, id := range order {
		b := students[id]
		if b.overdue {
			o.StudentsWithOverdue++
		}
		o.Students = append(o.Students, domain.StudentBalance{
			StudentID:   id,
			TotalDue:    toFloat(b.due),
			TotalPaid:   toFloat(b.paid),
			Outstanding: toFloat(b.outstanding),
			HasOverdue:  b.overdue,
		})
	}
	slices.SortStableFunc(o.Students, func(a, b domain.StudentBalance) int {
		if c := cmp.Compare(b.Outstanding, a.Outstanding); c != 0 {
			return c
		}
		return cmp.Compare(a.StudentID, b.StudentID)
	})
	return o
}
