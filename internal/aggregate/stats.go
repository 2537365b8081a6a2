package aggregate

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"classroom-ledger/internal/domain"
)

// Stats builds the tenant-wide statistics view over payments.
func Stats(payments []domain.Payment, now time.Time) domain.PaymentStats {
	current := refreshAll(payments, now)
	t := fold(current)

	st := domain.PaymentStats{
		TotalPayments:       len(current),
		TotalAmount:         toFloat(t.due),
		TotalPaid:           toFloat(t.paid),
		TotalPending:        toFloat(t.pending),
		TotalOverdue:        toFloat(t.overdue),
		CollectionRate:      t.collectionRate(),
		AveragePaymentDelay: t.averageDelay(),
		StatusDistribution:  make(map[domain.PaymentStatus]domain.StatusBucket, len(domain.PaymentStatuses)),
		ByType:              make(map[domain.PaymentType]domain.Breakdown),
		ByCategory:          make(map[domain.PaymentCategory]domain.Breakdown),
	}

	type sums struct {
		count        int
		amount, paid decimal.Decimal
	}
	byStatus := make(map[domain.PaymentStatus]*sums)
	byType := make(map[domain.PaymentType]*sums)
	byCategory := make(map[domain.PaymentCategory]*sums)
	monthly := make(map[string]*sums)

	bump := func(s *sums, p domain.Payment) {
		s.count++
		s.amount = s.amount.Add(dec(p.Amount))
		s.paid = s.paid.Add(dec(p.Paid()))
	}
	get := func(s *sums) *sums {
		if s == nil {
			return &sums{}
		}
		return s
	}

	for _, p := range current {
		s := get(byStatus[p.Status])
		bump(s, p)
		byStatus[p.Status] = s

		s = get(byType[p.Type])
		bump(s, p)
		byType[p.Type] = s

		s = get(byCategory[p.Category])
		bump(s, p)
		byCategory[p.Category] = s

		if !p.DueDate.IsZero() {
			key := p.DueDate.UTC().Format("2006-01")
			s = get(monthly[key])
			bump(s, p)
			monthly[key] = s
		}
	}

	for _, status := range domain.PaymentStatuses {
		s := get(byStatus[status])
		st.StatusDistribution[status] = domain.StatusBucket{
			Count:      s.count,
			Amount:     toFloat(s.amount),
			Percentage: share(s.count, len(current)),
		}
	}
	for k, s := range byType {
		st.ByType[k] = domain.Breakdown{Count: s.count, Amount: toFloat(s.amount), Paid: toFloat(s.paid)}
	}
	for k, s := range byCategory {
		st.ByCategory[k] = domain.Breakdown{Count: s.count, Amount: toFloat(s.amount), Paid: toFloat(s.paid)}
	}

	st.Monthly = make([]domain.MonthlyCollection, 0, len(monthly))
	for month, s := range monthly {
		st.Monthly = append(st.Monthly, domain.MonthlyCollection{
			Month:     month,
			Due:       toFloat(s.amount),
			Collected: toFloat(s.paid),
		})
	}
	slices.SortFunc(st.Monthly, func(a, b domain.MonthlyCollection) int {
		if a.Month < b.Month {
			return -1
		}
		if a.Month > b.Month {
			return 1
		}
		return 0
	})
	return st
}
