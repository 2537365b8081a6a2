package aggregate

import (
	"slices"
	"time"

	"classroom-ledger/internal/domain"
)

// SummarizeStudent folds one student's payments into a StudentPaymentSummary.
// The caller scopes payments to the student; plan may be nil.
func SummarizeStudent(payments []domain.Payment, plan *domain.PaymentPlan, now time.Time) domain.StudentPaymentSummary {
	current := refreshAll(payments, now)
	t := fold(current)

	s := domain.StudentPaymentSummary{
		TotalDue:            toFloat(t.due),
		TotalPaid:           toFloat(t.paid),
		TotalPending:        toFloat(t.pending),
		TotalOverdue:        toFloat(t.overdue),
		CollectionRate:      t.collectionRate(),
		AveragePaymentDelay: t.averageDelay(),
		PaymentHistory:      History(current),
		UpcomingPayments:    Upcoming(current, now),
		OverduePayments:     Overdue(current, now),
		StatusCounts:        make(map[domain.PaymentStatus]int, len(domain.PaymentStatuses)),
	}
	for _, st := range domain.PaymentStatuses {
		s.StatusCounts[st] = 0
	}
	for _, p := range current {
		if s.StudentID == "" {
			s.StudentID = p.StudentID
		}
		s.StatusCounts[p.Status]++
	}

	if len(s.PaymentHistory) > 0 {
		s.LastPaymentDate = ptr(*s.PaymentHistory[0].PaidDate)
	}
	if len(s.UpcomingPayments) > 0 {
		s.NextPaymentDue = ptr(s.UpcomingPayments[0].DueDate)
	}
	if plan != nil {
		refreshed := RefreshPlan(*plan, now)
		s.PaymentPlan = &refreshed
		if s.StudentID == "" {
			s.StudentID = plan.StudentID
		}
	}
	return s
}

// History returns paid-dated records, most recent payment first.
func History(payments []domain.Payment) []domain.Payment {
	out := make([]domain.Payment, 0, len(payments))
	for _, p := range payments {
		if p.PaidDate != nil {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Payment) int {
		return b.PaidDate.Compare(*a.PaidDate)
	})
	return out
}

// Upcoming returns pending records due after now, soonest first.
func Upcoming(payments []domain.Payment, now time.Time) []domain.Payment {
	out := make([]domain.Payment, 0, len(payments))
	for _, p := range payments {
		p = RefreshStatus(p, now)
		if p.Status == domain.StatusPending && p.DueDate.After(now) {
			out = append(out, p)
		}
	}
	sortByDue(out)
	return out
}

// Overdue returns overdue records, oldest due date first.
func Overdue(payments []domain.Payment, now time.Time) []domain.Payment {
	out := make([]domain.Payment, 0, len(payments))
	for _, p := range payments {
		p = RefreshStatus(p, now)
		if p.Status == domain.StatusOverdue {
			out = append(out, p)
		}
	}
	sortByDue(out)
	return out
}

func sortByDue(ps []domain.Payment) {
	slices.SortStableFunc(ps, func(a, b domain.Payment) int {
		return a.DueDate.Compare(b.DueDate)
	})
}
