package aggregate

import (
	"math"
	"time"

	"classroom-ledger/internal/domain"
)

const day = 24 * time.Hour

// dateOf truncates t to its UTC calendar day.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween is the number of calendar days from `from` to `to`; negative when to is earlier.
func daysBetween(from, to time.Time) int {
	return int(math.Round(dateOf(to).Sub(dateOf(from)).Hours() / 24))
}

// paymentDelay is the clamped lateness of a paid record, and whether it has the dates to count.
func paymentDelay(p domain.Payment) (int, bool) {
	if p.PaidDate == nil || p.DueDate.IsZero() {
		return 0, false
	}
	d := daysBetween(p.DueDate, *p.PaidDate)
	if d < 0 {
		d = 0
	}
	return d, true
}

// pastDue reports whether due's calendar day is strictly before now's.
func pastDue(due, now time.Time) bool {
	return !due.IsZero() && dateOf(due).Before(dateOf(now))
}

// RefreshStatus returns p with a pending status moved to overdue when its due
// date has passed and nothing was paid. Other statuses are returned as is.
func RefreshStatus(p domain.Payment, now time.Time) domain.Payment {
	if p.Status == domain.StatusPending && p.Paid() == 0 && pastDue(p.DueDate, now) {
		p.Status = domain.StatusOverdue
	}
	return p
}

func refreshAll(payments []domain.Payment, now time.Time) []domain.Payment {
	out := make([]domain.Payment, len(payments))
	for i, p := range payments {
		out[i] = RefreshStatus(p, now)
	}
	return out
}
