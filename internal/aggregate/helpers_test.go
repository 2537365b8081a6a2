package aggregate

import (
	"time"

	"classroom-ledger/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func f64(v float64) *float64 { return &v }

func tm(t time.Time) *time.Time { return &t }

func payment(id, student string, amount float64, status domain.PaymentStatus, due time.Time) domain.Payment {
	return domain.Payment{
		ID:        id,
		StudentID: student,
		ClassID:   "class-1",
		Amount:    amount,
		Currency:  domain.CurrencyDZD,
		Type:      domain.TypeTuition,
		Category:  domain.CategoryMonthly,
		Status:    status,
		DueDate:   due,
	}
}

func paidPayment(id, student string, amount float64, due, paidOn time.Time) domain.Payment {
	p := payment(id, student, amount, domain.StatusPaid, due)
	p.PaidAmount = f64(amount)
	p.RemainingAmount = f64(0)
	p.PaidDate = tm(paidOn)
	return p
}
