package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-ledger/internal/domain"
)

func TestSummarizeStudent_Empty(t *testing.T) {
	s := SummarizeStudent(nil, nil, date(2025, 1, 1))

	assert.Zero(t, s.TotalDue)
	assert.Zero(t, s.TotalPaid)
	assert.Zero(t, s.TotalPending)
	assert.Zero(t, s.TotalOverdue)
	assert.Zero(t, s.CollectionRate)
	assert.False(t, math.IsNaN(s.CollectionRate))
	assert.Zero(t, s.AveragePaymentDelay)
	assert.NotNil(t, s.PaymentHistory)
	assert.Empty(t, s.PaymentHistory)
	assert.Empty(t, s.UpcomingPayments)
	assert.Empty(t, s.OverduePayments)
	assert.Nil(t, s.LastPaymentDate)
	assert.Nil(t, s.NextPaymentDue)
	assert.Len(t, s.StatusCounts, len(domain.PaymentStatuses))
}

func TestSummarizeStudent_ZeroDueIsZeroRate(t *testing.T) {
	payments := []domain.Payment{
		payment("a", "s1", 0, domain.StatusCancelled, date(2025, 1, 1)),
	}
	s := SummarizeStudent(payments, nil, date(2025, 2, 1))
	assert.Zero(t, s.CollectionRate)
	assert.Zero(t, s.AveragePaymentDelay)
}

func TestSummarizeStudent_DelayClampedAtZero(t *testing.T) {
	payments := []domain.Payment{
		paidPayment("early", "s1", 100, date(2025, 3, 10), date(2025, 3, 5)),
		paidPayment("late", "s1", 100, date(2025, 3, 10), date(2025, 3, 14)),
	}
	s := SummarizeStudent(payments, nil, date(2025, 4, 1))
	assert.Equal(t, 2.0, s.AveragePaymentDelay)

	s = SummarizeStudent(payments[:1], nil, date(2025, 4, 1))
	assert.Equal(t, 0.0, s.AveragePaymentDelay)
}

func TestSummarizeStudent_Views(t *testing.T) {
	now := date(2025, 3, 1)
	payments := []domain.Payment{
		paidPayment("jan", "s1", 100, date(2025, 1, 1), date(2025, 1, 2)),
		paidPayment("feb", "s1", 100, date(2025, 2, 1), date(2025, 2, 5)),
		payment("apr", "s1", 100, domain.StatusPending, date(2025, 4, 1)),
		payment("mar", "s1", 100, domain.StatusPending, date(2025, 3, 20)),
		payment("old", "s1", 100, domain.StatusPending, date(2025, 2, 15)),
	}

	s := SummarizeStudent(payments, nil, now)

	assert.Equal(t, "s1", s.StudentID)
	require.Len(t, s.PaymentHistory, 2)
	assert.Equal(t, "feb", s.PaymentHistory[0].ID)
	assert.Equal(t, date(2025, 2, 5), *s.LastPaymentDate)

	require.Len(t, s.UpcomingPayments, 2)
	assert.Equal(t, "mar", s.UpcomingPayments[0].ID)
	assert.Equal(t, "apr", s.UpcomingPayments[1].ID)
	assert.Equal(t, date(2025, 3, 20), *s.NextPaymentDue)

	require.Len(t, s.OverduePayments, 1)
	assert.Equal(t, "old", s.OverduePayments[0].ID)
	assert.Equal(t, domain.StatusOverdue, s.OverduePayments[0].Status)

	assert.Equal(t, 200.0, s.TotalPending)
	assert.Equal(t, 100.0, s.TotalOverdue)
	assert.Equal(t, 40.0, s.CollectionRate)
	assert.Equal(t, 2, s.StatusCounts[domain.StatusPaid])
	assert.Equal(t, 1, s.StatusCounts[domain.StatusOverdue])
}

func TestSummarizeStudent_StableOrder(t *testing.T) {
	now := date(2025, 3, 1)
	payments := []domain.Payment{
		payment("first", "s1", 100, domain.StatusPending, date(2025, 5, 1)),
		payment("second", "s1", 100, domain.StatusPending, date(2025, 5, 1)),
		payment("third", "s1", 100, domain.StatusPending, date(2025, 4, 1)),
	}

	s := SummarizeStudent(payments, nil, now)
	require.Len(t, s.UpcomingPayments, 3)
	assert.Equal(t, "third", s.UpcomingPayments[0].ID)
	assert.Equal(t, "first", s.UpcomingPayments[1].ID)
	assert.Equal(t, "second", s.UpcomingPayments[2].ID)
}

func TestSummarizeStudent_WithPlan(t *testing.T) {
	now := date(2025, 3, 1)
	plan := domain.PaymentPlan{
		ID:        "plan-1",
		StudentID: "s9",
		Status:    domain.PlanActive,
		Installments: []domain.PaymentInstallment{
			{Number: 1, Amount: 50, DueDate: date(2025, 2, 1), Status: domain.InstallmentPending},
			{Number: 2, Amount: 50, DueDate: date(2025, 4, 1), Status: domain.InstallmentPending},
		},
	}

	s := SummarizeStudent(nil, &plan, now)
	require.NotNil(t, s.PaymentPlan)
	assert.Equal(t, "s9", s.StudentID)
	assert.Equal(t, domain.InstallmentOverdue, s.PaymentPlan.Installments[0].Status)
	assert.Equal(t, domain.InstallmentPending, plan.Installments[0].Status, "input plan must not be modified")
	assert.Equal(t, 100.0, s.PaymentPlan.RemainingAmount)
}
