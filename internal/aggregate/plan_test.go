package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-ledger/internal/domain"
)

func TestDeriveInstallments(t *testing.T) {
	first := date(2025, 1, 31)

	ins, err := DeriveInstallments("plan-1", 100, 3, first, domain.CategoryMonthly)
	require.NoError(t, err)
	require.Len(t, ins, 3)

	assert.Equal(t, 33.33, ins[0].Amount)
	assert.Equal(t, 33.33, ins[1].Amount)
	assert.Equal(t, 33.34, ins[2].Amount)
	assert.Equal(t, first, ins[0].DueDate)
	assert.Equal(t, first.AddDate(0, 1, 0), ins[1].DueDate)
	for i, in := range ins {
		assert.Equal(t, i+1, in.Number)
		assert.Equal(t, "plan-1", in.PlanID)
		assert.Equal(t, domain.InstallmentPending, in.Status)
		assert.Equal(t, in.Amount, in.Remaining())
	}

	ins, err = DeriveInstallments("plan-2", 1200, 2, first, domain.CategorySemester)
	require.NoError(t, err)
	assert.Equal(t, first.AddDate(0, 6, 0), ins[1].DueDate)
	assert.Equal(t, 600.0, ins[1].Amount)

	ins, err = DeriveInstallments("plan-3", 500, 4, first, domain.CategoryOneTime)
	require.NoError(t, err)
	require.Len(t, ins, 1)
	assert.Equal(t, 500.0, ins[0].Amount)
}

func TestDeriveInstallments_Invalid(t *testing.T) {
	_, err := DeriveInstallments("p", 0, 3, date(2025, 1, 1), domain.CategoryMonthly)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "totalAmount", ve.Field)

	_, err = DeriveInstallments("p", 100, 0, date(2025, 1, 1), domain.CategoryMonthly)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "installments", ve.Field)
}

func TestPlanLifecycle(t *testing.T) {
	now := date(2025, 1, 15)
	plan, err := NewPlan(NewPlanInput{
		StudentID:    "s1",
		ClassID:      "c1",
		TotalAmount:  900,
		Currency:     domain.CurrencyEUR,
		Category:     domain.CategoryQuarterly,
		Installments: 3,
		FirstDueDate: date(2025, 1, 10),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, domain.PlanActive, plan.Status)
	assert.Equal(t, domain.InstallmentOverdue, plan.Installments[0].Status)
	assert.Equal(t, 900.0, plan.RemainingAmount)

	for n := 1; n <= 3; n++ {
		plan, err = PayInstallment(plan, n, nil, now)
		require.NoError(t, err)
	}
	assert.Equal(t, domain.PlanCompleted, plan.Status)
	assert.Equal(t, 3, plan.PaidInstallments)
	assert.Equal(t, 900.0, plan.PaidAmount)
	assert.Equal(t, 0.0, plan.RemainingAmount)

	_, err = PayInstallment(plan, 2, nil, now)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "status", ve.Field)

	_, err = PayInstallment(plan, 9, nil, now)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "number", ve.Field)
}

func TestPayInstallment_DoesNotMutateInput(t *testing.T) {
	plan := domain.PaymentPlan{
		Status: domain.PlanActive,
		Installments: []domain.PaymentInstallment{
			{Number: 1, Amount: 10, DueDate: date(2025, 2, 1), Status: domain.InstallmentPending},
			{Number: 2, Amount: 10, DueDate: date(2025, 3, 1), Status: domain.InstallmentPending},
		},
	}
	paymentID := "pay-1"
	out, err := PayInstallment(plan, 1, &paymentID, date(2025, 1, 20))
	require.NoError(t, err)

	assert.Equal(t, domain.InstallmentPaid, out.Installments[0].Status)
	assert.Equal(t, "pay-1", *out.Installments[0].PaymentID)
	assert.Equal(t, domain.InstallmentPending, plan.Installments[0].Status)
	assert.Equal(t, domain.PlanActive, out.Status)
	assert.Equal(t, 1, out.PaidInstallments)
}

func TestDerivePlanStatus(t *testing.T) {
	paid := domain.PaymentInstallment{Status: domain.InstallmentPaid}
	pending := domain.PaymentInstallment{Status: domain.InstallmentPending}

	tests := []struct {
		name string
		plan domain.PaymentPlan
		want domain.PlanStatus
	}{
		{name: "no installments", plan: domain.PaymentPlan{}, want: domain.PlanActive},
		{name: "all paid", plan: domain.PaymentPlan{Status: domain.PlanActive, Installments: []domain.PaymentInstallment{paid, paid}}, want: domain.PlanCompleted},
		{name: "all paid wins over suspended", plan: domain.PaymentPlan{Status: domain.PlanSuspended, Installments: []domain.PaymentInstallment{paid}}, want: domain.PlanCompleted},
		{name: "suspended kept", plan: domain.PaymentPlan{Status: domain.PlanSuspended, Installments: []domain.PaymentInstallment{paid, pending}}, want: domain.PlanSuspended},
		{name: "cancelled kept", plan: domain.PaymentPlan{Status: domain.PlanCancelled, Installments: []domain.PaymentInstallment{pending}}, want: domain.PlanCancelled},
		{name: "completed reopens", plan: domain.PaymentPlan{Status: domain.PlanCompleted, Installments: []domain.PaymentInstallment{pending}}, want: domain.PlanActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePlanStatus(tt.plan))
		})
	}
}

func TestPayInstallment_RejectsSuspendedPlan(t *testing.T) {
	plan := domain.PaymentPlan{
		Status:       domain.PlanSuspended,
		Installments: []domain.PaymentInstallment{{Number: 1, Amount: 10, Status: domain.InstallmentPending}},
	}
	_, err := PayInstallment(plan, 1, nil, date(2025, 1, 1))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "status", ve.Field)
}
