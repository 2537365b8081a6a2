package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/domain"
)

func TestPlanService_CreatePayAndSummarize(t *testing.T) {
	now := day(2025, 2, 15)
	plans := &fakePlans{}
	cache := newFakeCache()
	svc := NewPlanService(plans, cache, fixed(now))
	ctx := context.Background()

	plan, err := svc.Create(ctx, aggregate.NewPlanInput{
		StudentID: "s1", ClassID: "c1", TotalAmount: 1000,
		Currency: domain.CurrencyDZD, Category: domain.CategoryMonthly,
		Installments: 3, FirstDueDate: day(2025, 2, 1),
	})
	require.NoError(t, err)
	require.Len(t, plan.Installments, 3)
	assert.Equal(t, 333.34, plan.Installments[2].Amount)
	assert.Equal(t, domain.InstallmentOverdue, plan.Installments[0].Status)

	paymentID := "pay-1"
	plan, err = svc.PayInstallment(ctx, plan.ID, 1, &paymentID)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.PaidInstallments)
	assert.InDelta(t, 666.67, plan.RemainingAmount, 0.001)
	assert.Contains(t, cache.dels, "summary:student:s1:2025-02-15")

	got, err := svc.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InstallmentPaid, got.Installments[0].Status)

	summaries := NewPaymentService(newFakePayments(), plans, nil, nil, fixed(now), 0)
	summary, err := summaries.StudentSummary(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, summary.PaymentPlan)
	assert.Equal(t, plan.ID, summary.PaymentPlan.ID)
}

func TestPlanService_PayUnknownPlan(t *testing.T) {
	svc := NewPlanService(&fakePlans{}, nil, nil)
	_, err := svc.PayInstallment(context.Background(), "nope", 1, nil)
	assert.True(t, IsNotFound(err))
}

func TestPlanService_CreateRejectsBadInput(t *testing.T) {
	svc := NewPlanService(&fakePlans{}, nil, fixed(day(2025, 1, 1)))
	_, err := svc.Create(context.Background(), aggregate.NewPlanInput{
		StudentID: "s1", ClassID: "c1", TotalAmount: 100,
		Currency: domain.CurrencyDZD, Category: domain.CategoryMonthly,
		Installments: 30, FirstDueDate: day(2025, 1, 1),
	})
	var ve *aggregate.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "installments", ve.Field)
}
