package aggregate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"classroom-ledger/internal/domain"
)

// NewPlanInput describes an installment plan to create.
type NewPlanInput struct {
	StudentID    string                 `json:"studentId" validate:"required"`
	ClassID      string                 `json:"classId" validate:"required"`
	TotalAmount  float64                `json:"totalAmount" validate:"gt=0"`
	Currency     domain.Currency        `json:"currency" validate:"required,currency"`
	Category     domain.PaymentCategory `json:"category" validate:"required,payment_category"`
	Installments int                    `json:"installments" validate:"gte=1,lte=24"`
	FirstDueDate time.Time              `json:"firstDueDate" validate:"required"`
}

func NewPlan(in NewPlanInput, now time.Time) (domain.PaymentPlan, error) {
	if err := validate.Struct(in); err != nil {
		return domain.PaymentPlan{}, fromValidator(err)
	}
	id := uuid.NewString()
	installments, err := DeriveInstallments(id, in.TotalAmount, in.Installments, in.FirstDueDate, in.Category)
	if err != nil {
		return domain.PaymentPlan{}, err
	}
	plan := domain.PaymentPlan{
		ID:           id,
		StudentID:    in.StudentID,
		ClassID:      in.ClassID,
		TotalAmount:  in.TotalAmount,
		Currency:     in.Currency,
		Category:     in.Category,
		Status:       domain.PlanActive,
		Installments: installments,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return RefreshPlan(plan, now), nil
}

func monthsBetweenInstallments(c domain.PaymentCategory) int {
	switch c {
	case domain.CategoryQuarterly:
		return 3
	case domain.CategorySemester:
		return 6
	case domain.CategoryAnnual:
		return 12
	default:
		return 1
	}
}

// DeriveInstallments splits total into count installments spaced by the
// category's cadence. Shares are rounded down to cents; the last installment
// absorbs the remainder so the schedule sums to total.
func DeriveInstallments(planID string, total float64, count int, firstDue time.Time, category domain.PaymentCategory) ([]domain.PaymentInstallment, error) {
	if total <= 0 {
		return nil, invalid("totalAmount", "must be greater than 0")
	}
	if count < 1 {
		return nil, invalid("installments", "must be at least 1")
	}
	if category == domain.CategoryOneTime {
		count = 1
	}

	whole := dec(total)
	each := whole.Div(decimal.NewFromInt(int64(count))).Truncate(2)
	last := whole.Sub(each.Mul(decimal.NewFromInt(int64(count - 1))))
	step := monthsBetweenInstallments(category)

	out := make([]domain.PaymentInstallment, count)
	for i := range out {
		amount := each
		if i == count-1 {
			amount = last
		}
		n := i + 1
		out[i] = domain.PaymentInstallment{
			ID:              uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s#%d", planID, n))).String(),
			PlanID:          planID,
			Number:          n,
			Amount:          toFloat(amount),
			DueDate:         firstDue.AddDate(0, step*i, 0),
			Status:          domain.InstallmentPending,
			RemainingAmount: ptr(toFloat(amount)),
		}
	}
	return out, nil
}

// DerivePlanStatus is completed when every installment is paid, otherwise the
// explicit cancelled/suspended status, otherwise active.
func DerivePlanStatus(plan domain.PaymentPlan) domain.PlanStatus {
	if len(plan.Installments) > 0 {
		all := true
		for _, in := range plan.Installments {
			if in.Status != domain.InstallmentPaid {
				all = false
				break
			}
		}
		if all {
			return domain.PlanCompleted
		}
	}
	switch plan.Status {
	case domain.PlanCancelled, domain.PlanSuspended:
		return plan.Status
	}
	return domain.PlanActive
}

// RefreshPlan returns a copy of plan with overdue installments flagged and the
// derived totals and status recomputed.
func RefreshPlan(plan domain.PaymentPlan, now time.Time) domain.PaymentPlan {
	out := plan
	out.Installments = make([]domain.PaymentInstallment, len(plan.Installments))

	var paid, remaining decimal.Decimal
	out.PaidInstallments = 0
	for i, in := range plan.Installments {
		if in.Status == domain.InstallmentPending && in.PaidAmount == nil && pastDue(in.DueDate, now) {
			in.Status = domain.InstallmentOverdue
		}
		switch in.Status {
		case domain.InstallmentPaid:
			out.PaidInstallments++
			if in.PaidAmount != nil {
				paid = paid.Add(dec(*in.PaidAmount))
			} else {
				paid = paid.Add(dec(in.Amount))
			}
		case domain.InstallmentCancelled:
		default:
			remaining = remaining.Add(dec(in.Remaining()))
		}
		out.Installments[i] = in
	}

	out.PaidAmount = toFloat(paid)
	out.RemainingAmount = toFloat(remaining)
	out.Status = DerivePlanStatus(out)
	return out
}

// PayInstallment settles installment number in full and returns the refreshed plan.
func PayInstallment(plan domain.PaymentPlan, number int, paymentID *string, now time.Time) (domain.PaymentPlan, error) {
	switch plan.Status {
	case domain.PlanCancelled, domain.PlanSuspended:
		return plan, invalid("status", "plan is "+string(plan.Status))
	}

	idx := -1
	for i, in := range plan.Installments {
		if in.Number == number {
			idx = i
			break
		}
	}
	if idx < 0 {
		return plan, invalid("number", fmt.Sprintf("installment %d not found", number))
	}

	current := plan.Installments[idx]
	switch current.Status {
	case domain.InstallmentPaid, domain.InstallmentCancelled:
		return plan, invalid("status", "installment is "+string(current.Status))
	}

	out := plan
	out.Installments = append([]domain.PaymentInstallment(nil), plan.Installments...)
	current.Status = domain.InstallmentPaid
	current.PaidAmount = ptr(current.Amount)
	current.RemainingAmount = ptr(0.0)
	current.PaidDate = ptr(now)
	current.PaymentID = paymentID
	out.Installments[idx] = current
	out.UpdatedAt = now
	return RefreshPlan(out, now), nil
}
