package aggregate

import (
	"math"
	"time"

	"github.com/google/uuid"

	"classroom-ledger/internal/domain"
)

// NewPaymentInput carries the fields needed to create a payment.
type NewPaymentInput struct {
	StudentID   string                 `json:"studentId" validate:"required"`
	ClassID     string                 `json:"classId" validate:"required"`
	ParentID    *string                `json:"parentId"`
	Amount      float64                `json:"amount" validate:"gt=0"`
	Currency    domain.Currency        `json:"currency" validate:"required,currency"`
	Type        domain.PaymentType     `json:"type" validate:"required,payment_type"`
	Category    domain.PaymentCategory `json:"category" validate:"required,payment_category"`
	DueDate     time.Time              `json:"dueDate" validate:"required"`
	Description string                 `json:"description"`
	Discount    *float64               `json:"discount" validate:"omitempty,gte=0"`
	LateFee     *float64               `json:"lateFee" validate:"omitempty,gte=0"`
	Notes       string                 `json:"notes"`
}

// NewPayment creates a pending payment with nothing collected yet.
func NewPayment(in NewPaymentInput, createdBy string, now time.Time) (domain.Payment, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Payment{}, fromValidator(err)
	}
	return domain.Payment{
		ID:              uuid.NewString(),
		StudentID:       in.StudentID,
		ClassID:         in.ClassID,
		ParentID:        in.ParentID,
		Amount:          in.Amount,
		Currency:        in.Currency,
		RemainingAmount: ptr(in.Amount),
		Type:            in.Type,
		Category:        in.Category,
		Status:          domain.StatusPending,
		DueDate:         in.DueDate,
		CreatedAt:       now,
		UpdatedAt:       now,
		Discount:        in.Discount,
		LateFee:         in.LateFee,
		Description:     in.Description,
		Notes:           in.Notes,
		CreatedBy:       createdBy,
	}, nil
}

// RecomputeOnProcess applies a collected amount to p and returns the updated copy.
// This is the only transition that changes PaidAmount.
func RecomputeOnProcess(p domain.Payment, paidAmount float64, processedBy string, now time.Time) (domain.Payment, error) {
	switch p.Status {
	case domain.StatusCancelled, domain.StatusRefunded:
		return p, invalid("status", "cannot collect on a "+string(p.Status)+" payment")
	}
	if math.IsNaN(paidAmount) || math.IsInf(paidAmount, 0) {
		return p, invalid("paidAmount", "paid amount out of range")
	}

	amount := dec(paidAmount)
	if !amount.IsPositive() || amount.GreaterThan(dec(p.Remaining())) {
		return p, invalid("paidAmount", "paid amount out of range")
	}

	paid := dec(p.Paid()).Add(amount)
	remaining := dec(p.Amount).Sub(paid)
	if remaining.IsNegative() {
		return p, invalid("paidAmount", "paid amount out of range")
	}

	out := p
	out.PaidAmount = ptr(toFloat(paid))
	out.RemainingAmount = ptr(toFloat(remaining))
	out.Status = domain.StatusPartial
	if remaining.IsZero() {
		out.Status = domain.StatusPaid
	}
	out.PaidDate = ptr(now)
	out.ProcessedAt = ptr(now)
	out.ProcessedBy = ptr(processedBy)
	out.UpdatedAt = now
	return out, nil
}

// PaymentEdit lists the fields an edit may change. Nil fields are left alone.
type PaymentEdit struct {
	Amount      *float64                `json:"amount" validate:"omitempty,gt=0"`
	Type        *domain.PaymentType     `json:"type" validate:"omitempty,payment_type"`
	Category    *domain.PaymentCategory `json:"category" validate:"omitempty,payment_category"`
	Status      *domain.PaymentStatus   `json:"status" validate:"omitempty,payment_status"`
	DueDate     *time.Time              `json:"dueDate"`
	Description *string                 `json:"description"`
	Discount    *float64                `json:"discount" validate:"omitempty,gte=0"`
	LateFee     *float64                `json:"lateFee" validate:"omitempty,gte=0"`
	Notes       *string                 `json:"notes"`
}

// RecomputeOnEdit applies edits to p and re-derives RemainingAmount from the
// resulting status and amount. PaidAmount is never touched.
func RecomputeOnEdit(p domain.Payment, edits PaymentEdit, now time.Time) (domain.Payment, error) {
	if err := validate.Struct(edits); err != nil {
		return p, fromValidator(err)
	}

	out := p
	if edits.Amount != nil {
		out.Amount = *edits.Amount
	}
	if edits.Type != nil {
		out.Type = *edits.Type
	}
	if edits.Category != nil {
		out.Category = *edits.Category
	}
	if edits.Status != nil {
		out.Status = *edits.Status
	}
	if edits.DueDate != nil {
		out.DueDate = *edits.DueDate
	}
	if edits.Description != nil {
		out.Description = *edits.Description
	}
	if edits.Discount != nil {
		out.Discount = ptr(*edits.Discount)
	}
	if edits.LateFee != nil {
		out.LateFee = ptr(*edits.LateFee)
	}
	if edits.Notes != nil {
		out.Notes = *edits.Notes
	}

	switch out.Status {
	case domain.StatusPaid:
		out.RemainingAmount = ptr(0.0)
	case domain.StatusPartial:
		remaining := dec(out.Amount).Sub(dec(out.Paid()))
		if !remaining.IsPositive() || out.Paid() <= 0 {
			return p, invalid("status", "partial requires a paid amount between zero and the amount")
		}
		out.RemainingAmount = ptr(toFloat(remaining))
	default:
		out.RemainingAmount = ptr(out.Amount)
	}
	out.UpdatedAt = now
	return out, nil
}
