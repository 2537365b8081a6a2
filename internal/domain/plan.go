package domain

import "time"

type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanCancelled PlanStatus = "cancelled"
	PlanSuspended PlanStatus = "suspended"
)

type InstallmentStatus string

const (
	InstallmentPending   InstallmentStatus = "pending"
	InstallmentPaid      InstallmentStatus = "paid"
	InstallmentOverdue   InstallmentStatus = "overdue"
	InstallmentCancelled InstallmentStatus = "cancelled"
)

// PaymentPlan splits one student's obligation into ordered installments.
type PaymentPlan struct {
	ID          string          `json:"id"`
	StudentID   string          `json:"studentId"`
	ClassID     string          `json:"classId"`
	TotalAmount float64         `json:"totalAmount"`
	Currency    Currency        `json:"currency"`
	Category    PaymentCategory `json:"category"`
	Status      PlanStatus      `json:"status"`

	Installments []PaymentInstallment `json:"installments"`

	// derived by aggregate.RefreshPlan
	PaidInstallments int     `json:"paidInstallments"`
	PaidAmount       float64 `json:"paidAmount"`
	RemainingAmount  float64 `json:"remainingAmount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PaymentInstallment struct {
	ID              string            `json:"id"`
	PlanID          string            `json:"planId"`
	Number          int               `json:"number"`
	Amount          float64           `json:"amount"`
	DueDate         time.Time         `json:"dueDate"`
	Status          InstallmentStatus `json:"status"`
	PaidAmount      *float64          `json:"paidAmount,omitempty"`
	RemainingAmount *float64          `json:"remainingAmount,omitempty"`
	PaidDate        *time.Time        `json:"paidDate,omitempty"`
	PaymentID       *string           `json:"paymentId,omitempty"`
}

func (i PaymentInstallment) Remaining() float64 {
	if i.RemainingAmount != nil {
		return *i.RemainingAmount
	}
	if i.Status == InstallmentPaid {
		return 0
	}
	return i.Amount
}
