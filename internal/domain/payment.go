package domain

import "time"

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusPaid      PaymentStatus = "paid"
	StatusOverdue   PaymentStatus = "overdue"
	StatusPartial   PaymentStatus = "partial"
	StatusCancelled PaymentStatus = "cancelled"
	StatusRefunded  PaymentStatus = "refunded"
)

var PaymentStatuses = []PaymentStatus{
	StatusPending, StatusPaid, StatusOverdue, StatusPartial, StatusCancelled, StatusRefunded,
}

func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Currency string

const (
	CurrencyDZD Currency = "DZD"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
)

type PaymentType string

const (
	TypeTuition      PaymentType = "tuition"
	TypeRegistration PaymentType = "registration"
	TypeTransport    PaymentType = "transport"
	TypeCanteen      PaymentType = "canteen"
	TypeBooks        PaymentType = "books"
	TypeUniform      PaymentType = "uniform"
	TypeActivities   PaymentType = "activities"
	TypeExam         PaymentType = "exam"
	TypeOther        PaymentType = "other"
)

var PaymentTypes = []PaymentType{
	TypeTuition, TypeRegistration, TypeTransport, TypeCanteen, TypeBooks,
	TypeUniform, TypeActivities, TypeExam, TypeOther,
}

func (t PaymentType) Valid() bool {
	for _, v := range PaymentTypes {
		if t == v {
			return true
		}
	}
	return false
}

// PaymentCategory is the billing cadence of a payment.
type PaymentCategory string

const (
	CategoryMonthly   PaymentCategory = "monthly"
	CategoryQuarterly PaymentCategory = "quarterly"
	CategorySemester  PaymentCategory = "semester"
	CategoryAnnual    PaymentCategory = "annual"
	CategoryOneTime   PaymentCategory = "one_time"
)

var PaymentCategories = []PaymentCategory{
	CategoryMonthly, CategoryQuarterly, CategorySemester, CategoryAnnual, CategoryOneTime,
}

func (c PaymentCategory) Valid() bool {
	for _, v := range PaymentCategories {
		if c == v {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
	MethodCheck    PaymentMethod = "check"
	MethodOnline   PaymentMethod = "online"
)

// Payment is one billable obligation for a student.
//
// RemainingAmount is nil for records that never went through a transition;
// use Remaining to read it.
type Payment struct {
	ID        string  `json:"id"`
	StudentID string  `json:"studentId"`
	ClassID   string  `json:"classId"`
	ParentID  *string `json:"parentId,omitempty"`

	Amount          float64  `json:"amount"`
	Currency        Currency `json:"currency"`
	PaidAmount      *float64 `json:"paidAmount,omitempty"`
	RemainingAmount *float64 `json:"remainingAmount,omitempty"`

	Type     PaymentType     `json:"type"`
	Category PaymentCategory `json:"category"`
	Status   PaymentStatus   `json:"status"`

	DueDate   time.Time  `json:"dueDate"`
	PaidDate  *time.Time `json:"paidDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	// informational, never folded into RemainingAmount
	Discount *float64 `json:"discount,omitempty"`
	LateFee  *float64 `json:"lateFee,omitempty"`

	Description   string         `json:"description,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
	Reference     *string        `json:"reference,omitempty"`

	CreatedBy   string     `json:"createdBy"`
	ProcessedBy *string    `json:"processedBy,omitempty"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`

	// bumped by every stored update; an update is applied only to the version it was read at
	Version int64 `json:"version"`
}

// Paid returns PaidAmount, or 0 when no payment was recorded.
func (p Payment) Paid() float64 {
	if p.PaidAmount == nil {
		return 0
	}
	return *p.PaidAmount
}

// Remaining returns RemainingAmount when set, otherwise derives it from the status.
func (p Payment) Remaining() float64 {
	if p.RemainingAmount != nil {
		return *p.RemainingAmount
	}
	switch p.Status {
	case StatusPaid:
		return 0
	case StatusPartial:
		return p.Amount - p.Paid()
	default:
		return p.Amount
	}
}
