package domain

import "time"

type StudentPaymentSummary struct {
	StudentID           string  `json:"studentId"`
	TotalDue            float64 `json:"totalDue"`
	TotalPaid           float64 `json:"totalPaid"`
	TotalPending        float64 `json:"totalPending"`
	TotalOverdue        float64 `json:"totalOverdue"`
	CollectionRate      float64 `json:"collectionRate"`
	AveragePaymentDelay float64 `json:"averagePaymentDelay"`

	LastPaymentDate *time.Time `json:"lastPaymentDate,omitempty"`
	NextPaymentDue  *time.Time `json:"nextPaymentDue,omitempty"`

	PaymentHistory   []Payment `json:"paymentHistory"`
	UpcomingPayments []Payment `json:"upcomingPayments"`
	OverduePayments  []Payment `json:"overduePayments"`

	StatusCounts map[PaymentStatus]int `json:"statusCounts"`
	PaymentPlan  *PaymentPlan          `json:"paymentPlan,omitempty"`
}

// PaymentDistribution is the class-level status breakdown. Partial and
// refunded payments are not represented here.
type PaymentDistribution struct {
	Paid      int `json:"paid"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
	Cancelled int `json:"cancelled"`
}

type StudentBalance struct {
	StudentID   string  `json:"studentId"`
	TotalDue    float64 `json:"totalDue"`
	TotalPaid   float64 `json:"totalPaid"`
	Outstanding float64 `json:"outstanding"`
	HasOverdue  bool    `json:"hasOverdue"`
}

type ClassPaymentOverview struct {
	ClassID             string  `json:"classId"`
	TotalStudents       int     `json:"totalStudents"`
	StudentsWithOverdue int     `json:"studentsWithOverdue"`
	TotalDue            float64 `json:"totalDue"`
	TotalPaid           float64 `json:"totalPaid"`
	TotalPending        float64 `json:"totalPending"`
	TotalOverdue        float64 `json:"totalOverdue"`
	CollectionRate      float64 `json:"collectionRate"`
	AveragePaymentDelay float64 `json:"averagePaymentDelay"`

	PaymentDistribution PaymentDistribution `json:"paymentDistribution"`
	Students            []StudentBalance    `json:"students"`
}

type StatusBucket struct {
	Count      int     `json:"count"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type Breakdown struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
	Paid   float64 `json:"paid"`
}

type MonthlyCollection struct {
	Month     string  `json:"month"` // YYYY-MM of the due date
	Due       float64 `json:"due"`
	Collected float64 `json:"collected"`
}

// PaymentStats is the tenant-wide statistics view.
type PaymentStats struct {
	TotalPayments       int     `json:"totalPayments"`
	TotalAmount         float64 `json:"totalAmount"`
	TotalPaid           float64 `json:"totalPaid"`
	TotalPending        float64 `json:"totalPending"`
	TotalOverdue        float64 `json:"totalOverdue"`
	CollectionRate      float64 `json:"collectionRate"`
	AveragePaymentDelay float64 `json:"averagePaymentDelay"`

	StatusDistribution map[PaymentStatus]StatusBucket `json:"statusDistribution"`
	ByType             map[PaymentType]Breakdown      `json:"byType"`
	ByCategory         map[PaymentCategory]Breakdown  `json:"byCategory"`
	Monthly            []MonthlyCollection            `json:"monthly"`
}

type ReminderStatus string

const (
	ReminderPending ReminderStatus = "pending"
	ReminderSent    ReminderStatus = "sent"
	ReminderFailed  ReminderStatus = "failed"
)

type ReminderChannel string

const (
	ChannelEmail ReminderChannel = "email"
	ChannelSMS   ReminderChannel = "sms"
	ChannelCall  ReminderChannel = "call"
)

type PaymentReminder struct {
	ID           string          `json:"id"`
	PaymentID    string          `json:"paymentId"`
	StudentID    string          `json:"studentId"`
	ParentID     *string         `json:"parentId,omitempty"`
	Sequence     int             `json:"sequence"`
	Channel      ReminderChannel `json:"channel"`
	ReminderDate time.Time       `json:"reminderDate"`
	DaysPastDue  int             `json:"daysPastDue"`
	Amount       float64         `json:"amount"`
	Currency     Currency        `json:"currency"`
	Status       ReminderStatus  `json:"status"`
}
