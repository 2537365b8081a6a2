package domain

import "fmt"

type RecordKind string

const (
	KindPayment        RecordKind = "payment"
	KindStudentSummary RecordKind = "studentSummary"
	KindClassOverview  RecordKind = "classOverview"
)

// Record carries exactly one of its payloads, selected by Kind at construction.
type Record struct {
	Kind           RecordKind             `json:"kind"`
	Payment        *Payment               `json:"payment,omitempty"`
	StudentSummary *StudentPaymentSummary `json:"studentSummary,omitempty"`
	ClassOverview  *ClassPaymentOverview  `json:"classOverview,omitempty"`
}

func NewPaymentRecord(p Payment) Record {
	return Record{Kind: KindPayment, Payment: &p}
}

func NewStudentSummaryRecord(s StudentPaymentSummary) Record {
	return Record{Kind: KindStudentSummary, StudentSummary: &s}
}

func NewClassOverviewRecord(o ClassPaymentOverview) Record {
	return Record{Kind: KindClassOverview, ClassOverview: &o}
}

// Validate reports a record whose payload does not match its kind.
func (r Record) Validate() error {
	var ok bool
	switch r.Kind {
	case KindPayment:
		ok = r.Payment != nil && r.StudentSummary == nil && r.ClassOverview == nil
	case KindStudentSummary:
		ok = r.StudentSummary != nil && r.Payment == nil && r.ClassOverview == nil
	case KindClassOverview:
		ok = r.ClassOverview != nil && r.Payment == nil && r.StudentSummary == nil
	default:
		return fmt.Errorf("unknown record kind %q", r.Kind)
	}
	if !ok {
		return fmt.Errorf("record payload does not match kind %q", r.Kind)
	}
	return nil
}
