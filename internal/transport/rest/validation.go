package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/domain"
	"classroom-ledger/internal/repository"
)

const dateLayout = "2006-01-02"

// decodeJSON reads the request body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return &aggregate.ValidationError{Field: "body", Message: "invalid JSON"}
	}
	return nil
}

func parseDate(field, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, &aggregate.ValidationError{Field: field, Message: "must be YYYY-MM-DD or empty"}
	}
	return &t, nil
}

func parsePositiveInt(field, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, &aggregate.ValidationError{Field: field, Message: "must be a positive integer"}
	}
	return n, nil
}

// PaymentsFilterRequest is the filter shared by payment statistics and exports.
type PaymentsFilterRequest struct {
	StudentID string `json:"student_id"`
	ClassID   string `json:"class_id"`
	Status    string `json:"status" validate:"omitempty,payment_status"`
	DueFrom   string `json:"due_from"`
	DueTo     string `json:"due_to"`
}

func filterFromQuery(r *http.Request) PaymentsFilterRequest {
	q := r.URL.Query()
	return PaymentsFilterRequest{
		StudentID: q.Get("student_id"),
		ClassID:   q.Get("class_id"),
		Status:    q.Get("status"),
		DueFrom:   q.Get("due_from"),
		DueTo:     q.Get("due_to"),
	}
}

func (f PaymentsFilterRequest) ToRepositoryFilter() (repository.PaymentsFilter, error) {
	if err := aggregate.Validator().Struct(f); err != nil {
		return repository.PaymentsFilter{}, err
	}

	var out repository.PaymentsFilter
	if f.StudentID != "" {
		out.StudentID = &f.StudentID
	}
	if f.ClassID != "" {
		out.ClassID = &f.ClassID
	}
	if f.Status != "" {
		st := domain.PaymentStatus(f.Status)
		out.Status = &st
	}

	var err error
	if out.DueFrom, err = parseDate("due_from", f.DueFrom); err != nil {
		return out, err
	}
	if out.DueTo, err = parseDate("due_to", f.DueTo); err != nil {
		return out, err
	}
	if out.DueTo != nil {
		// inclusive of the whole last day
		end := out.DueTo.Add(24*time.Hour - time.Nanosecond)
		out.DueTo = &end
	}
	if out.DueFrom != nil && out.DueTo != nil && out.DueTo.Before(*out.DueFrom) {
		return out, &aggregate.ValidationError{Field: "due_to", Message: "must not be before due_from"}
	}
	return out, nil
}

// PaymentsExportRequest selects the columns and rows of a payments export.
type PaymentsExportRequest struct {
	Fields []string `json:"fields" validate:"required,min=1,dive,required"`
	PaymentsFilterRequest
}
