package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"classroom-ledger/internal/domain"
)

// PaymentsFilter narrows a payment listing. Nil fields are ignored.
type PaymentsFilter struct {
	StudentID *string
	ClassID   *string
	Status    *domain.PaymentStatus
	DueFrom   *time.Time
	DueTo     *time.Time
}

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, student_id, class_id, parent_id, amount, currency, paid_amount, remaining_amount,
	type, category, status, due_date, paid_date, discount, late_fee, description, notes,
	payment_method, reference, created_by, processed_by, processed_at, created_at, updated_at, version`

func (f PaymentsFilter) where(startAt int) (string, []any) {
	where := []string{"1=1"}
	var args []any
	i := startAt

	if f.StudentID != nil {
		where = append(where, fmt.Sprintf("student_id = $%d", i))
		args = append(args, *f.StudentID)
		i++
	}
	if f.ClassID != nil {
		where = append(where, fmt.Sprintf("class_id = $%d", i))
		args = append(args, *f.ClassID)
		i++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", i))
		args = append(args, string(*f.Status))
		i++
	}
	if f.DueFrom != nil {
		where = append(where, fmt.Sprintf("due_date >= $%d", i))
		args = append(args, *f.DueFrom)
		i++
	}
	if f.DueTo != nil {
		where = append(where, fmt.Sprintf("due_date <= $%d", i))
		args = append(args, *f.DueTo)
	}
	return strings.Join(where, " AND "), args
}

func scanPayment(row rowScanner) (domain.Payment, error) {
	var (
		p                                  domain.Payment
		parentID, method, reference        sql.NullString
		processedBy                        sql.NullString
		paid, remaining, discount, lateFee sql.NullFloat64
		paidDate, processedAt              sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.StudentID, &p.ClassID, &parentID,
		&p.Amount, &p.Currency, &paid, &remaining,
		&p.Type, &p.Category, &p.Status,
		&p.DueDate, &paidDate, &discount, &lateFee,
		&p.Description, &p.Notes, &method, &reference,
		&p.CreatedBy, &processedBy, &processedAt,
		&p.CreatedAt, &p.UpdatedAt, &p.Version,
	)
	if err != nil {
		return domain.Payment{}, err
	}

	p.ParentID = stringPtr(parentID)
	p.PaidAmount = floatPtr(paid)
	p.RemainingAmount = floatPtr(remaining)
	p.Discount = floatPtr(discount)
	p.LateFee = floatPtr(lateFee)
	p.PaidDate = timePtr(paidDate)
	p.ProcessedAt = timePtr(processedAt)
	p.ProcessedBy = stringPtr(processedBy)
	p.Reference = stringPtr(reference)
	if method.Valid {
		m := domain.PaymentMethod(method.String)
		p.PaymentMethod = &m
	}
	p.DueDate = p.DueDate.UTC()
	return p, nil
}

func (r *PaymentRepository) List(ctx context.Context, f PaymentsFilter) ([]domain.Payment, error) {
	where, args := f.where(1)
	query := "SELECT " + paymentColumns + " FROM payments WHERE " + where + " ORDER BY due_date, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PaymentRepository) Get(ctx context.Context, id string) (domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE id = $1", id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Payment{}, ErrNotFound
	}
	if err != nil {
		return domain.Payment{}, fmt.Errorf("get payment %s: %w", id, err)
	}
	return p, nil
}

func (r *PaymentRepository) HasMoreThan(ctx context.Context, limit int64, f PaymentsFilter) (bool, error) {
	where, args := f.where(2)
	query := "SELECT COUNT(*) > $1 FROM payments WHERE " + where

	var tooMany bool
	if err := r.db.QueryRowContext(ctx, query, append([]any{limit}, args...)...).Scan(&tooMany); err != nil {
		return false, fmt.Errorf("count payments: %w", err)
	}
	return tooMany, nil
}

func paymentArgs(p domain.Payment) []any {
	var method sql.NullString
	if p.PaymentMethod != nil {
		method = sql.NullString{String: string(*p.PaymentMethod), Valid: true}
	}
	return []any{
		p.ID, p.StudentID, p.ClassID, nullString(p.ParentID),
		p.Amount, string(p.Currency), nullFloat(p.PaidAmount), nullFloat(p.RemainingAmount),
		string(p.Type), string(p.Category), string(p.Status),
		p.DueDate, nullTime(p.PaidDate), nullFloat(p.Discount), nullFloat(p.LateFee),
		p.Description, p.Notes, method, nullString(p.Reference),
		p.CreatedBy, nullString(p.ProcessedBy), nullTime(p.ProcessedAt),
		p.CreatedAt, p.UpdatedAt, p.Version,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p domain.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	if _, err := r.db.ExecContext(ctx, query, paymentArgs(p)...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of p and bumps its version. The row
// must still be at p.Version, otherwise ErrConflict is returned.
func (r *PaymentRepository) Update(ctx context.Context, p domain.Payment) error {
	query := `UPDATE payments SET
		student_id = $2, class_id = $3, parent_id = $4, amount = $5, currency = $6,
		paid_amount = $7, remaining_amount = $8, type = $9, category = $10, status = $11,
		due_date = $12, paid_date = $13, discount = $14, late_fee = $15, description = $16,
		notes = $17, payment_method = $18, reference = $19, created_by = $20,
		processed_by = $21, processed_at = $22, created_at = $23, updated_at = $24,
		version = version + 1
		WHERE id = $1 AND version = $25`
	res, err := r.db.ExecContext(ctx, query, paymentArgs(p)...)
	if err != nil {
		return fmt.Errorf("update payment %s: %w", p.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment %s: %w", p.ID, err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM payments WHERE id = $1)", p.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check payment %s: %w", p.ID, err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}
