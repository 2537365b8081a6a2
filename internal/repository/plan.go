package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"classroom-ledger/internal/domain"
)

type PlanRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `id, student_id, class_id, total_amount, currency, category, status, created_at, updated_at`

func scanPlan(row rowScanner) (domain.PaymentPlan, error) {
	var p domain.PaymentPlan
	err := row.Scan(&p.ID, &p.StudentID, &p.ClassID, &p.TotalAmount, &p.Currency, &p.Category, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PlanRepository) Get(ctx context.Context, id string) (domain.PaymentPlan, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+planColumns+" FROM payment_plans WHERE id = $1", id)
	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PaymentPlan{}, ErrNotFound
	}
	if err != nil {
		return domain.PaymentPlan{}, fmt.Errorf("get plan %s: %w", id, err)
	}
	if plan.Installments, err = r.installments(ctx, plan.ID); err != nil {
		return domain.PaymentPlan{}, err
	}
	return plan, nil
}

// ForStudent returns the most recent plan of a student that is not cancelled.
func (r *PlanRepository) ForStudent(ctx context.Context, studentID string) (*domain.PaymentPlan, error) {
	query := "SELECT " + planColumns + ` FROM payment_plans
		WHERE student_id = $1 AND status <> $2
		ORDER BY created_at DESC LIMIT 1`
	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, studentID, string(domain.PlanCancelled)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("plan for student %s: %w", studentID, err)
	}
	if plan.Installments, err = r.installments(ctx, plan.ID); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) installments(ctx context.Context, planID string) ([]domain.PaymentInstallment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, plan_id, number, amount, due_date, status,
		paid_amount, remaining_amount, paid_date, payment_id
		FROM payment_installments WHERE plan_id = $1 ORDER BY number`, planID)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentInstallment
	for rows.Next() {
		var (
			in              domain.PaymentInstallment
			paid, remaining sql.NullFloat64
			paidDate        sql.NullTime
			paymentID       sql.NullString
		)
		if err := rows.Scan(&in.ID, &in.PlanID, &in.Number, &in.Amount, &in.DueDate, &in.Status,
			&paid, &remaining, &paidDate, &paymentID); err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		in.DueDate = in.DueDate.UTC()
		in.PaidAmount = floatPtr(paid)
		in.RemainingAmount = floatPtr(remaining)
		in.PaidDate = timePtr(paidDate)
		in.PaymentID = stringPtr(paymentID)
		out = append(out, in)
	}
	return out, rows.Err()
}

// Save upserts the plan and all of its installments in one transaction.
func (r *PlanRepository) Save(ctx context.Context, plan domain.PaymentPlan) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO payment_plans (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
		plan.ID, plan.StudentID, plan.ClassID, plan.TotalAmount, string(plan.Currency),
		string(plan.Category), string(plan.Status), plan.CreatedAt, plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert plan %s: %w", plan.ID, err)
	}

	for _, in := range plan.Installments {
		_, err = tx.ExecContext(ctx, `INSERT INTO payment_installments
			(id, plan_id, number, amount, due_date, status, paid_amount, remaining_amount, paid_date, payment_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, paid_amount = EXCLUDED.paid_amount,
				remaining_amount = EXCLUDED.remaining_amount, paid_date = EXCLUDED.paid_date,
				payment_id = EXCLUDED.payment_id`,
			in.ID, plan.ID, in.Number, in.Amount, in.DueDate, string(in.Status),
			nullFloat(in.PaidAmount), nullFloat(in.RemainingAmount), nullTime(in.PaidDate), nullString(in.PaymentID))
		if err != nil {
			return fmt.Errorf("upsert installment %d: %w", in.Number, err)
		}
	}
	return tx.Commit()
}
