package service

import (
	"context"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/domain"
)

type PlanService struct {
	repo  PlanRepository
	cache Cache
	now   Clock
}

func NewPlanService(repo PlanRepository, cache Cache, now Clock) *PlanService {
	if now == nil {
		now = SystemClock
	}
	return &PlanService{repo: repo, cache: cache, now: now}
}

func (s *PlanService) Create(ctx context.Context, in aggregate.NewPlanInput) (domain.PaymentPlan, error) {
	now := s.now()
	plan, err := aggregate.NewPlan(in, now)
	if err != nil {
		return domain.PaymentPlan{}, err
	}
	if err := s.repo.Save(ctx, plan); err != nil {
		return domain.PaymentPlan{}, err
	}
	s.dropStudentSummary(ctx, plan.StudentID)
	return plan, nil
}

// Get returns the plan with overdue installments and derived totals refreshed.
func (s *PlanService) Get(ctx context.Context, id string) (domain.PaymentPlan, error) {
	plan, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.PaymentPlan{}, err
	}
	return aggregate.RefreshPlan(plan, s.now()), nil
}

func (s *PlanService) PayInstallment(ctx context.Context, planID string, number int, paymentID *string) (domain.PaymentPlan, error) {
	plan, err := s.repo.Get(ctx, planID)
	if err != nil {
		return domain.PaymentPlan{}, err
	}
	updated, err := aggregate.PayInstallment(plan, number, paymentID, s.now())
	if err != nil {
		return domain.PaymentPlan{}, err
	}
	if err := s.repo.Save(ctx, updated); err != nil {
		return domain.PaymentPlan{}, err
	}
	s.dropStudentSummary(ctx, updated.StudentID)
	return updated, nil
}

func (s *PlanService) dropStudentSummary(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, summaryKey("student", studentID, s.now()))
}
