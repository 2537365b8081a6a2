package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/domain"
	"classroom-ledger/internal/repository"
)

const processAttempts = 3

type PaymentService struct {
	repo     PaymentRepository
	plans    PlanRepository
	cache    Cache
	notifier PaymentNotifier
	now      Clock
	ttl      time.Duration
}

func NewPaymentService(repo PaymentRepository, plans PlanRepository, cache Cache, notifier PaymentNotifier, now Clock, ttl time.Duration) *PaymentService {
	if now == nil {
		now = SystemClock
	}
	return &PaymentService{repo: repo, plans: plans, cache: cache, notifier: notifier, now: now, ttl: ttl}
}

// ProcessInput is a collection against an existing payment.
type ProcessInput struct {
	PaidAmount float64               `json:"paidAmount"`
	Method     *domain.PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=cash card transfer check online"`
	Reference  *string               `json:"reference" validate:"omitempty,max=120"`
}

func summaryKey(scope, id string, now time.Time) string {
	return fmt.Sprintf("summary:%s:%s:%s", scope, id, now.Format("2006-01-02"))
}

// cached serves key from the cache or fills it with build.
func cached[T any](ctx context.Context, c Cache, key string, ttl time.Duration, build func() (T, error)) (T, error) {
	var v T
	if c != nil {
		if err := c.GetJSON(ctx, key, &v); err == nil {
			return v, nil
		}
	}
	v, err := build()
	if err != nil {
		return v, err
	}
	if c != nil && ttl > 0 {
		if err := c.SetJSON(ctx, key, v, ttl); err != nil {
			log.Printf("[CACHE] set %s: %v", key, err)
		}
	}
	return v, nil
}

func (s *PaymentService) invalidate(ctx context.Context, p domain.Payment, now time.Time) {
	if s.cache == nil {
		return
	}
	keys := []string{summaryKey("student", p.StudentID, now), summaryKey("class", p.ClassID, now)}
	if err := s.cache.Del(ctx, keys...); err != nil {
		log.Printf("[CACHE] invalidate %v: %v", keys, err)
	}
}

func (s *PaymentService) StudentSummary(ctx context.Context, studentID string) (domain.StudentPaymentSummary, error) {
	now := s.now()
	return cached(ctx, s.cache, summaryKey("student", studentID, now), s.ttl, func() (domain.StudentPaymentSummary, error) {
		payments, err := s.repo.List(ctx, repository.PaymentsFilter{StudentID: &studentID})
		if err != nil {
			return domain.StudentPaymentSummary{}, err
		}
		var plan *domain.PaymentPlan
		if s.plans != nil {
			if plan, err = s.plans.ForStudent(ctx, studentID); err != nil {
				return domain.StudentPaymentSummary{}, err
			}
		}
		summary := aggregate.SummarizeStudent(payments, plan, now)
		summary.StudentID = studentID
		return summary, nil
	})
}

func (s *PaymentService) ClassOverview(ctx context.Context, classID string) (domain.ClassPaymentOverview, error) {
	now := s.now()
	return cached(ctx, s.cache, summaryKey("class", classID, now), s.ttl, func() (domain.ClassPaymentOverview, error) {
		payments, err := s.repo.List(ctx, repository.PaymentsFilter{ClassID: &classID})
		if err != nil {
			return domain.ClassPaymentOverview{}, err
		}
		overview := aggregate.SummarizeClass(payments, now)
		overview.ClassID = classID
		return overview, nil
	})
}

func (s *PaymentService) Stats(ctx context.Context, f repository.PaymentsFilter) (domain.PaymentStats, error) {
	payments, err := s.repo.List(ctx, f)
	if err != nil {
		return domain.PaymentStats{}, err
	}
	return aggregate.Stats(payments, s.now()), nil
}

// Get returns the payment with its effective status.
func (s *PaymentService) Get(ctx context.Context, id string) (domain.Payment, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}
	return aggregate.RefreshStatus(p, s.now()), nil
}

func (s *PaymentService) Create(ctx context.Context, in aggregate.NewPaymentInput, createdBy string) (domain.Payment, error) {
	now := s.now()
	p, err := aggregate.NewPayment(in, createdBy, now)
	if err != nil {
		return domain.Payment{}, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return domain.Payment{}, err
	}
	s.invalidate(ctx, p, now)
	return p, nil
}

// Process records a collection against payment id. A collection that races
// another one is re-applied to the fresh row, so it is checked against the
// amount actually left.
func (s *PaymentService) Process(ctx context.Context, id string, in ProcessInput, processedBy string) (domain.Payment, error) {
	if err := aggregate.Validator().Struct(in); err != nil {
		return domain.Payment{}, err
	}
	now := s.now()

	var (
		updated domain.Payment
		err     error
	)
	for attempt := 1; ; attempt++ {
		updated, err = s.collect(ctx, id, in, processedBy, now)
		if errors.Is(err, repository.ErrConflict) && attempt < processAttempts {
			log.Printf("[PAYMENT] %s changed while processing, retrying (%d/%d)", id, attempt, processAttempts)
			continue
		}
		if err != nil {
			return domain.Payment{}, err
		}
		break
	}
	s.invalidate(ctx, updated, now)

	if s.notifier != nil {
		if err := s.notifier.NotifyPaymentProcessed(ctx, updated); err != nil {
			log.Printf("[PAYMENT] notify %s: %v", updated.ID, err)
		}
	}
	return updated, nil
}

// collect is one read-recompute-write round of Process.
func (s *PaymentService) collect(ctx context.Context, id string, in ProcessInput, processedBy string, now time.Time) (domain.Payment, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}

	updated, err := aggregate.RecomputeOnProcess(current, in.PaidAmount, processedBy, now)
	if err != nil {
		return domain.Payment{}, err
	}
	if in.Method != nil {
		updated.PaymentMethod = in.Method
	}
	if in.Reference != nil {
		updated.Reference = in.Reference
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return domain.Payment{}, err
	}
	updated.Version++
	return updated, nil
}

// Edit applies edits to payment id. It fails with repository.ErrConflict when
// the payment changed since it was read.
func (s *PaymentService) Edit(ctx context.Context, id string, edits aggregate.PaymentEdit) (domain.Payment, error) {
	now := s.now()
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}

	updated, err := aggregate.RecomputeOnEdit(current, edits, now)
	if err != nil {
		return domain.Payment{}, err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return domain.Payment{}, err
	}
	updated.Version++

	s.invalidate(ctx, updated, now)
	return updated, nil
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
