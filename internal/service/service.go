package service

import (
	"context"
	"time"

	"classroom-ledger/internal/domain"
	"classroom-ledger/internal/repository"
)

type PaymentRepository interface {
	List(ctx context.Context, f repository.PaymentsFilter) ([]domain.Payment, error)
	Get(ctx context.Context, id string) (domain.Payment, error)
	Create(ctx context.Context, p domain.Payment) error
	Update(ctx context.Context, p domain.Payment) error
	HasMoreThan(ctx context.Context, limit int64, f repository.PaymentsFilter) (bool, error)
}

type PlanRepository interface {
	Get(ctx context.Context, id string) (domain.PaymentPlan, error)
	ForStudent(ctx context.Context, studentID string) (*domain.PaymentPlan, error)
	Save(ctx context.Context, plan domain.PaymentPlan) error
}

type PostRepository interface {
	List(ctx context.Context, classID string) ([]domain.Post, error)
}

// Cache is the subset of the redis client the services rely on.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key string, members ...any) error
	SRem(ctx context.Context, key string, members ...any) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SIsMember(ctx context.Context, key string, member any) (bool, error)
}

type PaymentNotifier interface {
	NotifyPaymentProcessed(ctx context.Context, p domain.Payment) error
}

type ReminderSender interface {
	SendReminder(ctx context.Context, r domain.PaymentReminder) error
}

type ExportNotifier interface {
	NotifyExportProgress(ctx context.Context, userID, exportID string, progress float64, stage string) error
	NotifyExportComplete(ctx context.Context, userID, exportID, url, filename string) error
	NotifyExportFailed(ctx context.Context, userID, exportID, errMsg string) error
}

// FileStore persists generated files and resolves download links for them.
type FileStore interface {
	Save(ctx context.Context, fileName string, data []byte) (string, error)
	URL(ctx context.Context, name string) (string, error)
}

// Clock returns the current instant. Services take one so tests can pin time.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}
