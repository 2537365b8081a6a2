package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/domain"
	"classroom-ledger/internal/repository"
	"classroom-ledger/internal/service"
)

type PaymentService interface {
	StudentSummary(ctx context.Context, studentID string) (domain.StudentPaymentSummary, error)
	ClassOverview(ctx context.Context, classID string) (domain.ClassPaymentOverview, error)
	Stats(ctx context.Context, f repository.PaymentsFilter) (domain.PaymentStats, error)
	Get(ctx context.Context, id string) (domain.Payment, error)
	Create(ctx context.Context, in aggregate.NewPaymentInput, createdBy string) (domain.Payment, error)
	Process(ctx context.Context, id string, in service.ProcessInput, processedBy string) (domain.Payment, error)
	Edit(ctx context.Context, id string, edits aggregate.PaymentEdit) (domain.Payment, error)
}

type PlanService interface {
	Create(ctx context.Context, in aggregate.NewPlanInput) (domain.PaymentPlan, error)
	Get(ctx context.Context, id string) (domain.PaymentPlan, error)
	PayInstallment(ctx context.Context, planID string, number int, paymentID *string) (domain.PaymentPlan, error)
}

type PostService interface {
	Stats(ctx context.Context, classID string) (domain.PostStats, error)
	StudentEngagement(ctx context.Context, classID string) ([]domain.EngagementScore, error)
	ClassEngagement(ctx context.Context) ([]domain.EngagementScore, error)
}

type ReminderService interface {
	Reminders(ctx context.Context, classID string) ([]domain.PaymentReminder, error)
}

type ExportService interface {
	StartPaymentsExport(ctx context.Context, fields []string, filter repository.PaymentsFilter, userID string) (string, error)
	GetExports(ctx context.Context, userID string) ([]service.ExportView, error)
	GetExport(ctx context.Context, exportID, userID string) (service.ExportView, error)
}

type Handler struct {
	payments  PaymentService
	plans     PlanService
	posts     PostService
	reminders ReminderService
	exports   ExportService
}

func NewHandler(payments PaymentService, plans PlanService, posts PostService, reminders ReminderService, exports ExportService) *Handler {
	return &Handler{
		payments:  payments,
		plans:     plans,
		posts:     posts,
		reminders: reminders,
		exports:   exports,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	return h.InitRouterWithAuth(nil)
}

func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	if authMiddleware != nil {
		r.Use(authMiddleware)
	}

	r.Get("/students/{student_id}/summary", h.studentSummary)

	r.Route("/classes/{class_id}", func(r chi.Router) {
		r.Get("/overview", h.classOverview)
		r.Get("/reminders", h.classReminders)
		r.Get("/posts/stats", h.postStats)
		r.Get("/engagement", h.studentEngagement)
	})
	r.Get("/engagement/classes", h.classEngagement)

	r.Route("/payments", func(r chi.Router) {
		r.Get("/stats", h.paymentStats)
		r.Post("/", h.createPayment)
		r.Get("/{payment_id}", h.getPayment)
		r.Patch("/{payment_id}", h.editPayment)
		r.Post("/{payment_id}/process", h.processPayment)
	})

	r.Route("/plans", func(r chi.Router) {
		r.Post("/", h.createPlan)
		r.Get("/{plan_id}", h.getPlan)
		r.Post("/{plan_id}/installments/{number}/pay", h.payInstallment)
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/", h.listExports)
		r.Get("/{export_id}", h.getExport)
		r.Post("/payments", h.exportPayments)
	})

	return r
}
