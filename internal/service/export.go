package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/domain"
	"classroom-ledger/internal/repository"
)

const (
	exportSetKey = "export_ids"
	exportTTL    = 20 * time.Minute

	maxPaymentsForExport = 500_000
	progressChunk        = 1000
)

// ErrExportNotFound is returned for unknown, expired or foreign exports.
var ErrExportNotFound = errors.New("export not found")

// ExportStatus is the progress record kept in the cache for each export.
type ExportStatus struct {
	Key      string         `json:"key"`
	Type     string         `json:"type"`
	UserID   string         `json:"user_id"`
	Filters  map[string]any `json:"filters"`
	Progress float64        `json:"progress"`
	FileURL  *string        `json:"file_url"`
	FileName string         `json:"file_name,omitempty"`
	Error    *string        `json:"error,omitempty"`
	Created  time.Time      `json:"created_at"`
}

// ExportView is an ExportStatus as listed to its owner.
type ExportView struct {
	ExportStatus
	CreatedAgo string `json:"created_ago"`
}

type PaymentColumn struct {
	Header string
	Value  func(p domain.Payment) any
}

func optFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func optString(v *string) any {
	if v == nil {
		return ""
	}
	return *v
}

func optTime(v *time.Time) any {
	if v == nil {
		return ""
	}
	return v.Format("2006-01-02 15:04:05")
}

var paymentColumns = map[string]PaymentColumn{
	"id":               {Header: "ID", Value: func(p domain.Payment) any { return p.ID }},
	"student_id":       {Header: "Student", Value: func(p domain.Payment) any { return p.StudentID }},
	"class_id":         {Header: "Class", Value: func(p domain.Payment) any { return p.ClassID }},
	"parent_id":        {Header: "Parent", Value: func(p domain.Payment) any { return optString(p.ParentID) }},
	"amount":           {Header: "Amount", Value: func(p domain.Payment) any { return p.Amount }},
	"currency":         {Header: "Currency", Value: func(p domain.Payment) any { return string(p.Currency) }},
	"paid_amount":      {Header: "Paid", Value: func(p domain.Payment) any { return p.Paid() }},
	"remaining_amount": {Header: "Remaining", Value: func(p domain.Payment) any { return p.Remaining() }},
	"type":             {Header: "Type", Value: func(p domain.Payment) any { return string(p.Type) }},
	"category":         {Header: "Category", Value: func(p domain.Payment) any { return string(p.Category) }},
	"status":           {Header: "Status", Value: func(p domain.Payment) any { return string(p.Status) }},
	"due_date":         {Header: "Due date", Value: func(p domain.Payment) any { return p.DueDate.Format("2006-01-02") }},
	"paid_date":        {Header: "Paid date", Value: func(p domain.Payment) any { return optTime(p.PaidDate) }},
	"discount":         {Header: "Discount", Value: func(p domain.Payment) any { return optFloat(p.Discount) }},
	"late_fee":         {Header: "Late fee", Value: func(p domain.Payment) any { return optFloat(p.LateFee) }},
	"payment_method": {Header: "Method", Value: func(p domain.Payment) any {
		if p.PaymentMethod == nil {
			return ""
		}
		return string(*p.PaymentMethod)
	}},
	"reference":   {Header: "Reference", Value: func(p domain.Payment) any { return optString(p.Reference) }},
	"description": {Header: "Description", Value: func(p domain.Payment) any { return p.Description }},
	"created_at":  {Header: "Created", Value: func(p domain.Payment) any { return p.CreatedAt.Format("2006-01-02 15:04:05") }},
}

var defaultPaymentFields = []string{
	"id", "student_id", "class_id", "amount", "currency", "paid_amount", "remaining_amount",
	"type", "category", "status", "due_date", "paid_date",
}

type ExportService struct {
	repo     PaymentRepository
	cache    Cache
	files    FileStore
	notifier ExportNotifier
	now      Clock
	prefix   string

	spawn func(func())
}

func NewExportService(repo PaymentRepository, cache Cache, files FileStore, notifier ExportNotifier, now Clock, prefix string) *ExportService {
	if now == nil {
		now = SystemClock
	}
	if prefix == "" {
		prefix = "exports:"
	}
	return &ExportService{
		repo:     repo,
		cache:    cache,
		files:    files,
		notifier: notifier,
		now:      now,
		prefix:   prefix,
		spawn:    func(f func()) { go f() },
	}
}

// Key turns a bare export id into its cache key.
func (s *ExportService) Key(exportID string) string {
	if strings.HasPrefix(exportID, s.prefix) {
		return exportID
	}
	return s.prefix + exportID
}

func (s *ExportService) saveStatus(ctx context.Context, st *ExportStatus) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, st.Key, st, exportTTL); err != nil {
		log.Printf("[EXPORT] save status %s: %v", st.Key, err)
		return
	}
	if err := s.cache.SAdd(ctx, exportSetKey, st.Key); err != nil {
		log.Printf("[EXPORT] index status %s: %v", st.Key, err)
	}
}

func (s *ExportService) progress(ctx context.Context, st *ExportStatus, progress float64, stage string) {
	st.Progress = progress
	s.saveStatus(ctx, st)
	if s.notifier != nil {
		_ = s.notifier.NotifyExportProgress(ctx, st.UserID, st.Key, progress, stage)
	}
}

func (s *ExportService) fail(ctx context.Context, st *ExportStatus, err error) {
	msg := err.Error()
	log.Printf("[EXPORT] %s failed: %s", st.Key, msg)
	st.Error = &msg
	st.Progress = 100
	s.saveStatus(ctx, st)
	if s.notifier != nil {
		_ = s.notifier.NotifyExportFailed(ctx, st.UserID, st.Key, msg)
	}
}

// StartPaymentsExport validates the request, records a queued export and
// builds the workbook in the background. It returns the export key.
func (s *ExportService) StartPaymentsExport(ctx context.Context, fields []string, filter repository.PaymentsFilter, userID string) (string, error) {
	if s.files == nil {
		return "", errors.New("file storage not configured")
	}
	if len(fields) == 0 {
		fields = defaultPaymentFields
	}
	for _, f := range fields {
		if _, ok := paymentColumns[f]; !ok {
			return "", &aggregate.ValidationError{Field: "fields", Message: fmt.Sprintf("unknown column %q", f)}
		}
	}

	tooMany, err := s.repo.HasMoreThan(ctx, maxPaymentsForExport, filter)
	if err != nil {
		return "", err
	}
	if tooMany {
		return "", &aggregate.ValidationError{
			Field:   "filter",
			Message: fmt.Sprintf("too many payments to export (more than %d)", maxPaymentsForExport),
		}
	}

	st := &ExportStatus{
		Key:     s.Key(uuid.NewString()),
		Type:    "payments",
		UserID:  userID,
		Filters: paymentFiltersMap(filter, fields),
		Created: s.now(),
	}
	s.saveStatus(ctx, st)

	s.spawn(func() { s.runPaymentsExport(context.Background(), st, fields, filter) })
	return st.Key, nil
}

func (s *ExportService) runPaymentsExport(ctx context.Context, st *ExportStatus, fields []string, filter repository.PaymentsFilter) {
	now := s.now()
	payments, err := s.repo.List(ctx, filter)
	if err != nil {
		s.fail(ctx, st, fmt.Errorf("load payments: %w", err))
		return
	}
	for i := range payments {
		payments[i] = aggregate.RefreshStatus(payments[i], now)
	}

	data, err := s.buildWorkbook(ctx, st, fields, payments, now)
	if err != nil {
		s.fail(ctx, st, err)
		return
	}

	s.progress(ctx, st, 95, "uploading")
	fileName := fmt.Sprintf("payments_%s.xlsx", now.Format("20060102_150405"))
	stored, err := s.files.Save(ctx, fileName, data)
	if err != nil {
		s.fail(ctx, st, fmt.Errorf("save export: %w", err))
		return
	}
	url, err := s.files.URL(ctx, stored)
	if err != nil {
		s.fail(ctx, st, fmt.Errorf("resolve export url: %w", err))
		return
	}

	st.FileURL = &url
	st.FileName = fileName
	s.progress(ctx, st, 100, "ready")
	if s.notifier != nil {
		_ = s.notifier.NotifyExportComplete(ctx, st.UserID, st.Key, url, fileName)
	}
	log.Printf("[EXPORT] %s ready: %d payments", st.Key, len(payments))
}

func (s *ExportService) buildWorkbook(ctx context.Context, st *ExportStatus, fields []string, payments []domain.Payment, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Payments"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	_ = f.SetDocProps(&excelize.DocProperties{Creator: "user_" + st.UserID, Created: now.Format(time.RFC3339)})

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	cols := make([]PaymentColumn, len(fields))
	for i, key := range fields {
		cols[i] = paymentColumns[key]
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, cols[i].Header)
	}
	if last, err := excelize.CoordinatesToCellName(len(cols), 1); err == nil {
		_ = f.SetCellStyle(sheet, "A1", last, header)
	}

	total := len(payments)
	for i, p := range payments {
		for c, col := range cols {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+2)
			_ = f.SetCellValue(sheet, cell, col.Value(p))
		}
		if (i+1)%progressChunk == 0 || i == total-1 {
			// 95 and above is reserved for the upload
			s.progress(ctx, st, min(94, math.Round(float64(i+1)/float64(total)*100)), "generating")
		}
	}

	if err := writeOverview(f, payments, now, header); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeOverview adds one row per class summarising the exported payments.
func writeOverview(f *excelize.File, payments []domain.Payment, now time.Time, header int) error {
	const sheet = "Overview"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	byClass := make(map[string][]domain.Payment)
	for _, p := range payments {
		byClass[p.ClassID] = append(byClass[p.ClassID], p)
	}
	classes := make([]string, 0, len(byClass))
	for id := range byClass {
		classes = append(classes, id)
	}
	slices.Sort(classes)

	headers := []any{"Class", "Students", "With overdue", "Due", "Paid", "Pending", "Overdue", "Collection rate %", "Avg delay (days)"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	_ = f.SetCellStyle(sheet, "A1", "I1", header)

	for i, id := range classes {
		o := aggregate.SummarizeClass(byClass[id], now)
		row := []any{
			id, o.TotalStudents, o.StudentsWithOverdue, o.TotalDue, o.TotalPaid,
			o.TotalPending, o.TotalOverdue, math.Round(o.CollectionRate*100) / 100, o.AveragePaymentDelay,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func paymentFiltersMap(f repository.PaymentsFilter, fields []string) map[string]any {
	m := map[string]any{"fields": fields}
	if f.StudentID != nil {
		m["student_id"] = *f.StudentID
	}
	if f.ClassID != nil {
		m["class_id"] = *f.ClassID
	}
	if f.Status != nil {
		m["status"] = string(*f.Status)
	}
	if f.DueFrom != nil {
		m["due_from"] = f.DueFrom.Format("2006-01-02")
	}
	if f.DueTo != nil {
		m["due_to"] = f.DueTo.Format("2006-01-02")
	}
	return m
}

func (s *ExportService) view(st ExportStatus) ExportView {
	return ExportView{ExportStatus: st, CreatedAgo: humanize.RelTime(st.Created, s.now(), "ago", "from now")}
}

// GetExports lists the caller's exports, newest first. Expired entries are pruned from the index.
func (s *ExportService) GetExports(ctx context.Context, userID string) ([]ExportView, error) {
	if s.cache == nil {
		return nil, errors.New("cache not configured")
	}
	keys, err := s.cache.SMembers(ctx, exportSetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get export keys: %w", err)
	}

	var statuses []ExportStatus
	for _, key := range keys {
		var st ExportStatus
		if err := s.cache.GetJSON(ctx, key, &st); err != nil {
			_ = s.cache.SRem(ctx, exportSetKey, key)
			continue
		}
		if st.UserID == userID {
			statuses = append(statuses, st)
		}
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})

	out := make([]ExportView, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, s.view(st))
	}
	return out, nil
}

func (s *ExportService) GetExport(ctx context.Context, exportID, userID string) (ExportView, error) {
	if s.cache == nil {
		return ExportView{}, errors.New("cache not configured")
	}
	var st ExportStatus
	if err := s.cache.GetJSON(ctx, s.Key(exportID), &st); err != nil {
		return ExportView{}, ErrExportNotFound
	}
	if st.UserID != userID {
		return ExportView{}, ErrExportNotFound
	}
	return s.view(st), nil
}
