package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"classroom-ledger/internal/domain"
	"classroom-ledger/internal/repository"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

type fakePayments struct {
	mu      sync.Mutex
	byID    map[string]domain.Payment
	lists   int
	tooMany bool
	listErr error
}

func newFakePayments(ps ...domain.Payment) *fakePayments {
	f := &fakePayments{byID: make(map[string]domain.Payment)}
	for _, p := range ps {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakePayments) List(_ context.Context, flt repository.PaymentsFilter) ([]domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Payment
	for _, p := range f.byID {
		if flt.StudentID != nil && p.StudentID != *flt.StudentID {
			continue
		}
		if flt.ClassID != nil && p.ClassID != *flt.ClassID {
			continue
		}
		if flt.Status != nil && p.Status != *flt.Status {
			continue
		}
		if flt.DueTo != nil && p.DueDate.After(*flt.DueTo) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePayments) Get(_ context.Context, id string) (domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return domain.Payment{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakePayments) Create(_ context.Context, p domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[p.ID] = p
	return nil
}

func (f *fakePayments) Update(_ context.Context, p domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != p.Version {
		return repository.ErrConflict
	}
	p.Version++
	f.byID[p.ID] = p
	return nil
}

func (f *fakePayments) HasMoreThan(context.Context, int64, repository.PaymentsFilter) (bool, error) {
	return f.tooMany, nil
}

type fakePlans struct {
	byID map[string]domain.PaymentPlan
}

func (f *fakePlans) Get(_ context.Context, id string) (domain.PaymentPlan, error) {
	p, ok := f.byID[id]
	if !ok {
		return domain.PaymentPlan{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakePlans) ForStudent(_ context.Context, studentID string) (*domain.PaymentPlan, error) {
	for _, p := range f.byID {
		if p.StudentID == studentID && p.Status != domain.PlanCancelled {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakePlans) Save(_ context.Context, plan domain.PaymentPlan) error {
	if f.byID == nil {
		f.byID = make(map[string]domain.PaymentPlan)
	}
	f.byID[plan.ID] = plan
	return nil
}

type fakePosts struct {
	posts []domain.Post
}

func (f *fakePosts) List(_ context.Context, classID string) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range f.posts {
		if classID == "" || p.ClassID == classID {
			out = append(out, p)
		}
	}
	return out, nil
}

var errMiss = errors.New("miss")

type fakeCache struct {
	mu     sync.Mutex
	kv     map[string][]byte
	sets   map[string]map[string]struct{}
	dels   []string
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{kv: make(map[string][]byte), sets: make(map[string]map[string]struct{})}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dst any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.kv[key]
	if !ok {
		return errMiss
	}
	return json.Unmarshal(data, dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kv[key] = data
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.kv, k)
		c.dels = append(c.dels, k)
	}
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.kv[key]
	return ok
}

func (c *fakeCache) SAdd(_ context.Context, key string, members ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	if c.sets[key] == nil {
		c.sets[key] = make(map[string]struct{})
	}
	for _, m := range members {
		c.sets[key][fmt.Sprint(m)] = struct{}{}
	}
	return nil
}

func (c *fakeCache) SRem(_ context.Context, key string, members ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	for _, m := range members {
		delete(c.sets[key], fmt.Sprint(m))
	}
	return nil
}

func (c *fakeCache) SMembers(_ context.Context, key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for m := range c.sets[key] {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

func (c *fakeCache) SIsMember(_ context.Context, key string, member any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sets[key][fmt.Sprint(member)]
	return ok, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	processed []domain.Payment
	progress  []float64
	completed []string
	failed    []string
}

func (n *recordingNotifier) NotifyPaymentProcessed(_ context.Context, p domain.Payment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.processed = append(n.processed, p)
	return nil
}

func (n *recordingNotifier) NotifyExportProgress(_ context.Context, _, _ string, progress float64, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.progress = append(n.progress, progress)
	return nil
}

func (n *recordingNotifier) NotifyExportComplete(_ context.Context, _, exportID, url, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, url)
	return nil
}

func (n *recordingNotifier) NotifyExportFailed(_ context.Context, _, _, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, msg)
	return nil
}

type fakeSender struct {
	sent    []domain.PaymentReminder
	failFor map[string]bool
}

func (s *fakeSender) SendReminder(_ context.Context, r domain.PaymentReminder) error {
	if s.failFor[r.PaymentID] {
		return errors.New("gateway unavailable")
	}
	s.sent = append(s.sent, r)
	return nil
}

type memFiles struct {
	saved   map[string][]byte
	saveErr error
}

func (m *memFiles) Save(_ context.Context, name string, data []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[name] = data
	return name, nil
}

func (m *memFiles) URL(_ context.Context, name string) (string, error) {
	return "/files/" + name, nil
}

func payment(id, student, class string, amount float64, status domain.PaymentStatus, due time.Time) domain.Payment {
	return domain.Payment{
		ID: id, StudentID: student, ClassID: class, Amount: amount,
		Currency: domain.CurrencyDZD, Type: domain.TypeTuition, Category: domain.CategoryMonthly,
		Status: status, DueDate: due,
	}
}
