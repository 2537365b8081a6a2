package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/domain"
	"classroom-ledger/internal/repository"
)

func newSyncExportService(repo PaymentRepository, cache Cache, files FileStore, n ExportNotifier) *ExportService {
	svc := NewExportService(repo, cache, files, n, fixed(day(2025, 3, 10)), "exports:")
	svc.spawn = func(f func()) { f() }
	return svc
}

func TestExportService_PaymentsWorkbook(t *testing.T) {
	paid, remaining := 1000.0, 0.0
	settled := payment("p1", "s1", "c1", 1000, domain.StatusPaid, day(2025, 2, 1))
	settled.PaidAmount, settled.RemainingAmount = &paid, &remaining

	repo := newFakePayments(
		settled,
		payment("p2", "s2", "c1", 500, domain.StatusPending, day(2025, 3, 1)),
		payment("p3", "s3", "c2", 200, domain.StatusPending, day(2025, 4, 1)),
	)
	cache := newFakeCache()
	files := &memFiles{}
	notifier := &recordingNotifier{}
	svc := newSyncExportService(repo, cache, files, notifier)
	ctx := context.Background()

	key, err := svc.StartPaymentsExport(ctx, []string{"id", "status", "remaining_amount"}, repository.PaymentsFilter{}, "staff-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "exports:"))

	require.Len(t, files.saved, 1)
	var data []byte
	for _, d := range files.saved {
		data = d
	}
	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Payments")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"ID", "Status", "Remaining"}, rows[0])
	assert.Equal(t, []string{"p2", "overdue", "500"}, rows[2], "exported status is the effective one")

	overview, err := book.GetRows("Overview")
	require.NoError(t, err)
	require.Len(t, overview, 3)
	assert.Equal(t, "c1", overview[1][0])
	assert.Equal(t, "2", overview[1][1])

	view, err := svc.GetExport(ctx, key, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, view.Progress)
	require.NotNil(t, view.FileURL)
	assert.Equal(t, "/files/payments_20250310_000000.xlsx", *view.FileURL)
	assert.Equal(t, "now", view.CreatedAgo)

	assert.Equal(t, []string{"/files/payments_20250310_000000.xlsx"}, notifier.completed)
	assert.Equal(t, 100.0, notifier.progress[len(notifier.progress)-1])

	_, err = svc.GetExport(ctx, key, "someone-else")
	assert.ErrorIs(t, err, ErrExportNotFound)
}

func TestExportService_UploadFailure(t *testing.T) {
	repo := newFakePayments(payment("p1", "s1", "c1", 10, domain.StatusPending, day(2025, 4, 1)))
	cache := newFakeCache()
	notifier := &recordingNotifier{}
	svc := newSyncExportService(repo, cache, &memFiles{saveErr: errors.New("disk full")}, notifier)
	ctx := context.Background()

	key, err := svc.StartPaymentsExport(ctx, nil, repository.PaymentsFilter{}, "staff-1")
	require.NoError(t, err)

	view, err := svc.GetExport(ctx, key, "staff-1")
	require.NoError(t, err)
	require.NotNil(t, view.Error)
	assert.Contains(t, *view.Error, "disk full")
	assert.Nil(t, view.FileURL)
	require.Len(t, notifier.failed, 1)
}

func TestExportService_RejectsBadRequests(t *testing.T) {
	repo := newFakePayments()
	svc := newSyncExportService(repo, newFakeCache(), &memFiles{}, nil)
	ctx := context.Background()

	_, err := svc.StartPaymentsExport(ctx, []string{"id", "secret"}, repository.PaymentsFilter{}, "u")
	var ve *aggregate.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "fields", ve.Field)

	repo.tooMany = true
	_, err = svc.StartPaymentsExport(ctx, nil, repository.PaymentsFilter{}, "u")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "filter", ve.Field)
}

func TestExportService_ListsOwnExportsNewestFirst(t *testing.T) {
	cache := newFakeCache()
	svc := newSyncExportService(newFakePayments(), cache, &memFiles{}, nil)
	ctx := context.Background()

	for _, st := range []ExportStatus{
		{Key: "exports:a", UserID: "u1", Created: day(2025, 3, 1)},
		{Key: "exports:b", UserID: "u1", Created: day(2025, 3, 9)},
		{Key: "exports:c", UserID: "u2", Created: day(2025, 3, 5)},
	} {
		svc.saveStatus(ctx, &st)
	}
	require.NoError(t, cache.SAdd(ctx, exportSetKey, "exports:expired"))

	views, err := svc.GetExports(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "exports:b", views[0].Key)
	assert.Equal(t, "1 day ago", views[0].CreatedAgo)
	assert.Equal(t, "exports:a", views[1].Key)

	members, _ := cache.SMembers(ctx, exportSetKey)
	assert.NotContains(t, members, "exports:expired")
}
