package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoodis/product-management-system/internal/feed"
	"github.com/agoodis/product-management-system/internal/model"
)

func newTestImportService(t *testing.T) (ImportService, *memProductRepo, *memImportLogRepo) {
	t.Helper()
	products := newMemProductRepo()
	logs := newMemImportLogRepo()
	svc := NewImportService(NewReconciler(products), logs, nil)
	return svc, products, logs
}

func openerFor(rows ...feed.Row) feed.Opener {
	return func() (feed.Feed, error) {
		return feed.NewSliceFeed(rows...), nil
	}
}

func TestImportRunSuccess(t *testing.T) {
	svc, products, _ := newTestImportService(t)
	ctx := context.Background()

	run, err := svc.Run(ctx, model.SourceERP, "erp.xlsx", openerFor(
		erpRow("123"),
		erpRow("456"),
	))
	require.NoError(t, err)

	assert.Equal(t, model.ImportSuccess, run.Status)
	assert.Equal(t, 2, run.RecordsProcessed)
	assert.Equal(t, 2, run.RecordsAdded)
	assert.Equal(t, 0, run.RecordsUpdated)
	assert.Equal(t, 0, run.RecordsFailed)

	_, err = products.Get(ctx, "456")
	assert.NoError(t, err)
}

func TestImportRunPartialCountersAddUp(t *testing.T) {
	svc, _, _ := newTestImportService(t)
	ctx := context.Background()

	// Seed one product so the re-import counts as updated
	_, err := svc.Run(ctx, model.SourceERP, "erp.xlsx", openerFor(erpRow("123")))
	require.NoError(t, err)

	bad := erpRow("456")
	bad["Закупочная цена"] = "garbage"

	run, err := svc.Run(ctx, model.SourceERP, "erp.xlsx", openerFor(
		erpRow("123"), // updated
		erpRow("789"), // added
		bad,           // failed
		feed.Row{},    // failed, no barcode
	))
	require.NoError(t, err)

	assert.Equal(t, model.ImportPartial, run.Status)
	assert.Equal(t, 4, run.RecordsProcessed)
	assert.Equal(t, 1, run.RecordsAdded)
	assert.Equal(t, 1, run.RecordsUpdated)
	assert.Equal(t, 2, run.RecordsFailed)
	assert.Equal(t, run.RecordsProcessed, run.RecordsAdded+run.RecordsUpdated+run.RecordsFailed)
}

func TestImportRunEmptyFeedIsFailed(t *testing.T) {
	svc, _, _ := newTestImportService(t)

	run, err := svc.Run(context.Background(), model.SourceERP, "empty.csv", openerFor())
	require.NoError(t, err)
	assert.Equal(t, model.ImportFailed, run.Status)
	assert.Equal(t, 0, run.RecordsProcessed)
}

func TestImportRunUnreadableFeed(t *testing.T) {
	svc, _, logs := newTestImportService(t)

	open := func() (feed.Feed, error) {
		return nil, &feed.UnreadableError{Reason: "corrupt zip container"}
	}
	run, fatal := svc.Run(context.Background(), model.SourceERP, "broken.xlsx", open)
	require.Error(t, fatal)
	require.NotNil(t, run)

	assert.Equal(t, model.ImportFailed, run.Status)
	assert.Equal(t, 0, run.RecordsProcessed)
	assert.Contains(t, run.ErrorMessage, "corrupt zip container")

	// The failed run is still recorded in the history
	recent, err := logs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, model.ImportFailed, recent[0].Status)
}

// cancellingFeed cancels the context after serving n rows.
type cancellingFeed struct {
	inner  feed.Feed
	cancel context.CancelFunc
	after  int
	served int
}

func (f *cancellingFeed) Next() (feed.Row, error) {
	f.served++
	if f.served == f.after {
		f.cancel()
	}
	return f.inner.Next()
}

func TestImportRunCancellationKeepsProgress(t *testing.T) {
	svc, products, _ := newTestImportService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	open := func() (feed.Feed, error) {
		return &cancellingFeed{
			inner:  feed.NewSliceFeed(erpRow("123"), erpRow("456"), erpRow("789")),
			cancel: cancel,
			after:  1,
		}, nil
	}

	run, err := svc.Run(ctx, model.SourceERP, "erp.xlsx", open)
	require.NoError(t, err)

	// One row committed before the cancellation was observed
	assert.Equal(t, 1, run.RecordsProcessed)
	_, err = products.Get(context.Background(), "123")
	assert.NoError(t, err)
	_, err = products.Get(context.Background(), "789")
	assert.Error(t, err)
}

func TestImportLogsNewestFirst(t *testing.T) {
	svc, _, _ := newTestImportService(t)
	ctx := context.Background()

	_, err := svc.Run(ctx, model.SourceERP, "erp.xlsx", openerFor(erpRow("123")))
	require.NoError(t, err)
	_, err = svc.Run(ctx, model.SourceWBBarcodes, "wb.xlsx", openerFor(
		feed.Row{"ШК": "123", "Арт ВБ": "WB-1"},
	))
	require.NoError(t, err)

	logs, err := svc.Logs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.SourceWBBarcodes, logs[0].Source)
	assert.Equal(t, model.SourceERP, logs[1].Source)
}
