package service

import (
	"context"
	"errors"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/agoodis/product-management-system/internal/dto"
	"github.com/agoodis/product-management-system/internal/feed"
	"github.com/agoodis/product-management-system/internal/metrics"
	"github.com/agoodis/product-management-system/internal/model"
	"github.com/agoodis/product-management-system/internal/repository"
)

// ImportService drives whole import runs: Started → Streaming → Finalizing.
// Run is synchronous; it returns once the run has reached a terminal state
// and the ImportLog row is finalized.
type ImportService interface {
	Run(ctx context.Context, src model.Source, fileName string, open feed.Opener) (*model.ImportLog, error)
	Logs(ctx context.Context, limit int) ([]dto.ImportLogResponse, error)
}

type importService struct {
	reconciler *Reconciler
	logs       repository.ImportLogRepository
	rdb        *redis.Client
}

func NewImportService(reconciler *Reconciler, logs repository.ImportLogRepository, rdb *redis.Client) ImportService {
	return &importService{reconciler: reconciler, logs: logs, rdb: rdb}
}

// Run streams rows through the reconciler, accumulating counters. Row
// failures are independent and never stop the stream; only an unreadable
// feed is fatal. Cancellation stops streaming promptly and keeps everything
// committed so far.
func (s *importService) Run(ctx context.Context, src model.Source, fileName string, open feed.Opener) (*model.ImportLog, error) {
	run := &model.ImportLog{Source: src, FileName: fileName}
	if err := s.logs.Create(ctx, run); err != nil {
		return nil, err
	}

	fd, fatal := open()
	if fatal == nil {
		fatal = s.stream(ctx, src, fd, run)
	}

	if fatal != nil {
		run.Status = model.ImportFailed
		run.ErrorMessage = fatal.Error()
	} else {
		run.Status = run.Classify()
	}
	if err := s.logs.Finalize(ctx, run); err != nil {
		return nil, err
	}

	metrics.RecordImportRun(string(src), string(run.Status))
	s.invalidateFilterCache(ctx)

	log.Info().
		Str("source", string(src)).
		Str("file", fileName).
		Str("status", string(run.Status)).
		Int("processed", run.RecordsProcessed).
		Int("added", run.RecordsAdded).
		Int("updated", run.RecordsUpdated).
		Int("failed", run.RecordsFailed).
		Msg("import run finished")

	return run, fatal
}

func (s *importService) stream(ctx context.Context, src model.Source, fd feed.Feed, run *model.ImportLog) error {
	for {
		if ctx.Err() != nil {
			// Caller went away: stop pulling rows, keep committed progress.
			log.Warn().Str("source", string(src)).Msg("import cancelled mid-stream")
			return nil
		}

		row, err := fd.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		outcome, rerr := s.reconciler.Reconcile(ctx, src, row)
		run.RecordsProcessed++
		switch {
		case rerr != nil:
			run.RecordsFailed++
			metrics.RecordImportRow(string(src), "failed")
			log.Debug().Err(rerr).Str("source", string(src)).Msg("row failed")
		case outcome == OutcomeAdded:
			run.RecordsAdded++
			metrics.RecordImportRow(string(src), "added")
		default:
			run.RecordsUpdated++
			metrics.RecordImportRow(string(src), "updated")
		}
	}
}

func (s *importService) invalidateFilterCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cacheKeyBrands, cacheKeyCategories).Err(); err != nil {
		log.Debug().Err(err).Msg("filter cache invalidation failed")
	}
}

func (s *importService) Logs(ctx context.Context, limit int) ([]dto.ImportLogResponse, error) {
	rows, err := s.logs.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ImportLogResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.NewImportLogResponse(&rows[i]))
	}
	return out, nil
}
