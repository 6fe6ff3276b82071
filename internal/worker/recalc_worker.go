package worker

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/agoodis/product-management-system/internal/service"
)

// RecalcWorker refreshes the derived metrics of every product.
type RecalcWorker struct {
	calc service.CalculationService
}

func NewRecalcWorker(calc service.CalculationService) *RecalcWorker {
	return &RecalcWorker{calc: calc}
}

func (w *RecalcWorker) Handle(ctx context.Context, job Job) error {
	updated, err := w.calc.RecalculateAll(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("job_id", job.ID).Int("products", updated).Msg("recalculation sweep finished")
	return nil
}
