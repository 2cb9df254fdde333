package pipeline

import (
	"context"
	"log/slog"
	"time"

	"ocwsync/internal/logging"
	"ocwsync/internal/services"
)

// Stage names.
const (
	StageAcquire  = "acquire"
	StageLectures = "lectures"
	StageClassify = "classify"
	StageOrder    = "order"
	StageBuild    = "build"
	StageProblems = "problems"
)

// runStage executes fn with a stage-scoped context and logger.
func runStage(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context, *slog.Logger) error) error {
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, logger)
	started := time.Now()

	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	if err := fn(stageCtx, stageLogger); err != nil {
		if ctx.Err() != nil {
			stageLogger.Warn("stage cancelled",
				logging.String(logging.FieldEventType, "stage_cancelled"),
				logging.Duration("elapsed", time.Since(started)),
			)
			return err
		}
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.Duration("elapsed", time.Since(started)),
		)
		return err
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}
