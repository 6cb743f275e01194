package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/voyageos/voyageos/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// OverdueSweeper flips past-due invoices to OVERDUE.
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context) (int64, error)
}

// OverdueSweepJob runs the invoice sweep on schedule.
type OverdueSweepJob struct {
	Invoices OverdueSweeper
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewOverdueSweepJob wires dependencies for the sweep handler.
func NewOverdueSweepJob(invoices OverdueSweeper, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueSweepJob {
	return &OverdueSweepJob{Invoices: invoices, Logger: logger, Metrics: metrics}
}

// Handle processes overdue sweep tasks.
func (j *OverdueSweepJob) Handle(ctx context.Context, _ *asynq.Task) (resultErr error) {
	if j == nil || j.Invoices == nil {
		return errors.New("overdue sweep: handler not configured")
	}
	tracker := metricsOrDefault(j.Metrics).Track(TaskOverdueSweep)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	marked, err := j.Invoices.SweepOverdue(ctx)
	if err != nil {
		loggerOrDefault(j.Logger).Error("overdue sweep", slog.Any("error", err))
		return err
	}
	tracker.Processed(marked)
	loggerOrDefault(j.Logger).Info("overdue sweep finished", slog.Int64("marked", marked))
	return nil
}

func metricsOrDefault(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
