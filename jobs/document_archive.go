package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/voyageos/voyageos/internal/jobs"
)

// ObjectStore persists archived documents.
type ObjectStore interface {
	Put(ctx context.Context, key string, pdf []byte) error
}

// DocumentArchiveJob uploads rendered PDFs.
type DocumentArchiveJob struct {
	Store   ObjectStore
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewDocumentArchiveJob wires dependencies for the archive handler.
func NewDocumentArchiveJob(store ObjectStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *DocumentArchiveJob {
	return &DocumentArchiveJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle processes archive tasks. Malformed payloads are not retried.
func (j *DocumentArchiveJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Store == nil {
		return errors.New("document archive: handler not configured")
	}
	var payload ArchivePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode archive payload: %w", asynq.SkipRetry)
	}
	if payload.Key == "" || len(payload.PDF) == 0 {
		return fmt.Errorf("empty archive payload: %w", asynq.SkipRetry)
	}

	tracker := metricsOrDefault(j.Metrics).Track(TaskDocumentArchive)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if err := j.Store.Put(ctx, payload.Key, payload.PDF); err != nil {
		loggerOrDefault(j.Logger).Error("archive document", slog.String("key", payload.Key), slog.Any("error", err))
		return err
	}
	tracker.Processed(1)
	metricsOrDefault(j.Metrics).ArchivedBytes(len(payload.PDF))
	loggerOrDefault(j.Logger).Info("document archived", slog.String("key", payload.Key), slog.Int("bytes", len(payload.PDF)))
	return nil
}
