package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverdueSweep marks past-due invoices OVERDUE.
	TaskOverdueSweep = "invoices:overdue_sweep"
	// TaskDocumentArchive copies a rendered PDF to object storage.
	TaskDocumentArchive = "documents:archive"
	// TaskIdempotencyCleanup prunes processed payment keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// ArchivePayload carries one rendered document.
type ArchivePayload struct {
	Key string `json:"key"`
	PDF []byte `json:"pdf"`
}

// CleanupPayload sets the retention for idempotency keys.
type CleanupPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewOverdueSweepTask builds the cron task for the overdue sweep.
func NewOverdueSweepTask() *asynq.Task {
	return asynq.NewTask(TaskOverdueSweep, nil)
}

// NewDocumentArchiveTask constructs an archive task.
func NewDocumentArchiveTask(key string, pdf []byte) (*asynq.Task, error) {
	data, err := json.Marshal(ArchivePayload{Key: key, PDF: pdf})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDocumentArchive, data), nil
}

// NewIdempotencyCleanupTask constructs a cleanup task.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(CleanupPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
