package pipeline

import (
	"context"
	"time"

	"patchwork-transcriber/pkg/models"
)

// RunOnce pushes a single job through the same stages synchronously, for the
// one-shot CLI mode. The job is not persisted; the caller gets the completed
// record back. Temp files are released before returning, on every path.
func (m *Manager) RunOnce(ctx context.Context, job *models.TranscriptionJob) error {
	msg := &models.PipelineMessage{
		Job:      job,
		Deadline: time.Now().Add(m.config.ProcessingTimeout),
	}
	defer m.cleanup(msg)

	jctx, cancel := jobCtx(ctx, msg)
	defer cancel()

	job.Status = models.StatusPreparing
	if err := m.prepare(jctx, msg); err != nil {
		job.Status = models.StatusFailed
		job.Error = err.Error()
		return err
	}
	job.Status = models.StatusRecognizing
	if err := m.recognize(jctx, msg); err != nil {
		job.Status = models.StatusFailed
		job.Error = err.Error()
		return err
	}
	job.Status = models.StatusReattributing
	if err := m.reattribute(msg); err != nil {
		job.Status = models.StatusFailed
		job.Error = err.Error()
		return err
	}
	job.Status = models.StatusCompleted
	job.CompletedAt = time.Now()
	return nil
}
