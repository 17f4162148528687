package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"patchwork-transcriber/pkg/annotations"
	"patchwork-transcriber/pkg/models"
	"patchwork-transcriber/pkg/timeline"
)

// Stage workers: each runs the matching core step, then either forwards the
// message or fails the job. Failures never touch other jobs in the batch.

func (m *Manager) prepareJob(ctx context.Context, msg *models.PipelineMessage) {
	jctx, cancel := jobCtx(ctx, msg)
	err := m.prepare(jctx, msg)
	cancel()
	if err != nil {
		m.failJob(msg, err)
		return
	}
	msg.Job.Status = models.StatusRecognizing
	msg.Stage = "prepare"
	select {
	case m.recognizeCh <- msg:
	case <-ctx.Done():
	}
}

func (m *Manager) recognizeJob(ctx context.Context, msg *models.PipelineMessage) {
	jctx, cancel := jobCtx(ctx, msg)
	err := m.recognize(jctx, msg)
	cancel()
	if err != nil {
		m.failJob(msg, err)
		return
	}
	msg.Job.Status = models.StatusReattributing
	msg.Stage = "recognize"
	select {
	case m.reattributeCh <- msg:
	case <-ctx.Done():
	}
}

func (m *Manager) reattributeJob(ctx context.Context, msg *models.PipelineMessage) {
	if err := m.reattribute(msg); err != nil {
		m.failJob(msg, err)
		return
	}
	msg.Job.Status = models.StatusStoring
	msg.Stage = "reattribute"
	select {
	case m.storageCh <- msg:
	case <-ctx.Done():
	}
}

func (m *Manager) storeJob(ctx context.Context, msg *models.PipelineMessage) {
	job := msg.Job
	job.Status = models.StatusCompleted
	job.CompletedAt = time.Now()
	msg.Stage = "store"

	if err := m.diskStore.StoreJob(job); err != nil {
		m.failJob(msg, fmt.Errorf("persist job: %w", err))
		return
	}
	if err := m.memStore.StoreJob(job); err != nil {
		m.failJob(msg, fmt.Errorf("update job: %w", err))
		return
	}
	m.cleanup(msg)
	m.log.Info("job completed", "job", job.ID, "audio", job.AudioID,
		"units", len(job.Bundle.Documents), "tokens", len(job.Bundle.Tokens), "dropped", job.DroppedTokens)
}

// prepare resamples the input and, when segmentation is in play, builds the
// patchwork layout and the spliced audio file matching it.
func (m *Manager) prepare(ctx context.Context, msg *models.PipelineMessage) error {
	job := msg.Job

	workDir, err := os.MkdirTemp(m.workRoot, "transcribe_")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	msg.WorkDir = workDir

	resampled, err := m.ffmpeg.Resample(ctx, job.AudioPath, workDir)
	if err != nil {
		return err
	}
	msg.AudioFile = resampled

	if !job.UseSegmentation || len(job.Segments) == 0 {
		return nil
	}

	layout, err := timeline.BuildLayout(job.Segments, m.timeline.GapTicks())
	if err != nil {
		return err
	}
	msg.Layout = layout

	spliced, err := m.ffmpeg.TrimAndSplice(ctx, resampled,
		layout.Intervals(m.timeline.Unit), m.timeline.SilenceGap.Seconds(), workDir)
	if err != nil {
		return err
	}
	msg.AudioFile = spliced
	return nil
}

func (m *Manager) recognize(ctx context.Context, msg *models.PipelineMessage) error {
	tokens, err := m.asr.Recognize(ctx, msg.AudioFile, msg.WorkDir, m.timeline.Unit)
	if err != nil {
		return err
	}
	msg.Tokens = tokens
	return nil
}

func (m *Manager) reattribute(msg *models.PipelineMessage) error {
	var res timeline.Result
	if msg.Layout.Empty() {
		res = timeline.ReattributeWhole(msg.Tokens)
	} else {
		res = timeline.Reattribute(msg.Tokens, msg.Layout)
	}
	if res.Dropped > 0 {
		m.log.Debug("dropped gap tokens", "job", msg.Job.ID, "count", res.Dropped)
	}

	bundle := annotations.BuildBundle(res, msg.Job.AudioID, m.timeline.Unit)
	msg.Job.Bundle = &bundle
	msg.Job.DroppedTokens = res.Dropped
	return nil
}

// jobCtx bounds external-process work by the job's deadline. The pipeline has
// no way to abort a stuck subprocess beyond killing it at the deadline.
func jobCtx(ctx context.Context, msg *models.PipelineMessage) (context.Context, context.CancelFunc) {
	if msg.Deadline.IsZero() {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, msg.Deadline)
}

func (m *Manager) failJob(msg *models.PipelineMessage, err error) {
	job := msg.Job
	msg.Error = err
	job.Status = models.StatusFailed
	job.Error = err.Error()
	job.CompletedAt = time.Now()
	m.cleanup(msg)
	m.log.Error("job failed", "job", job.ID, "audio", job.AudioID, "stage", msg.Stage, "err", err)

	if serr := m.memStore.StoreJob(job); serr != nil {
		m.log.Error("record job failure", "job", job.ID, "err", serr)
	}
}

// cleanup releases the per-run temp files on every exit path.
func (m *Manager) cleanup(msg *models.PipelineMessage) {
	if msg.WorkDir == "" {
		return
	}
	if err := os.RemoveAll(msg.WorkDir); err != nil {
		m.log.Warn("remove work dir", "job", msg.Job.ID, "err", err)
	}
	msg.WorkDir = ""
}
