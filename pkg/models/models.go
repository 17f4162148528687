package models

import (
	"time"

	"github.com/google/uuid"

	"patchwork-transcriber/pkg/annotations"
	"patchwork-transcriber/pkg/timeline"
)

// TranscriptionJob tracks one audio input through the pipeline. AudioID is a
// caller-assigned identifier for the audio input; ID names the run.
type TranscriptionJob struct {
	ID              string              `json:"id"`
	AudioID         string              `json:"audio_id"`
	AudioPath       string              `json:"audio_path"`
	UseSegmentation bool                `json:"use_segmentation"`
	Segments        []timeline.Segment  `json:"segments,omitempty"`
	Status          ProcessingStatus    `json:"status"`
	Error           string              `json:"error,omitempty"`
	DroppedTokens   int                 `json:"dropped_tokens"`
	Bundle          *annotations.Bundle `json:"bundle,omitempty"`
	SubmittedAt     time.Time           `json:"submitted_at"`
	CompletedAt     time.Time           `json:"completed_at,omitempty"`
}

type ProcessingStatus string

const (
	StatusPending       ProcessingStatus = "pending"
	StatusPreparing     ProcessingStatus = "preparing"
	StatusRecognizing   ProcessingStatus = "recognizing"
	StatusReattributing ProcessingStatus = "reattributing"
	StatusStoring       ProcessingStatus = "storing"
	StatusCompleted     ProcessingStatus = "completed"
	StatusFailed        ProcessingStatus = "failed"
)

// PipelineMessage carries a job plus the per-run scratch state between
// stages. Everything here is owned by a single run.
type PipelineMessage struct {
	Job     *TranscriptionJob
	WorkDir string
	// AudioFile is the file the recognizer should consume: the resampled
	// original, or the spliced patchwork audio when segmentation is on.
	AudioFile string
	Layout    timeline.Layout
	Tokens    []timeline.Token
	Deadline  time.Time
	Error     error
	Stage     string
}

func NewTranscriptionJob(audioID, audioPath string, segments []timeline.Segment, useSegmentation bool) *TranscriptionJob {
	return &TranscriptionJob{
		ID:              uuid.New().String(),
		AudioID:         audioID,
		AudioPath:       audioPath,
		UseSegmentation: useSegmentation,
		Segments:        segments,
		Status:          StatusPending,
		SubmittedAt:     time.Now(),
	}
}
