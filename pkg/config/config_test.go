package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"patchwork-transcriber/pkg/timeline"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.True(t, cfg.Timeline.UseSegmentation)
	assert.Equal(t, time.Second, cfg.Timeline.SilenceGap)
	assert.Equal(t, timeline.Milliseconds, cfg.Timeline.Unit)
	assert.Equal(t, "/opt/kaldi/run.sh", cfg.Recognizer.Command)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9000")
	t.Setenv("USE_SEGMENTATION", "false")
	t.Setenv("SILENCE_GAP", "2s")
	t.Setenv("TIME_UNIT", "seconds")
	t.Setenv("RECOGNIZE_WORKERS", "7")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.False(t, cfg.Timeline.UseSegmentation)
	assert.Equal(t, 2*time.Second, cfg.Timeline.SilenceGap)
	assert.Equal(t, timeline.Seconds, cfg.Timeline.Unit)
	assert.Equal(t, 7, cfg.Pipeline.RecognizeWorkers)
}

func TestGapTicks(t *testing.T) {
	tc := TimelineConfig{SilenceGap: time.Second, Unit: timeline.Milliseconds}
	assert.Equal(t, int64(1000), tc.GapTicks())

	tc.Unit = timeline.Seconds
	assert.Equal(t, int64(1), tc.GapTicks())
}
