package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"patchwork-transcriber/pkg/timeline"
)

type Config struct {
	Server      ServerConfig
	Pipeline    PipelineConfig
	Recognizer  RecognizerConfig
	Timeline    TimelineConfig
	StoragePath string
	WorkDir     string
	LogMode     string
}

type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type PipelineConfig struct {
	PrepareWorkers     int
	RecognizeWorkers   int
	ReattributeWorkers int
	StorageWorkers     int
	QueueSize          int
	ProcessingTimeout  time.Duration
}

type RecognizerConfig struct {
	// Command is invoked as `command <wav> <out.json>`.
	Command   string
	FFmpegBin string
}

type TimelineConfig struct {
	UseSegmentation bool
	SilenceGap      time.Duration
	Unit            timeline.TimeUnit
}

// GapTicks is the silence gap expressed in the configured time unit.
func (t TimelineConfig) GapTicks() int64 {
	return t.Unit.FromSeconds(t.SilenceGap.Seconds())
}

func Load() *Config {
	// A missing .env file is fine; env vars still apply.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Address:      envStr("SERVER_ADDRESS", ":8080"),
			ReadTimeout:  envDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: envDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Pipeline: PipelineConfig{
			PrepareWorkers:     envInt("PREPARE_WORKERS", 4),
			RecognizeWorkers:   envInt("RECOGNIZE_WORKERS", 2),
			ReattributeWorkers: envInt("REATTRIBUTE_WORKERS", 4),
			StorageWorkers:     envInt("STORAGE_WORKERS", 2),
			QueueSize:          envInt("QUEUE_SIZE", 100),
			ProcessingTimeout:  envDuration("PROCESSING_TIMEOUT", 30*time.Minute),
		},
		Recognizer: RecognizerConfig{
			Command:   envStr("RECOGNIZER_CMD", "/opt/kaldi/run.sh"),
			FFmpegBin: envStr("FFMPEG_BIN", "ffmpeg"),
		},
		Timeline: TimelineConfig{
			UseSegmentation: envBool("USE_SEGMENTATION", true),
			SilenceGap:      envDuration("SILENCE_GAP", time.Second),
			Unit:            loadUnit(),
		},
		StoragePath: envStr("STORAGE_PATH", "./data"),
		WorkDir:     envStr("WORK_DIR", os.TempDir()),
		LogMode:     envStr("LOG_MODE", "dev"),
	}
}

func loadUnit() timeline.TimeUnit {
	if os.Getenv("TIME_UNIT") == string(timeline.Seconds) {
		return timeline.Seconds
	}
	return timeline.Milliseconds
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
