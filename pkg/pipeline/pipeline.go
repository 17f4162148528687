package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"patchwork-transcriber/pkg/config"
	"patchwork-transcriber/pkg/logger"
	"patchwork-transcriber/pkg/media"
	"patchwork-transcriber/pkg/models"
	"patchwork-transcriber/pkg/recognizer"
	"patchwork-transcriber/pkg/storage"
)

// ErrAmbiguousSegmentation is returned when one audio input arrives with more
// than one segmentation source; there is no sane way to pick one.
var ErrAmbiguousSegmentation = errors.New("more than one segmentation source supplied")

// Manager drives jobs through the stages: ingestion, prepare (resample,
// layout, splice), recognize, reattribute, store. Jobs are independent; each
// owns its layout, temp dir and outputs, so the stage pools run them in
// parallel without shared state.
type Manager struct {
	config   config.PipelineConfig
	timeline config.TimelineConfig

	memStore  storage.MemoryStore
	diskStore storage.DiskStore
	ffmpeg    *media.FFmpeg
	asr       *recognizer.Runner
	log       *logger.Logger
	workRoot  string

	ingestionCh   chan *models.TranscriptionJob
	prepareCh     chan *models.PipelineMessage
	recognizeCh   chan *models.PipelineMessage
	reattributeCh chan *models.PipelineMessage
	storageCh     chan *models.PipelineMessage

	preparePool     *WorkerPool
	recognizePool   *WorkerPool
	reattributePool *WorkerPool
	storagePool     *WorkerPool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(cfg *config.Config, memStore storage.MemoryStore, diskStore storage.DiskStore, log *logger.Logger) *Manager {
	return &Manager{
		config:   cfg.Pipeline,
		timeline: cfg.Timeline,

		memStore:  memStore,
		diskStore: diskStore,
		ffmpeg:    media.New(cfg.Recognizer.FFmpegBin),
		asr:       recognizer.New(cfg.Recognizer.Command),
		log:       log.With("component", "pipeline"),
		workRoot:  cfg.WorkDir,

		ingestionCh:   make(chan *models.TranscriptionJob, cfg.Pipeline.QueueSize),
		prepareCh:     make(chan *models.PipelineMessage, cfg.Pipeline.QueueSize),
		recognizeCh:   make(chan *models.PipelineMessage, cfg.Pipeline.QueueSize),
		reattributeCh: make(chan *models.PipelineMessage, cfg.Pipeline.QueueSize),
		storageCh:     make(chan *models.PipelineMessage, cfg.Pipeline.QueueSize),
	}
}

func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.log.Info("starting pipeline")

	m.preparePool = NewWorkerPool(m.config.PrepareWorkers, m.prepareJob)
	m.recognizePool = NewWorkerPool(m.config.RecognizeWorkers, m.recognizeJob)
	m.reattributePool = NewWorkerPool(m.config.ReattributeWorkers, m.reattributeJob)
	m.storagePool = NewWorkerPool(m.config.StorageWorkers, m.storeJob)

	m.preparePool.Start(m.ctx)
	m.recognizePool.Start(m.ctx)
	m.reattributePool.Start(m.ctx)
	m.storagePool.Start(m.ctx)

	m.wg.Add(5)
	go m.runIngestionStage()
	go m.runPrepareStage()
	go m.runRecognizeStage()
	go m.runReattributeStage()
	go m.runStorageStage()

	return nil
}

func (m *Manager) Stop() {
	m.log.Info("stopping pipeline")
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.log.Info("pipeline stopped")
}

func (m *Manager) Submit(job *models.TranscriptionJob) error {
	if err := m.memStore.StoreJob(job); err != nil {
		return err
	}
	select {
	case m.ingestionCh <- job:
		m.log.Debug("job submitted", "job", job.ID, "audio", job.AudioID)
		return nil
	case <-m.ctx.Done():
		return fmt.Errorf("pipeline is shutting down")
	default:
		return fmt.Errorf("pipeline queue is full")
	}
}

func (m *Manager) runIngestionStage() {
	defer m.wg.Done()

	for {
		select {
		case job := <-m.ingestionCh:
			msg := &models.PipelineMessage{
				Job:      job,
				Deadline: time.Now().Add(m.config.ProcessingTimeout),
				Stage:    "ingestion",
			}
			job.Status = models.StatusPreparing

			select {
			case m.prepareCh <- msg:
			case <-m.ctx.Done():
				return
			}

		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Manager) runPrepareStage() {
	defer m.wg.Done()
	for {
		select {
		case msg := <-m.prepareCh:
			m.preparePool.Submit(msg)
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Manager) runRecognizeStage() {
	defer m.wg.Done()
	for {
		select {
		case msg := <-m.recognizeCh:
			m.recognizePool.Submit(msg)
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Manager) runReattributeStage() {
	defer m.wg.Done()
	for {
		select {
		case msg := <-m.reattributeCh:
			m.reattributePool.Submit(msg)
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Manager) runStorageStage() {
	defer m.wg.Done()
	for {
		select {
		case msg := <-m.storageCh:
			m.storagePool.Submit(msg)
		case <-m.ctx.Done():
			return
		}
	}
}
