package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"patchwork-transcriber/pkg/api"
	"patchwork-transcriber/pkg/config"
	"patchwork-transcriber/pkg/logger"
	"patchwork-transcriber/pkg/models"
	"patchwork-transcriber/pkg/pipeline"
	"patchwork-transcriber/pkg/storage"
	"patchwork-transcriber/pkg/timeline"
)

func main() {
	var (
		once         string
		segmentsPath string
		pretty       bool
	)
	flag.StringVar(&once, "once", "", "Transcribe a single audio file and print the annotation bundle instead of serving")
	flag.StringVar(&segmentsPath, "segments", "", "JSON file with speech segments for -once mode")
	flag.BoolVar(&pretty, "pretty", false, "Indent the -once output")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if once != "" {
		if err := runOnce(cfg, log, once, segmentsPath, pretty); err != nil {
			log.Error("one-shot run failed", "err", err)
			os.Exit(1)
		}
		return
	}

	memStore := storage.NewMemoryStore()
	diskStore, err := storage.NewDiskStore(cfg.StoragePath)
	if err != nil {
		log.Fatal("init disk storage", "err", err)
	}
	defer diskStore.Close()

	manager := pipeline.NewManager(cfg, memStore, diskStore, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := manager.Start(ctx); err != nil {
		log.Fatal("start pipeline", "err", err)
	}

	handlers, err := api.NewHandlers(manager, memStore, log, filepath.Join(cfg.WorkDir, "uploads"), cfg.Timeline.UseSegmentation)
	if err != nil {
		log.Fatal("init handlers", "err", err)
	}

	router := mux.NewRouter()
	router.HandleFunc("/transcriptions", handlers.SubmitHandler).Methods("POST")
	router.HandleFunc("/transcriptions/{id}", handlers.GetJobHandler).Methods("GET")
	router.HandleFunc("/audio/{audio_id}/transcriptions", handlers.GetAudioJobsHandler).Methods("GET")
	router.HandleFunc("/ws", handlers.WebSocketHandler)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server starting", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("forced shutdown", "err", err)
	}
	manager.Stop()

	log.Info("server exited")
}

// runOnce transcribes one file through the same pipeline components and
// prints the annotation bundle to stdout.
func runOnce(cfg *config.Config, log *logger.Logger, audioPath, segmentsPath string, pretty bool) error {
	var segments []timeline.Segment
	if segmentsPath != "" {
		data, err := os.ReadFile(segmentsPath)
		if err != nil {
			return fmt.Errorf("read segments: %w", err)
		}
		if err := json.Unmarshal(data, &segments); err != nil {
			return fmt.Errorf("parse segments: %w", err)
		}
	}

	audioID := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	job := models.NewTranscriptionJob(audioID, audioPath, segments, cfg.Timeline.UseSegmentation)

	// One-shot runs stay off disk; the in-memory store satisfies the manager.
	manager := pipeline.NewManager(cfg, storage.NewMemoryStore(), nil, log)
	if err := manager.RunOnce(context.Background(), job); err != nil {
		return err
	}

	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(job.Bundle, "", "  ")
	} else {
		out, err = json.Marshal(job.Bundle)
	}
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
