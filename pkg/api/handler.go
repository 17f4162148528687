package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"patchwork-transcriber/pkg/logger"
	"patchwork-transcriber/pkg/models"
	"patchwork-transcriber/pkg/pipeline"
	"patchwork-transcriber/pkg/storage"
	"patchwork-transcriber/pkg/timeline"
)

type Handlers struct {
	pipeline   *pipeline.Manager
	store      storage.MemoryStore
	log        *logger.Logger
	uploadDir  string
	defaultSeg bool
}

func NewHandlers(p *pipeline.Manager, store storage.MemoryStore, log *logger.Logger, uploadDir string, defaultUseSegmentation bool) (*Handlers, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Handlers{
		pipeline:   p,
		store:      store,
		log:        log.With("component", "api"),
		uploadDir:  uploadDir,
		defaultSeg: defaultUseSegmentation,
	}, nil
}

func (h *Handlers) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(256 << 20); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		http.Error(w, "audio file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	audioID := r.FormValue("audio_id")
	if audioID == "" {
		audioID = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	segments, err := h.parseSegments(r)
	if err != nil {
		if err == pipeline.ErrAmbiguousSegmentation {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("invalid segments: %v", err), http.StatusBadRequest)
		return
	}

	useSeg := h.defaultSeg
	if v := r.FormValue("use_segmentation"); v != "" {
		if b, perr := strconv.ParseBool(v); perr == nil {
			useSeg = b
		}
	}

	job := models.NewTranscriptionJob(audioID, "", segments, useSeg)
	audioPath := filepath.Join(h.uploadDir, job.ID+filepath.Ext(header.Filename))
	dst, err := os.Create(audioPath)
	if err != nil {
		http.Error(w, "Failed to store audio", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		http.Error(w, "Failed to store audio", http.StatusInternalServerError)
		return
	}
	dst.Close()
	job.AudioPath = audioPath

	h.log.Info("job received", "job", job.ID, "audio", audioID,
		"segments", len(segments), "use_segmentation", useSeg)

	if err := h.pipeline.Submit(job); err != nil {
		http.Error(w, fmt.Sprintf("Failed to submit job: %v", err), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, map[string]interface{}{
		"job_id":   job.ID,
		"audio_id": job.AudioID,
		"status":   job.Status,
	})
}

// parseSegments reads the optional segments field. Supplying it more than
// once is ambiguous and rejected outright.
func (h *Handlers) parseSegments(r *http.Request) ([]timeline.Segment, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	values := r.MultipartForm.Value["segments"]
	if len(values) > 1 {
		return nil, pipeline.ErrAmbiguousSegmentation
	}
	if len(values) == 0 || values[0] == "" {
		return nil, nil
	}
	var segments []timeline.Segment
	if err := json.Unmarshal([]byte(values[0]), &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

func (h *Handlers) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	jobID := vars["id"]

	job, err := h.store.GetJob(jobID)
	if err != nil {
		if err == storage.ErrJobNotFound {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, job)
}

func (h *Handlers) GetAudioJobsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	audioID := vars["audio_id"]

	jobs, err := h.store.GetAudioJobs(audioID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}

	writeJSON(w, map[string]interface{}{
		"audio_id": audioID,
		"jobs":     jobs,
		"count":    len(jobs),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
