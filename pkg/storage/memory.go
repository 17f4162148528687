package storage

import (
	"sync"

	"patchwork-transcriber/pkg/models"
)

type MemoryStore interface {
	StoreJob(job *models.TranscriptionJob) error
	GetJob(id string) (*models.TranscriptionJob, error)
	GetAudioJobs(audioID string) ([]*models.TranscriptionJob, error)
	UpdateJobStatus(id string, status models.ProcessingStatus) error
}

type memoryStore struct {
	jobs map[string]*models.TranscriptionJob
	mu   sync.RWMutex
}

func NewMemoryStore() MemoryStore {
	return &memoryStore{
		jobs: make(map[string]*models.TranscriptionJob),
	}
}

func (s *memoryStore) StoreJob(job *models.TranscriptionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *memoryStore) GetJob(id string) (*models.TranscriptionJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (s *memoryStore) GetAudioJobs(audioID string) ([]*models.TranscriptionJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var jobs []*models.TranscriptionJob
	for _, job := range s.jobs {
		if job.AudioID == audioID {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func (s *memoryStore) UpdateJobStatus(id string, status models.ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return ErrJobNotFound
	}
	job.Status = status
	return nil
}
