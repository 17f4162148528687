package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchwork-transcriber/pkg/models"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	job := models.NewTranscriptionJob("audio1", "/tmp/audio1.wav", nil, true)

	require.NoError(t, store.StoreJob(job))

	got, err := store.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	_, err = store.GetJob("nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemoryStoreUpdateStatus(t *testing.T) {
	store := NewMemoryStore()
	job := models.NewTranscriptionJob("audio1", "/tmp/audio1.wav", nil, true)
	require.NoError(t, store.StoreJob(job))

	require.NoError(t, store.UpdateJobStatus(job.ID, models.StatusCompleted))
	got, err := store.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	assert.ErrorIs(t, store.UpdateJobStatus("nope", models.StatusFailed), ErrJobNotFound)
}

func TestMemoryStoreAudioJobs(t *testing.T) {
	store := NewMemoryStore()
	a := models.NewTranscriptionJob("audio1", "a.wav", nil, true)
	b := models.NewTranscriptionJob("audio1", "a.wav", nil, false)
	c := models.NewTranscriptionJob("audio2", "b.wav", nil, true)
	for _, j := range []*models.TranscriptionJob{a, b, c} {
		require.NoError(t, store.StoreJob(j))
	}

	jobs, err := store.GetAudioJobs("audio1")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}
