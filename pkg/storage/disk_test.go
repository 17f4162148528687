package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchwork-transcriber/pkg/annotations"
	"patchwork-transcriber/pkg/models"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	job := models.NewTranscriptionJob("audio1", "/tmp/audio1.wav", nil, true)
	job.Status = models.StatusCompleted
	job.Bundle = &annotations.Bundle{
		Documents: []annotations.TextDocument{{ID: "td1", Text: "hello world"}},
	}

	require.NoError(t, store.StoreJob(job))

	got, err := store.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	require.NotNil(t, got.Bundle)
	assert.Equal(t, "hello world", got.Bundle.Documents[0].Text)
}

func TestDiskStoreNotFound(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.GetJob("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
