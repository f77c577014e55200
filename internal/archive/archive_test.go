package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifai/unifai/pkg/config"
	"github.com/unifai/unifai/pkg/scoring"
)

func TestLocalStoragePutGet(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()
	id := uuid.NewString()

	data := []byte(`{"result":{"prediction":"SAFE URL"}}`)
	require.NoError(t, s.Put(ctx, scoring.ModulePhishingURL, id, data))

	got, err := s.Get(ctx, scoring.ModulePhishingURL, id)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Verify file path layout
	_, err = os.Stat(filepath.Join(dir, "fraud_phishing", id+".json"))
	assert.NoError(t, err)
}

func TestLocalStorageGetNotFound(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	_, err := s.Get(context.Background(), scoring.ModuleStress, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageRejectsBadKeys(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	assert.Error(t, s.Put(ctx, scoring.ModuleStress, "../../etc/passwd", []byte("x")))
	assert.Error(t, s.Put(ctx, "", uuid.NewString(), []byte("x")))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, config.StorageConfig{})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = New(ctx, config.StorageConfig{Backend: "local", LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(ctx, config.StorageConfig{Backend: "ftp"})
	assert.Error(t, err)
}
