package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendidero/shiptastic-ups/internal/storage"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
)

func TestFileStore_UploadArtifact(t *testing.T) {
	dir := t.TempDir()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	store := storage.NewFileStore(dir, clock)

	path, err := store.UploadArtifact(context.Background(), []byte("%PDF-1.4"), "label")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "2026", "03"), filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "-label.pdf"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
}

func TestFileStore_SanitizesVariant(t *testing.T) {
	store := storage.NewFileStore(t.TempDir(), nil)

	path, err := store.UploadArtifact(context.Background(), []byte("GIF89a"), "../../form 01.gif")
	require.NoError(t, err)

	assert.NotContains(t, filepath.Base(path), "/")
	assert.True(t, strings.HasSuffix(path, "form_01.gif"), path)
}

func TestFileStore_RejectsEmpty(t *testing.T) {
	store := storage.NewFileStore(t.TempDir(), nil)

	_, err := store.UploadArtifact(context.Background(), nil, "label")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.UploadArtifact(ctx, []byte("x"), "label")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveArtifact(t *testing.T) {
	store := storage.NewFileStore(t.TempDir(), nil)

	paths, err := storage.SaveArtifact(context.Background(), store, &shipper.LabelArtifact{
		TrackingNumber:     "1Z1",
		PrimaryFile:        []byte("%PDF-1.4"),
		SupplementaryFiles: map[string][]byte{"form_03.gif": []byte("GIF89a")},
	})
	require.NoError(t, err)

	require.Contains(t, paths, "label")
	require.Contains(t, paths, "form_03.gif")
	assert.FileExists(t, paths["label"])
	assert.FileExists(t, paths["form_03.gif"])
}

func TestSaveArtifact_Failure(t *testing.T) {
	// A file where the directory should be makes every upload fail.
	base := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(base, []byte("x"), 0o600))

	_, err := storage.SaveArtifact(context.Background(), storage.NewFileStore(base, nil), &shipper.LabelArtifact{
		PrimaryFile: []byte("%PDF-1.4"),
	})
	assert.True(t, shipper.IsArtifactError(err))
}

func TestSaveArtifact_KeepsRawBookingWithoutLabel(t *testing.T) {
	store := storage.NewFileStore(t.TempDir(), nil)

	paths, err := storage.SaveArtifact(context.Background(), store, &shipper.LabelArtifact{
		TrackingNumber:     "1ZBOOKED",
		SupplementaryFiles: map[string][]byte{},
		Booking: &shipper.Booking{
			TrackingNumber: "1ZBOOKED",
			LabelImage:     []byte("GIF89a broken"),
			LabelFormat:    "GIF",
			Forms: map[string]shipper.Document{
				"01": {Format: "PDF", Data: []byte("%PDF-1.4 invoice")},
			},
		},
	})
	require.NoError(t, err)

	assert.NotContains(t, paths, "label")
	require.Contains(t, paths, "label_raw.gif")
	require.Contains(t, paths, "form_01_raw.pdf")

	data, err := os.ReadFile(paths["label_raw.gif"])
	require.NoError(t, err)
	assert.Equal(t, []byte("GIF89a broken"), data)
}

func TestRawFiles(t *testing.T) {
	assert.Empty(t, storage.RawFiles(nil))

	files := storage.RawFiles(&shipper.Booking{LabelImage: []byte("x")})
	assert.Equal(t, map[string][]byte{"label_raw.bin": []byte("x")}, files)
}
