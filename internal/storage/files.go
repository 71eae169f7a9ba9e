// Package storage persists label files on the local filesystem.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileStore writes artifacts below a base directory, one sub directory per
// month.
type FileStore struct {
	dir   string
	clock clockwork.Clock
}

// NewFileStore creates a FileStore rooted at dir. A nil clock uses the real
// clock.
func NewFileStore(dir string, clock clockwork.Clock) *FileStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &FileStore{dir: dir, clock: clock}
}

// UploadArtifact implements shipper.ArtifactStore. The variant names the file,
// e.g. "label" or "form_01.gif"; variants without extension are stored as PDF.
func (s *FileStore) UploadArtifact(ctx context.Context, data []byte, variant string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("upload %s: empty file", variant)
	}

	name := strings.Trim(unsafeName.ReplaceAllString(variant, "_"), "._")
	if name == "" {
		name = "label"
	}
	if filepath.Ext(name) == "" {
		name += ".pdf"
	}

	sub := s.clock.Now().Format("2006/01")
	dir := filepath.Join(s.dir, filepath.FromSlash(sub))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dir, uuid.NewString()+"-"+name)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// SaveArtifact uploads the primary file as "label" and every supplementary
// file under its own name. Without a primary file the raw carrier documents
// of the booking are stored instead, so the label can be assembled again
// later. It returns the stored paths by variant.
func SaveArtifact(ctx context.Context, store shipper.ArtifactStore, artifact *shipper.LabelArtifact) (map[string]string, error) {
	paths := make(map[string]string, 1+len(artifact.SupplementaryFiles))

	if len(artifact.PrimaryFile) == 0 {
		for variant, data := range RawFiles(artifact.Booking) {
			path, err := store.UploadArtifact(ctx, data, variant)
			if err != nil {
				return paths, shipper.NewArtifactError("storage",
					fmt.Sprintf("Error while saving %s.", variant)).WithCause(err)
			}
			paths[variant] = path
		}
	} else {
		path, err := store.UploadArtifact(ctx, artifact.PrimaryFile, "label")
		if err != nil {
			return paths, shipper.NewArtifactError("storage", "Error while saving the label file.").WithCause(err)
		}
		paths["label"] = path
	}

	for variant, data := range artifact.SupplementaryFiles {
		path, err := store.UploadArtifact(ctx, data, variant)
		if err != nil {
			return paths, shipper.NewArtifactError("storage",
				fmt.Sprintf("Error while saving %s.", variant)).WithCause(err)
		}
		paths[variant] = path
	}
	return paths, nil
}

// RawFiles returns the undecoded label image and forms of a booking keyed by
// variant, e.g. "label_raw.gif" and "form_01_raw.pdf".
func RawFiles(b *shipper.Booking) map[string][]byte {
	files := make(map[string][]byte)
	if b == nil {
		return files
	}
	if len(b.LabelImage) > 0 {
		files["label_raw."+extension(b.LabelFormat)] = b.LabelImage
	}
	for code, form := range b.Forms {
		if len(form.Data) > 0 {
			files["form_"+code+"_raw."+extension(form.Format)] = form.Data
		}
	}
	return files
}

func extension(format string) string {
	if format == "" {
		return "bin"
	}
	return strings.ToLower(format)
}

var _ shipper.ArtifactStore = (*FileStore)(nil)
