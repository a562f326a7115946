// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

const blobExt = ".m4a"

// BlobStore implements secondary.BlobStore with one file per audio payload.
type BlobStore struct {
	basePath string
}

// NewBlobStore creates a blob store rooted at basePath.
// If basePath is empty, defaults to ~/.vintagevoice/audio.
func NewBlobStore(basePath string) (*BlobStore, error) {
	if basePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		basePath = filepath.Join(home, ".vintagevoice", "audio")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}

	return &BlobStore{basePath: basePath}, nil
}

// Put writes data under a fresh reference and returns it.
func (s *BlobStore) Put(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperr.New(apperr.KindValidation, "audio is empty")
	}

	ref := uuid.NewString()
	tmp := s.path(ref) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	if err := os.Rename(tmp, s.path(ref)); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to store audio: %w", err)
	}

	return ref, nil
}

// Get reads the payload for ref.
func (s *BlobStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := validRef(ref); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(ref))
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperr.New(apperr.KindNotFound, "audio %s not found", ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return data, nil
}

// Delete removes the payload for ref. Deleting a missing payload succeeds.
func (s *BlobStore) Delete(ctx context.Context, ref string) error {
	if err := validRef(ref); err != nil {
		return err
	}

	if err := os.Remove(s.path(ref)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete audio: %w", err)
	}
	return nil
}

// Orphans returns the refs of stored payloads that are not in live and were
// last written before cutoff. Partial writes are ignored.
func (s *BlobStore) Orphans(live map[string]bool, cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan blob directory: %w", err)
	}

	var orphans []string
	for _, e := range entries {
		ref, ok := strings.CutSuffix(e.Name(), blobExt)
		if e.IsDir() || !ok || live[ref] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", e.Name(), err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		orphans = append(orphans, ref)
	}
	return orphans, nil
}

func (s *BlobStore) path(ref string) string {
	return filepath.Join(s.basePath, ref+blobExt)
}

// validRef rejects refs that could escape the base directory.
func validRef(ref string) error {
	if ref == "" || strings.ContainsAny(ref, `/\`) || strings.Contains(ref, "..") {
		return apperr.New(apperr.KindValidation, "invalid audio reference %q", ref)
	}
	return nil
}

// Ensure BlobStore implements the interface
var _ secondary.BlobStore = (*BlobStore)(nil)
