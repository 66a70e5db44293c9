package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const metaDir = ".meta"

// LocalStorage implements Storage using the local filesystem
type LocalStorage struct {
	basePath string
	now      func() time.Time
}

// NewLocalStorage creates a new local filesystem storage
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(basePath, metaDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, now: time.Now}, nil
}

// Save stores a file and returns its metadata. Saving the same id twice
// replaces the earlier file.
func (s *LocalStorage) Save(ctx context.Context, id uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error) {
	if old, err := s.info(id); err == nil {
		os.Remove(filepath.Join(s.basePath, old.Path))
	}

	storedFilename := fmt.Sprintf("%s_%s", id.String(), sanitizeFilename(filepath.Base(filename)))
	filePath := filepath.Join(s.basePath, storedFilename)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	info := &FileInfo{
		ID:          id,
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		Path:        storedFilename,
		CreatedAt:   s.now(),
	}
	if err := s.saveMetadata(info); err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, err
	}
	return info, nil
}

// Open retrieves a file by its upload id
func (s *LocalStorage) Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	info, err := s.info(id)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.basePath, info.Path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, info, nil
}

// Delete removes a file and its metadata
func (s *LocalStorage) Delete(ctx context.Context, id uuid.UUID) error {
	info, err := s.info(id)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.basePath, info.Path)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := os.Remove(s.metaPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

// List returns metadata of all stored files. Unreadable entries are skipped.
func (s *LocalStorage) List(ctx context.Context) ([]*FileInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, metaDir))
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		info, err := s.info(id)
		if err != nil {
			continue
		}
		files = append(files, info)
	}
	return files, nil
}

func (s *LocalStorage) metaPath(id uuid.UUID) string {
	return filepath.Join(s.basePath, metaDir, id.String()+".json")
}

func (s *LocalStorage) info(id uuid.UUID) (*FileInfo, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &info, nil
}

func (s *LocalStorage) saveMetadata(info *FileInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(info.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
