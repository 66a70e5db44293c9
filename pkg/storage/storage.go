// Package storage keeps the original bytes of uploaded files so they can be
// downloaded again while their upload session lives.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("stored file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"` // upload id
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for file storage operations
type Storage interface {
	// Save stores the original file of upload id and returns its metadata
	Save(ctx context.Context, id uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Open returns a reader for the file of upload id
	Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes the file of upload id
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns every stored file
	List(ctx context.Context) ([]*FileInfo, error)
}
