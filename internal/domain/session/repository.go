// Package session keeps uploaded tables and their processed results between
// requests.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/aggregate"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/detector"
	"github.com/FACorreiaa/invoice-insights/internal/domain/import/parser"
)

var ErrNotFound = errors.New("upload not found")

// Upload is one uploaded file and, once processed, the mapping and result of
// the latest run.
type Upload struct {
	ID        uuid.UUID
	FileName  string
	Table     *parser.Table
	Mapping   *detector.Mapping // nil until processed
	Result    *aggregate.Result // nil until processed
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Processed reports whether a result has been stored
func (u *Upload) Processed() bool {
	return u.Result != nil
}

// Repository defines the storage operations for uploads
type Repository interface {
	// Create stores a freshly read table under a new ID
	Create(ctx context.Context, fileName string, table *parser.Table) (*Upload, error)
	Get(ctx context.Context, id uuid.UUID) (*Upload, error)
	// SaveResult replaces the mapping and result of an upload wholesale
	SaveResult(ctx context.Context, id uuid.UUID, m detector.Mapping, res *aggregate.Result) (*Upload, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
