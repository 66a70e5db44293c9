package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/aggregate"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/detector"
	"github.com/FACorreiaa/invoice-insights/internal/domain/import/parser"
)

// MemoryRepository implements Repository on an expiring in-process cache.
// Uploads are stored as immutable snapshots: every write replaces the entry,
// so a reader holding an *Upload never sees it change.
type MemoryRepository struct {
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryRepository creates a repository whose uploads expire ttl after
// their last write. A non-positive ttl keeps uploads until deleted.
func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	cleanup := ttl * 2
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}
	return &MemoryRepository{
		cache: cache.New(ttl, cleanup),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Create stores a new upload
func (r *MemoryRepository) Create(ctx context.Context, fileName string, table *parser.Table) (*Upload, error) {
	now := r.now().UTC()
	u := &Upload{
		ID:        uuid.New(),
		FileName:  fileName,
		Table:     table,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.cache.Set(u.ID.String(), u, r.ttl)
	return u, nil
}

// Get retrieves an upload by ID
func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (*Upload, error) {
	v, found := r.cache.Get(id.String())
	if !found {
		return nil, ErrNotFound
	}
	return v.(*Upload), nil
}

// SaveResult stores a copy of the upload carrying the new mapping and result
func (r *MemoryRepository) SaveResult(ctx context.Context, id uuid.UUID, m detector.Mapping, res *aggregate.Result) (*Upload, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	next.Mapping = &m
	next.Result = res
	next.UpdatedAt = r.now().UTC()
	r.cache.Set(id.String(), &next, r.ttl)
	return &next, nil
}

// Delete removes an upload
func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, found := r.cache.Get(id.String()); !found {
		return ErrNotFound
	}
	r.cache.Delete(id.String())
	return nil
}

// Count returns the number of live uploads
func (r *MemoryRepository) Count() int {
	return r.cache.ItemCount()
}

// Flush drops every upload
func (r *MemoryRepository) Flush() {
	r.cache.Flush()
}
