package cron

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/invoice-insights/internal/domain/import/parser"
	"github.com/FACorreiaa/invoice-insights/internal/domain/session"
	"github.com/FACorreiaa/invoice-insights/pkg/storage"
)

func TestScheduler_Sweep(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	uploads := session.NewMemoryRepository(time.Hour)

	live, err := uploads.Create(ctx, "live.csv", &parser.Table{Headers: []string{"fecha"}})
	require.NoError(t, err)
	_, err = archive.Save(ctx, live.ID, "live.csv", "text/csv", strings.NewReader("fecha\n"))
	require.NoError(t, err)

	orphan := uuid.New()
	_, err = archive.Save(ctx, orphan, "gone.csv", "text/csv", strings.NewReader("fecha\n"))
	require.NoError(t, err)

	s := NewScheduler("", archive, uploads, logger)
	removed, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	files, err := archive.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, live.ID, files[0].ID)
}

func TestScheduler_StartStop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	s := NewScheduler("@every 1h", archive, session.NewMemoryRepository(0), logger)
	require.NoError(t, s.Start())
	<-s.Stop().Done()

	bad := NewScheduler("not a schedule", archive, session.NewMemoryRepository(0), logger)
	assert.Error(t, bad.Start())
}
