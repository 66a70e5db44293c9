package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	info, err := store.Save(ctx, id, "ventas enero.csv", "text/csv", strings.NewReader("fecha,total\n"))
	require.NoError(t, err)
	assert.Equal(t, id, info.ID)
	assert.Equal(t, int64(12), info.Size)
	assert.Equal(t, "ventas enero.csv", info.Name)

	rc, got, err := store.Open(ctx, id)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "fecha,total\n", string(data))
	assert.Equal(t, "text/csv", got.ContentType)

	files, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, id, files[0].ID)

	require.NoError(t, store.Delete(ctx, id))
	_, _, err = store.Open(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, id), ErrNotFound)

	files, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLocalStorage_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	_, err = store.Save(ctx, id, "a.csv", "text/csv", strings.NewReader("old"))
	require.NoError(t, err)
	_, err = store.Save(ctx, id, "b.csv", "text/csv", strings.NewReader("new"))
	require.NoError(t, err)

	rc, info, err := store.Open(ctx, id)
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "new", string(data))
	assert.Equal(t, "b.csv", info.Name)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ventas.csv", "ventas.csv"},
		{"../../etc/passwd", "____etc_passwd"},
		{`a:b*c?"d"<e>|f`, "a_b_c__d__e__f"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}
