package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-assistant/internal/domain"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personal.json")
	v := New(path)
	ctx := context.Background()

	rec := domain.Record{
		"summary": "Engineer",
		"skills":  map[string]any{"technical": []any{"Go", "Postgres"}},
	}
	require.NoError(t, v.Save(ctx, rec))

	loaded, err := v.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Engineer", loaded["summary"])
	assert.Equal(t, []any{"Go", "Postgres"}, loaded["skills"].(map[string]any)["technical"])
}

func TestLoad_MissingFileIsNotFound(t *testing.T) {
	v := New(filepath.Join(t.TempDir(), "personal.json"))
	_, err := v.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSave_LastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personal.json")
	v := New(path)
	ctx := context.Background()

	require.NoError(t, v.Save(ctx, domain.Record{"summary": "first"}))
	require.NoError(t, v.Save(ctx, domain.Record{"summary": "second"}))

	loaded, err := v.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", loaded["summary"])
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personal.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := New(path).Load(context.Background())
	require.ErrorIs(t, err, domain.ErrInternal)
}
