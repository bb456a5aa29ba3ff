package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/wildlife-health-watch/internal/generator"
	"github.com/couchcryptid/wildlife-health-watch/internal/pipeline"
	"github.com/couchcryptid/wildlife-health-watch/internal/store"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorSource_UsesClockForWindow(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC))
	src := pipeline.NewGeneratorSource(generator.DefaultRequest(time.Time{}), clock)

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, generator.DefaultCount)

	last := records[len(records)-1]
	assert.False(t, last.ReportDate.After(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)))
	assert.Contains(t, records[0].CaseID, "WHW-2025-")
	assert.Equal(t, "generated:count=500,seed=42,window=365,prefix=WHW", src.Key())
}

func TestGeneratorSource_CancelledContext(t *testing.T) {
	src := pipeline.NewGeneratorSource(generator.DefaultRequest(time.Time{}), clockwork.NewFakeClock())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCSVSource_LoadsExport(t *testing.T) {
	records, err := generator.Generate(generator.DefaultRequest(asOf))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "wildlife_health_data.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, store.WriteCSV(f, records))
	require.NoError(t, f.Close())

	src := pipeline.NewCSVSource(path)
	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, len(records))
	assert.Equal(t, "csv:"+path, src.Key())
}

func TestCSVSource_MissingFile(t *testing.T) {
	src := pipeline.NewCSVSource(filepath.Join(t.TempDir(), "absent.csv"))
	_, err := src.Load(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVSource_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("not,a,case,export\n"), 0o600))

	_, err := pipeline.NewCSVSource(path).Load(context.Background())
	require.ErrorIs(t, err, store.ErrMalformedCSV)
}
