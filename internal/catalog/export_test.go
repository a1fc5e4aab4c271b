package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aleister1102/ingestor/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLister struct{}

func (failingLister) ListAll(context.Context) ([]models.ProcessedFileRecord, error) {
	return nil, errors.New("boom")
}

func TestParquetExporter_WritesAllRecords(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	for _, name := range []string{"a.txt", "b.txt"} {
		rec := helloRecord()
		rec.Name = name
		_, err := c.Insert(ctx, &rec)
		require.NoError(t, err)
	}

	for _, codec := range []string{"zstd", "snappy", "gzip", "none"} {
		t.Run(codec, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "exports", "files.parquet")
			n, err := NewParquetExporter(c, codec, zerolog.Nop()).Export(ctx, out)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			rows, err := parquet.ReadFile[models.ProcessedFileRecord](out)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "a.txt", rows[0].Name)
			assert.Equal(t, "b.txt", rows[1].Name)
			assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", rows[1].MD5)
		})
	}
}

func TestParquetExporter_SourceFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "files.parquet")
	_, err := NewParquetExporter(failingLister{}, "zstd", zerolog.Nop()).Export(context.Background(), out)
	assert.Error(t, err)
	assert.NoFileExists(t, out)
}
