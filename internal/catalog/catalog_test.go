package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aleister1102/ingestor/internal/config"
	"github.com/aleister1102/ingestor/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "catalog.db")
	c, err := New(context.Background(), config.CatalogConfig{ConnectionString: "Data Source=" + path}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func helloRecord() models.ProcessedFileRecord {
	return models.ProcessedFileRecord{
		Name:        "hello.txt",
		FileSize:    11,
		Date:        time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
		MD5:         "5eb63bbbe01eeed093cb22bb8f5acdc3",
		CRC32:       "0D4A1185",
		SHA1:        "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed",
		Source:      "test",
		ProcessedAt: time.Date(2024, 5, 1, 8, 31, 0, 0, time.UTC),
	}
}

func TestNew_CreatesDatabaseDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	c, err := New(context.Background(), config.CatalogConfig{ConnectionString: filepath.Join(dir, "c.db")}, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	_, err = os.Stat(filepath.Join(dir, "c.db"))
	assert.NoError(t, err)
}

func TestNew_SchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.db")
	cfg := config.CatalogConfig{ConnectionString: path}

	c, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	rec := helloRecord()
	_, err = c.Insert(context.Background(), &rec)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	all, err := c.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInsert_AssignsIncreasingIDs(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	first := helloRecord()
	id1, err := c.Insert(ctx, &first)
	require.NoError(t, err)
	assert.Equal(t, id1, first.ID)

	second := helloRecord()
	second.Name = "other.txt"
	id2, err := c.Insert(ctx, &second)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)
}

func TestInsert_RoundTripsFields(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	rec := helloRecord()
	_, err := c.Insert(ctx, &rec)
	require.NoError(t, err)

	found, err := c.FindByMD5(ctx, rec.MD5)
	require.NoError(t, err)
	require.Len(t, found, 1)

	got := found[0]
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Name, got.Name)
	assert.Equal(t, rec.FileSize, got.FileSize)
	assert.True(t, rec.Date.Equal(got.Date), "date %v != %v", rec.Date, got.Date)
	assert.True(t, rec.ProcessedAt.Equal(got.ProcessedAt))
	assert.Equal(t, rec.CRC32, got.CRC32)
	assert.Equal(t, rec.SHA1, got.SHA1)
	assert.Equal(t, rec.Source, got.Source)
}

func TestFindByMD5_ReturnsAllDuplicates(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	a := helloRecord()
	a.Source = "scanner-a"
	b := helloRecord()
	b.Source = "scanner-b"
	_, err := c.Insert(ctx, &a)
	require.NoError(t, err)
	_, err = c.Insert(ctx, &b)
	require.NoError(t, err)

	found, err := c.FindByMD5(ctx, strings.ToUpper(a.MD5))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "scanner-a", found[0].Source)
	assert.Equal(t, "scanner-b", found[1].Source)

	bySHA, err := c.FindBySHA1(ctx, a.SHA1)
	require.NoError(t, err)
	assert.Len(t, bySHA, 2)
}

func TestFind_NoMatchIsEmpty(t *testing.T) {
	c := newTestCatalog(t)

	found, err := c.FindByMD5(context.Background(), "00000000000000000000000000000000")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)

	all, err := c.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInsert_RejectsInvalidRecords(t *testing.T) {
	c := newTestCatalog(t)

	tests := []struct {
		name   string
		mutate func(r *models.ProcessedFileRecord)
	}{
		{"empty name", func(r *models.ProcessedFileRecord) { r.Name = "" }},
		{"long name", func(r *models.ProcessedFileRecord) { r.Name = strings.Repeat("n", models.MaxNameLength+1) }},
		{"long source", func(r *models.ProcessedFileRecord) { r.Source = strings.Repeat("s", models.MaxSourceLength+1) }},
		{"short md5", func(r *models.ProcessedFileRecord) { r.MD5 = "abc" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := helloRecord()
			tt.mutate(&rec)

			_, err := c.Insert(context.Background(), &rec)
			var storageErr *models.StorageError
			require.True(t, errors.As(err, &storageErr))
			assert.Equal(t, "insert", storageErr.Op)
		})
	}

	all, err := c.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInsert_ClosedCatalogReturnsStorageError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.db")
	c, err := New(context.Background(), config.CatalogConfig{ConnectionString: path}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, c.Close())

	rec := helloRecord()
	_, err = c.Insert(context.Background(), &rec)
	var storageErr *models.StorageError
	assert.True(t, errors.As(err, &storageErr))
}
