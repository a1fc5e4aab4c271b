package catalog

import (
	"context"
	"fmt"

	"github.com/aleister1102/ingestor/internal/config"
	"github.com/aleister1102/ingestor/internal/models"
	"github.com/rs/zerolog"
)

// Catalog is the append-only store of processed files.
type Catalog interface {
	// Insert persists rec and returns the identifier assigned to it.
	// rec.ID is set on success.
	Insert(ctx context.Context, rec *models.ProcessedFileRecord) (int64, error)
	// FindByMD5 returns every record whose MD5 matches, oldest first.
	FindByMD5(ctx context.Context, md5 string) ([]models.ProcessedFileRecord, error)
	// FindBySHA1 returns every record whose SHA-1 matches, oldest first.
	FindBySHA1(ctx context.Context, sha1 string) ([]models.ProcessedFileRecord, error)
	// ListAll returns all records in insertion order.
	ListAll(ctx context.Context) ([]models.ProcessedFileRecord, error)
	Close() error
}

// New opens the catalog described by cfg and makes sure its schema exists.
func New(ctx context.Context, cfg config.CatalogConfig, logger zerolog.Logger) (Catalog, error) {
	conn, err := ParseConnectionString(cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog connection string: %w", err)
	}
	return OpenSQLStore(ctx, conn, logger)
}
