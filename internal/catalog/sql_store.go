package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/aleister1102/ingestor/internal/common/errorwrapper"
	"github.com/aleister1102/ingestor/internal/common/filemanager"
	"github.com/aleister1102/ingestor/internal/models"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const (
	sqliteSchema = `CREATE TABLE IF NOT EXISTS processed_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(255) NOT NULL,
		file_size BIGINT NOT NULL,
		date TIMESTAMP NOT NULL,
		md5 CHAR(32) NOT NULL,
		crc32 CHAR(8) NOT NULL,
		sha1 CHAR(40) NOT NULL,
		source VARCHAR(100) NOT NULL,
		processed_at TIMESTAMP NOT NULL
	)`

	postgresSchema = `CREATE TABLE IF NOT EXISTS processed_files (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		file_size BIGINT NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		md5 CHAR(32) NOT NULL,
		crc32 CHAR(8) NOT NULL,
		sha1 CHAR(40) NOT NULL,
		source VARCHAR(100) NOT NULL,
		processed_at TIMESTAMPTZ NOT NULL
	)`

	createMD5Index  = `CREATE INDEX IF NOT EXISTS idx_processed_files_md5 ON processed_files (md5)`
	createSHA1Index = `CREATE INDEX IF NOT EXISTS idx_processed_files_sha1 ON processed_files (sha1)`

	selectColumns = `SELECT id, name, file_size, date, md5, crc32, sha1, source, processed_at FROM processed_files`

	insertRecord = `INSERT INTO processed_files (name, file_size, date, md5, crc32, sha1, source, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`
)

// SQLStore is the database/sql backed Catalog used for both sqlite and
// postgres.
type SQLStore struct {
	db     *sqlx.DB
	driver string
	logger zerolog.Logger
}

// OpenSQLStore connects to the database and initializes the schema.
func OpenSQLStore(ctx context.Context, conn Connection, logger zerolog.Logger) (*SQLStore, error) {
	moduleLogger := logger.With().Str("module", "Catalog").Str("driver", conn.Driver).Logger()

	if conn.Driver == DriverSQLite && conn.Path != "" {
		if dir := parentDir(conn.Path); dir != "" {
			fm := filemanager.NewFileManager(logger)
			if err := fm.EnsureDirectory(dir, filemanager.SharedDirPerm); err != nil {
				moduleLogger.Error().Err(err).Str("dir", dir).Msg("Failed to create catalog directory")
				return nil, models.NewStorageError("open", err)
			}
		}
	}

	db, err := sqlx.Open(conn.Driver, conn.DSN)
	if err != nil {
		moduleLogger.Error().Err(err).Msg("Failed to open catalog database")
		return nil, models.NewStorageError("open", err)
	}

	if conn.Driver == DriverSQLite {
		// A single connection serialises writers and keeps :memory: databases alive.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		moduleLogger.Error().Err(err).Msg("Failed to connect to catalog database")
		return nil, models.NewStorageError("open", err)
	}

	s := &SQLStore{db: db, driver: conn.Driver, logger: moduleLogger}
	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	moduleLogger.Info().Str("path", conn.Path).Msg("Catalog opened")
	return s, nil
}

// InitSchema creates the processed_files table and its digest indexes.
func (s *SQLStore) InitSchema(ctx context.Context) error {
	schema := sqliteSchema
	if s.driver == DriverPostgres {
		schema = postgresSchema
	}

	for _, stmt := range []string{schema, createMD5Index, createSHA1Index} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.logger.Error().Err(err).Msg("Failed to initialize catalog schema")
			return models.NewStorageError("init schema", err)
		}
	}
	return nil
}

// Insert implements Catalog.
func (s *SQLStore) Insert(ctx context.Context, rec *models.ProcessedFileRecord) (int64, error) {
	if err := validateRecord(rec); err != nil {
		return 0, models.NewStorageError("insert", err)
	}

	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(insertRecord),
		rec.Name,
		rec.FileSize,
		rec.Date.UTC(),
		strings.ToLower(rec.MD5),
		strings.ToUpper(rec.CRC32),
		strings.ToLower(rec.SHA1),
		rec.Source,
		rec.ProcessedAt.UTC(),
	).Scan(&id)
	if err != nil {
		s.logger.Error().Err(err).Str("name", rec.Name).Msg("Failed to insert processed file record")
		return 0, models.NewStorageError("insert", err)
	}

	rec.ID = id
	s.logger.Debug().Int64("id", id).Str("name", rec.Name).Str("md5", rec.MD5).Msg("Inserted processed file record")
	return id, nil
}

// FindByMD5 implements Catalog.
func (s *SQLStore) FindByMD5(ctx context.Context, md5 string) ([]models.ProcessedFileRecord, error) {
	return s.selectRecords(ctx, "find by md5", selectColumns+` WHERE md5 = ? ORDER BY id`, strings.ToLower(strings.TrimSpace(md5)))
}

// FindBySHA1 implements Catalog.
func (s *SQLStore) FindBySHA1(ctx context.Context, sha1 string) ([]models.ProcessedFileRecord, error) {
	return s.selectRecords(ctx, "find by sha1", selectColumns+` WHERE sha1 = ? ORDER BY id`, strings.ToLower(strings.TrimSpace(sha1)))
}

// ListAll implements Catalog.
func (s *SQLStore) ListAll(ctx context.Context) ([]models.ProcessedFileRecord, error) {
	return s.selectRecords(ctx, "list", selectColumns+` ORDER BY id`)
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return models.NewStorageError("close", err)
	}
	return nil
}

func (s *SQLStore) selectRecords(ctx context.Context, op, query string, args ...any) ([]models.ProcessedFileRecord, error) {
	records := []models.ProcessedFileRecord{}
	if err := s.db.SelectContext(ctx, &records, s.db.Rebind(query), args...); err != nil {
		s.logger.Error().Err(err).Str("op", op).Msg("Catalog query failed")
		return nil, models.NewStorageError(op, err)
	}
	return records, nil
}

func validateRecord(rec *models.ProcessedFileRecord) error {
	switch {
	case rec == nil:
		return errorwrapper.NewValidationError("record", nil, "is nil")
	case rec.Name == "":
		return errorwrapper.NewValidationError("name", rec.Name, "is empty")
	case utf8.RuneCountInString(rec.Name) > models.MaxNameLength:
		return errorwrapper.NewValidationError("name", rec.Name, fmt.Sprintf("longer than %d characters", models.MaxNameLength))
	case rec.Source == "":
		return errorwrapper.NewValidationError("source", rec.Source, "is empty")
	case utf8.RuneCountInString(rec.Source) > models.MaxSourceLength:
		return errorwrapper.NewValidationError("source", rec.Source, fmt.Sprintf("longer than %d characters", models.MaxSourceLength))
	case len(rec.MD5) != 32 || len(rec.CRC32) != 8 || len(rec.SHA1) != 40:
		return errorwrapper.NewValidationError("checksums", rec.Name, "have unexpected length")
	}
	return nil
}

func parentDir(path string) string {
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}
