package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"

	"github.com/aleister1102/ingestor/internal/models"
	"github.com/rs/zerolog"
)

// DefaultBufferSize is the size of the read buffer used for each pass.
const DefaultBufferSize = 64 * 1024

// crcTable is the reflected 0xEDB88320 lookup table, built once and only read afterwards.
var crcTable = crc32.MakeTable(crc32.IEEE)

// Checksums holds the digests of one file.
type Checksums struct {
	MD5   string // 32 lowercase hex chars
	CRC32 string // 8 uppercase hex chars
	SHA1  string // 40 lowercase hex chars

	// Passes is the number of complete reads that were needed.
	Passes int
}

// Equal reports whether both digest triples match.
func (c Checksums) Equal(other Checksums) bool {
	return c.MD5 == other.MD5 && c.CRC32 == other.CRC32 && c.SHA1 == other.SHA1
}

// OpenFunc opens a file for one read pass.
type OpenFunc func(path string) (io.ReadCloser, error)

// Engine computes MD5, CRC-32 and SHA-1 digests with a double-pass
// verification: a file is read twice and the result is only accepted when
// both passes agree.
type Engine struct {
	open        OpenFunc
	bufferSize  int
	maxAttempts int
	logger      zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithOpener replaces the file opener.
func WithOpener(open OpenFunc) Option {
	return func(e *Engine) {
		e.open = open
	}
}

// WithMaxAttempts bounds the number of double-pass attempts. Zero means
// retry until the file is stable.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxAttempts = n
		}
	}
}

// WithBufferSize sets the read buffer size.
func WithBufferSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.bufferSize = size
		}
	}
}

// NewEngine creates a checksum engine.
func NewEngine(logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		open: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
		bufferSize: DefaultBufferSize,
		logger:     logger.With().Str("module", "ChecksumEngine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute returns the digests of the file at path. It keeps reading the
// file in pairs of passes until two consecutive passes agree.
func (e *Engine) Compute(path string) (Checksums, error) {
	buf := make([]byte, e.bufferSize)
	passes := 0

	for attempt := 1; ; attempt++ {
		first, err := e.pass(path, buf)
		if err != nil {
			return Checksums{}, err
		}
		second, err := e.pass(path, buf)
		if err != nil {
			return Checksums{}, err
		}
		passes += 2

		if first.Equal(second) {
			first.Passes = passes
			return first, nil
		}

		e.logger.Warn().
			Str("path", path).
			Int("attempt", attempt).
			Str("md5_first", first.MD5).
			Str("md5_second", second.MD5).
			Msg("Checksums differ between passes, file may be changing; retrying")

		if e.maxAttempts > 0 && attempt >= e.maxAttempts {
			return Checksums{}, &models.IntegrityError{Path: path, Attempts: attempt}
		}
	}
}

// pass reads the file once, feeding all three hashers from the same buffer.
func (e *Engine) pass(path string, buf []byte) (Checksums, error) {
	f, err := e.open(path)
	if err != nil {
		return Checksums{}, models.NewIOError(path, "open", err)
	}
	defer f.Close()

	md5h := md5.New()
	sha1h := sha1.New()
	crch := crc32.New(crcTable)

	if _, err := io.CopyBuffer(io.MultiWriter(md5h, sha1h, crch), f, buf); err != nil {
		return Checksums{}, models.NewIOError(path, "read", err)
	}

	return Checksums{
		MD5:   hexDigest(md5h),
		CRC32: fmt.Sprintf("%08X", crch.Sum32()),
		SHA1:  hexDigest(sha1h),
	}, nil
}

func hexDigest(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
