package notifier

import (
	"context"

	"github.com/aleister1102/ingestor/internal/config"
	"github.com/aleister1102/ingestor/internal/models"
)

// Notifier reports an ingested file to an external endpoint. Implementations
// are best-effort: failures are logged and never returned. Notify runs on
// the caller's goroutine and must return within a bounded time.
type Notifier interface {
	Notify(ctx context.Context, record models.ProcessedFileRecord, target config.APIConfig)
}
