package contextutils

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ErrStopped is returned when a wait ends because the stop channel closed.
var ErrStopped = errors.New("stop requested")

// ContextCheckResult represents the result of a cancellation check
type ContextCheckResult struct {
	Cancelled bool
	Error     error
}

// CheckCancellation reports whether ctx is done or stop is closed. A nil
// stop channel is never closed.
func CheckCancellation(ctx context.Context, stop <-chan struct{}) ContextCheckResult {
	select {
	case <-ctx.Done():
		return ContextCheckResult{Cancelled: true, Error: ctx.Err()}
	case <-stop:
		return ContextCheckResult{Cancelled: true, Error: ErrStopped}
	default:
		return ContextCheckResult{}
	}
}

// CheckCancellationWithLog checks for cancellation and logs if cancelled
func CheckCancellationWithLog(ctx context.Context, stop <-chan struct{}, logger zerolog.Logger, operation string) ContextCheckResult {
	result := CheckCancellation(ctx, stop)
	if result.Cancelled {
		logger.Info().Err(result.Error).Str("operation", operation).Msg("Cancellation observed")
	}
	return result
}

// WaitWithCancellationAndStop waits for duration, context cancellation, or
// stop signal, whichever comes first. It returns nil only when the full
// duration elapsed.
func WaitWithCancellationAndStop(ctx context.Context, duration time.Duration, stop <-chan struct{}) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-stop:
		return ErrStopped
	}
}
