package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aleister1102/ingestor/internal/common/contextutils"
	"github.com/aleister1102/ingestor/internal/common/filemanager"
	"github.com/aleister1102/ingestor/internal/config"
	"github.com/aleister1102/ingestor/internal/metrics"
	"github.com/aleister1102/ingestor/internal/models"
	"github.com/rs/zerolog"
)

// ErrAlreadyRunning is returned by Start when the loop is already active.
// A Scheduler runs at most once.
var ErrAlreadyRunning = errors.New("scheduler is already running")

// FileProcessor ingests one file of a watch folder.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string, folder config.WatchFolderConfig) (*models.ProcessedFileRecord, error)
}

// Scheduler polls the watch folders at a fixed interval and hands every
// discovered file to a FileProcessor, one at a time.
type Scheduler struct {
	folders   []config.WatchFolderConfig
	cfg       config.SchedulerConfig
	processor FileProcessor
	files     *filemanager.FileManager
	metrics   *metrics.Recorder
	volumes   VolumeReporter
	logger    zerolog.Logger

	mu       sync.Mutex
	state    State
	running  bool
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMetrics records cycle outcomes to r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Scheduler) {
		s.metrics = r
	}
}

// WithVolumeReporter replaces the free-space reporter logged per folder.
func WithVolumeReporter(v VolumeReporter) Option {
	return func(s *Scheduler) {
		s.volumes = v
	}
}

// NewScheduler creates a Scheduler in the idle state.
func NewScheduler(folders []config.WatchFolderConfig, cfg config.SchedulerConfig, processor FileProcessor, logger zerolog.Logger, opts ...Option) *Scheduler {
	schedulerLogger := logger.With().Str("module", "Scheduler").Logger()

	s := &Scheduler{
		folders:   folders,
		cfg:       cfg,
		processor: processor,
		files:     filemanager.NewFileManager(logger),
		volumes:   NewDiskUsageReporter(),
		logger:    schedulerLogger,
		state:     StateIdle,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle phase.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Start prepares the folders and runs scan cycles until ctx is cancelled or
// Stop is called. It blocks for the lifetime of the loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	if s.state == StateStopped {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = StateStopped
		s.running = false
		s.mu.Unlock()
		s.closeDone()
		s.logger.Info().Msg("Scheduler stopped")
	}()

	interval := s.cfg.ScanInterval()
	s.logger.Info().
		Int("watch_folders", len(s.folders)).
		Dur("interval", interval).
		Msg("Starting scan scheduler")

	s.Prepare()

	for {
		if result := contextutils.CheckCancellationWithLog(ctx, s.stopChan, s.logger, "scan cycle"); result.Cancelled {
			break
		}

		s.setState(StateScanning)
		summary := s.RunCycle(ctx)
		if summary.Status == models.ScanStatusInterrupted {
			break
		}

		s.setState(StateSleeping)
		s.logger.Info().
			Time("next_scan_time", time.Now().Add(interval)).
			Msg("Scan complete, waiting for next cycle")

		if err := contextutils.WaitWithCancellationAndStop(ctx, interval, s.stopChan); err != nil {
			s.logger.Info().Err(err).Msg("Sleep interrupted")
			break
		}
	}

	s.setState(StateStopping)
	return nil
}

// Stop signals the loop to exit and waits until it has. In-flight file
// processing completes first. Stop is safe to call more than once and
// before Start.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info().Msg("Stopping scheduler")
		close(s.stopChan)
	})

	s.mu.Lock()
	running := s.running
	if !running {
		s.state = StateStopped
	}
	s.mu.Unlock()

	if !running {
		s.closeDone()
		return
	}
	<-s.done
}

func (s *Scheduler) closeDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Done is closed once Start has returned.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}
