package scheduler

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/ingestor/internal/catalog"
	"github.com/aleister1102/ingestor/internal/checksum"
	"github.com/aleister1102/ingestor/internal/common/filemanager"
	"github.com/aleister1102/ingestor/internal/config"
	"github.com/aleister1102/ingestor/internal/models"
	"github.com/aleister1102/ingestor/internal/pipeline"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	mu      sync.Mutex
	paths   []string
	failing map[string]bool
	onFile  func(path string)
	ctxErrs []error
}

func (p *fakeProcessor) ProcessFile(ctx context.Context, path string, folder config.WatchFolderConfig) (*models.ProcessedFileRecord, error) {
	p.mu.Lock()
	p.paths = append(p.paths, path)
	hook := p.onFile
	fail := p.failing[filepath.Base(path)]
	p.mu.Unlock()

	if hook != nil {
		hook(path)
	}
	p.mu.Lock()
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	p.mu.Unlock()
	if fail {
		return nil, models.NewProcessingError(path, models.StageChecksum, errors.New("unreadable"))
	}
	return &models.ProcessedFileRecord{Name: filepath.Base(path), Source: folder.Source}, nil
}

func (p *fakeProcessor) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := append([]string(nil), p.paths...)
	sort.Strings(out)
	return out
}

type fakeVolumes struct{}

func (fakeVolumes) Usage(string) (VolumeUsage, error) {
	return VolumeUsage{Total: 2 << 30, Free: 1 << 30, UsedPercent: 50}, nil
}

func testSchedulerConfig() config.SchedulerConfig {
	cfg := config.NewDefaultSchedulerConfig()
	cfg.ScanIntervalMinutes = 60
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func folderAt(root, name string) config.WatchFolderConfig {
	return config.WatchFolderConfig{
		InPath:  filepath.Join(root, name, "in"),
		OutPath: filepath.Join(root, name, "out"),
		Source:  name,
	}
}

func TestPrepare_CreatesDirectoriesAndMarker(t *testing.T) {
	root := t.TempDir()
	folder := folderAt(root, "a")

	s := NewScheduler([]config.WatchFolderConfig{folder}, testSchedulerConfig(), &fakeProcessor{}, zerolog.Nop())
	s.Prepare()

	assert.DirExists(t, folder.InPath)
	assert.DirExists(t, folder.OutPath)
	assert.FileExists(t, filepath.Join(folder.OutPath, filemanager.MarkerFileName))
	assert.NoFileExists(t, filepath.Join(folder.InPath, filemanager.MarkerFileName))

	// Idempotent.
	s.Prepare()
	assert.FileExists(t, filepath.Join(folder.OutPath, filemanager.MarkerFileName))
}

func TestPrepare_MarkerDisabled(t *testing.T) {
	folder := folderAt(t.TempDir(), "a")
	cfg := testSchedulerConfig()
	cfg.CreatePermissionMarker = false

	NewScheduler([]config.WatchFolderConfig{folder}, cfg, &fakeProcessor{}, zerolog.Nop()).Prepare()

	assert.DirExists(t, folder.OutPath)
	assert.NoFileExists(t, filepath.Join(folder.OutPath, filemanager.MarkerFileName))
}

func TestRunCycle_MissingFolderDoesNotStopOthers(t *testing.T) {
	root := t.TempDir()
	missing := folderAt(root, "missing")
	present := folderAt(root, "present")
	writeFile(t, filepath.Join(present.InPath, "x.txt"), "x")

	proc := &fakeProcessor{}
	s := NewScheduler([]config.WatchFolderConfig{missing, present}, testSchedulerConfig(), proc, zerolog.Nop())

	summary := s.RunCycle(context.Background())

	require.Len(t, summary.Folders, 2)
	assert.NotEmpty(t, summary.Folders[0].Error)
	assert.Empty(t, summary.Folders[1].Error)
	assert.Equal(t, 1, summary.Folders[1].Processed)
	assert.Equal(t, models.ScanStatusPartialComplete, summary.Status)
	assert.Equal(t, 1, summary.FolderErrors())
	assert.Equal(t, []string{filepath.Join(present.InPath, "x.txt")}, proc.seen())
	assert.NotEmpty(t, summary.CycleID)
}

func TestRunCycle_SkipsIgnoredDirectories(t *testing.T) {
	folder := folderAt(t.TempDir(), "a")
	writeFile(t, filepath.Join(folder.InPath, "keep.txt"), "k")
	writeFile(t, filepath.Join(folder.InPath, "sub", "keep2.txt"), "k")
	writeFile(t, filepath.Join(folder.InPath, "@eaDir", "thumb.jpg"), "t")
	writeFile(t, filepath.Join(folder.InPath, "sub", "#recycle", "old.txt"), "o")
	writeFile(t, filepath.Join(folder.InPath, ".DS_Store"), "d")

	proc := &fakeProcessor{}
	s := NewScheduler([]config.WatchFolderConfig{folder}, testSchedulerConfig(), proc, zerolog.Nop())
	summary := s.RunCycle(context.Background())

	assert.Equal(t, []string{
		filepath.Join(folder.InPath, "keep.txt"),
		filepath.Join(folder.InPath, "sub", "keep2.txt"),
	}, proc.seen())
	assert.Equal(t, 2, summary.Folders[0].Discovered)
	assert.Equal(t, models.ScanStatusCompleted, summary.Status)
}

func TestRunCycle_FileFailureIsIsolated(t *testing.T) {
	folder := folderAt(t.TempDir(), "a")
	for _, name := range []string{"1.txt", "2.txt", "3.txt"} {
		writeFile(t, filepath.Join(folder.InPath, name), name)
	}

	proc := &fakeProcessor{failing: map[string]bool{"2.txt": true}}
	s := NewScheduler([]config.WatchFolderConfig{folder}, testSchedulerConfig(), proc, zerolog.Nop())
	summary := s.RunCycle(context.Background())

	assert.Len(t, proc.seen(), 3)
	assert.Equal(t, 2, summary.Folders[0].Processed)
	assert.Equal(t, 1, summary.Folders[0].Failed)
	assert.Equal(t, models.ScanStatusPartialComplete, summary.Status)
}

func TestRunCycle_CancelledContextProcessesNothing(t *testing.T) {
	folder := folderAt(t.TempDir(), "a")
	writeFile(t, filepath.Join(folder.InPath, "x.txt"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proc := &fakeProcessor{}
	summary := NewScheduler([]config.WatchFolderConfig{folder}, testSchedulerConfig(), proc, zerolog.Nop()).RunCycle(ctx)

	assert.Equal(t, models.ScanStatusInterrupted, summary.Status)
	assert.Empty(t, proc.seen())
}

func TestRunCycle_StopBetweenFilesFinishesCurrentFile(t *testing.T) {
	folder := folderAt(t.TempDir(), "a")
	writeFile(t, filepath.Join(folder.InPath, "1.txt"), "1")
	writeFile(t, filepath.Join(folder.InPath, "2.txt"), "2")

	proc := &fakeProcessor{}
	s := NewScheduler([]config.WatchFolderConfig{folder}, testSchedulerConfig(), proc, zerolog.Nop())
	proc.onFile = func(string) {
		s.stopOnce.Do(func() { close(s.stopChan) })
	}

	summary := s.RunCycle(context.Background())

	assert.Equal(t, models.ScanStatusInterrupted, summary.Status)
	assert.Len(t, proc.seen(), 1)
	assert.Equal(t, 1, summary.Folders[0].Processed)
}

func TestRunCycle_CancelDuringFileDoesNotReachProcessor(t *testing.T) {
	folder := folderAt(t.TempDir(), "a")
	writeFile(t, filepath.Join(folder.InPath, "1.txt"), "1")
	writeFile(t, filepath.Join(folder.InPath, "2.txt"), "2")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	proc := &fakeProcessor{onFile: func(string) { cancel() }}
	summary := NewScheduler([]config.WatchFolderConfig{folder}, testSchedulerConfig(), proc, zerolog.Nop()).RunCycle(ctx)

	assert.Equal(t, models.ScanStatusInterrupted, summary.Status)
	assert.Equal(t, 1, summary.Folders[0].Processed)
	require.Len(t, proc.ctxErrs, 1)
	assert.NoError(t, proc.ctxErrs[0])
}

func TestRunCycle_LogsVolumeUsage(t *testing.T) {
	folder := folderAt(t.TempDir(), "a")
	require.NoError(t, os.MkdirAll(folder.InPath, 0755))

	var logs bytes.Buffer
	s := NewScheduler([]config.WatchFolderConfig{folder}, testSchedulerConfig(), &fakeProcessor{}, zerolog.New(&logs), WithVolumeReporter(fakeVolumes{}))
	s.RunCycle(context.Background())

	assert.Contains(t, logs.String(), "Output volume usage")
	assert.Contains(t, logs.String(), `"free":"1.1 GB"`)
}

func TestStart_StopDuringSleep(t *testing.T) {
	folder := folderAt(t.TempDir(), "a")
	writeFile(t, filepath.Join(folder.InPath, "x.txt"), "x")

	proc := &fakeProcessor{}
	s := NewScheduler([]config.WatchFolderConfig{folder}, testSchedulerConfig(), proc, zerolog.Nop())
	assert.Equal(t, StateIdle, s.State())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool { return s.State() == StateSleeping }, 5*time.Second, 10*time.Millisecond)
	assert.Len(t, proc.seen(), 1)

	s.Stop()
	assert.Equal(t, StateStopped, s.State())
	require.NoError(t, <-errCh)

	// Idempotent.
	s.Stop()
	assert.NoError(t, s.Start(context.Background()))
}

func TestStart_ContextCancelEndsLoop(t *testing.T) {
	folder := folderAt(t.TempDir(), "a")
	s := NewScheduler([]config.WatchFolderConfig{folder}, testSchedulerConfig(), &fakeProcessor{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return s.State() == StateSleeping }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	<-s.Done()
	assert.Equal(t, StateStopped, s.State())
}

func TestStart_RejectsSecondStart(t *testing.T) {
	folder := folderAt(t.TempDir(), "a")
	s := NewScheduler([]config.WatchFolderConfig{folder}, testSchedulerConfig(), &fakeProcessor{}, zerolog.Nop())

	go func() { _ = s.Start(context.Background()) }()
	require.Eventually(t, func() bool { return s.State() == StateSleeping }, 5*time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyRunning)
	s.Stop()
}

func TestStop_BeforeStart(t *testing.T) {
	proc := &fakeProcessor{}
	s := NewScheduler(nil, testSchedulerConfig(), proc, zerolog.Nop())

	s.Stop()
	assert.Equal(t, StateStopped, s.State())
	assert.NoError(t, s.Start(context.Background()))
	<-s.Done()
	assert.Empty(t, proc.seen())
}

func TestStateString(t *testing.T) {
	for state, want := range map[State]string{
		StateIdle:     "idle",
		StateScanning: "scanning",
		StateSleeping: "sleeping",
		StateStopping: "stopping",
		StateStopped:  "stopped",
		State(42):     "unknown",
	} {
		assert.Equal(t, want, state.String(), fmt.Sprint(int(state)))
	}
}

func TestEndToEnd_SingleCycle(t *testing.T) {
	root := t.TempDir()
	folder := config.WatchFolderConfig{
		InPath:  filepath.Join(root, "in"),
		OutPath: filepath.Join(root, "out"),
		Source:  "test",
	}
	content := []byte("helloworld")
	require.Len(t, content, 10)
	writeFile(t, filepath.Join(folder.InPath, "hello.txt"), string(content))

	cat, err := catalog.New(context.Background(), config.CatalogConfig{ConnectionString: filepath.Join(root, "db", "catalog.db")}, zerolog.Nop())
	require.NoError(t, err)
	defer cat.Close()

	p := pipeline.New(checksum.NewEngine(zerolog.Nop()), cat, nil, zerolog.Nop())
	s := NewScheduler([]config.WatchFolderConfig{folder}, testSchedulerConfig(), p, zerolog.Nop())
	s.Prepare()

	summary := s.RunCycle(context.Background())
	assert.Equal(t, models.ScanStatusCompleted, summary.Status)

	md5Sum := md5.Sum(content)
	sha1Sum := sha1.Sum(content)
	wantCRC := fmt.Sprintf("%08X", crc32.ChecksumIEEE(content))

	records, err := cat.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "hello.txt", rec.Name)
	assert.Equal(t, int64(10), rec.FileSize)
	assert.Equal(t, hex.EncodeToString(md5Sum[:]), rec.MD5)
	assert.Equal(t, hex.EncodeToString(sha1Sum[:]), rec.SHA1)
	assert.Equal(t, wantCRC, rec.CRC32)
	assert.Equal(t, "test", rec.Source)

	assert.NoFileExists(t, filepath.Join(folder.InPath, "hello.txt"))
	moved, err := os.ReadFile(filepath.Join(folder.OutPath, "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, content, moved)
}
