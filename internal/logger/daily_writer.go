package logger

import (
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const dailyFileLayout = "20060102"

// dailyFileWriter writes to <dir>/YYYYMMDD.log and switches to a new file
// when the local date changes. Each day's file is still size-rotated.
type dailyFileWriter struct {
	mu         sync.Mutex
	dir        string
	maxSizeMB  int
	maxBackups int
	now        func() time.Time

	day     string
	current *lumberjack.Logger
}

func newDailyFileWriter(dir string, maxSizeMB, maxBackups int) *dailyFileWriter {
	return &dailyFileWriter{
		dir:        dir,
		maxSizeMB:  maxSizeMB,
		maxBackups: maxBackups,
		now:        time.Now,
	}
}

func (w *dailyFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	day := w.now().Format(dailyFileLayout)
	if w.current == nil || day != w.day {
		if w.current != nil {
			_ = w.current.Close()
		}
		w.day = day
		w.current = &lumberjack.Logger{
			Filename:   filepath.Join(w.dir, day+".log"),
			MaxSize:    w.maxSizeMB,
			MaxBackups: w.maxBackups,
			LocalTime:  true,
		}
	}
	return w.current.Write(p)
}

func (w *dailyFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil {
		return nil
	}
	err := w.current.Close()
	w.current = nil
	return err
}
