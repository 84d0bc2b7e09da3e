// Package botlog implements the day-rotating transcript logger. It is a
// distinct collaborator from the process's own log/slog diagnostics
// logger: this one records per-source chat transcripts, one day-file per
// source at a time.
package botlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fizyk20/chatbot/internal/chat"
)

// Mode selects where transcript lines are written.
type Mode int

const (
	ModeFile Mode = iota
	ModeConsole
	ModeBoth
)

// Logger writes day-rotating transcript files under
// <baseDir>/<source-id>/YYYY/MM/DD.txt, one open file handle per source,
// rotating according to the rule implemented in rotated below.
type Logger struct {
	baseDir string
	mode    Mode
	clock   func() time.Time

	mu    sync.Mutex
	files map[chat.SourceId]*sourceLog
}

type sourceLog struct {
	f       *os.File
	date    time.Time // the calendar day the open file belongs to
	lastLog time.Time
}

// New creates a transcript logger rooted at baseDir.
func New(baseDir string, mode Mode) *Logger {
	return &Logger{baseDir: baseDir, mode: mode, clock: time.Now, files: make(map[chat.SourceId]*sourceLog)}
}

// Log appends one line to sourceID's transcript: "[YYYY-MM-DD HH:MM:SS] <payload>\n".
func (l *Logger) Log(sourceID chat.SourceId, payload string) error {
	now := l.clock()

	if l.mode == ModeConsole || l.mode == ModeBoth {
		fmt.Printf("[%s] %s: %s\n", now.Format("2006-01-02 15:04:05"), sourceID, payload)
	}
	if l.mode == ModeConsole {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sl, ok := l.files[sourceID]
	if !ok || rotated(sl, now) {
		f, err := l.openFor(sourceID, now)
		if err != nil {
			return err
		}
		if ok {
			sl.f.Close()
		}
		sl = &sourceLog{f: f, date: now}
		l.files[sourceID] = sl
	}

	sl.lastLog = now
	line := fmt.Sprintf("[%s] %s\n", now.Format("2006-01-02 15:04:05"), payload)
	_, err := sl.f.WriteString(line)
	return err
}

// rotated implements the day-rotation rule: a new file begins once the
// calendar day has changed AND either more than 4 hours have elapsed
// since the last write, or the current local hour is >= 6.
// This means a conversation still running right at midnight keeps
// writing to the previous day's file until one of those two conditions
// is met, rather than splitting exactly at 00:00.
func rotated(sl *sourceLog, now time.Time) bool {
	dayPassed := now.Year() != sl.date.Year() || now.YearDay() != sl.date.YearDay()
	if !dayPassed {
		return false
	}
	sinceLast := now.Sub(sl.lastLog)
	return sinceLast > 4*time.Hour || now.Hour() >= 6
}

func (l *Logger) openFor(sourceID chat.SourceId, when time.Time) (*os.File, error) {
	dir := filepath.Join(l.baseDir, string(sourceID), when.Format("2006"), when.Format("01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("botlog: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, when.Format("02")+".txt")
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// Close closes every open transcript file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var firstErr error
	for id, sl := range l.files {
		if err := sl.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(l.files, id)
	}
	return firstErr
}
