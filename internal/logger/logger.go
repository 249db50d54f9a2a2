package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// LogFilePath is the path to the workspace log file, relative to the working directory.
const LogFilePath = "logs/workspace.txt"

// maxLines bounds the in-memory history shown by the terminal.
const maxLines = 500

// Logger formats through zerolog, keeps recent lines in memory for the terminal, and appends every
// line to a file on disk.
type Logger struct {
	mu    sync.Mutex
	lines []string
	path  string
	zl    zerolog.Logger
}

// New returns a Logger writing to LogFilePath at the given level ("debug", "info", ...).
func New(level string) *Logger {
	return NewAt(LogFilePath, level, os.Stderr)
}

// NewAt returns a Logger appending to path and mirroring to console (nil for none). An unknown
// level means info.
func NewAt(path, level string, console io.Writer) *Logger {
	if path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0755)
	}
	l := &Logger{lines: make([]string, 0), path: path}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	sink := zerolog.ConsoleWriter{Out: lineSink{l}, NoColor: true, TimeFormat: "2006-01-02 15:04:05"}
	var w io.Writer = sink
	if console != nil {
		w = zerolog.MultiLevelWriter(sink, zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"})
	}
	l.zl = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return l
}

// Zerolog returns the structured logger components log through.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }

// Log records a plain line (e.g. terminal input or command output) at info level.
func (l *Logger) Log(line string) {
	l.zl.Info().Msg(line)
}

// Lines returns a copy of all stored lines.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *Logger) append(line string) {
	l.mu.Lock()
	l.lines = append(l.lines, line)
	if len(l.lines) > maxLines {
		l.lines = l.lines[len(l.lines)-maxLines:]
	}
	l.mu.Unlock()

	if l.path == "" {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(line + "\n")
	_ = f.Close()
}

// lineSink receives formatted console lines from zerolog.
type lineSink struct{ l *Logger }

func (s lineSink) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			s.l.append(line)
		}
	}
	return len(p), nil
}
