// Package logger implements the leveled, per-subsystem logging backend
// used throughout the module, with rotated file output via
// github.com/jrick/logrotate/rotator.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jrick/logrotate/rotator"
)

// Level is a logging severity.
type Level uint8

// Supported levels, most to least verbose.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRC"
	case LevelDebug:
		return "DBG"
	case LevelInfo:
		return "INF"
	case LevelWarn:
		return "WRN"
	case LevelError:
		return "ERR"
	default:
		return "OFF"
	}
}

// Backend multiplexes every subsystem's output to stdout and to a rotated
// log file.
type Backend struct {
	mu       sync.Mutex
	rotator  *rotator.Rotator
	loggers  map[string]*Logger
}

var backend = &Backend{loggers: make(map[string]*Logger)}

// InitLogRotator initializes the backend's rotated log file. Must be
// called once during startup before any subsystem logger is used for file
// output; until then, loggers still write to stdout.
func InitLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	backend.mu.Lock()
	backend.rotator = r
	backend.mu.Unlock()
	return nil
}

// Logger is a single subsystem's log handle.
type Logger struct {
	tag   string
	level Level
}

// RegisterSubSystem creates (or returns the existing) logger for tag,
// defaulting to LevelInfo.
func RegisterSubSystem(tag string) *Logger {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	if l, ok := backend.loggers[tag]; ok {
		return l
	}
	l := &Logger{tag: tag, level: LevelInfo}
	backend.loggers[tag] = l
	return l
}

// SetLogLevel sets the level for a previously registered subsystem.
func SetLogLevel(tag string, level Level) {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if l, ok := backend.loggers[tag]; ok {
		l.level = level
	}
}

// SupportedSubsystems returns every registered subsystem tag, sorted.
func SupportedSubsystems() []string {
	backend.mu.Lock()
	defer backend.mu.Unlock()
	tags := make([]string, 0, len(backend.loggers))
	for tag := range backend.loggers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (l *Logger) write(level Level, format string, args []interface{}) {
	if level < l.level {
		return
	}
	line := fmt.Sprintf("%s [%s] %s %s\n", time.Now().Format("2006-01-02 15:04:05.000"), level, l.tag, fmt.Sprintf(format, args...))

	fmt.Fprint(os.Stdout, line)

	backend.mu.Lock()
	r := backend.rotator
	backend.mu.Unlock()
	if r != nil {
		_, _ = r.Write([]byte(line))
	}
}

// Trace logs at LevelTrace.
func (l *Logger) Trace(format string, args ...interface{}) { l.write(LevelTrace, format, args) }

// Debug logs at LevelDebug.
func (l *Logger) Debug(format string, args ...interface{}) { l.write(LevelDebug, format, args) }

// Info logs at LevelInfo.
func (l *Logger) Info(format string, args ...interface{}) { l.write(LevelInfo, format, args) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(format string, args ...interface{}) { l.write(LevelWarn, format, args) }

// Error logs at LevelError.
func (l *Logger) Error(format string, args ...interface{}) { l.write(LevelError, format, args) }

// LogAndMeasureExecutionTime logs execution duration of fn on return, at
// debug level, tagged with name.
func (l *Logger) LogAndMeasureExecutionTime(name string, fn func()) {
	start := time.Now()
	fn()
	l.Debug("%s took %s", name, time.Since(start))
}
