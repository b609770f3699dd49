// Package logging provides leveled log helpers on top of the standard logger.
// Output goes to a size-rotated log file in the application directory once
// Setup has been called; warnings and errors are mirrored to stderr.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents the severity of a log message
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu           sync.RWMutex
	currentLevel = LevelInfo
	stderr       io.Writer = os.Stderr
	fileOutput   io.WriteCloser
)

// ParseLevel maps a level name to a Level. Unknown names yield LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Setup routes the log output to a rotating file at path. An empty path keeps
// the standard logger's destination. LOG_LEVEL, when set, wins over level.
func Setup(path string, level Level) {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = ParseLevel(env)
	}
	SetLevel(level)

	if path == "" {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if fileOutput != nil {
		fileOutput.Close()
	}
	fileOutput = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // MB
		MaxBackups: 2,
		MaxAge:     28, // days
	}
	log.SetOutput(fileOutput)
	log.SetFlags(log.Ldate | log.Ltime)
}

// Close flushes and closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if fileOutput != nil {
		fileOutput.Close()
		fileOutput = nil
		log.SetOutput(os.Stderr)
	}
}

// SetLevel changes the minimum level that gets written.
func SetLevel(l Level) {
	mu.Lock()
	currentLevel = l
	mu.Unlock()
}

// GetLevel returns the current log level
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// Debug logs a debug message
func Debug(format string, args ...interface{}) {
	if GetLevel() <= LevelDebug {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	if GetLevel() <= LevelInfo {
		log.Printf("[INFO] "+format, args...)
	}
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	if GetLevel() <= LevelWarn {
		log.Printf("[WARN] "+format, args...)
		mirror("warning: "+format, args...)
	}
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	if GetLevel() <= LevelError {
		log.Printf("[ERROR] "+format, args...)
		mirror("error: "+format, args...)
	}
}

// Fatal logs an error message, prints it to stderr and exits with status 1.
func Fatal(format string, args ...interface{}) {
	log.Printf("[FATAL] "+format, args...)
	mirror(format, args...)
	Close()
	os.Exit(1)
}

// mirror echoes a message to stderr when the log goes to a file.
func mirror(format string, args ...interface{}) {
	mu.RLock()
	toFile := fileOutput != nil
	mu.RUnlock()
	if toFile {
		fmt.Fprintf(stderr, format+"\n", args...)
	}
}

// String returns the string representation of a log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
