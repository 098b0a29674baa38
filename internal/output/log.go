// Package output provides terminal output utilities: the global logger,
// styles, tables, spinners and YAML diffs.
package output

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// logger is the global logger instance.
var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
}

// LogConfig controls SetupLogging.
type LogConfig struct {
	// Verbose enables debug level, caller reporting and timestamps.
	Verbose bool

	// Timestamps overrides the timestamp default (on). Ignored when Verbose.
	Timestamps *bool
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// SetupLogging configures the global logger.
func SetupLogging(cfg LogConfig) {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}

	timestamps := true
	if !cfg.Verbose && cfg.Timestamps != nil {
		timestamps = *cfg.Timestamps
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: timestamps,
		ReportCaller:    cfg.Verbose,
		TimeFormat:      time.Kitchen,
	})
}

// Logger returns the global logger.
func Logger() *log.Logger {
	return logger
}

// PassLogger returns a logger prefixed with a modifier pass name.
func PassLogger(name string) *log.Logger {
	return logger.WithPrefix(StyleNoun.Render("pass:" + name))
}

// FileLogger returns a logger prefixed with a descriptor name.
func FileLogger(name string) *log.Logger {
	return logger.WithPrefix(StyleNoun.Render("file:" + name))
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...any) {
	logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...any) {
	logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...any) {
	logger.Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...any) {
	logger.Error(msg, keyvals...)
}

// Println prints a message to stdout with a newline.
func Println(msg string) {
	os.Stdout.WriteString(msg + "\n")
}
