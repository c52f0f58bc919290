// Package logger provides leveled logging for userhub with a console
// backend and a file backend.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mhsanaei/userhub/config"
	"github.com/op/go-logging"
)

const (
	moduleName  = "userhub"
	logFileName = "userhub.log"
	timeFormat  = "2006/01/02 15:04:05"
)

var (
	logger  *logging.Logger
	logFile *os.File
)

func init() {
	// usable before InitLogger runs (tests, CLI commands)
	InitWriterLogger(os.Stderr, logging.WARNING)
}

// InitLogger initializes two backends: stderr at the given level and a log
// file in config.GetLogFolder() that always records DEBUG.
func InitLogger(level logging.Level) {
	newLogger := logging.MustGetLogger(moduleName)
	backends := make([]logging.Backend, 0, 2)

	console := logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), newFormatter(true))
	leveledConsole := logging.AddModuleLevel(console)
	leveledConsole.SetLevel(level, moduleName)
	backends = append(backends, leveledConsole)

	if fileBackend := initFileBackend(); fileBackend != nil {
		leveledFile := logging.AddModuleLevel(fileBackend)
		leveledFile.SetLevel(logging.DEBUG, moduleName)
		backends = append(backends, leveledFile)
	}

	newLogger.SetBackend(logging.MultiLogger(backends...))
	logger = newLogger
}

// InitWriterLogger routes all output to w at the given level.
func InitWriterLogger(w io.Writer, level logging.Level) {
	newLogger := logging.MustGetLogger(moduleName)
	backend := logging.AddModuleLevel(logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), newFormatter(false)))
	backend.SetLevel(level, moduleName)
	newLogger.SetBackend(backend)
	logger = newLogger
}

// ParseLevel maps a config.LogLevel to a go-logging level.
func ParseLevel(level config.LogLevel) (logging.Level, error) {
	switch level {
	case config.Debug:
		return logging.DEBUG, nil
	case config.Info:
		return logging.INFO, nil
	case config.Notice:
		return logging.NOTICE, nil
	case config.Warn:
		return logging.WARNING, nil
	case config.Error:
		return logging.ERROR, nil
	default:
		return logging.INFO, fmt.Errorf("unknown log level: %s", level)
	}
}

func initFileBackend() logging.Backend {
	logDir := config.GetLogFolder()
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log folder %s: %v\n", logDir, err)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o660)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", logPath, err)
		return nil
	}

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file

	backend := logging.NewLogBackend(file, "", 0)
	return logging.NewBackendFormatter(backend, newFormatter(true))
}

func newFormatter(withTime bool) logging.Formatter {
	format := `%{level} - %{message}`
	if withTime {
		format = `%{time:` + timeFormat + `} %{level} - %{message}`
	}
	return logging.MustStringFormatter(format)
}

// CloseLogger closes the log file. Should be called during shutdown.
func CloseLogger() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func Debug(args ...any) {
	logger.Debug(args...)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Info(args ...any) {
	logger.Info(args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Notice(args ...any) {
	logger.Notice(args...)
}

func Noticef(format string, args ...any) {
	logger.Noticef(format, args...)
}

func Warning(args ...any) {
	logger.Warning(args...)
}

func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
}

func Error(args ...any) {
	logger.Error(args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}
