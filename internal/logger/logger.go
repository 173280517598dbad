// Package logger holds the process-wide charmbracelet logger. The level
// helpers are no-ops until Init or InitWriter runs, so libraries may log
// unconditionally.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/innerlevel/internal/constants"
)

// Logger is the global logger instance
var Logger *log.Logger

type Config struct {
	Debug   bool
	DataDir string
}

func rotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
}

// FilePath is where Init writes the log for a data directory.
func FilePath(dataDir string) string {
	return filepath.Join(dataDir, "logs", constants.AppName+".log")
}

// Init logs to a rotating file under <DataDir>/logs. In debug mode records
// are also written to stderr.
func Init(cfg Config) error {
	path := FilePath(cfg.DataDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var w io.Writer = rotatingFile(path)
	if cfg.Debug {
		w = io.MultiWriter(os.Stderr, w)
	}
	InitWriter(w, cfg.Debug)
	return nil
}

// InitWriter points the global logger at w. Warnings and above are kept
// unless debug is set.
func InitWriter(w io.Writer, debug bool) {
	opts := log.Options{
		ReportTimestamp: true,
		Level:           log.WarnLevel,
		Prefix:          constants.AppName,
	}
	if debug {
		opts.Level = log.DebugLevel
		opts.ReportCaller = true
	}
	Logger = log.NewWithOptions(w, opts)
}

func logAt(level log.Level, msg string, keyvals []any) {
	if Logger == nil {
		return
	}
	Logger.Helper()
	Logger.Log(level, msg, keyvals...)
}

func Debug(msg string, keyvals ...any) { logAt(log.DebugLevel, msg, keyvals) }
func Info(msg string, keyvals ...any)  { logAt(log.InfoLevel, msg, keyvals) }
func Warn(msg string, keyvals ...any)  { logAt(log.WarnLevel, msg, keyvals) }
func Error(msg string, keyvals ...any) { logAt(log.ErrorLevel, msg, keyvals) }

// Fatal logs at error level and exits with status 1.
func Fatal(msg string, keyvals ...any) {
	logAt(log.FatalLevel, msg, keyvals)
	os.Exit(1)
}
