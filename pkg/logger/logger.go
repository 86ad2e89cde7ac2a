package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It defaults to a no-op logger so library
// code can log unconditionally; binaries call Init early in main.
var Log = zap.NewNop()

// Init configures the global logger. level is one of debug/info/warn/error
// (empty falls back to PARLEY_LOG_LEVEL, then info); format is "json" or
// "text". The sink can be redirected to a file with PARLEY_LOG_SINK=file:<path>.
func Init(level, format string) {
	lvl := strings.ToLower(strings.TrimSpace(level))
	if lvl == "" {
		lvl = strings.ToLower(strings.TrimSpace(os.Getenv("PARLEY_LOG_LEVEL")))
	}
	var zl zapcore.Level
	switch lvl {
	case "debug":
		zl = zapcore.DebugLevel
	case "warn", "warning":
		zl = zapcore.WarnLevel
	case "error":
		zl = zapcore.ErrorLevel
	default:
		zl = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if strings.ToLower(format) == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	ws := zapcore.AddSync(os.Stdout)
	if sink := os.Getenv("PARLEY_LOG_SINK"); strings.HasPrefix(sink, "file:") {
		path := strings.TrimPrefix(sink, "file:")
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640); err == nil {
			ws = zapcore.AddSync(f)
		} else {
			os.Stderr.WriteString("failed to open log file " + path + ": " + err.Error() + "\n")
		}
	}

	Log = zap.New(zapcore.NewCore(enc, ws, zl))
}

// Sync flushes any buffered log entries.
func Sync() { _ = Log.Sync() }

func Debug(msg string, fields ...zap.Field) { Log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }
