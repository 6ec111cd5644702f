package scene

import (
	"log/slog"
	"os"
	"sync/atomic"
)

// sceneLogLevel controls the log level for scene graph logging.
// Default is LevelInfo, which suppresses Debug messages.
// SetVerbose(true) sets it to LevelDebug.
var sceneLogLevel = new(slog.LevelVar)

// SetVerbose enables or disables verbose/debug logging.
// Call this from main() after parsing flags.
func SetVerbose(v bool) {
	if v {
		sceneLogLevel.Set(slog.LevelDebug)
	} else {
		sceneLogLevel.Set(slog.LevelInfo)
	}
}

func newDefaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: sceneLogLevel}))
}

// loggerPtr stores the active logger. Asset decoding runs on worker
// goroutines, so access is atomic.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newDefaultLogger())
}

// SetLogger replaces the logger used by the scene package and its backends.
// Pass nil to restore the default stderr text logger.
//
// Log levels used:
//   - [slog.LevelDebug]: bitmap evictions, framebuffer and texture churn
//   - [slog.LevelInfo]: GPU context lifecycle events
//   - [slog.LevelWarn]: GPU errors, failed texture realization, dropped surface snapshots
//   - [slog.LevelError]: shader compilation and decode failures
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newDefaultLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
