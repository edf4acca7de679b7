package grove

import "log/slog"

// logger receives warnings about degraded behavior (placeholder textures,
// self-deactivating shaders, unknown behaviour types). Nil means
// slog.Default().
var logger *slog.Logger

// SetLogger replaces the logger used for warnings. Passing nil restores
// slog.Default().
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the logger warnings are written to.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
