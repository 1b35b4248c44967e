package schema

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	nop    = zap.NewNop()
	logger atomic.Pointer[zap.Logger]
)

// Logger returns the logger used for schema loading and navigation. It is
// a no-op logger until SetLogger is called.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nop
}

// SetLogger replaces the package logger. It may be called at any time,
// including while other goroutines navigate; nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
