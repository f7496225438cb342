// Package corelog wraps zap so every pipeline stage logs cycle-level
// trace events in one consistent shape: cycle, stage, and whatever
// fields the caller wants alongside them.
package corelog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu      sync.RWMutex
	current *zap.Logger = zap.NewNop()
)

// Set installs the logger that Default() and Stage() hand out going forward. Call once at
// startup; tests install a zaptest logger or leave the no-op default.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

// Default returns the process-wide logger.
func Default() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// NewProduction builds and installs a production zap logger, returning
// the flush function the caller must defer.
func NewProduction() (func(), error) {
	l, err := zap.NewProduction()
	if err != nil {
		return func() {}, err
	}
	Set(l)
	return func() { _ = l.Sync() }, nil
}

// Stage returns a child logger namespaced to a pipeline stage, e.g.
// corelog.Stage("commit").Debug("retire", zap.Int("cycle", n)).
func Stage(name string) *zap.Logger {
	return Default().Named(name)
}
