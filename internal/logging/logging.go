// Package logging configures the process-wide logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

// Options controls where log output goes.
type Options struct {
	// Debug enables Debugf output.
	Debug bool
	// Dir, when set, receives a per-run log file in addition to stderr.
	Dir string
}

var debug atomic.Bool

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup points the standard logger at stderr and, if opts.Dir is set, at a
// timestamped file under that directory. The returned closer flushes the file.
func Setup(opts Options) (io.Closer, error) {
	debug.Store(opts.Debug)
	log.SetFlags(log.LstdFlags)
	if opts.Dir == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	name := filepath.Join(opts.Dir, fmt.Sprintf("joybind-%s.log", time.Now().Format("20060102-150405")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return f, nil
}

// SetDebug toggles Debugf at runtime, e.g. after a config reload.
func SetDebug(on bool) { debug.Store(on) }

// DebugEnabled reports whether Debugf writes anything.
func DebugEnabled() bool { return debug.Load() }

// Debugf logs only when debug output is enabled.
func Debugf(format string, args ...any) {
	if debug.Load() {
		log.Output(2, "DEBUG "+fmt.Sprintf(format, args...))
	}
}
