// Package isolate runs window captures in a child process so that a crash in
// the native capture path does not take the caller down.
package isolate

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"

	"joybind/internal/capture"
	"joybind/internal/window"
)

// Flags understood by the worker side of the binary.
const (
	WorkerFlag = "capture-worker"
	HandleFlag = "hwnd"
)

// Runner starts capture workers by re-executing a binary.
type Runner struct {
	// Path is the binary to run; it must handle -capture-worker.
	Path string
	// Args are passed before the worker flags.
	Args []string
	// Env replaces the worker environment when non-nil.
	Env []string
}

// NewRunner re-executes the running binary.
func NewRunner() (*Runner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return &Runner{Path: exe}, nil
}

// CaptureWindow captures h in a worker process and blocks until the worker
// has exited. The worker's diagnostics are forwarded to this process's log.
func (r *Runner) CaptureWindow(h window.Handle) (*capture.PixelBuffer, error) {
	args := append(append([]string(nil), r.Args...), "-"+WorkerFlag, "-"+HandleFlag, h.String())
	cmd := exec.Command(r.Path, args...)
	cmd.Env = r.Env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Printf("Isolate: capturing %s in worker", h)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start capture worker: %w", err)
	}
	waitErr := cmd.Wait()
	if stderr.Len() > 0 {
		log.Printf("Isolate: worker output:\n%s", strings.TrimRight(stderr.String(), "\n"))
	}
	if waitErr != nil {
		return nil, fmt.Errorf("capture worker for %s: %w%s", h, waitErr, lastLine(stderr.String()))
	}

	buf, err := capture.DecodePNG(&stdout)
	if err != nil {
		return nil, fmt.Errorf("capture worker for %s: %w", h, err)
	}
	return buf, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return ": " + s
}

// GrabFunc captures one window.
type GrabFunc func(h window.Handle) (*capture.PixelBuffer, error)

// RunWorker is the worker side: it captures h and writes it to out as a PNG.
func RunWorker(out io.Writer, h window.Handle, grab GrabFunc) error {
	buf, err := grab(h)
	if err != nil {
		return err
	}
	return capture.EncodePNG(out, buf)
}
