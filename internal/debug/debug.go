// Package debug provides opt-in structured diagnostic logging for the
// extraction pipeline, gated on the KREUZBERG_CI_DEBUG environment variable
// (spec §6) so production call sites pay nothing when it is unset.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug can be overridden at build time:
// go build -ldflags "-X github.com/kreuzberg-go/kreuzberg/internal/debug.EnableDebug=true"
var EnableDebug = "false"

var (
	debugOutput io.Writer
	debugFile   *os.File
	debugMutex  sync.Mutex
)

// SetOutput sets a custom writer for debug output. Pass nil to disable it.
func SetOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitLogFile opens a timestamped debug log file under the OS temp
// directory and routes subsequent Log calls to it. Call CloseLogFile when
// done to ensure it is flushed and closed.
func InitLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "kreuzberg-debug-logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", fmt.Errorf("create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseLogFile closes the debug log file if one is open.
func CloseLogFile() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		debugOutput = nil
		return err
	}
	return nil
}

// Enabled reports whether diagnostic logging is active: the build flag, or
// KREUZBERG_CI_DEBUG=1/true at runtime (spec §6).
func Enabled() bool {
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("KREUZBERG_CI_DEBUG")
	return v == "1" || v == "true"
}

func getWriter() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Printf prints debug output when enabled and an output writer is set.
func Printf(format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	w := getWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG] "+format, args...)
}

// Log provides component-tagged structured debug logging (e.g. "OCR",
// "CACHE", "PIPELINE").
func Log(component, format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	w := getWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
}

// Fatal records a catastrophic error to the debug log and returns it as an
// error for the caller to propagate — it never calls os.Exit.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if w := getWriter(); w != nil {
		fmt.Fprintf(w, "[FATAL] %s", msg)
	}
	return fmt.Errorf("fatal error: %s", msg)
}
