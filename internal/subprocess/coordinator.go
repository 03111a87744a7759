// Package subprocess implements the uniform spawn/timeout/stderr-
// classification wrapper shared by the Pandoc and LibreOffice converters,
// and by the OCR processor's tesseract invocation (C6).
package subprocess

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
)

// Result is the captured outcome of a subprocess invocation.
type Result struct {
	Stdout   []byte
	Stderr   string
	ExitCode int
}

// Run spawns argv[0] with argv[1:] (no shell), waits up to timeout, and
// classifies failures per spec §4.6: a timeout becomes a Parsing error
// citing the elapsed budget; a nonzero exit is classified by scanning the
// lowercased stderr for format-trouble hints, otherwise treated as Io.
func Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return Result{}, kerrors.Newf(kerrors.Parsing, "subprocess.run",
			"%s: timed out after %s", name, timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		exitCode := -1
		if ok := asExitError(err, &exitErr); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{}, kerrors.New(kerrors.MissingDependency, "subprocess.run", err)
		}
		kind := kerrors.ClassifySubprocessStderr(stderr.String())
		return Result{Stdout: stdout.Bytes(), Stderr: stderr.String(), ExitCode: exitCode},
			kerrors.Newf(kind, "subprocess.run", "%s exited %d: %s", name, exitCode, firstLine(stderr.String()))
	}
	return Result{Stdout: stdout.Bytes(), Stderr: stderr.String(), ExitCode: 0}, nil
}

func asExitError(err error, target **exec.ExitError) bool {
	if ee, ok := err.(*exec.ExitError); ok {
		*target = ee
		return true
	}
	return false
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}

// TempFile is a scope-bound resource guard for byte-to-file bridging: the
// file is created with the given contents, and Close removes it,
// guaranteeing cleanup on every exit path (including a panic unwinding
// through a deferred Close), per spec §4.6 and §9.
type TempFile struct {
	Path string
}

// NewTempFile writes data to a new file in pattern's directory/name
// template (see os.CreateTemp) and returns a guard whose Close removes it.
func NewTempFile(dir, pattern string, data []byte) (*TempFile, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, kerrors.New(kerrors.Io, "subprocess.temp_file", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return nil, kerrors.New(kerrors.Io, "subprocess.temp_file", err)
	}
	return &TempFile{Path: f.Name()}, nil
}

// Close removes the temp file. Safe to call multiple times.
func (t *TempFile) Close() error {
	if t == nil || t.Path == "" {
		return nil
	}
	err := os.Remove(t.Path)
	t.Path = ""
	if err != nil && !os.IsNotExist(err) {
		return kerrors.New(kerrors.Io, "subprocess.temp_file.close", err)
	}
	return nil
}
