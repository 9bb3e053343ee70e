package run

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/jmreicha/aws-login/internal/core"
)

const relayBufferSize = 32 * 1024

// Executor runs commands. Runner is the implementation used outside tests.
type Executor interface {
	// Output runs the command to completion and returns its stdout.
	Output(ctx context.Context, cmd Command) (string, error)

	// PassThrough runs the command while relaying its stdout and stderr
	// to the application's streams as they are produced.
	PassThrough(ctx context.Context, app *core.Application, cmd Command) error
}

// Runner runs commands after checking that their program is on PATH.
type Runner struct {
	cache  *core.ExecutableCache
	logger *slog.Logger
}

// NewRunner creates a runner. A nil cache gets a fresh one backed by
// core.FindExecutable and a nil logger falls back to slog.Default.
func NewRunner(cache *core.ExecutableCache, logger *slog.Logger) *Runner {
	if cache == nil {
		cache = core.NewExecutableCache(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{cache: cache, logger: logger}
}

// Output runs cmd with the process stdin and captures its stdout and
// stderr. On a non-zero exit the error message is the captured stderr and
// the status is the child's exit code.
func (r *Runner) Output(ctx context.Context, cmd Command) (string, error) {
	path, err := r.resolve(cmd.Program)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer

	// #nosec G204 -- arguments are passed as an argv vector, never through a shell.
	proc := exec.CommandContext(ctx, path, cmd.Args...)
	proc.Stdin = os.Stdin
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	r.logger.Debug("running command", "program", cmd.Program, "args", len(cmd.Args), "mode", "output")

	if err := proc.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", core.NewError(exitStatus(exitErr)).WithMessage(stderr.String())
		}

		return "", core.WithContextf(err, "Could not run %s.", cmd.Program)
	}

	if !utf8.Valid(stdout.Bytes()) {
		return "", core.Errorf(1, "The output of, %s, is not valid UTF-8.", cmd.Program)
	}

	return stdout.String(), nil
}

// PassThrough runs cmd with stdin taken from the application and relays
// stdout and stderr incrementally to the application's output and error
// streams. The child is always waited for, even when a relay fails. A
// non-zero exit produces an error carrying only the exit status.
func (r *Runner) PassThrough(ctx context.Context, app *core.Application, cmd Command) error {
	path, err := r.resolve(cmd.Program)
	if err != nil {
		return err
	}

	// #nosec G204 -- arguments are passed as an argv vector, never through a shell.
	proc := exec.CommandContext(ctx, path, cmd.Args...)
	proc.Stdin = app.Input()

	stdout, err := proc.StdoutPipe()
	if err != nil {
		return core.WithContextf(err, "Could not run %s.", cmd.Program)
	}
	stderr, err := proc.StderrPipe()
	if err != nil {
		return core.WithContextf(err, "Could not run %s.", cmd.Program)
	}

	r.logger.Debug("running command", "program", cmd.Program, "args", len(cmd.Args), "mode", "pass-through")

	if err := proc.Start(); err != nil {
		return core.WithContextf(err, "Could not run %s.", cmd.Program)
	}

	var (
		group     errgroup.Group
		writeErrs [2]error
	)
	group.Go(func() error {
		var readErr error
		writeErrs[0], readErr = relay(app.Output(), stdout)
		return readErr
	})
	group.Go(func() error {
		var readErr error
		writeErrs[1], readErr = relay(app.ErrOutput(), stderr)
		return readErr
	})

	// Wait must not be called before both pipes are drained.
	readErr := group.Wait()
	waitErr := proc.Wait()

	if readErr != nil {
		return core.WithContextf(readErr, "Could not read the output of %s.", cmd.Program)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return core.NewError(exitStatus(exitErr))
		}

		return core.WithContextf(waitErr, "Could not wait for %s to exit.", cmd.Program)
	}

	if err := errors.Join(writeErrs[0], writeErrs[1]); err != nil {
		return core.WithContextf(err, "Could not relay the output of %s.", cmd.Program)
	}

	return nil
}

func (r *Runner) resolve(program string) (string, error) {
	path, found := r.cache.Lookup(program)
	r.logger.Debug("looked up program", "program", program, "found", found)

	if !found {
		return "", core.Errorf(1, "The program, %s, could not be found in PATH.", program)
	}

	return path, nil
}

// relay copies src to dst until src is exhausted. A failed write stops
// further writes but src is still drained so the child never blocks on a
// full pipe. A failed read closes src so the child gets EPIPE instead of
// blocking. The first write error and any read error are returned.
func relay(dst io.Writer, src io.ReadCloser) (writeErr, readErr error) {
	buf := make([]byte, relayBufferSize)

	for {
		n, err := src.Read(buf)
		if n > 0 && writeErr == nil {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				writeErr = werr
			}
		}

		if errors.Is(err, io.EOF) {
			return writeErr, nil
		}
		if err != nil {
			_ = src.Close()
			return writeErr, err
		}
	}
}

func exitStatus(exitErr *exec.ExitError) int {
	if code := exitErr.ExitCode(); code > 0 {
		return code
	}

	return 1
}
