package core

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Streams provides the input and output streams used by a command.
type Streams interface {
	Input() io.Reader
	Output() io.Writer
	ErrOutput() io.Writer
}

type liveStreams struct{}

// NewLiveStreams returns streams bound to the process stdin, stdout, and stderr.
func NewLiveStreams() Streams {
	return liveStreams{}
}

func (liveStreams) Input() io.Reader {
	return os.Stdin
}

func (liveStreams) Output() io.Writer {
	return os.Stdout
}

func (liveStreams) ErrOutput() io.Writer {
	return os.Stderr
}

// BufferStreams keeps everything written to it in memory. It is safe for
// concurrent writers.
type BufferStreams struct {
	input  io.Reader
	output lockedBuffer
	errOut lockedBuffer
}

// NewBufferStreams returns in-memory streams that read input from the given string.
func NewBufferStreams(input string) *BufferStreams {
	return &BufferStreams{input: strings.NewReader(input)}
}

// Input returns the input reader.
func (b *BufferStreams) Input() io.Reader {
	return b.input
}

// Output returns the standard output buffer.
func (b *BufferStreams) Output() io.Writer {
	return &b.output
}

// ErrOutput returns the error output buffer.
func (b *BufferStreams) ErrOutput() io.Writer {
	return &b.errOut
}

// OutputString returns everything written to the output stream.
func (b *BufferStreams) OutputString() string {
	return b.output.String()
}

// ErrOutputString returns everything written to the error stream.
func (b *BufferStreams) ErrOutputString() string {
	return b.errOut.String()
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

// Application is the per-invocation context shared by every subcommand.
type Application struct {
	// Profile overrides the active AWS CLI profile when not empty.
	Profile string

	// Region overrides the default AWS region when not empty.
	Region string

	// Logger receives diagnostic records.
	Logger *slog.Logger

	streams Streams
}

// NewApplication creates the application context. Nil streams default to
// the live process streams and a nil logger to slog.Default.
func NewApplication(profile, region string, streams Streams, logger *slog.Logger) *Application {
	if streams == nil {
		streams = NewLiveStreams()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Application{
		Profile: strings.TrimSpace(profile),
		Region:  strings.TrimSpace(region),
		Logger:  logger,
		streams: streams,
	}
}

// Input returns the input stream.
func (a *Application) Input() io.Reader {
	return a.streams.Input()
}

// Output returns the standard output stream.
func (a *Application) Output() io.Writer {
	return a.streams.Output()
}

// ErrOutput returns the error output stream.
func (a *Application) ErrOutput() io.Writer {
	return a.streams.ErrOutput()
}
