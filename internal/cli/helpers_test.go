package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmreicha/aws-login/internal/core"
	"github.com/jmreicha/aws-login/internal/prompt"
	"github.com/jmreicha/aws-login/internal/run"
)

type result struct {
	output string
	err    error
}

// fakeExecutor answers commands by their joined arguments and records every call.
type fakeExecutor struct {
	outputs map[string]result
	passErr map[string]error
	calls   []string
}

func commandKey(cmd run.Command) string {
	return strings.TrimSpace(cmd.Program + " " + strings.Join(cmd.Args, " "))
}

func (f *fakeExecutor) Output(_ context.Context, cmd run.Command) (string, error) {
	k := commandKey(cmd)
	f.calls = append(f.calls, k)
	r, ok := f.outputs[k]
	if !ok {
		return "", core.Errorf(1, "unexpected command: %s", k)
	}
	return r.output, r.err
}

func (f *fakeExecutor) PassThrough(_ context.Context, app *core.Application, cmd run.Command) error {
	k := commandKey(cmd)
	f.calls = append(f.calls, k)
	fmt.Fprintf(app.Output(), "ran %s\n", k)
	return f.passErr[k]
}

func (f *fakeExecutor) called(k string) bool {
	for _, call := range f.calls {
		if call == k {
			return true
		}
	}
	return false
}

// testCLI holds the fakes wired into a root command.
type testCLI struct {
	t          *testing.T
	dir        string
	streams    *core.BufferStreams
	exec       *fakeExecutor
	env        map[string]string
	selections []string
	titles     []string
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()

	dir := t.TempDir()
	tc := &testCLI{
		t:       t,
		dir:     dir,
		streams: core.NewBufferStreams(""),
		exec:    &fakeExecutor{outputs: map[string]result{}, passErr: map[string]error{}},
		env:     map[string]string{},
	}

	configYAML := fmt.Sprintf("templates_path: %s\nbackup_dir: %s\nbackup_keep: 2\nhttp_timeout: 5s\n",
		tc.templatesPath(), filepath.Join(dir, "backups"))
	tc.writeFile("config.yaml", configYAML)

	prevStreams, prevExecutor, prevSelector, prevGetenv := newStreams, newExecutor, newSelector, getenv
	t.Cleanup(func() {
		newStreams, newExecutor, newSelector, getenv = prevStreams, prevExecutor, prevSelector, prevGetenv
	})

	newStreams = func() core.Streams { return tc.streams }
	newExecutor = func(_ *slog.Logger) run.Executor { return tc.exec }
	newSelector = func(_ core.Streams) prompt.Selector {
		return prompt.SelectFunc(func(title string, options []string) (string, error) {
			tc.titles = append(tc.titles, title)
			if len(tc.selections) == 0 {
				return "", core.Errorf(1, "The selection was canceled.")
			}
			selected := tc.selections[0]
			tc.selections = tc.selections[1:]
			for _, option := range options {
				if option == selected {
					return selected, nil
				}
			}
			return "", fmt.Errorf("%q is not one of %v", selected, options)
		})
	}
	getenv = func(name string) string { return tc.env[name] }

	return tc
}

func (tc *testCLI) templatesPath() string {
	return filepath.Join(tc.dir, "templates.json")
}

func (tc *testCLI) writeFile(name, content string) string {
	tc.t.Helper()

	path := filepath.Join(tc.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		tc.t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func (tc *testCLI) readFile(name string) string {
	tc.t.Helper()

	data, err := os.ReadFile(filepath.Join(tc.dir, name))
	if err != nil {
		tc.t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

func (tc *testCLI) run(args ...string) error {
	cmd := NewRootCmd("1.2.3")
	cmd.SetArgs(append([]string{"--config", filepath.Join(tc.dir, "config.yaml")}, args...))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

func (tc *testCLI) output() string {
	return tc.streams.OutputString()
}

func (tc *testCLI) errOutput() string {
	return tc.streams.ErrOutputString()
}

func rendered(t *testing.T, err error) string {
	t.Helper()

	var buf bytes.Buffer
	if rerr := core.AsError(err).Render(&buf); rerr != nil {
		t.Fatalf("Render failed: %v", rerr)
	}
	return buf.String()
}
