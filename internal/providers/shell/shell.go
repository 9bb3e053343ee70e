// Package shell integrates aws-login with the user's interactive shell so a
// command can change the environment of the shell that invoked it.
//
// The init script wraps the binary in a shell function. The function points
// AWS_LOGIN_SCRIPT at a temporary file, runs the binary, sources whatever the
// binary appended to the file, and removes it.
package shell

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/adrg/xdg"
	"github.com/lithammer/dedent"

	"github.com/jmreicha/aws-login/internal/core"
)

const (
	// ShellVar names the shell the integration was installed for.
	ShellVar = "AWS_LOGIN_SHELL"

	// ScriptVar names the file that is sourced after the binary exits.
	ScriptVar = "AWS_LOGIN_SCRIPT"

	installedComment = "# Integrate aws-login into the shell environment."
)

// Supported lists the shells that can be integrated.
var Supported = []string{"bash", "zsh"}

var startupFiles = map[string]string{
	"bash": ".bashrc",
	"zsh":  ".zshrc",
}

var initScript = dedent.Dedent(`
	{name}() {
	    local {script_var} rc
	    {script_var}="$(mktemp)" || return 1
	    {shell_var}={shell} {script_var}="${script_var}" command {name} "$@"
	    rc=$?
	    if [ -s "${script_var}" ]; then
	        . "${script_var}"
	    fi
	    rm -f "${script_var}"
	    return $rc
	}
`)

// Environment modifies the environment of the shell that invoked aws-login.
type Environment struct {
	Shell      string
	ScriptPath string
}

// EnvironmentFromEnv returns the environment set up by the init script, if
// the integration is active.
func EnvironmentFromEnv(getenv func(string) string) (Environment, bool) {
	env := Environment{
		Shell:      getenv(ShellVar),
		ScriptPath: getenv(ScriptVar),
	}

	if !slices.Contains(Supported, env.Shell) || env.ScriptPath == "" {
		return Environment{}, false
	}

	return env, true
}

// SetVar exports name with value once aws-login exits.
func (e Environment) SetVar(name, value string) error {
	// #nosec G304 -- script path is created by the init script
	file, err := os.OpenFile(e.ScriptPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return core.WithContext(err, "Could not set environment variable.")
	}
	defer func() { _ = file.Close() }()

	if _, err := fmt.Fprintln(file, ExportLine(name, value)); err != nil {
		return core.WithContext(err, "Could not set environment variable.")
	}

	return nil
}

// ExportLine returns the shell code that exports name with value.
func ExportLine(name, value string) string {
	return fmt.Sprintf("export %s=%s", name, shellescape.Quote(value))
}

// Setup installs the integration into a shell startup file.
type Setup struct {
	Shell   string
	Startup string
}

// SetupFor returns the setup for shell. An empty startup uses the shell's
// default startup file in the home directory.
func SetupFor(shell, startup string) (*Setup, error) {
	name, ok := startupFiles[shell]
	if !ok {
		return nil, core.Errorf(1, "The shell is not supported.")
	}

	if startup == "" {
		startup = filepath.Join(xdg.Home, name)
	}

	return &Setup{Shell: shell, Startup: startup}, nil
}

// Script returns the shell code evaluated by the startup file.
func (s *Setup) Script() string {
	return strings.NewReplacer(
		"{name}", core.AppName,
		"{shell}", s.Shell,
		"{shell_var}", ShellVar,
		"{script_var}", ScriptVar,
	).Replace(strings.TrimPrefix(initScript, "\n"))
}

// IsInstalled reports whether the startup file already integrates aws-login.
func (s *Setup) IsInstalled() (bool, error) {
	// #nosec G304 -- startup file is from flags or the home directory
	data, err := os.ReadFile(s.Startup)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, core.WithContextf(err, "Could not read, %s.", s.Startup)
	}

	return strings.Contains(string(data), installedComment), nil
}

// Install appends the integration to the startup file.
func (s *Setup) Install() error {
	// #nosec G304 -- startup file is from flags or the home directory
	file, err := os.OpenFile(s.Startup, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return core.WithContextf(err, "Could not open, %s.", s.Startup)
	}
	defer func() { _ = file.Close() }()

	_, err = fmt.Fprintf(file, "\n%s\neval \"$(%s shell init --shell %s)\"\n", installedComment, core.AppName, s.Shell)
	if err != nil {
		return core.WithContextf(err, "Could not write to, %s.", s.Startup)
	}

	return nil
}
