// Package prompt asks the user to pick one item from a list.
package prompt

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/jmreicha/aws-login/internal/core"
)

// Selector selects one item from a list of options.
type Selector interface {
	Select(title string, options []string) (string, error)
}

// SelectFunc adapts a function to the Selector interface.
type SelectFunc func(title string, options []string) (string, error)

// Select calls f.
func (f SelectFunc) Select(title string, options []string) (string, error) {
	return f(title, options)
}

// HuhSelector presents a select list on a terminal.
type HuhSelector struct {
	input  io.Reader
	output io.Writer
}

// NewHuhSelector creates a selector that reads keys from the streams' input
// and draws on their error output, leaving stdout free for results.
func NewHuhSelector(streams core.Streams) *HuhSelector {
	return &HuhSelector{input: streams.Input(), output: streams.ErrOutput()}
}

// Select shows options and returns the chosen one.
func (s *HuhSelector) Select(title string, options []string) (string, error) {
	if len(options) == 0 {
		return "", core.Errorf(1, "There is nothing to select from.")
	}

	if !isTerminal(s.input) {
		return "", core.Errorf(1, "An interactive terminal is required to make a selection.")
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(huh.NewOptions(options...)...).
				Value(&selected),
		),
	).WithInput(s.input).WithOutput(s.output)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", core.Errorf(1, "The selection was canceled.")
		}
		return "", core.WithContext(err, "Could not display the selection.")
	}

	return selected, nil
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(file.Fd()))
}
