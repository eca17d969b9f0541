// Package prompt collects changelog items from an interactive session.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	changelogbump "github.com/bcomnes/changelogbump/pkg"
)

// Hint is printed after each category label.
const Hint = "(empty moves to next section)"

// Prompter reads one item per line for each category until an empty line.
type Prompter struct {
	in    *bufio.Scanner
	out   io.Writer
	label *color.Color
}

// New returns a Prompter reading from in and writing labels to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:    bufio.NewScanner(in),
		out:   out,
		label: color.New(color.FgCyan, color.Bold),
	}
}

// Collect prompts for each category in turn. End of input finishes every
// remaining category.
func (p *Prompter) Collect(categories []changelogbump.Category) (changelogbump.Changes, error) {
	var changes changelogbump.Changes
	done := false
	for _, cat := range categories {
		if done {
			break
		}
		fmt.Fprintf(p.out, "%s %s\n", p.label.Sprintf("%s:", cat.Title()), Hint)
		for {
			if !p.in.Scan() {
				if err := p.in.Err(); err != nil {
					return changes, fmt.Errorf("reading %s items: %w", cat, err)
				}
				done = true
				break
			}
			item := strings.TrimSpace(p.in.Text())
			if item == "" {
				break
			}
			if err := changes.Add(cat, item); err != nil {
				return changes, err
			}
		}
	}
	return changes, nil
}

// Collect is a convenience for a single session over in and out.
func Collect(in io.Reader, out io.Writer, categories []changelogbump.Category) (changelogbump.Changes, error) {
	return New(in, out).Collect(categories)
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
