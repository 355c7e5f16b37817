package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// styles holds the color formatters for human-readable output.
type styles struct {
	heading *color.Color
	rule    *color.Color
	miss    *color.Color
}

// newStyles resolves the --color mode against out. In auto mode colors are
// used only for a terminal and only when NO_COLOR is unset.
func newStyles(mode string, out io.Writer) (*styles, error) {
	var enabled bool
	switch mode {
	case "always":
		enabled = true
	case "never":
		enabled = false
	case "auto", "":
		f, ok := out.(*os.File)
		enabled = ok && term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == ""
	default:
		return nil, fmt.Errorf("unknown color mode: %s", mode)
	}

	s := &styles{
		heading: color.New(color.Bold),
		rule:    color.New(color.FgHiBlue),
		miss:    color.New(color.Faint),
	}
	for _, c := range []*color.Color{s.heading, s.rule, s.miss} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s, nil
}
