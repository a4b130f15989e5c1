// Package reporter provides reporting sinks for build notifications.
package reporter

import (
	"fmt"
	"io"
	"os"
	"sync"

	"mipbuild/pkg/builder"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// clearLine moves to column 0 and erases the line.
const clearLine = "\r\033[K"

// Console prints build progress for humans. Per-file lines overwrite each
// other when the writer is a terminal, so only phase summaries remain.
type Console struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	quiet       bool

	info    *color.Color
	success *color.Color
	detail  *color.Color
}

// NewConsole returns a console reporter writing to out. When quiet is true
// per-file events are suppressed.
func NewConsole(out io.Writer, quiet bool) *Console {
	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &Console{
		out:         out,
		interactive: interactive,
		quiet:       quiet,
		info:        color.New(color.FgCyan),
		success:     color.New(color.FgGreen, color.Bold),
		detail:      color.New(color.Faint),
	}
}

// Report implements builder.Reporter.
func (c *Console) Report(e builder.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e.Type {
	case builder.EventFileProcessed, builder.EventFileOutput:
		if c.quiet {
			return
		}
		c.transient(c.detail.Sprint("  - " + e.Message))

	case builder.EventProcessorStart:
		if c.quiet {
			return
		}
		c.transient(c.detail.Sprint("  - " + e.Message))

	case builder.EventProcessorEnd:
		c.line("  - " + e.Message)

	case builder.EventPhaseStart:
		if e.Phase == builder.PhaseBuild {
			return
		}
		c.line(c.info.Sprint("* " + e.Message))
		if e.Phase != builder.PhaseLoad {
			c.line("--------")
		}

	case builder.EventPhaseEnd:
		if e.Phase == builder.PhaseBuild {
			c.line(c.success.Sprint(e.Message))
			return
		}
		c.line(c.info.Sprint("* "+e.Message) + "\n")
	}
}

// transient writes a line that the next line replaces on a terminal.
func (c *Console) transient(s string) {
	if c.interactive {
		fmt.Fprint(c.out, clearLine+s)
		return
	}
	fmt.Fprintln(c.out, s)
}

func (c *Console) line(s string) {
	if c.interactive {
		fmt.Fprint(c.out, clearLine)
	}
	fmt.Fprintln(c.out, s)
}
