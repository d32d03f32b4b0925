// Package progress reports static site builds on a terminal bar or as plain
// log lines in CI.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Action is what a build did with one file.
type Action string

const (
	Rendered  Action = "rendered"
	Copied    Action = "copied"
	Unchanged Action = "unchanged"
)

// Step is one finished file of a build.
type Step struct {
	Path   string
	Action Action
}

// Summary closes a build. Err is set when the build stopped early.
type Summary struct {
	Rendered  int
	Copied    int
	Unchanged int
	Elapsed   time.Duration
	Err       error
}

// Reporter follows a site build.
type Reporter interface {
	Begin(pages, assets int)
	Done(step Step)
	End(summary Summary)
}

// NewReporter picks a CIReporter under CI and a TerminalReporter otherwise.
func NewReporter(out io.Writer) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{Out: out}
	}
	return &TerminalReporter{Out: out}
}

// TerminalReporter draws a bar that is cleared once the build ends.
type TerminalReporter struct {
	Out io.Writer
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Begin(pages, assets int) {
	r.bar = progressbar.NewOptions(pages+assets,
		progressbar.OptionSetWriter(r.Out),
		progressbar.OptionSetDescription("building site"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Done(step Step) {
	if r.bar == nil {
		return
	}
	r.bar.Describe(string(step.Action) + " " + step.Path)
	_ = r.bar.Add(1)
}

func (r *TerminalReporter) End(Summary) {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints one line per page and a closing tally. Unchanged assets
// are counted but not listed.
type CIReporter struct {
	Out   io.Writer
	total int
	seen  int
}

func (r *CIReporter) Begin(pages, assets int) {
	r.total = pages + assets
	r.seen = 0
	fmt.Fprintf(r.Out, "building site: %d page(s), %d asset(s)\n", pages, assets)
}

func (r *CIReporter) Done(step Step) {
	r.seen++
	if step.Action == Unchanged {
		return
	}
	fmt.Fprintf(r.Out, "[%d/%d] %s %s\n", r.seen, r.total, step.Action, step.Path)
}

func (r *CIReporter) End(s Summary) {
	if s.Err != nil {
		fmt.Fprintf(r.Out, "build failed after %d/%d file(s): %v\n", r.seen, r.total, s.Err)
		return
	}
	fmt.Fprintf(r.Out, "build done in %s: %d rendered, %d copied, %d unchanged\n",
		s.Elapsed.Round(time.Millisecond), s.Rendered, s.Copied, s.Unchanged)
}

// Discard reports nothing.
type Discard struct{}

func (Discard) Begin(int, int) {}
func (Discard) Done(Step)      {}
func (Discard) End(Summary)    {}
