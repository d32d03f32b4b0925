package progress

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Out: &buf}

	r.Begin(2, 1)
	r.Done(Step{Path: "assets/site.css", Action: Unchanged})
	r.Done(Step{Path: "downloads.html", Action: Rendered})
	r.Done(Step{Path: "index.html", Action: Rendered})
	r.End(Summary{Rendered: 2, Unchanged: 1, Elapsed: 1500 * time.Microsecond})

	out := buf.String()
	for _, want := range []string{
		"building site: 2 page(s), 1 asset(s)",
		"[2/3] rendered downloads.html",
		"[3/3] rendered index.html",
		"build done in 2ms: 2 rendered, 0 copied, 1 unchanged",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "site.css") {
		t.Errorf("unchanged assets should not be listed:\n%s", out)
	}
}

func TestCIReporterFailure(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Out: &buf}
	r.Begin(1, 0)
	r.End(Summary{Err: errors.New("index.html: boom")})

	if !strings.Contains(buf.String(), "build failed after 0/1 file(s): index.html: boom") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter(&bytes.Buffer{}).(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}
