package publicsite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/udevstartup/sitecms/internal/content"
	"github.com/udevstartup/sitecms/internal/progress"
	"github.com/udevstartup/sitecms/internal/walker"
	"go.uber.org/zap"
)

// Builder renders a templates directory into a static output directory.
type Builder struct {
	TemplatesDir string
	OutputDir    string
	Links        map[string]string
	Exclude      []string
	Reporter     progress.Reporter
	Logger       *zap.Logger
	Now          func() time.Time
}

// BuildResult summarizes a build.
type BuildResult struct {
	Pages     int
	Assets    int
	Unchanged int
	Published bool
}

// Build renders every HTML page with doc and copies every other file. Assets
// whose output already has the same content are left alone.
func (b *Builder) Build(ctx context.Context, doc *content.Document) (result BuildResult, err error) {
	reporter := b.Reporter
	if reporter == nil {
		reporter = progress.Discard{}
	}
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	files, err := walker.Walk(walker.WalkerConfig{
		RootDir:  b.TemplatesDir,
		Exclude:  b.Exclude,
		SkipDirs: []string{b.OutputDir},
	})
	if err != nil {
		return result, err
	}
	if len(files) == 0 {
		return result, fmt.Errorf("no site files found in %s", b.TemplatesDir)
	}

	if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
		return result, err
	}

	result.Published = doc.HasPublicContent()
	if !result.Published {
		logger.Warn("content is not publishable, pages will be blank")
	}

	var pages int
	for _, f := range files {
		if f.Kind == walker.KindPage {
			pages++
		}
	}
	start := time.Now()
	reporter.Begin(pages, len(files)-pages)
	defer func() {
		reporter.End(progress.Summary{
			Rendered:  result.Pages,
			Copied:    result.Assets,
			Unchanged: result.Unchanged,
			Elapsed:   time.Since(start),
			Err:       err,
		})
	}()

	opts := Options{Links: b.Links, Now: now()}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		action, err := b.buildFile(f, doc, opts)
		if err != nil {
			return result, fmt.Errorf("%s: %w", f.RelPath, err)
		}
		switch action {
		case progress.Rendered:
			result.Pages++
		case progress.Copied:
			result.Assets++
		case progress.Unchanged:
			result.Unchanged++
		}
		reporter.Done(progress.Step{Path: f.RelPath, Action: action})
	}

	logger.Info("site built",
		zap.String("output", b.OutputDir),
		zap.Int("pages", result.Pages),
		zap.Int("assets", result.Assets),
		zap.Int("unchanged", result.Unchanged),
	)
	return result, nil
}

// buildFile writes one file of the output tree.
func (b *Builder) buildFile(f walker.FileInfo, doc *content.Document, opts Options) (progress.Action, error) {
	dst := filepath.Join(b.OutputDir, filepath.FromSlash(f.RelPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	if f.Kind == walker.KindPage {
		page, err := os.ReadFile(f.Path)
		if err != nil {
			return "", err
		}
		out, err := Render(page, doc, opts)
		if err != nil {
			return "", err
		}
		return progress.Rendered, os.WriteFile(dst, out, 0o644)
	}

	if hash, err := walker.HashFile(dst); err == nil && hash == f.ContentHash {
		return progress.Unchanged, nil
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	return progress.Copied, os.WriteFile(dst, data, 0o644)
}
