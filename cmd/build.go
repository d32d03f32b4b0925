package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/udevstartup/sitecms/internal/progress"
	"github.com/udevstartup/sitecms/internal/publicsite"
	"github.com/udevstartup/sitecms/internal/source"
	"github.com/udevstartup/sitecms/internal/watch"
	"go.uber.org/zap"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the public site into a static directory",
	Long: `Fills every page of the templates directory with the current content and
writes the result, with all other assets, to the output directory. Content is
resolved like the public site does: content API, public Drive file, bundled file.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringP("output", "o", "", "output directory (overrides site.output_dir)")
	buildCmd.Flags().Bool("preview", false, "build from the stored preview document")
	buildCmd.Flags().Bool("watch", false, "rebuild when templates or the bundled content change")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = a.cfg.Site.OutputDir
	}
	usePreview, _ := cmd.Flags().GetBool("preview")
	watchMode, _ := cmd.Flags().GetBool("watch")

	builder := &publicsite.Builder{
		TemplatesDir: a.cfg.Site.TemplatesDir,
		OutputDir:    output,
		Links:        a.cfg.Site.Links,
		Reporter:     progress.NewReporter(os.Stderr),
		Logger:       a.logger,
	}

	build := func(ctx context.Context) error {
		start := time.Now()
		doc, origin, err := a.loader.Load(ctx, source.LoadOptions{Preview: usePreview})
		if err != nil {
			return fmt.Errorf("resolving content: %w", err)
		}
		res, err := builder.Build(ctx, doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Built %d page(s), copied %d asset(s), %d unchanged in %s (content: %s)\n",
			res.Pages, res.Assets, res.Unchanged, time.Since(start).Round(time.Millisecond), origin)
		if !res.Published {
			fmt.Fprintln(os.Stderr, "Warning: content is not publishable, pages were rendered empty")
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := build(ctx); err != nil {
		if !watchMode {
			return err
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	if !watchMode {
		return nil
	}

	// The watch loop logs its own progress; the bar would garble it.
	builder.Reporter = progress.Discard{}

	w := &watch.Watcher{
		Dirs:   []string{a.cfg.Site.TemplatesDir},
		Skip:   []string{output},
		Logger: a.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			a.logger.Debug("rebuilding", zap.Strings("changed", changed))
			return build(ctx)
		},
	}
	if static := a.cfg.Site.StaticContent; static != "" && !isWithin(static, a.cfg.Site.TemplatesDir) {
		if _, err := os.Stat(static); err == nil {
			w.Files = []string{static}
		}
	}

	fmt.Fprintf(os.Stderr, "Watching %s for changes (Ctrl+C to stop)\n", a.cfg.Site.TemplatesDir)
	return w.Run(ctx)
}

// isWithin reports whether path lies under dir.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
