package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/udevstartup/sitecms/internal/content"
	"github.com/udevstartup/sitecms/internal/revisions"
	"github.com/udevstartup/sitecms/internal/schema"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store a content JSON file as the published document",
	Long: `Validates a content JSON file and stores it as the document served by the
content API. With --draft it replaces the admin panel's working draft instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the published document (or the draft) as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a content JSON file against the content schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	importCmd.Flags().Bool("draft", false, "replace the admin draft instead of the published document")
	exportCmd.Flags().Bool("draft", false, "export the admin draft instead of the published document")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
}

// readPayload reads and schema-checks a content file.
func readPayload(path string) ([]byte, any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", content.ErrInvalidJSON, err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, nil, err
	}
	return data, payload, nil
}

func printIssues(err error) {
	for _, issue := range schema.Issues(err) {
		location := issue.Location
		if location == "" {
			location = "#"
		}
		fmt.Fprintf(os.Stderr, "  %s: %s\n", location, issue.Message)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	data, payload, err := readPayload(args[0])
	if err != nil {
		printIssues(err)
		return fmt.Errorf("importing %s: %w", args[0], err)
	}
	doc := content.Normalize(payload)

	draft, _ := cmd.Flags().GetBool("draft")
	if draft {
		doc.RecomputeMeta(time.Now())
		if err := a.state.SaveDraft(ctx, doc); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Draft replaced from %s\n", args[0])
	} else {
		var compact bytes.Buffer
		if err := json.Compact(&compact, data); err != nil {
			return err
		}
		updatedAt, err := a.content.Put(ctx, compact.Bytes())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Content imported from %s (updatedAt %s)\n", args[0], updatedAt)
	}

	if _, err := a.revisions.Record(ctx, revisions.SourceImport, "cli", "imported "+args[0], doc); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record revision: %v\n", err)
	}
	if !doc.HasPublicContent() {
		fmt.Fprintln(os.Stderr, "Warning: content is not publishable yet (company name plus a headline, product, banner or service)")
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	var doc *content.Document
	draft, _ := cmd.Flags().GetBool("draft")
	if draft {
		doc, err = a.state.LoadDraft(ctx)
	} else {
		doc, err = a.content.Document(ctx)
	}
	if err != nil {
		return fmt.Errorf("reading content: %w", err)
	}

	data, err := doc.MarshalIndent()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Content written to %s\n", args[0])
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	_, payload, err := readPayload(args[0])
	if errors.Is(err, schema.ErrInvalidPayload) {
		fmt.Fprintf(os.Stderr, "%s does not match the content schema:\n", args[0])
		printIssues(err)
		return fmt.Errorf("%d issue(s) found", len(schema.Issues(err)))
	}
	if err != nil {
		return err
	}

	doc := content.Normalize(payload)
	fmt.Fprintf(os.Stderr, "%s is valid: %d service(s), %d banner(s), %d product(s), %d testimonial(s)\n",
		args[0], len(doc.Services), len(doc.Banners), len(doc.Products), len(doc.Testimonials))
	if doc.HasPublicContent() {
		fmt.Fprintln(os.Stderr, "Publishable: yes")
	} else {
		fmt.Fprintln(os.Stderr, "Publishable: no (company name plus a headline, product, banner or service required)")
	}
	return nil
}
