package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/udevstartup/sitecms/internal/content"
)

func (s *Server) document(ctx context.Context) (*content.Document, *mcp.CallToolResult) {
	doc, err := s.source.Document(ctx)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("loading content failed: %v", err))
	}
	return doc, nil
}

// handleGetContent returns the whole document.
func (s *Server) handleGetContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errResult := s.document(ctx)
	if errResult != nil {
		return errResult, nil
	}
	data, err := doc.MarshalIndent()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding content failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleGetSection returns a single top-level section.
func (s *Server) handleGetSection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := request.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: section"), nil
	}
	if !slices.Contains(Sections, section) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown section %q, expected one of: %s", section, strings.Join(Sections, ", "))), nil
	}

	doc, errResult := s.document(ctx)
	if errResult != nil {
		return errResult, nil
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding content failed: %v", err)), nil
	}
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding content failed: %v", err)), nil
	}
	out, err := json.MarshalIndent(sections[section], "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding section failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// handleListProducts lists the catalog in a readable form.
func (s *Server) handleListProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errResult := s.document(ctx)
	if errResult != nil {
		return errResult, nil
	}

	products := doc.Products
	if request.GetBool("visible_only", true) {
		products = doc.VisibleProducts()
	}
	if len(products) == 0 {
		return mcp.NewToolResultText("No products registered."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d product(s):\n\n", len(products))
	for _, p := range products {
		fmt.Fprintf(&b, "- **%s**", p.Name)
		if p.ID != "" {
			fmt.Fprintf(&b, " (`%s`)", p.ID)
		}
		if p.Featured {
			b.WriteString(" [featured]")
		}
		if !p.Visible {
			b.WriteString(" [hidden]")
		}
		b.WriteString("\n")
		if p.Category != "" {
			fmt.Fprintf(&b, "  Category: %s\n", p.Category)
		}
		if link := p.DownloadLink(); link != "" {
			fmt.Fprintf(&b, "  Download: %s\n", link)
		}
		if p.OnlineURL != "" {
			fmt.Fprintf(&b, "  Online: %s\n", p.OnlineURL)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleCheckPublishable explains whether the public pages will show content.
func (s *Server) handleCheckPublishable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errResult := s.document(ctx)
	if errResult != nil {
		return errResult, nil
	}

	if doc.HasPublicContent() {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Publishable: yes. %d service(s), %d banner(s), %d visible product(s).",
			len(doc.Services), len(doc.Banners), len(doc.VisibleProducts()),
		)), nil
	}

	var missing []string
	if doc.Company.Name == "" {
		missing = append(missing, "company.name")
	}
	if doc.Hero.Headline == "" && len(doc.Products) == 0 && len(doc.Banners) == 0 && len(doc.Services) == 0 {
		missing = append(missing, "one of hero.headline, products, banners or services")
	}
	return mcp.NewToolResultText("Publishable: no. Public pages render empty until these are filled: " + strings.Join(missing, "; ") + "."), nil
}
