package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/udevstartup/sitecms/internal/content"
)

type mockSource struct {
	doc *content.Document
	err error
}

func (m mockSource) Document(context.Context) (*content.Document, error) {
	return m.doc, m.err
}

func sampleDoc() *content.Document {
	doc := content.Default()
	doc.Company.Name = "Acme"
	doc.Hero.Headline = "Software"
	doc.Products = []content.Product{
		{ID: "p1", Name: "P1", Visible: true, Featured: true, DriveFileID: "abc"},
		{ID: "p2", Name: "P2", Visible: false, OnlineURL: "https://app.example.com"},
	}
	return doc
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{getContentTool, "get_content"},
		{getSectionTool, "get_section"},
		{listProductsTool, "list_products"},
		{checkPublishableTool, "check_publishable"},
	}
	for _, tt := range tests {
		if tt.tool.Name != tt.wantName {
			t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
		}
		if tt.tool.Description == "" {
			t.Errorf("%s: description should not be empty", tt.wantName)
		}
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer(mockSource{doc: sampleDoc()})
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
}

func TestHandleGetContent(t *testing.T) {
	srv := NewServer(mockSource{doc: sampleDoc()})
	text := resultText(t, call(t, srv.handleGetContent, nil))
	if !strings.Contains(text, `"name": "Acme"`) {
		t.Errorf("content missing company name:\n%s", text)
	}

	failing := NewServer(mockSource{err: errors.New("db closed")})
	if result := call(t, failing.handleGetContent, nil); !result.IsError {
		t.Error("expected tool error when the source fails")
	}
}

func TestHandleGetSection(t *testing.T) {
	srv := NewServer(mockSource{doc: sampleDoc()})

	text := resultText(t, call(t, srv.handleGetSection, map[string]any{"section": "company"}))
	if !strings.Contains(text, `"name": "Acme"`) || strings.Contains(text, "products") {
		t.Errorf("company section = %s", text)
	}

	if result := call(t, srv.handleGetSection, map[string]any{"section": "nope"}); !result.IsError {
		t.Error("expected error for unknown section")
	}
	if result := call(t, srv.handleGetSection, map[string]any{}); !result.IsError {
		t.Error("expected error for missing section")
	}
}

func TestHandleListProducts(t *testing.T) {
	srv := NewServer(mockSource{doc: sampleDoc()})

	text := resultText(t, call(t, srv.handleListProducts, nil))
	if !strings.Contains(text, "**P1**") || strings.Contains(text, "**P2**") {
		t.Errorf("visible listing = %s", text)
	}
	if !strings.Contains(text, "https://drive.google.com/uc?export=download&id=abc") {
		t.Errorf("listing missing derived download link: %s", text)
	}

	text = resultText(t, call(t, srv.handleListProducts, map[string]any{"visible_only": false}))
	if !strings.Contains(text, "**P2**") || !strings.Contains(text, "[hidden]") {
		t.Errorf("full listing = %s", text)
	}

	empty := NewServer(mockSource{doc: content.Default()})
	if text := resultText(t, call(t, empty.handleListProducts, nil)); text != "No products registered." {
		t.Errorf("empty listing = %q", text)
	}
}

func TestHandleCheckPublishable(t *testing.T) {
	srv := NewServer(mockSource{doc: sampleDoc()})
	if text := resultText(t, call(t, srv.handleCheckPublishable, nil)); !strings.HasPrefix(text, "Publishable: yes") {
		t.Errorf("check = %q", text)
	}

	srv = NewServer(mockSource{doc: content.Default()})
	text := resultText(t, call(t, srv.handleCheckPublishable, nil))
	if !strings.HasPrefix(text, "Publishable: no") || !strings.Contains(text, "company.name") {
		t.Errorf("check = %q", text)
	}
}
