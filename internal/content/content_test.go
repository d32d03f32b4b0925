package content

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestNormalizeTotal(t *testing.T) {
	inputs := []struct {
		name string
		raw  any
	}{
		{"nil", nil},
		{"empty object", map[string]any{}},
		{"array", []any{1, 2, 3}},
		{"string", "hello"},
		{"number", 42.0},
		{"bool", true},
		{"mistyped sections", map[string]any{
			"hero":     "nope",
			"company":  []any{"x"},
			"services": map[string]any{"a": 1},
			"products": "none",
		}},
	}

	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			doc := Normalize(tt.raw)
			if doc == nil {
				t.Fatal("Normalize returned nil")
			}
			if doc.Hero.Points == nil || doc.Services == nil || doc.Banners == nil || doc.Products == nil || doc.Testimonials == nil {
				t.Fatalf("collections must never be nil: %+v", doc)
			}

			data, err := json.Marshal(doc)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var m map[string]any
			if err := json.Unmarshal(data, &m); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			for _, key := range []string{"meta", "hero", "company", "support", "developer", "sales"} {
				if _, ok := m[key].(map[string]any); !ok {
					t.Errorf("section %q missing or not an object", key)
				}
			}
			for _, key := range []string{"services", "banners", "products"} {
				if _, ok := m[key].([]any); !ok {
					t.Errorf("collection %q missing or not an array", key)
				}
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := map[string]any{
		"meta":    map[string]any{"published": true, "updatedAt": "2024-01-01T00:00:00.000Z"},
		"hero":    map[string]any{"headline": "Hi", "points": []any{"a", 3.0, "b"}},
		"company": map[string]any{"name": "Acme", "email": 12.0, "extra": "dropped"},
		"services": []any{
			map[string]any{"id": "service-web", "title": "Web", "visible": false},
			"not an object",
		},
		"products": []any{
			map[string]any{"name": "P1", "driveFileId": "abc", "featured": true},
			map[string]any{"name": "P2", "downloadUrl": "https://example.com/p2"},
		},
		"testimonials": []any{map[string]any{"name": "Ana", "rating": 4.0}},
	}

	once := Normalize(raw)
	twice := Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("normalize is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}

	if got := once.Hero.Points; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("points = %v, want [a b]", got)
	}
	if once.Company.Email != "" {
		t.Errorf("mistyped email should fall back to default, got %q", once.Company.Email)
	}
	if len(once.Services) != 1 || once.Services[0].Visible {
		t.Errorf("services = %+v, want one hidden service", once.Services)
	}
	if !once.Products[0].Visible || !once.Products[0].Featured {
		t.Errorf("product defaults wrong: %+v", once.Products[0])
	}
	if once.Testimonials[0].Rating != 4 {
		t.Errorf("rating = %d, want 4", once.Testimonials[0].Rating)
	}
}

func TestNormalizeLegacyContacts(t *testing.T) {
	doc := Normalize(map[string]any{
		"contacts": map[string]any{
			"company":   map[string]any{"name": "X"},
			"developer": map[string]any{"name": "Dev", "role": "CTO"},
		},
	})
	if doc.Company.Name != "X" {
		t.Errorf("company.name = %q, want %q", doc.Company.Name, "X")
	}
	if doc.Developer.Role != "CTO" {
		t.Errorf("developer.role = %q, want %q", doc.Developer.Role, "CTO")
	}

	// The primary key wins over the legacy shape.
	doc = Normalize(map[string]any{
		"company":  map[string]any{"name": "Primary"},
		"contacts": map[string]any{"company": map[string]any{"name": "Legacy"}},
	})
	if doc.Company.Name != "Primary" {
		t.Errorf("company.name = %q, want %q", doc.Company.Name, "Primary")
	}
}

func TestNormalizeRatingBounds(t *testing.T) {
	tests := []struct {
		raw  any
		want int
	}{
		{1e30, 5},
		{-1e30, -1},
		{9.0, 5},
		{3.0, 3},
		{4.7, 4},
		{0.5, 1},
		{-0.5, -1},
		{0.0, 0},
		{"5", 0},
	}
	for _, tt := range tests {
		doc := Normalize(map[string]any{
			"testimonials": []any{map[string]any{"name": "Ana", "rating": tt.raw}},
		})
		if got := doc.Testimonials[0].Rating; got != tt.want {
			t.Errorf("rating %v normalized to %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(`{"company":{"name":"Acme"},"products":[{"name":"P1","description":"d"}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Company.Name != "Acme" || len(doc.Products) != 1 {
		t.Errorf("unexpected document: %+v", doc)
	}

	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Error("expected error for malformed json")
	}
}

func TestRecomputeMeta(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		name string
		doc  *Document
		want bool
	}{
		{
			name: "no company name",
			doc: &Document{
				Hero:     Hero{Headline: "Headline"},
				Products: []Product{{Name: "P"}},
			},
			want: false,
		},
		{
			name: "company and product",
			doc: &Document{
				Company:  Company{Name: "Acme"},
				Products: []Product{{Name: "P"}},
			},
			want: true,
		},
		{
			name: "company only",
			doc:  &Document{Company: Company{Name: "Acme"}},
			want: false,
		},
		{
			name: "company and headline",
			doc:  &Document{Company: Company{Name: "Acme"}, Hero: Hero{Headline: "H"}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.doc.Meta.Published = !tt.want
			tt.doc.RecomputeMeta(now)
			if tt.doc.Meta.Published != tt.want {
				t.Errorf("published = %v, want %v", tt.doc.Meta.Published, tt.want)
			}
			if tt.doc.Meta.UpdatedAt != "2024-05-06T07:08:09.000Z" {
				t.Errorf("updatedAt = %q", tt.doc.Meta.UpdatedAt)
			}
			if tt.doc.Meta.SiteName != tt.doc.Company.Name {
				t.Errorf("siteName = %q, want %q", tt.doc.Meta.SiteName, tt.doc.Company.Name)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Café & Co.", "cafe-co"},
		{"VendaPro SaaS", "vendapro-saas"},
		{"  --Ação  Rápida--  ", "acao-rapida"},
		{"ÀÉÎÕÜ ç", "aeiou-c"},
		{"already-slugged", "already-slugged"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDownloadLink(t *testing.T) {
	p := Product{DriveFileID: "abc"}
	if got := p.DownloadLink(); got != "https://drive.google.com/uc?export=download&id=abc" {
		t.Errorf("DownloadLink = %q", got)
	}
	p.DownloadURL = "https://example.com/file"
	if got := p.DownloadLink(); got != "https://example.com/file" {
		t.Errorf("DownloadLink = %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := Normalize(map[string]any{"products": []any{map[string]any{"name": "P1"}}})
	c := doc.Clone()
	c.Products[0].Name = "changed"
	if doc.Products[0].Name != "P1" {
		t.Error("Clone shares product storage with the original")
	}
}
