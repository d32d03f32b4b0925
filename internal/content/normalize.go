package content

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidJSON is returned by Parse when the input is not valid JSON.
var ErrInvalidJSON = errors.New("invalid content json")

// Default returns the built-in empty document. Every section and collection is present.
func Default() *Document {
	return &Document{
		Hero:         Hero{Points: []string{}},
		Services:     []Service{},
		Banners:      []Banner{},
		Products:     []Product{},
		Testimonials: []Testimonial{},
	}
}

// Parse decodes data as JSON and normalizes the result.
func Parse(data []byte) (*Document, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return Normalize(raw), nil
}

// Normalize merges raw over the default document. It accepts any decoded JSON
// value (or a Document) and never fails: mistyped fields fall back to defaults,
// unknown fields are dropped and collections are replaced only by arrays.
func Normalize(raw any) *Document {
	data := asObject(raw)
	doc := Default()
	if data == nil {
		return doc
	}

	legacy, _ := data["contacts"].(map[string]any)

	if m, ok := data["meta"].(map[string]any); ok {
		doc.Meta = Meta{
			Published: boolean(m, "published", false),
			UpdatedAt: str(m, "updatedAt"),
			SiteName:  str(m, "siteName"),
		}
	}

	if m, ok := data["hero"].(map[string]any); ok {
		doc.Hero = Hero{
			Eyebrow:     str(m, "eyebrow"),
			Headline:    str(m, "headline"),
			Subheadline: str(m, "subheadline"),
			Points:      stringList(m["points"]),
		}
	}

	if m := sectionWithLegacy(data, legacy, "company"); m != nil {
		doc.Company = Company{
			Name:        str(m, "name"),
			Summary:     str(m, "summary"),
			Email:       str(m, "email"),
			Instagram:   str(m, "instagram"),
			WhatsApp:    str(m, "whatsapp"),
			WhatsAppURL: str(m, "whatsappUrl"),
		}
	}

	if m, ok := data["support"].(map[string]any); ok {
		doc.Support = Support{
			Email: str(m, "email"),
			Phone: str(m, "phone"),
			Hours: str(m, "hours"),
		}
	}

	if m := sectionWithLegacy(data, legacy, "developer"); m != nil {
		doc.Developer = Developer{
			Name:  str(m, "name"),
			Role:  str(m, "role"),
			Email: str(m, "email"),
			Phone: str(m, "phone"),
		}
	}

	if m, ok := data["sales"].(map[string]any); ok {
		doc.Sales = Sales{Line: str(m, "line")}
	}

	doc.Services = items(data["services"], decodeService)
	doc.Banners = items(data["banners"], decodeBanner)
	doc.Products = items(data["products"], decodeProduct)
	doc.Testimonials = items(data["testimonials"], decodeTestimonial)

	return doc
}

// asObject turns raw into a generic JSON object, or nil when it is not one.
func asObject(raw any) map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		return v
	case *Document:
		if v == nil {
			return nil
		}
		return roundTrip(v)
	case Document:
		return roundTrip(&v)
	default:
		return nil
	}
}

func roundTrip(doc *Document) map[string]any {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

// sectionWithLegacy returns data[key], falling back to the deprecated contacts.<key> shape.
func sectionWithLegacy(data, legacy map[string]any, key string) map[string]any {
	if m, ok := data[key].(map[string]any); ok {
		return m
	}
	if legacy != nil {
		if m, ok := legacy[key].(map[string]any); ok {
			return m
		}
	}
	return nil
}

func str(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func boolean(m map[string]any, key string, def bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return def
}

// rating reads a testimonial rating, bounded to -1..5 so that huge or
// fractional values keep their side of the 1..5 star range. Zero means unset.
func rating(m map[string]any, key string) int {
	var v float64
	switch n := m[key].(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	default:
		return 0
	}
	switch {
	case v > 5:
		return 5
	case v < 0:
		return -1
	case v > 0 && v < 1:
		return 1
	}
	return int(v)
}

func stringList(v any) []string {
	out := []string{}
	list, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func items[T any](v any, decode func(map[string]any) T) []T {
	out := []T{}
	list, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, decode(m))
		}
	}
	return out
}

func decodeService(m map[string]any) Service {
	return Service{
		ID:          str(m, "id"),
		Title:       str(m, "title"),
		Name:        str(m, "name"),
		Category:    str(m, "category"),
		Description: str(m, "description"),
		CTALabel:    str(m, "ctaLabel"),
		CTAURL:      str(m, "ctaUrl"),
		Visible:     boolean(m, "visible", true),
	}
}

func decodeBanner(m map[string]any) Banner {
	return Banner{
		ID:          str(m, "id"),
		Title:       str(m, "title"),
		Tag:         str(m, "tag"),
		Description: str(m, "description"),
		CTALabel:    str(m, "ctaLabel"),
		CTAURL:      str(m, "ctaUrl"),
		ImageURL:    str(m, "imageUrl"),
	}
}

func decodeProduct(m map[string]any) Product {
	return Product{
		ID:          str(m, "id"),
		Name:        str(m, "name"),
		Subtitle:    str(m, "subtitle"),
		Category:    str(m, "category"),
		Description: str(m, "description"),
		DriveFileID: str(m, "driveFileId"),
		DownloadURL: str(m, "downloadUrl"),
		OnlineURL:   str(m, "onlineUrl"),
		ImageURL:    str(m, "imageUrl"),
		Visible:     boolean(m, "visible", true),
		Featured:    boolean(m, "featured", false),
	}
}

func decodeTestimonial(m map[string]any) Testimonial {
	return Testimonial{
		Name:   str(m, "name"),
		Role:   str(m, "role"),
		Quote:  str(m, "quote"),
		Rating: rating(m, "rating"),
	}
}
