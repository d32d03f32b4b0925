package content

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TimestampLayout matches the ISO-8601 millisecond format used for meta.updatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// HasPublicContent reports whether the document carries enough content to be
// shown publicly: a company name and at least one of headline, products,
// banners or services.
func (d *Document) HasPublicContent() bool {
	if d == nil || d.Company.Name == "" {
		return false
	}
	return d.Hero.Headline != "" || len(d.Products) > 0 || len(d.Banners) > 0 || len(d.Services) > 0
}

// RecomputeMeta refreshes the derived meta fields before a save.
func (d *Document) RecomputeMeta(now time.Time) {
	d.Meta.SiteName = d.Company.Name
	d.Meta.UpdatedAt = now.UTC().Format(TimestampLayout)
	d.Meta.Published = d.HasPublicContent()
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return Default()
	}
	c := *d
	c.Hero.Points = append([]string{}, d.Hero.Points...)
	c.Services = append([]Service{}, d.Services...)
	c.Banners = append([]Banner{}, d.Banners...)
	c.Products = append([]Product{}, d.Products...)
	c.Testimonials = append([]Testimonial{}, d.Testimonials...)
	return &c
}

// MarshalIndent encodes the document the way exports and Drive uploads store it.
func (d *Document) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// VisibleProducts returns the products not explicitly hidden, in order.
func (d *Document) VisibleProducts() []Product {
	out := []Product{}
	for _, p := range d.Products {
		if p.Visible {
			out = append(out, p)
		}
	}
	return out
}

// DownloadLink returns the product's download URL, derived from its Drive file
// when no explicit URL is set.
func (p Product) DownloadLink() string {
	if p.DownloadURL != "" {
		return p.DownloadURL
	}
	if p.DriveFileID != "" {
		return DriveDownloadURL(p.DriveFileID)
	}
	return ""
}

// DriveDownloadURL is the public direct-download URL of a Drive file.
func DriveDownloadURL(fileID string) string {
	return "https://drive.google.com/uc?export=download&id=" + url.QueryEscape(fileID)
}

// DriveViewURL is the public inline-view URL of a Drive file, used for images.
func DriveViewURL(fileID string) string {
	return "https://drive.google.com/uc?export=view&id=" + url.QueryEscape(fileID)
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases value, strips diacritics and collapses every run of
// non-alphanumerics into a single hyphen, without leading or trailing hyphens.
func Slugify(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		folded = value
	}
	folded = slugSeparators.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(folded, "-")
}
