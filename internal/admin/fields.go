package admin

import (
	"time"

	"github.com/udevstartup/sitecms/internal/content"
)

// Form holds submitted control values keyed by control id.
type Form map[string]string

// Get returns the value of id, or "".
func (f Form) Get(id string) string {
	if f == nil {
		return ""
	}
	return f[id]
}

// Checked reports whether a checkbox control was submitted as checked.
func (f Form) Checked(id string) bool {
	switch f.Get(id) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func (f Form) clone() Form {
	out := make(Form, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Field binds one form control to one scalar of the document.
type Field struct {
	ID  string
	Get func(*content.Document) string
	Set func(*content.Document, string)
}

// Fields is the binding table of the top-level sections, in page order.
var Fields = []Field{
	{"js-company-name", func(d *content.Document) string { return d.Company.Name }, func(d *content.Document, v string) { d.Company.Name = v }},
	{"js-company-summary", func(d *content.Document) string { return d.Company.Summary }, func(d *content.Document, v string) { d.Company.Summary = v }},
	{"js-hero-eyebrow", func(d *content.Document) string { return d.Hero.Eyebrow }, func(d *content.Document, v string) { d.Hero.Eyebrow = v }},
	{"js-hero-headline", func(d *content.Document) string { return d.Hero.Headline }, func(d *content.Document, v string) { d.Hero.Headline = v }},
	{"js-hero-subheadline", func(d *content.Document) string { return d.Hero.Subheadline }, func(d *content.Document, v string) { d.Hero.Subheadline = v }},
	{"js-company-email", func(d *content.Document) string { return d.Company.Email }, func(d *content.Document, v string) { d.Company.Email = v }},
	{"js-company-instagram", func(d *content.Document) string { return d.Company.Instagram }, func(d *content.Document, v string) { d.Company.Instagram = v }},
	{"js-company-whatsapp", func(d *content.Document) string { return d.Company.WhatsApp }, func(d *content.Document, v string) { d.Company.WhatsApp = v }},
	{"js-company-whatsapp-url", func(d *content.Document) string { return d.Company.WhatsAppURL }, func(d *content.Document, v string) { d.Company.WhatsAppURL = v }},
	{"js-support-email", func(d *content.Document) string { return d.Support.Email }, func(d *content.Document, v string) { d.Support.Email = v }},
	{"js-support-phone", func(d *content.Document) string { return d.Support.Phone }, func(d *content.Document, v string) { d.Support.Phone = v }},
	{"js-support-hours", func(d *content.Document) string { return d.Support.Hours }, func(d *content.Document, v string) { d.Support.Hours = v }},
	{"js-dev-name", func(d *content.Document) string { return d.Developer.Name }, func(d *content.Document, v string) { d.Developer.Name = v }},
	{"js-dev-role", func(d *content.Document) string { return d.Developer.Role }, func(d *content.Document, v string) { d.Developer.Role = v }},
	{"js-dev-email", func(d *content.Document) string { return d.Developer.Email }, func(d *content.Document, v string) { d.Developer.Email = v }},
	{"js-dev-phone", func(d *content.Document) string { return d.Developer.Phone }, func(d *content.Document, v string) { d.Developer.Phone = v }},
	{"js-sales-line", func(d *content.Document) string { return d.Sales.Line }, func(d *content.Document, v string) { d.Sales.Line = v }},
}

// SyncFormToDocument overwrites every bound scalar of doc from values, then
// recomputes the derived meta fields.
func SyncFormToDocument(doc *content.Document, values Form, now time.Time) {
	for _, f := range Fields {
		f.Set(doc, values.Get(f.ID))
	}
	doc.RecomputeMeta(now)
}

// FillForm returns the control values for every bound scalar of doc.
func FillForm(doc *content.Document) Form {
	out := make(Form, len(Fields))
	for _, f := range Fields {
		out[f.ID] = f.Get(doc)
	}
	return out
}

// topFieldIDs lists the control ids of Fields.
func topFieldIDs() []string {
	ids := make([]string, len(Fields))
	for i, f := range Fields {
		ids[i] = f.ID
	}
	return ids
}
