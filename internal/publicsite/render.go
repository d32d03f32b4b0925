// Package publicsite fills the public page templates with the content
// document, serves them and builds them into a static output directory.
package publicsite

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/udevstartup/sitecms/internal/content"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page identifiers read from the data-page attribute.
const (
	PageHome      = "home"
	PageVendapro  = "vendapro"
	PageDownloads = "downloads"
)

// FeaturedFallback is how many visible products stand in for featured ones.
const FeaturedFallback = 3

// DistinguishedProductID is the id of the product described by the vendapro page.
const DistinguishedProductID = "vendapro-saas"

var vendaproName = regexp.MustCompile(`(?i)vendapro`)

// liveReloadScript reloads the page whenever the preview socket sends a message.
const liveReloadScript = `(function(){var p=location.protocol==="https:"?"wss://":"ws://";var ws=new WebSocket(p+location.host+"/ws/preview");ws.onmessage=function(){location.reload();};})();`

// Options tune a render.
type Options struct {
	// Links fill [data-link-key] anchors and the contact link fallbacks.
	Links map[string]string
	// Now sets the year written into .js-year elements.
	Now time.Time
	// LiveReload appends a script that reloads the page on preview updates.
	LiveReload bool
}

// markdown renders the company summary. Raw HTML in the source is dropped.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Render fills page, an HTML template, from doc. When the document has no
// public content the body is emptied instead.
func Render(page []byte, doc *content.Document, opts Options) ([]byte, error) {
	root, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	body := findElement(root, atom.Body)
	if body == nil {
		return nil, fmt.Errorf("page has no body")
	}

	if !doc.HasPublicContent() {
		removeChildren(body)
	} else {
		r := renderer{root: root, doc: doc, opts: opts}
		if err := r.fill(pageID(root, body)); err != nil {
			return nil, err
		}
		applyLinks(root, opts.Links)
		setTextAll(root, "js-year", strconv.Itoa(opts.Now.Year()))
	}

	if opts.LiveReload {
		script := &html.Node{Type: html.ElementNode, Data: "script", DataAtom: atom.Script}
		script.AppendChild(&html.Node{Type: html.TextNode, Data: liveReloadScript})
		body.AppendChild(script)
	}

	var out bytes.Buffer
	if err := html.Render(&out, root); err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return out.Bytes(), nil
}

// pageID reads data-page from body, falling back to the html element.
func pageID(root, body *html.Node) string {
	if v, ok := attr(body, "data-page"); ok {
		return v
	}
	if h := findElement(root, atom.Html); h != nil {
		v, _ := attr(h, "data-page")
		return v
	}
	return ""
}

// applyLinks points every [data-link-key] anchor at its configured link.
func applyLinks(root *html.Node, links map[string]string) {
	walk(root, func(n *html.Node) {
		key, ok := attr(n, "data-link-key")
		if !ok {
			return
		}
		if href := links[key]; href != "" {
			setAttr(n, "href", href)
		}
	})
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

type renderer struct {
	root *html.Node
	doc  *content.Document
	opts Options
}

func (r renderer) fill(page string) error {
	if err := r.fillContact(); err != nil {
		return err
	}
	switch page {
	case PageHome:
		return r.fillHome()
	case PageVendapro:
		return r.fillVendapro()
	case PageDownloads:
		return r.fillDownloads()
	}
	return nil
}

func (r renderer) fillContact() error {
	company, dev := r.doc.Company, r.doc.Developer
	companyEmail := or(company.Email, "udev.oficial@gmail.com")
	devEmail := or(dev.Email, "pedrohenrique.dev.contato@gmail.com")

	setTextAll(r.root, "js-company-name", or(company.Name, "UDEV - StartUP"))
	setTextAll(r.root, "js-company-email-text", companyEmail)
	setTextAll(r.root, "js-company-whatsapp-text", or(company.WhatsApp, "+55 (63) 98441-2348"))
	setLinkAll(r.root, "js-company-email-link", "mailto:"+companyEmail, "")
	setLinkAll(r.root, "js-company-whatsapp-link", or(company.WhatsAppURL, or(r.opts.Links["whatsapp"], "https://wa.me/5563984412348")), "")
	setLinkAll(r.root, "js-company-instagram-link", or(company.Instagram, or(r.opts.Links["instagram"], "https://www.instagram.com/udev.oficial/")), "")

	setTextAll(r.root, "js-dev-name", or(dev.Name, "Pedro Henrique Santos Silva"))
	setTextAll(r.root, "js-dev-role", or(dev.Role, "Desenvolvedor / CO-CEO"))
	setTextAll(r.root, "js-dev-email-text", devEmail)
	setTextAll(r.root, "js-dev-phone", or(dev.Phone, "+55 (63) 98441-2348"))
	setLinkAll(r.root, "js-dev-email-link", "mailto:"+devEmail, "")

	setTextAll(r.root, "js-support-email", r.doc.Support.Email)
	setTextAll(r.root, "js-support-phone", r.doc.Support.Phone)
	setTextAll(r.root, "js-support-hours", r.doc.Support.Hours)
	setTextAll(r.root, "js-sales-line", r.doc.Sales.Line)

	if summary := strings.TrimSpace(company.Summary); summary != "" {
		var b bytes.Buffer
		if err := markdown.Convert([]byte(summary), &b); err != nil {
			return fmt.Errorf("rendering company summary: %w", err)
		}
		for _, n := range byClass(r.root, "js-company-summary") {
			if err := setInnerHTML(n, b.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r renderer) fillHome() error {
	hero := r.doc.Hero
	setTextAll(r.root, "js-hero-eyebrow", or(hero.Eyebrow, "Startup de software"))
	setTextAll(r.root, "js-hero-headline", or(hero.Headline, "Soluções inteligentes em software e tecnologia"))
	setTextAll(r.root, "js-hero-subheadline", or(hero.Subheadline, "A Udev cria produtos digitais com foco em resultado."))

	if n := byID(r.root, "js-banner-list"); n != nil {
		var markup string
		var err error
		if len(r.doc.Banners) > 0 {
			markup, err = bannerCards(r.doc.Banners)
		} else {
			markup, err = executeCard("empty", noBanners)
		}
		if err != nil {
			return err
		}
		if err := setInnerHTML(n, markup); err != nil {
			return err
		}
	}

	if n := byID(r.root, "js-featured-products"); n != nil {
		if err := r.fillProducts(n, Featured(r.doc), noFeatured); err != nil {
			return err
		}
	}

	if len(r.doc.Testimonials) > 0 {
		t := r.doc.Testimonials[0]
		rating := ClampRating(t.Rating)
		setTextAll(r.root, "js-testimonial-stars", strings.Repeat("★", rating)+strings.Repeat("☆", 5-rating))
		setTextAll(r.root, "js-testimonial-quote", "“"+t.Quote+"”")
		setTextAll(r.root, "js-testimonial-name", t.Name)
		setTextAll(r.root, "js-testimonial-role", t.Role)
	}
	return nil
}

func (r renderer) fillVendapro() error {
	product, ok := Distinguished(r.doc)
	if ok {
		setTextAll(r.root, "js-vendapro-name", or(product.Name, "VendaPro"))
		setTextAll(r.root, "js-vendapro-subtitle", or(product.Subtitle, "Plataforma web comercial"))
		setTextAll(r.root, "js-vendapro-description", or(product.Description, "Solução para gestão comercial e automação operacional."))

		if n := byID(r.root, "js-vendapro-download"); n != nil {
			if href := product.DownloadLink(); href != "" {
				setAttr(n, "href", href)
			}
		}
		if n := byID(r.root, "js-vendapro-online"); n != nil && product.OnlineURL != "" {
			setAttr(n, "href", product.OnlineURL)
		}
	}

	if n := byID(r.root, "js-vendapro-related-products"); n != nil {
		return r.fillProducts(n, Related(r.doc), noRelated)
	}
	return nil
}

func (r renderer) fillDownloads() error {
	n := byID(r.root, "js-download-products")
	if n == nil {
		return nil
	}
	return r.fillProducts(n, r.doc.VisibleProducts(), noDownloads)
}

func (r renderer) fillProducts(n *html.Node, products []content.Product, empty emptyCard) error {
	var markup string
	var err error
	if len(products) > 0 {
		markup, err = productCards(products)
	} else {
		markup, err = executeCard("empty", empty)
	}
	if err != nil {
		return err
	}
	return setInnerHTML(n, markup)
}

// Featured returns the visible featured products, or the first few visible
// products when none is featured.
func Featured(doc *content.Document) []content.Product {
	visible := doc.VisibleProducts()
	var featured []content.Product
	for _, p := range visible {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	if len(featured) > 0 {
		return featured
	}
	if len(visible) > FeaturedFallback {
		return visible[:FeaturedFallback]
	}
	return visible
}

// Distinguished returns the product described on the vendapro page: the one
// with DistinguishedProductID, else the first whose name mentions VendaPro,
// else the first visible product.
func Distinguished(doc *content.Document) (content.Product, bool) {
	visible := doc.VisibleProducts()
	i := distinguishedIndex(visible)
	if i < 0 {
		return content.Product{}, false
	}
	return visible[i], true
}

// distinguishedIndex returns the position of the distinguished product in
// visible, or -1 when there is none.
func distinguishedIndex(visible []content.Product) int {
	for i, p := range visible {
		if p.ID == DistinguishedProductID {
			return i
		}
	}
	for i, p := range visible {
		if vendaproName.MatchString(p.Name) {
			return i
		}
	}
	if len(visible) > 0 {
		return 0
	}
	return -1
}

// Related returns up to three visible products other than the distinguished
// one. Products are told apart by position since ids may be empty.
func Related(doc *content.Document) []content.Product {
	visible := doc.VisibleProducts()
	skip := distinguishedIndex(visible)
	var out []content.Product
	for i, p := range visible {
		if i == skip {
			continue
		}
		out = append(out, p)
		if len(out) == FeaturedFallback {
			break
		}
	}
	return out
}

// ClampRating maps a testimonial rating into 1..5; unset ratings count as 5.
func ClampRating(rating int) int {
	switch {
	case rating == 0:
		return 5
	case rating < 1:
		return 1
	case rating > 5:
		return 5
	}
	return rating
}
