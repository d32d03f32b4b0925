package content

// Meta carries bookkeeping about the document. Published is derived, see RecomputeMeta.
type Meta struct {
	Published bool   `json:"published"`
	UpdatedAt string `json:"updatedAt"`
	SiteName  string `json:"siteName"`
}

// Hero is the headline block of the home page.
type Hero struct {
	Eyebrow     string   `json:"eyebrow"`
	Headline    string   `json:"headline"`
	Subheadline string   `json:"subheadline"`
	Points      []string `json:"points"`
}

// Company holds the public company contact card.
type Company struct {
	Name        string `json:"name"`
	Summary     string `json:"summary"`
	Email       string `json:"email"`
	Instagram   string `json:"instagram"`
	WhatsApp    string `json:"whatsapp"`
	WhatsAppURL string `json:"whatsappUrl"`
}

// Support holds the customer support contact card.
type Support struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Hours string `json:"hours"`
}

// Developer holds the developer contact card.
type Developer struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Sales holds the sales line shown in the footer.
type Sales struct {
	Line string `json:"line"`
}

// Service is an offered service.
type Service struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	CTALabel    string `json:"ctaLabel"`
	CTAURL      string `json:"ctaUrl"`
	Visible     bool   `json:"visible"`
}

// Banner is a promotional card on the home page.
type Banner struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Tag         string `json:"tag"`
	Description string `json:"description"`
	CTALabel    string `json:"ctaLabel"`
	CTAURL      string `json:"ctaUrl"`
	ImageURL    string `json:"imageUrl"`
}

// Product is a downloadable or online product. DriveFileID is the canonical
// backing asset; DownloadURL, when set, overrides the link derived from it.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Subtitle    string `json:"subtitle"`
	Category    string `json:"category"`
	Description string `json:"description"`
	DriveFileID string `json:"driveFileId"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	OnlineURL   string `json:"onlineUrl"`
	ImageURL    string `json:"imageUrl"`
	Visible     bool   `json:"visible"`
	Featured    bool   `json:"featured"`
}

// Testimonial is a customer quote. Rating is clamped to 1..5 when rendered.
type Testimonial struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Quote  string `json:"quote"`
	Rating int    `json:"rating"`
}

// Document is the single JSON object holding all editable site content.
type Document struct {
	Meta         Meta          `json:"meta"`
	Hero         Hero          `json:"hero"`
	Company      Company       `json:"company"`
	Support      Support       `json:"support"`
	Developer    Developer     `json:"developer"`
	Sales        Sales         `json:"sales"`
	Services     []Service     `json:"services"`
	Banners      []Banner      `json:"banners"`
	Products     []Product     `json:"products"`
	Testimonials []Testimonial `json:"testimonials"`
}
