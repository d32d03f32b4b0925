package admin

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/udevstartup/sitecms/internal/content"
)

// Item form control ids.
const (
	ServiceTitle       = "js-service-title"
	ServiceCategory    = "js-service-category"
	ServiceDescription = "js-service-description"
	ServiceCTALabel    = "js-service-cta-label"
	ServiceCTAURL      = "js-service-cta-url"

	BannerTitle       = "js-banner-title"
	BannerTag         = "js-banner-tag"
	BannerDescription = "js-banner-description"
	BannerCTALabel    = "js-banner-cta-label"
	BannerCTAURL      = "js-banner-cta-url"
	BannerImageURL    = "js-banner-image-url"

	ProductID          = "js-product-id"
	ProductName        = "js-product-name"
	ProductSubtitle    = "js-product-subtitle"
	ProductCategory    = "js-product-category"
	ProductDescription = "js-product-description"
	ProductDriveFileID = "js-product-drive-file-id"
	ProductDownloadURL = "js-product-download-url"
	ProductOnlineURL   = "js-product-online-url"
	ProductImageURL    = "js-product-image-url"
	ProductVisible     = "js-product-visible"
	ProductFeatured    = "js-product-featured"
)

func trimmed(f Form, id string) string {
	return strings.TrimSpace(f.Get(id))
}

func checkbox(v bool) string {
	if v {
		return "on"
	}
	return ""
}

// ServiceKind binds services to the service form.
func ServiceKind() *Kind[content.Service] {
	return &Kind[content.Service]{
		Name:     "service",
		Controls: []string{ServiceTitle, ServiceCategory, ServiceDescription, ServiceCTALabel, ServiceCTAURL},
		Required: "Preencha título e descrição do serviço.",
		FromForm: func(f Form) content.Service {
			title := trimmed(f, ServiceTitle)
			return content.Service{
				Title:       title,
				Name:        title,
				Category:    trimmed(f, ServiceCategory),
				Description: trimmed(f, ServiceDescription),
				CTALabel:    trimmed(f, ServiceCTALabel),
				CTAURL:      trimmed(f, ServiceCTAURL),
				Visible:     true,
			}
		},
		ToForm: func(s content.Service) Form {
			title := s.Title
			if title == "" {
				title = s.Name
			}
			return Form{
				ServiceTitle:       title,
				ServiceCategory:    s.Category,
				ServiceDescription: s.Description,
				ServiceCTALabel:    s.CTALabel,
				ServiceCTAURL:      s.CTAURL,
			}
		},
		Validate: func(s *content.Service) error {
			return validation.ValidateStruct(s,
				validation.Field(&s.Title, validation.Required),
				validation.Field(&s.Description, validation.Required),
			)
		},
		NewID: func(s content.Service) string { return "service-" + content.Slugify(s.Title) },
		GetID: func(s content.Service) string { return s.ID },
		SetID: func(s *content.Service, id string) { s.ID = id },
	}
}

// BannerKind binds banners to the banner form.
func BannerKind() *Kind[content.Banner] {
	return &Kind[content.Banner]{
		Name:     "banner",
		Controls: []string{BannerTitle, BannerTag, BannerDescription, BannerCTALabel, BannerCTAURL, BannerImageURL},
		Required: "Preencha título e descrição do banner.",
		FromForm: func(f Form) content.Banner {
			return content.Banner{
				Title:       trimmed(f, BannerTitle),
				Tag:         trimmed(f, BannerTag),
				Description: trimmed(f, BannerDescription),
				CTALabel:    trimmed(f, BannerCTALabel),
				CTAURL:      trimmed(f, BannerCTAURL),
				ImageURL:    trimmed(f, BannerImageURL),
			}
		},
		ToForm: func(b content.Banner) Form {
			return Form{
				BannerTitle:       b.Title,
				BannerTag:         b.Tag,
				BannerDescription: b.Description,
				BannerCTALabel:    b.CTALabel,
				BannerCTAURL:      b.CTAURL,
				BannerImageURL:    b.ImageURL,
			}
		},
		Validate: func(b *content.Banner) error {
			return validation.ValidateStruct(b,
				validation.Field(&b.Title, validation.Required),
				validation.Field(&b.Description, validation.Required),
			)
		},
		NewID: func(b content.Banner) string { return "banner-" + content.Slugify(b.Title) },
		GetID: func(b content.Banner) string { return b.ID },
		SetID: func(b *content.Banner, id string) { b.ID = id },
	}
}

// ProductKind binds products to the product form. A product needs a Drive
// file id unless an explicit download URL is given.
func ProductKind() *Kind[content.Product] {
	return &Kind[content.Product]{
		Name: "product",
		Controls: []string{
			ProductID, ProductName, ProductSubtitle, ProductCategory, ProductDescription,
			ProductDriveFileID, ProductDownloadURL, ProductOnlineURL, ProductImageURL,
			ProductVisible, ProductFeatured,
		},
		Required:   "Preencha nome, descrição e ID do arquivo no Drive.",
		Defaults:   Form{ProductVisible: "on"},
		Checkboxes: []string{ProductVisible, ProductFeatured},
		FromForm: func(f Form) content.Product {
			return content.Product{
				ID:          trimmed(f, ProductID),
				Name:        trimmed(f, ProductName),
				Subtitle:    trimmed(f, ProductSubtitle),
				Category:    trimmed(f, ProductCategory),
				Description: trimmed(f, ProductDescription),
				DriveFileID: trimmed(f, ProductDriveFileID),
				DownloadURL: trimmed(f, ProductDownloadURL),
				OnlineURL:   trimmed(f, ProductOnlineURL),
				ImageURL:    trimmed(f, ProductImageURL),
				Visible:     f.Checked(ProductVisible),
				Featured:    f.Checked(ProductFeatured),
			}
		},
		ToForm: func(p content.Product) Form {
			return Form{
				ProductID:          p.ID,
				ProductName:        p.Name,
				ProductSubtitle:    p.Subtitle,
				ProductCategory:    p.Category,
				ProductDescription: p.Description,
				ProductDriveFileID: p.DriveFileID,
				ProductDownloadURL: p.DownloadURL,
				ProductOnlineURL:   p.OnlineURL,
				ProductImageURL:    p.ImageURL,
				ProductVisible:     checkbox(p.Visible),
				ProductFeatured:    checkbox(p.Featured),
			}
		},
		Validate: func(p *content.Product) error {
			return validation.ValidateStruct(p,
				validation.Field(&p.Name, validation.Required),
				validation.Field(&p.Description, validation.Required),
				validation.Field(&p.DriveFileID, validation.Required.When(p.DownloadURL == "")),
			)
		},
		NewID: func(p content.Product) string {
			if p.ID != "" {
				return p.ID
			}
			return content.Slugify(p.Name)
		},
		GetID: func(p content.Product) string { return p.ID },
		SetID: func(p *content.Product, id string) { p.ID = id },
	}
}
