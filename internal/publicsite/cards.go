package publicsite

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/udevstartup/sitecms/internal/content"
)

var cardTemplates = template.Must(template.New("cards").Parse(`
{{- define "image"}}{{with .}}<div class="catalog-image" style="background-image:url('{{.}}')"></div>{{end}}{{end -}}

{{- define "product"}}<article class="panel item-card">{{template "image" .ImageURL}}<p class="eyebrow">{{or .Category "Produto"}}</p><h3>{{or .Name "Produto"}}</h3><p>{{or .Description "Sem descrição."}}</p><div class="card-actions">{{with .DownloadLink}}<a class="btn btn-primary" target="_blank" rel="noopener noreferrer" href="{{.}}">Download</a>{{end}}{{with .OnlineURL}}<a class="btn btn-secondary" target="_blank" rel="noopener noreferrer" href="{{.}}">Acessar online</a>{{end}}</div></article>{{end -}}

{{- define "banner"}}<article class="panel quick-card banner-card">{{template "image" .ImageURL}}<p class="eyebrow">{{or .Tag "Banner"}}</p><h3>{{or .Title "Comunicado"}}</h3><p>{{or .Description "Sem descrição."}}</p><a class="text-link" href="{{or .CTAURL "#"}}">{{or .CTALabel "Ver mais"}}</a></article>{{end -}}

{{- define "empty"}}<article class="panel {{.Class}}"><h3>{{.Title}}</h3><p>{{.Text}}</p></article>{{end -}}
`))

// emptyCard is the placeholder shown in place of an empty list.
type emptyCard struct {
	Class string
	Title string
	Text  string
}

var (
	noBanners   = emptyCard{"quick-card", "Sem banners cadastrados", "Use a área da empresa para publicar novos banners."}
	noFeatured  = emptyCard{"quick-card", "Sem produtos cadastrados", "A empresa ainda não publicou itens na prateleira digital."}
	noRelated   = emptyCard{"quick-card", "Sem produtos relacionados", "Cadastre novos produtos na área da empresa."}
	noDownloads = emptyCard{"item-card", "Sem downloads cadastrados", "Use a área da empresa para adicionar produtos e links de download."}
)

func executeCard(name string, data any) (string, error) {
	var b bytes.Buffer
	if err := cardTemplates.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func productCards(products []content.Product) (string, error) {
	var parts []string
	for _, p := range products {
		card, err := executeCard("product", p)
		if err != nil {
			return "", err
		}
		parts = append(parts, card)
	}
	return strings.Join(parts, ""), nil
}

func bannerCards(banners []content.Banner) (string, error) {
	var parts []string
	for _, b := range banners {
		card, err := executeCard("banner", b)
		if err != nil {
			return "", err
		}
		parts = append(parts, card)
	}
	return strings.Join(parts, ""), nil
}
