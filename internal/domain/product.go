package domain

import (
	"regexp"
	"strings"
)

// Product is a catalog record as returned by the catalog search endpoint.
// Price bounds are nullable: an absent MinPrice means the price is unknown,
// not zero.
type Product struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	MinPrice        *float64 `json:"minPrice"`
	MaxPrice        *float64 `json:"maxPrice"`
	Occasion        string   `json:"occasion"`    // comma-joined tags
	Ingredients     string   `json:"ingredients"` // comma-joined list
	Sizes           int      `json:"sizes"`
	OneHourDelivery bool     `json:"oneHourDelivery"`
	Tag             string   `json:"tag"` // promotional tag, e.g. "Top Seller"
	OnSale          bool     `json:"onSale"`
	OriginalPrice   *float64 `json:"originalPrice"`
	Score           float64  `json:"score"` // catalog relevance score
	AllergyInfo     string   `json:"allergyInfo"`
	URL             string   `json:"url"` // catalog-relative fragment
}

// TopSeller reports whether the promotional tag marks the product as a top
// seller. Catalog data carries variants like "Top Seller" and "top-seller".
func (p Product) TopSeller() bool {
	return strings.Contains(strings.ToLower(p.Tag), "top")
}

// ModelView is the token-economical projection sent to the language model.
// It carries only the fields needed for grounding; no visual fields.
type ModelView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	MinPrice    *float64 `json:"minPrice,omitempty"`
	MaxPrice    *float64 `json:"maxPrice,omitempty"`
	Occasion    string   `json:"occasion,omitempty"`
	Ingredients string   `json:"ingredients,omitempty"`
	Tag         string   `json:"tag,omitempty"`
	OneHour     bool     `json:"oneHourDelivery,omitempty"`
	AllergyInfo string   `json:"allergyInfo,omitempty"`
}

// DisplayView is the presentation projection with the absolute product URL.
type DisplayView struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	MinPrice        *float64 `json:"minPrice"`
	MaxPrice        *float64 `json:"maxPrice"`
	Tag             string   `json:"tag,omitempty"`
	OnSale          bool     `json:"onSale"`
	OriginalPrice   *float64 `json:"originalPrice,omitempty"`
	OneHourDelivery bool     `json:"oneHourDelivery"`
	URL             string   `json:"url"`
}

// ForModel builds the model projection with a sanitized description.
func (p Product) ForModel() ModelView {
	return ModelView{
		ID:          p.ID,
		Name:        p.Name,
		Description: SanitizeDescription(p.Description),
		MinPrice:    p.MinPrice,
		MaxPrice:    p.MaxPrice,
		Occasion:    p.Occasion,
		Ingredients: p.Ingredients,
		Tag:         p.Tag,
		OneHour:     p.OneHourDelivery,
		AllergyInfo: p.AllergyInfo,
	}
}

// ForDisplay builds the display projection, prefixing the catalog base URL.
func (p Product) ForDisplay(baseURL string) DisplayView {
	url := p.URL
	if url != "" && !strings.HasPrefix(url, "http") {
		url = strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(url, "/")
	}
	return DisplayView{
		ID:              p.ID,
		Name:            p.Name,
		Description:     SanitizeDescription(p.Description),
		MinPrice:        p.MinPrice,
		MaxPrice:        p.MaxPrice,
		Tag:             p.Tag,
		OnSale:          p.OnSale,
		OriginalPrice:   p.OriginalPrice,
		OneHourDelivery: p.OneHourDelivery,
		URL:             url,
	}
}

var (
	htmlTagRe   = regexp.MustCompile(`<[^>]*>`)
	lineBreakRe = regexp.MustCompile(`(<br\s*/?>|\r\n|\r)`)
	spaceRunRe  = regexp.MustCompile(`[ \t]{2,}`)
)

// SanitizeDescription strips HTML markup and normalizes line breaks.
// Both projections use it so the model and the UI see the same text.
func SanitizeDescription(s string) string {
	s = lineBreakRe.ReplaceAllString(s, "\n")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
