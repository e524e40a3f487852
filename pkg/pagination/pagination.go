package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultPerPage is the standard page size when one is not provided.
	DefaultPerPage = 15
	// MaxPerPage caps how many rows any listing can request.
	MaxPerPage = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Meta describes the page that was returned.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// FromQuery parses page/per_page query values with bounds applied.
func FromQuery(values url.Values) Params {
	page, _ := strconv.Atoi(values.Get("page"))
	perPage, _ := strconv.Atoi(values.Get("per_page"))
	return Normalize(Params{Page: page, PerPage: perPage})
}

// Normalize enforces the configured default and maximum limits.
func Normalize(p Params) Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	n := Normalize(p)
	return (n.Page - 1) * n.PerPage
}

// NewMeta builds response metadata from the normalized params and row count.
func NewMeta(p Params, total int64) Meta {
	n := Normalize(p)
	pages := int(total) / n.PerPage
	if int(total)%n.PerPage != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return Meta{
		Page:       n.Page,
		PerPage:    n.PerPage,
		Total:      total,
		TotalPages: pages,
	}
}
