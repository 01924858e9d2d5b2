package pkg

import (
	"errors"
	"math"
	"net/url"
	"strconv"
)

const (
	MaxPerPage = 100
	// MaxPage keeps Offset from overflowing. Pages past the data are just empty.
	MaxPage = math.MaxInt / MaxPerPage
)

// PageParams is a requested page, already normalized.
type PageParams struct {
	Page    int
	PerPage int
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is the pagination metadata returned next to a list.
type Page struct {
	Total   int `json:"total"`
	Pages   int `json:"pages"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// ParsePageParams reads page and per_page from the query. A missing, unparsable or
// non-positive page becomes 1 and a huge one MaxPage; per_page falls back to defaultPerPage
// and is capped at MaxPerPage.
func ParsePageParams(query url.Values, defaultPerPage int) PageParams {
	page, err := strconv.Atoi(query.Get("page"))
	switch {
	case errors.Is(err, strconv.ErrRange) && page > 0, err == nil && page > MaxPage:
		page = MaxPage
	case err != nil || page < 1:
		page = 1
	}

	perPage, err := strconv.Atoi(query.Get("per_page"))
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	return PageParams{
		Page:    page,
		PerPage: perPage,
	}
}

func NewPage(params PageParams, total int) Page {
	pages := 0
	if params.PerPage > 0 {
		pages = (total + params.PerPage - 1) / params.PerPage
	}
	return Page{
		Total:   total,
		Pages:   pages,
		Page:    params.Page,
		PerPage: params.PerPage,
	}
}
