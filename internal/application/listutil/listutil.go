package listutil

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// DefaultPerPage is the number of rows returned when per_page is absent.
const DefaultPerPage = 20

// MaxPerPage caps per_page so a single request cannot dump a whole table.
const MaxPerPage = 200

// Params carries list parameters parsed from a request query.
type Params struct {
	Page    int    // 1-indexed
	PerPage int    // rows per page, 1..MaxPerPage
	Search  string // free-text query, trimmed
	Sort    string // one of the allowed columns, or ""
	Desc    bool
}

// PageInfo is the pagination metadata returned alongside a page of rows.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Parse extracts page, per_page, q, sort and dir from query values.
// PRE: allowedSort lists the sortable column names
// POST: Returns Params with defaults applied and unknown sort columns dropped
func Parse(q url.Values, allowedSort []string) Params {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(q.Get("per_page"))
	if err != nil || perPage < 1 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)

	sort := q.Get("sort")
	if !slices.Contains(allowedSort, sort) {
		sort = ""
	}
	return Params{
		Page:    page,
		PerPage: perPage,
		Search:  strings.TrimSpace(q.Get("q")),
		Sort:    sort,
		Desc:    q.Get("dir") == "desc",
	}
}

// Offset returns the SQL OFFSET for the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Direction returns "ASC" or "DESC" for an ORDER BY clause.
func (p Params) Direction() string {
	if p.Desc {
		return "DESC"
	}
	return "ASC"
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: TotalPages >= 1 and Page is clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	page = min(max(page, 1), totalPages)
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// HasNext reports whether another page follows this one.
func (p PageInfo) HasNext() bool {
	return p.Page < p.TotalPages
}
