package dto

import (
	"net/url"
	"strconv"

	"github.com/fekuna/omnipos-storefront/internal/model"
)

type ProductFilters struct {
	Page      int
	Limit     int
	Category  string
	Brand     string
	MinPrice  *float64
	MaxPrice  *float64
	InStock   *bool
	Featured  *bool
	SortBy    string // price, name, createdAt, sales
	SortOrder string // asc, desc
	Search    string
}

// Values encodes the non-zero filters as query parameters.
func (f ProductFilters) Values() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	setString(q, "category", f.Category)
	setString(q, "brand", f.Brand)
	if f.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.InStock != nil {
		q.Set("inStock", strconv.FormatBool(*f.InStock))
	}
	if f.Featured != nil {
		q.Set("featured", strconv.FormatBool(*f.Featured))
	}
	setString(q, "sortBy", f.SortBy)
	setString(q, "sortOrder", f.SortOrder)
	setString(q, "search", f.Search)
	return q
}

func setString(q url.Values, key, val string) {
	if val != "" {
		q.Set(key, val)
	}
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

type ProductPage struct {
	Products   []model.Product
	Pagination Pagination
}
