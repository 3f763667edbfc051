// File: /utils/pagination.go
package utils

import (
	"strconv"

	"motoroutes-api/errs"
)

// PageRequest is the raw page query value plus the configured page size.
type PageRequest struct {
	Raw  string
	Size int
}

// Page is a resolved page within a result set of Total rows.
type Page struct {
	Number int
	Size   int
	Total  int64
}

// Resolve validates the requested page against total. Page 1 is always valid,
// "last" selects the final page, anything else out of range is an invalid page.
func (r PageRequest) Resolve(total int64) (Page, error) {
	size := r.Size
	if size <= 0 {
		size = 20
	}
	page := Page{Number: 1, Size: size, Total: total}
	last := page.NumPages()

	switch r.Raw {
	case "":
		return page, nil
	case "last":
		page.Number = last
		return page, nil
	}

	number, err := strconv.Atoi(r.Raw)
	if err != nil || number < 1 || number > last {
		return Page{}, errs.InvalidPage()
	}
	page.Number = number
	return page, nil
}

// NumPages is at least 1 so an empty result still has a first page.
func (p Page) NumPages() int {
	if p.Total == 0 || p.Size <= 0 {
		return 1
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages()
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}
