package screener

import "github.com/wonny/asx-screener/internal/contracts"

// PageSizes is the enumerated set of page sizes
var PageSizes = []int{25, 50, 100}

// DefaultPageSize is used until the user picks another size
const DefaultPageSize = 50

// ValidPageSize reports whether n is one of PageSizes
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// Page is the metadata of one derived page. Records [Start, End) of the
// ordered sequence are visible.
type Page struct {
	Index int `json:"index"` // clamped, zero-based
	Size  int `json:"size"`
	Count int `json:"count"` // at least 1
	Total int `json:"total"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// HasPrev reports whether a previous page exists
func (p Page) HasPrev() bool { return p.Index > 0 }

// HasNext reports whether a next page exists
func (p Page) HasNext() bool { return p.Index < p.Count-1 }

// Paginate derives page metadata for total items. An invalid size falls
// back to DefaultPageSize; the index is clamped to [0, Count-1].
func Paginate(total, size, index int) Page {
	if !ValidPageSize(size) {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}

	count := (total + size - 1) / size
	if count < 1 {
		count = 1
	}
	if index > count-1 {
		index = count - 1
	}
	if index < 0 {
		index = 0
	}

	start := index * size
	end := start + size
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}

	return Page{Index: index, Size: size, Count: count, Total: total, Start: start, End: end}
}

// PageOf returns the visible slice of records together with its metadata
func PageOf(records []*contracts.Record, size, index int) ([]*contracts.Record, Page) {
	p := Paginate(len(records), size, index)
	return records[p.Start:p.End], p
}
