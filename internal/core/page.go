package core

import (
	"strconv"
	"strings"
)

// DefaultPageSize is the number of rows shown per history or stats page.
const DefaultPageSize = 5

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Items    []T
	Number   int // 1-based
	NumPages int
	Total    int
	PageSize int
}

func (p Page[T]) HasNext() bool     { return p.Number < p.NumPages }
func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

// PageRequest is a resolved page number with its row window.
type PageRequest struct {
	Number   int
	NumPages int
	Size     int
	Offset   int
}

// ResolvePage maps a raw page parameter onto an existing page. Non-numeric or
// missing values select the first page, values past the end select the last
// one. An empty result set still has one (empty) page.
func ResolvePage(raw string, total, size int) PageRequest {
	if size <= 0 {
		size = DefaultPageSize
	}
	numPages := (total + size - 1) / size
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil || number < 1:
		number = 1
	case number > numPages:
		number = numPages
	}

	return PageRequest{
		Number:   number,
		NumPages: numPages,
		Size:     size,
		Offset:   (number - 1) * size,
	}
}

// NewPage wraps items fetched for req.
func NewPage[T any](items []T, req PageRequest, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Number:   req.Number,
		NumPages: req.NumPages,
		Total:    total,
		PageSize: req.Size,
	}
}
