package helpers

import (
	"fmt"
	"net/http"
	"strconv"

	"eventhub/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size from the request query string.
// Missing parameters fall back to defaults; explicitly supplied values that
// are not positive integers (or exceed MaxPageSize) are a caller contract
// violation and return an error rather than being clamped.
func ParsePagination(r *http.Request) (domain.PaginationParams, error) {
	page := DefaultPage
	if s := r.URL.Query().Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return domain.PaginationParams{}, fmt.Errorf("page must be a positive integer")
		}
		page = v
	}
	pageSize := DefaultPageSize
	if s := r.URL.Query().Get("page_size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > MaxPageSize {
			return domain.PaginationParams{}, fmt.Errorf("page_size must be between 1 and %d", MaxPageSize)
		}
		pageSize = v
	}
	return domain.PaginationParams{Page: page, PageSize: pageSize}, nil
}
