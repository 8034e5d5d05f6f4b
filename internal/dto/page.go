package dto

import "github.com/yukikurage/corepm/internal/utils"

// Page is the envelope of every list response
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Skip  int   `json:"skip"`
	Limit int   `json:"limit"`
}

// NewPage wraps items; a nil slice is rendered as an empty list
func NewPage[T any](items []T, total int64, params utils.PaginationParams) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items: items,
		Total: total,
		Skip:  params.Skip,
		Limit: params.Limit,
	}
}
