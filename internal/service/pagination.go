package service

import (
	"context"
	"math"

	"shareit/internal/errs"
	"shareit/internal/models"
)

// Pagination maps an element offset and an optional limit onto fixed-size
// pages of a sorted query. Skip is the number of rows to drop from the first
// fetched page so the window starts exactly at the requested offset.
// TotalPages is zero when the walk is unbounded.
type Pagination struct {
	PageSize   int
	Index      int
	Skip       int
	TotalPages int
}

func NewPagination(from int, size *int) (Pagination, error) {
	if from < 0 {
		return Pagination{}, errs.Validation("from cannot be less than zero")
	}
	if size != nil && *size < 0 {
		return Pagination{}, errs.Validation("size cannot be less than zero")
	}
	if size != nil && *size == 0 {
		return Pagination{}, errs.Validation("size must be greater than zero")
	}

	if size == nil {
		return Pagination{
			PageSize: models.DefaultFetchSize,
			Index:    from / models.DefaultFetchSize,
			Skip:     from % models.DefaultFetchSize,
		}, nil
	}

	pageSize := min(*size, models.MaxFetchSize)
	p := Pagination{
		PageSize: pageSize,
		Index:    from / pageSize,
		Skip:     from % pageSize,
	}
	// pages covering skip+size rows, split so nothing overflows
	rest := p.Skip + *size%pageSize
	pages := *size/pageSize + (rest+pageSize-1)/pageSize
	p.TotalPages = saturatingAdd(p.Index, pages)
	return p, nil
}

func saturatingAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// PageFetcher loads one page of a sorted result set and reports whether more follow.
type PageFetcher[T any] func(ctx context.Context, page models.Page) ([]T, bool, error)

// Collect walks the pages described by p. Without a size it reads until the
// source is exhausted; with one it reads at most TotalPages and truncates to size.
func Collect[T any](ctx context.Context, p Pagination, size *int, fetch PageFetcher[T]) ([]T, error) {
	result := make([]T, 0)
	lastIndex := math.MaxInt / p.PageSize

	for index := p.Index; size == nil || index < p.TotalPages; index++ {
		rows, hasNext, err := fetch(ctx, models.Page{Index: index, Size: p.PageSize})
		if err != nil {
			return nil, err
		}
		if index == p.Index {
			rows = rows[min(p.Skip, len(rows)):]
		}
		result = append(result, rows...)

		if !hasNext || index == lastIndex || (size != nil && len(result) >= *size) {
			break
		}
	}

	if size != nil && len(result) > *size {
		result = result[:*size]
	}
	return result, nil
}

// Paginate validates from/size and collects the window in one step.
func Paginate[T any](ctx context.Context, from int, size *int, fetch PageFetcher[T]) ([]T, error) {
	p, err := NewPagination(from, size)
	if err != nil {
		return nil, err
	}
	return Collect(ctx, p, size, fetch)
}
