// Package repository contains data access abstractions.
// Implementations live in subpackages (memory, postgres, redis) inside this directory.
package repository

import "errors"

var (
	// ErrNotFound is returned when the addressed row or key does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// Paginate slices items according to pq.
func Paginate[T any](items []T, pq PageQuery) *PageResult[T] {
	total := len(items)
	start := min(max(pq.Offset, 0), total)
	end := total
	if pq.Limit > 0 {
		end = min(start+pq.Limit, total)
	}
	page := make([]T, end-start)
	copy(page, items[start:end])
	return &PageResult[T]{Items: page, Total: total}
}
