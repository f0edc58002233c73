package models

import (
	"time"
)

// ResultMeta carries execution metadata alongside a result
type ResultMeta struct {
	ExecutionTime time.Duration `json:"execution_time"`
	TotalCount    *int          `json:"total_count,omitempty"`
	NextToken     *string       `json:"next_token,omitempty"`
	Warnings      []string      `json:"warnings,omitempty"`
	// Approximate marks counts derived from a capped list fallback rather
	// than a dedicated count operation
	Approximate bool `json:"approximate,omitempty"`
}

// Result is the uniform envelope returned by every operation above the
// classification boundary. Exactly one of Data/Err is meaningful depending
// on Success.
type Result[T any] struct {
	Success bool             `json:"success"`
	Data    T                `json:"data,omitempty"`
	Err     *RepositoryError `json:"error,omitempty"`
	Meta    *ResultMeta      `json:"meta,omitempty"`
}

// OK creates a successful result
func OK[T any](data T) Result[T] {
	return Result[T]{
		Success: true,
		Data:    data,
	}
}

// OKWithMeta creates a successful result with execution metadata
func OKWithMeta[T any](data T, meta *ResultMeta) Result[T] {
	return Result[T]{
		Success: true,
		Data:    data,
		Meta:    meta,
	}
}

// Fail creates a failed result
func Fail[T any](err *RepositoryError) Result[T] {
	return Result[T]{
		Success: false,
		Err:     err,
	}
}

// FailWithMeta creates a failed result with execution metadata
func FailWithMeta[T any](err *RepositoryError, meta *ResultMeta) Result[T] {
	return Result[T]{
		Success: false,
		Err:     err,
		Meta:    meta,
	}
}

// AddWarning appends a warning to the result metadata, allocating it if needed
func (r *Result[T]) AddWarning(warning string) {
	if r.Meta == nil {
		r.Meta = &ResultMeta{}
	}
	r.Meta.Warnings = append(r.Meta.Warnings, warning)
}

// Warnings returns the warnings recorded on the result, if any
func (r *Result[T]) Warnings() []string {
	if r.Meta == nil {
		return nil
	}
	return r.Meta.Warnings
}
