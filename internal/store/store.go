// Package store holds the typed queries behind every page. Methods take a
// context, run against gorm and return *apperror.AppError values.
package store

import (
	"context"
	"errors"

	"recipebox/internal/apperror"
	"recipebox/internal/db"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

type Store struct {
	db *gorm.DB
}

func New(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// Ping checks the database is reachable, for the health check.
func (s *Store) Ping(ctx context.Context) error {
	return db.Ping(ctx, s.db)
}

// dbError maps gorm errors onto the application taxonomy. AppErrors pass
// through unchanged so transactions can return them directly.
func dbError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if notFound == "" {
			notFound = "Not found"
		}
		return apperror.NewNotFoundError(notFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.NewConflictError("Resource already exists", err)
	default:
		return apperror.NewInternalError("Database error", err)
	}
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// NewPagination clamps page and size to sane values.
func NewPagination(page, size int) Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Pagination{Page: page, PageSize: size}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p Pagination) TotalPages() int {
	if p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages() }
func (p Pagination) PrevPage() int { return p.Page - 1 }
func (p Pagination) NextPage() int { return p.Page + 1 }
