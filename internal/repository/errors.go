// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"alphaboard/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// wrapStoreErr maps driver-level failures onto the storage-unavailable error
// kind. Record-not-found passes through untouched so services can map it to
// NOT_FOUND, and domain errors already shaped as AppError are never re-wrapped.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NewStorageUnavailableError(err)
	}
	return models.NewStorageUnavailableError(err)
}

// isUniqueViolation reports whether err is a unique-index conflict. Postgres
// surfaces these as SQLSTATE 23505; the sqlite driver used in tests only
// exposes them through the error text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
