package service

import (
	"errors"

	"alphaboard/internal/models"

	"gorm.io/gorm"
)

// orNotFound converts the store's record-not-found into the domain NOT_FOUND
// error; anything else passes through untouched.
func orNotFound(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}
