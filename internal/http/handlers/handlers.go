// Package handlers holds what the per-resource handler packages share.
package handlers

import (
	"errors"

	"github.com/aanand-mishra/college-api/internal/errs"
	"github.com/aanand-mishra/college-api/internal/storage"
)

// StoreError classifies an error returned by storage.Storage. entity is the
// capitalised resource name used in "not found" messages.
//
//	storage.ErrNotFound        -> NotFound
//	*storage.ConstraintError   -> ConstraintViolation (store's message)
//	anything else              -> StoreUnavailable
func StoreError(entity string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return errs.NewNotFound(entity)
	}
	var cerr *storage.ConstraintError
	if errors.As(err, &cerr) {
		return errs.NewConstraintViolation(cerr.Message, err)
	}
	return errs.NewStoreUnavailable(err)
}
