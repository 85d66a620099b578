// Package storage maps driver and repository errors onto the gamerdb error
// taxonomy so every package reports storage failures the same way.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-gamerdb/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
)

// Classify converts a storage error into a taxonomy error. Constraint
// violations become types.ErrStorageConstraint, record-not-found becomes
// types.ErrPlatformNotFound, context cancellation is returned untouched, and
// everything else is types.ErrStorageUnavailable. Errors that already carry a
// taxonomy sentinel pass through.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case alreadyClassified(err):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case IsUniqueViolation(err), IsForeignKeyViolation(err):
		return types.StorageConstraint(err)
	case repository.IsRecordNotFound(err):
		return types.PlatformNotFound(nil)
	default:
		return types.StorageUnavailable(err)
	}
}

// IsUniqueViolation reports whether err was raised by a UNIQUE or PRIMARY KEY
// constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if repository.IsDuplicatedKey(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "primary key constraint")
}

// IsForeignKeyViolation reports whether err was raised by a FOREIGN KEY
// constraint.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint") ||
		strings.Contains(msg, "violates foreign key")
}

func alreadyClassified(err error) bool {
	return types.IsNotFound(err) || types.IsDuplicate(err) || types.IsStorageUnavailable(err)
}
