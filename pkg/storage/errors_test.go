package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestClassify_UniqueViolationIsConstraint(t *testing.T) {
	err := Classify(errors.New("UNIQUE constraint failed: platforms.name"))

	require.ErrorIs(t, err, types.ErrStorageConstraint)
	require.True(t, types.IsDuplicate(err))

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	require.Equal(t, goerrors.CategoryConflict, rich.Category)
	require.Equal(t, goerrors.CodeConflict, rich.Code)
}

func TestClassify_ForeignKeyViolationIsConstraint(t *testing.T) {
	err := Classify(errors.New("FOREIGN KEY constraint failed"))

	require.ErrorIs(t, err, types.ErrStorageConstraint)
}

func TestClassify_OtherErrorsAreUnavailable(t *testing.T) {
	cause := errors.New("database is locked")
	err := Classify(cause)

	require.ErrorIs(t, err, types.ErrStorageUnavailable)
	require.ErrorIs(t, err, cause)

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	require.Equal(t, types.TextCodeStorageUnavailable, rich.TextCode)
}

func TestClassify_PassesThroughClassifiedAndContextErrors(t *testing.T) {
	classified := types.DuplicatePlatformName("steam", nil)
	require.Same(t, classified, Classify(classified))

	wrapped := fmt.Errorf("query: %w", context.Canceled)
	require.Equal(t, wrapped, Classify(wrapped))
	require.NoError(t, Classify(nil))
}
