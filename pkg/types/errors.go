package types

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrPlatformNotFound indicates a platform name or id is not in the catalog.
	ErrPlatformNotFound = errors.New("gamerdb: platform not found")
	// ErrDuplicatePlatformName indicates the platform name is already registered.
	ErrDuplicatePlatformName = errors.New("gamerdb: platform name already registered")
	// ErrDuplicatePlatformIcon indicates the platform icon is already registered.
	ErrDuplicatePlatformIcon = errors.New("gamerdb: platform icon already registered")
	// ErrStorageConstraint indicates the store rejected a write on a constraint.
	ErrStorageConstraint = errors.New("gamerdb: storage constraint violated")
	// ErrStorageUnavailable indicates the store could not serve the request.
	ErrStorageUnavailable = errors.New("gamerdb: storage unavailable")
	// ErrPlatformNameRequired indicates a platform name was empty.
	ErrPlatformNameRequired = errors.New("gamerdb: platform name required")
	// ErrIconRefRequired indicates a platform icon reference was missing.
	ErrIconRefRequired = errors.New("gamerdb: platform icon required")
	// ErrPlatformIDRequired indicates a platform id was missing.
	ErrPlatformIDRequired = errors.New("gamerdb: platform id required")
	// ErrMemberIDRequired indicates a member identifier was omitted.
	ErrMemberIDRequired = errors.New("gamerdb: member id required")
	// ErrGuildIDRequired indicates a guild identifier was omitted.
	ErrGuildIDRequired = errors.New("gamerdb: guild id required")
	// ErrPrefixRequired indicates an empty command prefix.
	ErrPrefixRequired = errors.New("gamerdb: prefix required")
	// ErrGamertagRequired indicates an empty gamertag.
	ErrGamertagRequired = errors.New("gamerdb: gamertag required")
	// ErrInvalidPagination indicates negative pagination values.
	ErrInvalidPagination = errors.New("gamerdb: invalid pagination")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("gamerdb: service not ready")
	// ErrMissingPlatformCatalog occurs when no platform catalog was supplied.
	ErrMissingPlatformCatalog = errors.New("gamerdb: missing platform catalog")
	// ErrMissingProfileRepository occurs when profile commands lack storage.
	ErrMissingProfileRepository = errors.New("gamerdb: missing profile repository")
	// ErrMissingGuildSettings occurs when prefix operations lack storage.
	ErrMissingGuildSettings = errors.New("gamerdb: missing guild settings")
	// ErrMissingActivitySink occurs when no activity sink was supplied.
	ErrMissingActivitySink = errors.New("gamerdb: missing activity sink")
	// ErrMissingActivityRepository occurs when no activity repository was supplied.
	ErrMissingActivityRepository = errors.New("gamerdb: missing activity repository")
)

// Text codes attached to classified errors.
const (
	TextCodePlatformNotFound   = "PLATFORM_NOT_FOUND"
	TextCodeDuplicateName      = "DUPLICATE_NAME"
	TextCodeDuplicateIcon      = "DUPLICATE_ICON"
	TextCodeStorageConstraint  = "STORAGE_CONSTRAINT"
	TextCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
)

// PlatformNotFound returns a classified not found error for the platform reference.
func PlatformNotFound(ref any) error {
	return classify(ErrPlatformNotFound, nil, goerrors.CategoryNotFound, goerrors.CodeNotFound, TextCodePlatformNotFound).
		WithMetadata(map[string]any{"platform": ref})
}

// DuplicatePlatformName returns a classified conflict for a taken name.
func DuplicatePlatformName(name string, cause error) error {
	return classify(ErrDuplicatePlatformName, cause, goerrors.CategoryConflict, goerrors.CodeConflict, TextCodeDuplicateName).
		WithMetadata(map[string]any{"name": name})
}

// DuplicatePlatformIcon returns a classified conflict for a taken icon.
func DuplicatePlatformIcon(icon int64, cause error) error {
	return classify(ErrDuplicatePlatformIcon, cause, goerrors.CategoryConflict, goerrors.CodeConflict, TextCodeDuplicateIcon).
		WithMetadata(map[string]any{"icon_ref": icon})
}

// StorageConstraint wraps a constraint violation raised by the store.
func StorageConstraint(cause error) error {
	return classify(ErrStorageConstraint, cause, goerrors.CategoryConflict, goerrors.CodeConflict, TextCodeStorageConstraint)
}

// StorageUnavailable wraps any other store failure.
func StorageUnavailable(cause error) error {
	return classify(ErrStorageUnavailable, cause, goerrors.CategoryExternal, goerrors.CodeInternal, TextCodeStorageUnavailable)
}

// IsNotFound reports whether err is a NotFound class error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlatformNotFound)
}

// IsDuplicate reports whether err is a DuplicateConstraint class error.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicatePlatformName) ||
		errors.Is(err, ErrDuplicatePlatformIcon) ||
		errors.Is(err, ErrStorageConstraint)
}

// IsStorageUnavailable reports whether err is a StorageUnavailable class error.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// classify builds a go-errors value whose Source keeps both the sentinel and
// the driver cause reachable through errors.Is. goerrors.Wrap would clone a
// *goerrors.Error found in the cause and drop the sentinel.
func classify(sentinel, cause error, category goerrors.Category, code int, textCode string) *goerrors.Error {
	source := sentinel
	if cause != nil {
		source = fmt.Errorf("%w: %w", sentinel, cause)
	}
	err := goerrors.New(sentinel.Error(), category).
		WithCode(code).
		WithTextCode(textCode)
	err.Source = source
	return err
}
