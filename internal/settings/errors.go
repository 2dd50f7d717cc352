package settings

import "errors"

var (
	ErrStoreRequired = errors.New("settings: store is required")
	ErrCacheRequired = errors.New("settings: cache is required")
	ErrInvalidRating = errors.New("settings: minimum rating must be between 1 and 5")
)

// PermissionError reports that the caller lacks the capability for the
// requested mutation.
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return "settings: permission denied: " + e.Action
}

// IsPermissionError reports whether err is a permission refusal.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
