package rank

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform matches every UnsupportedPlatformError via errors.Is
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// UnsupportedPlatformError is returned by Process when no driver is registered for the task's platform
type UnsupportedPlatformError struct {
	Platform  string
	Supported []string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q (supported: %v)", e.Platform, e.Supported)
}

func (e *UnsupportedPlatformError) Is(target error) bool {
	return target == ErrUnsupportedPlatform
}
