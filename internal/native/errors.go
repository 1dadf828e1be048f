package native

import (
	"errors"
	"fmt"
)

// ErrResource is matched by every failure to obtain a required OS resource.
var ErrResource = errors.New("native resource unavailable")

// ErrUnsupported is returned where no backend exists for the host platform.
var ErrUnsupported = errors.New("native backend is only supported on Windows")

// ResourceError reports which native call failed.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrResource}
	}
	return []error{ErrResource, e.Err}
}

// Fail builds a ResourceError for op.
func Fail(op string, err error) error {
	return &ResourceError{Op: op, Err: err}
}
