package ruwps

import (
	"errors"

	"github.com/username/ruwps/internal/menu"
	"github.com/username/ruwps/internal/native"
	"github.com/username/ruwps/internal/winrt"
)

var (
	// ErrNoActiveApplication is returned by operations that need a running
	// application when none was created.
	ErrNoActiveApplication = errors.New("no active application")

	// ErrTimerRunning and ErrTimerNotRunning report timer misuse.
	ErrTimerRunning    = winrt.ErrTimerRunning
	ErrTimerNotRunning = winrt.ErrTimerNotRunning

	// ErrResource matches every failure to obtain a native resource.
	ErrResource = native.ErrResource
	// ErrUnsupported is returned on platforms without a native backend.
	ErrUnsupported = native.ErrUnsupported
)

type (
	// ParseError reports one menu section that could not be interpreted.
	ParseError = menu.ParseError
	// ParseErrors collects the skipped menu sections.
	ParseErrors = menu.ParseErrors
)
