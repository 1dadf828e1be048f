//go:build !windows

package ruwps

import (
	"go.uber.org/zap"

	"github.com/username/ruwps/internal/native"
)

var newBackend = func(*zap.Logger) (native.Backend, error) {
	return nil, native.ErrUnsupported
}
