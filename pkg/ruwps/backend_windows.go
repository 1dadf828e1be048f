//go:build windows

package ruwps

import (
	"go.uber.org/zap"

	"github.com/username/ruwps/internal/native"
	"github.com/username/ruwps/internal/native/win32"
)

var newBackend = func(logger *zap.Logger) (native.Backend, error) {
	b, err := win32.New(logger)
	if err != nil {
		return nil, err
	}
	return b, nil
}
