package ruwps

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var ambient atomic.Pointer[zap.Logger]

func defaultLogger() *zap.Logger {
	if l := ambient.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// DebugMode switches the logger used by applications created without
// WithLogger. When on, a development logger writes to stderr; when off,
// nothing is logged.
func DebugMode(on bool) {
	if !on {
		ambient.Store(nil)
		return
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return
	}
	ambient.Store(l)
}
