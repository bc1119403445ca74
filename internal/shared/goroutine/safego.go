// Package goroutine launches background work that must not take the process down.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// SafeGo runs fn in a goroutine and logs a panic with its stack instead of crashing.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer Recover(log, name)
		fn()
	}()
}

// Recover is meant to be deferred at the top of a scheduled job.
func Recover(log logger.Interface, name string) {
	if r := recover(); r != nil {
		log.Errorw("background task panicked",
			"task", name,
			"panic", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)
	}
}
