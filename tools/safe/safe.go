package safe

import (
	"DMRelay/logger"
)

// Go starts a goroutine that recovers from panic, so a misbehaving
// per-connection pump cannot take down the whole relay.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("panic recovered: %v", r)
			}
		}()
		f()
	}()
}
