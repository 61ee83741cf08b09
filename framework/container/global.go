package container

import "sync/atomic"

// instance is the process-wide container slot. It is the only global the
// package keeps; prefer passing *Container explicitly.
var instance atomic.Pointer[Container]

// SetInstance stores c as the shared container. The host application sets
// it once during bootstrap; a later call replaces it.
func SetInstance(c *Container) {
	instance.Store(c)
}

// GetInstance returns the shared container, or ErrNotInitialized if
// SetInstance was never called.
func GetInstance() (*Container, error) {
	c := instance.Load()
	if c == nil {
		return nil, ErrNotInitialized
	}
	return c, nil
}
