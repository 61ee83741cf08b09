package container

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// lazyCell builds a singleton instance at most once. A failed build leaves
// the cell empty so the next Create retries.
type lazyCell struct {
	mu    sync.Mutex
	built atomic.Bool
	value any
}

func (l *lazyCell) get(build func() (any, error)) (any, error) {
	if l.built.Load() {
		return l.value, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check pattern
	if l.built.Load() {
		return l.value, nil
	}

	v, err := build()
	if err != nil {
		return nil, err
	}
	l.value = v
	l.built.Store(true)
	return v, nil
}

// ── Resolution trail ──────────────────────────────────────────────────────────

// resolution is shared by every step of one top-level Create call. It is
// closed when that call returns, after which containers captured during the
// build behave like the root container again.
type resolution struct {
	closed atomic.Bool
}

// trail is the chain of names being built on the current path, innermost
// first. Nodes are immutable so sibling branches can share parents.
type trail struct {
	name   string
	parent *trail
	res    *resolution
}

func (t *trail) active() bool {
	return t != nil && !t.res.closed.Load()
}

func (t *trail) contains(name string) bool {
	for n := t; n != nil; n = n.parent {
		if n.name == name {
			return true
		}
	}
	return false
}

// circularError renders the path from the outermost name down to the repeat.
func (t *trail) circularError(name string) error {
	var chain []string
	for n := t; n != nil; n = n.parent {
		chain = append(chain, n.name)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	chain = append(chain, name)
	return fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(chain, " -> "))
}
