package chromepdf

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one backend is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// Pool manages a set of Backend instances for parallel batch conversion.
// Each backend owns its own browser, enabling true parallelism. Backends
// are created lazily on first acquire to avoid startup delay.
type Pool struct {
	size     int
	opts     []Option
	backends []*Backend
	sem      chan *Backend
	mu       sync.Mutex
	created  int
	closed   bool
}

// NewPool creates a pool with capacity for n Backend instances, each
// configured with opts. Backends are created lazily when acquired.
func NewPool(n int, opts ...Option) *Pool {
	if n < 1 {
		n = 1
	}

	return &Pool{
		size:     n,
		opts:     opts,
		backends: make([]*Backend, 0, n),
		sem:      make(chan *Backend, n),
	}
}

// Acquire gets a backend from the pool, creating one if needed.
// Blocks if all backends are in use.
// Panics if the pool is closed (programmer error: the pool's browsers are
// gone and a nil backend would crash at first use).
func (p *Pool) Acquire() *Backend {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		panic("chromepdf: Acquire on closed Pool")
	}
	p.mu.Unlock()

	// Try to get an existing backend (non-blocking)
	select {
	case b, ok := <-p.sem:
		if !ok {
			panic("chromepdf: Acquire on closed Pool")
		}
		return b
	default:
	}

	// Check if we can create a new backend
	p.mu.Lock()
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create new backend outside the lock
		b := New(p.opts...)

		p.mu.Lock()
		p.backends = append(p.backends, b)
		p.mu.Unlock()

		return b
	}
	p.mu.Unlock()

	// All backends created, wait for one to be released
	b, ok := <-p.sem
	if !ok {
		panic("chromepdf: Pool closed while waiting for a backend")
	}
	return b
}

// Release returns a backend to the pool.
func (p *Pool) Release(b *Backend) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.sem <- b
}

// Close releases all browser resources.
// Returns an aggregated error if multiple backends fail to close.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	backends := p.backends
	p.mu.Unlock()

	var errs []error
	for _, b := range backends {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size to use.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	auto := runtime.GOMAXPROCS(0) / cpuDivisor
	return min(max(auto, MinPoolSize), MaxPoolSize)
}
