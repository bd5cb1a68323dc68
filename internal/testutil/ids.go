// Package testutil provides deterministic ID and time sources for tests
// and the scenario harness.
package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator yields "id-001", "id-002", ... in order.
//
// Unlike model.FixedIDGenerator it never exhausts, which suits scenario
// runs where the number of IDs consumed depends on the flow. The same
// scenario always consumes IDs in the same order, so traces stay
// byte-identical across runs.
//
// Thread-safety: all methods are safe for concurrent use.
type SequentialIDGenerator struct {
	mu sync.Mutex
	n  int
}

// NewSequentialIDGenerator creates a generator starting at id-001.
func NewSequentialIDGenerator() *SequentialIDGenerator {
	return &SequentialIDGenerator{}
}

// NewID returns the next sequential ID.
//
// Implements model.IDGenerator.
func (g *SequentialIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%03d", g.n)
}
