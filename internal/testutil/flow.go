package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDGenerator generates request ids "<prefix>-1", "<prefix>-2", ...
//
// This enables deterministic transport tests and golden output comparison.
//
// Thread-safety: SequenceIDGenerator is safe for concurrent use via internal mutex.
type SequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDGenerator creates a generator. An empty prefix means "req".
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	if prefix == "" {
		prefix = "req"
	}
	return &SequenceIDGenerator{prefix: prefix}
}

// Generate returns the next id in sequence.
func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
