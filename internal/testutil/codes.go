package testutil

import (
	"fmt"
	"sync"
)

// SequenceCodeGenerator generates case codes PREFIX-0001, PREFIX-0002, ...
//
// It stands in for the UUID-based generator so fixtures that omit case codes
// load to the same codes on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceCodeGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewSequenceCodeGenerator creates a generator. An empty prefix means "TEST".
func NewSequenceCodeGenerator(prefix string) *SequenceCodeGenerator {
	if prefix == "" {
		prefix = "TEST"
	}
	return &SequenceCodeGenerator{prefix: prefix}
}

// Generate returns the next code.
func (g *SequenceCodeGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%04d", g.prefix, g.seq)
}

// Reset restarts the sequence so a scenario can be replayed.
func (g *SequenceCodeGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
