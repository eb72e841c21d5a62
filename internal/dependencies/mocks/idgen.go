package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/snakeladder/internal/dependencies/idgen"
)

// SequenceIDs issues predictable ids: queued values first, then prefix-1, prefix-2, ...
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
	queued []string
}

// Ensure SequenceIDs implements Generator
var _ idgen.Generator = (*SequenceIDs)(nil)

// NewSequenceIDs creates a SequenceIDs with the given prefix
func NewSequenceIDs(prefix string) *SequenceIDs {
	return &SequenceIDs{prefix: prefix}
}

// NewID returns the next id
func (g *SequenceIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queued) > 0 {
		id := g.queued[0]
		g.queued = g.queued[1:]
		return id
	}
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}

// Queue adds explicit ids to be returned before the sequence resumes
func (g *SequenceIDs) Queue(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queued = append(g.queued, ids...)
}
