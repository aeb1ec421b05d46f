package testutil

import (
	"sync"

	"github.com/roach88/tandem/internal/model"
)

// Sequence issues message ids 1, 2, 3, ... for tests.
//
// The same scenario run against a fresh Sequence produces identical ids,
// which keeps golden transcripts stable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Sequence struct {
	mu   sync.Mutex
	last model.MessageID
}

// NewSequence creates a sequence whose first id is 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next message id.
func (s *Sequence) Next() model.MessageID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

// Current returns the last issued id, or 0 if none has been issued.
func (s *Sequence) Current() model.MessageID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Reset restarts the sequence. The next call to Next returns 1.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = 0
}
