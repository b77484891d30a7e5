package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Sequencer hands out one exclusive section per board. Persist-then-publish
// pairs for the same board run inside it so broadcasts leave in commit order.
// Entries are dropped once nobody holds or waits for them.
type Sequencer struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*seqLock
}

type seqLock struct {
	mu   sync.Mutex
	refs int
}

func NewSequencer() *Sequencer {
	return &Sequencer{locks: make(map[uuid.UUID]*seqLock)}
}

// Lock blocks until the section for boardID is free and returns its release.
func (s *Sequencer) Lock(boardID uuid.UUID) func() {
	s.mu.Lock()
	l, ok := s.locks[boardID]
	if !ok {
		l = &seqLock{}
		s.locks[boardID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, boardID)
		}
		s.mu.Unlock()
	}
}

// Do runs fn inside the section for boardID.
func (s *Sequencer) Do(boardID uuid.UUID, fn func() error) error {
	unlock := s.Lock(boardID)
	defer unlock()
	return fn()
}

// Len returns the number of boards with a held or awaited section.
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
