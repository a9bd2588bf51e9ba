package pipeline

import (
	"sync"

	"github.com/google/uuid"

	"github.com/panon-btc/txlineage/pkg/layout"
)

// Request identifies one layout request within a logical search. Seq is
// monotonic per Sequencer; Token distinguishes requests across restarts
// or processes where sequence numbers alone could collide.
type Request struct {
	Seq   uint64
	Token uuid.UUID
}

// Sequencer keeps layout results ordered per logical search. Results are
// applied last-writer-wins by request id, not by completion time: a
// layout that finishes after a newer request has been issued is silently
// discarded. A layout call that starts is always allowed to finish; only
// its application is skipped.
type Sequencer struct {
	mu      sync.Mutex
	latest  uint64
	applied uint64
	current *layout.Layout
}

// NewSequencer creates an empty sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Issue hands out the next request. Issuing marks every outstanding
// earlier request stale.
func (s *Sequencer) Issue() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	return Request{Seq: s.latest, Token: uuid.New()}
}

// Apply installs the result for req unless a newer request has been
// issued since. Returns whether the result was applied. Discarding is
// not an error condition.
func (s *Sequencer) Apply(req Request, lay *layout.Layout) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Seq < s.latest || req.Seq < s.applied {
		return false
	}
	s.applied = req.Seq
	s.current = lay
	return true
}

// Current returns the most recently applied layout and its sequence
// number. The layout is nil until the first Apply succeeds.
func (s *Sequencer) Current() (*layout.Layout, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.applied
}
