package browse

import (
	"errors"

	"github.com/billmal071/cosmere/internal/cosmere"
)

// RelatedState holds the records linked to a loaded entity. It loads after
// the entity and its failure never replaces the entity itself.
type RelatedState[S any] struct {
	Items   []S
	Loading bool
	Err     error

	seq Sequencer
}

// Load starts a fetch, superseding any in flight, and drops what was shown.
func (s *RelatedState[S]) Load() Token {
	s.Items = nil
	s.Err = nil
	s.Loading = true
	return s.seq.Next()
}

// Apply stores the result of the fetch tagged t. A not-found answer means
// the API has nothing linked and is shown as no items.
func (s *RelatedState[S]) Apply(t Token, items []S, err error) bool {
	if !s.seq.Latest(t) {
		return false
	}
	s.Loading = false
	if err != nil && !errors.Is(err, cosmere.ErrNotFound) {
		s.Err = err
		return true
	}
	s.Err = nil
	s.Items = items
	return true
}

// Cancel abandons the fetch in flight and keeps what is shown.
func (s *RelatedState[S]) Cancel() {
	s.seq.Invalidate()
	s.Loading = false
}

// Reset forgets everything and makes any fetch in flight stale.
func (s *RelatedState[S]) Reset() {
	s.seq.Invalidate()
	*s = RelatedState[S]{seq: s.seq}
}
