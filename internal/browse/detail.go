package browse

import (
	"errors"

	"github.com/billmal071/cosmere/internal/cosmere"
)

// Phase is the exclusive render state of a detail view.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseError
	PhaseNotFound
	PhaseLoaded
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseNotFound:
		return "not_found"
	case PhaseLoaded:
		return "loaded"
	default:
		return "idle"
	}
}

// DeleteRequest is a confirmed delete handed to the caller to perform.
type DeleteRequest struct {
	Token Token
	ID    string
}

// DetailState is the state of a single-entity view.
type DetailState[T any] struct {
	ID     string
	Entity *T
	Phase  Phase
	Err    error

	Confirming bool
	Deleting   bool
	DeleteErr  error
	Deleted    bool

	seq    Sequencer
	delSeq Sequencer
}

// Load requests the entity id, superseding any load still in flight.
func (s *DetailState[T]) Load(id string) Token {
	s.ID = id
	s.Entity = nil
	s.Phase = PhaseLoading
	s.Err = nil
	s.Confirming = false
	s.Deleting = false
	s.DeleteErr = nil
	s.Deleted = false
	s.delSeq.Invalidate()
	return s.seq.Next()
}

// Retry reloads the current id.
func (s *DetailState[T]) Retry() Token { return s.Load(s.ID) }

// Apply stores the result of the load tagged t. A not-found error, or a
// successful response with no entity, is the not-found state rather than
// an error.
func (s *DetailState[T]) Apply(t Token, entity *T, err error) bool {
	if !s.seq.Latest(t) {
		return false
	}
	switch {
	case err != nil && errors.Is(err, cosmere.ErrNotFound):
		s.Phase = PhaseNotFound
		s.Err = nil
	case err != nil:
		s.Phase = PhaseError
		s.Err = err
	case entity == nil:
		s.Phase = PhaseNotFound
	default:
		s.Phase = PhaseLoaded
		s.Entity = entity
	}
	return true
}

// Cancel abandons the load and any delete in flight, for when the view goes
// away.
func (s *DetailState[T]) Cancel() {
	s.seq.Invalidate()
	s.delSeq.Invalidate()
}

// RequestDelete opens the confirmation step.
func (s *DetailState[T]) RequestDelete() bool {
	if s.Phase != PhaseLoaded || s.Deleting || s.Deleted {
		return false
	}
	s.Confirming = true
	s.DeleteErr = nil
	return true
}

// CancelDelete closes the confirmation without deleting.
func (s *DetailState[T]) CancelDelete() {
	s.Confirming = false
}

// ConfirmDelete closes the confirmation and hands out the delete to perform.
func (s *DetailState[T]) ConfirmDelete() (DeleteRequest, bool) {
	if !s.Confirming {
		return DeleteRequest{}, false
	}
	s.Confirming = false
	s.Deleting = true
	return DeleteRequest{Token: s.delSeq.Next(), ID: s.ID}, true
}

// ApplyDelete stores the delete outcome. On failure the entity stays on
// screen with an inline error.
func (s *DetailState[T]) ApplyDelete(t Token, err error) bool {
	if !s.delSeq.Latest(t) {
		return false
	}
	s.Deleting = false
	if err != nil {
		s.DeleteErr = err
		return true
	}
	s.Deleted = true
	return true
}
