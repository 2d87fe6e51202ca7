// Package browse holds the view state of the browser: entity lists, entity
// details and the search bar. It has no terminal or network code; callers
// issue the requests a state hands out and feed the results back.
//
// Every state slot that can have overlapping requests tags them with a
// Token. Only the latest token's result is applied, so a slow response can
// never overwrite a newer one.
package browse

// Token identifies one request issued for a state slot.
type Token uint64

// Sequencer hands out increasing tokens for one state slot.
type Sequencer struct {
	last Token
}

// Next issues a new token, superseding every earlier one.
func (s *Sequencer) Next() Token {
	s.last++
	return s.last
}

// Latest reports whether t is the most recently issued token.
func (s *Sequencer) Latest(t Token) bool {
	return t != 0 && t == s.last
}

// Invalidate makes every outstanding token stale.
func (s *Sequencer) Invalidate() {
	s.last++
}
