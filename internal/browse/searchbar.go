package browse

import (
	"unicode/utf8"

	"github.com/billmal071/cosmere/internal/cosmere"
)

// DefaultMinChars is the shortest query that fetches suggestions.
const DefaultMinChars = 2

// SearchPhase is the search bar's state.
type SearchPhase int

const (
	SearchIdle SearchPhase = iota
	SearchTyping
	SearchSuggesting
)

func (p SearchPhase) String() string {
	switch p {
	case SearchTyping:
		return "typing"
	case SearchSuggesting:
		return "suggesting"
	default:
		return "idle"
	}
}

// EffectKind tells the caller what an input requires.
type EffectKind int

const (
	// EffectNone - nothing to do
	EffectNone EffectKind = iota
	// EffectFetch - schedule a debounced suggestion fetch for Query
	EffectFetch
	// EffectClear - cancel any scheduled fetch; suggestions were cleared
	EffectClear
)

// Effect is the side effect an input asks for.
type Effect struct {
	Kind  EffectKind
	Query string
}

// Commit is a submitted search. Suggestion is set when the user picked one.
type Commit struct {
	Query      string
	Suggestion *cosmere.SearchResult
}

// Rect is a screen region in cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// SearchBar is the type-ahead search state. It does not navigate; a Commit is
// returned to the caller.
type SearchBar struct {
	Text        string
	Suggestions []cosmere.SearchResult
	// Cursor is the selected suggestion, or -1 for none.
	Cursor   int
	Open     bool
	Fetching bool
	Phase    SearchPhase
	MinChars int
	// Bounds is the region of the input and dropdown; pointer presses
	// outside it close the dropdown.
	Bounds Rect

	seq Sequencer
}

// NewSearchBar returns an idle, empty search bar.
func NewSearchBar(minChars int) *SearchBar {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	return &SearchBar{Cursor: -1, MinChars: minChars}
}

// Input records new text. Queries shorter than MinChars clear suggestions and
// never reach the network.
func (b *SearchBar) Input(text string) Effect {
	b.Text = text
	if utf8.RuneCountInString(text) < b.MinChars {
		b.clear()
		return Effect{Kind: EffectClear}
	}
	b.Phase = SearchTyping
	b.Open = true
	return Effect{Kind: EffectFetch, Query: text}
}

func (b *SearchBar) clear() {
	b.seq.Invalidate()
	b.Suggestions = nil
	b.Cursor = -1
	b.Open = false
	b.Fetching = false
	b.Phase = SearchIdle
}

// BeginFetch is called when the debounced fetch for query fires. It returns
// the token to tag the request with, or false when the text has moved on.
func (b *SearchBar) BeginFetch(query string) (Token, bool) {
	if query != b.Text || utf8.RuneCountInString(query) < b.MinChars {
		return 0, false
	}
	b.Fetching = true
	return b.seq.Next(), true
}

// ApplySuggestions stores fetched suggestions. Errors clear the list without
// surfacing; stale responses are dropped.
func (b *SearchBar) ApplySuggestions(t Token, results []cosmere.SearchResult, err error) bool {
	if !b.seq.Latest(t) {
		return false
	}
	b.Fetching = false
	b.Cursor = -1
	if err != nil {
		b.Suggestions = nil
		b.Phase = SearchIdle
		return true
	}
	b.Suggestions = results
	b.Phase = SearchSuggesting
	return true
}

// Visible reports whether the dropdown is shown.
func (b *SearchBar) Visible() bool {
	return b.Open && (b.Fetching || len(b.Suggestions) > 0 || b.NoResults())
}

// NoResults reports a completed fetch that found nothing.
func (b *SearchBar) NoResults() bool {
	return b.Phase == SearchSuggesting && !b.Fetching && len(b.Suggestions) == 0
}

// Down moves the selection down, stopping at the last suggestion.
func (b *SearchBar) Down() {
	if !b.Open || len(b.Suggestions) == 0 {
		return
	}
	if b.Cursor < len(b.Suggestions)-1 {
		b.Cursor++
	}
}

// Up moves the selection up, stopping at "no selection".
func (b *SearchBar) Up() {
	if !b.Open || b.Cursor < 0 {
		return
	}
	b.Cursor--
}

// Selected returns the highlighted suggestion.
func (b *SearchBar) Selected() (cosmere.SearchResult, bool) {
	if !b.Open || b.Cursor < 0 || b.Cursor >= len(b.Suggestions) {
		return cosmere.SearchResult{}, false
	}
	return b.Suggestions[b.Cursor], true
}

// Enter commits the highlighted suggestion, or the raw text when nothing is
// highlighted.
func (b *SearchBar) Enter() Commit {
	if _, ok := b.Selected(); ok {
		c, _ := b.Select(b.Cursor)
		return c
	}
	b.close()
	return Commit{Query: b.Text}
}

// Select replaces the text with suggestion i's name and commits it.
func (b *SearchBar) Select(i int) (Commit, bool) {
	if i < 0 || i >= len(b.Suggestions) {
		return Commit{}, false
	}
	s := b.Suggestions[i]
	b.Text = s.Name
	b.close()
	return Commit{Query: s.Name, Suggestion: &s}, true
}

// Escape closes the dropdown and keeps the text.
func (b *SearchBar) Escape() { b.close() }

func (b *SearchBar) close() {
	b.seq.Invalidate()
	b.Open = false
	b.Fetching = false
	b.Cursor = -1
	b.Phase = SearchIdle
}

// Reopen shows the dropdown again, for when the input regains focus.
func (b *SearchBar) Reopen() {
	if len(b.Suggestions) > 0 {
		b.Open = true
		b.Phase = SearchSuggesting
	}
}

// Remove drops suggestions of a deleted entity. The selection is reset when
// anything was dropped.
func (b *SearchBar) Remove(r cosmere.Resource, id string) bool {
	kept, removed := cosmere.WithoutEntity(b.Suggestions, r, id)
	if !removed {
		return false
	}
	b.Suggestions = kept
	b.Cursor = -1
	return true
}

// PointerDown closes the dropdown when the press is outside Bounds. It
// reports whether the press was inside.
func (b *SearchBar) PointerDown(x, y int) bool {
	if b.Bounds.Contains(x, y) {
		return true
	}
	if b.Open {
		b.close()
	}
	return false
}
