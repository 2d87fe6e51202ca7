package browse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmal071/cosmere/internal/cosmere"
)

var results = []cosmere.SearchResult{
	{ID: "jasnah", Name: "Jasnah Kholin", Type: "character"},
	{ID: "dalinar", Name: "Dalinar Kholin", Type: "character"},
	{ID: "gavilar", Name: "Gavilar Kholin", Type: "character"},
}

func suggesting(t *testing.T) *SearchBar {
	t.Helper()
	b := NewSearchBar(2)
	eff := b.Input("kh")
	require.Equal(t, EffectFetch, eff.Kind)
	tok, ok := b.BeginFetch("kh")
	require.True(t, ok)
	require.True(t, b.ApplySuggestions(tok, results, nil))
	require.Equal(t, SearchSuggesting, b.Phase)
	return b
}

func TestShortQueryNeverFetches(t *testing.T) {
	b := NewSearchBar(2)
	for _, text := range []string{"", "k", "é"} {
		eff := b.Input(text)
		assert.Equal(t, EffectClear, eff.Kind, "%q", text)
		assert.Equal(t, text, b.Text, "text echoes immediately")
		_, ok := b.BeginFetch(text)
		assert.False(t, ok)
	}
	assert.Equal(t, SearchIdle, b.Phase)
	assert.Equal(t, Effect{Kind: EffectFetch, Query: "ka"}, b.Input("ka"))
	assert.Equal(t, SearchTyping, b.Phase)
}

func TestShorteningClearsSuggestions(t *testing.T) {
	b := suggesting(t)
	assert.Equal(t, EffectClear, b.Input("k").Kind)
	assert.Empty(t, b.Suggestions)
	assert.False(t, b.Open)
	assert.Equal(t, SearchIdle, b.Phase)
}

func TestBeginFetchSkipsOutdatedText(t *testing.T) {
	b := NewSearchBar(2)
	b.Input("ka")
	b.Input("kal")
	_, ok := b.BeginFetch("ka")
	assert.False(t, ok)
	_, ok = b.BeginFetch("kal")
	assert.True(t, ok)
}

func TestStaleSuggestionsDropped(t *testing.T) {
	b := NewSearchBar(2)
	b.Input("ka")
	first, _ := b.BeginFetch("ka")
	b.Input("kal")
	second, _ := b.BeginFetch("kal")

	assert.True(t, b.ApplySuggestions(second, results[:1], nil))
	assert.False(t, b.ApplySuggestions(first, results, nil))
	assert.Len(t, b.Suggestions, 1)
}

func TestSuggestionErrorClearsSilently(t *testing.T) {
	b := suggesting(t)
	b.Input("kho")
	tok, _ := b.BeginFetch("kho")
	assert.True(t, b.ApplySuggestions(tok, nil, errors.New("boom")))
	assert.Empty(t, b.Suggestions)
	assert.False(t, b.Visible())
	assert.Equal(t, "kho", b.Text)
}

func TestCursorIsBounded(t *testing.T) {
	b := suggesting(t)
	assert.Equal(t, -1, b.Cursor)

	b.Up()
	assert.Equal(t, -1, b.Cursor)
	for i := 0; i < 10; i++ {
		b.Down()
	}
	assert.Equal(t, len(results)-1, b.Cursor, "no wraparound at the bottom")
	for i := 0; i < 10; i++ {
		b.Up()
	}
	assert.Equal(t, -1, b.Cursor, "no wraparound at the top")
}

func TestEnterWithSelectionCommitsSuggestion(t *testing.T) {
	b := suggesting(t)
	b.Down()
	b.Down()

	c := b.Enter()
	require.NotNil(t, c.Suggestion)
	assert.Equal(t, "dalinar", c.Suggestion.ID)
	assert.Equal(t, "Dalinar Kholin", c.Query)
	assert.Equal(t, "Dalinar Kholin", b.Text)
	assert.False(t, b.Open)
}

func TestEnterWithoutSelectionCommitsRawText(t *testing.T) {
	b := suggesting(t)
	c := b.Enter()
	assert.Equal(t, Commit{Query: "kh"}, c)
	assert.False(t, b.Open)
	assert.Equal(t, "kh", b.Text)
}

func TestSelect(t *testing.T) {
	b := suggesting(t)
	c, ok := b.Select(2)
	require.True(t, ok)
	assert.Equal(t, "Gavilar Kholin", c.Query)
	assert.Equal(t, "Gavilar Kholin", b.Text)
	assert.False(t, b.Visible())

	_, ok = b.Select(7)
	assert.False(t, ok)
}

func TestEscapeKeepsText(t *testing.T) {
	b := suggesting(t)
	b.Down()
	b.Escape()
	assert.False(t, b.Open)
	assert.Equal(t, "kh", b.Text)
	assert.Equal(t, -1, b.Cursor)

	b.Reopen()
	assert.True(t, b.Visible())
}

func TestPointerOutsideCloses(t *testing.T) {
	b := suggesting(t)
	b.Bounds = Rect{X: 2, Y: 1, W: 40, H: 6}

	assert.True(t, b.PointerDown(10, 3))
	assert.True(t, b.Open)

	assert.False(t, b.PointerDown(10, 7))
	assert.False(t, b.Open)
	assert.Equal(t, "kh", b.Text)
}

func TestNoResults(t *testing.T) {
	b := NewSearchBar(0)
	assert.Equal(t, DefaultMinChars, b.MinChars)
	b.Input("zzz")
	tok, _ := b.BeginFetch("zzz")
	assert.True(t, b.Fetching)
	assert.True(t, b.Visible())
	b.ApplySuggestions(tok, []cosmere.SearchResult{}, nil)
	assert.True(t, b.NoResults())
	assert.True(t, b.Visible())
}

func TestRemoveDropsDeletedSuggestion(t *testing.T) {
	b := suggesting(t)
	b.Down()
	b.Down()

	assert.False(t, b.Remove(cosmere.Worlds, "dalinar"))
	assert.Equal(t, 1, b.Cursor)

	assert.True(t, b.Remove(cosmere.Characters, "dalinar"))
	assert.Equal(t, -1, b.Cursor)
	require.Len(t, b.Suggestions, 2)
	assert.Equal(t, "jasnah", b.Suggestions[0].ID)
	assert.Equal(t, "gavilar", b.Suggestions[1].ID)
}
