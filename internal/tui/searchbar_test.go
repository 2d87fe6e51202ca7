package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/billmal071/cosmere/internal/browse"
	"github.com/billmal071/cosmere/internal/cosmere"
)

// searchClient answers GlobalSearch from a table; other methods are unused.
type searchClient struct {
	cosmere.Client

	mu      sync.Mutex
	queries []string
	results map[string][]cosmere.SearchResult
	err     error
}

func (c *searchClient) GlobalSearch(_ context.Context, query string, _ int) ([]cosmere.SearchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, query)
	if c.err != nil {
		return nil, c.err
	}
	return c.results[query], nil
}

func (c *searchClient) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

// chanSender records what the debouncer posts.
type chanSender chan tea.Msg

func (s chanSender) Send(msg tea.Msg) { s <- msg }

var kholins = []cosmere.SearchResult{
	{ID: "jasnah", Name: "Jasnah Kholin", Type: "character"},
	{ID: "dalinar", Name: "Dalinar Kholin", Type: "character"},
	{ID: "gavilar", Name: "Gavilar Kholin", Type: "character"},
}

func newTestSearchBar(t *testing.T, client cosmere.Client) (*SearchBarModel, chanSender) {
	t.Helper()
	m := NewSearchBarModel(client, SearchOptions{Debounce: 20 * time.Millisecond, MinChars: 2, Suggestions: 8, Size: 20}, nil)
	sent := make(chanSender, 16)
	m.SetSender(sent)
	m.Focus()
	t.Cleanup(m.Close)
	return m, sent
}

func typeText(m *SearchBarModel, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func waitSent(t *testing.T, sent chanSender) tea.Msg {
	t.Helper()
	select {
	case msg := <-sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("debounced query was never posted")
		return nil
	}
}

func TestSearchBarDebouncesToOneFetch(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	client := &searchClient{results: map[string][]cosmere.SearchResult{"kholin": kholins}}
	m, sent := newTestSearchBar(t, client)

	typeText(m, "kholin")
	msg := waitSent(t, sent)
	assert.Equal(t, debouncedMsg{query: "kholin"}, msg)

	pump(t, m.Update, func() tea.Msg { return msg })
	assert.Equal(t, []string{"kholin"}, client.Queries())

	state := m.State()
	assert.Equal(t, browse.SearchSuggesting, state.Phase)
	assert.Len(t, state.Suggestions, 3)
	assert.Contains(t, m.View(), "Dalinar Kholin")

	select {
	case extra := <-sent:
		t.Fatalf("unexpected second post: %v", extra)
	case <-time.After(60 * time.Millisecond):
	}
	m.Close()
}

func TestSearchBarShortInputNeverFetches(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	client := &searchClient{}
	m, sent := newTestSearchBar(t, client)

	typeText(m, "k")
	select {
	case msg := <-sent:
		t.Fatalf("unexpected post: %v", msg)
	case <-time.After(80 * time.Millisecond):
	}
	assert.False(t, m.State().Visible())
	assert.Empty(t, client.Queries())
	m.Close()
}

func TestSearchBarKeyboardSelection(t *testing.T) {
	client := &searchClient{results: map[string][]cosmere.SearchResult{"kholin": kholins}}
	m, sent := newTestSearchBar(t, client)

	typeText(m, "kholin")
	pump(t, m.Update, func() tea.Msg { return waitSent(t, sent) })

	m.Update(key("down"))
	m.Update(key("down"))
	msgs := exec(m.Update(key("enter")))

	commit, ok := find[CommitMsg](msgs)
	require.True(t, ok)
	require.NotNil(t, commit.Suggestion)
	assert.Equal(t, "dalinar", commit.Suggestion.ID)
	assert.Equal(t, "Dalinar Kholin", m.Value())
	assert.False(t, m.State().Visible())
}

func TestSearchBarEnterWithoutSelectionCommitsText(t *testing.T) {
	m, _ := newTestSearchBar(t, &searchClient{})
	typeText(m, "honor")

	msgs := exec(m.Update(key("enter")))
	commit, ok := find[CommitMsg](msgs)
	require.True(t, ok)
	assert.Nil(t, commit.Suggestion)
	assert.Equal(t, "honor", commit.Query)
}

func TestSearchBarFailedFetchClearsQuietly(t *testing.T) {
	client := &searchClient{err: errors.New("boom")}
	m, sent := newTestSearchBar(t, client)

	typeText(m, "kal")
	pump(t, m.Update, func() tea.Msg { return waitSent(t, sent) })

	assert.Empty(t, m.State().Suggestions)
	assert.False(t, m.State().Fetching)
	assert.NotContains(t, m.View(), "boom")
}

func TestSearchBarDropsStaleSuggestions(t *testing.T) {
	m, _ := newTestSearchBar(t, &searchClient{})
	typeText(m, "ka")

	old, ok := m.State().BeginFetch("ka")
	require.True(t, ok)
	typeText(m, "l")
	latest, ok := m.State().BeginFetch("kal")
	require.True(t, ok)

	m.Update(suggestionsMsg{token: latest, results: kholins[:1]})
	m.Update(suggestionsMsg{token: old, results: kholins})
	assert.Len(t, m.State().Suggestions, 1)
}

func TestSearchBarPointerOutsideCloses(t *testing.T) {
	client := &searchClient{results: map[string][]cosmere.SearchResult{"kholin": kholins}}
	m, sent := newTestSearchBar(t, client)
	m.SetOrigin(0, 2, 80)

	typeText(m, "kholin")
	pump(t, m.Update, func() tea.Msg { return waitSent(t, sent) })
	require.True(t, m.State().Visible())

	// a press on the second suggestion row selects it
	msgs := exec(m.Update(tea.MouseMsg{X: 5, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}))
	commit, ok := find[CommitMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, "dalinar", commit.Suggestion.ID)

	m.State().Reopen()
	m.Update(tea.MouseMsg{X: 5, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.False(t, m.State().Open)
}

func TestSearchBarWithoutSenderDoesNotPanic(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	m := NewSearchBarModel(&searchClient{}, SearchOptions{Debounce: 5 * time.Millisecond}, nil)
	m.Focus()
	typeText(m, "kal")
	time.Sleep(30 * time.Millisecond)
	m.Close()
}
