package tui

import (
	"net/http"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmal071/cosmere/internal/apitest"
	"github.com/billmal071/cosmere/internal/auth"
	"github.com/billmal071/cosmere/internal/browse"
	"github.com/billmal071/cosmere/internal/cosmere"
)

func newTestApp(t *testing.T, srv *apitest.Server, opts Options) *App {
	t.Helper()
	if opts.Client == nil {
		opts.Env = testEnv(t, srv, nil)
	}
	opts.Search = SearchOptions{Debounce: 10 * time.Millisecond, MinChars: 2, Suggestions: 8, Size: 20}
	a := NewApp(opts)
	t.Cleanup(a.Close)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return a
}

func appUpdate(a *App) func(tea.Msg) tea.Cmd {
	return func(msg tea.Msg) tea.Cmd {
		_, cmd := a.Update(msg)
		return cmd
	}
}

func charactersList(t *testing.T, a *App) *ListModel[cosmere.Character] {
	t.Helper()
	l, ok := a.lists[0].(*ListModel[cosmere.Character])
	require.True(t, ok)
	return l
}

func TestAppStartsOnCharacters(t *testing.T) {
	srv := apitest.New(t)
	a := newTestApp(t, srv, Options{})
	pump(t, appUpdate(a), a.Init())

	view := a.View()
	assert.Contains(t, view, "Cosmere")
	assert.Contains(t, view, "1 Characters")
	assert.Contains(t, view, "6 Shards")
	assert.Contains(t, view, "Vin")
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/characters"))
}

func TestAppStartResourceAndDetail(t *testing.T) {
	srv := apitest.New(t)
	a := newTestApp(t, srv, Options{StartResource: cosmere.Worlds, StartID: "roshar"})
	pump(t, appUpdate(a), a.Init())

	d, ok := a.current().(detailView)
	require.True(t, ok)
	assert.Equal(t, cosmere.Worlds, d.Resource())
	assert.Equal(t, "roshar", d.ID())
	assert.Contains(t, a.View(), "Worlds › Roshar")
}

func TestAppTabsSwitchLists(t *testing.T) {
	srv := apitest.New(t)
	a := newTestApp(t, srv, Options{})
	update := appUpdate(a)
	pump(t, update, a.Init())

	pump(t, update, update(key("tab")))
	assert.Equal(t, cosmere.Books, a.lists[a.tab].Resource())
	assert.Contains(t, a.View(), "The Way of Kings")

	pump(t, update, update(tea.KeyMsg{Type: tea.KeyShiftTab}))
	assert.Equal(t, cosmere.Characters, a.lists[a.tab].Resource())
	// the cached list is shown again without a refetch
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/characters"))

	pump(t, update, update(key("6")))
	assert.Equal(t, cosmere.Shards, a.lists[a.tab].Resource())
}

func TestAppOpenDetailAndBack(t *testing.T) {
	srv := apitest.New(t)
	a := newTestApp(t, srv, Options{})
	update := appUpdate(a)
	pump(t, update, a.Init())

	pump(t, update, update(key("enter")))
	require.Len(t, a.stack, 1)
	assert.Contains(t, a.View(), "Characters › Vin")

	pump(t, update, update(key("esc")))
	assert.Empty(t, a.stack)
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/characters"))
}

func TestAppRawCommitSearchesCurrentList(t *testing.T) {
	srv := apitest.New(t)
	a := newTestApp(t, srv, Options{})
	update := appUpdate(a)
	pump(t, update, a.Init())

	pump(t, update, func() tea.Msg { return CommitMsg{browse.Commit{Query: " kholin "}} })

	req, ok := srv.LastRequest(http.MethodGet, "/characters")
	require.True(t, ok)
	assert.Equal(t, "kholin", req.Query.Get("search"))
	assert.Equal(t, 3, charactersList(t, a).State().Total)
	assert.Empty(t, a.stack)
}

func TestAppRawCommitFromDetailOpensResults(t *testing.T) {
	srv := apitest.New(t)
	a := newTestApp(t, srv, Options{})
	update := appUpdate(a)
	pump(t, update, a.Init())
	pump(t, update, func() tea.Msg { return OpenDetailMsg{Resource: cosmere.Characters, ID: "vin"} })

	// blank commits are ignored
	pump(t, update, func() tea.Msg { return CommitMsg{browse.Commit{Query: "  "}} })
	require.Len(t, a.stack, 1)

	pump(t, update, func() tea.Msg { return CommitMsg{browse.Commit{Query: "kholin"}} })
	require.Len(t, a.stack, 2)
	results, ok := a.current().(*ResultsModel)
	require.True(t, ok)
	assert.Equal(t, "kholin", results.Query())
	assert.Contains(t, a.View(), "Dalinar Kholin")
}

func TestAppSuggestionCommitOpensDetail(t *testing.T) {
	srv := apitest.New(t)
	a := newTestApp(t, srv, Options{})
	update := appUpdate(a)
	pump(t, update, a.Init())

	s := cosmere.SearchResult{ID: "allomancy", Name: "Allomancy", Type: "magic_system"}
	pump(t, update, func() tea.Msg { return CommitMsg{browse.Commit{Query: s.Name, Suggestion: &s}} })

	d, ok := a.current().(detailView)
	require.True(t, ok)
	assert.Equal(t, cosmere.MagicSystems, d.Resource())
	assert.Equal(t, "allomancy", d.ID())
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/magic-systems/allomancy"))
}

func TestAppDeleteLeavesDetailAndDropsFromList(t *testing.T) {
	srv := apitest.New(t)
	a := newTestApp(t, srv, Options{})
	update := appUpdate(a)
	pump(t, update, a.Init())
	pump(t, update, func() tea.Msg { return OpenDetailMsg{Resource: cosmere.Characters, ID: "hoid"} })

	pump(t, update, update(key("d")))
	// esc answers the dialog instead of leaving the page
	pump(t, update, update(key("esc")))
	require.Len(t, a.stack, 1)

	pump(t, update, update(key("d")))
	pump(t, update, update(key("y")))

	assert.Empty(t, a.stack)
	assert.Equal(t, 1, srv.Calls(http.MethodDelete, "/characters/hoid"))
	assert.False(t, charactersList(t, a).State().Contains("hoid"))
	assert.NotContains(t, a.View(), "Hoid")
}

func TestAppDeleteFromResultsPrunesResultsAndSuggestions(t *testing.T) {
	srv := apitest.New(t)
	a := newTestApp(t, srv, Options{})
	update := appUpdate(a)
	pump(t, update, a.Init())
	pump(t, update, func() tea.Msg { return OpenDetailMsg{Resource: cosmere.Characters, ID: "vin"} })
	pump(t, update, func() tea.Msg { return CommitMsg{browse.Commit{Query: "hoid"}} })

	results, ok := a.current().(*ResultsModel)
	require.True(t, ok)
	require.Len(t, results.Results(), 1)

	bar := a.search.State()
	bar.Suggestions = []cosmere.SearchResult{
		{ID: "hoid", Name: "Hoid", Type: "character"},
		{ID: "hoid", Name: "Hoid's world", Type: "world"},
	}
	bar.Cursor = 0

	pump(t, update, update(key("enter")))
	require.Len(t, a.stack, 3)
	pump(t, update, update(key("d")))
	pump(t, update, update(key("y")))

	assert.Equal(t, 1, srv.Calls(http.MethodDelete, "/characters/hoid"))
	require.Len(t, a.stack, 2)
	assert.Same(t, results, a.current())
	assert.Empty(t, results.Results())
	assert.Equal(t, []cosmere.SearchResult{{ID: "hoid", Name: "Hoid's world", Type: "world"}}, bar.Suggestions)
	assert.Equal(t, -1, bar.Cursor)

	// enter on the emptied page opens nothing
	pump(t, update, update(key("enter")))
	assert.Len(t, a.stack, 2)
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/characters/hoid"))
}

func TestAppUnauthorizedShowsLoginPrompt(t *testing.T) {
	srv := apitest.New(t)
	srv.RequireToken("good")
	tokens := auth.NewMemoryStore("stale")
	a := newTestApp(t, srv, Options{Env: testEnv(t, srv, tokens)})
	update := appUpdate(a)
	pump(t, update, a.Init())

	require.True(t, a.authPrompt)
	assert.Contains(t, a.View(), "cosmere login --token")
	assert.Positive(t, tokens.Cleared())

	pump(t, update, update(key("enter")))
	assert.False(t, a.authPrompt)
}

func TestAppSearchFocusRoutesKeys(t *testing.T) {
	srv := apitest.New(t)
	a := newTestApp(t, srv, Options{})
	update := appUpdate(a)
	pump(t, update, a.Init())

	a.Update(key("/"))
	require.True(t, a.search.Focused())
	for _, r := range "vin" {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	// q is text while searching
	a.Update(key("q"))
	assert.Equal(t, "vinq", a.search.Value())
	assert.False(t, a.quitting)

	// the first esc closes the dropdown, the second leaves the input
	a.Update(key("esc"))
	assert.True(t, a.search.Focused())
	assert.False(t, a.search.State().Open)
	a.Update(key("esc"))
	assert.False(t, a.search.Focused())
}

func TestAppQuit(t *testing.T) {
	srv := apitest.New(t)
	a := newTestApp(t, srv, Options{})
	pump(t, appUpdate(a), a.Init())

	_, cmd := a.Update(key("q"))
	msgs := exec(cmd)
	_, quit := find[tea.QuitMsg](msgs)
	assert.True(t, quit)
	assert.Empty(t, a.View())
}

// panicView fails on purpose.
type panicView struct {
	*ResultsModel
	inView, inUpdate bool
}

func (p *panicView) View() string {
	if p.inView {
		panic("render failed")
	}
	return "fine"
}

func (p *panicView) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(tea.KeyMsg); ok && p.inUpdate {
		panic("update failed")
	}
	return nil
}

func TestAppRecoversFromViewPanic(t *testing.T) {
	srv := apitest.New(t)
	a := newTestApp(t, srv, Options{})
	update := appUpdate(a)
	pump(t, update, a.Init())

	a.stack = append(a.stack, &panicView{ResultsModel: NewResultsModel("x", 20, a.env), inView: true})
	view := a.View()
	assert.Contains(t, view, "Something went wrong")
	assert.Contains(t, a.View(), "Something went wrong")

	pump(t, update, update(key("esc")))
	assert.Empty(t, a.stack)
	assert.Contains(t, a.View(), "Vin")
}

func TestAppRecoversFromUpdatePanic(t *testing.T) {
	srv := apitest.New(t)
	a := newTestApp(t, srv, Options{})
	pump(t, appUpdate(a), a.Init())

	a.stack = append(a.stack, &panicView{ResultsModel: NewResultsModel("x", 20, a.env), inUpdate: true})
	var model tea.Model
	assert.NotPanics(t, func() { model, _ = a.Update(key("j")) })
	assert.Same(t, a, model)
	assert.Contains(t, a.View(), "Something went wrong")
}
