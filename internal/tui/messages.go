package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/billmal071/cosmere/internal/browse"
	"github.com/billmal071/cosmere/internal/cosmere"
)

// Sender delivers messages into a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

var viewIDs atomic.Int64

// nextViewID returns an identifier that routes async results to the view
// that asked for them.
func nextViewID() int64 { return viewIDs.Add(1) }

// listLoadedMsg carries a list page back to the view with id owner.
type listLoadedMsg[T cosmere.Entity] struct {
	owner int64
	token browse.Token
	page  *cosmere.Page[T]
	err   error
}

// detailLoadedMsg carries an entity back to the view with id owner.
type detailLoadedMsg[T any] struct {
	owner  int64
	token  browse.Token
	entity *T
	err    error
}

// relatedLoadedMsg carries the records linked to a detail view's entity.
type relatedLoadedMsg struct {
	owner    int64
	token    browse.Token
	sections []Section
	err      error
}

// deletedMsg is the outcome of a confirmed delete.
type deletedMsg struct {
	owner int64
	token browse.Token
	err   error
}

// debouncedMsg is posted by the search bar's debouncer once typing pauses.
type debouncedMsg struct {
	query string
}

// suggestionsMsg carries global search results for the search bar.
type suggestionsMsg struct {
	token   browse.Token
	results []cosmere.SearchResult
	err     error
}

// searchResultsMsg carries global search results for the results view.
type searchResultsMsg struct {
	owner   int64
	token   browse.Token
	results []cosmere.SearchResult
	err     error
}

// CommitMsg is emitted when the search bar commits a query.
type CommitMsg struct {
	browse.Commit
}

// OpenDetailMsg asks the shell to show one entity.
type OpenDetailMsg struct {
	Resource cosmere.Resource
	ID       string
}

// EntityDeletedMsg reports a completed delete so cached lists drop the id.
type EntityDeletedMsg struct {
	Resource cosmere.Resource
	ID       string
}

// BackMsg asks the shell to leave the current view.
type BackMsg struct{}

// AuthRequiredMsg reports that the API rejected the token.
type AuthRequiredMsg struct{}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// authCheck returns a command raising AuthRequiredMsg when err is a 401.
func authCheck(err error) tea.Cmd {
	if cosmere.Classify(err) == cosmere.KindUnauthorized {
		return emit(AuthRequiredMsg{})
	}
	return nil
}
