package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/billmal071/cosmere/internal/cosmere"
)

// Env is what every view needs from the shell.
type Env struct {
	Client   cosmere.Client
	Logger   *zap.Logger
	PageSize int
	Markdown bool
	// Timeout bounds each request issued by a view; the client applies its
	// own timeout as well.
	Timeout time.Duration
}

func (e Env) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// view is a screen the shell can route to.
type view interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
	Title() string
	Help() string
	// Close abandons requests in flight; the view may be reopened later.
	Close()
}

// listView is an entity list the shell keeps between visits.
type listView interface {
	view
	Resource() cosmere.Resource
	Remove(id string) bool
	Search(query string) tea.Cmd
	// Activate reloads when the list was never loaded or was left mid-load.
	Activate() tea.Cmd
}

// detailView shows one entity.
type detailView interface {
	view
	Resource() cosmere.Resource
	ID() string
	Load(id string) tea.Cmd
	IsConfirming() bool
}

// lifetime is the cancellable context of a view's requests.
type lifetime struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (l *lifetime) context() context.Context {
	if l.ctx == nil || l.ctx.Err() != nil {
		l.ctx, l.cancel = context.WithCancel(context.Background())
	}
	return l.ctx
}

func (l *lifetime) end() {
	if l.cancel != nil {
		l.cancel()
	}
}

func (e Env) baseLabel() string {
	if c, ok := e.Client.(interface{ BaseURL() string }); ok {
		return c.BaseURL()
	}
	return ""
}

func (e Env) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout > 0 {
		return context.WithTimeout(ctx, e.Timeout)
	}
	return context.WithCancel(ctx)
}

// newListView builds the list view of r.
func newListView(r cosmere.Resource, env Env) listView {
	switch r {
	case cosmere.Characters:
		return NewListModel(CharacterKind, env)
	case cosmere.Books:
		return NewListModel(BookKind, env)
	case cosmere.Worlds:
		return NewListModel(WorldKind, env)
	case cosmere.MagicSystems:
		return NewListModel(MagicSystemKind, env)
	case cosmere.SeriesList:
		return NewListModel(SeriesKind, env)
	case cosmere.Shards:
		return NewListModel(ShardKind, env)
	}
	return nil
}

// newDetailView builds the detail view of r.
func newDetailView(r cosmere.Resource, env Env) detailView {
	switch r {
	case cosmere.Characters:
		return NewDetailModel(CharacterKind, env)
	case cosmere.Books:
		return NewDetailModel(BookKind, env)
	case cosmere.Worlds:
		return NewDetailModel(WorldKind, env)
	case cosmere.MagicSystems:
		return NewDetailModel(MagicSystemKind, env)
	case cosmere.SeriesList:
		return NewDetailModel(SeriesKind, env)
	case cosmere.Shards:
		return NewDetailModel(ShardKind, env)
	}
	return nil
}
