package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/billmal071/cosmere/internal/browse"
	"github.com/billmal071/cosmere/internal/cosmere"
)

// DetailModel shows one entity and owns its delete flow.
type DetailModel[T cosmere.Entity] struct {
	id       int64
	kind     Kind[T]
	env      Env
	log      *zap.Logger
	state    browse.DetailState[T]
	related  browse.RelatedState[Section]
	life     lifetime
	spinner  spinner.Model
	viewport viewport.Model
	md       *markdown
	width    int
	height   int
}

// NewDetailModel creates a detail view for kind. Call Load to pick the entity.
func NewDetailModel[T cosmere.Entity](kind Kind[T], env Env) *DetailModel[T] {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = LinkStyle
	log := env.log().Named("detail").With(zap.String("resource", string(kind.Resource)))
	return &DetailModel[T]{
		id:       nextViewID(),
		kind:     kind,
		env:      env,
		log:      log,
		spinner:  s,
		viewport: viewport.New(80, 18),
		md:       newMarkdown(env.Markdown, 76, log),
		width:    80,
		height:   24,
	}
}

func (m *DetailModel[T]) Resource() cosmere.Resource { return m.kind.Resource }

func (m *DetailModel[T]) ID() string { return m.state.ID }

// State exposes the detail state.
func (m *DetailModel[T]) State() *browse.DetailState[T] { return &m.state }

func (m *DetailModel[T]) Title() string {
	if m.state.Entity != nil {
		return (*m.state.Entity).DisplayName()
	}
	return m.kind.Resource.Singular() + " " + m.state.ID
}

func (m *DetailModel[T]) Init() tea.Cmd {
	if m.state.Phase == browse.PhaseIdle && m.state.ID != "" {
		return m.Load(m.state.ID)
	}
	return nil
}

// Load shows the entity id, superseding any load in flight.
func (m *DetailModel[T]) Load(id string) tea.Cmd {
	token := m.state.Load(id)
	m.related.Reset()
	m.viewport.SetContent("")
	return m.fetch(id, token)
}

func (m *DetailModel[T]) fetch(id string, token browse.Token) tea.Cmd {
	ctx := m.life.context()
	get, client, env, owner := m.kind.Get, m.env.Client, m.env, m.id
	load := func() tea.Msg {
		ctx, cancel := env.withTimeout(ctx)
		defer cancel()
		entity, err := get(client, ctx, id)
		return detailLoadedMsg[T]{owner: owner, token: token, entity: entity, err: err}
	}
	return tea.Batch(load, m.spinner.Tick)
}

// fetchRelated loads the records linked to the entity just shown.
func (m *DetailModel[T]) fetchRelated() tea.Cmd {
	if m.kind.Related == nil || m.state.Entity == nil {
		return nil
	}
	token := m.related.Load()
	ctx := m.life.context()
	related, client, env, owner, entity := m.kind.Related, m.env.Client, m.env, m.id, *m.state.Entity
	return func() tea.Msg {
		ctx, cancel := env.withTimeout(ctx)
		defer cancel()
		sections, err := related(client, ctx, entity)
		return relatedLoadedMsg{owner: owner, token: token, sections: sections, err: err}
	}
}

// Related exposes the state of the linked records.
func (m *DetailModel[T]) Related() *browse.RelatedState[Section] { return &m.related }

func (m *DetailModel[T]) Close() {
	m.state.Cancel()
	m.related.Cancel()
	m.life.end()
}

func (m *DetailModel[T]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-6, 3)
	if m.md.renderer != nil && m.md.width != width-4 {
		m.md.resize(width - 4)
	}
	m.refresh()
}

func (m *DetailModel[T]) refresh() {
	if m.state.Phase != browse.PhaseLoaded || m.state.Entity == nil {
		return
	}
	content := renderDetail(m.kind, *m.state.Entity, m.md)
	switch {
	case m.related.Loading:
		content += "\n\n" + DimStyle.Render("Loading related records...")
	case m.related.Err != nil:
		content += "\n\n" + WarningStyle.Render(cosmere.UserMessage(m.related.Err, "load related records"))
	default:
		if body := m.md.render(relatedSections(m.related.Items)); body != "" {
			content += "\n\n" + body
		}
	}
	m.viewport.SetContent(content)
}

func (m *DetailModel[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case detailLoadedMsg[T]:
		if msg.owner != m.id {
			return nil
		}
		if !m.state.Apply(msg.token, msg.entity, msg.err) {
			m.log.Debug("dropped stale detail response", zap.String("id", m.state.ID))
			return nil
		}
		if m.state.Phase == browse.PhaseError {
			m.log.Warn("detail load failed", zap.String("id", m.state.ID), zap.Error(msg.err))
			return authCheck(msg.err)
		}
		if m.state.Entity != nil {
			for _, field := range cosmere.MalformedFields(*m.state.Entity) {
				m.log.Debug("unparseable field", zap.String("id", m.state.ID), zap.String("field", field))
			}
		}
		related := m.fetchRelated()
		m.viewport.GotoTop()
		m.refresh()
		return related

	case relatedLoadedMsg:
		if msg.owner != m.id || !m.related.Apply(msg.token, msg.sections, msg.err) {
			return nil
		}
		m.refresh()
		if m.related.Err != nil {
			m.log.Warn("related records failed", zap.String("id", m.state.ID), zap.Error(msg.err))
			return authCheck(msg.err)
		}
		return nil

	case deletedMsg:
		if msg.owner != m.id {
			return nil
		}
		if !m.state.ApplyDelete(msg.token, msg.err) {
			return nil
		}
		if msg.err != nil {
			m.log.Warn("delete failed", zap.String("id", m.state.ID), zap.Error(msg.err))
			return authCheck(msg.err)
		}
		m.log.Info("deleted", zap.String("id", m.state.ID))
		return emit(EntityDeletedMsg{Resource: m.kind.Resource, ID: m.state.ID})

	case spinner.TickMsg:
		if m.state.Phase != browse.PhaseLoading && !m.state.Deleting {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *DetailModel[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.state.Confirming {
		switch msg.String() {
		case "y", "Y":
			req, ok := m.state.ConfirmDelete()
			if !ok {
				return nil
			}
			return m.remove(req)
		case "n", "N", "esc":
			m.state.CancelDelete()
		}
		return nil
	}

	switch msg.String() {
	case "d", "delete":
		m.state.RequestDelete()
		return nil
	case "r":
		switch {
		case m.state.Phase == browse.PhaseError:
			return m.fetch(m.state.ID, m.state.Retry())
		case m.state.Phase == browse.PhaseLoaded && m.related.Err != nil:
			cmd := m.fetchRelated()
			m.refresh()
			return cmd
		}
		return nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *DetailModel[T]) remove(req browse.DeleteRequest) tea.Cmd {
	ctx := m.life.context()
	client, env, r, owner := m.env.Client, m.env, m.kind.Resource, m.id
	del := func() tea.Msg {
		ctx, cancel := env.withTimeout(ctx)
		defer cancel()
		return deletedMsg{owner: owner, token: req.Token, err: cosmere.Delete(ctx, client, r, req.ID)}
	}
	return tea.Batch(del, m.spinner.Tick)
}

// IsConfirming reports whether the delete dialog is open.
func (m *DetailModel[T]) IsConfirming() bool { return m.state.Confirming }

func (m *DetailModel[T]) View() string {
	name := m.kind.Resource.Singular()
	switch m.state.Phase {
	case browse.PhaseIdle, browse.PhaseLoading:
		return m.spinner.View() + " Loading " + name + "..."
	case browse.PhaseNotFound:
		return WarningStyle.Render(strings.ToUpper(name[:1])+name[1:]+" not found") + "\n" +
			DimStyle.Render("no "+name+" has the id "+m.state.ID)
	case browse.PhaseError:
		out := ErrorStyle.Render(cosmere.UserMessage(m.state.Err, "load "+name))
		if cosmere.Retryable(m.state.Err, true) {
			out += "\n" + DimStyle.Render("press r to retry")
		}
		return out
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.Title()))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	switch {
	case m.state.Confirming:
		b.WriteString("\n" + DialogStyle.Render("Delete "+m.Title()+"? This cannot be undone.\n\ny: delete • n: cancel"))
	case m.state.Deleting:
		b.WriteString("\n" + m.spinner.View() + " Deleting...")
	case m.state.DeleteErr != nil:
		b.WriteString("\n" + ErrorStyle.Render(cosmere.UserMessage(m.state.DeleteErr, "delete "+name)))
	}
	return b.String()
}

func (m *DetailModel[T]) Help() string {
	if m.state.Confirming {
		return "y: confirm delete • n/esc: cancel"
	}
	return "↑/↓: scroll • d: delete • r: retry • esc: back"
}
