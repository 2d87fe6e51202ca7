package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/billmal071/cosmere/internal/browse"
	"github.com/billmal071/cosmere/internal/cosmere"
)

// ListModel is the filtered, paginated list view of one resource.
type ListModel[T cosmere.Entity] struct {
	id      int64
	kind    Kind[T]
	env     Env
	log     *zap.Logger
	state   *browse.ListState[T]
	life    lifetime
	spinner spinner.Model

	cursor    int
	filterIdx int
	stale     bool
	width     int
	height    int
}

// NewListModel creates a list view for kind.
func NewListModel[T cosmere.Entity](kind Kind[T], env Env) *ListModel[T] {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = LinkStyle
	return &ListModel[T]{
		id:      nextViewID(),
		kind:    kind,
		env:     env,
		log:     env.log().Named("list").With(zap.String("resource", string(kind.Resource))),
		state:   browse.NewListState[T](kind.Resource, env.PageSize),
		spinner: s,
		stale:   true,
		width:   80,
		height:  24,
	}
}

func (m *ListModel[T]) Resource() cosmere.Resource { return m.kind.Resource }

func (m *ListModel[T]) Title() string { return m.kind.Resource.Title() }

// State exposes the list state.
func (m *ListModel[T]) State() *browse.ListState[T] { return m.state }

func (m *ListModel[T]) Init() tea.Cmd { return m.Activate() }

func (m *ListModel[T]) Activate() tea.Cmd {
	if !m.stale {
		return nil
	}
	return m.fetch(m.state.Reload())
}

func (m *ListModel[T]) Close() {
	if m.state.Loading {
		m.stale = true
	}
	m.state.Cancel()
	m.life.end()
}

func (m *ListModel[T]) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *ListModel[T]) Search(query string) tea.Cmd {
	return m.fetch(m.state.Search(strings.TrimSpace(query)))
}

func (m *ListModel[T]) Remove(id string) bool {
	removed := m.state.Remove(id)
	if m.cursor >= len(m.state.Items) && m.cursor > 0 {
		m.cursor = len(m.state.Items) - 1
	}
	return removed
}

func (m *ListModel[T]) fetch(req browse.ListRequest) tea.Cmd {
	m.stale = false
	ctx := m.life.context()
	list, client, env, owner := m.kind.List, m.env.Client, m.env, m.id
	load := func() tea.Msg {
		ctx, cancel := env.withTimeout(ctx)
		defer cancel()
		page, err := list(client, ctx, req.Options)
		return listLoadedMsg[T]{owner: owner, token: req.Token, page: page, err: err}
	}
	return tea.Batch(load, m.spinner.Tick)
}

func (m *ListModel[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case listLoadedMsg[T]:
		if msg.owner != m.id {
			return nil
		}
		if !m.state.Apply(msg.token, msg.page, msg.err) {
			m.log.Debug("dropped stale list response", zap.Uint64("token", uint64(msg.token)))
			return nil
		}
		if msg.err != nil {
			m.log.Warn("list load failed", zap.Error(msg.err))
			return authCheck(msg.err)
		}
		if m.cursor >= len(m.state.Items) {
			m.cursor = 0
		}
		return nil

	case spinner.TickMsg:
		if !m.state.Loading {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return nil
}

func (m *ListModel[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Items)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.state.Items) {
			item := m.state.Items[m.cursor]
			return emit(OpenDetailMsg{Resource: m.kind.Resource, ID: item.EntityID()})
		}
	case "n", "right", "pgdown":
		if req, ok := m.state.Next(); ok {
			m.cursor = 0
			return m.fetch(req)
		}
	case "p", "left", "pgup":
		if req, ok := m.state.Prev(); ok {
			m.cursor = 0
			return m.fetch(req)
		}
	case "r":
		return m.fetch(m.state.Reload())
	case "f":
		if len(m.kind.Choices) > 0 {
			m.filterIdx = (m.filterIdx + 1) % len(m.kind.Choices)
		}
	case "v":
		return m.cycleFilter()
	case "c":
		m.cursor = 0
		return m.fetch(m.state.ClearFilters())
	}
	return nil
}

// cycleFilter advances the focused filter to its next value.
func (m *ListModel[T]) cycleFilter() tea.Cmd {
	if len(m.kind.Choices) == 0 {
		return nil
	}
	choice := m.kind.Choices[m.filterIdx]
	current := m.state.Filters[choice.Key]
	next := choice.Values[0]
	for i, v := range choice.Values {
		if v == current {
			next = choice.Values[(i+1)%len(choice.Values)]
			break
		}
	}
	m.cursor = 0
	return m.fetch(m.state.SetFilter(choice.Key, next))
}

func (m *ListModel[T]) View() string {
	var b strings.Builder
	b.WriteString(m.filterBar())
	b.WriteString("\n\n")

	s := m.state
	switch {
	case s.Loading && !s.Loaded():
		b.WriteString(m.spinner.View() + " Loading " + strings.ToLower(m.Title()) + "...")
		return b.String()
	case s.Err != nil:
		b.WriteString(ErrorStyle.Render(cosmere.UserMessage(s.Err, "load "+strings.ToLower(m.Title()))))
		if cosmere.Retryable(s.Err, true) {
			b.WriteString("\n" + DimStyle.Render("press r to retry"))
		}
		b.WriteString("\n\n")
	case s.Empty():
		b.WriteString(WarningStyle.Render("No " + strings.ToLower(m.Title()) + " found"))
		if len(s.Filters) > 0 {
			b.WriteString("\n" + DimStyle.Render("press c to clear filters"))
		}
		return b.String()
	}

	for i, item := range s.Items {
		title, meta := m.kind.Card(item)
		title = cosmere.Truncate(title, m.width-6)
		if i == m.cursor {
			b.WriteString(SelectedStyle.Render("  ➤ " + title))
		} else {
			b.WriteString(NormalStyle.Render("    " + title))
		}
		b.WriteString("\n")
		if meta != "" {
			b.WriteString("      " + DimStyle.Render(meta) + "\n")
		}
	}

	b.WriteString("\n" + m.pager())
	if s.Loading {
		b.WriteString("  " + m.spinner.View())
	}
	return b.String()
}

func (m *ListModel[T]) filterBar() string {
	if len(m.kind.Choices) == 0 {
		return DimStyle.Render("no filters")
	}
	parts := make([]string, 0, len(m.kind.Choices))
	for i, c := range m.kind.Choices {
		v := m.state.Filters[c.Key]
		if v == "" {
			v = "any"
		}
		label := c.Key + ": " + v
		if i == m.filterIdx {
			parts = append(parts, SelectedStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, DimStyle.Render(label))
		}
	}
	line := strings.Join(parts, "  ")
	if q := m.state.Filters["search"]; q != "" {
		line += "  " + LinkStyle.Render("search: "+q)
	}
	return line
}

func (m *ListModel[T]) pager() string {
	s := m.state
	prev := DisabledStyle.Render("← prev")
	if s.CanPrev() {
		prev = LinkStyle.Render("← prev")
	}
	next := DisabledStyle.Render("next →")
	if s.CanNext() {
		next = LinkStyle.Render("next →")
	}
	info := DimStyle.Render(fmt.Sprintf("page %d of %d · %s total", s.Page, s.PageCount(), FormatNumber(s.Total)))
	return prev + "  " + info + "  " + next
}

func (m *ListModel[T]) Help() string {
	return "↑/↓: navigate • enter: open • n/p: page • f: filter • v: change value • c: clear • r: reload"
}
