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

// ResultsModel is the search results page for a committed query.
type ResultsModel struct {
	id      int64
	env     Env
	log     *zap.Logger
	query   string
	size    int
	seq     browse.Sequencer
	life    lifetime
	spinner spinner.Model

	results []cosmere.SearchResult
	loading bool
	err     error
	cursor  int
	width   int
}

// NewResultsModel creates a results page for query.
func NewResultsModel(query string, size int, env Env) *ResultsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = LinkStyle
	return &ResultsModel{
		id:      nextViewID(),
		env:     env,
		log:     env.log().Named("results"),
		query:   query,
		size:    size,
		spinner: s,
		width:   80,
	}
}

func (m *ResultsModel) Title() string { return fmt.Sprintf("Search: %q", m.query) }

// Query returns the searched text.
func (m *ResultsModel) Query() string { return m.query }

func (m *ResultsModel) Init() tea.Cmd { return m.load() }

func (m *ResultsModel) load() tea.Cmd {
	m.loading = true
	m.err = nil
	token := m.seq.Next()
	ctx := m.life.context()
	client, env, query, size, owner := m.env.Client, m.env, m.query, m.size, m.id
	search := func() tea.Msg {
		ctx, cancel := env.withTimeout(ctx)
		defer cancel()
		results, err := client.GlobalSearch(ctx, query, size)
		return searchResultsMsg{owner: owner, token: token, results: results, err: err}
	}
	return tea.Batch(search, m.spinner.Tick)
}

func (m *ResultsModel) Close() {
	m.seq.Invalidate()
	m.life.end()
}

func (m *ResultsModel) SetSize(width, _ int) { m.width = width }

func (m *ResultsModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case searchResultsMsg:
		if msg.owner != m.id || !m.seq.Latest(msg.token) {
			return nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.log.Warn("search failed", zap.String("query", m.query), zap.Error(msg.err))
			return authCheck(msg.err)
		}
		m.results = msg.results
		m.cursor = 0
		return nil

	case spinner.TickMsg:
		if !m.loading {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
		case "r":
			return m.load()
		case "enter":
			if m.cursor < len(m.results) {
				return openResult(m.results[m.cursor])
			}
		}
	}
	return nil
}

// Remove drops a deleted entity from the results.
func (m *ResultsModel) Remove(r cosmere.Resource, id string) bool {
	kept, removed := cosmere.WithoutEntity(m.results, r, id)
	if !removed {
		return false
	}
	m.results = kept
	if m.cursor >= len(m.results) {
		m.cursor = max(len(m.results)-1, 0)
	}
	return true
}

// Results returns the results shown.
func (m *ResultsModel) Results() []cosmere.SearchResult { return m.results }

// openResult routes a search result to its entity's detail view.
func openResult(r cosmere.SearchResult) tea.Cmd {
	res, err := cosmere.ParseResource(r.Type)
	if err != nil {
		return nil
	}
	return emit(OpenDetailMsg{Resource: res, ID: r.ID})
}

func (m *ResultsModel) View() string {
	switch {
	case m.loading:
		return m.spinner.View() + " Searching..."
	case m.err != nil:
		return ErrorStyle.Render(cosmere.UserMessage(m.err, "search")) + "\n" + DimStyle.Render("press r to retry")
	case len(m.results) == 0:
		return WarningStyle.Render(fmt.Sprintf("No results for %q", m.query))
	}

	var b strings.Builder
	b.WriteString(DimStyle.Render(fmt.Sprintf("%d results", len(m.results))) + "\n\n")
	for i, r := range m.results {
		line := r.Name + " " + BadgeStyle.Render(r.Type)
		if i == m.cursor {
			b.WriteString(SelectedStyle.Render("  ➤ ") + line + "\n")
		} else {
			b.WriteString("    " + line + "\n")
		}
		if r.Description != "" {
			b.WriteString("      " + DimStyle.Render(cosmere.Truncate(r.Description, m.width-8)) + "\n")
		}
	}
	return b.String()
}

func (m *ResultsModel) Help() string {
	return "↑/↓: navigate • enter: open • r: search again • esc: back"
}
