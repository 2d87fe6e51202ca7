package tui

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/billmal071/cosmere/internal/browse"
	"github.com/billmal071/cosmere/internal/cosmere"
	"github.com/billmal071/cosmere/internal/debounce"
)

// SearchOptions configures the type-ahead search bar.
type SearchOptions struct {
	Debounce time.Duration
	MinChars int
	// Suggestions caps the dropdown length.
	Suggestions int
	// Size is the number of results requested from the API.
	Size int
}

// SearchBarModel is the search input with its suggestion dropdown. It emits
// CommitMsg and leaves navigation to its parent.
type SearchBarModel struct {
	bar      *browse.SearchBar
	input    textinput.Model
	debounce *debounce.Func[string]
	client   cosmere.Client
	opts     SearchOptions
	log      *zap.Logger

	mu     sync.Mutex
	sender Sender

	originX, originY int
	width            int
}

// NewSearchBarModel creates an unfocused search bar.
func NewSearchBarModel(client cosmere.Client, opts SearchOptions, log *zap.Logger) *SearchBarModel {
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	if opts.Suggestions <= 0 {
		opts.Suggestions = 8
	}
	if log == nil {
		log = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "Search characters, books, worlds..."
	ti.Prompt = "/ "
	ti.CharLimit = 120

	m := &SearchBarModel{
		bar:    browse.NewSearchBar(opts.MinChars),
		input:  ti,
		client: client,
		opts:   opts,
		log:    log.Named("search"),
		width:  80,
	}
	m.debounce = debounce.New(opts.Debounce, m.post)
	return m
}

// SetSender wires the program the debouncer posts into.
func (m *SearchBarModel) SetSender(s Sender) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sender = s
}

// post runs on the debounce timer goroutine.
func (m *SearchBarModel) post(query string) {
	m.mu.Lock()
	s := m.sender
	m.mu.Unlock()
	if s == nil {
		m.log.Debug("no sender for debounced query", zap.String("query", query))
		return
	}
	s.Send(debouncedMsg{query: query})
}

// State exposes the search bar state.
func (m *SearchBarModel) State() *browse.SearchBar { return m.bar }

// Value returns the typed text.
func (m *SearchBarModel) Value() string { return m.bar.Text }

// Focused reports whether keys go to the input.
func (m *SearchBarModel) Focused() bool { return m.input.Focused() }

// Focus gives the input the keyboard.
func (m *SearchBarModel) Focus() tea.Cmd {
	m.bar.Reopen()
	m.syncBounds()
	return m.input.Focus()
}

// Blur takes the keyboard away and closes the dropdown.
func (m *SearchBarModel) Blur() {
	m.input.Blur()
	m.debounce.Cancel()
	m.bar.Escape()
	m.syncBounds()
}

// Close stops the debounce timer. The model must not be used afterwards.
func (m *SearchBarModel) Close() {
	m.debounce.Stop()
}

// SetOrigin places the bar on screen so pointer presses can be hit-tested.
func (m *SearchBarModel) SetOrigin(x, y, width int) {
	m.originX, m.originY, m.width = x, y, width
	m.input.Width = max(width-4, 10)
	m.syncBounds()
}

func (m *SearchBarModel) syncBounds() {
	m.bar.Bounds = browse.Rect{X: m.originX, Y: m.originY, W: m.width, H: 1 + len(m.dropdownLines())}
}

func (m *SearchBarModel) Update(msg tea.Msg) tea.Cmd {
	defer m.syncBounds()

	switch msg := msg.(type) {
	case debouncedMsg:
		token, ok := m.bar.BeginFetch(msg.query)
		if !ok {
			return nil
		}
		return m.fetch(msg.query, token)

	case suggestionsMsg:
		results := msg.results
		if len(results) > m.opts.Suggestions {
			results = results[:m.opts.Suggestions]
		}
		if !m.bar.ApplySuggestions(msg.token, results, msg.err) {
			m.log.Debug("dropped stale suggestions")
			return nil
		}
		if msg.err != nil {
			m.log.Warn("suggestion fetch failed", zap.Error(msg.err))
		}
		return nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return nil
		}
		return m.press(msg.X, msg.Y)

	case tea.KeyMsg:
		if !m.input.Focused() {
			return nil
		}
		return m.handleKey(msg)
	}
	return nil
}

func (m *SearchBarModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyUp:
		m.bar.Up()
		return nil
	case tea.KeyDown:
		m.bar.Down()
		return nil
	case tea.KeyEnter:
		return m.commit(m.bar.Enter())
	case tea.KeyEsc:
		m.debounce.Cancel()
		m.bar.Escape()
		return nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.setText(after)
	}
	return cmd
}

// setText applies new input text.
func (m *SearchBarModel) setText(text string) {
	eff := m.bar.Input(text)
	switch eff.Kind {
	case browse.EffectFetch:
		m.debounce.Call(eff.Query)
	case browse.EffectClear:
		m.debounce.Cancel()
	}
}

func (m *SearchBarModel) commit(c browse.Commit) tea.Cmd {
	m.debounce.Cancel()
	m.input.SetValue(m.bar.Text)
	m.input.CursorEnd()
	return emit(CommitMsg{Commit: c})
}

func (m *SearchBarModel) press(x, y int) tea.Cmd {
	if !m.bar.PointerDown(x, y) {
		return nil
	}
	row := y - m.originY - 1
	if row >= 0 && m.bar.Phase == browse.SearchSuggesting {
		if c, ok := m.bar.Select(row); ok {
			return m.commit(c)
		}
	}
	if row < 0 && !m.input.Focused() {
		return m.Focus()
	}
	return nil
}

func (m *SearchBarModel) fetch(query string, token browse.Token) tea.Cmd {
	client, size := m.client, m.opts.Size
	return func() tea.Msg {
		results, err := client.GlobalSearch(context.Background(), query, size)
		return suggestionsMsg{token: token, results: results, err: err}
	}
}

func (m *SearchBarModel) dropdownLines() []string {
	b := m.bar
	if !b.Visible() {
		return nil
	}
	switch {
	case b.Fetching && len(b.Suggestions) == 0:
		return []string{DimStyle.Render("  Searching...")}
	case b.NoResults():
		return []string{DimStyle.Render("  No results found")}
	}
	width := max(m.width-4, 20)
	lines := make([]string, len(b.Suggestions))
	for i, s := range b.Suggestions {
		text := s.Name + " " + BadgeStyle.Render(s.Type)
		if s.Description != "" {
			room := width - len(s.Name) - len(s.Type) - 6
			if room > 10 {
				text += " " + DimStyle.Render(cosmere.Truncate(s.Description, room))
			}
		}
		if i == b.Cursor {
			lines[i] = SelectedStyle.Render("➤ ") + text
		} else {
			lines[i] = "  " + text
		}
	}
	return lines
}

func (m *SearchBarModel) View() string {
	lines := append([]string{m.input.View()}, m.dropdownLines()...)
	return strings.Join(lines, "\n")
}
