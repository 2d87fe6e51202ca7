package tui

import (
	"fmt"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/billmal071/cosmere/internal/cosmere"
)

// Options configures the browser.
type Options struct {
	Env
	Search SearchOptions
	Mouse  bool

	// StartResource selects the initial tab.
	StartResource cosmere.Resource
	// StartID opens a detail view of StartResource on launch.
	StartID string
	// StartQuery opens a results page on launch.
	StartQuery string
}

const searchRow = 2

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)

// App is the page shell: tabs of entity lists, a navigation stack of detail
// and results pages, the search bar, and a fallback for views that panic.
type App struct {
	opts   Options
	env    Env
	log    *zap.Logger
	search *SearchBarModel
	lists  []listView
	tab    int
	stack  []view

	authPrompt bool
	crash      string
	quitting   bool
	width      int
	height     int
}

// NewApp builds the shell. Call SetSender before running it.
func NewApp(opts Options) *App {
	env := opts.Env
	log := env.log().Named("tui")
	a := &App{
		opts:   opts,
		env:    env,
		log:    log,
		search: NewSearchBarModel(env.Client, opts.Search, env.log()),
		width:  80,
		height: 24,
	}
	for i, r := range cosmere.Resources {
		a.lists = append(a.lists, newListView(r, env))
		if r == opts.StartResource {
			a.tab = i
		}
	}
	a.search.SetOrigin(0, searchRow, a.width)
	return a
}

// SetSender wires the running program for debounced search.
func (a *App) SetSender(s Sender) { a.search.SetSender(s) }

// Close stops timers and abandons requests in flight.
func (a *App) Close() {
	a.search.Close()
	for _, l := range a.lists {
		l.Close()
	}
	for _, v := range a.stack {
		v.Close()
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.lists[a.tab].Activate()}
	switch {
	case a.opts.StartID != "":
		cmds = append(cmds, a.openDetail(a.lists[a.tab].Resource(), a.opts.StartID))
	case strings.TrimSpace(a.opts.StartQuery) != "":
		cmds = append(cmds, a.openResults(a.opts.StartQuery))
	}
	return tea.Batch(cmds...)
}

func (a *App) current() view {
	if n := len(a.stack); n > 0 {
		return a.stack[n-1]
	}
	return a.lists[a.tab]
}

func (a *App) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			a.recovered("update", r)
			model, cmd = a, nil
		}
	}()
	return a, a.update(msg)
}

func (a *App) recovered(where string, r any) {
	a.crash = fmt.Sprint(r)
	a.log.Error("view panicked",
		zap.String("phase", where),
		zap.String("view", a.current().Title()),
		zap.Any("panic", r),
		zap.ByteString("stack", debug.Stack()))
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		cmd := a.search.Update(msg)
		if msg.Action == tea.MouseActionPress && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown) {
			return tea.Batch(cmd, a.current().Update(msg))
		}
		return cmd

	case CommitMsg:
		return a.commit(msg)

	case OpenDetailMsg:
		return a.openDetail(msg.Resource, msg.ID)

	case EntityDeletedMsg:
		return a.deleted(msg)

	case BackMsg:
		return a.back()

	case AuthRequiredMsg:
		a.authPrompt = true
		return nil
	}

	// async results and ticks go to whoever asked for them
	cmds := []tea.Cmd{a.search.Update(msg)}
	for _, l := range a.lists {
		cmds = append(cmds, l.Update(msg))
	}
	for _, v := range a.stack {
		cmds = append(cmds, v.Update(msg))
	}
	return tea.Batch(cmds...)
}

func (a *App) resize(width, height int) {
	a.width, a.height = width, height
	a.search.SetOrigin(0, searchRow, width)
	body := max(height-8, 5)
	for _, l := range a.lists {
		l.SetSize(width, body)
	}
	for _, v := range a.stack {
		v.SetSize(width, body)
	}
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return a.quit()
	}

	if a.crash != "" {
		switch key {
		case "esc", "enter", "backspace":
			a.crash = ""
			return a.back()
		case "q":
			return a.quit()
		}
		return nil
	}

	if a.authPrompt {
		switch key {
		case "q":
			return a.quit()
		case "esc", "enter":
			a.authPrompt = false
		}
		return nil
	}

	if a.search.Focused() {
		if key == "tab" || (key == "esc" && !a.search.State().Open) {
			a.search.Blur()
			return nil
		}
		return a.search.Update(msg)
	}

	if d, ok := a.current().(detailView); ok && d.IsConfirming() {
		return d.Update(msg)
	}

	switch key {
	case "/":
		return a.search.Focus()
	case "q":
		return a.quit()
	case "esc", "backspace":
		return a.back()
	case "tab":
		return a.switchTab(a.tab + 1)
	case "shift+tab":
		return a.switchTab(a.tab - 1)
	case "1", "2", "3", "4", "5", "6":
		return a.switchTab(int(key[0] - '1'))
	}
	return a.current().Update(msg)
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	a.Close()
	return tea.Quit
}

func (a *App) switchTab(i int) tea.Cmd {
	n := len(a.lists)
	i = ((i % n) + n) % n
	a.clearStack()
	if i == a.tab {
		return nil
	}
	a.lists[a.tab].Close()
	a.tab = i
	return a.lists[a.tab].Activate()
}

func (a *App) clearStack() {
	for _, v := range a.stack {
		v.Close()
	}
	a.stack = nil
}

func (a *App) push(v view) tea.Cmd {
	v.SetSize(a.width, max(a.height-8, 5))
	if len(a.stack) == 0 {
		a.lists[a.tab].Close()
	}
	a.stack = append(a.stack, v)
	return v.Init()
}

func (a *App) back() tea.Cmd {
	n := len(a.stack)
	if n == 0 {
		return nil
	}
	a.stack[n-1].Close()
	a.stack = a.stack[:n-1]
	if len(a.stack) == 0 {
		return a.lists[a.tab].Activate()
	}
	return nil
}

func (a *App) openDetail(r cosmere.Resource, id string) tea.Cmd {
	d := newDetailView(r, a.env)
	if d == nil {
		a.log.Warn("no detail view", zap.String("resource", string(r)))
		return nil
	}
	cmd := a.push(d)
	return tea.Batch(cmd, d.Load(id))
}

func (a *App) openResults(query string) tea.Cmd {
	return a.push(NewResultsModel(strings.TrimSpace(query), a.opts.Search.Size, a.env))
}

// commit handles a submitted search: a picked suggestion opens its entity; raw
// text filters the list on screen, or opens a results page elsewhere.
func (a *App) commit(msg CommitMsg) tea.Cmd {
	a.search.Blur()
	if s := msg.Suggestion; s != nil {
		if cmd := openResult(*s); cmd != nil {
			return cmd
		}
		return a.openResults(msg.Query)
	}
	query := strings.TrimSpace(msg.Query)
	if len(a.stack) == 0 {
		return a.lists[a.tab].Search(query)
	}
	if query == "" {
		return nil
	}
	return a.openResults(query)
}

// resultRemover is a view caching search results that can forget an entity.
type resultRemover interface {
	Remove(r cosmere.Resource, id string) bool
}

// deleted drops the entity from every cached list, results page and
// suggestion, and leaves any view of it.
func (a *App) deleted(msg EntityDeletedMsg) tea.Cmd {
	for _, l := range a.lists {
		if l.Resource() == msg.Resource {
			l.Remove(msg.ID)
		}
	}
	a.search.State().Remove(msg.Resource, msg.ID)
	kept := a.stack[:0]
	for _, v := range a.stack {
		if d, ok := v.(detailView); ok && d.Resource() == msg.Resource && d.ID() == msg.ID {
			v.Close()
			continue
		}
		if rr, ok := v.(resultRemover); ok {
			rr.Remove(msg.Resource, msg.ID)
		}
		kept = append(kept, v)
	}
	a.stack = kept
	if len(a.stack) == 0 {
		return a.lists[a.tab].Activate()
	}
	return nil
}

func (a *App) View() (out string) {
	if a.quitting {
		return ""
	}
	if a.crash != "" {
		return a.crashView()
	}
	defer func() {
		if r := recover(); r != nil {
			a.recovered("view", r)
			out = a.crashView()
		}
	}()

	var b strings.Builder
	b.WriteString(headerStyle.Render("✦ Cosmere") + DimStyle.Render("  "+a.env.baseLabel()) + "\n")
	b.WriteString(a.tabs() + "\n")
	b.WriteString(a.search.View() + "\n")
	if crumbs := a.breadcrumbs(); crumbs != "" {
		b.WriteString(DimStyle.Render(crumbs) + "\n")
	}
	b.WriteString("\n")

	if a.authPrompt {
		b.WriteString(a.authView())
	} else {
		b.WriteString(a.current().View())
	}
	b.WriteString("\n" + HelpStyle.Render(a.help()))
	return b.String()
}

func (a *App) tabs() string {
	parts := make([]string, len(a.lists))
	for i, l := range a.lists {
		label := fmt.Sprintf("%d %s", i+1, l.Title())
		if i == a.tab {
			parts[i] = ActiveTabStyle.Render(label)
		} else {
			parts[i] = TabStyle.Render(label)
		}
	}
	return strings.Join(parts, "")
}

func (a *App) breadcrumbs() string {
	if len(a.stack) == 0 {
		return ""
	}
	parts := []string{a.lists[a.tab].Title()}
	for _, v := range a.stack {
		parts = append(parts, v.Title())
	}
	return strings.Join(parts, " › ")
}

func (a *App) help() string {
	if a.search.Focused() {
		return "↑/↓: suggestions • enter: search • esc: close • tab: leave search"
	}
	h := a.current().Help()
	return h + " • /: search • tab: next list • q: quit"
}

func (a *App) authView() string {
	return BoxStyle.Render(WarningStyle.Render("Sign in required") + "\n\n" +
		"The API rejected your token and it has been cleared.\n" +
		"Run " + LinkStyle.Render("cosmere login --token <token>") + " to sign in again.\n\n" +
		DimStyle.Render("enter: continue browsing • q: quit"))
}

func (a *App) crashView() string {
	return BoxStyle.Render(ErrorStyle.Render("Something went wrong") + "\n\n" +
		"This view could not be displayed. The error has been logged.\n\n" +
		DimStyle.Render("esc: go back • q: quit"))
}

// Run starts the browser and blocks until the user quits.
func Run(opts Options) error {
	app := NewApp(opts)
	defer app.Close()

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(app, programOpts...)
	app.SetSender(p)

	_, err := p.Run()
	return err
}
