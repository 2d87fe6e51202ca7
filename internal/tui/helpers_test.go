package tui

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/billmal071/cosmere/internal/apitest"
	"github.com/billmal071/cosmere/internal/cosmere"
)

func testEnv(t *testing.T, srv *apitest.Server, tokens cosmere.TokenSource) Env {
	t.Helper()
	return Env{
		Client: cosmere.NewHTTPClient(cosmere.Options{
			BaseURL: srv.URL(),
			Timeout: 2 * time.Second,
			Tokens:  tokens,
			Dedupe:  true,
		}),
		PageSize: 20,
		Timeout:  2 * time.Second,
	}
}

// exec runs cmd and every command it batches, returning the messages they
// produce. Spinner ticks are dropped so animation never loops.
func exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil, spinner.TickMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, exec(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// pump feeds the results of cmd back into update until nothing is left and
// returns every message delivered.
func pump(t *testing.T, update func(tea.Msg) tea.Cmd, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var seen []tea.Msg
	queue := exec(cmd)
	for i := 0; len(queue) > 0; i++ {
		if i > 100 {
			t.Fatal("message loop did not settle")
		}
		msg := queue[0]
		queue = queue[1:]
		seen = append(seen, msg)
		if _, quit := msg.(tea.QuitMsg); quit {
			continue
		}
		queue = append(queue, exec(update(msg))...)
	}
	return seen
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func find[M tea.Msg](msgs []tea.Msg) (M, bool) {
	for _, m := range msgs {
		if v, ok := m.(M); ok {
			return v, true
		}
	}
	var zero M
	return zero, false
}
