package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/billmal071/cosmere/internal/cosmere"
)

// LoadMoreFunc fetches the next batch of choices.
type LoadMoreFunc[T any] func() ([]T, error)

// Describe renders a choice as its key, title and description line.
type Describe[T any] func(T) (key, title, desc string)

type loadMoreMsg[T any] struct {
	items []T
	err   error
}

type choiceItem[T any] struct {
	value T
	title string
	desc  string
}

func (c choiceItem[T]) Title() string       { return c.title }
func (c choiceItem[T]) Description() string { return c.desc }
func (c choiceItem[T]) FilterValue() string { return c.title }

type choiceDelegate[T any] struct{}

func (d choiceDelegate[T]) Height() int                             { return 2 }
func (d choiceDelegate[T]) Spacing() int                            { return 1 }
func (d choiceDelegate[T]) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d choiceDelegate[T]) Render(w io.Writer, m list.Model, index int, item list.Item) {
	choice, ok := item.(choiceItem[T])
	if !ok {
		return
	}

	title := cosmere.Truncate(choice.title, 60)
	var str string
	if index == m.Index() {
		str = SelectedStyle.Render(fmt.Sprintf("  ➤ %d. %s", index+1, title))
	} else {
		str = NormalStyle.Render(fmt.Sprintf("    %d. %s", index+1, title))
	}
	desc := choice.desc
	if desc == "" {
		desc = "No details available"
	}
	str += "\n" + DimStyle.Render("      "+cosmere.Truncate(desc, 70))

	fmt.Fprint(w, str)
}

// SelectorModel is a one-shot picker over a list of choices.
type SelectorModel[T any] struct {
	list          list.Model
	describe      Describe[T]
	selected      *T
	quitting      bool
	loadMore      LoadMoreFunc[T]
	loading       bool
	seen          map[string]bool
	noMoreResults bool
}

// NewSelector creates a picker titled title.
func NewSelector[T any](items []T, title string, describe Describe[T]) SelectorModel[T] {
	return NewSelectorWithLoadMore(items, title, describe, nil)
}

// NewSelectorWithLoadMore creates a picker whose "m" key appends the results
// of loadMore, skipping keys already shown.
func NewSelectorWithLoadMore[T any](items []T, title string, describe Describe[T], loadMore LoadMoreFunc[T]) SelectorModel[T] {
	m := SelectorModel[T]{
		describe: describe,
		loadMore: loadMore,
		seen:     make(map[string]bool),
	}
	listItems := m.fresh(items)

	l := list.New(listItems, choiceDelegate[T]{}, 80, min(4+len(listItems)*3, 30))
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle
	m.list = l
	return m
}

// fresh wraps the items not seen before.
func (m SelectorModel[T]) fresh(items []T) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		key, title, desc := m.describe(it)
		if m.seen[key] {
			continue
		}
		m.seen[key] = true
		out = append(out, choiceItem[T]{value: it, title: title, desc: desc})
	}
	return out
}

func (m SelectorModel[T]) Init() tea.Cmd {
	return nil
}

func (m SelectorModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(choiceItem[T]); ok {
				v := item.value
				m.selected = &v
			}
			return m, tea.Quit
		case "m", "M":
			if m.loadMore != nil && !m.noMoreResults {
				m.loading = true
				return m, m.doLoadMore()
			}
			return m, nil
		}
	case loadMoreMsg[T]:
		m.loading = false
		if msg.err != nil || len(msg.items) == 0 {
			m.noMoreResults = true
			return m, nil
		}
		newItems := m.fresh(msg.items)
		if len(newItems) == 0 {
			m.noMoreResults = true
			return m, nil
		}
		all := append(m.list.Items(), newItems...)
		cmd := m.list.SetItems(all)
		m.list.SetHeight(min(4+len(all)*3, 30))
		return m, cmd
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m SelectorModel[T]) doLoadMore() tea.Cmd {
	loadMore := m.loadMore
	return func() tea.Msg {
		items, err := loadMore()
		return loadMoreMsg[T]{items: items, err: err}
	}
}

func (m SelectorModel[T]) View() string {
	if m.selected != nil {
		_, title, _ := m.describe(*m.selected)
		return SuccessStyle.Render(fmt.Sprintf("\n  ✓ Selected: %s\n", title))
	}

	if m.quitting {
		return DimStyle.Render("\n  Cancelled.\n")
	}

	if m.loading {
		return "\n" + m.list.View() + "\n" + WarningStyle.Render("  Loading more results...")
	}

	helpParts := []string{"↑/↓: navigate", "enter: select"}
	if m.loadMore != nil && !m.noMoreResults {
		helpParts = append(helpParts, "m: more results")
	}
	helpParts = append(helpParts, "q/esc: cancel")
	help := HelpStyle.Render("  " + strings.Join(helpParts, " • "))

	return "\n" + m.list.View() + "\n" + help
}

// Selected returns the chosen value, or nil when the picker was cancelled.
func (m SelectorModel[T]) Selected() *T {
	return m.selected
}

// Len is the number of choices shown.
func (m SelectorModel[T]) Len() int { return len(m.list.Items()) }

func runSelector[T any](model SelectorModel[T]) (*T, error) {
	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(SelectorModel[T]).Selected(), nil
}

// DescribeResult renders a global search hit.
func DescribeResult(r cosmere.SearchResult) (key, title, desc string) {
	key = r.Type + "/" + r.ID
	parts := []string{r.Type}
	if r.Score > 0 {
		parts = append(parts, fmt.Sprintf("score %.2f", r.Score))
	}
	if d := strings.TrimSpace(r.Description); d != "" {
		parts = append(parts, d)
	}
	return key, r.Name, strings.Join(parts, " | ")
}

// RunSelector lets the user pick one global search result.
func RunSelector(results []cosmere.SearchResult) (*cosmere.SearchResult, error) {
	return RunSelectorWithLoadMore(results, nil)
}

// RunSelectorWithLoadMore is RunSelector with an "m" key that fetches more.
func RunSelectorWithLoadMore(results []cosmere.SearchResult, loadMore LoadMoreFunc[cosmere.SearchResult]) (*cosmere.SearchResult, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no results to select from")
	}
	return runSelector(NewSelectorWithLoadMore(results, "Select a result", DescribeResult, loadMore))
}

// DescribeEntity renders an entity with its kind's card text.
func DescribeEntity[T cosmere.Entity](kind Kind[T]) Describe[T] {
	return func(e T) (string, string, string) {
		title, meta := kind.Card(e)
		return e.EntityID(), title, meta
	}
}

// RunEntitySelector lets the user pick one entity from a page of results.
func RunEntitySelector[T cosmere.Entity](kind Kind[T], items []T, loadMore LoadMoreFunc[T]) (*T, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no %s to select from", kind.Resource)
	}
	title := "Select a " + strings.ReplaceAll(kind.Resource.Singular(), "-", " ")
	return runSelector(NewSelectorWithLoadMore(items, title, DescribeEntity(kind), loadMore))
}
