package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billmal071/cosmere/internal/browse"
	"github.com/billmal071/cosmere/internal/config"
	"github.com/billmal071/cosmere/internal/cosmere"
	"github.com/billmal071/cosmere/internal/tui"
)

func (s resourceOps[T, C, U]) listCmd() *cobra.Command {
	r := s.kind.Resource
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + strings.ToLower(r.Title()),
		Long: fmt.Sprintf(`List %s one page at a time.

Filters: %s

Examples:
  cosmere %s list
  cosmere %s list -F %s=... -p 2
  cosmere %s list --search term --pick`,
			strings.ToLower(r.Title()), strings.Join(r.FilterKeys(), ", "),
			r, r, r.FilterKeys()[0], r),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runList(cmd)
		},
	}
	cmd.Flags().StringArrayP("filter", "F", nil, "filter as key=value (repeatable)")
	cmd.Flags().StringP("search", "s", "", "free-text search within the list")
	cmd.Flags().IntP("page", "p", 1, "page number")
	cmd.Flags().IntP("limit", "n", 0, "page size (default from config)")
	cmd.Flags().Bool("json", false, "print the page as JSON")
	cmd.Flags().Bool("pick", false, "choose an entry interactively and show it")
	_ = cmd.RegisterFlagCompletionFunc("filter", completeFilters(r))
	return cmd
}

func (s resourceOps[T, C, U]) runList(cmd *cobra.Command) error {
	r := s.kind.Resource
	raw, _ := cmd.Flags().GetStringArray("filter")
	filters, err := parseFilters(r, raw)
	if err != nil {
		return err
	}
	if q := getString(cmd, "search"); q != "" {
		filters["search"] = q
	}
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = config.Get().API.PageSize
	}

	client := newClient()
	state := browse.NewListState[T](r, limit)
	if err := s.fetch(cmd.Context(), client, state, state.Load(filters, page)); err != nil {
		return fmt.Errorf("failed to list %s: %w", r, err)
	}

	if getBool(cmd, "json") {
		return printJSON(cosmere.Page[T]{
			Items:   state.Items,
			Total:   state.Total,
			Skip:    (state.Page - 1) * state.PageSize,
			Limit:   state.PageSize,
			HasNext: state.HasNext,
			HasPrev: state.HasPrev,
		})
	}

	if state.Empty() {
		if len(state.Filters) > 0 {
			fmt.Fprintf(stdout, "No %s match %s.\n", r, state.Filters)
		} else {
			fmt.Fprintf(stdout, "No %s found.\n", r)
		}
		return nil
	}

	if getBool(cmd, "pick") {
		return s.pick(cmd, client, state)
	}

	fmt.Fprintf(stdout, "%s (%d)", r.Title(), state.Total)
	if len(state.Filters) > 0 {
		fmt.Fprintf(stdout, " [%s]", state.Filters)
	}
	fmt.Fprint(stdout, ":\n\n")
	first := (state.Page-1)*state.PageSize + 1
	for i, item := range state.Items {
		title, meta := s.kind.Card(item)
		fmt.Fprintf(stdout, "%3d. %s\n", first+i, title)
		if meta != "" {
			fmt.Fprintf(stdout, "     %s\n", meta)
		}
		fmt.Fprintf(stdout, "     ID: %s\n\n", item.EntityID())
	}

	fmt.Fprintf(stdout, "Page %d of %d", state.Page, state.PageCount())
	if state.CanNext() {
		fmt.Fprintf(stdout, "  (next: cosmere %s list -p %d)", r, state.Page+1)
	}
	fmt.Fprintln(stdout)
	return nil
}

func (s resourceOps[T, C, U]) fetch(ctx context.Context, client cosmere.Client, state *browse.ListState[T], req browse.ListRequest) error {
	page, err := s.kind.List(client, ctx, req.Options)
	state.Apply(req.Token, page, err)
	return state.Err
}

// pick runs the entity selector over the loaded page, loading further pages
// on request, and prints the chosen entity.
func (s resourceOps[T, C, U]) pick(cmd *cobra.Command, client cosmere.Client, state *browse.ListState[T]) error {
	loadMore := func() ([]T, error) {
		req, ok := state.Next()
		if !ok {
			return nil, nil
		}
		if err := s.fetch(cmd.Context(), client, state, req); err != nil {
			return nil, err
		}
		return state.Items, nil
	}

	selected, err := tui.RunEntitySelector(s.kind, state.Items, loadMore)
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}
	if selected == nil {
		fmt.Fprintln(stdout, "No selection made.")
		return nil
	}
	return s.runGet(cmd, (*selected).EntityID())
}

// parseFilters turns key=value pairs into filters of r. Unknown keys are
// rejected.
func parseFilters(r cosmere.Resource, pairs []string) (cosmere.Filters, error) {
	filters := cosmere.Filters{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", p)
		}
		filters[key] = strings.TrimSpace(value)
	}
	if err := filters.Validate(r); err != nil {
		return nil, err
	}
	return filters, nil
}
