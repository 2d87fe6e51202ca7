package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/billmal071/cosmere/internal/browse"
	"github.com/billmal071/cosmere/internal/config"
	"github.com/billmal071/cosmere/internal/cosmere"
	"github.com/billmal071/cosmere/internal/tui"
)

// resourceOps binds a resource to its typed create and update calls.
type resourceOps[T cosmere.Entity, C, U any] struct {
	kind   tui.Kind[T]
	create func(cosmere.Client, context.Context, C) (*T, error)
	update func(cosmere.Client, context.Context, string, U) (*T, error)
}

func resourceCmds() []*cobra.Command {
	return []*cobra.Command{
		newResourceCmd(resourceOps[cosmere.Character, cosmere.CharacterCreate, cosmere.CharacterUpdate]{
			tui.CharacterKind, cosmere.Client.CreateCharacter, cosmere.Client.UpdateCharacter,
		}),
		newResourceCmd(resourceOps[cosmere.Book, cosmere.BookCreate, cosmere.BookUpdate]{
			tui.BookKind, cosmere.Client.CreateBook, cosmere.Client.UpdateBook,
		}),
		newResourceCmd(resourceOps[cosmere.World, cosmere.WorldCreate, cosmere.WorldUpdate]{
			tui.WorldKind, cosmere.Client.CreateWorld, cosmere.Client.UpdateWorld,
		}),
		newResourceCmd(resourceOps[cosmere.MagicSystem, cosmere.MagicSystemCreate, cosmere.MagicSystemUpdate]{
			tui.MagicSystemKind, cosmere.Client.CreateMagicSystem, cosmere.Client.UpdateMagicSystem,
		}),
		newResourceCmd(resourceOps[cosmere.Series, cosmere.SeriesCreate, cosmere.SeriesUpdate]{
			tui.SeriesKind, cosmere.Client.CreateSeries, cosmere.Client.UpdateSeries,
		}),
		newResourceCmd(resourceOps[cosmere.Shard, cosmere.ShardCreate, cosmere.ShardUpdate]{
			tui.ShardKind, cosmere.Client.CreateShard, cosmere.Client.UpdateShard,
		}),
	}
}

func newResourceCmd[T cosmere.Entity, C, U any](s resourceOps[T, C, U]) *cobra.Command {
	r := s.kind.Resource
	title := strings.ToLower(r.Title())
	cmd := &cobra.Command{
		Use:   string(r),
		Short: "Manage " + title,
		Long: fmt.Sprintf(`List, show and edit %s.

Examples:
  cosmere %[2]s list
  cosmere %[2]s list --filter %[3]s=... --search term
  cosmere %[2]s get <id>
  cosmere %[2]s create -f %[4]s.json
  cosmere %[2]s update <id> -f changes.json
  cosmere %[2]s delete <id>`, title, r, r.FilterKeys()[0], r.Singular()),
	}
	if r.Singular() != string(r) {
		cmd.Aliases = []string{r.Singular()}
	}
	if alias := strings.ReplaceAll(string(r), "-", "_"); alias != string(r) {
		cmd.Aliases = append(cmd.Aliases, alias)
	}

	cmd.AddCommand(s.listCmd())
	cmd.AddCommand(s.getCmd())
	cmd.AddCommand(s.createCmd())
	cmd.AddCommand(s.updateCmd())
	cmd.AddCommand(s.deleteCmd())
	return cmd
}

func (s resourceOps[T, C, U]) getCmd() *cobra.Command {
	r := s.kind.Resource
	cmd := &cobra.Command{
		Use:               "get [id]",
		Short:             "Show one " + strings.ReplaceAll(r.Singular(), "-", " "),
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeIDs(r),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runGet(cmd, args[0])
		},
	}
	cmd.Flags().Bool("json", false, "print the raw entity as JSON")
	cmd.Flags().Bool("plain", false, "print long text without markdown styling")
	if s.kind.Related != nil {
		cmd.Flags().Bool("related", false, "also show the records linked to it")
	}
	return cmd
}

func (s resourceOps[T, C, U]) runGet(cmd *cobra.Command, id string) error {
	r := s.kind.Resource
	var state browse.DetailState[T]
	token := state.Load(id)
	client := newClient()
	entity, err := s.kind.Get(client, cmd.Context(), id)
	state.Apply(token, entity, err)

	switch state.Phase {
	case browse.PhaseNotFound:
		return fmt.Errorf("%s %q not found", r.Singular(), id)
	case browse.PhaseError:
		return fmt.Errorf("failed to get %s %q: %w", r.Singular(), id, state.Err)
	}

	if getBool(cmd, "json") {
		return printJSON(state.Entity)
	}
	e := *state.Entity
	styled := config.Get().UI.Markdown && !getBool(cmd, "plain")
	fmt.Fprintf(stdout, "%s (%s)\n\n", e.DisplayName(), e.EntityID())
	fmt.Fprintln(stdout, tui.RenderDetail(s.kind, e, styled, 80))

	if s.kind.Related == nil || !getBool(cmd, "related") {
		return nil
	}
	var related browse.RelatedState[tui.Section]
	token = related.Load()
	sections, err := s.kind.Related(client, cmd.Context(), e)
	related.Apply(token, sections, err)
	if related.Err != nil {
		return fmt.Errorf("failed to load records linked to %s %q: %w", r.Singular(), id, related.Err)
	}
	if out := tui.RenderRelated(related.Items, styled, 80); out != "" {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, out)
	}
	return nil
}

func (s resourceOps[T, C, U]) createCmd() *cobra.Command {
	r := s.kind.Resource
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + strings.ReplaceAll(r.Singular(), "-", " ") + " from a JSON file",
		Long: fmt.Sprintf(`Create a %s from a JSON document.

Field names follow the API. A missing "id" is filled with a random UUID.
Unknown fields are rejected before anything is sent.

Examples:
  cosmere %s create -f new.json
  cat new.json | cosmere %s create -f -`, r.Singular(), r, r),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(cmd)
			if err != nil {
				return err
			}
			payload, err := decodePayload[C](data, true)
			if err != nil {
				return err
			}
			created, err := s.create(newClient(), cmd.Context(), payload)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", r.Singular(), err)
			}
			if getBool(cmd, "json") {
				return printJSON(created)
			}
			Successf("Created %s %s (%s)", r.Singular(), (*created).DisplayName(), (*created).EntityID())
			return nil
		},
	}
	addPayloadFlags(cmd)
	return cmd
}

func (s resourceOps[T, C, U]) updateCmd() *cobra.Command {
	r := s.kind.Resource
	cmd := &cobra.Command{
		Use:               "update [id]",
		Short:             "Update a " + strings.ReplaceAll(r.Singular(), "-", " ") + " from a JSON file",
		Long:              "Apply the fields of a JSON document to an existing " + r.Singular() + ". Fields left out are unchanged.",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeIDs(r),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(cmd)
			if err != nil {
				return err
			}
			payload, err := decodePayload[U](data, false)
			if err != nil {
				return err
			}
			updated, err := s.update(newClient(), cmd.Context(), args[0], payload)
			if errors.Is(err, cosmere.ErrNotFound) {
				return fmt.Errorf("%s %q not found", r.Singular(), args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to update %s %q: %w", r.Singular(), args[0], err)
			}
			if getBool(cmd, "json") {
				return printJSON(updated)
			}
			Successf("Updated %s %s (%s)", r.Singular(), (*updated).DisplayName(), (*updated).EntityID())
			return nil
		},
	}
	addPayloadFlags(cmd)
	return cmd
}

func (s resourceOps[T, C, U]) deleteCmd() *cobra.Command {
	r := s.kind.Resource
	cmd := &cobra.Command{
		Use:               "delete [id]",
		Short:             "Delete a " + strings.ReplaceAll(r.Singular(), "-", " "),
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeIDs(r),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !getBool(cmd, "yes") && !confirm(cmd, fmt.Sprintf("Delete %s %q? This cannot be undone.", r.Singular(), id)) {
				fmt.Fprintln(stdout, "Cancelled.")
				return nil
			}
			err := cosmere.Delete(cmd.Context(), newClient(), r, id)
			if errors.Is(err, cosmere.ErrNotFound) {
				return fmt.Errorf("%s %q not found", r.Singular(), id)
			}
			if err != nil {
				return fmt.Errorf("failed to delete %s %q: %w", r.Singular(), id, err)
			}
			Successf("Deleted %s %s", r.Singular(), id)
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func addPayloadFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "JSON document to send (- for stdin)")
	cmd.Flags().Bool("json", false, "print the API response as JSON")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagFilename("file", "json")
}

// readPayload reads the --file document.
func readPayload(cmd *cobra.Command) ([]byte, error) {
	path := getString(cmd, "file")
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("payload is empty")
	}
	return data, nil
}

// decodePayload strictly decodes data into P. With defaultID, a document
// without an id gets a random UUID.
func decodePayload[P any](data []byte, defaultID bool) (P, error) {
	var payload P
	if defaultID {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return payload, fmt.Errorf("invalid JSON payload: %w", err)
		}
		if raw, ok := fields["id"]; !ok || string(raw) == `""` || string(raw) == "null" {
			id, _ := json.Marshal(uuid.NewString())
			fields["id"] = id
			data, _ = json.Marshal(fields)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return payload, fmt.Errorf("invalid payload: %w", err)
	}
	return payload, nil
}

// confirm asks a yes/no question on stdin. Anything but y/yes is no.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(stdout, "%s [y/N]: ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getBool(cmd *cobra.Command, name string) bool {
	val, _ := cmd.Flags().GetBool(name)
	return val
}
