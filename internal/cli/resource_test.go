package cli

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmal071/cosmere/internal/apitest"
	"github.com/billmal071/cosmere/internal/cosmere"
	"github.com/billmal071/cosmere/internal/tui"
)

func TestParseFilters(t *testing.T) {
	got, err := parseFilters(cosmere.Characters, []string{"status=alive", " world_id = roshar ", "species="})
	require.NoError(t, err)
	want := cosmere.Filters{"status": "alive", "world_id": "roshar", "species": ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseFilters() mismatch (-want +got):\n%s", diff)
	}

	_, err = parseFilters(cosmere.Characters, []string{"status"})
	assert.EqualError(t, err, `invalid filter "status": expected key=value`)

	_, err = parseFilters(cosmere.Shards, []string{"=x"})
	assert.Error(t, err)

	_, err = parseFilters(cosmere.Shards, []string{"status=alive"})
	assert.ErrorContains(t, err, "unrecognized shard filter(s): status")
}

func TestDecodePayloadDefaultsID(t *testing.T) {
	for _, doc := range []string{`{"name":"Nightblood"}`, `{"id":"","name":"Nightblood"}`, `{"id":null,"name":"Nightblood"}`} {
		p, err := decodePayload[cosmere.WorldCreate]([]byte(doc), true)
		require.NoError(t, err, doc)
		assert.Equal(t, "Nightblood", p.Name)
		_, err = uuid.Parse(p.ID)
		assert.NoError(t, err, "id %q of %s", p.ID, doc)
	}

	p, err := decodePayload[cosmere.WorldCreate]([]byte(`{"id":"nalthis","name":"Nalthis"}`), true)
	require.NoError(t, err)
	assert.Equal(t, "nalthis", p.ID)
}

func TestDecodePayloadUpdate(t *testing.T) {
	p, err := decodePayload[cosmere.BookUpdate]([]byte(`{"word_count":300000}`), false)
	require.NoError(t, err)
	require.NotNil(t, p.WordCount)
	assert.Equal(t, 300000, *p.WordCount)
	assert.Nil(t, p.Title)

	_, err = decodePayload[cosmere.BookUpdate]([]byte(`{"id":"x"}`), false)
	assert.ErrorContains(t, err, `unknown field "id"`)
}

func TestCompleteFilters(t *testing.T) {
	complete := completeFilters(cosmere.Worlds)

	got, dir := complete(&cobra.Command{}, nil, "s")
	assert.Equal(t, []string{"system=", "search="}, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp|cobra.ShellCompDirectiveNoSpace, dir)

	got, _ = complete(&cobra.Command{}, nil, "system=")
	assert.Empty(t, got)
}

func TestCompleteBrowseResources(t *testing.T) {
	got, dir := completeBrowseArgs(&cobra.Command{}, nil, "")
	assert.Len(t, got, len(cosmere.Resources))
	assert.Contains(t, got, "magic-systems\tMagic Systems")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, dir)

	_, dir = completeBrowseArgs(&cobra.Command{}, []string{"spren"}, "")
	assert.Equal(t, cobra.ShellCompDirectiveError, dir)
}

func TestIDCompletions(t *testing.T) {
	srv := apitest.New(t)
	client := cosmere.NewHTTPClient(cosmere.Options{BaseURL: srv.URL(), Timeout: 2 * time.Second})

	got, dir := idCompletions(context.Background(), client, tui.CharacterKind, "ka")
	assert.Equal(t, []string{"kaladin\tKaladin"}, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, dir)

	req, ok := srv.LastRequest("GET", "/characters")
	require.True(t, ok)
	assert.Equal(t, "50", req.Query.Get("limit"))

	srv.Fail("/characters", 500)
	_, dir = idCompletions(context.Background(), client, tui.CharacterKind, "")
	assert.Equal(t, cobra.ShellCompDirectiveError, dir)
}
