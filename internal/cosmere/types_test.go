package cosmere

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONTextAcceptsBothForms(t *testing.T) {
	var embedded, encoded Character
	require.NoError(t, json.Unmarshal([]byte(`{"id":"vin","name":"Vin","magic_abilities":{"Allomancy":{"metals":["iron"]}}}`), &embedded))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"vin","name":"Vin","magic_abilities":"{\"Allomancy\":{\"metals\":[\"iron\"]}}"}`), &encoded))

	want := map[string]any{"Allomancy": map[string]any{"metals": []any{"iron"}}}
	if diff := cmp.Diff(want, embedded.MagicAbilities.Map()); diff != "" {
		t.Errorf("embedded abilities mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, encoded.MagicAbilities.Map()); diff != "" {
		t.Errorf("encoded abilities mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONTextMalformedIsAbsent(t *testing.T) {
	var c Character
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","name":"X","magic_abilities":"{not json","aliases":"oops"}`), &c))

	assert.Nil(t, c.MagicAbilities.Map())
	assert.Nil(t, c.Aliases.List())

	p := ParseCharacter(c)
	assert.False(t, p.HasMagic())
	assert.Nil(t, p.Abilities)
}

func TestMalformedFields(t *testing.T) {
	var c Character
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","name":"X","magic_abilities":"{not json","aliases":"oops","affiliations":["Crewe"]}`), &c))

	assert.Equal(t, []string{"aliases", "magic_abilities"}, MalformedFields(c))
	assert.Equal(t, []string{"aliases", "magic_abilities"}, MalformedFields(&c))
	assert.Empty(t, MalformedFields(Character{ID: "y", Significance: `{"shard":"none"}`}))
	assert.Nil(t, MalformedFields("not a struct"))
}

func TestJSONTextNull(t *testing.T) {
	var c Character
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","name":"X","magic_abilities":null}`), &c))
	assert.Equal(t, JSONText(""), c.MagicAbilities)
	assert.Nil(t, c.MagicAbilities.Map())
}

func TestJSONTextMarshalsAsString(t *testing.T) {
	b, err := json.Marshal(CharacterCreate{ID: "x", Name: "X", WorldOfOriginID: "w", MagicAbilities: `{"a":1}`})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"magic_abilities":"{\"a\":1}"`)
	assert.NotContains(t, string(b), "aliases")
}

func TestParseStringList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{`["Wit","Cephandrius"]`, []string{"Wit", "Cephandrius"}},
		{`{"b":1,"a":2}`, []string{"a", "b"}},
		{`[1,null,"x"]`, []string{"1", "x"}},
		{``, nil},
		{`"just a string"`, nil},
		{`[broken`, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseStringList(tt.in), "input %q", tt.in)
	}
}

func TestParseJSONMapRejectsNonObjects(t *testing.T) {
	assert.Nil(t, ParseJSONMap(`[1,2]`))
	assert.Nil(t, ParseJSONMap(`42`))
	assert.Nil(t, ParseJSONMap(`   `))
	assert.Equal(t, map[string]any{}, ParseJSONMap(`{}`))
}

func TestParseCharacter(t *testing.T) {
	p := ParseCharacter(Character{
		Status:         StatusAlive,
		Aliases:        `["Stormblessed"]`,
		MagicAbilities: `{"Surgebinding":{"order":"Windrunner"}}`,
		Affiliations:   `{"Bridge Four":"captain"}`,
	})
	assert.True(t, p.IsAlive())
	assert.True(t, p.HasMagic())
	assert.Equal(t, []string{"Stormblessed"}, p.AliasList)
	assert.Equal(t, "captain", p.AffiliationMap["Bridge Four"])
	assert.Nil(t, p.SignificanceMap)
}

func TestDisplayHelpers(t *testing.T) {
	assert.Equal(t, "Alive", StatusDisplay(StatusAlive))
	assert.Equal(t, "Cognitive Shadow", StatusDisplay("COGNITIVE_SHADOW"))
	assert.Equal(t, "Unknown", StatusDisplay("weird"))
	assert.Equal(t, "?", StatusIcon(""))

	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Windr...", Truncate("Windrunner", 8))
	assert.Equal(t, "Ví", Truncate("Vín", 2))
	assert.Equal(t, "any", Truncate("any", 0))

	assert.Equal(t, "Unknown", FormatDate(""))
	assert.Equal(t, "Jul 17, 2006", FormatDate("2006-07-17"))
	assert.Equal(t, "Aug 31, 2010", FormatDate("2010-08-31T00:00:00Z"))
	assert.Equal(t, "someday", FormatDate("someday"))

	assert.Equal(t, 2006, PublicationYear("2006-07-17"))
	assert.Equal(t, 0, PublicationYear("n/a"))
}

func TestEntity(t *testing.T) {
	entities := []Entity{
		Character{ID: "vin", Name: "Vin"},
		Book{ID: "b", Title: "The Final Empire"},
		World{ID: "w", Name: "Scadrial"},
		MagicSystem{ID: "m", Name: "Allomancy"},
		Series{ID: "s", Name: "Mistborn"},
		Shard{ID: "h", Name: "Honor"},
	}
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		assert.NotEmpty(t, e.EntityID())
		names = append(names, e.DisplayName())
	}
	assert.Equal(t, []string{"Vin", "The Final Empire", "Scadrial", "Allomancy", "Mistborn", "Honor"}, names)
}
