package tui

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/billmal071/cosmere/internal/apitest"
	"github.com/billmal071/cosmere/internal/browse"
	"github.com/billmal071/cosmere/internal/cosmere"
)

func loadedDetail(t *testing.T, srv *apitest.Server, id string) *DetailModel[cosmere.Character] {
	t.Helper()
	m := NewDetailModel(CharacterKind, testEnv(t, srv, nil))
	m.SetSize(100, 40)
	pump(t, m.Update, m.Load(id))
	return m
}

func TestDetailModelRendersEntity(t *testing.T) {
	srv := apitest.New(t)
	m := loadedDetail(t, srv, "vin")

	require.Equal(t, browse.PhaseLoaded, m.State().Phase)
	assert.Equal(t, "Vin", m.Title())
	view := m.View()
	assert.Contains(t, view, "Vin")
	assert.Contains(t, view, "Species")
	assert.Contains(t, view, "Biography")
}

func TestDetailModelNotFound(t *testing.T) {
	srv := apitest.New(t)
	m := loadedDetail(t, srv, "nobody")

	assert.Equal(t, browse.PhaseNotFound, m.State().Phase)
	assert.Contains(t, m.View(), "Character not found")
	assert.NotContains(t, m.View(), "retry")
}

func TestDetailModelErrorAndRetry(t *testing.T) {
	srv := apitest.New(t)
	srv.Fail("/characters/vin", http.StatusBadGateway)
	m := loadedDetail(t, srv, "vin")

	assert.Equal(t, browse.PhaseError, m.State().Phase)
	assert.Contains(t, m.View(), "Failed to load character (502)")
	assert.Contains(t, m.View(), "press r to retry")

	srv.Fail("/characters/vin", 0)
	pump(t, m.Update, m.Update(key("r")))
	assert.Equal(t, browse.PhaseLoaded, m.State().Phase)
	assert.Equal(t, 2, srv.Calls(http.MethodGet, "/characters/vin"))
}

func TestDetailModelDeclinedDeleteSendsNothing(t *testing.T) {
	srv := apitest.New(t)
	m := loadedDetail(t, srv, "kaladin")

	assert.Nil(t, m.Update(key("d")))
	require.True(t, m.IsConfirming())
	assert.Contains(t, m.View(), "This cannot be undone")

	assert.Nil(t, m.Update(key("n")))
	assert.False(t, m.IsConfirming())
	assert.Zero(t, srv.Calls(http.MethodDelete, "/characters/kaladin"))
	assert.True(t, srv.Has(cosmere.Characters, "kaladin"))
}

func TestDetailModelConfirmedDelete(t *testing.T) {
	srv := apitest.New(t)
	m := loadedDetail(t, srv, "kaladin")

	m.Update(key("d"))
	msgs := pump(t, m.Update, m.Update(key("y")))

	assert.Equal(t, 1, srv.Calls(http.MethodDelete, "/characters/kaladin"))
	assert.False(t, srv.Has(cosmere.Characters, "kaladin"))
	deleted, ok := find[EntityDeletedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, EntityDeletedMsg{Resource: cosmere.Characters, ID: "kaladin"}, deleted)
	assert.True(t, m.State().Deleted)
}

func TestDetailModelFailedDeleteStaysPut(t *testing.T) {
	srv := apitest.New(t)
	m := loadedDetail(t, srv, "kaladin")
	srv.Fail("/characters/kaladin", http.StatusMethodNotAllowed)

	m.Update(key("d"))
	msgs := pump(t, m.Update, m.Update(key("y")))

	_, ok := find[EntityDeletedMsg](msgs)
	assert.False(t, ok)
	assert.False(t, m.State().Deleted)
	assert.Equal(t, browse.PhaseLoaded, m.State().Phase)
	assert.Contains(t, m.View(), "Failed to delete character (405)")
}

func TestDetailModelUnauthorizedRaisesLoginPrompt(t *testing.T) {
	srv := apitest.New(t)
	srv.RequireToken("secret")
	m := NewDetailModel(CharacterKind, testEnv(t, srv, nil))
	msgs := pump(t, m.Update, m.Load("vin"))

	_, ok := find[AuthRequiredMsg](msgs)
	assert.True(t, ok)
	assert.Equal(t, cosmere.KindUnauthorized, cosmere.Classify(m.State().Err))
}

func TestDetailModelCloseDropsLateResponse(t *testing.T) {
	srv := apitest.New(t)
	m := NewDetailModel(CharacterKind, testEnv(t, srv, nil))

	cmd := m.Load("vin")
	m.Close()
	for _, msg := range exec(cmd) {
		m.Update(msg)
	}
	assert.NotEqual(t, browse.PhaseLoaded, m.State().Phase)
}

func TestDetailModelLogsUnparseableFields(t *testing.T) {
	srv := apitest.New(t)
	srv.Put(cosmere.Characters, map[string]any{
		"id": "wayne", "name": "Wayne", "status": "alive",
		"aliases": "Wax's deputy", "magic_abilities": `{"Bendalloy":"Slider"}`,
	})
	core, logs := observer.New(zap.DebugLevel)
	env := testEnv(t, srv, nil)
	env.Logger = zap.New(core)
	m := NewDetailModel(CharacterKind, env)
	m.SetSize(100, 40)
	pump(t, m.Update, m.Load("wayne"))

	require.Equal(t, browse.PhaseLoaded, m.State().Phase)
	assert.Contains(t, m.View(), "Bendalloy")
	entries := logs.FilterMessage("unparseable field").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "aliases", entries[0].ContextMap()["field"])
	assert.Equal(t, "wayne", entries[0].ContextMap()["id"])
}

func TestDetailModelShowsCharacterLinks(t *testing.T) {
	srv := apitest.New(t)
	m := NewDetailModel(CharacterKind, testEnv(t, srv, nil))
	m.SetSize(100, 80)
	pump(t, m.Update, m.Load("vin"))

	require.Equal(t, browse.PhaseLoaded, m.State().Phase)
	require.NoError(t, m.Related().Err)
	assert.False(t, m.Related().Loading)
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/characters/vin/relationships"))
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/characters/vin/appearances"))

	view := m.View()
	assert.Contains(t, view, "Relationships")
	assert.Contains(t, view, "mentor: kelsier · Taught her Allomancy (The Final Empire)")
	assert.Contains(t, view, "Appears in")
	assert.Contains(t, view, "The Well of Ascension (2007)")
}

func TestDetailModelShowsWorldLinks(t *testing.T) {
	srv := apitest.New(t)
	m := NewDetailModel(WorldKind, testEnv(t, srv, nil))
	m.SetSize(100, 80)
	pump(t, m.Update, m.Load("roshar"))

	view := m.View()
	assert.Contains(t, view, "Kaladin · Alive")
	assert.Contains(t, view, "Gavilar Kholin · Dead")
	assert.Contains(t, view, "Surgebinding · end-positive")
	assert.Contains(t, view, "Books set here")
	assert.Contains(t, view, "The Way of Kings (2010)")
}

func TestDetailModelFetchesMissingSeriesBooks(t *testing.T) {
	srv := apitest.New(t)
	env := testEnv(t, srv, nil)

	embedded := NewDetailModel(SeriesKind, env)
	embedded.SetSize(100, 80)
	pump(t, embedded.Update, embedded.Load("mistborn-era-1"))
	assert.Zero(t, srv.Calls(http.MethodGet, "/books/series/mistborn-era-1"), "books came with the series")

	bare := NewDetailModel(SeriesKind, env)
	bare.SetSize(100, 80)
	pump(t, bare.Update, bare.Load("stormlight"))
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/books/series/stormlight"))
	assert.Contains(t, bare.View(), "The Way of Kings (2010)")
}

func TestDetailModelLinkFailureKeepsEntity(t *testing.T) {
	srv := apitest.New(t)
	srv.Fail("/characters/vin/appearances", http.StatusInternalServerError)
	m := NewDetailModel(CharacterKind, testEnv(t, srv, nil))
	m.SetSize(100, 80)
	pump(t, m.Update, m.Load("vin"))

	assert.Equal(t, browse.PhaseLoaded, m.State().Phase)
	require.Error(t, m.Related().Err)
	view := m.View()
	assert.Contains(t, view, "Biography")
	assert.Contains(t, view, "Failed to load related records (500)")

	srv.Fail("/characters/vin/appearances", 0)
	pump(t, m.Update, m.Update(key("r")))
	assert.NoError(t, m.Related().Err)
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/characters/vin"), "only the links are fetched again")
	assert.Contains(t, m.View(), "Appears in")
}

func TestDetailModelDropsLinksOfPreviousEntity(t *testing.T) {
	srv := apitest.New(t)
	m := NewDetailModel(CharacterKind, testEnv(t, srv, nil))
	m.SetSize(100, 80)
	pump(t, m.Update, m.Load("vin"))
	stale := m.fetchRelated()

	pump(t, m.Update, m.Load("kaladin"))
	for _, msg := range exec(stale) {
		m.Update(msg)
	}
	assert.Contains(t, m.View(), "sworn to: dalinar")
	assert.NotContains(t, m.View(), "kelsier")
}
