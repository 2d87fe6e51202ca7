package cosmere

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Status is a character's life status.
type Status string

const (
	StatusAlive           Status = "alive"
	StatusDead            Status = "dead"
	StatusCognitiveShadow Status = "cognitive_shadow"
	StatusUnknown         Status = "unknown"
)

// Statuses lists the recognized status values in display order.
var Statuses = []Status{StatusAlive, StatusDead, StatusCognitiveShadow, StatusUnknown}

// JSONText holds a nested structure that the API may send either embedded
// (an object or array) or encoded as an opaque JSON string. The raw JSON
// text is kept; Map and List parse it on demand and never fail.
type JSONText string

// UnmarshalJSON accepts a JSON string (its contents are kept as-is) or any
// other JSON value (its text is kept).
func (t *JSONText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = JSONText(s)
		return nil
	}
	*t = JSONText(data)
	return nil
}

// MarshalJSON writes the text back as a JSON string, the form the API accepts
// on create and update.
func (t JSONText) MarshalJSON() ([]byte, error) {
	if t == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// Map parses the text as an object; malformed or absent text yields nil.
func (t JSONText) Map() map[string]any { return ParseJSONMap(string(t)) }

// List parses the text as a list of strings; malformed or absent text yields nil.
func (t JSONText) List() []string { return ParseStringList(string(t)) }

// Malformed reports whether the text is present but is not valid JSON.
func (t JSONText) Malformed() bool {
	s := strings.TrimSpace(string(t))
	return s != "" && !json.Valid([]byte(s))
}

// Character is a person in the Cosmere.
type Character struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Aliases               JSONText `json:"aliases,omitempty"`
	WorldOfOriginID       string   `json:"world_of_origin_id,omitempty"`
	Species               string   `json:"species,omitempty"`
	Status                Status   `json:"status,omitempty"`
	FirstAppearanceBookID string   `json:"first_appearance_book_id,omitempty"`
	Biography             string   `json:"biography,omitempty"`
	MagicAbilities        JSONText `json:"magic_abilities,omitempty"`
	Affiliations          JSONText `json:"affiliations,omitempty"`
	Significance          JSONText `json:"cosmere_significance,omitempty"`
	BookCount             int      `json:"book_count,omitempty"`
	RelationshipCount     int      `json:"relationship_count,omitempty"`
	CreatedAt             string   `json:"created_at,omitempty"`
	UpdatedAt             string   `json:"updated_at,omitempty"`
}

// Book is a published work.
type Book struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	SeriesID           string   `json:"series_id,omitempty"`
	WorldID            string   `json:"world_id,omitempty"`
	PublicationDate    string   `json:"publication_date,omitempty"`
	ChronologicalOrder *int     `json:"chronological_order,omitempty"`
	WordCount          *int     `json:"word_count,omitempty"`
	ISBN               string   `json:"isbn,omitempty"`
	Summary            string   `json:"summary,omitempty"`
	Significance       JSONText `json:"cosmere_significance,omitempty"`
	CreatedAt          string   `json:"created_at,omitempty"`
	UpdatedAt          string   `json:"updated_at,omitempty"`
}

// World is a planet or location.
type World struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	System          string   `json:"system,omitempty"`
	ShardID         string   `json:"shard_id,omitempty"`
	MagicSystems    JSONText `json:"magic_systems,omitempty"`
	Geography       JSONText `json:"geography,omitempty"`
	CultureNotes    string   `json:"culture_notes,omitempty"`
	TechnologyLevel string   `json:"technology_level,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
	UpdatedAt       string   `json:"updated_at,omitempty"`
}

// MagicSystem is an Investiture-based power system.
type MagicSystem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	WorldID     string   `json:"world_id,omitempty"`
	PowerSource string   `json:"power_source,omitempty"`
	Description string   `json:"description,omitempty"`
	Mechanics   JSONText `json:"mechanics,omitempty"`
	Limitations JSONText `json:"limitations,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// Series is an ordered collection of books.
type Series struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	WorldID     string `json:"world_id,omitempty"`
	Status      string `json:"status,omitempty"`
	Books       []Book `json:"books,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Shard is a fragment of Adonalsium.
type Shard struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Intent          string   `json:"intent"`
	VesselName      string   `json:"vessel_name,omitempty"`
	VesselStatus    string   `json:"vessel_status,omitempty"`
	WorldLocationID string   `json:"world_location_id,omitempty"`
	Description     string   `json:"description,omitempty"`
	SplinterInfo    JSONText `json:"splinter_info,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
	UpdatedAt       string   `json:"updated_at,omitempty"`
}

// Entity is implemented by every record type. The identifier is the only
// cross-reference mechanism between records.
type Entity interface {
	EntityID() string
	DisplayName() string
}

func (c Character) EntityID() string      { return c.ID }
func (c Character) DisplayName() string   { return c.Name }
func (b Book) EntityID() string           { return b.ID }
func (b Book) DisplayName() string        { return b.Title }
func (w World) EntityID() string          { return w.ID }
func (w World) DisplayName() string       { return w.Name }
func (m MagicSystem) EntityID() string    { return m.ID }
func (m MagicSystem) DisplayName() string { return m.Name }
func (s Series) EntityID() string         { return s.ID }
func (s Series) DisplayName() string      { return s.Name }
func (s Shard) EntityID() string          { return s.ID }
func (s Shard) DisplayName() string       { return s.Name }

// Page is the paginated envelope every list endpoint returns.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Skip    int  `json:"skip"`
	Limit   int  `json:"limit"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// SearchResult is a lightweight summary used for type-ahead suggestions.
type SearchResult struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	Score       float64 `json:"score,omitempty"`
}

// Refers reports whether the result points at entity id of resource res.
func (r SearchResult) Refers(res Resource, id string) bool {
	got, err := ParseResource(r.Type)
	return err == nil && got == res && r.ID == id
}

// WithoutEntity returns results minus those referring to id of res, and
// whether any were dropped.
func WithoutEntity(results []SearchResult, res Resource, id string) ([]SearchResult, bool) {
	kept := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if !r.Refers(res, id) {
			kept = append(kept, r)
		}
	}
	return kept, len(kept) != len(results)
}

// Relationship links a character to another one.
type Relationship struct {
	CharacterID        string `json:"character_id"`
	RelatedCharacterID string `json:"related_character_id"`
	RelationshipType   string `json:"relationship_type"`
	Description        string `json:"description,omitempty"`
	BookContext        *Book  `json:"book_context,omitempty"`
}

// Health is the response of the health endpoint.
type Health struct {
	Status    string `json:"status"`
	Service   string `json:"service,omitempty"`
	Version   string `json:"version,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
