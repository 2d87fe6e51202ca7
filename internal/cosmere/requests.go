package cosmere

import (
	"errors"
	"strings"
)

// Create and update payloads. Creates carry every required field; updates use
// pointers so only the fields a caller sets reach the wire.

type CharacterCreate struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Aliases               JSONText `json:"aliases,omitempty"`
	WorldOfOriginID       string   `json:"world_of_origin_id"`
	Species               string   `json:"species,omitempty"`
	Status                Status   `json:"status,omitempty"`
	FirstAppearanceBookID string   `json:"first_appearance_book_id,omitempty"`
	Biography             string   `json:"biography,omitempty"`
	MagicAbilities        JSONText `json:"magic_abilities,omitempty"`
	Affiliations          JSONText `json:"affiliations,omitempty"`
	Significance          JSONText `json:"cosmere_significance,omitempty"`
}

type CharacterUpdate struct {
	Name                  *string   `json:"name,omitempty"`
	Aliases               *JSONText `json:"aliases,omitempty"`
	WorldOfOriginID       *string   `json:"world_of_origin_id,omitempty"`
	Species               *string   `json:"species,omitempty"`
	Status                *Status   `json:"status,omitempty"`
	FirstAppearanceBookID *string   `json:"first_appearance_book_id,omitempty"`
	Biography             *string   `json:"biography,omitempty"`
	MagicAbilities        *JSONText `json:"magic_abilities,omitempty"`
	Affiliations          *JSONText `json:"affiliations,omitempty"`
	Significance          *JSONText `json:"cosmere_significance,omitempty"`
}

type BookCreate struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	WorldID            string   `json:"world_id"`
	SeriesID           string   `json:"series_id,omitempty"`
	ISBN               string   `json:"isbn,omitempty"`
	PublicationDate    string   `json:"publication_date,omitempty"`
	WordCount          *int     `json:"word_count,omitempty"`
	ChronologicalOrder *int     `json:"chronological_order,omitempty"`
	Summary            string   `json:"summary,omitempty"`
	Significance       JSONText `json:"cosmere_significance,omitempty"`
}

type BookUpdate struct {
	Title              *string   `json:"title,omitempty"`
	WorldID            *string   `json:"world_id,omitempty"`
	SeriesID           *string   `json:"series_id,omitempty"`
	ISBN               *string   `json:"isbn,omitempty"`
	PublicationDate    *string   `json:"publication_date,omitempty"`
	WordCount          *int      `json:"word_count,omitempty"`
	ChronologicalOrder *int      `json:"chronological_order,omitempty"`
	Summary            *string   `json:"summary,omitempty"`
	Significance       *JSONText `json:"cosmere_significance,omitempty"`
}

type WorldCreate struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	System          string   `json:"system,omitempty"`
	ShardID         string   `json:"shard_id,omitempty"`
	Geography       JSONText `json:"geography,omitempty"`
	CultureNotes    string   `json:"culture_notes,omitempty"`
	TechnologyLevel string   `json:"technology_level,omitempty"`
}

type WorldUpdate struct {
	Name            *string   `json:"name,omitempty"`
	System          *string   `json:"system,omitempty"`
	ShardID         *string   `json:"shard_id,omitempty"`
	Geography       *JSONText `json:"geography,omitempty"`
	CultureNotes    *string   `json:"culture_notes,omitempty"`
	TechnologyLevel *string   `json:"technology_level,omitempty"`
}

type MagicSystemCreate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	WorldID     string   `json:"world_id"`
	PowerSource string   `json:"power_source,omitempty"`
	Description string   `json:"description,omitempty"`
	Mechanics   JSONText `json:"mechanics,omitempty"`
	Limitations JSONText `json:"limitations,omitempty"`
}

type MagicSystemUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Type        *string   `json:"type,omitempty"`
	WorldID     *string   `json:"world_id,omitempty"`
	PowerSource *string   `json:"power_source,omitempty"`
	Description *string   `json:"description,omitempty"`
	Mechanics   *JSONText `json:"mechanics,omitempty"`
	Limitations *JSONText `json:"limitations,omitempty"`
}

type SeriesCreate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	WorldID     string `json:"world_id,omitempty"`
	Status      string `json:"status,omitempty"`
}

type SeriesUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	WorldID     *string `json:"world_id,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type ShardCreate struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Intent          string   `json:"intent"`
	VesselName      string   `json:"vessel_name,omitempty"`
	VesselStatus    string   `json:"vessel_status,omitempty"`
	WorldLocationID string   `json:"world_location_id,omitempty"`
	Description     string   `json:"description,omitempty"`
	SplinterInfo    JSONText `json:"splinter_info,omitempty"`
}

type ShardUpdate struct {
	Name            *string   `json:"name,omitempty"`
	Intent          *string   `json:"intent,omitempty"`
	VesselName      *string   `json:"vessel_name,omitempty"`
	VesselStatus    *string   `json:"vessel_status,omitempty"`
	WorldLocationID *string   `json:"world_location_id,omitempty"`
	Description     *string   `json:"description,omitempty"`
	SplinterInfo    *JSONText `json:"splinter_info,omitempty"`
}

// Validator is implemented by payloads that can check their required fields
// before they are sent.
type Validator interface {
	Validate() error
}

func required(fields ...[2]string) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) > 0 {
		return errors.New("missing required field(s): " + strings.Join(missing, ", "))
	}
	return nil
}

func (c CharacterCreate) Validate() error {
	if err := required([2]string{"id", c.ID}, [2]string{"name", c.Name}, [2]string{"world_of_origin_id", c.WorldOfOriginID}); err != nil {
		return err
	}
	if c.Status != "" && !validStatus(c.Status) {
		return errors.New("invalid status: " + string(c.Status))
	}
	return nil
}

func (c CharacterUpdate) Validate() error {
	if c.Status != nil && !validStatus(*c.Status) {
		return errors.New("invalid status: " + string(*c.Status))
	}
	return nil
}

func (b BookCreate) Validate() error {
	return required([2]string{"id", b.ID}, [2]string{"title", b.Title}, [2]string{"world_id", b.WorldID})
}

func (w WorldCreate) Validate() error {
	return required([2]string{"id", w.ID}, [2]string{"name", w.Name})
}

func (m MagicSystemCreate) Validate() error {
	return required([2]string{"id", m.ID}, [2]string{"name", m.Name}, [2]string{"type", m.Type}, [2]string{"world_id", m.WorldID})
}

func (s SeriesCreate) Validate() error {
	return required([2]string{"id", s.ID}, [2]string{"name", s.Name})
}

func (s ShardCreate) Validate() error {
	return required([2]string{"id", s.ID}, [2]string{"name", s.Name}, [2]string{"intent", s.Intent})
}

func validStatus(s Status) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}
