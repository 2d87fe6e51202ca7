package cosmere

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Resource names an API resource family.
type Resource string

const (
	Characters   Resource = "characters"
	Books        Resource = "books"
	Worlds       Resource = "worlds"
	MagicSystems Resource = "magic-systems"
	SeriesList   Resource = "series"
	Shards       Resource = "shards"
)

// Resources lists every resource family in navigation order.
var Resources = []Resource{Characters, Books, Worlds, MagicSystems, SeriesList, Shards}

var filterKeys = map[Resource][]string{
	Characters:   {"world_id", "status", "species", "magic_ability", "affiliation", "search"},
	Books:        {"series_id", "world_id", "publication_year", "search"},
	Worlds:       {"system", "technology_level", "has_shard", "search"},
	MagicSystems: {"world_id", "type", "power_source", "search"},
	SeriesList:   {"world_id", "status", "search"},
	Shards:       {"intent", "vessel_status", "search"},
}

// ParseResource resolves a user-supplied name ("magic_systems", "Books", ...).
func ParseResource(s string) (Resource, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", "-")
	for _, r := range Resources {
		if norm == string(r) || norm == r.Singular() {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown resource %q", s)
}

// Path is the URL path segment of the resource.
func (r Resource) Path() string { return "/" + string(r) }

// Title is the display name of the resource.
func (r Resource) Title() string {
	switch r {
	case MagicSystems:
		return "Magic Systems"
	case SeriesList:
		return "Series"
	default:
		s := string(r)
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

// Singular is the singular form used in CLI arguments and messages.
func (r Resource) Singular() string {
	switch r {
	case SeriesList:
		return "series"
	case MagicSystems:
		return "magic-system"
	default:
		return strings.TrimSuffix(string(r), "s")
	}
}

// FilterKeys lists the query parameters the resource recognizes.
func (r Resource) FilterKeys() []string {
	return append([]string(nil), filterKeys[r]...)
}

// Recognizes reports whether key is a filter of the resource.
func (r Resource) Recognizes(key string) bool {
	for _, k := range filterKeys[r] {
		if k == key {
			return true
		}
	}
	return false
}

// Filters maps recognized filter keys to values. An empty value means the
// filter is not applied.
type Filters map[string]string

// Merge returns a new set with other's values layered over f. Keys set to ""
// in other are removed.
func (f Filters) Merge(other Filters) Filters {
	out := make(Filters, len(f)+len(other))
	for k, v := range f {
		if v != "" {
			out[k] = v
		}
	}
	for k, v := range other {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Clone copies f.
func (f Filters) Clone() Filters { return Filters(nil).Merge(f) }

// Validate rejects keys the resource does not recognize.
func (f Filters) Validate(r Resource) error {
	var bad []string
	for k := range f {
		if !r.Recognizes(k) {
			bad = append(bad, k)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("unrecognized %s filter(s): %s (valid: %s)",
			r.Singular(), strings.Join(bad, ", "), strings.Join(r.FilterKeys(), ", "))
	}
	return nil
}

// String renders active filters as "k=v, k=v" in key order.
func (f Filters) String() string {
	keys := make([]string, 0, len(f))
	for k, v := range f {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + f[k]
	}
	return strings.Join(parts, ", ")
}

// ListOptions selects one page of a filtered collection.
type ListOptions struct {
	Filters Filters
	Skip    int
	Limit   int
}

// Query encodes the options as URL query parameters.
func (o ListOptions) Query() url.Values {
	q := url.Values{}
	for k, v := range o.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	if o.Skip > 0 {
		q.Set("skip", strconv.Itoa(o.Skip))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	return q
}

// CharacterFilters are the typed character filters.
type CharacterFilters struct {
	WorldID      string
	Status       Status
	Species      string
	MagicAbility string
	Affiliation  string
	Search       string
}

func (f CharacterFilters) Filters() Filters {
	return Filters{
		"world_id":      f.WorldID,
		"status":        string(f.Status),
		"species":       f.Species,
		"magic_ability": f.MagicAbility,
		"affiliation":   f.Affiliation,
		"search":        f.Search,
	}.Clone()
}

// BookFilters are the typed book filters.
type BookFilters struct {
	SeriesID        string
	WorldID         string
	PublicationYear int
	Search          string
}

func (f BookFilters) Filters() Filters {
	out := Filters{
		"series_id": f.SeriesID,
		"world_id":  f.WorldID,
		"search":    f.Search,
	}
	if f.PublicationYear > 0 {
		out["publication_year"] = strconv.Itoa(f.PublicationYear)
	}
	return out.Clone()
}

// WorldFilters are the typed world filters.
type WorldFilters struct {
	System          string
	TechnologyLevel string
	HasShard        *bool
	Search          string
}

func (f WorldFilters) Filters() Filters {
	out := Filters{
		"system":           f.System,
		"technology_level": f.TechnologyLevel,
		"search":           f.Search,
	}
	if f.HasShard != nil {
		out["has_shard"] = strconv.FormatBool(*f.HasShard)
	}
	return out.Clone()
}

// MagicSystemFilters are the typed magic-system filters.
type MagicSystemFilters struct {
	WorldID     string
	Type        string
	PowerSource string
	Search      string
}

func (f MagicSystemFilters) Filters() Filters {
	return Filters{
		"world_id":     f.WorldID,
		"type":         f.Type,
		"power_source": f.PowerSource,
		"search":       f.Search,
	}.Clone()
}

// SeriesFilters are the typed series filters.
type SeriesFilters struct {
	WorldID string
	Status  string
	Search  string
}

func (f SeriesFilters) Filters() Filters {
	return Filters{"world_id": f.WorldID, "status": f.Status, "search": f.Search}.Clone()
}

// ShardFilters are the typed shard filters.
type ShardFilters struct {
	Intent       string
	VesselStatus string
	Search       string
}

func (f ShardFilters) Filters() Filters {
	return Filters{"intent": f.Intent, "vessel_status": f.VesselStatus, "search": f.Search}.Clone()
}
