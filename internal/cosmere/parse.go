package cosmere

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// ParseJSONMap decodes s as a JSON object. Empty or malformed input, or a
// value that is not an object, yields nil.
func ParseJSONMap(s string) map[string]any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

// ParseStringList decodes s as a JSON array and keeps its string elements.
// A bare object is read as its keys, which is how some API variants encode
// alias and ability sets. Anything else yields nil.
func ParseStringList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		if m := ParseJSONMap(s); m != nil {
			return SortedKeys(m)
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		switch v := v.(type) {
		case string:
			out = append(out, v)
		case nil:
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

// MalformedFields returns the JSON names of the JSONText fields of v, a
// struct or a pointer to one, that hold text which does not parse.
func MalformedFields(v any) []string {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}
	var out []string
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		if !rt.Field(i).IsExported() {
			continue
		}
		text, ok := rv.Field(i).Interface().(JSONText)
		if !ok || !text.Malformed() {
			continue
		}
		name, _, _ := strings.Cut(rt.Field(i).Tag.Get("json"), ",")
		if name == "" {
			name = rt.Field(i).Name
		}
		out = append(out, name)
	}
	return out
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParsedCharacter is a Character with its JSON-bearing fields decoded.
type ParsedCharacter struct {
	Character
	AliasList       []string
	Abilities       map[string]any
	AffiliationMap  map[string]any
	SignificanceMap map[string]any
}

// ParseCharacter decodes the JSON-bearing fields of c. Malformed fields are nil.
func ParseCharacter(c Character) ParsedCharacter {
	return ParsedCharacter{
		Character:       c,
		AliasList:       c.Aliases.List(),
		Abilities:       c.MagicAbilities.Map(),
		AffiliationMap:  c.Affiliations.Map(),
		SignificanceMap: c.Significance.Map(),
	}
}

// HasMagic reports whether at least one ability parsed.
func (p ParsedCharacter) HasMagic() bool { return len(p.Abilities) > 0 }

// IsAlive reports whether the character's status is alive.
func (p ParsedCharacter) IsAlive() bool { return p.Status == StatusAlive }

// ParsedMagicSystem is a MagicSystem with its JSON-bearing fields decoded.
type ParsedMagicSystem struct {
	MagicSystem
	MechanicsMap   map[string]any
	LimitationsMap map[string]any
}

// ParseMagicSystem decodes the JSON-bearing fields of m.
func ParseMagicSystem(m MagicSystem) ParsedMagicSystem {
	return ParsedMagicSystem{
		MagicSystem:    m,
		MechanicsMap:   m.Mechanics.Map(),
		LimitationsMap: m.Limitations.Map(),
	}
}

// StatusDisplay maps a status to its display text.
func StatusDisplay(s Status) string {
	switch Status(strings.ToLower(string(s))) {
	case StatusAlive:
		return "Alive"
	case StatusDead:
		return "Dead"
	case StatusCognitiveShadow:
		return "Cognitive Shadow"
	default:
		return "Unknown"
	}
}

// StatusIcon returns a short marker for a status.
func StatusIcon(s Status) string {
	switch Status(strings.ToLower(string(s))) {
	case StatusAlive:
		return "●"
	case StatusDead:
		return "✝"
	case StatusCognitiveShadow:
		return "◌"
	default:
		return "?"
	}
}

// Truncate shortens text to at most n runes, appending "..." when cut.
func Truncate(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	r := []rune(text)
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// FormatDate renders an API date for display. Empty input is "Unknown";
// unparseable input is returned unchanged.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Unknown"
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return s
}

// PublicationYear extracts the year of a publication date, or 0.
func PublicationYear(s string) int {
	if len(s) < 4 {
		return 0
	}
	var y int
	if _, err := fmt.Sscanf(s[:4], "%d", &y); err != nil {
		return 0
	}
	return y
}
