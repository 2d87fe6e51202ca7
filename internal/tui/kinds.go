package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/billmal071/cosmere/internal/cosmere"
)

// FilterChoice is a filter the list view can cycle through. The first value
// is always "" (not applied).
type FilterChoice struct {
	Key    string
	Values []string
}

// Kind binds an entity type to its API calls and its rendering.
type Kind[T cosmere.Entity] struct {
	Resource cosmere.Resource
	List     func(c cosmere.Client, ctx context.Context, opts cosmere.ListOptions) (*cosmere.Page[T], error)
	Get      func(c cosmere.Client, ctx context.Context, id string) (*T, error)
	// Card returns the title line and the metadata line of a list row.
	Card    func(v T) (string, string)
	Fields  func(v T) []Field
	Body    func(v T) string
	// Related, when set, fetches the records linked to v once v has loaded.
	Related func(c cosmere.Client, ctx context.Context, v T) ([]Section, error)
	Choices []FilterChoice
}

var worldChoices = []string{"", "scadrial", "roshar", "nalthis", "sel", "taldain", "threnody", "first-of-the-sun", "lumar", "canticle", "komashi", "yolen"}

var CharacterKind = Kind[cosmere.Character]{
	Resource: cosmere.Characters,
	List:     cosmere.Client.ListCharacters,
	Get:      cosmere.Client.GetCharacter,
	Card: func(c cosmere.Character) (string, string) {
		p := cosmere.ParseCharacter(c)
		title := StatusStyle(c.Status).Render(cosmere.StatusIcon(c.Status)) + " " + c.Name
		meta := []string{}
		if c.Species != "" {
			meta = append(meta, c.Species)
		}
		meta = append(meta, cosmere.StatusDisplay(c.Status))
		if c.WorldOfOriginID != "" {
			meta = append(meta, c.WorldOfOriginID)
		}
		line := strings.Join(meta, " · ")
		if chips := badges(cosmere.SortedKeys(p.Abilities), 3); chips != "" {
			line += "  " + chips
		}
		return title, line
	},
	Fields: func(c cosmere.Character) []Field {
		p := cosmere.ParseCharacter(c)
		fields := []Field{
			{"Aliases", strings.Join(p.AliasList, ", ")},
			{"Species", c.Species},
			{"Status", cosmere.StatusDisplay(c.Status)},
			{"World", c.WorldOfOriginID},
			{"First appearance", c.FirstAppearanceBookID},
		}
		if c.BookCount > 0 {
			fields = append(fields, Field{"Books", FormatNumber(c.BookCount)})
		}
		if c.RelationshipCount > 0 {
			fields = append(fields, Field{"Relationships", FormatNumber(c.RelationshipCount)})
		}
		return fields
	},
	Body: func(c cosmere.Character) string {
		p := cosmere.ParseCharacter(c)
		return joinSections(
			textSection("Biography", c.Biography),
			mapSection("Magic abilities", p.Abilities),
			mapSection("Affiliations", p.AffiliationMap),
			mapSection("Cosmere significance", p.SignificanceMap),
		)
	},
	Related: characterRelated,
	Choices: []FilterChoice{
		{Key: "status", Values: []string{"", "alive", "dead", "cognitive_shadow", "unknown"}},
		{Key: "world_id", Values: worldChoices},
		{Key: "species", Values: []string{"", "human", "singer", "kandra", "koloss", "spren", "dragon"}},
	},
}

var BookKind = Kind[cosmere.Book]{
	Resource: cosmere.Books,
	List:     cosmere.Client.ListBooks,
	Get:      cosmere.Client.GetBook,
	Card: func(b cosmere.Book) (string, string) {
		var meta []string
		if y := cosmere.PublicationYear(b.PublicationDate); y > 0 {
			meta = append(meta, fmt.Sprint(y))
		}
		if b.SeriesID != "" {
			s := b.SeriesID
			if b.ChronologicalOrder != nil {
				s += fmt.Sprintf(" #%d", *b.ChronologicalOrder)
			}
			meta = append(meta, s)
		}
		if b.WordCount != nil {
			meta = append(meta, FormatNumber(*b.WordCount)+" words")
		}
		if b.WorldID != "" {
			meta = append(meta, b.WorldID)
		}
		return b.Title, strings.Join(meta, " · ")
	},
	Fields: func(b cosmere.Book) []Field {
		fields := []Field{
			{"Published", cosmere.FormatDate(b.PublicationDate)},
			{"Series", b.SeriesID},
			{"Order", intText(b.ChronologicalOrder)},
			{"World", b.WorldID},
			{"ISBN", b.ISBN},
		}
		if b.WordCount != nil {
			fields = append(fields, Field{"Words", FormatNumber(*b.WordCount)})
		}
		return fields
	},
	Body: func(b cosmere.Book) string {
		return joinSections(
			textSection("Summary", b.Summary),
			mapSection("Cosmere significance", b.Significance.Map()),
		)
	},
	Choices: []FilterChoice{
		{Key: "world_id", Values: worldChoices},
		{Key: "series_id", Values: []string{"", "mistborn-era-1", "mistborn-era-2", "stormlight", "elantris", "warbreaker"}},
	},
}

var WorldKind = Kind[cosmere.World]{
	Resource: cosmere.Worlds,
	List:     cosmere.Client.ListWorlds,
	Get:      cosmere.Client.GetWorld,
	Card: func(w cosmere.World) (string, string) {
		var meta []string
		if w.System != "" {
			meta = append(meta, w.System+" system")
		}
		if w.TechnologyLevel != "" {
			meta = append(meta, w.TechnologyLevel)
		}
		if w.ShardID != "" {
			meta = append(meta, "shard: "+w.ShardID)
		}
		line := strings.Join(meta, " · ")
		if chips := badges(w.MagicSystems.List(), 3); chips != "" {
			line += "  " + chips
		}
		return w.Name, line
	},
	Fields: func(w cosmere.World) []Field {
		return []Field{
			{"System", w.System},
			{"Shard", w.ShardID},
			{"Technology", w.TechnologyLevel},
		}
	},
	Body: func(w cosmere.World) string {
		return joinSections(
			textSection("Culture", w.CultureNotes),
			listSection("Magic systems", w.MagicSystems.List()),
			mapSection("Geography", w.Geography.Map()),
		)
	},
	Related: worldRelated,
	Choices: []FilterChoice{
		{Key: "has_shard", Values: []string{"", "true", "false"}},
		{Key: "technology_level", Values: []string{"", "primitive", "medieval", "industrial", "modern", "advanced"}},
	},
}

var MagicSystemKind = Kind[cosmere.MagicSystem]{
	Resource: cosmere.MagicSystems,
	List:     cosmere.Client.ListMagicSystems,
	Get:      cosmere.Client.GetMagicSystem,
	Card: func(m cosmere.MagicSystem) (string, string) {
		meta := []string{}
		if m.Type != "" {
			meta = append(meta, BadgeStyle.Render(m.Type))
		}
		if m.PowerSource != "" {
			meta = append(meta, "source: "+m.PowerSource)
		}
		if m.WorldID != "" {
			meta = append(meta, m.WorldID)
		}
		return m.Name, strings.Join(meta, " · ")
	},
	Fields: func(m cosmere.MagicSystem) []Field {
		return []Field{
			{"Type", m.Type},
			{"Power source", m.PowerSource},
			{"World", m.WorldID},
		}
	},
	Body: func(m cosmere.MagicSystem) string {
		p := cosmere.ParseMagicSystem(m)
		return joinSections(
			textSection("Description", m.Description),
			mapSection("Mechanics", p.MechanicsMap),
			mapSection("Limitations", p.LimitationsMap),
		)
	},
	Choices: []FilterChoice{
		{Key: "type", Values: []string{"", "end-positive", "end-neutral", "end-negative"}},
		{Key: "world_id", Values: worldChoices},
	},
}

var SeriesKind = Kind[cosmere.Series]{
	Resource: cosmere.SeriesList,
	List:     cosmere.Client.ListSeries,
	Get:      cosmere.Client.GetSeries,
	Card: func(s cosmere.Series) (string, string) {
		var meta []string
		if s.Status != "" {
			meta = append(meta, s.Status)
		}
		if s.WorldID != "" {
			meta = append(meta, s.WorldID)
		}
		if n := len(s.Books); n > 0 {
			meta = append(meta, fmt.Sprintf("%d books", n))
		}
		return s.Name, strings.Join(meta, " · ")
	},
	Fields: func(s cosmere.Series) []Field {
		return []Field{
			{"Status", s.Status},
			{"World", s.WorldID},
		}
	},
	Body: func(s cosmere.Series) string {
		return joinSections(
			textSection("Description", s.Description),
			listSection("Books", bookLines(s.Books)),
		)
	},
	Related: seriesRelated,
	Choices: []FilterChoice{
		{Key: "status", Values: []string{"", "ongoing", "complete", "planned"}},
		{Key: "world_id", Values: worldChoices},
	},
}

// bookLines lists books in reading order; unordered books keep their
// position after the ordered ones.
func bookLines(books []cosmere.Book) []string {
	sorted := append([]cosmere.Book(nil), books...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].ChronologicalOrder, sorted[j].ChronologicalOrder
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	out := make([]string, len(sorted))
	for i, b := range sorted {
		line := b.Title
		if y := cosmere.PublicationYear(b.PublicationDate); y > 0 {
			line += fmt.Sprintf(" (%d)", y)
		}
		out[i] = line
	}
	return out
}

var ShardKind = Kind[cosmere.Shard]{
	Resource: cosmere.Shards,
	List:     cosmere.Client.ListShards,
	Get:      cosmere.Client.GetShard,
	Card: func(s cosmere.Shard) (string, string) {
		meta := []string{"intent: " + s.Intent}
		if s.VesselName != "" {
			v := "vessel: " + s.VesselName
			if s.VesselStatus != "" {
				v += " (" + s.VesselStatus + ")"
			}
			meta = append(meta, v)
		}
		return s.Name, strings.Join(meta, " · ")
	},
	Fields: func(s cosmere.Shard) []Field {
		return []Field{
			{"Intent", s.Intent},
			{"Vessel", s.VesselName},
			{"Vessel status", s.VesselStatus},
			{"Location", s.WorldLocationID},
		}
	},
	Body: func(s cosmere.Shard) string {
		return joinSections(
			textSection("Description", s.Description),
			mapSection("Splinters", s.SplinterInfo.Map()),
		)
	},
	Choices: []FilterChoice{
		{Key: "vessel_status", Values: []string{"", "alive", "deceased", "splintered", "combined"}},
	},
}

func characterRelated(c cosmere.Client, ctx context.Context, ch cosmere.Character) ([]Section, error) {
	var rels []cosmere.Relationship
	var books []cosmere.Book
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rels, err = c.CharacterRelationships(ctx, ch.ID)
		return err
	})
	g.Go(func() (err error) {
		books, err = c.CharacterAppearances(ctx, ch.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	lines := make([]string, len(rels))
	for i, r := range rels {
		line := r.RelationshipType + ": " + r.RelatedCharacterID
		if r.Description != "" {
			line += " · " + r.Description
		}
		if r.BookContext != nil && r.BookContext.Title != "" {
			line += " (" + r.BookContext.Title + ")"
		}
		lines[i] = line
	}
	return []Section{
		{Title: "Relationships", Items: lines},
		{Title: "Appears in", Items: bookLines(books)},
	}, nil
}

func worldRelated(c cosmere.Client, ctx context.Context, w cosmere.World) ([]Section, error) {
	var chars []cosmere.Character
	var systems []cosmere.MagicSystem
	var books []cosmere.Book
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		chars, err = c.WorldCharacters(ctx, w.ID)
		return err
	})
	g.Go(func() (err error) {
		systems, err = c.WorldMagicSystems(ctx, w.ID)
		return err
	})
	g.Go(func() (err error) {
		books, err = c.BooksByWorld(ctx, w.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	people := make([]string, len(chars))
	for i, ch := range chars {
		people[i] = ch.Name + " · " + cosmere.StatusDisplay(ch.Status)
	}
	magic := make([]string, len(systems))
	for i, m := range systems {
		magic[i] = m.Name
		if m.Type != "" {
			magic[i] += " · " + m.Type
		}
	}
	return []Section{
		{Title: "Characters", Items: people},
		{Title: "Documented magic systems", Items: magic},
		{Title: "Books set here", Items: bookLines(books)},
	}, nil
}

// seriesRelated fetches the books of a series the API returned without them.
func seriesRelated(c cosmere.Client, ctx context.Context, s cosmere.Series) ([]Section, error) {
	if len(s.Books) > 0 {
		return nil, nil
	}
	books, err := c.BooksBySeries(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	return []Section{{Title: "Books", Items: bookLines(books)}}, nil
}
