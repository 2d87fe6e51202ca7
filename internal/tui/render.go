package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/billmal071/cosmere/internal/cosmere"
)

// Field is one labelled value in a detail view.
type Field struct {
	Label string
	Value string
}

// valueText flattens a decoded JSON value for display.
func valueText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			if s := valueText(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		parts := make([]string, 0, len(v))
		for _, k := range cosmere.SortedKeys(v) {
			if s := valueText(v[k]); s != "" {
				parts = append(parts, k+": "+s)
			} else {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(v)
	}
}

// mapSection renders m as a markdown section; an absent map renders nothing.
func mapSection(title string, m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", title)
	for _, k := range cosmere.SortedKeys(m) {
		if s := valueText(m[k]); s != "" {
			fmt.Fprintf(&b, "- **%s**: %s\n", k, s)
		} else {
			fmt.Fprintf(&b, "- **%s**\n", k)
		}
	}
	return b.String()
}

func listSection(title string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", title)
	for _, it := range items {
		fmt.Fprintf(&b, "- %s\n", it)
	}
	return b.String()
}

func textSection(title, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return fmt.Sprintf("## %s\n\n%s\n", title, text)
}

// Section is a titled list of records shown under an entity's detail.
type Section struct {
	Title string
	Items []string
}

func relatedSections(sections []Section) string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = listSection(s.Title, s.Items)
	}
	return joinSections(out...)
}

func joinSections(sections ...string) string {
	var out []string
	for _, s := range sections {
		if s != "" {
			out = append(out, strings.TrimRight(s, "\n"))
		}
	}
	return strings.Join(out, "\n\n")
}

func intText(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

// badges renders up to max items as badges, noting how many were left out.
func badges(items []string, max int) string {
	if len(items) == 0 {
		return ""
	}
	shown := items
	if max > 0 && len(items) > max {
		shown = items[:max]
	}
	parts := make([]string, len(shown))
	for i, s := range shown {
		parts[i] = BadgeStyle.Render(s)
	}
	out := strings.Join(parts, " ")
	if len(items) > len(shown) {
		out += DimStyle.Render(fmt.Sprintf(" +%d more", len(items)-len(shown)))
	}
	return out
}

// fieldsBlock renders label/value rows, skipping empty values.
func fieldsBlock(fields []Field) string {
	width := 0
	for _, f := range fields {
		if f.Value != "" && len(f.Label) > width {
			width = len(f.Label)
		}
	}
	var lines []string
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		lines = append(lines, DimStyle.Render(fmt.Sprintf("%-*s", width, f.Label))+"  "+NormalStyle.Render(f.Value))
	}
	return strings.Join(lines, "\n")
}

// markdown renders long text. Without a renderer the source is shown as is.
type markdown struct {
	renderer *glamour.TermRenderer
	width    int
	log      *zap.Logger
}

func newMarkdown(enabled bool, width int, log *zap.Logger) *markdown {
	md := &markdown{width: width, log: log}
	if enabled {
		md.resize(width)
	}
	return md
}

func (md *markdown) resize(width int) {
	if width < 20 {
		width = 20
	}
	md.width = width
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		md.log.Warn("markdown renderer unavailable", zap.Error(err))
		return
	}
	md.renderer = r
}

func (md *markdown) render(src string) string {
	if src == "" {
		return ""
	}
	if md == nil || md.renderer == nil {
		return src
	}
	out, err := md.renderer.Render(src)
	if err != nil {
		md.log.Debug("markdown render failed", zap.Error(err))
		return src
	}
	return strings.TrimRight(out, "\n")
}

func renderDetail[T cosmere.Entity](kind Kind[T], e T, md *markdown) string {
	content := fieldsBlock(kind.Fields(e))
	if body := md.render(kind.Body(e)); body != "" {
		content += "\n\n" + body
	}
	return content
}

// RenderDetail renders e the way the detail view shows it, for printing
// outside the browser. Long text is rendered as markdown when styled is set.
func RenderDetail[T cosmere.Entity](kind Kind[T], e T, styled bool, width int) string {
	return renderDetail(kind, e, newMarkdown(styled, width, zap.NewNop()))
}

// RenderRelated renders linked records the way the detail view shows them.
func RenderRelated(sections []Section, styled bool, width int) string {
	return newMarkdown(styled, width, zap.NewNop()).render(relatedSections(sections))
}
