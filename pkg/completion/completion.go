// Package completion offers the Tempest directive attributes as completion items.
package completion

import (
	"strings"

	"github.com/walteh/tempestls/pkg/settings"
)

// Item is one directive attribute suggestion
type Item struct {
	// Name is the directive without its colon, e.g. "foreach"
	Name string
	// Label is the literal text inserted by plain-text clients, e.g. `:foreach=""`
	Label string
	// Snippet is the LSP snippet form with a tab stop inside the quotes
	Snippet string
	// CaretBack is how far the caret moves left after inserting Label
	CaretBack int
	Detail    string
}

var directives = []Item{
	{Name: "if", Label: `:if=""`, Snippet: `:if="$1"`, CaretBack: 1, Detail: "Render the element when the expression is truthy"},
	{Name: "elseif", Label: `:elseif=""`, Snippet: `:elseif="$1"`, CaretBack: 1, Detail: "Alternative branch of a preceding :if"},
	{Name: "else", Label: `:else`, Snippet: `:else`, CaretBack: 0, Detail: "Fallback branch of a preceding :if"},
	{Name: "foreach", Label: `:foreach=""`, Snippet: `:foreach="$1"`, CaretBack: 1, Detail: "Repeat the element for each item"},
	{Name: "forelse", Label: `:forelse=""`, Snippet: `:forelse="$1"`, CaretBack: 1, Detail: "Rendered when the preceding :foreach is empty"},
}

// Directives returns every directive item, or nothing when cfg is disabled.
func Directives(cfg settings.Settings) []Item {
	if !cfg.Enabled {
		return nil
	}
	out := make([]Item, len(directives))
	copy(out, directives)
	return out
}

// ForContext returns the directives matching what is being typed at caret.
func ForContext(cfg settings.Settings, text string, caret int) (Context, []Item) {
	cctx := NewContext(text, caret)
	if !cctx.Active {
		return cctx, nil
	}

	var out []Item
	for _, item := range Directives(cfg) {
		if strings.HasPrefix(item.Name, cctx.Prefix) {
			out = append(out, item)
		}
	}
	return cctx, out
}
