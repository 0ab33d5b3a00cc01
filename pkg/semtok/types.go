package semtok

import (
	"fmt"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tempestls/pkg/position"
)

// Category is the semantic meaning of a recognized span
type Category uint8

const (
	// CategoryComment covers a whole {{-- --}} block
	CategoryComment Category = iota + 1

	// CategorySafeInterpStart is the opening {{ of an escaped interpolation
	CategorySafeInterpStart

	// CategorySafeInterpEnd is the closing }}
	CategorySafeInterpEnd

	// CategorySafeInterpContent is the expression between {{ and }}
	CategorySafeInterpContent

	// CategoryUnsafeInterpStart is the opening {!! of a raw interpolation
	CategoryUnsafeInterpStart

	// CategoryUnsafeInterpEnd is the closing !!}
	CategoryUnsafeInterpEnd

	// CategoryUnsafeInterpContent is the expression between {!! and !!}
	CategoryUnsafeInterpContent

	// CategoryAttributeName is a colon prefixed attribute such as :title
	CategoryAttributeName

	// CategoryAttributeValue is a quoted directive value, quotes included
	CategoryAttributeValue

	// CategoryConditionalName is :if, :elseif or :else
	CategoryConditionalName

	// CategoryLoopName is :foreach or :forelse
	CategoryLoopName
)

var categoryNames = map[Category]string{
	CategoryComment:             "comment",
	CategorySafeInterpStart:     "safe-interp-start",
	CategorySafeInterpEnd:       "safe-interp-end",
	CategorySafeInterpContent:   "safe-interp-content",
	CategoryUnsafeInterpStart:   "unsafe-interp-start",
	CategoryUnsafeInterpEnd:     "unsafe-interp-end",
	CategoryUnsafeInterpContent: "unsafe-interp-content",
	CategoryAttributeName:       "attribute-name",
	CategoryAttributeValue:      "attribute-value",
	CategoryConditionalName:     "conditional-name",
	CategoryLoopName:            "loop-name",
}

// Categories lists every category in declaration order.
func Categories() []Category {
	out := make([]Category, 0, len(categoryNames))
	for c := CategoryComment; c <= CategoryLoopName; c++ {
		out = append(out, c)
	}
	return out
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(name string) (Category, bool) {
	for c, n := range categoryNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, ok := ParseCategory(string(text))
	if !ok {
		return errors.Errorf("unknown category %q", text)
	}
	*c = parsed
	return nil
}

// Token is a span of the scanned buffer tagged with its category
type Token struct {
	Category Category
	Span     position.Span
}

func NewToken(c Category, start, end int) Token {
	return Token{Category: c, Span: position.NewSpan(start, end)}
}

func (t Token) String() string {
	return fmt.Sprintf("%s%s", t.Category, t.Span)
}
