package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walteh/tempestls/pkg/semtok"
	"github.com/walteh/tempestls/pkg/settings"
)

func TestEncodeSemanticTokens(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []uint32
	}{
		{
			name:     "test_empty",
			content:  "",
			expected: []uint32{},
		},
		{
			name:    "test_safe_interpolation",
			content: "<div>{{ $x }}</div>",
			expected: []uint32{
				0, 5, 2, tokenTypeMacro, 0,
				0, 3, 2, tokenTypeVariable, 0,
				0, 3, 2, tokenTypeMacro, 0,
			},
		},
		{
			name:    "test_unsafe_interpolation",
			content: "{!! $html !!}",
			expected: []uint32{
				0, 0, 3, tokenTypeOperator, 0,
				0, 4, 5, tokenTypeVariable, 0,
				0, 6, 3, tokenTypeOperator, 0,
			},
		},
		{
			name:    "test_multiline_comment_is_split",
			content: "{{-- a\nb --}}",
			expected: []uint32{
				0, 0, 6, tokenTypeComment, 0,
				1, 0, 6, tokenTypeComment, 0,
			},
		},
		{
			name:    "test_crlf_comment_is_split",
			content: "{{-- a\r\nb --}}",
			expected: []uint32{
				0, 0, 6, tokenTypeComment, 0,
				1, 0, 6, tokenTypeComment, 0,
			},
		},
		{
			name:    "test_directive_on_second_line",
			content: "<ul>\n<li :foreach=\"$items as $item\">",
			expected: []uint32{
				1, 4, 8, tokenTypeKeyword, 0,
				0, 9, 17, tokenTypeString, 0,
			},
		},
		{
			name:    "test_attribute",
			content: `<a :href="$url">`,
			expected: []uint32{
				0, 3, 5, tokenTypeProperty, 0,
				0, 6, 6, tokenTypeString, 0,
			},
		},
		{
			name:    "test_directive_value_holding_interpolation",
			content: `<p :if="{{ $x }}">`,
			expected: []uint32{
				0, 3, 3, tokenTypeKeyword, 0,
				0, 4, 1, tokenTypeString, 0,
				0, 1, 2, tokenTypeMacro, 0,
				0, 3, 2, tokenTypeVariable, 0,
				0, 3, 2, tokenTypeMacro, 0,
				0, 2, 1, tokenTypeString, 0,
			},
		},
		{
			name:    "test_utf16_columns",
			content: "é😀 {{ $x }}",
			expected: []uint32{
				0, 4, 2, tokenTypeMacro, 0,
				0, 3, 2, tokenTypeVariable, 0,
				0, 3, 2, tokenTypeMacro, 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := semtok.Classify(settings.Default(), tt.content)
			got := encodeSemanticTokens(tokens, tt.content)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLegendCoversEveryCategory(t *testing.T) {
	for _, c := range semtok.Categories() {
		idx, ok := tokenTypeMap[c]
		if assert.True(t, ok, "category %s has no token type", c) {
			assert.Less(t, int(idx), len(legendTokenTypes))
		}
	}
}
