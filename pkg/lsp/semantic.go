package lsp

import (
	"github.com/walteh/tempestls/pkg/position"
	"github.com/walteh/tempestls/pkg/semtok"
)

// Token type indices in the legend array
const (
	tokenTypeComment = iota
	tokenTypeMacro
	tokenTypeOperator
	tokenTypeVariable
	tokenTypeProperty
	tokenTypeString
	tokenTypeKeyword
)

// legendTokenTypes is sent to the client, its order must follow the indices above.
var legendTokenTypes = []string{
	"comment",  // 0
	"macro",    // 1
	"operator", // 2
	"variable", // 3
	"property", // 4
	"string",   // 5
	"keyword",  // 6
}

var legendTokenModifiers = []string{}

var tokenTypeMap = map[semtok.Category]uint32{
	semtok.CategoryComment:             tokenTypeComment,
	semtok.CategorySafeInterpStart:     tokenTypeMacro,
	semtok.CategorySafeInterpEnd:       tokenTypeMacro,
	semtok.CategorySafeInterpContent:   tokenTypeVariable,
	semtok.CategoryUnsafeInterpStart:   tokenTypeOperator,
	semtok.CategoryUnsafeInterpEnd:     tokenTypeOperator,
	semtok.CategoryUnsafeInterpContent: tokenTypeVariable,
	semtok.CategoryAttributeName:       tokenTypeProperty,
	semtok.CategoryAttributeValue:      tokenTypeString,
	semtok.CategoryConditionalName:     tokenTypeKeyword,
	semtok.CategoryLoopName:            tokenTypeKeyword,
}

// encodeSemanticTokens converts classified tokens to LSP's relative encoding:
// [deltaLine, deltaChar, length, tokenType, tokenModifiers] per token.
// Attribute values are cut around the interpolations they contain, since LSP
// tokens may not overlap. Spans crossing lines are split because not every
// client handles multiline tokens.
func encodeSemanticTokens(tokens []semtok.Token, content string) []uint32 {
	loc := position.NewLocator(content)
	tokens = semtok.Flatten(tokens)

	data := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevChar int

	for _, tok := range tokens {
		tokenType, ok := tokenTypeMap[tok.Category]
		if !ok {
			continue
		}

		for _, piece := range loc.SplitLines(tok.Span) {
			start := loc.Place(piece.Start)
			length := loc.UTF16Len(piece)
			if length == 0 {
				continue
			}

			deltaLine := start.Line - prevLine
			deltaChar := start.Character
			if deltaLine == 0 {
				deltaChar = start.Character - prevChar
			}

			data = append(data,
				uint32(deltaLine),
				uint32(deltaChar),
				uint32(length),
				tokenType,
				0,
			)

			prevLine = start.Line
			prevChar = start.Character
		}
	}

	return data
}
