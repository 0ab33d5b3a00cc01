package completion

// Context describes the directive being typed at a caret
type Context struct {
	// Active is true when the caret sits after a whitespace-preceded colon
	Active bool
	// Prefix is the part of the name already typed, without the colon
	Prefix string
	// Start is the byte offset of the colon, where a completion replaces text from
	Start int
	// End is the caret offset
	End int
}

// NewContext inspects text[:caret] for a directive in progress such as "<p :fo".
func NewContext(text string, caret int) Context {
	if caret < 0 || caret > len(text) {
		return Context{}
	}

	i := caret
	for i > 0 && isNameByte(text[i-1]) {
		i--
	}

	colon := i - 1
	if colon < 1 || text[colon] != ':' || !isSpace(text[colon-1]) {
		return Context{}
	}

	return Context{
		Active: true,
		Prefix: text[i:caret],
		Start:  colon,
		End:    caret,
	}
}

func isNameByte(b byte) bool {
	return b == '_' || b == '-' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
