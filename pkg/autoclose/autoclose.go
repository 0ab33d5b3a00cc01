// Package autoclose completes Tempest delimiters while the user types.
//
// Typing a space right after an opening delimiter inserts the matching closer
// after the caret, leaving the caret between the space and the closer:
//
//	{{ |        ->  {{ | }}
//	{{-- |      ->  {{-- | --}}
//	{!! |       ->  {!! | !!}}
package autoclose

import (
	"strings"

	"github.com/walteh/tempestls/pkg/settings"
)

// Trigger is the only character that can start an auto close.
const Trigger = ' '

// Request describes one keystroke.
type Request struct {
	// Typed is the character that was just typed.
	Typed rune
	// Text is the buffer with the typed character already inserted.
	Text string
	// Caret is the byte offset right after the typed character.
	Caret int
	// Template is the host's verdict on whether the buffer is a Tempest view.
	Template bool
}

// Edit inserts InsertText at Offset. The caret must end up where it was before
// the insertion, which is CursorBackOffset bytes before the end of InsertText.
type Edit struct {
	Offset           int
	InsertText       string
	CursorBackOffset int
}

type rule struct {
	name  string
	open  string
	close string
}

// rules are checked in order and the first hit wins, longest opener first.
var rules = []rule{
	{name: "comment", open: "{{--", close: " --}}"},
	{name: "unsafe", open: "{!!", close: " !!}}"},
	{name: "safe", open: "{{", close: " }}"},
}

// OnTyped decides whether the keystroke in req should insert a closer. The
// second result is false when the host should let the keystroke through
// untouched.
func OnTyped(cfg settings.Settings, req Request) (Edit, bool) {
	if !cfg.Enabled || !req.Template || req.Typed != Trigger {
		return Edit{}, false
	}
	if req.Caret < 1 || req.Caret > len(req.Text) {
		return Edit{}, false
	}

	before := req.Text[:req.Caret-1]
	for _, r := range rules {
		if strings.HasSuffix(before, r.open) {
			return Edit{
				Offset:           req.Caret,
				InsertText:       r.close,
				CursorBackOffset: len(r.close),
			}, true
		}
	}

	return Edit{}, false
}

// Apply returns text with e applied and the resulting caret offset.
func (e Edit) Apply(text string) (string, int) {
	if e.Offset < 0 || e.Offset > len(text) {
		return text, e.Offset
	}
	out := text[:e.Offset] + e.InsertText + text[e.Offset:]
	return out, e.Offset + len(e.InsertText) - e.CursorBackOffset
}
