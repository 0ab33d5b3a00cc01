package lsp

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tempestls/pkg/autoclose"
	"github.com/walteh/tempestls/pkg/completion"
	"github.com/walteh/tempestls/pkg/position"
	"github.com/walteh/tempestls/pkg/semtok"
	"github.com/walteh/tempestls/pkg/settings"
)

const (
	// ServerName is reported to the client during initialize
	ServerName = "tempestls"

	// CommandToggle flips the enabled setting
	CommandToggle = "tempest.toggle"

	methodSemanticTokensRefresh = "workspace/semanticTokens/refresh"
)

var ErrDocumentNotFound = errors.New("document not found")

// Server represents an LSP server instance
type Server struct {
	ctx context.Context

	// Document management
	documents *DocumentManager

	// Settings are read once per request, never cached on the server
	store       *settings.Store
	unsubscribe func()

	// Server identification
	id      string
	version string

	// Log forwarding to the client, enabled by WithLogForwarding
	logSink  io.Writer
	logLevel zerolog.Level

	// LSP client for server initiated requests, set during initialize
	mu     sync.RWMutex
	client *glsp.Context
}

type ServerOpt func(*Server)

// WithLogForwarding copies every log line to the client's log window once the
// client has initialized. Lines keep going to w as well.
func WithLogForwarding(w io.Writer, level zerolog.Level) ServerOpt {
	return func(s *Server) {
		s.logSink = w
		s.logLevel = level
	}
}

// NewServer returns a server reading unopened documents from fs. The logger on
// ctx is used for every request.
func NewServer(ctx context.Context, store *settings.Store, fs afero.Fs, version string, opts ...ServerOpt) *Server {
	me := &Server{
		ctx:       ctx,
		id:        uuid.NewString(),
		version:   version,
		documents: NewDocumentManager(fs),
		store:     store,
	}

	for _, opt := range opts {
		opt(me)
	}

	me.unsubscribe = store.Subscribe(me.onSettingsChanged)

	return me
}

func (me *Server) ID() string {
	return me.id
}

func (me *Server) Documents() *DocumentManager {
	return me.documents
}

func (me *Server) baseContext() context.Context {
	me.mu.RLock()
	defer me.mu.RUnlock()
	return me.ctx
}

func (me *Server) logger() *zerolog.Logger {
	return zerolog.Ctx(me.baseContext())
}

// Close detaches the server from the settings store.
func (me *Server) Close() {
	if me.unsubscribe != nil {
		me.unsubscribe()
		me.unsubscribe = nil
	}
}

func (me *Server) setClient(ctx *glsp.Context) {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.client = ctx
	if me.logSink != nil && ctx != nil && ctx.Notify != nil {
		me.ctx = ApplyLSPWriter(me.ctx, me.logSink, me.logLevel, NotifyFunc(ctx.Notify))
	}
}

func (me *Server) getClient() *glsp.Context {
	me.mu.RLock()
	defer me.mu.RUnlock()
	return me.client
}

// isTemplate applies the file gate of cfg to a document.
func isTemplate(cfg settings.Settings, doc *Document) bool {
	return cfg.IsTemplate(doc.Path)
}

// SemanticTokens classifies the document and returns the encoded token data.
func (me *Server) SemanticTokens(uri string) (*protocol.SemanticTokens, error) {
	doc, ok := me.documents.Get(uri)
	if !ok {
		return nil, errors.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}

	resultID := uuid.NewString()
	cfg := me.store.Current()
	if !isTemplate(cfg, doc) {
		return &protocol.SemanticTokens{ResultID: &resultID, Data: []protocol.UInteger{}}, nil
	}

	tokens := semtok.Classify(cfg, doc.Content)

	me.logger().Debug().
		Str("uri", uri).
		Int("token_count", len(tokens)).
		Bool("enabled", cfg.Enabled).
		Msg("classified document")

	return &protocol.SemanticTokens{
		ResultID: &resultID,
		Data:     encodeSemanticTokens(tokens, doc.Content),
	}, nil
}

// Completions returns the directive attributes that fit the caret position.
func (me *Server) Completions(uri string, pos protocol.Position) (*protocol.CompletionList, error) {
	doc, ok := me.documents.Get(uri)
	if !ok {
		return nil, errors.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}

	list := &protocol.CompletionList{Items: []protocol.CompletionItem{}}

	cfg := me.store.Current()
	if !isTemplate(cfg, doc) {
		return list, nil
	}

	loc := position.NewLocator(doc.Content)
	caret := loc.Offset(toPlace(pos))

	cctx, items := completion.ForContext(cfg, doc.Content, caret)
	if !cctx.Active {
		return list, nil
	}

	replace := fromRange(loc.Range(position.NewSpan(cctx.Start, cctx.End)))
	kind := protocol.CompletionItemKindSnippet
	format := protocol.InsertTextFormatSnippet

	for i, item := range items {
		detail := item.Detail
		sortText := string(rune('a' + i))
		list.Items = append(list.Items, protocol.CompletionItem{
			Label:            item.Label,
			Kind:             &kind,
			Detail:           &detail,
			SortText:         &sortText,
			InsertTextFormat: &format,
			TextEdit: protocol.TextEdit{
				Range:   replace,
				NewText: item.Snippet,
			},
		})
	}

	return list, nil
}

// OnTypeFormatting turns a typed character into closing-delimiter edits.
func (me *Server) OnTypeFormatting(uri string, pos protocol.Position, ch string) ([]protocol.TextEdit, error) {
	doc, ok := me.documents.Get(uri)
	if !ok {
		return nil, errors.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}

	typed := []rune(ch)
	if len(typed) != 1 {
		return nil, nil
	}

	cfg := me.store.Current()
	loc := position.NewLocator(doc.Content)
	caret := loc.Offset(toPlace(pos))

	edit, ok := autoclose.OnTyped(cfg, autoclose.Request{
		Typed:    typed[0],
		Text:     doc.Content,
		Caret:    caret,
		Template: isTemplate(cfg, doc),
	})
	if !ok {
		return nil, nil
	}

	me.logger().Debug().Str("uri", uri).Str("insert", edit.InsertText).Int("offset", edit.Offset).Msg("auto closing delimiter")

	at := fromPlace(loc.Place(edit.Offset))
	return []protocol.TextEdit{
		{
			Range:   protocol.Range{Start: at, End: at},
			NewText: edit.InsertText,
		},
	}, nil
}

// onSettingsChanged asks the client to drop cached highlighting so the next
// request sees the new settings.
func (me *Server) onSettingsChanged(ctx context.Context, prev, next settings.Settings) error {
	client := me.getClient()
	if client == nil {
		zerolog.Ctx(ctx).Debug().Msg("no client yet, skipping semantic token refresh")
		return nil
	}

	zerolog.Ctx(ctx).Debug().Bool("enabled", next.Enabled).Msg("requesting semantic token refresh")

	// the reply arrives on the connection this request may be running on
	go func() {
		var ignored any
		client.Call(methodSemanticTokensRefresh, nil, &ignored)
	}()

	return nil
}

func toPlace(p protocol.Position) position.Place {
	return position.Place{Line: int(p.Line), Character: int(p.Character)}
}

func fromPlace(p position.Place) protocol.Position {
	return protocol.Position{Line: protocol.UInteger(p.Line), Character: protocol.UInteger(p.Character)}
}

func fromRange(r position.Range) protocol.Range {
	return protocol.Range{Start: fromPlace(r.Start), End: fromPlace(r.End)}
}
