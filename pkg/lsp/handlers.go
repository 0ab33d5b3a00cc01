package lsp

import (
	"encoding/json"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tempestls/pkg/autoclose"
	"github.com/walteh/tempestls/pkg/position"
	"github.com/walteh/tempestls/pkg/settings"
)

// Handler wires the server into a glsp handler table.
func (me *Server) Handler() *protocol.Handler {
	return &protocol.Handler{
		Initialize:                      me.initialize,
		Initialized:                     me.initialized,
		Shutdown:                        me.shutdown,
		SetTrace:                        me.setTrace,
		TextDocumentDidOpen:             me.textDocumentDidOpen,
		TextDocumentDidChange:           me.textDocumentDidChange,
		TextDocumentDidClose:            me.textDocumentDidClose,
		TextDocumentSemanticTokensFull:  me.textDocumentSemanticTokensFull,
		TextDocumentCompletion:          me.textDocumentCompletion,
		TextDocumentOnTypeFormatting:    me.textDocumentOnTypeFormatting,
		WorkspaceDidChangeConfiguration: me.workspaceDidChangeConfiguration,
		WorkspaceExecuteCommand:         me.workspaceExecuteCommand,
	}
}

// Capabilities is what the server advertises during initialize.
func (me *Server) Capabilities() protocol.ServerCapabilities {
	full := protocol.TextDocumentSyncKindFull
	return protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: &protocol.True,
			Change:    &full,
		},
		SemanticTokensProvider: &protocol.SemanticTokensOptions{
			Legend: protocol.SemanticTokensLegend{
				TokenTypes:     legendTokenTypes,
				TokenModifiers: legendTokenModifiers,
			},
			Full:  true,
			Range: false,
		},
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{":"},
		},
		DocumentOnTypeFormattingProvider: &protocol.DocumentOnTypeFormattingOptions{
			FirstTriggerCharacter: string(autoclose.Trigger),
		},
		ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
			Commands: []string{CommandToggle},
		},
	}
}

func (me *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	me.setClient(ctx)

	if params.InitializationOptions != nil {
		if _, err := me.ApplyConfiguration(params.InitializationOptions); err != nil {
			me.logger().Warn().Err(err).Msg("ignoring initialization options")
		}
	}

	me.logger().Info().Str("server_id", me.id).Msg("initializing")

	return protocol.InitializeResult{
		Capabilities: me.Capabilities(),
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: &me.version,
		},
	}, nil
}

func (me *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (me *Server) shutdown(ctx *glsp.Context) error {
	me.logger().Info().Msg("shutting down")
	me.Close()
	return nil
}

func (me *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (me *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	me.documents.Store(&Document{
		URI:        string(params.TextDocument.URI),
		LanguageID: params.TextDocument.LanguageID,
		Version:    params.TextDocument.Version,
		Content:    params.TextDocument.Text,
	})

	me.logger().Debug().Str("uri", string(params.TextDocument.URI)).Msg("document opened")
	return nil
}

func (me *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	return me.ApplyChanges(string(params.TextDocument.URI), params.TextDocument.Version, params.ContentChanges...)
}

func (me *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	me.documents.Delete(string(params.TextDocument.URI))
	return nil
}

func (me *Server) textDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	return me.SemanticTokens(string(params.TextDocument.URI))
}

func (me *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	return me.Completions(string(params.TextDocument.URI), params.Position)
}

func (me *Server) textDocumentOnTypeFormatting(ctx *glsp.Context, params *protocol.DocumentOnTypeFormattingParams) ([]protocol.TextEdit, error) {
	return me.OnTypeFormatting(string(params.TextDocument.URI), params.Position, params.Ch)
}

func (me *Server) workspaceDidChangeConfiguration(ctx *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	_, err := me.ApplyConfiguration(params.Settings)
	return err
}

func (me *Server) workspaceExecuteCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	return me.ExecuteCommand(params.Command)
}

// ApplyChanges updates an open document. Whole-document events replace the
// content, ranged events are spliced in order.
func (me *Server) ApplyChanges(uri string, version protocol.Integer, changes ...any) error {
	doc, ok := me.documents.Get(uri)
	if !ok {
		return errors.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}

	content := doc.Content
	for _, change := range changes {
		switch typed := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = typed.Text
		case protocol.TextDocumentContentChangeEvent:
			if typed.Range == nil {
				content = typed.Text
				continue
			}
			content = replaceRange(content, *typed.Range, typed.Text)
		default:
			return errors.Errorf("unsupported content change %T", change)
		}
	}

	me.documents.Store(&Document{
		URI:        doc.URI,
		LanguageID: doc.LanguageID,
		Version:    version,
		Content:    content,
	})

	return nil
}

func replaceRange(content string, r protocol.Range, text string) string {
	loc := position.NewLocator(content)
	start := loc.Offset(toPlace(r.Start))
	end := loc.Offset(toPlace(r.End))
	if end < start {
		start, end = end, start
	}

	var b strings.Builder
	b.Grow(len(content) - (end - start) + len(text))
	b.WriteString(content[:start])
	b.WriteString(text)
	b.WriteString(content[end:])
	return b.String()
}

type clientConfiguration struct {
	Tempest *struct {
		Enabled   *bool    `json:"enabled"`
		Templates []string `json:"templates"`
	} `json:"tempest"`
}

// ApplyConfiguration takes the client's settings object, shaped as
// {"tempest": {"enabled": bool, "templates": [...]}}, and stores any field it
// carries. Objects without a tempest section leave the settings alone.
func (me *Server) ApplyConfiguration(raw any) (settings.Settings, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return me.store.Current(), errors.Errorf("encoding client configuration: %w", err)
	}

	var cfg clientConfiguration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return me.store.Current(), errors.Errorf("decoding client configuration: %w", err)
	}

	if cfg.Tempest == nil || (cfg.Tempest.Enabled == nil && cfg.Tempest.Templates == nil) {
		return me.store.Current(), nil
	}

	return me.store.Update(me.baseContext(), func(s *settings.Settings) {
		if cfg.Tempest.Enabled != nil {
			s.Enabled = *cfg.Tempest.Enabled
		}
		if cfg.Tempest.Templates != nil {
			s.Templates = cfg.Tempest.Templates
		}
	})
}

// ExecuteCommand runs a workspace command and returns its result to the client.
func (me *Server) ExecuteCommand(command string) (any, error) {
	switch command {
	case CommandToggle:
		next, err := me.store.Toggle(me.baseContext())
		if err != nil {
			return nil, errors.Errorf("toggling: %w", err)
		}
		me.logger().Info().Bool("enabled", next.Enabled).Msg("toggled")
		return next.Enabled, nil
	default:
		return nil, errors.Errorf("unknown command %q", command)
	}
}
