package lsp

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/rs/zerolog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/walteh/tempestls/pkg/debug"
)

const methodLogMessage = "window/logMessage"

// NotifyFunc sends a notification to the client.
type NotifyFunc func(method string, params any)

// LSPWriter implements io.Writer to redirect logs to LSP
type LSPWriter struct {
	mu     sync.Mutex
	notify NotifyFunc
}

func NewLSPWriter(notify NotifyFunc) *LSPWriter {
	return &LSPWriter{notify: notify}
}

// ApplyLSPWriter returns ctx carrying a logger that writes to both w and the
// client log window.
func ApplyLSPWriter(ctx context.Context, w io.Writer, level zerolog.Level, notify NotifyFunc) context.Context {
	logger := zerolog.New(zerolog.MultiLevelWriter(w, NewLSPWriter(notify))).
		Level(level).
		With().
		Str("component", ServerName).
		Logger().
		Hook(debug.CustomTimeHook{}).
		Hook(debug.CustomCallerHook{WithColor: false})

	return logger.WithContext(ctx)
}

func (w *LSPWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var entry map[string]any
	if err := json.Unmarshal(p, &entry); err != nil {
		return len(p), nil // Skip malformed entries
	}

	level, _ := entry["level"].(string)
	msg, _ := entry["message"].(string)
	if caller, ok := entry["caller"].(string); ok {
		msg = caller + " " + msg
	}

	w.notify(methodLogMessage, protocol.LogMessageParams{
		Type:    messageTypeFromZerolog(level),
		Message: msg,
	})

	return len(p), nil
}

func messageTypeFromZerolog(level string) protocol.MessageType {
	switch level {
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		return protocol.MessageTypeError
	case zerolog.LevelWarnValue:
		return protocol.MessageTypeWarning
	case zerolog.LevelInfoValue:
		return protocol.MessageTypeInfo
	default:
		return protocol.MessageTypeLog
	}
}
