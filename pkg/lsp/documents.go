package lsp

import (
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Document represents a text document with its metadata
type Document struct {
	URI        string
	Path       string
	LanguageID string
	Version    int32
	Content    string
}

// DocumentManager handles document operations
type DocumentManager struct {
	store *sync.Map // map[string]*Document
	fs    afero.Fs
}

func NewDocumentManager(fs afero.Fs) *DocumentManager {
	return &DocumentManager{
		store: &sync.Map{},
		fs:    fs,
	}
}

// Get returns the open document for uri. Documents the client never opened are
// read from the filesystem once and cached.
func (m *DocumentManager) Get(uri string) (*Document, bool) {
	key := normalizeURI(uri)
	if content, ok := m.store.Load(key); ok {
		doc, ok := content.(*Document)
		return doc, ok
	}

	if m.fs == nil {
		return nil, false
	}

	data, err := afero.ReadFile(m.fs, key)
	if err != nil {
		return nil, false
	}

	doc := &Document{
		URI:     uri,
		Path:    key,
		Content: string(data),
	}
	actual, _ := m.store.LoadOrStore(key, doc)
	return actual.(*Document), true
}

func (m *DocumentManager) Store(doc *Document) {
	key := normalizeURI(doc.URI)
	doc.Path = key
	m.store.Store(key, doc)
}

func (m *DocumentManager) Delete(uri string) {
	m.store.Delete(normalizeURI(uri))
}

// URIs lists every document currently held.
func (m *DocumentManager) URIs() []string {
	var out []string
	m.store.Range(func(_, value any) bool {
		out = append(out, value.(*Document).URI)
		return true
	})
	return out
}

// normalizeURI turns a file:// URI into a clean filesystem path. Anything that
// does not parse is returned with the scheme trimmed.
func normalizeURI(uri string) string {
	if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
		return u.Path
	}
	uri = strings.TrimPrefix(uri, "file://")
	return strings.TrimPrefix(uri, "file:")
}
