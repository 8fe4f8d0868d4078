package decoder

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/llehouerou/ripple/audio"
	"github.com/llehouerou/ripple/source"
)

// Registry maps file extensions to decoder factories. Format adapters
// register themselves from init, so importing an adapter package is what
// enables its formats (the database/sql driver convention).
type Registry struct {
	mtx       sync.Mutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a factory to one or more extensions (".mp3", ".wav", ...).
// Later registrations for the same extension win, so an application can
// override a stock adapter.
func (r *Registry) Register(f Factory, exts ...string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, ext := range exts {
		r.factories[normalizeExt(ext)] = f
	}
}

// Lookup returns the factory registered for ext.
func (r *Registry) Lookup(ext string) (Factory, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	f, ok := r.factories[normalizeExt(ext)]
	return f, ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	exts := make([]string, 0, len(r.factories))
	for ext := range r.factories {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Open picks a factory by the extension of name, creates the decoder on
// src and opens it. On failure the source is closed.
func (r *Registry) Open(src source.Source, name string) (Decoder, audio.Format, error) {
	ext := filepath.Ext(name)
	factory, ok := r.Lookup(ext)
	if !ok {
		src.Close()
		return nil, audio.Format{}, fmt.Errorf("%w: no decoder for %q", audio.ErrUnsupported, ext)
	}

	dec := factory(src)
	format, err := dec.Open()
	if err != nil {
		return nil, audio.Format{}, fmt.Errorf("open %s: %w", name, err)
	}
	return dec, format, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// defaultRegistry serves the package-level Register/Open used by the
// formats/ adapters.
var defaultRegistry = NewRegistry()

// Register adds a factory to the default registry.
func Register(f Factory, exts ...string) { defaultRegistry.Register(f, exts...) }

// Lookup consults the default registry.
func Lookup(ext string) (Factory, bool) { return defaultRegistry.Lookup(ext) }

// Extensions lists the default registry's extensions.
func Extensions() []string { return defaultRegistry.Extensions() }

// Open opens a decoder for name from the default registry.
func Open(src source.Source, name string) (Decoder, audio.Format, error) {
	return defaultRegistry.Open(src, name)
}

// OpenFile is a convenience that opens path as a file source and decodes it.
func OpenFile(path string) (Decoder, audio.Format, error) {
	src, err := source.OpenFile(path)
	if err != nil {
		return nil, audio.Format{}, err
	}
	return defaultRegistry.Open(src, path)
}
