package tabular

import (
	"context"
	"sort"
	"sync"

	"github.com/millrace/flume/pkg/config"
)

// Handler reads and writes frames for one format.
type Handler interface {
	Read(ctx context.Context, spec config.IOSpec) (*Frame, error)
	Write(ctx context.Context, frame *Frame, spec config.IOSpec) error
}

// Registry maps dataset formats to handlers. Every orchestrator owns its
// own instance; there is no process-global registration.
type Registry struct {
	store BlobStore

	mu       sync.RWMutex
	handlers map[config.Format]Handler
}

// Option configures a Registry.
type Option func(*Registry)

// WithBlobStore routes file-format transport through the given store.
func WithBlobStore(store BlobStore) Option {
	return func(r *Registry) {
		r.store = store
	}
}

// NewRegistry creates a registry with the csv and json file formats built
// in. Store-backed formats register on top, see sqlfmt and redisfmt.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		store:    DefaultBlobStore(),
		handlers: make(map[config.Format]Handler),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.RegisterCodec(config.FormatCSV, CSVCodec{})
	r.RegisterCodec(config.FormatJSON, JSONCodec{})
	return r
}

// Register binds a handler to a format, replacing any previous binding.
func (r *Registry) Register(format config.Format, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[format] = h
}

// RegisterCodec binds a stream codec to a format, transported through the
// registry's blob store.
func (r *Registry) RegisterCodec(format config.Format, codec Codec) {
	r.Register(format, &fileHandler{codec: codec, store: r.store})
}

// Formats returns the registered formats in sorted order.
func (r *Registry) Formats() []config.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]config.Format, 0, len(r.handlers))
	for format := range r.handlers {
		out = append(out, format)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Read loads the dataset described by spec. Handler failures outside the
// data-handling category come back wrapped as *ReadError with the path and
// format attached; data-handling failures pass through as they are.
func (r *Registry) Read(ctx context.Context, spec config.IOSpec) (*Frame, error) {
	h, ok := r.lookup(spec.Format)
	if !ok {
		return nil, &UnsupportedFormatError{Op: "read", Path: spec.Path, Format: spec.Format}
	}
	frame, err := h.Read(ctx, spec)
	if err != nil {
		if isDataFailure(err) {
			return nil, err
		}
		return nil, &ReadError{Path: spec.Path, Format: spec.Format, Err: err}
	}
	return frame, nil
}

// Write stores the frame as described by spec, wrapping failures the same
// way Read does.
func (r *Registry) Write(ctx context.Context, frame *Frame, spec config.IOSpec) error {
	h, ok := r.lookup(spec.Format)
	if !ok {
		return &UnsupportedFormatError{Op: "write", Path: spec.Path, Format: spec.Format}
	}
	if err := h.Write(ctx, frame, spec); err != nil {
		if isDataFailure(err) {
			return err
		}
		return &WriteError{Path: spec.Path, Format: spec.Format, Err: err}
	}
	return nil
}

func (r *Registry) lookup(format config.Format) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[format]
	return h, ok
}

// fileHandler streams a file format through the blob store.
type fileHandler struct {
	codec Codec
	store BlobStore
}

func (h *fileHandler) Read(ctx context.Context, spec config.IOSpec) (*Frame, error) {
	rc, err := h.store.Open(ctx, spec.Path, spec.Storage)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return h.codec.Decode(rc, spec.Options)
}

func (h *fileHandler) Write(ctx context.Context, frame *Frame, spec config.IOSpec) error {
	wc, err := h.store.Create(ctx, spec.Path, spec.Storage)
	if err != nil {
		return err
	}
	if err := h.codec.Encode(wc, frame, spec.Options); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
