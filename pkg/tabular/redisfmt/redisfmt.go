// Package redisfmt provides the "redis" dataset format: a frame stored as
// one JSON document under a key. The spec path is a redis URL
// (redis://host:port/db); options.key names the document.
package redisfmt

import (
	"bytes"
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/millrace/flume/pkg/config"
	"github.com/millrace/flume/pkg/tabular"
)

// Handler stores frames in Redis as JSON documents.
type Handler struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the handler.
type Option func(*Handler)

// WithPrefix prepends a namespace to every document key.
func WithPrefix(prefix string) Option {
	return func(h *Handler) {
		h.prefix = prefix
	}
}

// WithTTL sets the expiration for written documents. Zero means no
// expiration.
func WithTTL(ttl time.Duration) Option {
	return func(h *Handler) {
		h.ttl = ttl
	}
}

// New creates a handler that dials the spec path per call.
func New(opts ...Option) *Handler {
	h := &Handler{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewFromClient creates a handler bound to an existing client. The spec
// path is ignored; tests and embedders with their own pooling use this.
func NewFromClient(client *backend.Client, opts ...Option) *Handler {
	h := New(opts...)
	h.client = client
	return h
}

// Register binds the handler to the "redis" format.
func Register(reg *tabular.Registry, opts ...Option) {
	reg.Register(config.FormatRedis, New(opts...))
}

// Read loads and decodes the document under options.key.
func (h *Handler) Read(ctx context.Context, spec config.IOSpec) (*tabular.Frame, error) {
	key, err := h.key(spec)
	if err != nil {
		return nil, err
	}
	client, done, err := h.connect(spec)
	if err != nil {
		return nil, err
	}
	defer done()

	payload, err := client.Get(ctx, key).Bytes()
	if err == backend.Nil {
		return nil, fmt.Errorf("redis key %q not found", key)
	}
	if err != nil {
		return nil, err
	}
	return tabular.JSONCodec{}.Decode(bytes.NewReader(payload), spec.Options)
}

// Write encodes the frame and stores it under options.key, replacing any
// previous document.
func (h *Handler) Write(ctx context.Context, frame *tabular.Frame, spec config.IOSpec) error {
	key, err := h.key(spec)
	if err != nil {
		return err
	}
	client, done, err := h.connect(spec)
	if err != nil {
		return err
	}
	defer done()

	var buf bytes.Buffer
	if err := (tabular.JSONCodec{}).Encode(&buf, frame, spec.Options); err != nil {
		return err
	}
	return client.Set(ctx, key, buf.Bytes(), h.ttl).Err()
}

func (h *Handler) key(spec config.IOSpec) (string, error) {
	key, _ := spec.Options["key"].(string)
	if key == "" {
		return "", &tabular.SpecError{
			Reason: "redis io requires options.key",
			Path:   spec.Path, Format: spec.Format,
		}
	}
	return h.prefix + key, nil
}

func (h *Handler) connect(spec config.IOSpec) (*backend.Client, func(), error) {
	if h.client != nil {
		return h.client, func() {}, nil
	}
	opts, err := backend.ParseURL(spec.Path)
	if err != nil {
		return nil, nil, &tabular.SpecError{
			Reason: "invalid redis url: " + err.Error(),
			Path:   spec.Path, Format: spec.Format,
		}
	}
	client := backend.NewClient(opts)
	return client, func() { client.Close() }, nil
}
