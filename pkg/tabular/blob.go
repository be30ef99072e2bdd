package tabular

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore opens and creates byte streams for dataset paths. The storage
// map carries backend options straight from the spec's Storage block.
type BlobStore interface {
	Open(ctx context.Context, path string, storage map[string]any) (io.ReadCloser, error)
	Create(ctx context.Context, path string, storage map[string]any) (io.WriteCloser, error)
}

// DefaultBlobStore routes s3:// paths to object storage and everything
// else to the local filesystem.
func DefaultBlobStore() BlobStore {
	return routerStore{object: S3Store{}, local: FSStore{}}
}

type routerStore struct {
	object BlobStore
	local  BlobStore
}

func (r routerStore) pick(path string) BlobStore {
	if strings.HasPrefix(path, "s3://") {
		return r.object
	}
	return r.local
}

func (r routerStore) Open(ctx context.Context, path string, storage map[string]any) (io.ReadCloser, error) {
	return r.pick(path).Open(ctx, path, storage)
}

func (r routerStore) Create(ctx context.Context, path string, storage map[string]any) (io.WriteCloser, error) {
	return r.pick(path).Create(ctx, path, storage)
}

// FSStore is the local filesystem store. Create makes missing parent
// directories, so a fresh output tree does not need pre-seeding.
type FSStore struct{}

func (FSStore) Open(_ context.Context, path string, _ map[string]any) (io.ReadCloser, error) {
	return os.Open(path)
}

func (FSStore) Create(_ context.Context, path string, _ map[string]any) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
