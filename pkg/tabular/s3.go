package tabular

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store reads and writes s3://bucket/key paths through a MinIO client
// built per call from the spec's storage options: endpoint (required),
// access_key, secret_key, use_ssl, region.
type S3Store struct{}

func (S3Store) Open(ctx context.Context, path string, storage map[string]any) (io.ReadCloser, error) {
	client, bucket, key, err := s3Client(path, storage)
	if err != nil {
		return nil, err
	}
	return client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
}

func (S3Store) Create(ctx context.Context, path string, storage map[string]any) (io.WriteCloser, error) {
	client, bucket, key, err := s3Client(path, storage)
	if err != nil {
		return nil, err
	}
	return &s3Writer{ctx: ctx, client: client, bucket: bucket, key: key}, nil
}

// s3Writer buffers the object and uploads it on Close, since object
// storage needs the full body per put.
type s3Writer struct {
	ctx    context.Context
	client *minio.Client
	bucket string
	key    string
	buf    bytes.Buffer
	closed bool
}

func (w *s3Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *s3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_, err := w.client.PutObject(w.ctx, w.bucket, w.key,
		bytes.NewReader(w.buf.Bytes()), int64(w.buf.Len()), minio.PutObjectOptions{})
	return err
}

func s3Client(path string, storage map[string]any) (*minio.Client, string, string, error) {
	u, err := url.Parse(path)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return nil, "", "", &SpecError{Reason: "invalid s3 uri", Path: path}
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	endpoint := optString(storage, "endpoint")
	if endpoint == "" {
		return nil, "", "", &SpecError{Reason: "s3 io requires storage_options.endpoint", Path: path}
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(
			optString(storage, "access_key"),
			optString(storage, "secret_key"),
			"",
		),
		Secure: optBool(storage, "use_ssl"),
		Region: optString(storage, "region"),
	})
	if err != nil {
		return nil, "", "", err
	}
	return client, bucket, key, nil
}

func optString(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func optBool(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}
