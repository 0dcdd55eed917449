package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"notesku_backend/internals/gateway"
	"notesku_backend/internals/logger"
)

// LocalRoute: prefix URL tempat Dir disajikan (app.Static).
const LocalRoute = "/files"

var ErrBadKey = errors.New("storage: invalid object key")

// Local menyimpan objek di Dir/<bucket>/<key>.
type Local struct {
	Dir     string
	BaseURL string
	log     zerolog.Logger
}

var _ gateway.Storage = (*Local)(nil)

func NewLocal(dir, baseURL string) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("STORAGE_LOCAL_DIR kosong")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{
		Dir:     dir,
		BaseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.Component("local-storage"),
	}, nil
}

func cleanPart(s string) (string, error) {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return "", ErrBadKey
	}
	return s, nil
}

func (l *Local) path(bucket, key string) (string, error) {
	b, err := cleanPart(bucket)
	if err != nil {
		return "", err
	}
	k, err := cleanPart(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.Dir, b, k), nil
}

// Upload menulis ke file sementara lalu rename, jadi objek setengah jadi tidak
// pernah terlihat. size < 0 berarti tidak dicek.
func (l *Local) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := l.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	if size >= 0 && n != size {
		return fmt.Errorf("write object: got %d bytes, want %d", n, size)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return err
	}
	l.log.Debug().Str("bucket", bucket).Str("key", key).Int64("size", n).Msg("object stored")
	return nil
}

func (l *Local) PublicURL(bucket, key string) string {
	return l.BaseURL + LocalRoute + "/" + url.PathEscape(bucket) + "/" + url.PathEscape(key)
}
