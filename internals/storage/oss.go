// Package storage berisi implementasi gateway.Storage: Alibaba OSS untuk
// produksi dan disk lokal untuk development.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/rs/zerolog"

	"notesku_backend/internals/gateway"
	"notesku_backend/internals/logger"
)

type OSSConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	SecurityToken string
	// PublicBase opsional (CDN / custom domain), mis. https://cdn.example.com
	PublicBase string
}

// OSS menyimpan objek apa adanya (tanpa recompress).
type OSS struct {
	client     *oss.Client
	endpoint   string
	publicBase string
	log        zerolog.Logger

	mu      sync.Mutex
	buckets map[string]*oss.Bucket
}

var _ gateway.Storage = (*OSS)(nil)

func NewOSS(cfg OSSConfig) (*OSS, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY")
	}

	var (
		client *oss.Client
		err    error
	)
	if cfg.SecurityToken != "" {
		client, err = oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, oss.SecurityToken(cfg.SecurityToken))
	} else {
		client, err = oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	}
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	return &OSS{
		client:     client,
		endpoint:   cfg.Endpoint,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
		log:        logger.Component("oss"),
		buckets:    map[string]*oss.Bucket{},
	}, nil
}

// Verify: cek ringan lokasi bucket saat startup. AccessDenied hanya di-warn.
func (s *OSS) Verify(bucketName string) error {
	loc, err := s.client.GetBucketLocation(bucketName)
	if err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 403 && se.Code == "AccessDenied" {
			s.log.Warn().Str("bucket", bucketName).Msg("skip location check due to AccessDenied")
			return nil
		}
		return fmt.Errorf("verify bucket: %w", err)
	}
	s.log.Info().Str("bucket", bucketName).Str("location", loc).Msg("bucket ok")
	return nil
}

func (s *OSS) bucket(name string) (*oss.Bucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[name]; ok {
		return b, nil
	}
	b, err := s.client.Bucket(name)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	s.buckets[name] = b
	return b, nil
}

func (s *OSS) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
	}
	if size >= 0 {
		opts = append(opts, oss.ContentLength(size))
	}
	if err := b.PutObject(key, body, opts...); err != nil {
		return fmt.Errorf("put object %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *OSS) PublicURL(bucket, key string) string {
	if key == "" {
		return ""
	}
	path := escapeKey(key)
	if s.publicBase != "" {
		return s.publicBase + "/" + path
	}
	end := strings.TrimPrefix(s.endpoint, "https://")
	end = strings.TrimPrefix(end, "http://")
	return fmt.Sprintf("https://%s.%s/%s", bucket, end, path)
}

// escapeKey meng-escape tiap segmen key; "/" tetap jadi pemisah path.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
