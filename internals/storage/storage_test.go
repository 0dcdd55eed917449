package storage

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesku_backend/internals/configs"
)

func TestLocalUploadAndURL(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "http://localhost:3000/")
	require.NoError(t, err)

	body := "hello notes"
	err = l.Upload(context.Background(), "notes", "1700000000000_a b.pdf", strings.NewReader(body), int64(len(body)), "application/pdf")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "notes", "1700000000000_a b.pdf"))
	require.NoError(t, err)
	assert.Equal(t, body, string(got))

	assert.Equal(t, "http://localhost:3000/files/notes/1700000000000_a%20b.pdf", l.PublicURL("notes", "1700000000000_a b.pdf"))
}

func TestLocalRejectsBadKeys(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	for _, key := range []string{"", "..", "../x", `a\b`} {
		err := l.Upload(context.Background(), "notes", key, strings.NewReader("x"), 1, "")
		assert.ErrorIs(t, err, ErrBadKey, key)
	}
}

func TestLocalSizeMismatchLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "")
	require.NoError(t, err)

	err = l.Upload(context.Background(), "notes", "k.txt", strings.NewReader("abc"), 10, "")
	require.Error(t, err)
	entries, err := os.ReadDir(filepath.Join(dir, "notes"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalCanceledContext(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Upload(ctx, "notes", "k", strings.NewReader("x"), 1, ""), context.Canceled)
}

func TestOSSPublicURL(t *testing.T) {
	s := &OSS{endpoint: "https://oss-ap-southeast-5.aliyuncs.com"}
	assert.Equal(t, "https://notes.oss-ap-southeast-5.aliyuncs.com/1_a.pdf", s.PublicURL("notes", "1_a.pdf"))
	assert.Empty(t, s.PublicURL("notes", ""))

	s.publicBase = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/1_a.pdf", s.PublicURL("notes", "1_a.pdf"))
}

func TestOSSPublicURLEscapesKey(t *testing.T) {
	key := "1700000000000_Unit #3 notes?v2 100%.pdf"
	for _, s := range []*OSS{
		{endpoint: "oss-ap-southeast-5.aliyuncs.com"},
		{endpoint: "oss-ap-southeast-5.aliyuncs.com", publicBase: "https://cdn.example.com"},
	} {
		raw := s.PublicURL("notes", key)
		u, err := url.Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "/"+key, u.Path, raw)
		assert.Empty(t, u.RawQuery, raw)
		assert.Empty(t, u.Fragment, raw)
	}

	s := &OSS{endpoint: "oss-ap-southeast-5.aliyuncs.com"}
	assert.Equal(t, "https://notes.oss-ap-southeast-5.aliyuncs.com/dir/a%20b.pdf", s.PublicURL("notes", "dir/a b.pdf"))
}

func TestNewOSSRequiresCredentials(t *testing.T) {
	_, err := NewOSS(OSSConfig{Endpoint: "oss-ap-southeast-5.aliyuncs.com"})
	assert.Error(t, err)
}

func TestNewPicksDriver(t *testing.T) {
	s, err := New(configs.App{StorageDriver: "local", StorageLocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, s)

	_, err = New(configs.App{StorageDriver: "s3"})
	assert.Error(t, err)
}
