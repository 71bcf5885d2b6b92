package filestorage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixelop/satine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	tests := []struct {
		name       string
		baseDir    string
		image      string
		options    []Option
		expected   string
		expectedOk bool
	}{
		{
			name:       "path under base dir",
			baseDir:    "/home/satine",
			image:      "/foo/bar",
			expected:   "/home/satine/foo/bar",
			expectedOk: true,
		},
		{
			name:       "path escaped",
			baseDir:    "/home/satine",
			image:      "/foo/b{:}ar",
			expected:   "/home/satine/foo/b%7B%3A%7Dar",
			expectedOk: true,
		},
		{
			name:       "path with safe chars",
			baseDir:    "/home/satine",
			image:      "/foo/b{:}ar",
			options:    []Option{WithSafeChars("{}")},
			expected:   "/home/satine/foo/b{%3A}ar",
			expectedOk: true,
		},
		{
			name:       "path under prefix",
			baseDir:    "/home/satine",
			image:      "/abc/foo/bar",
			options:    []Option{WithPathPrefix("/abc")},
			expected:   "/home/satine/foo/bar",
			expectedOk: true,
		},
		{
			name:       "path not under prefix",
			baseDir:    "/home/satine",
			image:      "/foo/bar",
			options:    []Option{WithPathPrefix("/abc")},
			expectedOk: false,
		},
		{
			name:       "dot file blacklisted",
			baseDir:    "/home/satine",
			image:      "/foo/.env",
			expectedOk: false,
		},
		{
			name:       "path traversal cleaned",
			baseDir:    "/home/satine",
			image:      "/../../etc/passwd",
			expected:   "/home/satine/etc/passwd",
			expectedOk: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := New(tt.baseDir, tt.options...).Path(tt.image)
			assert.Equal(t, tt.expectedOk, ok)
			assert.Equal(t, tt.expected, res)
		})
	}
}

func TestCRUD(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s := New(dir)

	_, err := s.Get(nil, "/foo/bar.png")
	assert.Equal(t, satine.ErrNotFound, err)
	_, err = s.Stat(ctx, "/foo/bar.png")
	assert.Equal(t, satine.ErrNotFound, err)

	require.NoError(t, s.Put(ctx, "/foo/bar.png", satine.NewBlobFromBytes([]byte("payload"))))

	blob, err := s.Get(nil, "/foo/bar.png")
	require.NoError(t, err)
	buf, err := blob.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(buf))

	stat, err := s.Stat(ctx, "/foo/bar.png")
	require.NoError(t, err)
	assert.Equal(t, int64(7), stat.Size)
	assert.False(t, stat.ModifiedTime.IsZero())

	require.NoError(t, s.Delete(ctx, "/foo/bar.png"))
	_, err = s.Get(nil, "/foo/bar.png")
	assert.Equal(t, satine.ErrNotFound, err)
}

func TestSaveErrIfExists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s := New(dir, WithSaveErrIfExists(true))
	require.NoError(t, s.Put(ctx, "/a.png", satine.NewBlobFromBytes([]byte("first"))))
	err := s.Put(ctx, "/a.png", satine.NewBlobFromBytes([]byte("second")))
	assert.True(t, os.IsExist(err))

	blob, err := s.Get(nil, "/a.png")
	require.NoError(t, err)
	buf, err := blob.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "first", string(buf))
}

func TestExpiration(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s := New(dir, WithExpiration(time.Minute))
	require.NoError(t, s.Put(ctx, "/a.png", satine.NewBlobFromBytes([]byte("old"))))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a.png"), past, past))

	_, err := s.Get(nil, "/a.png")
	assert.Equal(t, satine.ErrExpired, err)
}

func TestBlacklistedPut(t *testing.T) {
	s := New(t.TempDir())
	err := s.Put(context.Background(), "/foo/.hidden", satine.NewBlobFromBytes([]byte("x")))
	assert.Equal(t, satine.ErrInvalid, err)
	_, err = s.Get(nil, "/foo/.hidden")
	assert.Equal(t, satine.ErrPass, err)
}
