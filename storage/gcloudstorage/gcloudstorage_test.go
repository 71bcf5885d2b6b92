package gcloudstorage

import (
	"context"
	"net/http"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/fsouza/fake-gcs-server/fakestorage"
	"github.com/pixelop/satine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestGCloudStorage_Path(t *testing.T) {
	tests := []struct {
		name         string
		bucket       string
		baseDir      string
		baseURI      string
		image        string
		safeChars    string
		expectedPath string
		expectedOk   bool
	}{
		{
			name:         "defaults ok",
			image:        "/foo/bar",
			expectedPath: "foo/bar",
			expectedOk:   true,
		},
		{
			name:         "escape unsafe chars",
			image:        "/foo/b{:}ar",
			expectedPath: "foo/b%7B%3A%7Dar",
			expectedOk:   true,
		},
		{
			name:         "escape safe chars",
			image:        "/foo/b{:}ar",
			expectedPath: "foo/b{%3A}ar",
			safeChars:    "{}",
			expectedOk:   true,
		},
		{
			name:         "path under with base uri",
			baseDir:      "home/satine",
			baseURI:      "/foo",
			image:        "/foo/bar",
			expectedPath: "home/satine/bar",
			expectedOk:   true,
		},
		{
			name:         "path under no base uri",
			baseDir:      "/home/satine",
			image:        "/foo/bar",
			expectedPath: "home/satine/foo/bar",
			expectedOk:   true,
		},
		{
			name:       "path not under",
			baseDir:    "/home/satine",
			baseURI:    "/foo",
			image:      "/fooo/bar",
			expectedOk: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.baseURI != "" {
				opts = append(opts, WithPathPrefix(tt.baseURI))
			}
			if tt.baseDir != "" {
				opts = append(opts, WithBaseDir(tt.baseDir))
			}
			opts = append(opts, WithSafeChars(tt.safeChars))

			s := New(nil, tt.bucket, opts...)
			res, ok := s.Path(tt.image)
			assert.Equal(t, tt.expectedOk, ok)
			assert.Equal(t, tt.expectedPath, res)
		})
	}
}

func fakeGCSClient(t *testing.T) (*storage.Client, func()) {
	t.Helper()
	srv, err := fakestorage.NewServerWithOptions(fakestorage.Options{
		InitialObjects: []fakestorage.Object{{
			ObjectAttrs: fakestorage.ObjectAttrs{
				BucketName: "test",
				Name:       "placeholder",
			},
			Content: []byte(""),
		}},
		NoListener: true,
	})
	require.NoError(t, err)
	client, err := storage.NewClient(context.Background(), option.WithHTTPClient(srv.HTTPClient()))
	require.NoError(t, err)
	return client, func() {
		_ = client.Close()
		srv.Stop()
	}
}

func TestCRUD(t *testing.T) {
	client, done := fakeGCSClient(t)
	defer done()

	ctx := context.Background()
	r := (&http.Request{}).WithContext(ctx)
	s := New(client, "test", WithPathPrefix("/foo"), WithACL("publicRead"))

	_, err := s.Get(r, "/bar/fooo/asdf")
	assert.Equal(t, satine.ErrInvalid, err)

	_, err = s.Stat(ctx, "/bar/fooo/asdf")
	assert.Equal(t, satine.ErrInvalid, err)

	_, err = s.Stat(ctx, "/foo/fooo/asdf")
	assert.Equal(t, satine.ErrNotFound, err)

	_, err = s.Get(r, "/foo/fooo/asdf")
	assert.Equal(t, satine.ErrNotFound, err)

	assert.ErrorIs(t, s.Put(ctx, "/bar/fooo/asdf", satine.NewBlobFromBytes([]byte("bar"))), satine.ErrInvalid)

	blob := satine.NewBlobFromBytes([]byte("bar"))

	require.NoError(t, s.Put(ctx, "/foo/fooo/asdf", blob))

	stat, err := s.Stat(ctx, "/foo/fooo/asdf")
	require.NoError(t, err)
	assert.True(t, stat.ModifiedTime.Before(time.Now()))
	assert.NotEmpty(t, stat.ETag)

	b, err := s.Get(r, "/foo/fooo/asdf")
	require.NoError(t, err)
	buf, err := b.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "bar", string(buf))
	require.NotNil(t, b.Stat)
	assert.Equal(t, stat.ModifiedTime, b.Stat.ModifiedTime)
	assert.Equal(t, stat.ETag, b.Stat.ETag)

	require.NoError(t, s.Delete(ctx, "/foo/fooo/asdf"))

	_, err = s.Get(r, "/foo/fooo/asdf")
	assert.Equal(t, satine.ErrNotFound, err)

	assert.Equal(t, satine.ErrInvalid, s.Delete(ctx, "/bar/fooo/asdf"))

	require.NoError(t, s.Put(ctx, "/foo/boo/asdf", satine.NewBlobFromBytes([]byte("bar"))))
}

func TestExpiration(t *testing.T) {
	client, done := fakeGCSClient(t)
	defer done()

	s := New(client, "test", WithExpiration(time.Millisecond*10))
	ctx := context.Background()
	r := (&http.Request{}).WithContext(ctx)

	_, err := s.Get(r, "/foo/bar/asdf")
	assert.Equal(t, satine.ErrNotFound, err)
	require.NoError(t, s.Put(ctx, "/foo/bar/asdf", satine.NewBlobFromBytes([]byte("bar"))))

	time.Sleep(time.Second)
	_, err = s.Get(r, "/foo/bar/asdf")
	require.ErrorIs(t, err, satine.ErrExpired)
}

func TestContextCancel(t *testing.T) {
	client, done := fakeGCSClient(t)
	defer done()

	s := New(client, "test")
	ctx, cancel := context.WithCancel(context.Background())
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, "", nil)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "/foo/bar/asdf", satine.NewBlobFromBytes([]byte("bar"))))
	b, err := s.Get(r, "/foo/bar/asdf")
	require.NoError(t, err)
	buf, err := b.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "bar", string(buf))
	cancel()
	_, err = s.Get(r, "/foo/bar/asdf")
	require.ErrorIs(t, err, context.Canceled)
}
