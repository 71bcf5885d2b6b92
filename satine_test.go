package satine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pixelop/satine/satinepath"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func jsonStr(v interface{}) string {
	buf, _ := json.Marshal(v)
	return string(buf)
}

type loaderFunc func(r *http.Request, image string) (blob *Blob, err error)

func (f loaderFunc) Get(r *http.Request, image string) (*Blob, error) {
	return f(r, image)
}

type processorFunc func(ctx context.Context, blob *Blob, p satinepath.Params, load LoadFunc) (*Blob, error)

func (f processorFunc) Process(ctx context.Context, blob *Blob, p satinepath.Params, load LoadFunc) (*Blob, error) {
	return f(ctx, blob, p, load)
}
func (f processorFunc) Startup(_ context.Context) error {
	return nil
}
func (f processorFunc) Shutdown(_ context.Context) error {
	return nil
}

func TestWithUnsafe(t *testing.T) {
	logger := zap.NewExample()
	app := New(WithUnsafe(true), WithLogger(logger))
	assert.Equal(t, false, app.Debug)
	assert.Equal(t, logger, app.Logger)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(
		http.MethodGet, "https://example.com/unsafe/foo.jpg", nil))
	assert.Equal(t, 200, w.Code)

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(
		http.MethodGet, "https://example.com/foo.jpg", nil))
	assert.Equal(t, 403, w.Code)
	assert.Equal(t, w.Body.String(), jsonStr(ErrSignatureMismatch))
}

func TestWithSigner(t *testing.T) {
	app := New(
		WithDebug(true),
		WithLogger(zap.NewExample()),
		WithSigner(satinepath.NewDefaultSigner("1234")))
	assert.Equal(t, true, app.Debug)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(
		http.MethodGet, "https://example.com/_-19cQt1szHeUV0WyWFntvTImDI=/foo.jpg", nil))
	assert.Equal(t, 200, w.Code)

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(
		http.MethodGet, "https://example.com/foo.jpg", nil))
	assert.Equal(t, 403, w.Code)
	assert.Equal(t, w.Body.String(), jsonStr(ErrSignatureMismatch))
}

func TestVersion(t *testing.T) {
	app := New()
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(
		http.MethodGet, "https://example.com/", nil))
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, fmt.Sprintf(`{"satine":{"version":"%s"}}`, Version), w.Body.String())
}

func TestBasePathRedirect(t *testing.T) {
	app := New(WithBasePathRedirect("https://www.example.com"))
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(
		http.MethodGet, "https://example.com/", nil))
	assert.Equal(t, 307, w.Code)
	assert.Equal(t, "https://www.example.com", w.Header().Get("Location"))
}

func TestMethodNotAllowed(t *testing.T) {
	app := New(WithUnsafe(true))
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(
		http.MethodPost, "https://example.com/unsafe/foo.jpg", nil))
	assert.Equal(t, 405, w.Code)
}

func TestParams(t *testing.T) {
	app := New(
		WithDebug(true),
		WithLogger(zap.NewExample()),
		WithSigner(satinepath.NewDefaultSigner("1234")))

	r := httptest.NewRequest(
		http.MethodGet, "https://example.com/params/_-19cQt1szHeUV0WyWFntvTImDI=/sat(0.5)/foo.jpg", nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)
	assert.Equal(t, 200, w.Code)
	buf, _ := json.MarshalIndent(satinepath.Parse(r.URL.EscapedPath()), "", "  ")
	assert.Equal(t, string(buf), w.Body.String())

	r = httptest.NewRequest(
		http.MethodGet, "https://example.com/params/foo.jpg", nil)
	w = httptest.NewRecorder()
	app.ServeHTTP(w, r)
	assert.Equal(t, 200, w.Code)
	buf, _ = json.MarshalIndent(satinepath.Parse(r.URL.EscapedPath()), "", "  ")
	assert.Equal(t, string(buf), w.Body.String())
}

func TestDisableParamsEndpoint(t *testing.T) {
	app := New(WithDisableParamsEndpoint(true))
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(
		http.MethodGet, "https://example.com/params/foo.jpg", nil))
	assert.Equal(t, 200, w.Code)
	assert.Empty(t, w.Body.String())
}

type mapStore struct {
	Map     map[string]*Blob
	GetCnt  map[string]int
	PutCnt  map[string]int
	DelCnt  map[string]int
	StatCnt map[string]int
}

func newMapStore() *mapStore {
	return &mapStore{
		Map: map[string]*Blob{}, GetCnt: map[string]int{},
		PutCnt: map[string]int{}, DelCnt: map[string]int{},
		StatCnt: map[string]int{},
	}
}

func (s *mapStore) Get(r *http.Request, image string) (*Blob, error) {
	blob, ok := s.Map[image]
	if !ok {
		return nil, ErrNotFound
	}
	s.GetCnt[image] = s.GetCnt[image] + 1
	return blob, nil
}

func (s *mapStore) Put(ctx context.Context, image string, blob *Blob) error {
	s.Map[image] = blob
	s.PutCnt[image] = s.PutCnt[image] + 1
	return nil
}

func (s *mapStore) Delete(ctx context.Context, image string) error {
	delete(s.Map, image)
	s.DelCnt[image] = s.DelCnt[image] + 1
	return nil
}

func (s *mapStore) Stat(ctx context.Context, image string) (*Stat, error) {
	blob, ok := s.Map[image]
	if !ok {
		return nil, ErrNotFound
	}
	s.StatCnt[image] = s.StatCnt[image] + 1
	buf, _ := blob.ReadAll()
	return &Stat{Size: int64(len(buf))}, nil
}

func TestWithLoadersStoragesProcessors(t *testing.T) {
	store := newMapStore()
	resultStore := newMapStore()
	fakeMeta := &Meta{Format: "a", ContentType: "b", Width: 167, Height: 167}
	fakeMetaBuf, _ := json.Marshal(fakeMeta)
	fakeMetaStr := string(fakeMetaBuf)
	app := New(
		WithDebug(true), WithLogger(zap.NewExample()),
		WithLoaders(
			loaderFunc(func(r *http.Request, image string) (*Blob, error) {
				if image == "foo" {
					return NewBlobFromBytes([]byte("bar")), nil
				}
				if image == "ping" {
					return NewBlobFromBytes([]byte("pong")), nil
				}
				if image == "empty" {
					return nil, nil
				}
				return nil, ErrPass
			}),
			loaderFunc(func(r *http.Request, image string) (*Blob, error) {
				if image == "beep" {
					return NewBlobFromBytes([]byte("boop")), nil
				}
				if image == "boom" {
					return nil, errors.New("unexpected error")
				}
				if image == "poop" {
					return NewBlobFromBytes([]byte("poop")), nil
				}
				if image == "timeout" {
					return NewBlobFromBytes([]byte("timeout")), nil
				}
				return nil, ErrPass
			}),
		),
		WithStorages(store),
		WithResultStorages(resultStore),
		WithProcessors(
			processorFunc(func(ctx context.Context, blob *Blob, p satinepath.Params, load LoadFunc) (*Blob, error) {
				buf, _ := blob.ReadAll()
				if string(buf) == "bar" {
					return NewBlobFromBytes([]byte("tar")), ErrPass
				}
				if string(buf) == "poop" {
					return nil, ErrPass
				}
				if string(buf) == "timeout" {
					time.Sleep(time.Millisecond * 10)
					return blob, ctx.Err()
				}
				return blob, nil
			}),
			processorFunc(func(ctx context.Context, blob *Blob, p satinepath.Params, load LoadFunc) (*Blob, error) {
				buf, _ := blob.ReadAll()
				if string(buf) == "tar" {
					b := NewBlobFromBytes([]byte("bark"))
					b.Meta = fakeMeta
					return b, nil
				}
				if string(buf) == "poop" {
					return nil, ErrUnsupportedFormat
				}
				return blob, nil
			}),
		),
		WithSaveTimeout(time.Millisecond*100),
		WithProcessTimeout(time.Millisecond*2),
		WithUnsafe(true),
	)
	assert.NoError(t, app.Startup(context.Background()))
	defer func() {
		assert.NoError(t, app.Shutdown(context.Background()))
	}()
	for i := 0; i < 2; i++ {
		t.Run(fmt.Sprintf("ok %d", i), func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(
				http.MethodGet, "https://example.com/unsafe/foo", nil))
			assert.Equal(t, 200, w.Code)
			assert.Equal(t, "bark", w.Body.String())

			w = httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(
				http.MethodGet, "https://example.com/unsafe/meta/foo", nil))
			assert.Equal(t, 200, w.Code)
			assert.Equal(t, fakeMetaStr, w.Body.String())

			w = httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(
				http.MethodGet, "https://example.com/unsafe/ping", nil))
			assert.Equal(t, 200, w.Code)
			assert.Equal(t, "pong", w.Body.String())

			w = httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(
				http.MethodGet, "https://example.com/unsafe/beep", nil))
			assert.Equal(t, 200, w.Code)
			assert.Equal(t, "boop", w.Body.String())
		})
		t.Run(fmt.Sprintf("not found on empty %d", i), func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(
				http.MethodGet, "https://example.com/unsafe/empty", nil))
			assert.Equal(t, 404, w.Code)
			assert.Equal(t, jsonStr(ErrNotFound), w.Body.String())
		})
		t.Run(fmt.Sprintf("unexpected error %d", i), func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(
				http.MethodGet, "https://example.com/unsafe/boom", nil))
			assert.Equal(t, 500, w.Code)
			assert.Equal(t, jsonStr(NewError("unexpected error", 500)), w.Body.String())
		})
		t.Run(fmt.Sprintf("unsupported format %d", i), func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(
				http.MethodGet, "https://example.com/unsafe/poop", nil))
			assert.Equal(t, ErrUnsupportedFormat.Code, w.Code)
			assert.Equal(t, "poop", w.Body.String())
		})
		t.Run(fmt.Sprintf("process timeout %d", i), func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(
				http.MethodGet, "https://example.com/unsafe/timeout", nil))
			assert.Equal(t, http.StatusRequestTimeout, w.Code)
			assert.Equal(t, "timeout", w.Body.String())
		})
	}
	t.Run("result storage", func(t *testing.T) {
		resultKey := app.ResultKey.Generate(satinepath.Parse("/unsafe/foo"))
		assert.Equal(t, 1, resultStore.PutCnt[resultKey])
		assert.GreaterOrEqual(t, resultStore.GetCnt[resultKey], 1)
	})
	t.Run("source storage", func(t *testing.T) {
		assert.Equal(t, 1, store.PutCnt["foo"])
		assert.Equal(t, 1, store.PutCnt["ping"])
	})
}

func TestSuppressionResolveNested(t *testing.T) {
	app := New()
	blob, err := app.suppress(context.Background(), "a",
		func(ctx context.Context) (*Blob, error) {
			return app.suppress(ctx, "a", func(ctx context.Context) (*Blob, error) {
				return NewBlobFromBytes([]byte("a")), nil
			})
		})
	assert.NoError(t, err)
	buf, _ := blob.ReadAll()
	assert.Equal(t, "a", string(buf))
}

func TestSuppressionTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*10)
	defer cancel()
	app := New()
	blob, err := app.suppress(ctx, "a", func(ctx context.Context) (*Blob, error) {
		time.Sleep(time.Second)
		return NewEmptyBlob(), nil
	})
	assert.Nil(t, blob)
	assert.Equal(t, context.DeadlineExceeded, err)
}

func TestCacheHeaders(t *testing.T) {
	loader := loaderFunc(func(r *http.Request, image string) (*Blob, error) {
		return NewBlobFromBytes([]byte("content")), nil
	})
	t.Run("default", func(t *testing.T) {
		app := New(WithUnsafe(true), WithLoaders(loader))
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(
			http.MethodGet, "https://example.com/unsafe/foo.jpg", nil))
		assert.Equal(t, 200, w.Code)
		assert.NotEmpty(t, w.Header().Get("Expires"))
		assert.Equal(t, "public, s-maxage=604800, max-age=604800, no-transform, stale-while-revalidate=86400",
			w.Header().Get("Cache-Control"))
	})
	t.Run("custom swr", func(t *testing.T) {
		app := New(WithUnsafe(true), WithLoaders(loader),
			WithCacheHeaderTTL(time.Hour*169), WithCacheHeaderSWR(time.Hour*167))
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(
			http.MethodGet, "https://example.com/unsafe/foo.jpg", nil))
		assert.Equal(t, 200, w.Code)
		assert.Contains(t, w.Header().Get("Cache-Control"), "stale-while-revalidate=601200")
	})
	t.Run("no cache", func(t *testing.T) {
		app := New(WithUnsafe(true), WithLoaders(loader), WithCacheHeaderNoCache(true))
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(
			http.MethodGet, "https://example.com/unsafe/foo.jpg", nil))
		assert.Equal(t, 200, w.Code)
		assert.NotEmpty(t, w.Header().Get("Expires"))
		assert.Equal(t, "private, no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
	})
}

func TestDisableErrorBody(t *testing.T) {
	app := New(WithDisableErrorBody(true))
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(
		http.MethodGet, "https://example.com/foo.jpg", nil))
	assert.Equal(t, 403, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHeadRequest(t *testing.T) {
	app := New(WithUnsafe(true), WithLoaders(
		loaderFunc(func(r *http.Request, image string) (*Blob, error) {
			return NewBlobFromBytes([]byte("content")), nil
		}),
	))
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(
		http.MethodHead, "https://example.com/unsafe/foo.jpg", nil))
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "7", w.Header().Get("Content-Length"))
	assert.Empty(t, w.Body.String())
}
