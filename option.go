package satine

import (
	"time"

	"github.com/pixelop/satine/satinepath"
	"go.uber.org/zap"
)

// Option app option
type Option func(app *Satine)

// WithLoaders with loaders option
func WithLoaders(loaders ...Loader) Option {
	return func(app *Satine) {
		app.Loaders = append(app.Loaders, loaders...)
	}
}

// WithProcessors with processors option
func WithProcessors(processors ...Processor) Option {
	return func(app *Satine) {
		app.Processors = append(app.Processors, processors...)
	}
}

// WithStorages with image storages option
func WithStorages(storages ...Storage) Option {
	return func(app *Satine) {
		app.Storages = append(app.Storages, storages...)
	}
}

// WithResultStorages with result storages option
func WithResultStorages(storages ...Storage) Option {
	return func(app *Satine) {
		app.ResultStorages = append(app.ResultStorages, storages...)
	}
}

// WithSigner with URL signature signer option
func WithSigner(signer satinepath.Signer) Option {
	return func(app *Satine) {
		app.Signer = signer
	}
}

// WithResultKey with result key generator option
func WithResultKey(resultKey satinepath.ResultKey) Option {
	return func(app *Satine) {
		if resultKey != nil {
			app.ResultKey = resultKey
		}
	}
}

// WithRequestTimeout with request timeout option
func WithRequestTimeout(timeout time.Duration) Option {
	return func(app *Satine) {
		app.RequestTimeout = timeout
	}
}

// WithLoadTimeout with load timeout option
func WithLoadTimeout(timeout time.Duration) Option {
	return func(app *Satine) {
		app.LoadTimeout = timeout
	}
}

// WithSaveTimeout with save timeout option
func WithSaveTimeout(timeout time.Duration) Option {
	return func(app *Satine) {
		app.SaveTimeout = timeout
	}
}

// WithProcessTimeout with process timeout option
func WithProcessTimeout(timeout time.Duration) Option {
	return func(app *Satine) {
		app.ProcessTimeout = timeout
	}
}

// WithProcessConcurrency with process concurrency option
func WithProcessConcurrency(concurrency int64) Option {
	return func(app *Satine) {
		if concurrency > 0 {
			app.ProcessConcurrency = concurrency
		}
	}
}

// WithCacheHeaderTTL with cache header ttl option
func WithCacheHeaderTTL(ttl time.Duration) Option {
	return func(app *Satine) {
		app.CacheHeaderTTL = ttl
	}
}

// WithCacheHeaderSWR with cache header stale-while-revalidate option
func WithCacheHeaderSWR(swr time.Duration) Option {
	return func(app *Satine) {
		app.CacheHeaderSWR = swr
	}
}

// WithCacheHeaderNoCache with no-cache cache header option
func WithCacheHeaderNoCache(noCache bool) Option {
	return func(app *Satine) {
		if noCache {
			app.CacheHeaderTTL = 0
		}
	}
}

// WithUnsafe with unsafe mode option that skips URL signature check
func WithUnsafe(unsafe bool) Option {
	return func(app *Satine) {
		app.Unsafe = unsafe
	}
}

// WithBasePathRedirect with base path redirect option
func WithBasePathRedirect(url string) Option {
	return func(app *Satine) {
		app.BasePathRedirect = url
	}
}

// WithDisableErrorBody with disable error body option
func WithDisableErrorBody(disabled bool) Option {
	return func(app *Satine) {
		app.DisableErrorBody = disabled
	}
}

// WithDisableParamsEndpoint with disable params endpoint option
func WithDisableParamsEndpoint(disabled bool) Option {
	return func(app *Satine) {
		app.DisableParamsEndpoint = disabled
	}
}

// WithLogger with logger option
func WithLogger(logger *zap.Logger) Option {
	return func(app *Satine) {
		if logger != nil {
			app.Logger = logger
		}
	}
}

// WithDebug with debug option
func WithDebug(debug bool) Option {
	return func(app *Satine) {
		app.Debug = debug
	}
}
