// Package config assembles the satine server from command line flags,
// environment variables and config file.
package config

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"flag"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/pixelop/satine"
	"github.com/pixelop/satine/metrics/prometheusmetrics"
	"github.com/pixelop/satine/satinepath"
	"github.com/pixelop/satine/server"
	"go.uber.org/zap"
)

// Callback parses the flag set and returns the logger and debug flag.
// Setters call it exactly once, after declaring their flags.
type Callback func() (logger *zap.Logger, isDebug bool)

// Setter declares flags and returns a satine option bound to them
type Setter func(fs *flag.FlagSet, cb Callback) satine.Option

// CreateServer creates the server from command args and option setters
func CreateServer(args []string, setters ...Setter) (srv *server.Server) {
	// base setters
	setters = append(setters, withFileSystem, withHTTPLoader)

	var (
		fs      = flag.NewFlagSet("satine", flag.ExitOnError)
		logger  *zap.Logger
		err     error
		options []satine.Option
		alg     = sha1.New

		debug        = fs.Bool("debug", false, "Debug mode")
		version      = fs.Bool("version", false, "Satine version")
		port         = fs.Int("port", 8000, "Server port")
		goMaxProcess = fs.Int("gomaxprocs", 0, "GOMAXPROCS")

		_ = fs.String("config", ".env", "Retrieve configuration from the given file")

		satineSecret = fs.String("satine-secret", "",
			"Secret key for signing satine URL")
		satineUnsafe = fs.Bool("satine-unsafe", false,
			"Unsafe mode that does not require URL signature. Prone to URL tampering")
		satineRequestTimeout = fs.Duration("satine-request-timeout",
			time.Second*30, "Timeout for performing satine request")
		satineLoadTimeout = fs.Duration("satine-load-timeout",
			time.Second*20, "Timeout for satine Loader request, should be smaller than satine-request-timeout")
		satineSaveTimeout = fs.Duration("satine-save-timeout",
			time.Second*20, "Timeout for saving image to satine Storage")
		satineProcessTimeout = fs.Duration("satine-process-timeout",
			time.Second*20, "Timeout for image processing")
		satineBasePathRedirect = fs.String("satine-base-path-redirect", "",
			"URL to redirect for satine / base path e.g. https://www.google.com")
		satineProcessConcurrency = fs.Int64("satine-process-concurrency",
			-1, "Semaphore size for process concurrency control. Set -1 for no limit")
		satineCacheHeaderTTL = fs.Duration("satine-cache-header-ttl",
			time.Hour*24*7, "HTTP Cache-Control header TTL for successful image response")
		satineCacheHeaderSWR = fs.Duration("satine-cache-header-swr",
			time.Hour*24, "HTTP Cache-Control header stale-while-revalidate for successful image response")
		satineCacheHeaderNoCache = fs.Bool("satine-cache-header-no-cache",
			false, "HTTP Cache-Control header no-cache for successful image response")
		satineDisableErrorBody      = fs.Bool("satine-disable-error-body", false, "Disable response body on error")
		satineDisableParamsEndpoint = fs.Bool("satine-disable-params-endpoint", false, "Disable /params endpoint")
		satineSignerType            = fs.String("satine-signer-type", "sha1", "URL signature hasher type sha1, sha256 or sha512")
		satineSignerTruncate        = fs.Int("satine-signer-truncate", 0, "URL signature truncate at length")

		bind = fs.String("bind", "",
			"Server address and port to bind, override server address and port config if set e.g. :8000")
		serverAddress = fs.String("server-address", "",
			"Server address")
		serverPathPrefix = fs.String("server-path-prefix", "",
			"Server path prefix")
		serverCORS = fs.Bool("server-cors", false,
			"Enable CORS")
		serverStripQueryString = fs.Bool("server-strip-query-string", false,
			"Enable strip query string redirection")
		serverAccessLog = fs.Bool("server-access-log", false,
			"Enable server access log")
		serverCertFile = fs.String("server-cert-file", "",
			"TLS certificate file for HTTPS")
		serverKeyFile = fs.String("server-key-file", "",
			"TLS key file for HTTPS")

		sentryDsn = fs.String("sentry-dsn", "",
			"Sentry DSN to exfiltrate error level logs as sentry events")

		prometheusBind = fs.String("prometheus-bind", "",
			"Prometheus metrics bind address e.g. :5000. Enable Prometheus only if this value present")
		prometheusPath = fs.String("prometheus-path", "/", "Prometheus metrics path")
	)

	options = applySetters(fs, setters, func() (*zap.Logger, bool) {
		if err = ff.Parse(fs, args,
			ff.WithEnvVars(),
			ff.WithConfigFileFlag("config"),
			ff.WithIgnoreUndefined(true),
			ff.WithAllowMissingConfigFile(true),
			ff.WithConfigFileParser(ff.EnvParser),
		); err != nil {
			panic(err)
		}
		if *debug {
			if logger, err = zap.NewDevelopment(); err != nil {
				panic(err)
			}
		} else {
			if logger, err = zap.NewProduction(); err != nil {
				panic(err)
			}
		}
		return logger, *debug
	})

	if *version {
		fmt.Println(satine.Version)
		return
	}

	if *goMaxProcess > 0 {
		logger.Debug("GOMAXPROCS", zap.Int("count", *goMaxProcess))
		runtime.GOMAXPROCS(*goMaxProcess)
	}

	switch strings.ToLower(*satineSignerType) {
	case "sha256":
		alg = sha256.New
	case "sha512":
		alg = sha512.New
	}

	var serverOptions = []server.Option{
		server.WithAddress(*serverAddress),
		server.WithPort(*port),
		server.WithPathPrefix(*serverPathPrefix),
		server.WithCORS(*serverCORS),
		server.WithStripQueryString(*serverStripQueryString),
		server.WithAccessLog(*serverAccessLog),
		server.WithCertFile(*serverCertFile),
		server.WithKeyFile(*serverKeyFile),
		server.WithAddr(*bind),
		server.WithSentry(*sentryDsn),
		server.WithLogger(logger),
		server.WithDebug(*debug),
	}
	if *prometheusBind != "" {
		pm := prometheusmetrics.New(
			prometheusmetrics.WithAddr(*prometheusBind),
			prometheusmetrics.WithPath(*prometheusPath),
			prometheusmetrics.WithLogger(logger),
		)
		serverOptions = append(serverOptions, server.WithMetrics(pm))
	}

	return server.New(
		satine.New(append(
			options,
			satine.WithSigner(satinepath.NewHMACSigner(
				alg, *satineSignerTruncate, *satineSecret,
			)),
			satine.WithBasePathRedirect(*satineBasePathRedirect),
			satine.WithRequestTimeout(*satineRequestTimeout),
			satine.WithLoadTimeout(*satineLoadTimeout),
			satine.WithSaveTimeout(*satineSaveTimeout),
			satine.WithProcessTimeout(*satineProcessTimeout),
			satine.WithProcessConcurrency(*satineProcessConcurrency),
			satine.WithCacheHeaderTTL(*satineCacheHeaderTTL),
			satine.WithCacheHeaderSWR(*satineCacheHeaderSWR),
			satine.WithCacheHeaderNoCache(*satineCacheHeaderNoCache),
			satine.WithDisableErrorBody(*satineDisableErrorBody),
			satine.WithDisableParamsEndpoint(*satineDisableParamsEndpoint),
			satine.WithUnsafe(*satineUnsafe),
			satine.WithLogger(logger),
			satine.WithDebug(*debug),
		)...),
		serverOptions...,
	)
}

// applySetters resolves setters right to left, so the parse callback
// fires once after every setter declared its flags
func applySetters(fs *flag.FlagSet, setters []Setter, cb Callback) (options []satine.Option) {
	options, _, _ = doSetters(fs, setters, cb)
	return
}

func doSetters(
	fs *flag.FlagSet, setters []Setter, cb Callback,
) (options []satine.Option, logger *zap.Logger, isDebug bool) {
	if len(setters) == 0 {
		logger, isDebug = cb()
		return
	}
	var last = len(setters) - 1
	options = append(options, setters[last](fs, func() (*zap.Logger, bool) {
		opts, l, i := doSetters(fs, setters[:last], cb)
		options = append(options, opts...)
		logger = l
		isDebug = i
		return logger, isDebug
	}))
	return
}
