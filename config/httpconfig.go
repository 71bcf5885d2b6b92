package config

import (
	"flag"

	"github.com/pixelop/satine"
	"github.com/pixelop/satine/loader/httploader"
)

// withHTTPLoader with HTTP Loader fallback based config option
func withHTTPLoader(fs *flag.FlagSet, cb Callback) satine.Option {
	var (
		httpLoaderForwardHeaders = fs.String("http-loader-forward-headers", "",
			"Forward request header to HTTP Loader request by csv e.g. User-Agent,Accept")
		httpLoaderForwardClientHeaders = fs.Bool("http-loader-forward-client-headers", false,
			"Forward browser client request headers to HTTP Loader request")
		httpLoaderAllowedSources = fs.String("http-loader-allowed-sources", "",
			"HTTP Loader allowed hosts whitelist to load images from if set. Accept csv with glob pattern e.g. *.google.com,*.github.com.")
		httpLoaderMaxAllowedSize = fs.Int("http-loader-max-allowed-size", 0,
			"HTTP Loader maximum allowed size in bytes for loading images if set")
		httpLoaderInsecureSkipVerifyTransport = fs.Bool("http-loader-insecure-skip-verify-transport", false,
			"HTTP Loader to use HTTP transport with InsecureSkipVerify true")
		httpLoaderDefaultScheme = fs.String("http-loader-default-scheme", "https",
			"HTTP Loader default scheme if not specified by image path. Set \"nil\" to disable default scheme.")
		httpLoaderAccept = fs.String("http-loader-accept", "*/*",
			"HTTP Loader set request Accept header and validate response Content-Type header")
		httpLoaderDisable = fs.Bool("http-loader-disable", false,
			"Disable HTTP Loader")

		_, _ = cb()
	)
	return func(app *satine.Satine) {
		if !*httpLoaderDisable {
			// fallback with HTTP Loader unless explicitly disabled
			app.Loaders = append(app.Loaders,
				httploader.New(
					httploader.WithForwardClientHeaders(*httpLoaderForwardClientHeaders),
					httploader.WithAccept(*httpLoaderAccept),
					httploader.WithForwardHeaders(*httpLoaderForwardHeaders),
					httploader.WithAllowedSources(*httpLoaderAllowedSources),
					httploader.WithMaxAllowedSize(*httpLoaderMaxAllowedSize),
					httploader.WithInsecureSkipVerifyTransport(*httpLoaderInsecureSkipVerifyTransport),
					httploader.WithDefaultScheme(*httpLoaderDefaultScheme),
				),
			)
		}
	}
}
