// Package satconfig provides the saturation processor config option.
package satconfig

import (
	"flag"

	"github.com/pixelop/satine"
	"github.com/pixelop/satine/config"
	"github.com/pixelop/satine/processor/satprocessor"
	"github.com/pixelop/satine/saturation"
)

// WithSatProcessor with saturation processor based config option
func WithSatProcessor(fs *flag.FlagSet, cb config.Callback) satine.Option {
	var (
		satDefaultFactor = fs.Float64("sat-default-factor", saturation.DefaultFactor,
			"Default saturation factor applied when the URL carries no sat() segment. 1.0 leaves the image unchanged")
		satDefaultNorm = fs.String("sat-default-norm", "luminance",
			"Default norm for pixel luma: luminance, average, vector, power or aces")
		satColorProfile = fs.String("sat-color-profile", "srgb",
			"Working color profile for the luminance norm: srgb or prophoto")
		satJPEGQuality = fs.Int("sat-jpeg-quality", 85,
			"JPEG encode quality from 1 to 100")
		satMaxResolution = fs.Int("sat-max-resolution", 0,
			"Maximum supported source width x height pixels if set")
	)
	logger, isDebug := cb()
	return func(app *satine.Satine) {
		norm, err := saturation.ParseNorm(*satDefaultNorm)
		if err != nil {
			panic(err)
		}
		if _, err := saturation.ParseColorContext(*satColorProfile); err != nil {
			panic(err)
		}
		app.Processors = append(app.Processors,
			satprocessor.New(
				satprocessor.WithDefaultFactor(*satDefaultFactor),
				satprocessor.WithDefaultNorm(norm),
				satprocessor.WithDefaultProfile(*satColorProfile),
				satprocessor.WithJPEGQuality(*satJPEGQuality),
				satprocessor.WithMaxResolution(*satMaxResolution),
				satprocessor.WithLogger(logger),
				satprocessor.WithDebug(isDebug),
			),
		)
	}
}
