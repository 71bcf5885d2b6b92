package satprocessor

import (
	"github.com/pixelop/satine/saturation"
	"go.uber.org/zap"
)

// Option Processor option
type Option func(v *Processor)

// WithMaxResolution with maximum pixel count option
func WithMaxResolution(res int) Option {
	return func(v *Processor) {
		if res > 0 {
			v.MaxResolution = res
		}
	}
}

// WithJPEGQuality with JPEG encode quality option
func WithJPEGQuality(quality int) Option {
	return func(v *Processor) {
		if quality > 0 {
			v.JPEGQuality = quality
		}
	}
}

// WithDefaultFactor with default saturation factor option,
// applied when the URL omits the sat() segment
func WithDefaultFactor(factor float64) Option {
	return func(v *Processor) {
		v.DefaultFactor = factor
	}
}

// WithDefaultNorm with default norm mode option
func WithDefaultNorm(norm saturation.Norm) Option {
	return func(v *Processor) {
		v.DefaultNorm = norm
	}
}

// WithDefaultProfile with default color profile option
func WithDefaultProfile(profile string) Option {
	return func(v *Processor) {
		if profile != "" {
			v.DefaultProfile = profile
		}
	}
}

// WithLogger with logger option
func WithLogger(logger *zap.Logger) Option {
	return func(v *Processor) {
		if logger != nil {
			v.Logger = logger
		}
	}
}

// WithDebug with debug option
func WithDebug(debug bool) Option {
	return func(v *Processor) {
		v.Debug = debug
	}
}
