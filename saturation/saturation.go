// Package saturation implements the linear saturation transform:
// each color channel is interpolated, or extrapolated, from a per-pixel
// neutral luminance by a constant factor. The luminance derivation is
// selectable via Norm mode, alpha always passes through untouched.
package saturation

import (
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrDimensionMismatch output buffer shape differs from input
	ErrDimensionMismatch = errors.New("saturation: dimension mismatch")
	// ErrInvalidColorContext norm mode requires a color transform that was not supplied
	ErrInvalidColorContext = errors.New("saturation: invalid color context")
	// ErrUnknownNorm unrecognised norm mode
	ErrUnknownNorm = errors.New("saturation: unknown norm")
)

// DefaultFactor default saturation factor
const DefaultFactor = 0.96

// Config saturation invocation parameters.
// Factor 1 is identity, 0 full desaturation, above 1 oversaturates.
// The creative range is [0, 2] but values outside are honored as the
// formula extrapolates naturally; no clamping is applied
type Config struct {
	Factor float64
	Norm   Norm
	// Workers number of parallel chunks, defaults to GOMAXPROCS
	Workers int
}

// Apply runs the transform into a freshly allocated output buffer
func Apply(in *Buffer, cfg Config, cc *ColorContext) (*Buffer, error) {
	out := NewBuffer(in.Width, in.Height)
	if err := ApplyInto(in, out, cfg, cc); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyInto runs the transform into a caller-owned output buffer of
// identical shape. Validation happens before any pixel is written so a
// failed call never produces partial output. in == out aliasing is safe
// as each output pixel depends only on the same-index input pixel
func ApplyInto(in, out *Buffer, cfg Config, cc *ColorContext) error {
	if out.Width != in.Width || out.Height != in.Height ||
		len(out.Pix) != len(in.Pix) {
		return ErrDimensionMismatch
	}
	luma, err := cfg.Norm.lumaFunc(cc)
	if err != nil {
		return err
	}
	n := in.Width * in.Height
	if n == 0 {
		return nil
	}
	if cfg.Factor == 1 {
		// exact identity, float arithmetic would drift by rounding
		copy(out.Pix, in.Pix)
		return nil
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	factor := float32(cfg.Factor)
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		src := in.Pix[start*4 : end*4]
		dst := out.Pix[start*4 : end*4]
		g.Go(func() error {
			for i := 0; i < len(src); i += 4 {
				r, gg, b := src[i], src[i+1], src[i+2]
				l := luma(r, gg, b)
				dst[i] = l + factor*(r-l)
				dst[i+1] = l + factor*(gg-l)
				dst[i+2] = l + factor*(b-l)
				dst[i+3] = src[i+3]
			}
			return nil
		})
	}
	return g.Wait()
}
