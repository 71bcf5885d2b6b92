// Package satprocessor implements the satine.Processor interface with a
// pure Go pipeline: decode, optional preview downscale, linear saturation
// transform in linear light, encode.
package satprocessor

import (
	"context"

	"github.com/nfnt/resize"
	"github.com/pixelop/satine"
	"github.com/pixelop/satine/satinepath"
	"github.com/pixelop/satine/saturation"
	"go.uber.org/zap"
)

// Processor pure Go saturation processor
type Processor struct {
	MaxResolution  int
	JPEGQuality    int
	DefaultFactor  float64
	DefaultNorm    saturation.Norm
	DefaultProfile string
	Logger         *zap.Logger
	Debug          bool
}

// New creates Processor
func New(options ...Option) *Processor {
	p := &Processor{
		MaxResolution:  16800 * 16800,
		JPEGQuality:    85,
		DefaultFactor:  saturation.DefaultFactor,
		DefaultNorm:    saturation.NormLuminance,
		DefaultProfile: "srgb",
		Logger:         zap.NewNop(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Startup implements satine.Processor interface
func (v *Processor) Startup(_ context.Context) error {
	return nil
}

// Shutdown implements satine.Processor interface
func (v *Processor) Shutdown(_ context.Context) error {
	return nil
}

// Process implements satine.Processor interface
func (v *Processor) Process(
	ctx context.Context, blob *satine.Blob, p satinepath.Params, _ satine.LoadFunc,
) (*satine.Blob, error) {
	if err := blob.Err(); err != nil {
		return nil, err
	}
	img, srcFormat, err := decodeImage(blob)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if v.MaxResolution > 0 && bounds.Dx()*bounds.Dy() > v.MaxResolution {
		return nil, satine.ErrMaxResolutionExceeded
	}
	if p.Width > 0 || p.Height > 0 {
		img = resize.Resize(uint(p.Width), uint(p.Height), img, resize.Lanczos3)
	}
	cfg := saturation.Config{
		Factor: v.DefaultFactor,
		Norm:   v.DefaultNorm,
	}
	if p.HasFactor {
		cfg.Factor = p.Factor
	}
	if p.Norm != "" {
		if cfg.Norm, err = saturation.ParseNorm(p.Norm); err != nil {
			return nil, satine.WrapError(err)
		}
	}
	profile := v.DefaultProfile
	if p.Profile != "" {
		profile = p.Profile
	}
	cc, err := saturation.ParseColorContext(profile)
	if err != nil {
		return nil, satine.WrapError(err)
	}
	in := saturation.FromImage(img)
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	out, err := saturation.Apply(in, cfg, cc)
	if err != nil {
		return nil, satine.WrapError(err)
	}
	format := outputFormat(srcFormat, p.Format)
	buf, contentType, err := encodeImage(out.Image(), format, v.JPEGQuality)
	if err != nil {
		return nil, err
	}
	if v.Debug {
		v.Logger.Debug("processed",
			zap.String("format", format),
			zap.Float64("factor", cfg.Factor),
			zap.String("norm", cfg.Norm.String()),
			zap.String("profile", cc.Name),
			zap.Int("width", out.Width),
			zap.Int("height", out.Height),
		)
	}
	res := satine.NewBlobFromBytes(buf)
	res.SetContentType(contentType)
	res.Meta = &satine.Meta{
		Format:      format,
		ContentType: contentType,
		Width:       out.Width,
		Height:      out.Height,
	}
	return res, nil
}
