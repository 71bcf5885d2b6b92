package saturation

import (
	"fmt"
	"math"
	"strings"
)

// Norm selects how the per-pixel neutral luminance is derived
type Norm int

const (
	// NormLuminance relative luminance Y of the reference space,
	// requires ColorContext transform matrix
	NormLuminance Norm = iota
	// NormAverage channel average (R+G+B)/3
	NormAverage
	// NormVector euclidean vector norm sqrt(R²+G²+B²)
	NormVector
	// NormPower power norm (R³+G³+B³)/(R²+G²+B²)
	NormPower
	// NormACES ACES chroma-weighted luminance proxy YC
	NormACES
)

var normNames = map[Norm]string{
	NormLuminance: "luminance",
	NormAverage:   "average",
	NormVector:    "vector",
	NormPower:     "power",
	NormACES:      "aces",
}

// String implements fmt.Stringer
func (n Norm) String() string {
	if s, ok := normNames[n]; ok {
		return s
	}
	return fmt.Sprintf("norm(%d)", int(n))
}

// ParseNorm norm mode from its string name
func ParseNorm(s string) (Norm, error) {
	for n, name := range normNames {
		if name == strings.ToLower(strings.TrimSpace(s)) {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownNorm, s)
}

// ColorContext working RGB to CIE XYZ transform supplied by the caller,
// required by profile-aware norm modes
type ColorContext struct {
	Name     string
	RGBToXYZ [3][3]float32
}

// SRGBContext sRGB / Rec.709 primaries, D65 white point
func SRGBContext() *ColorContext {
	return &ColorContext{
		Name: "srgb",
		RGBToXYZ: [3][3]float32{
			{0.4124564, 0.3575761, 0.1804375},
			{0.2126729, 0.7151522, 0.0721750},
			{0.0193339, 0.1191920, 0.9503041},
		},
	}
}

// ProPhotoContext ProPhoto RGB primaries, D50 white point
func ProPhotoContext() *ColorContext {
	return &ColorContext{
		Name: "prophoto",
		RGBToXYZ: [3][3]float32{
			{0.7976749, 0.1351917, 0.0313534},
			{0.2880402, 0.7118741, 0.0000857},
			{0.0000000, 0.0000000, 0.8252100},
		},
	}
}

// ParseColorContext context from profile name
func ParseColorContext(s string) (*ColorContext, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "srgb":
		return SRGBContext(), nil
	case "prophoto":
		return ProPhotoContext(), nil
	}
	return nil, fmt.Errorf("%w: unknown profile %q", ErrInvalidColorContext, s)
}

func (cc *ColorContext) valid() bool {
	if cc == nil {
		return false
	}
	y := cc.RGBToXYZ[1]
	return y[0] != 0 || y[1] != 0 || y[2] != 0
}

type normFunc func(r, g, b float32) float32

// lumaFunc resolves the scalar norm function for the mode.
// Only luminance requires a color context; the remaining modes are
// profile independent
func (n Norm) lumaFunc(cc *ColorContext) (normFunc, error) {
	switch n {
	case NormLuminance:
		if !cc.valid() {
			return nil, ErrInvalidColorContext
		}
		y0, y1, y2 := cc.RGBToXYZ[1][0], cc.RGBToXYZ[1][1], cc.RGBToXYZ[1][2]
		return func(r, g, b float32) float32 {
			return y0*r + y1*g + y2*b
		}, nil
	case NormAverage:
		return func(r, g, b float32) float32 {
			return (r + g + b) / 3
		}, nil
	case NormVector:
		return func(r, g, b float32) float32 {
			return float32(math.Sqrt(float64(r*r + g*g + b*b)))
		}, nil
	case NormPower:
		return func(r, g, b float32) float32 {
			r2, g2, b2 := r*r, g*g, b*b
			sum := r2 + g2 + b2
			if sum == 0 {
				return 0
			}
			return (r*r2 + g*g2 + b*b2) / sum
		}, nil
	case NormACES:
		// YC ~ Y + K * chroma, normalized so RGB 1 1 1 maps to YC 1
		const ycRadiusWeight = 1.75
		return func(r, g, b float32) float32 {
			chroma := float32(math.Sqrt(float64(b*(b-g) + g*(g-r) + r*(r-b))))
			return (r + g + b + ycRadiusWeight*chroma) / 3
		}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownNorm, int(n))
}
