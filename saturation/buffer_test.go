package saturation

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferImageRoundTrip(t *testing.T) {
	img := image.NewNRGBA64(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA64(x, y, color.NRGBA64{
				R: uint16(x * 0x3fff),
				G: uint16(y * 0x5fff),
				B: uint16((x + y) * 0x1fff),
				A: 0xffff - uint16(x*0x0fff),
			})
		}
	}
	b := FromImage(img)
	require.Equal(t, 4, b.Width)
	require.Equal(t, 3, b.Height)
	out := b.Image()
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			want := img.NRGBA64At(x, y)
			got := out.NRGBA64At(x, y)
			assert.InDelta(t, want.R, got.R, 1)
			assert.InDelta(t, want.G, got.G, 1)
			assert.InDelta(t, want.B, got.B, 1)
			assert.Equal(t, want.A, got.A)
		}
	}
}

func TestBufferNonZeroOriginBounds(t *testing.T) {
	img := image.NewNRGBA64(image.Rect(5, 7, 8, 9))
	img.SetNRGBA64(5, 7, color.NRGBA64{R: 0xffff, A: 0xffff})
	b := FromImage(img)
	assert.Equal(t, 3, b.Width)
	assert.Equal(t, 2, b.Height)
	assert.InDelta(t, 1.0, b.Pix[0], 1e-6)
}

func TestBufferClone(t *testing.T) {
	b := randomBuffer(t, 3, 3, 167)
	c := b.Clone()
	assert.Equal(t, b.Pix, c.Pix)
	c.Pix[0] = -1
	assert.NotEqual(t, b.Pix[0], c.Pix[0])
}

func TestNewBufferNegativeSize(t *testing.T) {
	b := NewBuffer(-1, -5)
	assert.Zero(t, b.Width)
	assert.Zero(t, b.Height)
	assert.Empty(t, b.Pix)
}

func TestTransferFunctionEdges(t *testing.T) {
	assert.Equal(t, float32(0), srgbToLinear(0))
	assert.InDelta(t, 1.0, srgbToLinear(1), 1e-6)
	assert.Equal(t, float32(0), linearToSRGB(0))
	assert.InDelta(t, 1.0, linearToSRGB(1), 1e-6)
	// clipping out of range values
	assert.Equal(t, uint16(0), to16(-0.5))
	assert.Equal(t, uint16(0xffff), to16(1.5))
	for _, v := range []float32{0.001, 0.04045, 0.2, 0.5, 0.9} {
		assert.InDelta(t, v, linearToSRGB(srgbToLinear(v)), 1e-5)
	}
}
