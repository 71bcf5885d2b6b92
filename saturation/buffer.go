package saturation

import (
	"image"
	"image/color"
	"math"
)

// Buffer linear-light RGBA image buffer, 4 float32 channels per pixel,
// row-major contiguous
type Buffer struct {
	Width  int
	Height int
	Pix    []float32
}

// NewBuffer creates zeroed Buffer of width x height pixels
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*4),
	}
}

// FromImage converts image.Image into linear-light Buffer,
// applying the sRGB inverse transfer function on color channels.
// Alpha channel converts linearly
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	b := NewBuffer(bounds.Dx(), bounds.Dy())
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			b.Pix[i] = srgbToLinear(float32(c.R) / 0xffff)
			b.Pix[i+1] = srgbToLinear(float32(c.G) / 0xffff)
			b.Pix[i+2] = srgbToLinear(float32(c.B) / 0xffff)
			b.Pix[i+3] = float32(c.A) / 0xffff
			i += 4
		}
	}
	return b
}

// Image converts Buffer back to 16-bit image, applying the sRGB
// transfer function with channel values clipped to [0, 1]
func (b *Buffer) Image() *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, b.Width, b.Height))
	i := 0
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			img.SetNRGBA64(x, y, color.NRGBA64{
				R: to16(linearToSRGB(b.Pix[i])),
				G: to16(linearToSRGB(b.Pix[i+1])),
				B: to16(linearToSRGB(b.Pix[i+2])),
				A: to16(b.Pix[i+3]),
			})
			i += 4
		}
	}
	return img
}

// Clone returns deep copy of Buffer
func (b *Buffer) Clone() *Buffer {
	c := NewBuffer(b.Width, b.Height)
	copy(c.Pix, b.Pix)
	return c
}

func to16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}

func srgbToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow((float64(v)+0.055)/1.055, 2.4))
}

func linearToSRGB(v float32) float32 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return float32(1.055*math.Pow(float64(v), 1/2.4) - 0.055)
}
