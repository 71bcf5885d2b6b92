package satprocessor

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/pixelop/satine"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	// webp decode support
	_ "golang.org/x/image/webp"
)

func decodeImage(blob *satine.Blob) (image.Image, string, error) {
	reader, _, err := blob.NewReader()
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = reader.Close()
	}()
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, "", satine.ErrUnsupportedFormat
	}
	return img, format, nil
}

// outputFormat resolves encode format: explicit format param wins,
// otherwise source format. webp has no pure Go encoder so falls back
// to png
func outputFormat(srcFormat, override string) string {
	format := srcFormat
	if override != "" {
		format = override
	}
	if format == "webp" && override == "" {
		return "png"
	}
	return format
}

func encodeImage(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer
	switch format {
	case "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/png", nil
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/gif", nil
	case "bmp":
		if err := bmp.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/bmp", nil
	case "tiff":
		if err := tiff.Encode(&buf, img, nil); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/tiff", nil
	}
	return nil, "", satine.ErrUnsupportedFormat
}
