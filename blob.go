package satine

import (
	"bytes"
	"io"
	"os"
	"sync"
	"time"
)

// Blob lazy byte buffer abstraction for file path, bytes and reader func,
// with content type sniffing and meta attributes
type Blob struct {
	newReader func() (io.ReadCloser, int64, error)
	once      sync.Once
	buf       []byte
	err       error

	contentType string
	blobType    BlobType

	// Stat file attributes from storage origin if present
	Stat *Stat
	// Meta image metadata from processor if present
	Meta *Meta
}

// Stat blob attributes from storage
type Stat struct {
	ModifiedTime time.Time
	ETag         string
	Size         int64
}

// Meta image metadata attributes
type Meta struct {
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// BlobType sniffed blob content type
type BlobType int

const (
	BlobTypeUnknown BlobType = iota
	BlobTypeEmpty
	BlobTypeJPEG
	BlobTypePNG
	BlobTypeGIF
	BlobTypeWEBP
	BlobTypeBMP
	BlobTypeTIFF
)

// NewBlob creates Blob from reader func
func NewBlob(newReader func() (reader io.ReadCloser, size int64, err error)) *Blob {
	return &Blob{newReader: newReader}
}

// NewBlobFromBytes creates Blob from bytes
func NewBlobFromBytes(buf []byte) *Blob {
	return &Blob{buf: buf}
}

// NewBlobFromPath creates Blob from file path
func NewBlobFromPath(filepath string) *Blob {
	return NewBlob(func() (io.ReadCloser, int64, error) {
		reader, err := os.Open(filepath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, 0, ErrNotFound
			}
			return nil, 0, err
		}
		stats, err := reader.Stat()
		if err != nil {
			return nil, 0, err
		}
		return reader, stats.Size(), nil
	})
}

// NewEmptyBlob creates empty Blob
func NewEmptyBlob() *Blob {
	return &Blob{}
}

var jpegHeader = []byte("\xFF\xD8\xFF")
var gifHeader = []byte("\x47\x49\x46")
var webpHeader = []byte("\x57\x45\x42\x50")
var pngHeader = []byte("\x89\x50\x4E\x47")
var bmpHeader = []byte("\x42\x4D")
var tifIIHeader = []byte("\x49\x49\x2A\x00")
var tifMMHeader = []byte("\x4D\x4D\x00\x2A")

func (b *Blob) readAllOnce() {
	b.once.Do(func() {
		if b.newReader != nil {
			reader, _, err := b.newReader()
			if err != nil {
				b.err = err
			}
			if reader != nil {
				buf, e := io.ReadAll(reader)
				_ = reader.Close()
				if len(buf) > 0 {
					b.buf = buf
				}
				if b.err == nil && e != nil {
					b.err = e
				}
			}
		}
		if len(b.buf) == 0 {
			b.buf = nil
			b.blobType = BlobTypeEmpty
			if b.err == nil && b.newReader != nil {
				b.err = ErrNotFound
			}
			return
		}
		b.sniff()
	})
}

func (b *Blob) sniff() {
	buf := b.buf
	if len(buf) < 12 {
		b.blobType = BlobTypeUnknown
		return
	}
	switch {
	case bytes.HasPrefix(buf, jpegHeader):
		b.blobType = BlobTypeJPEG
		b.setSniffedContentType("image/jpeg")
	case bytes.HasPrefix(buf, pngHeader):
		b.blobType = BlobTypePNG
		b.setSniffedContentType("image/png")
	case bytes.HasPrefix(buf, gifHeader):
		b.blobType = BlobTypeGIF
		b.setSniffedContentType("image/gif")
	case bytes.Equal(buf[8:12], webpHeader):
		b.blobType = BlobTypeWEBP
		b.setSniffedContentType("image/webp")
	case bytes.HasPrefix(buf, bmpHeader):
		b.blobType = BlobTypeBMP
		b.setSniffedContentType("image/bmp")
	case bytes.HasPrefix(buf, tifIIHeader) || bytes.HasPrefix(buf, tifMMHeader):
		b.blobType = BlobTypeTIFF
		b.setSniffedContentType("image/tiff")
	default:
		b.blobType = BlobTypeUnknown
	}
}

func (b *Blob) setSniffedContentType(contentType string) {
	if b.contentType == "" {
		b.contentType = contentType
	}
}

// IsEmpty blob has no underlying content
func (b *Blob) IsEmpty() bool {
	b.readAllOnce()
	return b.blobType == BlobTypeEmpty
}

// BlobType sniffed type from the first bytes of content
func (b *Blob) BlobType() BlobType {
	b.readAllOnce()
	return b.blobType
}

// ContentType of blob content, sniffed if not explicitly set
func (b *Blob) ContentType() string {
	if b.contentType != "" {
		return b.contentType
	}
	b.readAllOnce()
	if b.contentType == "" {
		return "application/octet-stream"
	}
	return b.contentType
}

// SetContentType overrides sniffed content type
func (b *Blob) SetContentType(contentType string) {
	b.contentType = contentType
}

// NewReader creates new io.ReadCloser over blob content with size if known
func (b *Blob) NewReader() (io.ReadCloser, int64, error) {
	b.readAllOnce()
	if b.err != nil {
		return nil, 0, b.err
	}
	return io.NopCloser(bytes.NewReader(b.buf)), int64(len(b.buf)), nil
}

// ReadAll blob content bytes
func (b *Blob) ReadAll() ([]byte, error) {
	b.readAllOnce()
	return b.buf, b.err
}

// Err blob error if any
func (b *Blob) Err() error {
	b.readAllOnce()
	return b.err
}

func isEmpty(b *Blob) bool {
	return b == nil || b.IsEmpty()
}
