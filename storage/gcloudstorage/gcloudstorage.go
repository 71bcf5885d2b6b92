package gcloudstorage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pixelop/satine"
	"github.com/pixelop/satine/satinepath"
)

// GCloudStorage Google Cloud Storage implements satine.Storage interface
type GCloudStorage struct {
	BaseDir    string
	PathPrefix string
	ACL        string
	SafeChars  string
	Expiration time.Duration
	client     *storage.Client
	Bucket     string

	safeChars satinepath.SafeChars
}

func New(client *storage.Client, bucket string, options ...Option) *GCloudStorage {
	s := &GCloudStorage{client: client, Bucket: bucket}
	for _, option := range options {
		option(s)
	}
	s.safeChars = satinepath.NewSafeChars(s.SafeChars)
	return s
}

// Path transforms and validates image key for storage path.
// Google Cloud object names do not start with "/".
func (s *GCloudStorage) Path(image string) (string, bool) {
	image = "/" + satinepath.Normalize(image, s.safeChars)
	if !strings.HasPrefix(image, s.PathPrefix) {
		return "", false
	}
	joinedPath := filepath.Join(s.BaseDir, strings.TrimPrefix(image, s.PathPrefix))
	return strings.Trim(joinedPath, "/"), true
}

func (s *GCloudStorage) Get(r *http.Request, image string) (*satine.Blob, error) {
	image, ok := s.Path(image)
	if !ok {
		return nil, satine.ErrInvalid
	}
	object := s.client.Bucket(s.Bucket).Object(image)
	attrs, err := object.Attrs(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, satine.ErrNotFound
		}
		return nil, err
	}
	if s.Expiration > 0 && time.Since(attrs.Updated) > s.Expiration {
		return nil, satine.ErrExpired
	}
	blob := satine.NewBlob(func() (io.ReadCloser, int64, error) {
		reader, err := object.NewReader(r.Context())
		if err != nil {
			return nil, 0, err
		}
		return reader, attrs.Size, nil
	})
	if attrs.ContentType != "" {
		blob.SetContentType(attrs.ContentType)
	}
	blob.Stat = &satine.Stat{
		Size:         attrs.Size,
		ETag:         attrs.Etag,
		ModifiedTime: attrs.Updated,
	}
	return blob, nil
}

func (s *GCloudStorage) Put(ctx context.Context, image string, blob *satine.Blob) error {
	image, ok := s.Path(image)
	if !ok {
		return satine.ErrInvalid
	}
	reader, _, err := blob.NewReader()
	if err != nil {
		return err
	}
	defer reader.Close()

	writer := s.client.Bucket(s.Bucket).Object(image).NewWriter(ctx)
	defer func() {
		_ = writer.Close()
	}()
	if s.ACL != "" {
		writer.PredefinedACL = s.ACL
	}
	writer.ContentType = blob.ContentType()
	if _, err := io.Copy(writer, reader); err != nil {
		return err
	}
	return writer.Close()
}

func (s *GCloudStorage) Delete(ctx context.Context, image string) error {
	image, ok := s.Path(image)
	if !ok {
		return satine.ErrInvalid
	}
	return s.client.Bucket(s.Bucket).Object(image).Delete(ctx)
}

func (s *GCloudStorage) Stat(ctx context.Context, image string) (*satine.Stat, error) {
	image, ok := s.Path(image)
	if !ok {
		return nil, satine.ErrInvalid
	}
	attrs, err := s.client.Bucket(s.Bucket).Object(image).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, satine.ErrNotFound
		}
		return nil, err
	}
	return &satine.Stat{
		Size:         attrs.Size,
		ETag:         attrs.Etag,
		ModifiedTime: attrs.Updated,
	}, nil
}
