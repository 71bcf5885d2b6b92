package s3storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pixelop/satine"
	"github.com/pixelop/satine/satinepath"
)

// S3Storage AWS S3 Storage implements satine.Storage interface
type S3Storage struct {
	Client *s3.Client
	Bucket string

	BaseDir    string
	PathPrefix string
	ACL        string
	SafeChars  string
	Expiration time.Duration

	safeChars satinepath.SafeChars
}

// New creates S3Storage from aws.Config.
// A bucket of the form "bucket/base/dir" extracts the base dir.
func New(cfg aws.Config, bucket string, options ...Option) *S3Storage {
	baseDir := "/"
	if idx := strings.Index(bucket, "/"); idx > -1 {
		baseDir = bucket[idx:]
		bucket = bucket[:idx]
	}
	s := &S3Storage{
		Client: s3.NewFromConfig(cfg),
		Bucket: bucket,

		BaseDir:    baseDir,
		PathPrefix: "/",
		ACL:        string(types.ObjectCannedACLPublicRead),
	}
	for _, option := range options {
		option(s)
	}
	if s.SafeChars == "--" {
		s.safeChars = noopSafeChars{}
	} else {
		// https://docs.aws.amazon.com/AmazonS3/latest/userguide/object-keys.html#object-key-guidelines-safe-characters
		s.safeChars = satinepath.NewSafeChars("!\"()*" + s.SafeChars)
	}
	return s
}

type noopSafeChars struct{}

func (noopSafeChars) ShouldEscape(byte) bool { return false }

// Path transforms and validates image key for storage path
func (s *S3Storage) Path(image string) (string, bool) {
	image = "/" + satinepath.Normalize(image, s.safeChars)
	if !strings.HasPrefix(image, s.PathPrefix) {
		return "", false
	}
	return filepath.Join(s.BaseDir, strings.TrimPrefix(image, s.PathPrefix)), true
}

// Get implements satine.Storage interface
func (s *S3Storage) Get(r *http.Request, image string) (*satine.Blob, error) {
	ctx := r.Context()
	image, ok := s.Path(image)
	if !ok {
		return nil, satine.ErrInvalid
	}
	var blob *satine.Blob
	var once sync.Once
	blob = satine.NewBlob(func() (io.ReadCloser, int64, error) {
		input := &s3.GetObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(image),
		}
		out, err := s.Client.GetObject(ctx, input)
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, 0, satine.ErrNotFound
		} else if err != nil {
			return nil, 0, err
		}
		once.Do(func() {
			if out.ContentType != nil {
				blob.SetContentType(*out.ContentType)
			}
			if out.ContentLength != nil && out.ETag != nil && out.LastModified != nil {
				blob.Stat = &satine.Stat{
					Size:         *out.ContentLength,
					ETag:         *out.ETag,
					ModifiedTime: *out.LastModified,
				}
			}
		})
		if s.Expiration > 0 && out.LastModified != nil {
			if time.Since(*out.LastModified) > s.Expiration {
				return nil, 0, satine.ErrExpired
			}
		}
		var size int64
		if out.ContentLength != nil {
			size = *out.ContentLength
		}
		return out.Body, size, nil
	})
	return blob, nil
}

// Put implements satine.Storage interface
func (s *S3Storage) Put(ctx context.Context, image string, blob *satine.Blob) error {
	image, ok := s.Path(image)
	if !ok {
		return satine.ErrInvalid
	}
	buf, err := blob.ReadAll()
	if err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		ACL:         types.ObjectCannedACL(s.ACL),
		Body:        bytes.NewReader(buf),
		Bucket:      aws.String(s.Bucket),
		ContentType: aws.String(blob.ContentType()),
		Key:         aws.String(image),
	}
	_, err = s.Client.PutObject(ctx, input)
	return err
}

// Delete implements satine.Storage interface
func (s *S3Storage) Delete(ctx context.Context, image string) error {
	image, ok := s.Path(image)
	if !ok {
		return satine.ErrInvalid
	}
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(image),
	})
	return err
}

// Stat implements satine.Storage interface
func (s *S3Storage) Stat(ctx context.Context, image string) (stat *satine.Stat, err error) {
	image, ok := s.Path(image)
	if !ok {
		return nil, satine.ErrInvalid
	}
	input := &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(image),
	}
	head, err := s.Client.HeadObject(ctx, input)
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return nil, satine.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	stat = &satine.Stat{}
	if head.ContentLength != nil {
		stat.Size = *head.ContentLength
	}
	if head.ETag != nil {
		stat.ETag = *head.ETag
	}
	if head.LastModified != nil {
		stat.ModifiedTime = *head.LastModified
	}
	return stat, nil
}
