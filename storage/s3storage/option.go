package s3storage

import (
	"strings"
	"time"

	"github.com/pixelop/satine/satinepath"
)

type Option func(h *S3Storage)

func WithBaseDir(baseDir string) Option {
	return func(s *S3Storage) {
		if baseDir != "" {
			baseDir = "/" + satinepath.Normalize(baseDir, nil)
			s.BaseDir = baseDir
		}
	}
}

func WithPathPrefix(prefix string) Option {
	return func(s *S3Storage) {
		if prefix != "" {
			prefix = "/" + satinepath.Normalize(prefix, nil)
			if prefix != "/" {
				prefix += "/"
			}
			s.PathPrefix = prefix
		}
	}
}

func WithACL(acl string) Option {
	return func(s *S3Storage) {
		if acl != "" {
			s.ACL = acl
		}
	}
}

func WithSafeChars(chars string) Option {
	return func(s *S3Storage) {
		if strings.TrimSpace(chars) != "" {
			s.SafeChars = chars
		}
	}
}

func WithExpiration(exp time.Duration) Option {
	return func(s *S3Storage) {
		if exp > 0 {
			s.Expiration = exp
		}
	}
}
