package filestorage

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pixelop/satine"
	"github.com/pixelop/satine/satinepath"
)

var dotFileRegex = regexp.MustCompile("/\\.")

// FileStorage local file system storage
type FileStorage struct {
	BaseDir         string
	PathPrefix      string
	Blacklists      []*regexp.Regexp
	MkdirPermission os.FileMode
	WritePermission os.FileMode
	SaveErrIfExists bool
	SafeChars       satinepath.SafeChars
	Expiration      time.Duration
}

func New(baseDir string, options ...Option) *FileStorage {
	s := &FileStorage{
		BaseDir:         baseDir,
		PathPrefix:      "/",
		Blacklists:      []*regexp.Regexp{dotFileRegex},
		MkdirPermission: 0755,
		WritePermission: 0666,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Path returns the file path under BaseDir for an image key,
// or false if the key is blacklisted or outside PathPrefix
func (s *FileStorage) Path(image string) (string, bool) {
	image = "/" + satinepath.Normalize(image, s.SafeChars)
	for _, blacklist := range s.Blacklists {
		if blacklist.MatchString(image) {
			return "", false
		}
	}
	if !strings.HasPrefix(image, s.PathPrefix) {
		return "", false
	}
	return filepath.Join(s.BaseDir, strings.TrimPrefix(image, s.PathPrefix)), true
}

func (s *FileStorage) Get(_ *http.Request, image string) (*satine.Blob, error) {
	image, ok := s.Path(image)
	if !ok {
		return nil, satine.ErrPass
	}
	stats, err := os.Stat(image)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, satine.ErrNotFound
		}
		return nil, err
	}
	if s.Expiration > 0 && time.Since(stats.ModTime()) > s.Expiration {
		return nil, satine.ErrExpired
	}
	return satine.NewBlobFromPath(image), nil
}

func (s *FileStorage) Put(_ context.Context, image string, blob *satine.Blob) (err error) {
	image, ok := s.Path(image)
	if !ok {
		return satine.ErrInvalid
	}
	if err = os.MkdirAll(filepath.Dir(image), s.MkdirPermission); err != nil {
		return
	}
	reader, _, err := blob.NewReader()
	if err != nil {
		return
	}
	defer reader.Close()
	flag := os.O_RDWR | os.O_CREATE | os.O_TRUNC
	if s.SaveErrIfExists {
		flag = os.O_RDWR | os.O_CREATE | os.O_EXCL
	}
	w, err := os.OpenFile(image, flag, s.WritePermission)
	if err != nil {
		return
	}
	defer w.Close()
	if _, err = w.ReadFrom(reader); err != nil {
		return
	}
	return
}

func (s *FileStorage) Delete(_ context.Context, image string) error {
	image, ok := s.Path(image)
	if !ok {
		return satine.ErrInvalid
	}
	return os.Remove(image)
}

func (s *FileStorage) Stat(_ context.Context, image string) (*satine.Stat, error) {
	image, ok := s.Path(image)
	if !ok {
		return nil, satine.ErrInvalid
	}
	stats, err := os.Stat(image)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, satine.ErrNotFound
		}
		return nil, err
	}
	return &satine.Stat{
		Size:         stats.Size(),
		ModifiedTime: stats.ModTime(),
	}, nil
}
