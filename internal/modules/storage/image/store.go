// Package image stores uploaded entity images on local disk or an
// S3-compatible bucket. Failures never abort an entity save: callers get
// the placeholder URL back alongside the error.
package image

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	appcfg "github.com/bhutan-travel/core/internal/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTooLarge          = errors.New("image exceeds the size limit")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrNotImage          = errors.New("file is not a decodable image")
	ErrNoFile            = errors.New("no file")
)

// Store is what entity services consume.
type Store interface {
	Upload(ctx context.Context, fh *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, url string) (bool, error)
}

// Backend persists already-processed bytes and maps them to public URLs.
type Backend interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, url string) (bool, error)
}

type Options struct {
	MaxBytes    int64
	MaxWidth    int
	Formats     []string
	Placeholder string
}

type Service struct {
	backend     Backend
	proc        processor
	placeholder string
	logger      *zap.Logger
}

var _ Store = (*Service)(nil)

func NewService(backend Backend, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend:     backend,
		proc:        newProcessor(opts),
		placeholder: opts.Placeholder,
		logger:      logger.Named("image"),
	}
}

// New builds the service for the configured storage driver.
func New(ctx context.Context, cfg *appcfg.AppConfig, logger *zap.Logger) (*Service, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Storage.Driver {
	case appcfg.StorageS3:
		backend, err = NewS3Store(ctx, cfg.Storage.S3)
	default:
		backend, err = NewLocalStore(LocalDir(cfg), cfg.Storage.PublicPrefix)
	}
	if err != nil {
		return nil, err
	}
	return NewService(backend, Options{
		MaxBytes:    int64(cfg.Storage.MaxSizeMB) << 20,
		MaxWidth:    cfg.Storage.MaxWidth,
		Formats:     cfg.ImageFormats(),
		Placeholder: cfg.Storage.Placeholder,
	}, logger), nil
}

// LocalDir is the directory served under the public prefix.
func LocalDir(cfg *appcfg.AppConfig) string {
	return filepath.Join(cfg.StaticDir(), strings.Trim(cfg.Storage.PublicPrefix, "/"))
}

// Upload stores fh and returns its public URL. On failure the placeholder
// URL is returned together with the error.
func (s *Service) Upload(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return s.placeholder, ErrNoFile
	}
	img, err := s.proc.prepare(fh)
	if err != nil {
		return s.placeholder, fmt.Errorf("prepare %q: %w", fh.Filename, err)
	}
	name := uuid.NewString() + "." + img.ext
	url, err := s.backend.Put(ctx, name, img.data, img.contentType)
	if err != nil {
		return s.placeholder, fmt.Errorf("store %q: %w", fh.Filename, err)
	}
	s.logger.Debug("image stored", zap.String("url", url), zap.Int("bytes", len(img.data)))
	return url, nil
}

// Delete removes an image this service stored. The placeholder and
// foreign URLs are left alone and report false.
func (s *Service) Delete(ctx context.Context, url string) (bool, error) {
	url = strings.TrimSpace(url)
	if url == "" || url == s.placeholder {
		return false, nil
	}
	return s.backend.Remove(ctx, url)
}
