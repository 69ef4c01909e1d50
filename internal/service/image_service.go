package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/logger"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ImageURLPrefix is the public path uploaded images are served under.
const ImageURLPrefix = "/api/files/images/"

type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type Image struct {
	Name    string
	ModTime time.Time
	Content io.ReadSeekCloser
}

type ImageService struct {
	fs      afero.Fs
	dir     string
	maxSize int64
	allowed map[string]struct{}
}

func NewImageService(filesystem afero.Fs, cfg config.UploadConfig) *ImageService {
	allowed := make(map[string]struct{}, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}
	return &ImageService{
		fs:      filesystem,
		dir:     cfg.Dir,
		maxSize: cfg.MaxFileSize,
		allowed: allowed,
	}
}

// Save validates every upload before writing any of them and returns the
// public URLs in upload order. Empty uploads are skipped.
func (s *ImageService) Save(ctx context.Context, uploads []Upload) ([]string, error) {
	accepted := make([]Upload, 0, len(uploads))
	for _, u := range uploads {
		if u.Size == 0 {
			continue
		}
		if _, ok := s.allowed[strings.ToLower(u.ContentType)]; !ok {
			return nil, NewBusinessError(CodeUnsupportedMediaType,
				fmt.Sprintf("file type %q is not allowed", u.ContentType),
				ToDetail("file", u.Filename))
		}
		if u.Size > s.maxSize {
			return nil, s.tooLarge(u.Filename)
		}
		accepted = append(accepted, u)
	}

	urls := make([]string, 0, len(accepted))
	for _, u := range accepted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := uuid.NewString() + filepath.Ext(u.Filename)
		// The declared size is client supplied, so the copy is capped too.
		limited := &io.LimitedReader{R: u.Content, N: s.maxSize + 1}
		if err := afero.WriteReader(s.fs, s.path(name), limited); err != nil {
			logger.Error("Service: failed to store image", err, zap.String("file", u.Filename))
			return nil, fmt.Errorf("store image %s: %w", u.Filename, err)
		}
		if limited.N == 0 {
			_ = s.fs.Remove(s.path(name))
			return nil, s.tooLarge(u.Filename)
		}

		logger.Info("Service: image stored", zap.String("name", name), zap.Int64("size", u.Size))
		urls = append(urls, ImageURLPrefix+name)
	}
	return urls, nil
}

func (s *ImageService) Open(ctx context.Context, name string) (*Image, error) {
	if err := validImageName(name); err != nil {
		return nil, err
	}

	f, err := s.fs.Open(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewNotFound("image", name)
		}
		return nil, fmt.Errorf("open image %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat image %s: %w", name, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, NewNotFound("image", name)
	}
	return &Image{Name: name, ModTime: info.ModTime(), Content: f}, nil
}

func (s *ImageService) Delete(ctx context.Context, name string) error {
	if err := validImageName(name); err != nil {
		return err
	}

	exists, err := afero.Exists(s.fs, s.path(name))
	if err != nil {
		return fmt.Errorf("stat image %s: %w", name, err)
	}
	if !exists {
		return NewNotFound("image", name)
	}
	if err := s.fs.Remove(s.path(name)); err != nil {
		logger.Error("Service: failed to delete image", err, zap.String("name", name))
		return fmt.Errorf("delete image %s: %w", name, err)
	}

	logger.Info("Service: image deleted", zap.String("name", name))
	return nil
}

func (s *ImageService) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *ImageService) tooLarge(filename string) error {
	return NewBusinessError(CodePayloadTooLarge,
		fmt.Sprintf("file exceeds the %d byte limit", s.maxSize),
		ToDetail("file", filename))
}

// validImageName only accepts a bare file name.
func validImageName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || path.Base(name) != name {
		return NewValidationError("filename", "invalid file name")
	}
	return nil
}
