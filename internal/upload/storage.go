package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// FieldName is the multipart field that carries the attachment
	FieldName = "image"
	// PublicPrefix is the URL prefix the upload directory is served under
	PublicPrefix = "uploads"

	DefaultMaxBytes int64 = 5 << 20
)

var ErrFileTooLarge = errors.New("file too large")

// Storage writes uploads to a local directory. Any content type is accepted.
type Storage struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// NewLocalStorage creates dir if needed
func NewLocalStorage(dir string, maxBytes int64) (*Storage, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &Storage{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) MaxBytes() int64 {
	return s.maxBytes
}

// Save stores the file under a generated name that keeps the original
// extension and returns the public relative path, e.g.
// "uploads/1718000000000-3f2a....jpg".
func (s *Storage) Save(header *multipart.FileHeader) (string, error) {
	if header.Size > s.maxBytes {
		return "", ErrFileTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := s.fileName(header.Filename)
	dstPath := filepath.Join(s.dir, name)
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dstPath, err)
	}

	written, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	closeErr := dst.Close()
	if err == nil && written > s.maxBytes {
		err = ErrFileTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dstPath)
		if errors.Is(err, ErrFileTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("failed to write %s: %w", dstPath, err)
	}

	return path.Join(PublicPrefix, name), nil
}

// Remove deletes a file previously returned by Save. Paths outside the
// upload directory are rejected.
func (s *Storage) Remove(publicPath string) error {
	name := strings.TrimPrefix(publicPath, PublicPrefix+"/")
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid upload path %q", publicPath)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

func (s *Storage) fileName(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString(), ext)
}
