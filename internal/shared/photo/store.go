package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/kchsoft/gym-ledger/internal/config"
)

var (
	ErrEmpty             = errors.New("photo: empty upload")
	ErrTooLarge          = errors.New("photo: file too large")
	ErrUnsupportedFormat = errors.New("photo: only jpeg and png are allowed")
)

// extensions maps decoded formats to the stored file extension
var extensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
}

// Store keeps member photos as files under a single directory.
// The reference handed back to callers is the file path.
type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(cfg config.PhotoConfig) *Store {
	return &Store{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxBytes,
	}
}

// Validate checks size and format without touching the filesystem
func (s *Store) Validate(data []byte) error {
	_, err := s.detect(data)
	return err
}

func (s *Store) detect(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), s.maxBytes)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	ext, ok := extensions[format]
	if !ok {
		return "", fmt.Errorf("%w: got %s", ErrUnsupportedFormat, format)
	}
	return ext, nil
}

// Save decodes and re-encodes the image as member_<userID>_<uuid>.<ext>.
// A fresh name per upload means a replaced photo never shares a path with its successor.
func (s *Store) Save(ctx context.Context, userID string, data []byte) (string, error) {
	ext, err := s.detect(data)
	if err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode photo: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create photo dir: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("member_%s_%s%s", userID, uuid.New().String(), ext))
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}

	slog.DebugContext(ctx, "사진 저장 완료", "user_id", userID, "path", path)
	return path, nil
}

// Delete removes a stored photo. A missing file is not an error.
func (s *Store) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if err := os.Remove(ref); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete photo %s: %w", ref, err)
	}
	slog.DebugContext(ctx, "사진 삭제 완료", "path", ref)
	return nil
}
