package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"face-attendance/pkg/logger"
)

// DayLayout names the dated directories that hold capture images.
const DayLayout = "20060102"

var ErrInvalidImage = errors.New("invalid base64 image")

// ImageStorage persists capture images on disk.
type ImageStorage interface {
	// SaveBase64 decodes the image and writes it to dir/filename, returning the full path.
	SaveBase64(image, dir, filename string) (string, error)
	// PurgeOlderThan removes dated directories under root older than the given number of days.
	PurgeOlderThan(root string, days int, now time.Time) (int, error)
}

type LocalStorage struct{}

func NewLocalStorage() ImageStorage {
	return &LocalStorage{}
}

// DecodeBase64 strips an optional data URI header and decodes the payload.
func DecodeBase64(image string) ([]byte, error) {
	if _, after, found := strings.Cut(image, "base64,"); found {
		image = after
	}
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, ErrInvalidImage
	}

	data, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		// Some capture devices send unpadded payloads
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(image, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
		}
	}
	return data, nil
}

func (s *LocalStorage) SaveBase64(image, dir, filename string) (string, error) {
	data, err := DecodeBase64(image)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

func (s *LocalStorage) PurgeOlderThan(root string, days int, now time.Time) (int, error) {
	if days <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read event directory: %w", err)
	}

	cutoff := now.AddDate(0, 0, -days).Format(DayLayout)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := time.Parse(DayLayout, entry.Name()); err != nil {
			continue
		}
		// Day names sort lexically
		if entry.Name() >= cutoff {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, entry.Name())); err != nil {
			logger.EventError("purge_failed", "Failed to remove event directory", err, map[string]interface{}{"dir": entry.Name()})
			continue
		}
		removed++
	}

	return removed, nil
}
