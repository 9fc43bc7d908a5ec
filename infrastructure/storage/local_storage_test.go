package storage

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDecodeBase64(t *testing.T) {
	raw := []byte("jpeg-bytes")
	enc := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"plain", enc, false},
		{"data uri", "data:image/jpeg;base64," + enc, false},
		{"unpadded", base64.RawStdEncoding.EncodeToString(raw), false},
		{"empty", "", true},
		{"garbage", "!!!not-base64!!!", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBase64(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidImage) {
					t.Fatalf("err = %v, want ErrInvalidImage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != string(raw) {
				t.Errorf("got %q", got)
			}
		})
	}
}

func TestSaveBase64(t *testing.T) {
	s := NewLocalStorage()
	dir := filepath.Join(t.TempDir(), "events", "20240305")

	path, err := s.SaveBase64(base64.StdEncoding.EncodeToString([]byte("img")), dir, "101500_A1.jpg")
	if err != nil {
		t.Fatalf("SaveBase64: %v", err)
	}
	if path != filepath.Join(dir, "101500_A1.jpg") {
		t.Errorf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "img" {
		t.Fatalf("read back = %q, %v", data, err)
	}
}

func TestSaveBase64KeepsFilenameInsideDir(t *testing.T) {
	s := NewLocalStorage()
	dir := t.TempDir()

	path, err := s.SaveBase64(base64.StdEncoding.EncodeToString([]byte("img")), dir, "../escape.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("file written outside dir: %s", path)
	}
}

func TestPurgeOlderThan(t *testing.T) {
	s := NewLocalStorage()
	root := t.TempDir()
	for _, d := range []string{"20240101", "20240301", "20240304", "20240305", "misc"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	removed, err := s.PurgeOlderThan(root, 3, now)
	if err != nil {
		t.Fatalf("PurgeOlderThan: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	for d, want := range map[string]bool{"20240101": false, "20240301": false, "20240304": true, "20240305": true, "misc": true} {
		_, err := os.Stat(filepath.Join(root, d))
		if exists := err == nil; exists != want {
			t.Errorf("%s exists = %v, want %v", d, exists, want)
		}
	}
}

func TestPurgeMissingRoot(t *testing.T) {
	s := NewLocalStorage()
	removed, err := s.PurgeOlderThan(filepath.Join(t.TempDir(), "none"), 7, time.Now())
	if err != nil || removed != 0 {
		t.Fatalf("got %d, %v", removed, err)
	}
}
