package utils

import (
	"bytes"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUtils_ShouldDetectImageContent(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "icon.png")
	f, err := os.Create(imgPath)
	if err != nil {
		t.Fatalf("could not create test file: %v", err)
	}
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("could not encode test file: %v", err)
	}
	f.Close()

	ok, err := IsImage(imgPath)
	if err != nil {
		t.Fatalf("could not detect content type: %v", err)
	}
	if !ok {
		t.Errorf("a png file should be detected as image")
	}

	txtPath := filepath.Join(dir, "notes.png")
	if err := os.WriteFile(txtPath, []byte("not an image"), 0644); err != nil {
		t.Fatalf("could not write test file: %v", err)
	}
	ok, err = IsImage(txtPath)
	if err != nil {
		t.Fatalf("could not detect content type: %v", err)
	}
	if ok {
		t.Errorf("a text file should not be detected as image")
	}
}

func TestUtils_DecorateText(t *testing.T) {
	s := DecorateText("done", SuccessMessage)
	if !strings.HasPrefix(s, SuccessColor) || !strings.HasSuffix(s, DefaultColor) {
		t.Errorf("decorated text should be wrapped in color codes, got %q", s)
	}
}

func TestUtils_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("warn", "json", &buf)
	log.Info("hidden")
	log.Warn("shown", slog.String("k", "v"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info records should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"k":"v"`) {
		t.Errorf("json output expected, got %s", out)
	}
	if LogLevel("bogus") != slog.LevelInfo {
		t.Errorf("unknown level should fall back to info")
	}
}
