package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"
)

func TestRecognizeBadImage(t *testing.T) {
	engine := NewEngine("tesseract", "eng", time.Second)
	if _, err := engine.Recognize(context.Background(), strings.NewReader("not an image")); err == nil {
		t.Fatal("expected error for undecodable input")
	}
}

func TestRecognizeMissingBinary(t *testing.T) {
	engine := NewEngine("definitely-not-a-tesseract-binary", "eng", time.Second)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	if _, err := engine.Recognize(context.Background(), &buf); err == nil {
		t.Fatal("expected error when the binary is absent")
	}
}

func TestNewEngineDefaults(t *testing.T) {
	engine := NewEngine("", "", 0)
	if engine.cmd != "tesseract" {
		t.Errorf("cmd = %q", engine.cmd)
	}
	if engine.languages != "eng" {
		t.Errorf("languages = %q", engine.languages)
	}
	if engine.timeout != 30*time.Second {
		t.Errorf("timeout = %v", engine.timeout)
	}
}
