// Package ocr extracts question text from uploaded images via an external
// tesseract engine.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
)

// Engine shells out to the tesseract binary, the same contract pytesseract-style
// callers use: the binary path is configuration, not a linked library.
type Engine struct {
	cmd       string
	languages string
	timeout   time.Duration
}

func NewEngine(cmd, languages string, timeout time.Duration) *Engine {
	if cmd == "" {
		cmd = "tesseract"
	}
	if languages == "" {
		languages = "eng"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Engine{cmd: cmd, languages: languages, timeout: timeout}
}

// Recognize decodes the image, normalizes it for the engine and returns the
// extracted text trimmed of surrounding whitespace.
func (e *Engine) Recognize(ctx context.Context, r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image failed: %w", err)
	}
	img = upscale(img)

	tmp, err := os.CreateTemp("", "ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp image failed: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode temp image failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp image failed: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// "stdout" makes tesseract write the recognized text to standard output.
	cmd := exec.CommandContext(runCtx, e.cmd, tmp.Name(), "stdout", "-l", e.languages)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("run tesseract failed: %s: %w", detail, err)
		}
		return "", fmt.Errorf("run tesseract failed: %w", err)
	}

	return strings.TrimSpace(out.String()), nil
}
