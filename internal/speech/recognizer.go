// Package speech adapts external speech engines: recognition (audio to text)
// and synthesis (text to audio).
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNoSpeech means the audio was parsed but nothing confident came back.
	ErrNoSpeech = errors.New("could not understand audio")
	// ErrServiceUnavailable means the recognition backend could not be reached.
	ErrServiceUnavailable = errors.New("speech recognition service failed")
)

// Recognizer calls a whisper-server style HTTP transcription endpoint.
type Recognizer struct {
	baseURL    string
	httpClient *http.Client
}

func NewRecognizer(baseURL string, timeout time.Duration) *Recognizer {
	if baseURL == "" {
		baseURL = "http://localhost:8178"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Recognizer{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LocaleFor maps the client's two-valued language hint to the locale code the
// recognition backend understands. Anything but "hi" falls back to English.
func LocaleFor(lang string) string {
	if strings.TrimSpace(lang) == "hi" {
		return "hi-IN"
	}
	return "en-US"
}

// Transcribe submits the audio clip and returns the recognized text.
// Failures split into ErrNoSpeech and ErrServiceUnavailable; callers map them
// to distinct user-facing statuses.
func (r *Recognizer) Transcribe(ctx context.Context, audio io.Reader, filename, lang string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build audio form failed: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio failed: %w", err)
	}
	if err := writer.WriteField("language", LocaleFor(lang)); err != nil {
		return "", fmt.Errorf("write language field failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close audio form failed: %w", err)
	}

	url := strings.TrimRight(r.baseURL, "/") + "/inference"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("build transcription request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}
