package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// The synthesis endpoint rejects long utterances; text is split at this many
// runes, preferring whitespace boundaries, and the mp3 segments concatenated.
const maxUtteranceRunes = 180

// Synthesizer converts text to an mp3 written at a fixed well-known path.
// The path is a single global slot: every synthesis overwrites the previous
// output. Writes are staged in a temp file and renamed so a concurrent reader
// never observes a torn file.
type Synthesizer struct {
	baseURL    string
	outputPath string
	httpClient *http.Client

	mu sync.Mutex
}

func NewSynthesizer(baseURL, outputPath string, timeout time.Duration) *Synthesizer {
	if baseURL == "" {
		baseURL = "http://translate.google.com/translate_tts"
	}
	if outputPath == "" {
		outputPath = "output.mp3"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Synthesizer{
		baseURL:    baseURL,
		outputPath: outputPath,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// OutputPath is where the latest synthesized audio lives.
func (s *Synthesizer) OutputPath() string {
	return s.outputPath
}

// Synthesize produces speech for the text in the hinted language and installs
// it at the output path.
func (s *Synthesizer) Synthesize(ctx context.Context, text, lang string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("no text to synthesize")
	}

	ttsLang := "en"
	if strings.TrimSpace(lang) == "hi" {
		ttsLang = "hi"
	}

	var audio []byte
	for _, segment := range SplitUtterance(text, maxUtteranceRunes) {
		chunk, err := s.fetchSegment(ctx, segment, ttsLang)
		if err != nil {
			return err
		}
		audio = append(audio, chunk...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.outputPath)
	tmp, err := os.CreateTemp(dir, "tts-*.mp3")
	if err != nil {
		return fmt.Errorf("create temp audio failed: %w", err)
	}
	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp audio failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp audio failed: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.outputPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("install audio output failed: %w", err)
	}
	return nil
}

func (s *Synthesizer) fetchSegment(ctx context.Context, text, lang string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", lang)
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build tts request failed: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tts response status %d", resp.StatusCode)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts response failed: %w", err)
	}
	return audio, nil
}

// SplitUtterance splits text into segments of at most maxRunes, breaking at
// the last whitespace inside the window when one exists.
func SplitUtterance(text string, maxRunes int) []string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return []string{text}
	}

	var segments []string
	runes := []rune(text)
	for len(runes) > 0 {
		if len(runes) <= maxRunes {
			segments = append(segments, string(runes))
			break
		}
		cut := maxRunes
		for i := maxRunes; i > 0; i-- {
			if runes[i] == ' ' || runes[i] == '\n' || runes[i] == '\t' {
				cut = i
				break
			}
		}
		segments = append(segments, strings.TrimSpace(string(runes[:cut])))
		runes = runes[cut:]
		for len(runes) > 0 && (runes[0] == ' ' || runes[0] == '\n' || runes[0] == '\t') {
			runes = runes[1:]
		}
	}
	return segments
}
