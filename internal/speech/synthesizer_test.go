package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestSplitUtterance(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxRunes int
		want     []string
	}{
		{"short passes through", "hello world", 180, []string{"hello world"}},
		{"exact limit passes through", "abcde", 5, []string{"abcde"}},
		{"breaks at whitespace", "aaaa bbbb cccc", 9, []string{"aaaa bbbb", "cccc"}},
		{"no whitespace hard break", "aaaaaaaaaa", 4, []string{"aaaa", "aaaa", "aa"}},
		{"zero max passes through", "anything", 0, []string{"anything"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitUtterance(tt.text, tt.maxRunes)
			if len(got) != len(tt.want) {
				t.Fatalf("segments = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitUtteranceRespectsLimit(t *testing.T) {
	text := strings.Repeat("some words here ", 50)
	for _, seg := range SplitUtterance(text, maxUtteranceRunes) {
		if n := utf8.RuneCountInString(seg); n > maxUtteranceRunes {
			t.Errorf("segment of %d runes exceeds limit: %q", n, seg)
		}
		if seg == "" {
			t.Error("empty segment produced")
		}
	}
}

func TestSynthesizeWritesOutput(t *testing.T) {
	var gotLang, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.URL.Query().Get("tl")
		gotText = r.URL.Query().Get("q")
		w.Write([]byte("ID3fake-mp3-bytes"))
	}))
	defer srv.Close()

	outputPath := filepath.Join(t.TempDir(), "output.mp3")
	syn := NewSynthesizer(srv.URL, outputPath, time.Second)

	if err := syn.Synthesize(context.Background(), "hello there", "en"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "ID3fake-mp3-bytes" {
		t.Errorf("output = %q", data)
	}
	if gotLang != "en" || gotText != "hello there" {
		t.Errorf("request params: tl=%q q=%q", gotLang, gotText)
	}
}

func TestSynthesizeHindiLanguage(t *testing.T) {
	var gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.URL.Query().Get("tl")
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	syn := NewSynthesizer(srv.URL, filepath.Join(t.TempDir(), "output.mp3"), time.Second)
	if err := syn.Synthesize(context.Background(), "नमस्ते", "hi"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gotLang != "hi" {
		t.Errorf("tl = %q, want hi", gotLang)
	}
}

func TestSynthesizeConcatenatesSegments(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("seg|"))
	}))
	defer srv.Close()

	outputPath := filepath.Join(t.TempDir(), "output.mp3")
	syn := NewSynthesizer(srv.URL, outputPath, time.Second)

	long := strings.Repeat("many words in this sentence ", 20)
	if err := syn.Synthesize(context.Background(), long, "en"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if calls < 2 {
		t.Fatalf("backend called %d times, want segmented requests", calls)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) != calls*4 {
		t.Errorf("output length = %d, want %d", len(data), calls*4)
	}
}

func TestSynthesizeOverwritesPreviousOutput(t *testing.T) {
	payload := "first"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	outputPath := filepath.Join(t.TempDir(), "output.mp3")
	syn := NewSynthesizer(srv.URL, outputPath, time.Second)

	if err := syn.Synthesize(context.Background(), "one", "en"); err != nil {
		t.Fatalf("first synthesize: %v", err)
	}
	payload = "second"
	if err := syn.Synthesize(context.Background(), "two", "en"); err != nil {
		t.Fatalf("second synthesize: %v", err)
	}

	data, _ := os.ReadFile(outputPath)
	if string(data) != "second" {
		t.Errorf("output = %q, want latest synthesis", data)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	syn := NewSynthesizer("http://localhost:1", filepath.Join(t.TempDir(), "output.mp3"), time.Second)
	if err := syn.Synthesize(context.Background(), "   ", "en"); err == nil {
		t.Fatal("expected error for blank text")
	}
}

func TestSynthesizeBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	outputPath := filepath.Join(t.TempDir(), "output.mp3")
	syn := NewSynthesizer(srv.URL, outputPath, time.Second)

	if err := syn.Synthesize(context.Background(), "text", "en"); err == nil {
		t.Fatal("expected error on backend failure")
	}
	if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
		t.Error("failed synthesis left an output file")
	}
}
