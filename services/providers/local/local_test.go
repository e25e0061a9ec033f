package local

import (
	"context"
	"testing"
	"testing/fstest"

	"lyrics-aggregator-go/services/matcher"
	"lyrics-aggregator-go/services/providers"
)

func catalogFS() fstest.MapFS {
	return fstest.MapFS{
		"Ed Sheeran - Shape of You [÷] (234).lrc": {Data: []byte("[00:01.00]The club isn't the best place\n[00:05.00]To find a lover\n")},
		"Queen - Bohemian Rhapsody (5:55).ttml":   {Data: []byte("<tt/>")},
		"Adele - Hello.json":                      {Data: []byte("{}")},
		".DS_Store":                               {Data: []byte{0}},
		"nested/Other - Song.lrc":                 {Data: []byte("[00:01.00]x")},
	}
}

func TestSearch(t *testing.T) {
	p := NewFS("apple", catalogFS(), Options{})

	candidates, err := p.Search(context.Background(), matcher.Query{Title: "anything"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("Expected 3 candidates, got %d: %+v", len(candidates), candidates)
	}

	byTitle := make(map[string]matcher.Candidate)
	for _, c := range candidates {
		byTitle[c.Title] = c
	}

	tests := []struct {
		title    string
		expected matcher.Candidate
	}{
		{"Shape of You", matcher.Candidate{Title: "Shape of You", Artist: "Ed Sheeran", Album: "÷", DurationMs: 234000}},
		{"Bohemian Rhapsody", matcher.Candidate{Title: "Bohemian Rhapsody", Artist: "Queen", DurationMs: 355000}},
		{"Hello", matcher.Candidate{Title: "Hello", Artist: "Adele"}},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, ok := byTitle[tt.title]
			if !ok {
				t.Fatalf("Missing candidate %q", tt.title)
			}
			if got.Artist != tt.expected.Artist || got.Album != tt.expected.Album || got.DurationMs != tt.expected.DurationMs {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
			if _, ok := got.Ref.(string); !ok {
				t.Errorf("Expected file name ref, got %T", got.Ref)
			}
		})
	}
}

func TestSearch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewFS("apple", catalogFS(), Options{}).Search(ctx, matcher.Query{}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestFetch(t *testing.T) {
	p := NewFS("apple", catalogFS(), Options{})
	c := matcher.Candidate{Title: "Shape of You", DurationMs: 234000, Ref: "Ed Sheeran - Shape of You [÷] (234).lrc"}

	payload, err := p.Fetch(context.Background(), c)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if payload.Format != providers.FormatLRC {
		t.Errorf("Expected lrc format, got %q", payload.Format)
	}
	if payload.TrackDurationMs != 234000 {
		t.Errorf("Expected track duration 234000, got %d", payload.TrackDurationMs)
	}
	if len(payload.Body) == 0 {
		t.Error("Expected file contents")
	}

	if _, err := p.Fetch(context.Background(), matcher.Candidate{Ref: 42}); err == nil {
		t.Error("Expected error for foreign candidate")
	}
	if _, err := p.Fetch(context.Background(), matcher.Candidate{Ref: "missing.lrc"}); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		opts     Options
		file     string
		expected string
	}{
		{"TTML extension", "apple", Options{}, "a - b.ttml", providers.FormatTTML},
		{"XML extension", "apple", Options{}, "a - b.xml", providers.FormatTTML},
		{"LRC extension", "lrclib", Options{}, "a - b.lrc", providers.FormatLRC},
		{"Gzipped TTML", "apple", Options{}, "a - b.ttml.gz", providers.FormatTTML},
		{"Canonical JSON", "lyricsplus", Options{}, "a - b.json", providers.FormatJSON},
		{"JSON named by directory", "spotify", Options{}, "a - b.json", providers.FormatSpotify},
		{"Word-level Musixmatch", "musixmatch-word", Options{}, "a - b.json.gz", providers.FormatMusixmatchWord},
		{"Forced format", "apple", Options{Format: providers.FormatV1}, "a - b.ttml", providers.FormatV1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewFS(tt.provider, fstest.MapFS{}, tt.opts)
			if got := p.formatOf(tt.file); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCatalogIntegration(t *testing.T) {
	c := providers.NewCatalog(NewFS("apple", catalogFS(), Options{}), nil)

	result, err := c.FetchLyrics(context.Background(), matcher.Query{Title: "Shape Of You", Artist: "Ed Sheeran", DurationSeconds: 233.7})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Document.Lyrics) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(result.Document.Lyrics))
	}
	if last := result.Document.Lyrics[1]; last.Duration != 229000 {
		t.Errorf("Expected last line to run to the track end, got %d", last.Duration)
	}
}
