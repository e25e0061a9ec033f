package spotify

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"lyrics-aggregator-go/services/lyrics"
)

func TestParse_LineSynced(t *testing.T) {
	payload := `{
		"lyrics": {
			"syncType": "LINE_SYNCED",
			"lines": [
				{"startTimeMs": "960", "words": "First line", "syllables": [], "endTimeMs": "0"},
				{"startTimeMs": "4000", "words": "♪", "syllables": [], "endTimeMs": "0"},
				{"startTimeMs": "6000", "words": "Chorus comes in", "syllables": [], "endTimeMs": "8500"},
				{"startTimeMs": "9000", "words": "", "syllables": [], "endTimeMs": "0"}
			],
			"provider": "MusixMatch",
			"providerDisplayName": "Musixmatch",
			"language": "en"
		},
		"songWriters": ["Writer One"]
	}`

	doc, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if doc.Type != lyrics.TypeLine {
		t.Errorf("Expected type %q, got %q", lyrics.TypeLine, doc.Type)
	}
	if doc.Metadata.Source != "Musixmatch" {
		t.Errorf("Expected provider display name as source, got %q", doc.Metadata.Source)
	}
	if doc.Metadata.Language != "en" {
		t.Errorf("Expected language en, got %q", doc.Metadata.Language)
	}
	if len(doc.Metadata.Songwriters) != 1 || doc.Metadata.Songwriters[0] != "Writer One" {
		t.Errorf("Expected envelope songwriters, got %v", doc.Metadata.Songwriters)
	}

	if len(doc.Lyrics) != 2 {
		t.Fatalf("Expected 2 lines (filler and empty dropped), got %d", len(doc.Lyrics))
	}

	first := doc.Lyrics[0]
	if first.Time != 960 || first.Duration != 3040 {
		t.Errorf("Expected duration up to next line, got %d/%d", first.Time, first.Duration)
	}
	if first.Element.Key != "L1" || first.Element.Singer != "" {
		t.Errorf("Unexpected element: %+v", first.Element)
	}

	second := doc.Lyrics[1]
	if second.Duration != 2500 {
		t.Errorf("Expected duration from end time, got %d", second.Duration)
	}
	if second.Element.SongPart != "Chorus" || second.Element.Key != "L2" {
		t.Errorf("Unexpected element: %+v", second.Element)
	}
}

func TestParse_SyllableSynced(t *testing.T) {
	payload := `{
		"syncType": "SYLLABLE_SYNCED",
		"lines": [
			{"startTimeMs": "1000", "words": "Hello world", "endTimeMs": "0", "syllables": [
				{"text": "Hel", "startTimeMs": "1000", "endTimeMs": "1200"},
				{"text": "lo", "startTimeMs": "1200", "endTimeMs": "1500"},
				{"text": "world", "startTimeMs": "1800", "endTimeMs": "2400"}
			]},
			{"startTimeMs": "3000", "words": "Plain", "endTimeMs": "3500", "syllables": []},
			{"startTimeMs": "4000", "words": "♪", "endTimeMs": "0", "syllables": []}
		]
	}`

	doc, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if doc.Type != lyrics.TypeWord {
		t.Errorf("Expected type %q, got %q", lyrics.TypeWord, doc.Type)
	}
	if doc.Metadata.Source != "Spotify" {
		t.Errorf("Expected default source, got %q", doc.Metadata.Source)
	}
	if len(doc.Lyrics) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(doc.Lyrics))
	}

	first := doc.Lyrics[0]
	if first.Text != "Hello world" {
		t.Errorf("Expected %q, got %q", "Hello world", first.Text)
	}
	if first.Time != 1000 || first.Duration != 1400 {
		t.Errorf("Expected span 1000/1400, got %d/%d", first.Time, first.Duration)
	}
	if len(first.Syllabus) != 3 || first.Syllabus[1].Text != "lo " || first.Syllabus[0].Text != "Hel" {
		t.Errorf("Unexpected syllabus: %+v", first.Syllabus)
	}
	if first.Element.Singer != "v1" {
		t.Errorf("Expected singer v1, got %q", first.Element.Singer)
	}

	plain := doc.Lyrics[1]
	if len(plain.Syllabus) != 0 || plain.Duration != 500 || plain.Element.Key != "L2" {
		t.Errorf("Unexpected line-level unit in word document: %+v", plain)
	}
}

func TestParse_KeysSkipDroppedLines(t *testing.T) {
	payload := `{
		"syncType": "SYLLABLE_SYNCED",
		"lines": [
			{"startTimeMs": "1000", "words": "One", "endTimeMs": "0", "syllables": [
				{"text": "One", "startTimeMs": "1000", "endTimeMs": "1500"}
			]},
			{"startTimeMs": "2000", "words": "♪", "endTimeMs": "0", "syllables": []},
			{"startTimeMs": "8000", "words": "", "endTimeMs": "0", "syllables": []},
			{"startTimeMs": "9000", "words": "Two", "endTimeMs": "0", "syllables": [
				{"text": "Two", "startTimeMs": "9000", "endTimeMs": "9500"}
			]},
			{"startTimeMs": "10000", "words": "Three", "endTimeMs": "10800", "syllables": []}
		]
	}`

	doc, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(doc.Lyrics) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(doc.Lyrics))
	}

	for i, unit := range doc.Lyrics {
		want := "L" + strconv.Itoa(i+1)
		if unit.Element.Key != want {
			t.Errorf("Line %d (%q): expected key %s, got %s", i, unit.Text, want, unit.Element.Key)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"Invalid JSON", `{"lyrics":`},
		{"Missing lines", `{"lyrics":{"syncType":"LINE_SYNCED"}}`},
		{"Bad timestamp", `{"lines":[{"startTimeMs":"soon","words":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.payload))
			var convErr *lyrics.ConversionError
			if !errors.As(err, &convErr) {
				t.Errorf("Expected ConversionError, got %v", err)
			}
		})
	}
}

func TestMillis_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected Millis
	}{
		{`"1234"`, 1234},
		{`1234`, 1234},
		{`1234.6`, 1235},
		{`""`, 0},
		{`null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var m Millis
			if err := json.Unmarshal([]byte(tt.input), &m); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if m != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, m)
			}
		})
	}
}

func TestSyllable_LegacyString(t *testing.T) {
	var line Line
	if err := json.Unmarshal([]byte(`{"startTimeMs":"0","words":"la la","syllables":["la","la"]}`), &line); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(line.Syllables) != 2 || line.Syllables[0].Text != "la" || line.Syllables[0].Timed() {
		t.Errorf("Expected untimed string syllables, got %+v", line.Syllables)
	}
	if hasTimedSyllables([]Line{line}) {
		t.Error("Expected legacy syllables not to make the document word-synced")
	}
}

func TestShouldAddSpace(t *testing.T) {
	tests := []struct {
		name      string
		syllables []Syllable
		index     int
		expected  bool
	}{
		{"Last syllable", []Syllable{{Text: "a"}}, 0, false},
		{"Contiguous lowercase", []Syllable{{Text: "Hel", EndTimeMs: 100}, {Text: "lo", StartTimeMs: 100}}, 0, false},
		{"Long pause", []Syllable{{Text: "one", EndTimeMs: 100}, {Text: "two", StartTimeMs: 300}}, 0, true},
		{"Capitalised next", []Syllable{{Text: "one", EndTimeMs: 100}, {Text: "Two", StartTimeMs: 100}}, 0, true},
		{"Trailing comma", []Syllable{{Text: "one,", EndTimeMs: 100}, {Text: "two", StartTimeMs: 100}}, 0, true},
		{"Leading punctuation", []Syllable{{Text: "one", EndTimeMs: 100}, {Text: "!", StartTimeMs: 100}}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldAddSpace(tt.syllables, tt.index); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestDetectSongPart(t *testing.T) {
	tests := []struct {
		words    string
		expected string
	}{
		{"[Verse 1]", "Verse"},
		{"Sing the CHORUS", "Chorus"},
		{"over the bridge", "Bridge"},
		{"Just words", ""},
	}

	for _, tt := range tests {
		t.Run(tt.words, func(t *testing.T) {
			if got := detectSongPart(tt.words); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
