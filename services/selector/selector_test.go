package selector

import (
	"testing"

	"lyrics-aggregator-go/services/lyrics"
	"lyrics-aggregator-go/services/matcher"
	"lyrics-aggregator-go/services/providers"
)

func lineDoc() *lyrics.Document {
	return &lyrics.Document{
		Type:   lyrics.TypeLine,
		Lyrics: []lyrics.LyricUnit{{Time: 1000, Duration: 2000, Text: "Line", Syllabus: []lyrics.Syllable{}}},
	}
}

func wordDoc() *lyrics.Document {
	return &lyrics.Document{
		Type: lyrics.TypeWord,
		Lyrics: []lyrics.LyricUnit{{
			Time: 1000, Duration: 1000, Text: "Word",
			Syllabus: []lyrics.Syllable{{Time: 1000, Duration: 1000, Text: "Word"}},
		}},
	}
}

func result(source string, doc *lyrics.Document) *providers.Result {
	return &providers.Result{Success: true, Source: source, Document: doc, Raw: &providers.Payload{Format: providers.FormatJSON}}
}

func TestSyncPriority(t *testing.T) {
	tests := []struct {
		name     string
		result   *providers.Result
		expected int
	}{
		{"Nil", nil, PriorityNone},
		{"Unsuccessful", &providers.Result{Success: false, Document: wordDoc()}, PriorityNone},
		{"Empty lyrics", result("a", &lyrics.Document{Type: lyrics.TypeLine, Lyrics: []lyrics.LyricUnit{}}), PriorityNone},
		{"Nil document", &providers.Result{Success: true}, PriorityNone},
		{"Line document", result("a", lineDoc()), PriorityLine},
		{"Word document", result("a", wordDoc()), PriorityWord},
		{"Syllable sync type", &providers.Result{Success: true, Document: lineDoc(), SyncType: "SYLLABLE_SYNCED"}, PriorityWord},
		{"Lowercase word sync type", &providers.Result{Success: true, Document: lineDoc(), SyncType: "word"}, PriorityWord},
		{"Line sync type beats document", &providers.Result{Success: true, Document: wordDoc(), SyncType: "LINE_SYNCED"}, PriorityLine},
		{"Unsynced", &providers.Result{Success: true, Document: lineDoc(), SyncType: "UNSYNCED"}, PriorityUnsynced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SyncPriority(tt.result); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestSelectBest(t *testing.T) {
	line := result("line", lineDoc())
	word := result("word", wordDoc())
	laterWord := result("laterWord", wordDoc())
	failed := &providers.Result{Success: false, Source: "failed", Document: wordDoc()}

	tests := []struct {
		name     string
		results  []*providers.Result
		expected *providers.Result
	}{
		{"Word beats line", []*providers.Result{line, word, nil}, word},
		{"Ties keep first", []*providers.Result{word, laterWord}, word},
		{"Failed results ignored", []*providers.Result{failed, line}, line},
		{"Nothing eligible", []*providers.Result{nil, failed}, nil},
		{"Empty input", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectBest(tt.results); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCacheMetadata(t *testing.T) {
	q := matcher.Query{Title: "shape of you", Artist: "ed sheeran", Album: "Divide", DurationSeconds: 234}

	t.Run("Exact metadata wins", func(t *testing.T) {
		r := result("apple", wordDoc())
		r.ExactMetadata = &matcher.Query{Title: "Shape of You", Artist: "Ed Sheeran", DurationSeconds: 233.712}

		got := CacheMetadata(r, q)
		want := matcher.Query{Title: "Shape of You", Artist: "Ed Sheeran", Album: "Divide", DurationSeconds: 233.712}
		if got != want {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("Document title before query", func(t *testing.T) {
		doc := wordDoc()
		doc.Metadata.Title = "Shape Of You"
		got := CacheMetadata(result("apple", doc), q)
		if got.Title != "Shape Of You" || got.Artist != "ed sheeran" || got.DurationSeconds != 234 {
			t.Errorf("Unexpected metadata: %+v", got)
		}
	})

	t.Run("Nil result falls back to query", func(t *testing.T) {
		if got := CacheMetadata(nil, q); got != q {
			t.Errorf("Expected %+v, got %+v", q, got)
		}
	})
}

func TestCacheKey(t *testing.T) {
	meta := matcher.Query{Title: "Shape of You", Artist: "Ed Sheeran", Album: "÷", DurationSeconds: 233.712}
	if got := CacheKey(meta); got != "Ed Sheeran - Shape of You [÷] (234)" {
		t.Errorf("Unexpected key %q", got)
	}
}

func TestShouldPersist(t *testing.T) {
	cachedDoc := func(state string) *lyrics.Document {
		doc := wordDoc()
		doc.Cached = state
		return doc
	}
	noRaw := result("apple", wordDoc())
	noRaw.Raw = nil

	tests := []struct {
		name     string
		result   *providers.Result
		expected bool
	}{
		{"Fresh fetch", result("apple", wordDoc()), true},
		{"Updated cache entry", result("apple", cachedDoc(lyrics.CachedUpdated)), true},
		{"Served from GDrive", result("apple", cachedDoc(lyrics.CachedGDrive)), false},
		{"Served from database", result("apple", cachedDoc(lyrics.CachedDatabase)), false},
		{"No raw payload", noRaw, false},
		{"Nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldPersist(tt.result); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
