package lyrics

import (
	"errors"
	"reflect"
	"testing"
)

// wordFixture is a valid grouped document: every line's time, duration and
// text agree with its syllabus.
func wordFixture() *Document {
	return &Document{
		Type: TypeWord,
		Metadata: Metadata{
			Source:         "Test",
			Songwriters:    []string{"Writer One"},
			LeadingSilence: "0.020",
		},
		Lyrics: []LyricUnit{
			{
				Time:     1000,
				Duration: 1500,
				Text:     "Hello world",
				Syllabus: []Syllable{
					{Time: 1000, Duration: 500, Text: "Hello "},
					{Time: 1500, Duration: 1000, Text: "world"},
				},
				Element: Element{Key: "L1", SongPart: "Verse", Singer: "v1"},
			},
			{
				Time:     3000,
				Duration: 2500,
				Text:     "Sing along (ooh)",
				Syllabus: []Syllable{
					{Time: 3000, Duration: 400, Text: "Sing "},
					{Time: 3400, Duration: 600, Text: "along "},
					{Time: 4500, Duration: 1000, Text: "(ooh)", IsBackground: true},
				},
				Element: Element{Key: "L2", SongPart: "Chorus", Singer: "v2"},
			},
			{
				Time:     6000,
				Duration: 800,
				Text:     "Plain",
				Syllabus: []Syllable{},
				Element:  Element{Key: "L3", SongPart: "Chorus", Singer: "v1"},
			},
		},
	}
}

func TestFlatten(t *testing.T) {
	flat, err := Flatten(wordFixture())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if flat.Type != FlatTypeSyllable {
		t.Errorf("Expected type %q, got %q", FlatTypeSyllable, flat.Type)
	}
	if len(flat.Lyrics) != 6 {
		t.Fatalf("Expected 6 segments, got %d", len(flat.Lyrics))
	}

	endings := []int{0, 1, 0, 0, 1, 1}
	for i, seg := range flat.Lyrics {
		if seg.IsLineEnding != endings[i] {
			t.Errorf("Segment %d: expected isLineEnding %d, got %d", i, endings[i], seg.IsLineEnding)
		}
	}

	if !flat.Lyrics[4].Element.IsBackground {
		t.Error("Expected background flag on segment 4")
	}
	if flat.Lyrics[3].Element.IsBackground {
		t.Error("Expected no background flag on segment 3")
	}
	if flat.Lyrics[2].Element.Key != "L2" || flat.Lyrics[2].Element.Singer != "v2" {
		t.Errorf("Expected line element propagated, got %+v", flat.Lyrics[2].Element)
	}

	// line without syllabus degrades to one segment
	if flat.Lyrics[5].Text != "Plain" || flat.Lyrics[5].Time != 6000 || flat.Lyrics[5].Duration != 800 {
		t.Errorf("Unexpected degraded segment: %+v", flat.Lyrics[5])
	}
}

func TestGroup(t *testing.T) {
	flat := &FlatDocument{
		Type: FlatTypeSyllable,
		Lyrics: []Segment{
			{Time: 1200, Duration: 300, Text: " late ", Element: FlatElement{Key: "L1"}},
			{Time: 1000, Duration: 100, Text: "early", IsLineEnding: 1, Element: FlatElement{Key: "L1"}},
			{Time: 2000, Duration: 500, Text: "dangling", Element: FlatElement{Key: "L2"}},
		},
	}

	doc, err := Group(flat)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if doc.Type != TypeWord {
		t.Errorf("Expected type %q, got %q", TypeWord, doc.Type)
	}
	if doc.Cached != CachedNone {
		t.Errorf("Expected cached %q, got %q", CachedNone, doc.Cached)
	}
	if len(doc.Lyrics) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(doc.Lyrics))
	}

	first := doc.Lyrics[0]
	// time and duration come from min start / max end, not the first segment
	if first.Time != 1000 || first.Duration != 500 {
		t.Errorf("Expected time 1000 duration 500, got %d/%d", first.Time, first.Duration)
	}
	if first.Text != "late early" {
		t.Errorf("Expected trimmed text 'late early', got %q", first.Text)
	}
	if len(first.Syllabus) != 2 {
		t.Errorf("Expected 2 syllables, got %d", len(first.Syllabus))
	}

	if doc.Lyrics[1].Text != "dangling" || doc.Lyrics[1].Element.Key != "L2" {
		t.Errorf("Expected trailing segments to form a final line, got %+v", doc.Lyrics[1])
	}
}

func TestGroup_LineType(t *testing.T) {
	flat := &FlatDocument{
		Type: TypeLine,
		Lyrics: []Segment{
			{Time: 0, Duration: 1000, Text: "One", IsLineEnding: 1},
			{Time: 1000, Duration: 1000, Text: "Two", IsLineEnding: 1},
		},
	}

	doc, err := Group(flat)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if doc.Type != TypeLine || len(doc.Lyrics) != 2 {
		t.Fatalf("Expected 2 Line units, got %s/%d", doc.Type, len(doc.Lyrics))
	}
	for _, u := range doc.Lyrics {
		if len(u.Syllabus) != 0 {
			t.Errorf("Expected empty syllabus for Line unit, got %d", len(u.Syllabus))
		}
	}
}

func TestGroup_UnknownType(t *testing.T) {
	_, err := Group(&FlatDocument{Type: "karaoke"})

	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("Expected ConversionError, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	original := wordFixture()

	flat, err := Flatten(original)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	grouped, err := Group(flat)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}

	if len(grouped.Lyrics) != len(original.Lyrics) {
		t.Fatalf("Expected %d lines, got %d", len(original.Lyrics), len(grouped.Lyrics))
	}

	for i := range original.Lyrics {
		want, got := original.Lyrics[i], grouped.Lyrics[i]
		if got.Time != want.Time || got.Duration != want.Duration || got.Text != want.Text {
			t.Errorf("Line %d: expected %d/%d/%q, got %d/%d/%q",
				i, want.Time, want.Duration, want.Text, got.Time, got.Duration, got.Text)
		}
		if got.Element != want.Element {
			t.Errorf("Line %d: expected element %+v, got %+v", i, want.Element, got.Element)
		}
	}

	bg := grouped.Lyrics[1].Syllabus[2]
	if !bg.IsBackground {
		t.Error("Expected background syllable to survive the round trip")
	}
}

func TestIdempotence(t *testing.T) {
	flat := &FlatDocument{
		Type: FlatTypeSyllable,
		Lyrics: []Segment{
			{Time: 500, Duration: 200, Text: "b ", Element: FlatElement{Key: "L1"}},
			{Time: 100, Duration: 200, Text: "a", IsLineEnding: 1, Element: FlatElement{Key: "L1"}},
			{Time: 900, Duration: 300, Text: "c", Element: FlatElement{Key: "L2", IsBackground: true}},
			{Time: 1200, Duration: 300, Text: " d", IsLineEnding: 1, Element: FlatElement{Key: "L2"}},
		},
	}

	once := mustFlatten(t, mustGroup(t, flat))
	twice := mustFlatten(t, mustGroup(t, once))

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Expected flatten(group(x)) to be idempotent\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestFlatten_Nil(t *testing.T) {
	if _, err := Flatten(nil); err == nil {
		t.Error("Expected error for nil document")
	}
}

func mustGroup(t *testing.T, flat *FlatDocument) *Document {
	t.Helper()
	doc, err := Group(flat)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	return doc
}

func mustFlatten(t *testing.T, doc *Document) *FlatDocument {
	t.Helper()
	flat, err := Flatten(doc)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	return flat
}
