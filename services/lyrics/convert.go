package lyrics

import (
	"strconv"
	"strings"
)

// GroupedType maps any accepted type spelling onto TypeWord or TypeLine.
func GroupedType(t string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "word", "syllable":
		return TypeWord, true
	case "line":
		return TypeLine, true
	default:
		return "", false
	}
}

// FlatType maps a grouped type onto its flat spelling.
func FlatType(t string) string {
	if grouped, ok := GroupedType(t); ok && grouped == TypeWord {
		return FlatTypeSyllable
	}
	return TypeLine
}

// Group converts a flat (v1) document into the grouped (v2) form.
// Segments accumulate into a line until one with IsLineEnding=1 closes it;
// trailing segments without a closing marker form a final line.
// Line-typed documents map one segment to one unit.
func Group(flat *FlatDocument) (*Document, error) {
	if flat == nil {
		return nil, NewConversionError("v1", "document is nil", nil)
	}
	docType, ok := GroupedType(flat.Type)
	if !ok {
		return nil, NewConversionError("v1", "unknown document type "+strconv.Quote(flat.Type), nil)
	}

	doc := &Document{
		Type:        docType,
		Metadata:    flat.Metadata,
		Cached:      flat.Cached,
		ProviderTag: flat.ProviderTag,
	}
	if doc.Cached == "" {
		doc.Cached = CachedNone
	}

	if docType == TypeLine {
		doc.Lyrics = make([]LyricUnit, 0, len(flat.Lyrics))
		for _, seg := range flat.Lyrics {
			doc.Lyrics = append(doc.Lyrics, LyricUnit{
				Time:     seg.Time,
				Duration: seg.Duration,
				Text:     seg.Text,
				Syllabus: []Syllable{},
				Element:  seg.Element.toElement(),
			})
		}
		return doc, nil
	}

	doc.Lyrics = groupLines(flat.Lyrics)
	return doc, nil
}

// groupLines folds segments into lines without mutating the input.
func groupLines(segments []Segment) []LyricUnit {
	lines := make([]LyricUnit, 0)
	start := 0
	for i, seg := range segments {
		if seg.IsLineEnding == 1 {
			lines = append(lines, closeLine(segments[start:i+1]))
			start = i + 1
		}
	}
	if start < len(segments) {
		lines = append(lines, closeLine(segments[start:]))
	}
	return lines
}

func closeLine(segments []Segment) LyricUnit {
	unit := LyricUnit{
		Syllabus: make([]Syllable, 0, len(segments)),
		Element:  lineElement(segments),
	}

	var text strings.Builder
	for _, seg := range segments {
		unit.Syllabus = append(unit.Syllabus, Syllable{
			Time:         seg.Time,
			Duration:     seg.Duration,
			Text:         seg.Text,
			IsBackground: seg.Element.IsBackground,
		})
		text.WriteString(seg.Text)
	}

	unit.Text = strings.TrimSpace(text.String())
	unit.Retime()
	return unit
}

// lineElement prefers the element of the first lead-vocal segment.
func lineElement(segments []Segment) Element {
	for _, seg := range segments {
		if !seg.Element.IsBackground {
			return seg.Element.toElement()
		}
	}
	return segments[0].Element.toElement()
}

func (e FlatElement) toElement() Element {
	return Element{Key: e.Key, SongPart: e.SongPart, Singer: e.Singer}
}

func flatElement(e Element, background bool) FlatElement {
	return FlatElement{Key: e.Key, SongPart: e.SongPart, Singer: e.Singer, IsBackground: background}
}

// Flatten converts a grouped (v2) document into the flat (v1) form: one
// segment per syllable, with only the last segment of each line marked as
// the line ending. Lines without syllables become a single segment.
func Flatten(doc *Document) (*FlatDocument, error) {
	if doc == nil {
		return nil, NewConversionError("v2", "document is nil", nil)
	}
	docType, ok := GroupedType(doc.Type)
	if !ok {
		return nil, NewConversionError("v2", "unknown document type "+strconv.Quote(doc.Type), nil)
	}

	flat := &FlatDocument{
		Type:        FlatType(docType),
		Metadata:    doc.Metadata,
		Lyrics:      make([]Segment, 0, len(doc.Lyrics)),
		Cached:      doc.Cached,
		ProviderTag: doc.ProviderTag,
	}

	for _, line := range doc.Lyrics {
		if docType == TypeLine || len(line.Syllabus) == 0 {
			flat.Lyrics = append(flat.Lyrics, Segment{
				Time:         line.Time,
				Duration:     line.Duration,
				Text:         line.Text,
				IsLineEnding: 1,
				Element:      flatElement(line.Element, false),
			})
			continue
		}

		last := len(line.Syllabus) - 1
		for i, syl := range line.Syllabus {
			seg := Segment{
				Time:     syl.Time,
				Duration: syl.Duration,
				Text:     syl.Text,
				Element:  flatElement(line.Element, syl.IsBackground),
			}
			if i == last {
				seg.IsLineEnding = 1
			}
			flat.Lyrics = append(flat.Lyrics, seg)
		}
	}

	return flat, nil
}
