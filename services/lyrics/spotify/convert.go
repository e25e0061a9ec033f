package spotify

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"lyrics-aggregator-go/logcolors"
	"lyrics-aggregator-go/services/lyrics"

	log "github.com/sirupsen/logrus"
)

const (
	// FillerText marks instrumental gaps
	FillerText = "♪"

	// DefaultSyllableDurationMs is used when a syllable has no usable end time
	DefaultSyllableDurationMs = 500

	// spaceGapMs is the silence between syllables that implies a word break
	spaceGapMs = 100
)

// Parse converts a Spotify lyrics payload. Both the {"lyrics": {...}}
// envelope and the bare lyrics object are accepted.
func Parse(data []byte) (*lyrics.Document, error) {
	ld, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Convert(ld), nil
}

// Decode reads the lyrics object out of a payload without converting it.
func Decode(data []byte) (*LyricsData, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, lyrics.NewConversionError("spotify", "invalid JSON", err)
	}

	var ld LyricsData
	body := data
	if inner, ok := envelope["lyrics"]; ok && bytes.HasPrefix(bytes.TrimSpace(inner), []byte("{")) {
		body = inner
	}
	if err := json.Unmarshal(body, &ld); err != nil {
		return nil, lyrics.NewConversionError("spotify", "invalid lyrics payload", err)
	}
	if ld.Lines == nil {
		return nil, lyrics.NewConversionError("spotify", "missing lines", nil)
	}

	// songwriters may sit on the envelope when fetched separately
	if len(ld.SongWriters) == 0 {
		if raw, ok := envelope["songWriters"]; ok {
			_ = json.Unmarshal(raw, &ld.SongWriters)
		}
	}

	return &ld, nil
}

// Convert maps decoded lyrics onto a canonical document. The document is
// word-synced when any line carries timed syllables.
func Convert(ld *LyricsData) *lyrics.Document {
	docType := lyrics.TypeLine
	if hasTimedSyllables(ld.Lines) {
		docType = lyrics.TypeWord
	}

	source := ld.ProviderDisplayName
	if source == "" {
		source = "Spotify"
	}
	writers := ld.SongWriters
	if writers == nil {
		writers = []string{}
	}

	doc := &lyrics.Document{
		Type: docType,
		Metadata: lyrics.Metadata{
			Source:         source,
			Songwriters:    writers,
			Language:       ld.Language,
			LeadingSilence: "0.000",
		},
		Lyrics: make([]lyrics.LyricUnit, 0, len(ld.Lines)),
		Cached: lyrics.CachedNone,
	}

	for i, line := range ld.Lines {
		element := lyrics.Element{
			Key:      "L" + strconv.Itoa(len(doc.Lyrics)+1),
			SongPart: detectSongPart(line.Words),
		}

		if docType == lyrics.TypeWord {
			element.Singer = "v1"
			if unit, ok := wordUnit(line, element); ok {
				doc.Lyrics = append(doc.Lyrics, unit)
				continue
			}
		}

		if line.Words == "" || line.Words == FillerText {
			continue
		}
		doc.Lyrics = append(doc.Lyrics, lyrics.LyricUnit{
			Time:     int(line.StartTimeMs),
			Duration: lineDuration(ld.Lines, i),
			Text:     line.Words,
			Syllabus: []lyrics.Syllable{},
			Element:  element,
		})
	}

	log.Debugf("%s Converted %d Spotify lines (%s, sync %s)", logcolors.LogConverter, len(doc.Lyrics), docType, ld.SyncType)
	return doc
}

func hasTimedSyllables(lines []Line) bool {
	for _, line := range lines {
		for _, syl := range line.Syllables {
			if syl.Timed() {
				return true
			}
		}
	}
	return false
}

// wordUnit builds a syllable-timed unit. ok is false when the line has no
// timed syllables with text.
func wordUnit(line Line, element lyrics.Element) (lyrics.LyricUnit, bool) {
	unit := lyrics.LyricUnit{Element: element}
	var text strings.Builder

	for i, syl := range line.Syllables {
		if syl.Text == "" || !syl.Timed() {
			continue
		}
		sylText := syl.Text
		if shouldAddSpace(line.Syllables, i) {
			sylText += " "
		}

		duration := int(syl.EndTimeMs - syl.StartTimeMs)
		if syl.EndTimeMs <= syl.StartTimeMs {
			duration = DefaultSyllableDurationMs
		}

		text.WriteString(sylText)
		unit.Syllabus = append(unit.Syllabus, lyrics.Syllable{
			Time:     int(syl.StartTimeMs),
			Duration: duration,
			Text:     sylText,
		})
	}

	if len(unit.Syllabus) == 0 {
		return unit, false
	}
	unit.Text = strings.TrimSpace(text.String())
	unit.Retime()
	return unit, true
}

// lineDuration uses the line's own end time when present, otherwise the
// next line's start.
func lineDuration(lines []Line, i int) int {
	line := lines[i]
	if line.EndTimeMs > line.StartTimeMs {
		return int(line.EndTimeMs - line.StartTimeMs)
	}
	if i+1 < len(lines) && lines[i+1].StartTimeMs > line.StartTimeMs {
		return int(lines[i+1].StartTimeMs - line.StartTimeMs)
	}
	return 0
}

// shouldAddSpace decides whether a word break follows syllable i: a pause
// longer than spaceGapMs, a capitalised next syllable, or punctuation on
// either side.
func shouldAddSpace(syllables []Syllable, i int) bool {
	if i >= len(syllables)-1 {
		return false
	}
	cur, next := syllables[i], syllables[i+1]

	if int(next.StartTimeMs-cur.EndTimeMs) > spaceGapMs {
		return true
	}
	if r, ok := firstRune(next.Text); ok && (unicode.IsUpper(r) || isBreakPunct(r)) {
		return true
	}
	if r, ok := lastRune(cur.Text); ok && isBreakPunct(r) {
		return true
	}
	return false
}

func isBreakPunct(r rune) bool {
	return strings.ContainsRune(".,!?", r)
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}

func lastRune(s string) (rune, bool) {
	r := []rune(s)
	if len(r) == 0 {
		return 0, false
	}
	return r[len(r)-1], true
}

// detectSongPart guesses a song part from section markers in the line text.
func detectSongPart(words string) string {
	text := strings.ToLower(words)
	for _, part := range []string{"Verse", "Chorus", "Bridge", "Intro", "Outro"} {
		if strings.Contains(text, strings.ToLower(part)) {
			return part
		}
	}
	return ""
}
