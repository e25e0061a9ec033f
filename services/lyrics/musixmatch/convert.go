package musixmatch

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"lyrics-aggregator-go/logcolors"
	"lyrics-aggregator-go/services/lyrics"
	"lyrics-aggregator-go/services/lyrics/lrc"

	log "github.com/sirupsen/logrus"
)

// Source is the metadata source for converted documents
const Source = "Musixmatch"

// MinWordDurationMs is the floor for word durations computed from offsets
const MinWordDurationMs = 100

var writerRegex = regexp.MustCompile(`(?i)Writer\(s\):\s*([^\n]+)`)

// Options control conversion granularity.
type Options struct {
	// WordLevel keeps per-word timing from richsync bodies. Otherwise each
	// richsync line becomes one Line unit.
	WordLevel bool
}

// Parse converts a Musixmatch payload. Richsync is preferred over subtitles.
func Parse(data []byte, opts Options) (*lyrics.Document, error) {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, lyrics.NewConversionError("musixmatch", "invalid JSON", err)
	}
	return Convert(&payload, opts)
}

// Convert maps a decoded payload onto a canonical document.
func Convert(payload *Payload, opts Options) (*lyrics.Document, error) {
	if payload == nil {
		return nil, lyrics.NewConversionError("musixmatch", "payload is nil", nil)
	}
	body := payload.Lyrics.Message.Body

	var (
		doc *lyrics.Document
		err error
	)
	switch {
	case body.Richsync != nil:
		doc, err = fromRichsync(body.Richsync, opts.WordLevel)
	case body.Subtitle != nil:
		doc, err = fromSubtitle(body.Subtitle, payload.Track)
	default:
		return nil, lyrics.NewConversionError("musixmatch", "missing lyrics body", nil)
	}
	if err != nil {
		return nil, err
	}

	if payload.Track != nil && doc.Metadata.Title == "" {
		doc.Metadata.Title = payload.Track.TrackName
	}
	for i := range doc.Lyrics {
		if doc.Lyrics[i].Element.Key == "" {
			doc.Lyrics[i].Element.Key = "L" + strconv.Itoa(i+1)
		}
	}

	log.Debugf("%s Converted %d Musixmatch lines (%s)", logcolors.LogConverter, len(doc.Lyrics), doc.Type)
	return doc, nil
}

func fromRichsync(rs *Richsync, wordLevel bool) (*lyrics.Document, error) {
	var lines []RichsyncLine
	if err := json.Unmarshal([]byte(rs.Body), &lines); err != nil {
		return nil, lyrics.NewConversionError("musixmatch", "invalid richsync body", err)
	}

	segments, hasWords := Flatten(lines, wordLevel)
	if len(segments) == 0 {
		return nil, lyrics.NewConversionError("musixmatch", "empty richsync body", nil)
	}

	flatType := lyrics.TypeLine
	if wordLevel && hasWords {
		flatType = lyrics.FlatTypeSyllable
	}

	flat := &lyrics.FlatDocument{
		Type: flatType,
		Metadata: lyrics.Metadata{
			Source:         Source,
			Songwriters:    ExtractSongwriters(rs.Copyright),
			LeadingSilence: "0.000",
		},
		Lyrics: segments,
	}
	return lyrics.Group(flat)
}

func fromSubtitle(sub *Subtitle, track *Track) (*lyrics.Document, error) {
	opts := lrc.Options{Source: Source}
	if track != nil {
		opts.TrackDurationMs = track.TrackLength * 1000
	}
	doc, err := lrc.Parse(sub.Body, opts)
	if err != nil {
		return nil, lyrics.NewConversionError("musixmatch", "invalid subtitle body", err)
	}
	doc.Metadata.Songwriters = ExtractSongwriters(sub.Copyright)
	return doc, nil
}

// Flatten turns richsync lines into flat segments. At word level, separator
// entries are merged into the preceding word and each word lasts until the
// next word's offset (or the line end). Non-positive durations become
// MinWordDurationMs.
// hasWords reports whether any segment came from word data.
func Flatten(lines []RichsyncLine, wordLevel bool) (segments []lyrics.Segment, hasWords bool) {
	segments = make([]lyrics.Segment, 0)
	for _, line := range lines {
		lineStart := secondsToMs(line.Start)
		lineEnd := secondsToMs(line.End)

		if !wordLevel || len(line.Words) == 0 {
			if strings.TrimSpace(line.Text) != "" {
				segments = append(segments, lyrics.Segment{
					Time:         lineStart,
					Duration:     max(lineEnd-lineStart, 0),
					Text:         line.Text,
					IsLineEnding: 1,
				})
			}
			continue
		}

		lineSegments := wordSegments(line.Words, lineStart, lineEnd)
		if len(lineSegments) > 0 {
			lineSegments[len(lineSegments)-1].IsLineEnding = 1
			segments = append(segments, lineSegments...)
			hasWords = true
		}
	}
	return segments, hasWords
}

func wordSegments(words []RichsyncWord, lineStart, lineEnd int) []lyrics.Segment {
	var out []lyrics.Segment
	isSpace := func(i int) bool { return strings.TrimSpace(words[i].Chars) == "" }

	for i := 0; i < len(words); {
		if isSpace(i) {
			i++
			continue
		}
		word := words[i]
		text := word.Chars
		if i+1 < len(words) && isSpace(i+1) {
			text += words[i+1].Chars
			i += 2
		} else {
			i++
		}

		start := lineStart + secondsToMs(word.Offset)

		next := i
		for next < len(words) && isSpace(next) {
			next++
		}
		end := lineEnd
		if next < len(words) {
			end = lineStart + secondsToMs(words[next].Offset)
		}
		duration := end - start
		if duration <= 0 {
			duration = MinWordDurationMs
		}

		out = append(out, lyrics.Segment{
			Time:     start,
			Duration: duration,
			Text:     text,
		})
	}
	return out
}

// ExtractSongwriters reads names from a "Writer(s): A, B" copyright line.
func ExtractSongwriters(copyright string) []string {
	writers := []string{}
	match := writerRegex.FindStringSubmatch(copyright)
	if match == nil {
		return writers
	}
	for _, name := range strings.Split(match[1], ",") {
		if name = strings.TrimSpace(name); name != "" {
			writers = append(writers, name)
		}
	}
	return writers
}

func secondsToMs(s float64) int {
	return int(math.Round(s * 1000))
}
