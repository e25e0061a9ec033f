// Package lrc converts line-synced LRC text, and the LRCLIB payload that
// wraps it, into Line documents.
package lrc

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"lyrics-aggregator-go/logcolors"
	"lyrics-aggregator-go/services/lyrics"

	log "github.com/sirupsen/logrus"
)

var (
	// LRC timestamp pattern: [m:ss], [mm:ss.xx], [mm:ss.xxx] or [mm:ss:xx]
	lrcTimeRegex = regexp.MustCompile(`^\[(\d{1,3}):(\d{2})(?:[\.:](\d{1,3}))?\]`)

	// Metadata tags pattern: [tag:value]
	metadataRegex = regexp.MustCompile(`^\[([a-zA-Z]+):([^\]]*)\]$`)
)

// DefaultLineDurationMs is used for the last line when the track length is unknown.
const DefaultLineDurationMs = 5000

// Options tune how LRC text becomes a document.
type Options struct {
	// Source is written to the document metadata.
	Source string
	// TrackDurationMs bounds the last line. Zero means unknown.
	TrackDurationMs int
}

type timedLine struct {
	startMs int
	text    string
}

// Parse converts LRC text into a Line document. Each line lasts until the
// next timestamp, so empty timed lines act as end markers and are dropped
// afterwards. Lines carrying several timestamps are repeated at each one.
func Parse(content string, opts Options) (*lyrics.Document, error) {
	entries, tags := parseLines(content)

	if offset, err := strconv.Atoi(tags["offset"]); err == nil && offset != 0 {
		// a positive offset makes lyrics appear sooner
		for i := range entries {
			entries[i].startMs = max(entries[i].startMs-offset, 0)
		}
	}

	if len(entries) == 0 {
		return nil, lyrics.NewConversionError("lrc", "no timed lines", nil)
	}

	source := opts.Source
	if source == "" {
		source = "LRC"
	}

	doc := &lyrics.Document{
		Type: lyrics.TypeLine,
		Metadata: lyrics.Metadata{
			Source:         source,
			Songwriters:    songwriters(tags),
			Language:       DetectLanguage(tags, content),
			LeadingSilence: "0.000",
			Title:          tags["title"],
		},
		Lyrics: make([]lyrics.LyricUnit, 0, len(entries)),
		Cached: lyrics.CachedNone,
	}

	for i, e := range entries {
		if e.text == "" {
			continue
		}
		doc.Lyrics = append(doc.Lyrics, lyrics.LyricUnit{
			Time:     e.startMs,
			Duration: durationOf(entries, i, opts.TrackDurationMs),
			Text:     e.text,
			Syllabus: []lyrics.Syllable{},
			Element: lyrics.Element{
				Key: "L" + strconv.Itoa(len(doc.Lyrics)+1),
			},
		})
	}

	if len(doc.Lyrics) == 0 {
		return nil, lyrics.NewConversionError("lrc", "no lyric text", nil)
	}

	log.Debugf("%s Parsed %d LRC lines (%d timestamps)", logcolors.LogLRC, len(doc.Lyrics), len(entries))
	return doc, nil
}

// durationOf runs line i to the next later timestamp, or to the end of the
// track for the last line.
func durationOf(entries []timedLine, i, trackDurationMs int) int {
	start := entries[i].startMs
	for j := i + 1; j < len(entries); j++ {
		if entries[j].startMs > start {
			return entries[j].startMs - start
		}
	}
	if trackDurationMs > start {
		return trackDurationMs - start
	}
	return DefaultLineDurationMs
}

// parseLines extracts every timestamped entry, sorted by start time, and the
// recognised header tags.
func parseLines(content string) ([]timedLine, map[string]string) {
	var entries []timedLine
	tags := make(map[string]string)

	content = strings.TrimPrefix(content, "\ufeff")
	for _, rawLine := range strings.Split(content, "\n") {
		rawLine = strings.TrimSpace(rawLine)
		if rawLine == "" {
			continue
		}

		// Check for metadata tags like [ar:Artist], [ti:Title], etc.
		if matches := metadataRegex.FindStringSubmatch(rawLine); len(matches) == 3 {
			value := strings.TrimSpace(matches[2])
			switch strings.ToLower(matches[1]) {
			case "ar":
				tags["artist"] = value
			case "ti":
				tags["title"] = value
			case "al":
				tags["album"] = value
			case "au":
				tags["author"] = value
			case "by":
				tags["creator"] = value
			case "la", "lang", "language":
				tags["language"] = value
			case "offset":
				tags["offset"] = value
			}
			continue
		}

		// Find all timestamps at the beginning
		var timestamps []int
		text := rawLine
		for {
			match := lrcTimeRegex.FindStringSubmatch(text)
			if match == nil {
				break
			}
			timestamps = append(timestamps, timestampMs(match))
			text = text[len(match[0]):]
		}
		if len(timestamps) == 0 {
			continue
		}

		text = strings.TrimSpace(text)
		for _, startMs := range timestamps {
			entries = append(entries, timedLine{startMs: startMs, text: text})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].startMs < entries[j].startMs
	})
	return entries, tags
}

func timestampMs(match []string) int {
	minutes, _ := strconv.Atoi(match[1])
	seconds, _ := strconv.Atoi(match[2])

	// fraction digits: 1 = tenths, 2 = centiseconds, 3 = milliseconds
	millis := 0
	if frac := match[3]; frac != "" {
		millis, _ = strconv.Atoi(frac)
		switch len(frac) {
		case 1:
			millis *= 100
		case 2:
			millis *= 10
		}
	}
	return minutes*60*1000 + seconds*1000 + millis
}

func songwriters(tags map[string]string) []string {
	writers := []string{}
	for _, name := range strings.Split(tags["author"], "/") {
		if name = strings.TrimSpace(name); name != "" {
			writers = append(writers, name)
		}
	}
	return writers
}
