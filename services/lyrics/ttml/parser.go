package ttml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode"

	"lyrics-aggregator-go/logcolors"
	"lyrics-aggregator-go/services/lyrics"

	log "github.com/sirupsen/logrus"
)

// Parse converts a TTML document into the canonical form.
// Malformed XML or bad timestamps are reported as *lyrics.ConversionError.
func Parse(data []byte) (*lyrics.Document, error) {
	var raw document
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&raw); err != nil {
		return nil, lyrics.NewConversionError("ttml", "malformed XML", err)
	}

	docType := lyrics.TypeWord
	if strings.EqualFold(raw.Timing, "line") {
		docType = lyrics.TypeLine
	}

	meta := collectMetadata(raw.Head.Metadata)

	doc := &lyrics.Document{
		Type: docType,
		Metadata: lyrics.Metadata{
			Source:         DefaultSource,
			Songwriters:    meta.songwriters,
			Language:       raw.Lang,
			LeadingSilence: meta.leadingSilence,
			Title:          meta.title,
			Agents:         meta.agents,
		},
		Lyrics: make([]lyrics.LyricUnit, 0),
		Cached: lyrics.CachedNone,
	}

	for _, d := range raw.Body.Divs {
		for _, p := range d.Paragraphs {
			unit, ok, err := parseParagraph(p, d.SongPart, docType)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			attachSideTables(&unit, meta)
			doc.Lyrics = append(doc.Lyrics, unit)
		}
	}

	log.Debugf("%s Parsed %d lines (%s timing, %d agents)", logcolors.LogTTMLParser, len(doc.Lyrics), docType, len(meta.agents))
	return doc, nil
}

// collected merges every metadata block in the head.
type collected struct {
	title            string
	leadingSilence   string
	songwriters      []string
	agents           map[string]lyrics.Agent
	translations     map[string]lyrics.Translation
	transliterations map[string]sideText
	translitLang     map[string]string
}

func collectMetadata(blocks []metadata) *collected {
	c := &collected{
		songwriters:      []string{},
		translations:     make(map[string]lyrics.Translation),
		transliterations: make(map[string]sideText),
		translitLang:     make(map[string]string),
	}
	var walk func([]metadata)
	walk = func(blocks []metadata) {
		for _, m := range blocks {
			if c.title == "" {
				c.title = strings.TrimSpace(m.Title)
			}
			if c.leadingSilence == "" {
				c.leadingSilence = strings.TrimSpace(m.LeadingSilence)
			}
			for _, sw := range m.Songwriters {
				if sw = strings.TrimSpace(sw); sw != "" {
					c.songwriters = append(c.songwriters, sw)
				}
			}
			for _, a := range m.Agents {
				if a.ID == "" {
					continue
				}
				if c.agents == nil {
					c.agents = make(map[string]lyrics.Agent)
				}
				agentType := a.Type
				if agentType == "" {
					agentType = "person"
				}
				c.agents[a.ID] = lyrics.Agent{
					Type:  agentType,
					Name:  strings.TrimSpace(a.Name),
					Alias: singerForAgent(a.ID),
				}
			}
			for _, table := range m.Translations {
				for _, t := range table.Texts {
					text, _, err := walkInline(t.Inner)
					if err != nil {
						log.Warnf("%s Skipping translation for %s: %v", logcolors.LogTTMLParser, t.For, err)
						continue
					}
					c.translations[t.For] = lyrics.Translation{Lang: table.Lang, Text: text}
				}
			}
			for _, table := range m.Transliterations {
				for _, t := range table.Texts {
					c.transliterations[t.For] = t
					c.translitLang[t.For] = table.Lang
				}
			}
			walk(m.ITunes)
		}
	}
	walk(blocks)
	return c
}

func attachSideTables(unit *lyrics.LyricUnit, meta *collected) {
	key := unit.Element.Key
	if key == "" {
		return
	}
	if tr, ok := meta.translations[key]; ok {
		unit.Translation = &tr
	}
	if raw, ok := meta.transliterations[key]; ok {
		text, syllables, err := walkInline(raw.Inner)
		if err != nil {
			log.Warnf("%s Skipping transliteration for %s: %v", logcolors.LogTTMLParser, key, err)
			return
		}
		if len(syllables) > 0 {
			text = joinSyllables(syllables)
		}
		unit.Transliteration = &lyrics.Transliteration{
			Lang:     meta.translitLang[key],
			Text:     text,
			Syllabus: syllables,
		}
	}
}

// singerForAgent turns an agent id like "voice1" into the singer alias "v1".
func singerForAgent(id string) string {
	return strings.Replace(id, "voice", "v", 1)
}

func parseParagraph(p paragraph, songPart, docType string) (lyrics.LyricUnit, bool, error) {
	unit := lyrics.LyricUnit{
		Syllabus: []lyrics.Syllable{},
		Element: lyrics.Element{
			Key:      p.Key,
			SongPart: songPart,
			Singer:   singerForAgent(p.Agent),
		},
	}

	begin, end, hasTiming, err := paragraphTiming(p)
	if err != nil {
		return unit, false, err
	}

	text, syllables, err := walkInline(p.Inner)
	if err != nil {
		return unit, false, lyrics.NewConversionError("ttml", fmt.Sprintf("bad paragraph %q", p.Key), err)
	}

	if docType == lyrics.TypeLine {
		if !hasTiming || text == "" {
			return unit, false, nil
		}
		unit.Time = begin
		unit.Duration = end - begin
		unit.Text = text
		return unit, true, nil
	}

	if len(syllables) == 0 {
		// a word-timed document can still contain an untimed line
		if !hasTiming || text == "" {
			return unit, false, nil
		}
		syllables = []lyrics.Syllable{{Time: begin, Duration: end - begin, Text: text}}
	}

	unit.Syllabus = syllables
	unit.Text = strings.TrimSpace(joinSyllables(syllables))
	unit.Retime()
	return unit, true, nil
}

func paragraphTiming(p paragraph) (begin, end int, ok bool, err error) {
	if p.Begin == "" || p.End == "" {
		return 0, 0, false, nil
	}
	if begin, err = ParseTime(p.Begin); err != nil {
		return 0, 0, false, lyrics.NewConversionError("ttml", "bad paragraph begin", err)
	}
	if end, err = ParseTime(p.End); err != nil {
		return 0, 0, false, lyrics.NewConversionError("ttml", "bad paragraph end", err)
	}
	if end < begin {
		end = begin
	}
	return begin, end, true, nil
}

func joinSyllables(syllables []lyrics.Syllable) string {
	var sb strings.Builder
	for _, s := range syllables {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

type spanFrame struct {
	background bool
	syllable   int

	// opened is how many syllables existed when the element started
	opened int
}

// walkInline reads the mixed content of a <p> or side-table <text> element.
// Every span with a begin attribute becomes a syllable. Text directly after a
// timed span's closing tag is its trailing text. Spans nested under a
// role="x-bg" wrapper are background vocals. It returns the trimmed plain text
// of the whole fragment alongside the syllables.
func walkInline(inner string) (string, []lyrics.Syllable, error) {
	dec := xml.NewDecoder(strings.NewReader(inner))
	dec.Entity = xml.HTMLEntity

	var (
		syllables []lyrics.Syllable
		stack     []spanFrame
		all       strings.Builder
	)
	lastClosed := -1

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			lastClosed = -1
			frame := spanFrame{syllable: -1, opened: len(syllables)}
			if len(stack) > 0 && stack[len(stack)-1].background {
				frame.background = true
			}
			if attr(t, "role") == RoleBackground {
				frame.background = true
			}
			if t.Name.Local == "span" {
				if beginStr := attr(t, "begin"); beginStr != "" {
					begin, err := ParseTime(beginStr)
					if err != nil {
						return "", nil, err
					}
					end := begin
					if endStr := attr(t, "end"); endStr != "" {
						if end, err = ParseTime(endStr); err != nil {
							return "", nil, err
						}
					}
					if end < begin {
						end = begin
					}
					syllables = append(syllables, lyrics.Syllable{
						Time:         begin,
						Duration:     end - begin,
						IsBackground: frame.background,
					})
					frame.syllable = len(syllables) - 1
				}
			}
			stack = append(stack, frame)

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			lastClosed = frame.syllable
			if lastClosed < 0 && len(syllables) > frame.opened {
				// an untimed wrapper hands trailing text to its last syllable
				lastClosed = len(syllables) - 1
			}

		case xml.CharData:
			s := string(t)
			all.WriteString(s)
			switch {
			case lastClosed >= 0:
				syllables[lastClosed].Text += s
			default:
				if idx := innermostTimed(stack); idx >= 0 {
					syllables[idx].Text += s
				}
			}
		}
	}

	// wrappers with their own timing but no text of their own
	kept := make([]lyrics.Syllable, 0, len(syllables))
	for _, s := range syllables {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		s.Text = squashSpace(s.Text)
		kept = append(kept, s)
	}

	return strings.Join(strings.Fields(all.String()), " "), kept, nil
}

// squashSpace collapses whitespace runs, including the indentation of
// pretty-printed documents, into single spaces.
func squashSpace(s string) string {
	var sb strings.Builder
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}

func innermostTimed(stack []spanFrame) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].syllable >= 0 {
			return stack[i].syllable
		}
	}
	return -1
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
