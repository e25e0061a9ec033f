package ttml

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"lyrics-aggregator-go/logcolors"
	"lyrics-aggregator-go/services/lyrics"

	log "github.com/sirupsen/logrus"
)

// Write renders a canonical document as TTML.
//
// Consecutive lines sharing a song part are grouped into one <div>.
// Consecutive background syllables are wrapped in a single role="x-bg" span
// in their original order, so Parse(Write(doc)) keeps line count, syllable
// timings and background flags.
func Write(doc *lyrics.Document) (string, error) {
	if err := lyrics.Validate(doc); err != nil {
		return "", err
	}
	docType, _ := lyrics.GroupedType(doc.Type)

	lang := doc.Metadata.Language
	if lang == "" {
		lang = "en"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<tt xmlns="%s" xmlns:itunes="%s" xmlns:ttm="%s" itunes:timing="%s" xml:lang="%s">`,
		NamespaceTT, NamespaceITunes, NamespaceMetadata, docType, escape(lang))

	keys := lineKeys(doc.Lyrics)
	agentIDs := writeHead(&sb, doc, keys)

	_, end := doc.Span()
	fmt.Fprintf(&sb, `<body dur="%s">`, FormatTime(end))
	writeBody(&sb, doc, docType, keys, agentIDs)
	sb.WriteString(`</body></tt>`)

	log.Debugf("%s Wrote %d lines (%s timing)", logcolors.LogTTMLWriter, len(doc.Lyrics), docType)
	return sb.String(), nil
}

// lineKeys returns the itunes:key for every line. Lines without a key get a
// positional one so side tables can still refer to them.
func lineKeys(units []lyrics.LyricUnit) []string {
	keys := make([]string, len(units))
	for i, u := range units {
		keys[i] = u.Element.Key
		if keys[i] == "" && (u.Translation != nil || u.Transliteration != nil) {
			keys[i] = "L" + strconv.Itoa(i+1)
		}
	}
	return keys
}

// writeHead emits <head> and returns the agent id to use for each singer.
func writeHead(sb *strings.Builder, doc *lyrics.Document, keys []string) map[string]string {
	sb.WriteString(`<head><metadata>`)
	if doc.Metadata.Title != "" {
		fmt.Fprintf(sb, `<ttm:title>%s</ttm:title>`, escape(doc.Metadata.Title))
	}

	agents, agentIDs := resolveAgents(doc)
	ids := make([]string, 0, len(agents))
	for id := range agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		a := agents[id]
		fmt.Fprintf(sb, `<ttm:agent type="%s" xml:id="%s">`, escape(a.Type), escape(id))
		if a.Name != "" {
			fmt.Fprintf(sb, `<ttm:name type="full">%s</ttm:name>`, escape(a.Name))
		}
		sb.WriteString(`</ttm:agent>`)
	}
	sb.WriteString(`</metadata>`)

	silence := doc.Metadata.LeadingSilence
	if silence == "" {
		silence = DefaultLeadingSilence
	}
	fmt.Fprintf(sb, `<itunes:metadata leadingSilence="%s">`, escape(silence))
	if len(doc.Metadata.Songwriters) > 0 {
		sb.WriteString(`<songwriters>`)
		for _, w := range doc.Metadata.Songwriters {
			fmt.Fprintf(sb, `<songwriter>%s</songwriter>`, escape(w))
		}
		sb.WriteString(`</songwriters>`)
	}
	writeTranslations(sb, doc.Lyrics, keys)
	writeTransliterations(sb, doc.Lyrics, keys)
	sb.WriteString(`</itunes:metadata></head>`)

	return agentIDs
}

// resolveAgents returns the declared agents plus one synthesized agent for
// every singer the head does not declare.
func resolveAgents(doc *lyrics.Document) (map[string]lyrics.Agent, map[string]string) {
	agents := make(map[string]lyrics.Agent, len(doc.Metadata.Agents))
	agentIDs := make(map[string]string)
	for id, a := range doc.Metadata.Agents {
		agents[id] = a
		alias := a.Alias
		if alias == "" {
			alias = singerForAgent(id)
		}
		agentIDs[alias] = id
	}

	for _, u := range doc.Lyrics {
		singer := u.Element.Singer
		if singer == "" {
			continue
		}
		if _, ok := agentIDs[singer]; ok {
			continue
		}
		id := singer
		if strings.HasPrefix(singer, "v") {
			id = "voice" + singer[1:]
		}
		agentIDs[singer] = id
		if _, declared := agents[id]; declared {
			continue
		}
		number := strings.TrimPrefix(id, "voice")
		a := lyrics.Agent{Type: "person", Name: "Singer " + number, Alias: singer}
		if strings.HasSuffix(id, "000") {
			a.Type = "group"
			a.Name = "Group " + number
		}
		agents[id] = a
	}
	return agents, agentIDs
}

func writeTranslations(sb *strings.Builder, units []lyrics.LyricUnit, keys []string) {
	byLang := make(map[string][]int)
	var langs []string
	for i, u := range units {
		if u.Translation == nil {
			continue
		}
		if _, ok := byLang[u.Translation.Lang]; !ok {
			langs = append(langs, u.Translation.Lang)
		}
		byLang[u.Translation.Lang] = append(byLang[u.Translation.Lang], i)
	}
	if len(langs) == 0 {
		return
	}

	sb.WriteString(`<translations>`)
	for _, lang := range langs {
		sb.WriteString(`<translation type="subtitle"`)
		if lang != "" {
			fmt.Fprintf(sb, ` xml:lang="%s"`, escape(lang))
		}
		sb.WriteString(`>`)
		for _, i := range byLang[lang] {
			fmt.Fprintf(sb, `<text for="%s">%s</text>`, escape(keys[i]), escape(units[i].Translation.Text))
		}
		sb.WriteString(`</translation>`)
	}
	sb.WriteString(`</translations>`)
}

func writeTransliterations(sb *strings.Builder, units []lyrics.LyricUnit, keys []string) {
	byLang := make(map[string][]int)
	var langs []string
	for i, u := range units {
		if u.Transliteration == nil {
			continue
		}
		if _, ok := byLang[u.Transliteration.Lang]; !ok {
			langs = append(langs, u.Transliteration.Lang)
		}
		byLang[u.Transliteration.Lang] = append(byLang[u.Transliteration.Lang], i)
	}
	if len(langs) == 0 {
		return
	}

	sb.WriteString(`<transliterations>`)
	for _, lang := range langs {
		sb.WriteString(`<transliteration`)
		if lang != "" {
			fmt.Fprintf(sb, ` xml:lang="%s"`, escape(lang))
		}
		sb.WriteString(`>`)
		for _, i := range byLang[lang] {
			tl := units[i].Transliteration
			fmt.Fprintf(sb, `<text for="%s">`, escape(keys[i]))
			if len(tl.Syllabus) > 0 {
				writeSyllables(sb, tl.Syllabus)
			} else {
				sb.WriteString(escape(tl.Text))
			}
			sb.WriteString(`</text>`)
		}
		sb.WriteString(`</transliteration>`)
	}
	sb.WriteString(`</transliterations>`)
}

func writeBody(sb *strings.Builder, doc *lyrics.Document, docType string, keys []string, agentIDs map[string]string) {
	units := doc.Lyrics
	for start := 0; start < len(units); {
		part := units[start].Element.SongPart
		stop := start + 1
		for stop < len(units) && units[stop].Element.SongPart == part {
			stop++
		}

		divBegin := units[start].Time
		divEnd := units[start].Time + units[start].Duration
		for _, u := range units[start:stop] {
			if u.Time < divBegin {
				divBegin = u.Time
			}
			if e := u.Time + u.Duration; e > divEnd {
				divEnd = e
			}
		}

		fmt.Fprintf(sb, `<div begin="%s" end="%s"`, FormatTime(divBegin), FormatTime(divEnd))
		if part != "" {
			fmt.Fprintf(sb, ` itunes:song-part="%s"`, escape(part))
		}
		sb.WriteString(`>`)
		for i := start; i < stop; i++ {
			writeParagraph(sb, units[i], docType, keys[i], agentIDs)
		}
		sb.WriteString(`</div>`)

		start = stop
	}
}

func writeParagraph(sb *strings.Builder, u lyrics.LyricUnit, docType, key string, agentIDs map[string]string) {
	fmt.Fprintf(sb, `<p begin="%s" end="%s"`, FormatTime(u.Time), FormatTime(u.Time+u.Duration))
	if key != "" {
		fmt.Fprintf(sb, ` itunes:key="%s"`, escape(key))
	}
	if id, ok := agentIDs[u.Element.Singer]; ok && u.Element.Singer != "" {
		fmt.Fprintf(sb, ` ttm:agent="%s"`, escape(id))
	}
	sb.WriteString(`>`)

	if docType == lyrics.TypeLine || len(u.Syllabus) == 0 {
		sb.WriteString(escape(u.Text))
	} else {
		writeSyllables(sb, u.Syllabus)
	}
	sb.WriteString(`</p>`)
}

// writeSyllables emits one span per syllable. A syllable's trailing space is
// written after its closing tag, and runs of background syllables share one
// x-bg wrapper.
func writeSyllables(sb *strings.Builder, syllables []lyrics.Syllable) {
	for i := 0; i < len(syllables); {
		if !syllables[i].IsBackground {
			writeSpan(sb, syllables[i])
			i++
			continue
		}

		j := i
		for j < len(syllables) && syllables[j].IsBackground {
			j++
		}
		fmt.Fprintf(sb, `<span ttm:role="%s">`, RoleBackground)
		for _, s := range syllables[i:j] {
			writeSpan(sb, s)
		}
		sb.WriteString(`</span>`)
		i = j
	}
}

func writeSpan(sb *strings.Builder, s lyrics.Syllable) {
	text := strings.TrimRight(s.Text, " ")
	tail := s.Text[len(text):]
	fmt.Fprintf(sb, `<span begin="%s" end="%s">%s</span>`, FormatTime(s.Time), FormatTime(s.End()), escape(text))
	if tail != "" {
		sb.WriteString(" ")
	}
}

func escape(s string) string {
	var sb strings.Builder
	// strings.Builder never returns a write error
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
