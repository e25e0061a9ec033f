// Package lyrics defines the canonical lyrics document every provider payload
// is converted into, and the flat (v1) encoding kept for older consumers.
package lyrics

// Document types
const (
	TypeWord = "Word"
	TypeLine = "Line"

	// FlatTypeSyllable is how the flat encoding names word-synced documents.
	FlatTypeSyllable = "syllable"
)

// Cache states reported with a document.
const (
	CachedNone     = "None"
	CachedGDrive   = "GDrive"
	CachedDatabase = "Database"
	CachedUpdated  = "Updated"
)

// Agent is a voice declared in the document head.
type Agent struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Alias string `json:"alias"`
}

// Metadata describes a lyrics document.
type Metadata struct {
	Source         string           `json:"source"`
	Songwriters    []string         `json:"songWriters"`
	Language       string           `json:"language,omitempty"`
	LeadingSilence string           `json:"leadingSilence"`
	Title          string           `json:"title,omitempty"`
	Agents         map[string]Agent `json:"agents,omitempty"`
}

// Element locates a unit inside the song.
type Element struct {
	Key      string `json:"key"`
	SongPart string `json:"songPart"`
	Singer   string `json:"singer"`
}

// Syllable is a sub-line timed fragment. Times are milliseconds.
type Syllable struct {
	Time         int    `json:"time"`
	Duration     int    `json:"duration"`
	Text         string `json:"text"`
	IsBackground bool   `json:"isBackground,omitempty"`
}

// End returns the syllable end time in milliseconds.
func (s Syllable) End() int {
	return s.Time + s.Duration
}

// Translation is a per-line translation from the document side tables.
type Translation struct {
	Lang string `json:"lang,omitempty"`
	Text string `json:"text"`
}

// Transliteration is a per-line romanization, optionally word-timed.
type Transliteration struct {
	Lang     string     `json:"lang,omitempty"`
	Text     string     `json:"text"`
	Syllabus []Syllable `json:"syllabus,omitempty"`
}

// LyricUnit is one sung line. For word-synced documents Time and Duration
// span the syllabus: Time is the earliest syllable start and Time+Duration
// the latest syllable end.
type LyricUnit struct {
	Time            int              `json:"time"`
	Duration        int              `json:"duration"`
	Text            string           `json:"text"`
	Syllabus        []Syllable       `json:"syllabus"`
	Element         Element          `json:"element"`
	Translation     *Translation     `json:"translation,omitempty"`
	Transliteration *Transliteration `json:"transliteration,omitempty"`
}

// Document is the grouped (v2) canonical lyrics document.
type Document struct {
	Type        string      `json:"type"`
	Metadata    Metadata    `json:"metadata"`
	Lyrics      []LyricUnit `json:"lyrics"`
	Cached      string      `json:"cached,omitempty"`
	ProviderTag string      `json:"providerTag,omitempty"`
}

// HasSyllableSync reports whether any unit carries sub-line timing.
func (d *Document) HasSyllableSync() bool {
	if d == nil {
		return false
	}
	for _, u := range d.Lyrics {
		if len(u.Syllabus) > 0 {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the document has no lyric units.
func (d *Document) IsEmpty() bool {
	return d == nil || len(d.Lyrics) == 0
}

// Span returns the earliest start and the latest end across all units.
func (d *Document) Span() (start, end int) {
	for i, u := range d.Lyrics {
		if i == 0 || u.Time < start {
			start = u.Time
		}
		if e := u.Time + u.Duration; e > end {
			end = e
		}
	}
	return start, end
}

// FlatElement is Element plus the background flag carried per segment.
type FlatElement struct {
	Key          string `json:"key"`
	SongPart     string `json:"songPart"`
	Singer       string `json:"singer"`
	IsBackground bool   `json:"isBackground,omitempty"`
}

// Segment is one entry of the flat (v1) encoding.
type Segment struct {
	Time         int         `json:"time"`
	Duration     int         `json:"duration"`
	Text         string      `json:"text"`
	IsLineEnding int         `json:"isLineEnding"`
	Element      FlatElement `json:"element"`
}

// FlatDocument is the flat (v1) encoding: one segment per syllable, with
// IsLineEnding set to 1 on the last segment of each line.
type FlatDocument struct {
	Type        string    `json:"type"`
	Metadata    Metadata  `json:"metadata"`
	Lyrics      []Segment `json:"lyrics"`
	Cached      string    `json:"cached,omitempty"`
	ProviderTag string    `json:"providerTag,omitempty"`
}

// spanOf returns min start and max end over syllables. ok is false for an empty slice.
func spanOf(syllables []Syllable) (start, end int, ok bool) {
	for i, s := range syllables {
		if i == 0 || s.Time < start {
			start = s.Time
		}
		if i == 0 || s.End() > end {
			end = s.End()
		}
	}
	return start, end, len(syllables) > 0
}

// Retime recomputes Time and Duration from the syllabus. Units without
// syllables are left unchanged.
func (u *LyricUnit) Retime() {
	if start, end, ok := spanOf(u.Syllabus); ok {
		u.Time = start
		u.Duration = end - start
	}
}
