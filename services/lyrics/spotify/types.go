// Package spotify converts Spotify color-lyrics payloads into canonical documents.
package spotify

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Sync types reported by the lyrics endpoint
const (
	SyncTypeLine     = "LINE_SYNCED"
	SyncTypeSyllable = "SYLLABLE_SYNCED"
	SyncTypeUnsynced = "UNSYNCED"
)

// LyricsResponse represents the lyrics API response
type LyricsResponse struct {
	Lyrics LyricsData `json:"lyrics"`
}

// LyricsData contains the actual lyrics data
type LyricsData struct {
	SyncType            string   `json:"syncType"`
	Lines               []Line   `json:"lines"`
	Provider            string   `json:"provider"`
	ProviderDisplayName string   `json:"providerDisplayName"`
	IsRtlLanguage       bool     `json:"isRtlLanguage"`
	Language            string   `json:"language"`
	SongWriters         []string `json:"songWriters"`
}

// Line represents one lyrics line. Timestamps arrive as strings.
type Line struct {
	StartTimeMs Millis     `json:"startTimeMs"`
	EndTimeMs   Millis     `json:"endTimeMs"`
	Words       string     `json:"words"`
	Syllables   []Syllable `json:"syllables"`
}

// Syllable is a timed fragment of a line. Older payloads send bare strings,
// which decode as untimed syllables.
type Syllable struct {
	Text        string `json:"text"`
	StartTimeMs Millis `json:"startTimeMs"`
	EndTimeMs   Millis `json:"endTimeMs"`

	timed bool
}

// UnmarshalJSON accepts either a syllable object or a bare string.
func (s *Syllable) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		*s = Syllable{}
		return json.Unmarshal(data, &s.Text)
	}

	var raw struct {
		Text        string  `json:"text"`
		StartTimeMs *Millis `json:"startTimeMs"`
		EndTimeMs   Millis  `json:"endTimeMs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Syllable{Text: raw.Text, EndTimeMs: raw.EndTimeMs}
	if raw.StartTimeMs != nil {
		s.StartTimeMs = *raw.StartTimeMs
		s.timed = true
	}
	return nil
}

// Timed reports whether the syllable carried a start time.
func (s Syllable) Timed() bool {
	return s.timed
}

// Millis is a millisecond timestamp sent either as a JSON string or a number.
type Millis int

// UnmarshalJSON accepts "1234", 1234, 1234.5 and "".
func (m *Millis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	if len(data) == 0 {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*m = Millis(math.Round(f))
	return nil
}
