package lrc

import (
	"encoding/json"
	"math"

	"lyrics-aggregator-go/services/lyrics"
)

// LRCLIBPayload is a track record as returned by the LRCLIB API.
type LRCLIBPayload struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"` // seconds
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// ParseLRCLIB converts an LRCLIB record into a Line document. The last line
// runs to the end of the track.
func ParseLRCLIB(data []byte) (*lyrics.Document, error) {
	var payload LRCLIBPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, lyrics.NewConversionError("lrclib", "invalid JSON", err)
	}
	return FromLRCLIB(&payload)
}

// FromLRCLIB converts an already decoded LRCLIB record.
func FromLRCLIB(payload *LRCLIBPayload) (*lyrics.Document, error) {
	if payload == nil {
		return nil, lyrics.NewConversionError("lrclib", "payload is nil", nil)
	}

	synced := payload.SyncedLyrics
	if synced == "" && payload.Instrumental {
		synced = "[00:00.00]" + InstrumentalText
	}
	if synced == "" {
		return nil, lyrics.NewConversionError("lrclib", "no synced lyrics", nil)
	}

	doc, err := Parse(synced, Options{
		Source:          "LRCLIB",
		TrackDurationMs: int(math.Round(payload.Duration * 1000)),
	})
	if err != nil {
		return nil, err
	}
	if doc.Metadata.Title == "" {
		doc.Metadata.Title = payload.TrackName
	}
	return doc, nil
}
