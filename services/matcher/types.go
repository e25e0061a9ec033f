package matcher

import (
	"errors"
	"math"
)

// ErrNoConfidentMatch is reported by adapters when FindBestMatch returns nil.
var ErrNoConfidentMatch = errors.New("no confident match")

// Query is the song a caller is looking for. Album and duration are optional:
// an empty album or a non-positive duration means "unknown".
type Query struct {
	Title           string  `json:"title"`
	Artist          string  `json:"artist"`
	Album           string  `json:"album,omitempty"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
}

// DurationMs returns the query duration in milliseconds, or 0 when unknown.
func (q Query) DurationMs() int {
	if q.DurationSeconds <= 0 {
		return 0
	}
	return int(math.Round(q.DurationSeconds * 1000))
}

// Candidate is a provider search hit normalized at the adapter boundary.
// Ref carries the provider-specific handle needed to fetch its lyrics.
type Candidate struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	DurationMs int    `json:"durationMs,omitempty"`
	Ref        any    `json:"-"`
}

// Weights are the per-component multipliers used for the final score.
type Weights struct {
	Title    float64 `json:"title"`
	Artist   float64 `json:"artist"`
	Album    float64 `json:"album"`
	Duration float64 `json:"duration"`
}

// ScoreBreakdown explains how a candidate scored against a query.
type ScoreBreakdown struct {
	TitleScore    float64 `json:"titleScore"`
	ArtistScore   float64 `json:"artistScore"`
	AlbumScore    float64 `json:"albumScore"`
	DurationScore float64 `json:"durationScore"`
	Weights       Weights `json:"weights"`
	FinalScore    float64 `json:"finalScore"`
	Reason        string  `json:"reason"`
}

// Rejected reports whether a hard gate cut the candidate off.
func (s ScoreBreakdown) Rejected() bool {
	return s.Reason != ReasonMatch
}

// Match is a scored candidate. Index is its position in the input slice.
type Match struct {
	Candidate Candidate      `json:"candidate"`
	Score     ScoreBreakdown `json:"score"`
	Index     int            `json:"index"`
	Ambiguous bool           `json:"ambiguous,omitempty"`
}

// Score reasons
const (
	ReasonMatch            = "match"
	ReasonMissingFields    = "missing title or artist"
	ReasonTitleMismatch    = "title mismatch"
	ReasonArtistMismatch   = "artist mismatch"
	ReasonDurationMismatch = "duration mismatch"
)
