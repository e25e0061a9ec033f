// Package matcher decides which provider search result denotes the requested song.
package matcher

import (
	"math"
	"sort"

	"lyrics-aggregator-go/config"
	"lyrics-aggregator-go/logcolors"

	log "github.com/sirupsen/logrus"
)

// Options holds the matching thresholds.
type Options struct {
	MinConfidence    float64 // best score below this is no match
	AmbiguityGap     float64 // top two closer than this are ambiguous...
	AmbiguityCeiling float64 // ...unless the top score reaches this
	TitleGate        float64
	ArtistGate       float64
	DurationGateMs   int
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		MinConfidence:    0.70,
		AmbiguityGap:     0.05,
		AmbiguityCeiling: 0.9,
		TitleGate:        0.7,
		ArtistGate:       0.6,
		DurationGateMs:   2000,
	}
}

// OptionsFromConfig reads thresholds from the process configuration.
func OptionsFromConfig(cfg config.Config) Options {
	c := cfg.Configuration
	opts := Options{
		MinConfidence:    c.MinConfidenceScore,
		AmbiguityGap:     c.AmbiguityGap,
		AmbiguityCeiling: c.AmbiguityCeiling,
		TitleGate:        c.TitleGate,
		ArtistGate:       c.ArtistGate,
		DurationGateMs:   c.DurationMatchDeltaMs,
	}
	if opts == (Options{}) {
		return DefaultOptions()
	}
	return opts
}

// Matcher scores candidates with a fixed set of thresholds.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	opts Options
}

// New creates a Matcher.
func New(opts Options) *Matcher {
	return &Matcher{opts: opts}
}

var defaultMatcher = New(DefaultOptions())

// Score scores c against q with the default thresholds.
func Score(c Candidate, q Query) ScoreBreakdown {
	return defaultMatcher.Score(c, q)
}

// FindBestMatch picks the best candidate with the default thresholds.
func FindBestMatch(candidates []Candidate, q Query) *Match {
	return defaultMatcher.FindBestMatch(candidates, q)
}

// Rank scores every candidate that has both a title and an artist and returns
// them best first. Scores that round to the same thousandth are ordered by
// duration score, then by input position.
func (m *Matcher) Rank(candidates []Candidate, q Query) []Match {
	ranked := make([]Match, 0, len(candidates))
	for i, c := range candidates {
		if isBlank(c.Title) || isBlank(c.Artist) {
			log.Debugf("%s Skipping candidate %d: missing title or artist", logcolors.LogTrackScore, i)
			continue
		}

		s := m.Score(c, q)
		log.Debugf("%s %q by %q: final=%.3f title=%.2f artist=%.2f album=%.2f duration=%.2f (%s)",
			logcolors.LogTrackScore, c.Title, c.Artist, s.FinalScore,
			s.TitleScore, s.ArtistScore, s.AlbumScore, s.DurationScore, s.Reason)

		ranked = append(ranked, Match{Candidate: c, Score: s, Index: i})
	}

	sortRanked(ranked)
	return ranked
}

func sortRanked(ranked []Match) {
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Score, ranked[j].Score
		if ba, bb := scoreBucket(a.FinalScore), scoreBucket(b.FinalScore); ba != bb {
			return ba > bb
		}
		return a.DurationScore > b.DurationScore
	})
}

func scoreBucket(score float64) int64 {
	return int64(math.Round(score * 1000))
}

// FindBestMatch returns the top-ranked candidate, or nil when nothing clears
// the confidence threshold. Near-ties are flagged Ambiguous but still resolve
// to the top-ranked candidate.
func (m *Matcher) FindBestMatch(candidates []Candidate, q Query) *Match {
	if len(candidates) == 0 {
		log.Debugf("%s No candidates for %q by %q", logcolors.LogNoMatch, q.Title, q.Artist)
		return nil
	}

	ranked := m.Rank(candidates, q)
	if len(ranked) == 0 {
		log.Debugf("%s No usable candidates for %q by %q", logcolors.LogNoMatch, q.Title, q.Artist)
		return nil
	}

	best := ranked[0]
	if best.Score.FinalScore < m.opts.MinConfidence {
		log.Infof("%s Best candidate %q by %q scored %.3f, below threshold %.2f (%s)",
			logcolors.LogNoMatch, best.Candidate.Title, best.Candidate.Artist,
			best.Score.FinalScore, m.opts.MinConfidence, best.Score.Reason)
		return nil
	}

	if len(ranked) > 1 {
		second := ranked[1]
		gap := best.Score.FinalScore - second.Score.FinalScore
		if gap < m.opts.AmbiguityGap && best.Score.FinalScore < m.opts.AmbiguityCeiling {
			best.Ambiguous = true
			log.Warnf("%s %q (%.3f) and %q (%.3f) are within %.3f, keeping the first",
				logcolors.LogAmbiguous, best.Candidate.Title, best.Score.FinalScore,
				second.Candidate.Title, second.Score.FinalScore, gap)
		}
	}

	log.Infof("%s %q by %q (score: %.3f)", logcolors.LogBestMatch,
		best.Candidate.Title, best.Candidate.Artist, best.Score.FinalScore)

	return &best
}
