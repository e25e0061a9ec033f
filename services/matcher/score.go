package matcher

import (
	"math"

	"lyrics-aggregator-go/services/similarity"
)

// AlbumSimilarity is a weak prior: a missing album on either side scores 0.1.
func AlbumSimilarity(albumA, albumB string) float64 {
	normA, normB := similarity.Normalize(albumA), similarity.Normalize(albumB)
	if normA == "" || normB == "" {
		return 0.1
	}
	if normA == normB {
		return 1.0
	}
	return similarity.DiceCoefficient(normA, normB)
}

// DurationSimilarity buckets the absolute difference of two durations.
// A non-positive duration is unknown and scores 0.7.
func DurationSimilarity(durationMsA, durationMsB int) float64 {
	if durationMsA <= 0 || durationMsB <= 0 {
		return 0.7
	}

	diff := absInt(durationMsA - durationMsB)
	switch {
	case diff == 0:
		return 1.0
	case diff <= 2000:
		return 0.95
	case diff <= 5000:
		return 0.7
	case diff <= 10000:
		return 0.4
	case diff <= 15000:
		return 0.2
	default:
		return 0.05
	}
}

// weightsFor picks the component weights based on which optional fields both sides carry.
func weightsFor(bothDurations, bothAlbums bool) Weights {
	switch {
	case bothAlbums && bothDurations:
		return Weights{Title: 0.3, Artist: 0.3, Album: 0.2, Duration: 0.2}
	case bothAlbums:
		return Weights{Title: 0.4, Artist: 0.4, Album: 0.2, Duration: 0}
	case bothDurations:
		return Weights{Title: 0.35, Artist: 0.35, Album: 0.1, Duration: 0.2}
	default:
		return Weights{Title: 0.5, Artist: 0.4, Album: 0.05, Duration: 0.05}
	}
}

// Score compares one candidate with the query. It never fails: hard gate
// rejections come back as a capped score with a reason.
func (m *Matcher) Score(c Candidate, q Query) ScoreBreakdown {
	if isBlank(c.Title) || isBlank(c.Artist) || isBlank(q.Title) || isBlank(q.Artist) {
		return ScoreBreakdown{Reason: ReasonMissingFields}
	}

	candTitle, queryTitle := AnalyzeTitle(c.Title), AnalyzeTitle(q.Title)
	queryDurationMs := q.DurationMs()

	s := ScoreBreakdown{
		TitleScore:    TitleSimilarity(candTitle, queryTitle),
		ArtistScore:   ArtistSimilarity(c.Artist, q.Artist, candTitle, queryTitle),
		AlbumScore:    AlbumSimilarity(c.Album, q.Album),
		DurationScore: DurationSimilarity(c.DurationMs, queryDurationMs),
	}

	if s.TitleScore < m.opts.TitleGate {
		s.FinalScore = math.Min(0.4, s.TitleScore*0.5)
		s.Reason = ReasonTitleMismatch
		return s
	}
	if s.ArtistScore < m.opts.ArtistGate {
		s.FinalScore = math.Min(0.5, s.ArtistScore*0.7)
		s.Reason = ReasonArtistMismatch
		return s
	}

	bothDurations := c.DurationMs > 0 && queryDurationMs > 0
	if bothDurations && absInt(c.DurationMs-queryDurationMs) > m.opts.DurationGateMs {
		s.FinalScore = math.Min(0.6, (s.TitleScore+s.ArtistScore)/2*0.8)
		s.Reason = ReasonDurationMismatch
		return s
	}

	bothAlbums := !isBlank(c.Album) && !isBlank(q.Album)
	s.Weights = weightsFor(bothDurations, bothAlbums)

	final := s.TitleScore*s.Weights.Title +
		s.ArtistScore*s.Weights.Artist +
		s.AlbumScore*s.Weights.Album +
		s.DurationScore*s.Weights.Duration

	if s.TitleScore == 1.0 && s.ArtistScore >= 0.9 {
		final += 0.05
	}

	s.FinalScore = clamp(final)
	s.Reason = ReasonMatch
	return s
}

func isBlank(s string) bool {
	return similarity.Normalize(s) == ""
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
