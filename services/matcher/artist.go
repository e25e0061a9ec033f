package matcher

import (
	"regexp"
	"sort"
	"strings"

	"lyrics-aggregator-go/services/similarity"
)

var (
	artistBracketRegex   = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	artistSeparatorRegex = regexp.MustCompile(`\s*(?:&|\band\b|\bvs\b\.?|\bversus\b|\bx\b|\bfeat\b\.?|\bft\b\.?|\bfeaturing\b|\bwith\b|,)\s*`)
	theRegex             = regexp.MustCompile(`\bthe\b`)
)

// SplitArtists breaks a credit line into sorted, normalized artist names.
func SplitArtists(artist string) []string {
	if strings.TrimSpace(artist) == "" {
		return nil
	}

	lowered := strings.ToLower(similarity.FoldDiacritics(artist))
	lowered = artistBracketRegex.ReplaceAllString(lowered, " ")

	var names []string
	for _, part := range artistSeparatorRegex.Split(lowered, -1) {
		name := similarity.Normalize(theRegex.ReplaceAllString(part, " "))
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// NormalizeArtist makes multi-artist credits order independent:
// "Artist A & Artist B" and "Artist B and Artist A" normalize identically.
func NormalizeArtist(artist string) string {
	return strings.Join(SplitArtists(artist), " ")
}

// ArtistSimilarity scores two credit lines, counting featured artists pulled
// from each side's title as part of that side's artist set.
func ArtistSimilarity(artistA, artistB string, titleA, titleB TitleAnalysis) float64 {
	normA, normB := NormalizeArtist(artistA), NormalizeArtist(artistB)
	if normA == "" || normB == "" {
		return 0
	}
	if normA == normB {
		return 1.0
	}

	setA := artistSet(artistA, titleA.FeaturedArtists)
	setB := artistSet(artistB, titleB.FeaturedArtists)
	for name := range setA {
		if setB[name] {
			return 0.9
		}
	}

	return similarity.DiceCoefficient(normA, normB)
}

func artistSet(artist string, featured []string) map[string]bool {
	set := make(map[string]bool)
	for _, name := range SplitArtists(artist) {
		set[name] = true
	}
	for _, feat := range featured {
		for _, name := range SplitArtists(feat) {
			set[name] = true
		}
	}
	return set
}
