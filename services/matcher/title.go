package matcher

import (
	"regexp"
	"sort"
	"strings"

	"lyrics-aggregator-go/services/similarity"
)

// TitleAnalysis is a raw title split into its comparable parts.
type TitleAnalysis struct {
	BaseTitle       string   `json:"baseTitle"`
	Tags            []string `json:"tags,omitempty"`
	FeaturedArtists []string `json:"featuredArtists,omitempty"`
}

// HasTag reports whether tag was extracted from the title.
func (a TitleAnalysis) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CriticalTags returns the tags that change which recording a title denotes.
func (a TitleAnalysis) CriticalTags() []string {
	var out []string
	for _, t := range a.Tags {
		if criticalTags[t] {
			out = append(out, t)
		}
	}
	return out
}

var criticalTags = map[string]bool{
	"live":         true,
	"acoustic":     true,
	"remix":        true,
	"instrumental": true,
	"karaoke":      true,
}

var (
	// "feat." / "ft." / "featuring" anywhere, "with" only inside brackets.
	featRegex = regexp.MustCompile(`(?:\s+(?:feat\.?|ft\.?|featuring)|[(\[]\s*(?:feat\.?|ft\.?|featuring|with))\s+([^()\[\]]+)`)

	featSplitRegex = regexp.MustCompile(`\s*[&,]\s*`)

	tagPatterns = []*regexp.Regexp{
		tagPattern(`remix|mix|rmx`),
		tagPattern(`live|concert`),
		tagPattern(`acoustic|unplugged`),
		tagPattern(`instrumental|karaoke`),
		tagPattern(`radio\s?edit|single\s?edit`),
		tagPattern(`remaster(?:ed)?|rerecorded?`),
		tagPattern(`explicit|clean|censored`),
		tagPattern(`demo|rough\s?mix|rough`),
		tagPattern(`extended|ext|full`),
		tagPattern(`deluxe|anniversary|special`),
		tagPattern(`mono|stereo`),
		tagPattern(`edit|version|ver\.?`),
	}

	bracketRegexes = []*regexp.Regexp{
		regexp.MustCompile(`\[[^\]]*\]`),
		regexp.MustCompile(`\([^)]*\)`),
		regexp.MustCompile(`\{[^}]*\}`),
		regexp.MustCompile(`\s-\s.*$`),
	}

	leadingArticleRegex  = regexp.MustCompile(`^(?:the|a|an)\s+`)
	trailingArticleRegex = regexp.MustCompile(`\s+(?:the|a|an)$`)
	spaceRegex           = regexp.MustCompile(`\s+`)
)

// tagPattern matches a version descriptor right after a hyphen, an opening bracket or " - ".
func tagPattern(vocabulary string) *regexp.Regexp {
	return regexp.MustCompile(`(?:[-(\[]|\s-\s)(` + vocabulary + `)(?:\W|$)`)
}

// AnalyzeTitle extracts featured artists and version tags from a raw title and
// reduces it to a normalized base title.
func AnalyzeTitle(title string) TitleAnalysis {
	analysis := TitleAnalysis{}
	if strings.TrimSpace(title) == "" {
		return analysis
	}

	clean := strings.ToLower(similarity.FoldDiacritics(title))

	for _, m := range featRegex.FindAllStringSubmatch(clean, -1) {
		for _, name := range featSplitRegex.Split(m[1], -1) {
			if name = strings.TrimSpace(name); name != "" {
				analysis.FeaturedArtists = append(analysis.FeaturedArtists, name)
			}
		}
	}
	clean = featRegex.ReplaceAllString(clean, " ")

	tags := make(map[string]bool)
	for _, pattern := range tagPatterns {
		for _, m := range pattern.FindAllStringSubmatch(clean, -1) {
			tags[spaceRegex.ReplaceAllString(m[1], "")] = true
		}
	}
	for tag := range tags {
		analysis.Tags = append(analysis.Tags, tag)
	}
	sort.Strings(analysis.Tags)

	stripped := clean
	for _, re := range bracketRegexes {
		stripped = re.ReplaceAllString(stripped, " ")
	}

	base := similarity.Normalize(stripped)
	base = leadingArticleRegex.ReplaceAllString(base, "")
	base = trailingArticleRegex.ReplaceAllString(base, "")

	// Titles that are nothing but brackets keep their bracketed words.
	if base == "" {
		base = similarity.Normalize(clean)
	}
	analysis.BaseTitle = base

	return analysis
}

// TitleSimilarity scores two analyzed titles on [0,1].
func TitleSimilarity(a, b TitleAnalysis) float64 {
	if a.BaseTitle == "" || b.BaseTitle == "" {
		return 0
	}

	ca, cb := a.CriticalTags(), b.CriticalTags()
	conflicting := len(ca) > 0 && len(cb) > 0 && !intersects(ca, cb)

	if a.BaseTitle == b.BaseTitle {
		if !unshared(ca, b) && !unshared(cb, a) {
			return 1.0
		}
		score := 0.85
		if conflicting {
			score -= 0.4
		}
		return score
	}

	base := similarity.DiceCoefficient(a.BaseTitle, b.BaseTitle)*0.7 +
		similarity.LevenshteinSimilarity(a.BaseTitle, b.BaseTitle)*0.3

	penalty := 0.0
	if len(ca) > 0 && len(cb) > 0 {
		if conflicting {
			penalty = 0.4
		}
	} else if len(ca) > 0 || len(cb) > 0 {
		penalty = 0.15
	}

	return clamp(base - penalty)
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// unshared reports whether any of tags is missing from other.
func unshared(tags []string, other TitleAnalysis) bool {
	for _, t := range tags {
		if !other.HasTag(t) {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
