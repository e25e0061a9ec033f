package lrc

import (
	"regexp"
	"strings"
)

// Banned pattern for credit lines (e.g., "[00:05.00]Composed by：xxx")
var bannedRegex = regexp.MustCompile(`^\[\d{1,3}:\d{2}[\.:]\d{1,3}\].+：.+`)

const (
	// PureMusicText is the Chinese placeholder some catalogs use for instrumental tracks
	PureMusicText = "纯音乐，请欣赏"

	// InstrumentalText is the replacement text for pure music
	InstrumentalText = "[Instrumental Only]"

	// MaxHeadTailLines is the number of lines to scan from head/tail for banned patterns
	MaxHeadTailLines = 30
)

// NormalizeLyrics removes credit lines from the head and tail of LRC content
// and replaces the pure-music placeholder with a single instrumental line.
// Only timestamped lines are kept.
func NormalizeLyrics(lrcContent string) string {
	lrcContent = strings.ReplaceAll(lrcContent, "&apos;", "'")

	if strings.Contains(lrcContent, PureMusicText) {
		return "[00:00.00]" + InstrumentalText
	}

	var acceptedLines []string
	for _, rawLine := range strings.Split(lrcContent, "\n") {
		rawLine = strings.TrimSpace(rawLine)
		if rawLine == "" {
			continue
		}
		if lrcTimeRegex.MatchString(rawLine) {
			acceptedLines = append(acceptedLines, rawLine)
		}
	}

	if len(acceptedLines) == 0 {
		return lrcContent
	}

	// Head: drop everything up to and including the last banned line in the
	// first MaxHeadTailLines lines (title lines usually precede credits).
	headCutLine := 0
	headLimit := min(MaxHeadTailLines, len(acceptedLines))
	for i := headLimit - 1; i >= 0; i-- {
		if bannedRegex.MatchString(acceptedLines[i]) {
			headCutLine = i + 1
			break
		}
	}

	// Tail: drop from the first banned line found scanning back from the end.
	tailCutLine := 0
	for i := 0; i < MaxHeadTailLines && i < len(acceptedLines); i++ {
		idx := len(acceptedLines) - 1 - i
		if idx < headCutLine {
			break
		}
		if bannedRegex.MatchString(acceptedLines[idx]) {
			tailCutLine = i + 1
			break
		}
	}

	endIdx := max(len(acceptedLines)-tailCutLine, headCutLine)
	return strings.Join(acceptedLines[headCutLine:endIdx], "\n")
}

// DetectLanguage returns a language code from the [la:] tag or, failing
// that, from the scripts used in the content. It falls back to "en".
func DetectLanguage(tags map[string]string, content string) string {
	if lang, ok := tags["language"]; ok && lang != "" {
		return normalizeLanguageCode(lang)
	}

	for _, r := range content {
		switch {
		case r >= '\u3040' && r <= '\u30ff': // Hiragana, Katakana
			return "ja"
		case r >= '\uac00' && r <= '\ud7af': // Hangul
			return "ko"
		}
	}
	for _, r := range content {
		if r >= '\u4e00' && r <= '\u9fff' {
			return "zh"
		}
	}

	return "en"
}

// normalizeLanguageCode normalizes language names to ISO codes
func normalizeLanguageCode(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch lang {
	case "英语", "english", "eng":
		return "en"
	case "中文", "chinese", "chi", "普通话", "国语", "粤语":
		return "zh"
	case "日语", "japanese", "jpn":
		return "ja"
	case "韩语", "korean", "kor":
		return "ko"
	case "西班牙语", "spanish", "spa":
		return "es"
	case "法语", "french", "fra":
		return "fr"
	case "德语", "german", "ger":
		return "de"
	default:
		if len(lang) <= 3 {
			return lang
		}
		return "en"
	}
}
