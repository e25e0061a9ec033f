package utils

import (
	"fmt"
	"math"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	extensionRegex  = regexp.MustCompile(`^\.[A-Za-z0-9]{1,5}$`)

	// "(215)" or "(3:35)" / "(3:35.5)" at the end of a name
	durationSuffix = regexp.MustCompile(`\s*\((\d+)(?::(\d+(?:\.\d+)?))?\)$`)
	albumSuffix    = regexp.MustCompile(`\s*\[([^\]]+)\]$`)
	artistTitle    = regexp.MustCompile(`^(.+?)\s+-\s+(.+)$`)
)

// FileInfo is the song metadata encoded in a cache file name.
type FileInfo struct {
	Title           string
	Artist          string
	Album           string
	DurationSeconds float64
}

// GenerateUniqueFileName builds "Artist - Title [Album] (seconds)" with
// characters that are unsafe in file names removed. Album and duration are
// omitted when unknown. Without a title or artist the name falls back to
// "unknown-<unix millis>".
func GenerateUniqueFileName(title, artist, album string, durationSeconds float64) string {
	title, artist, album = strings.TrimSpace(title), strings.TrimSpace(artist), strings.TrimSpace(album)
	if title == "" || artist == "" {
		return fmt.Sprintf("unknown-%d", time.Now().UnixMilli())
	}

	var sb strings.Builder
	sb.WriteString(artist)
	sb.WriteString(" - ")
	sb.WriteString(title)
	if album != "" {
		sb.WriteString(" [" + album + "]")
	}
	if durationSeconds > 0 {
		sb.WriteString(" (" + strconv.Itoa(int(math.Round(durationSeconds))) + ")")
	}

	name := unsafeFileChars.ReplaceAllString(sb.String(), "")
	name = whitespaceRun.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// ParseFileName reads song metadata back out of a cache file name. Up to two
// short extensions (".ttml", ".json.gz") are ignored. A name without a
// " - " separator is taken to be the title alone.
func ParseFileName(name string) FileInfo {
	name = stripExtensions(path.Base(name))

	var info FileInfo
	if m := durationSuffix.FindStringSubmatch(name); m != nil {
		whole, _ := strconv.Atoi(m[1])
		if m[2] != "" {
			seconds, _ := strconv.ParseFloat(m[2], 64)
			info.DurationSeconds = float64(whole)*60 + seconds
		} else {
			info.DurationSeconds = float64(whole)
		}
		name = name[:len(name)-len(m[0])]
	}

	if m := albumSuffix.FindStringSubmatch(name); m != nil {
		info.Album = strings.TrimSpace(m[1])
		name = name[:len(name)-len(m[0])]
	}

	if m := artistTitle.FindStringSubmatch(name); m != nil {
		info.Artist = strings.TrimSpace(m[1])
		info.Title = strings.TrimSpace(m[2])
	} else {
		info.Title = strings.TrimSpace(name)
	}
	return info
}

func stripExtensions(name string) string {
	for i := 0; i < 2; i++ {
		ext := path.Ext(name)
		if ext == "" || !extensionRegex.MatchString(ext) {
			break
		}
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
