package ttml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTime converts a TTML clock value into milliseconds.
// Accepted forms: "12.34", "1:02.5", "1:02:30.250", and offsets like "12.5s" or "250ms".
func ParseTime(timeStr string) (int, error) {
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		return 0, fmt.Errorf("empty time value")
	}

	switch {
	case strings.HasSuffix(timeStr, "ms"):
		ms, err := strconv.ParseFloat(strings.TrimSuffix(timeStr, "ms"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time format: %s", timeStr)
		}
		return int(math.Round(ms)), nil
	case strings.HasSuffix(timeStr, "s"):
		timeStr = strings.TrimSuffix(timeStr, "s")
	}

	// Format: "0:00:12.34" or "12.34" or "12"
	parts := strings.Split(timeStr, ":")

	var hours, minutes, seconds float64
	var err error

	switch len(parts) {
	case 1:
		seconds, err = strconv.ParseFloat(parts[0], 64)
	case 2:
		if minutes, err = strconv.ParseFloat(parts[0], 64); err == nil {
			seconds, err = strconv.ParseFloat(parts[1], 64)
		}
	case 3:
		if hours, err = strconv.ParseFloat(parts[0], 64); err == nil {
			if minutes, err = strconv.ParseFloat(parts[1], 64); err == nil {
				seconds, err = strconv.ParseFloat(parts[2], 64)
			}
		}
	default:
		return 0, fmt.Errorf("invalid time format: %s", timeStr)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid time format: %s", timeStr)
	}

	totalSeconds := hours*3600 + minutes*60 + seconds
	if totalSeconds < 0 {
		return 0, fmt.Errorf("negative time: %s", timeStr)
	}
	return int(math.Round(totalSeconds * 1000)), nil
}

// FormatTime renders milliseconds in the shortest clock form:
// "S.mmm" under a minute, "MM:SS.mmm" under an hour, "HH:MM:SS.mmm" otherwise.
func FormatTime(ms int) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3600000
	minutes := (ms / 60000) % 60
	seconds := (ms / 1000) % 60
	millis := ms % 1000

	switch {
	case hours > 0:
		return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
	case minutes > 0:
		return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
	default:
		return fmt.Sprintf("%d.%03d", seconds, millis)
	}
}
