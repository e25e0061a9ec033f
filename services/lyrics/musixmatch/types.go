// Package musixmatch converts Musixmatch richsync and subtitle payloads into
// canonical documents.
package musixmatch

// Payload is the combined track and lyrics response.
type Payload struct {
	Track  *Track `json:"track"`
	Lyrics struct {
		Message struct {
			Body struct {
				Richsync *Richsync `json:"richsync"`
				Subtitle *Subtitle `json:"subtitle"`
			} `json:"body"`
		} `json:"message"`
	} `json:"lyrics"`
}

// Track holds the catalog fields the converter uses.
type Track struct {
	TrackName   string `json:"track_name"`
	ArtistName  string `json:"artist_name"`
	AlbumName   string `json:"album_name"`
	TrackLength int    `json:"track_length"` // seconds
}

// Richsync is word-timed lyrics. Body is itself a JSON array of RichsyncLine.
type Richsync struct {
	Body      string `json:"richsync_body"`
	Copyright string `json:"lyrics_copyright"`
}

// Subtitle is line-timed lyrics in LRC form.
type Subtitle struct {
	Body      string `json:"subtitle_body"`
	Copyright string `json:"lyrics_copyright"`
}

// RichsyncLine is one line of a richsync body. Times are seconds.
type RichsyncLine struct {
	Start float64        `json:"ts"`
	End   float64        `json:"te"`
	Words []RichsyncWord `json:"l"`
	Text  string         `json:"x"`
}

// RichsyncWord is a word or a separator with its offset from the line start.
type RichsyncWord struct {
	Chars  string  `json:"c"`
	Offset float64 `json:"o"`
}
