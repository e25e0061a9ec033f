package providers

import (
	"lyrics-aggregator-go/services/lyrics"
	"lyrics-aggregator-go/services/lyrics/lrc"
	"lyrics-aggregator-go/services/lyrics/musixmatch"
	"lyrics-aggregator-go/services/lyrics/spotify"
	"lyrics-aggregator-go/services/lyrics/ttml"
	"lyrics-aggregator-go/utils"
)

// Convert normalizes a payload into a canonical document. Gzip bodies are
// decompressed first. For Spotify payloads an empty p.SyncType is filled in
// from the payload itself.
func Convert(p *Payload) (*lyrics.Document, error) {
	if p == nil {
		return nil, lyrics.NewConversionError("payload", "payload is nil", nil)
	}

	body, err := utils.MaybeDecompress(p.Body)
	if err != nil {
		return nil, lyrics.NewConversionError(p.Format, "failed to decompress payload", err)
	}

	switch p.Format {
	case FormatTTML:
		return ttml.Parse(body)
	case FormatJSON:
		return lyrics.DecodeAny(body)
	case FormatV1:
		flat, err := lyrics.DecodeFlat(body)
		if err != nil {
			return nil, err
		}
		return lyrics.Group(flat)
	case FormatSpotify:
		data, err := spotify.Decode(body)
		if err != nil {
			return nil, err
		}
		if p.SyncType == "" {
			p.SyncType = data.SyncType
		}
		return spotify.Convert(data), nil
	case FormatMusixmatch:
		return musixmatch.Parse(body, musixmatch.Options{})
	case FormatMusixmatchWord:
		return musixmatch.Parse(body, musixmatch.Options{WordLevel: true})
	case FormatLRC:
		return lrc.Parse(string(body), lrc.Options{TrackDurationMs: p.TrackDurationMs})
	case FormatLRCLIB:
		return lrc.ParseLRCLIB(body)
	default:
		return nil, lyrics.NewConversionError(p.Format, "unsupported payload format", nil)
	}
}
