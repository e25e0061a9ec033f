package lyrics

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// envelope checks which top-level fields a JSON payload carries before it is decoded.
type envelope struct {
	Type     string          `json:"type"`
	Metadata json.RawMessage `json:"metadata"`
	Lyrics   json.RawMessage `json:"lyrics"`
}

type segmentShape struct {
	IsLineEnding *int           `json:"isLineEnding"`
	Syllabus     *[]interface{} `json:"syllabus"`
}

func readEnvelope(format string, data []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, NewConversionError(format, "invalid JSON", err)
	}
	if env.Type == "" {
		return nil, NewConversionError(format, "missing type", nil)
	}
	if _, ok := GroupedType(env.Type); !ok {
		return nil, NewConversionError(format, "unknown document type", nil)
	}
	if isAbsent(env.Metadata) {
		return nil, NewConversionError(format, "missing metadata", nil)
	}
	if isAbsent(env.Lyrics) {
		return nil, NewConversionError(format, "missing lyrics", nil)
	}
	return &env, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Decode parses a grouped (v2) JSON document. A payload without type,
// metadata or lyrics is a ConversionError.
func Decode(data []byte) (*Document, error) {
	if _, err := readEnvelope("v2", data); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, NewConversionError("v2", "invalid document", err)
	}
	doc.Type, _ = GroupedType(doc.Type)
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DecodeFlat parses a flat (v1) JSON document.
func DecodeFlat(data []byte) (*FlatDocument, error) {
	if _, err := readEnvelope("v1", data); err != nil {
		return nil, err
	}

	var flat FlatDocument
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, NewConversionError("v1", "invalid document", err)
	}
	return &flat, nil
}

// IsFlat reports whether a JSON payload is in the flat encoding: either it
// uses the flat "syllable" type name or its lyrics carry isLineEnding markers
// instead of a syllabus.
func IsFlat(data []byte) bool {
	var head struct {
		Type   string         `json:"type"`
		Lyrics []segmentShape `json:"lyrics"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return false
	}
	if head.Type == FlatTypeSyllable {
		return true
	}
	for _, seg := range head.Lyrics {
		if seg.Syllabus != nil {
			return false
		}
		if seg.IsLineEnding != nil {
			return true
		}
	}
	return false
}

// DecodeAny parses either encoding and returns the grouped form.
func DecodeAny(data []byte) (*Document, error) {
	if !IsFlat(data) {
		return Decode(data)
	}
	flat, err := DecodeFlat(data)
	if err != nil {
		return nil, err
	}
	return Group(flat)
}

// Validate checks the structural requirements of a grouped document.
func Validate(doc *Document) error {
	if doc == nil {
		return NewConversionError("v2", "document is nil", nil)
	}
	if _, ok := GroupedType(doc.Type); !ok {
		return NewConversionError("v2", "unknown document type "+strconv.Quote(doc.Type), nil)
	}
	if doc.Lyrics == nil {
		return NewConversionError("v2", "missing lyrics", nil)
	}
	for i, u := range doc.Lyrics {
		if u.Duration < 0 {
			return NewConversionError("v2", "negative duration at line "+strconv.Itoa(i), nil)
		}
		for _, s := range u.Syllabus {
			if s.Duration < 0 {
				return NewConversionError("v2", "negative syllable duration at line "+strconv.Itoa(i), nil)
			}
		}
	}
	return nil
}
