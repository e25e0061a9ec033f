package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"lyrics-aggregator-go/services/lyrics"
	"lyrics-aggregator-go/services/lyrics/ttml"
)

// Output formats for documents
const (
	OutputJSON = "json"
	OutputV1   = "v1"
	OutputTTML = "ttml"
)

// Response writes command results to stdout in one consistent shape.
type Response struct {
	w      io.Writer
	indent bool
}

// Respond creates a response helper for w
func Respond(w io.Writer) *Response {
	return &Response{w: w, indent: true}
}

// Compact turns off JSON indentation
func (r *Response) Compact() *Response {
	r.indent = false
	return r
}

// JSON encodes data as JSON
func (r *Response) JSON(data interface{}) error {
	enc := json.NewEncoder(r.w)
	enc.SetEscapeHTML(false)
	if r.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}

// Text writes s followed by a newline
func (r *Response) Text(s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(r.w, s)
	return err
}

// Document writes doc in the requested output format
func (r *Response) Document(doc *lyrics.Document, format string) error {
	if doc.Metadata.LeadingSilence == "" {
		doc.Metadata.LeadingSilence = conf.Configuration.DefaultLeadingSilence
	}

	switch format {
	case OutputJSON, "v2", "":
		return r.JSON(doc)
	case OutputV1:
		flat, err := lyrics.Flatten(doc)
		if err != nil {
			return err
		}
		return r.JSON(flat)
	case OutputTTML:
		out, err := ttml.Write(doc)
		if err != nil {
			return err
		}
		return r.Text(out)
	default:
		return fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, OutputJSON, OutputV1, OutputTTML)
	}
}
