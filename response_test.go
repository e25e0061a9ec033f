package main

import (
	"bytes"
	"strings"
	"testing"

	"lyrics-aggregator-go/services/lyrics"
)

func sampleDocument() *lyrics.Document {
	return &lyrics.Document{
		Type:     lyrics.TypeLine,
		Metadata: lyrics.Metadata{Source: "LRCLIB"},
		Lyrics: []lyrics.LyricUnit{
			{Time: 1000, Duration: 2000, Text: "Tom & Jerry <3"},
		},
	}
}

func TestResponse_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Respond(&buf).JSON(map[string]string{"text": "<b>&</b>"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"text": "<b>&</b>"`) {
		t.Errorf("Expected indented, unescaped JSON, got %s", out)
	}
}

func TestResponse_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := Respond(&buf).Compact().JSON(map[string]int{"a": 1}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.String() != "{\"a\":1}\n" {
		t.Errorf("Expected compact JSON, got %q", buf.String())
	}
}

func TestResponse_Text(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Adds newline", "hello", "hello\n"},
		{"Keeps existing newline", "hello\n", "hello\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Respond(&buf).Text(tt.input); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if buf.String() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, buf.String())
			}
		})
	}
}

func TestResponse_Document(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"Default is JSON", "", `"type": "Line"`},
		{"JSON", OutputJSON, `"lyrics"`},
		{"v2 alias", "v2", `"type": "Line"`},
		{"v1", OutputV1, `"text": "Tom & Jerry <3"`},
		{"TTML escapes text", OutputTTML, "Tom &amp; Jerry &lt;3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Respond(&buf).Document(sampleDocument(), tt.format); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Expected output containing %q, got %s", tt.want, buf.String())
			}
		})
	}
}

func TestResponse_DocumentLeadingSilence(t *testing.T) {
	doc := sampleDocument()
	var buf bytes.Buffer
	if err := Respond(&buf).Document(doc, OutputJSON); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if doc.Metadata.LeadingSilence != conf.Configuration.DefaultLeadingSilence {
		t.Errorf("Expected leading silence %q, got %q", conf.Configuration.DefaultLeadingSilence, doc.Metadata.LeadingSilence)
	}

	doc.Metadata.LeadingSilence = "0.500"
	if err := Respond(&buf).Document(doc, OutputJSON); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if doc.Metadata.LeadingSilence != "0.500" {
		t.Errorf("Expected existing leading silence kept, got %q", doc.Metadata.LeadingSilence)
	}
}

func TestResponse_DocumentUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Respond(&buf).Document(sampleDocument(), "srt"); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}
