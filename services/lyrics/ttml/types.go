// Package ttml converts between the TTML synced-lyrics dialect and the
// canonical lyrics document.
package ttml

import "encoding/xml"

// XML namespaces used by the dialect.
const (
	NamespaceTT       = "http://www.w3.org/ns/ttml"
	NamespaceITunes   = "http://music.apple.com/lyric-ttml-internal"
	NamespaceMetadata = "http://www.w3.org/ns/ttml#metadata"
	NamespaceStyling  = "http://www.w3.org/ns/ttml#styling"
)

// Attribute values
const (
	RoleBackground        = "x-bg"
	DefaultLeadingSilence = "0.020"
	DefaultSource         = "Apple Music"
)

// Fields match on local names so documents with missing or unusual namespace
// declarations still decode.

type document struct {
	XMLName xml.Name `xml:"tt"`
	Timing  string   `xml:"timing,attr"`
	Lang    string   `xml:"lang,attr"`
	Head    head     `xml:"head"`
	Body    body     `xml:"body"`
}

type head struct {
	Metadata []metadata `xml:"metadata"`
}

// metadata covers both <metadata> and <itunes:metadata>, and the nested
// <iTunesMetadata> block some documents use.
type metadata struct {
	LeadingSilence   string      `xml:"leadingSilence,attr"`
	Title            string      `xml:"title"`
	Agents           []agent     `xml:"agent"`
	Songwriters      []string    `xml:"songwriters>songwriter"`
	Translations     []sideTable `xml:"translations>translation"`
	Transliterations []sideTable `xml:"transliterations>transliteration"`
	ITunes           []metadata  `xml:"iTunesMetadata"`
}

type agent struct {
	ID   string `xml:"id,attr"`
	Type string `xml:"type,attr"`
	Name string `xml:"name"`
}

type sideTable struct {
	Lang  string     `xml:"lang,attr"`
	Texts []sideText `xml:"text"`
}

type sideText struct {
	For   string `xml:"for,attr"`
	Inner string `xml:",innerxml"`
}

type body struct {
	Dur  string `xml:"dur,attr"`
	Divs []div  `xml:"div"`
}

type div struct {
	Begin      string      `xml:"begin,attr"`
	End        string      `xml:"end,attr"`
	SongPart   string      `xml:"song-part,attr"`
	Paragraphs []paragraph `xml:"p"`
}

type paragraph struct {
	Begin string `xml:"begin,attr"`
	End   string `xml:"end,attr"`
	Key   string `xml:"key,attr"`
	Agent string `xml:"agent,attr"`
	Inner string `xml:",innerxml"`
}
