// Package ingest turns heterogeneous bulk inputs (pasted text, CSV,
// .webloc) into deduplicated, canonicalized video id lists (spec §4.2). All
// parsers are total: malformed input yields an empty-ish result, never a
// panic or error.
package ingest

import (
	"encoding/csv"
	"encoding/xml"
	"io"
	"regexp"
	"strings"

	"github.com/0ui-labs/youtube-bookmarks/internal/canonical"
)

// Result is the outcome of parsing a bulk input: the ordered, deduplicated
// list of canonical ids plus a count of entries discarded, used by the UI
// for ingestion preview (spec §4.2).
type Result struct {
	IDs           []string
	DiscardCount  int
}

func dedupe(candidates []string) Result {
	seen := make(map[string]bool, len(candidates))
	res := Result{IDs: make([]string, 0, len(candidates))}
	for _, c := range candidates {
		r := canonical.Canonicalize(c)
		if !r.OK() {
			res.DiscardCount++
			continue
		}
		if seen[r.ID] {
			res.DiscardCount++
			continue
		}
		seen[r.ID] = true
		res.IDs = append(res.IDs, r.ID)
	}
	return res
}

// splitPattern breaks pasted text on newlines, commas, semicolons, and runs
// of whitespace, per spec §4.2.
var splitPattern = regexp.MustCompile(`[\n\r,;]+|\s+`)

// ParseText splits raw pasted text into a deduplicated, canonicalized id list.
func ParseText(raw string) Result {
	fields := splitPattern.Split(raw, -1)
	candidates := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			candidates = append(candidates, f)
		}
	}
	return dedupe(candidates)
}

// weblocDoc models the subset of Apple's plist XML format used by .webloc
// bookmark files: a dict whose "URL" key maps to a string value.
type weblocDoc struct {
	XMLName xml.Name      `xml:"plist"`
	Dict    weblocDictXML `xml:"dict"`
}

type weblocDictXML struct {
	Keys    []string `xml:"key"`
	Strings []string `xml:"string"`
}

// ParseWebloc extracts the string child of the first <key>URL</key> element
// and canonicalizes it. Returns an empty Result (DiscardCount=1) if the file
// cannot be parsed or contains no URL entry.
func ParseWebloc(r io.Reader) Result {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{DiscardCount: 1}
	}

	var doc weblocDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Result{DiscardCount: 1}
	}

	for i, k := range doc.Dict.Keys {
		if k != "URL" {
			continue
		}
		if i >= len(doc.Dict.Strings) {
			return Result{DiscardCount: 1}
		}
		return dedupe([]string{doc.Dict.Strings[i]})
	}
	return Result{DiscardCount: 1}
}

// ParseCSV finds a column whose header equals "url" case-insensitively and
// canonicalizes every row's value in that column, respecting RFC 4180
// double-quote escaping via the standard library csv reader.
func ParseCSV(r io.Reader) Result {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows rather than erroring the whole file
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return Result{DiscardCount: 0}
	}

	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "url") {
			col = i
			break
		}
	}
	if col == -1 {
		return Result{DiscardCount: 0}
	}

	var candidates []string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // malformed row: skip, never abort the whole file
		}
		if col >= len(record) {
			continue
		}
		candidates = append(candidates, record[col])
	}
	return dedupe(candidates)
}
