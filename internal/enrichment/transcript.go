package enrichment

import (
	"strconv"
	"strings"
)

// vttToTranscript derives a plain-text transcript from WebVTT cue text,
// per the Transcript-is-always-derived decision recorded in DESIGN.md.
// It drops the "WEBVTT" header, cue index lines, and cue timing lines,
// keeping only the spoken text, deduplicating consecutive repeats (VTT
// commonly repeats the tail of a cue as the head of the next one).
func vttToTranscript(vtt string) string {
	var words []string
	var last string

	for _, line := range strings.Split(vtt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "WEBVTT" || strings.Contains(line, "-->") {
			continue
		}
		if _, err := strconv.Atoi(line); err == nil {
			continue // bare cue index
		}
		if line == last {
			continue
		}
		last = line
		words = append(words, line)
	}

	return strings.Join(words, " ")
}
