// Package canonical extracts the canonical 11-character YouTube video id
// from any supported URL form. It is the sole deduplication key used by the
// ingestion pipeline (spec §4.1).
package canonical

import (
	"net/url"
	"regexp"
	"strings"
)

// videoIDPattern matches the 11-character YouTube video id alphabet.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// RejectReason distinguishes why an input failed canonicalization, used by
// the bulk-ingest endpoint to report per-row rejection detail even though
// the HTTP contract (§6) only requires a count.
type RejectReason string

const (
	ReasonNone           RejectReason = ""
	ReasonBadScheme      RejectReason = "reason_bad_scheme"
	ReasonInvalidHost    RejectReason = "reason_invalid_host"
	ReasonNotVideoPath   RejectReason = "reason_not_video_path"
	ReasonWrongLength    RejectReason = "reason_wrong_length"
)

var hostAllowlist = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":      true,
	"music.youtube.com":  true,
	"youtu.be":           true,
	"www.youtu.be":       true,
}

// Result is the outcome of canonicalizing a single input string.
type Result struct {
	ID     string
	Reason RejectReason
}

// OK reports whether canonicalization succeeded.
func (r Result) OK() bool { return r.Reason == ReasonNone && r.ID != "" }

// Canonicalize extracts the canonical video id from s, or returns a Result
// with a RejectReason explaining why it could not. It never panics on
// malformed input.
func Canonicalize(s string) Result {
	s = strings.TrimSpace(s)
	if s == "" {
		return Result{Reason: ReasonNotVideoPath}
	}

	// Bare 11-char id: accepted directly as a convenience for CSV/text rows
	// that are already ids (SPEC_FULL §4.1 supplement).
	if !strings.Contains(s, "://") && !strings.Contains(s, ".") && videoIDPattern.MatchString(s) {
		return Result{ID: s}
	}

	raw := s
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Result{Reason: ReasonNotVideoPath}
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return Result{Reason: ReasonBadScheme}
	}

	host := strings.ToLower(u.Hostname())
	if !hostAllowlist[host] {
		return Result{Reason: ReasonInvalidHost}
	}

	path := strings.Trim(u.Path, "/")

	var candidate string
	switch {
	case host == "youtu.be" || host == "www.youtu.be":
		candidate = path
	case strings.HasPrefix(path, "watch"):
		candidate = u.Query().Get("v")
	case strings.HasPrefix(path, "embed/"):
		candidate = strings.TrimPrefix(path, "embed/")
	case strings.HasPrefix(path, "v/"):
		candidate = strings.TrimPrefix(path, "v/")
	case strings.HasPrefix(path, "shorts/"):
		candidate = strings.TrimPrefix(path, "shorts/")
	case path == "playlist" || strings.HasPrefix(path, "channel/") ||
		path == "results" || strings.HasPrefix(path, "@") || path == "":
		return Result{Reason: ReasonNotVideoPath}
	default:
		return Result{Reason: ReasonNotVideoPath}
	}

	// Strip any trailing path segments picked up by embed/v/shorts (e.g. "/embed/ID/extra").
	if idx := strings.Index(candidate, "/"); idx >= 0 {
		candidate = candidate[:idx]
	}

	if candidate == "" {
		return Result{Reason: ReasonNotVideoPath}
	}
	if !videoIDPattern.MatchString(candidate) {
		return Result{Reason: ReasonWrongLength}
	}
	return Result{ID: candidate}
}

// IsVideoID reports whether s is a syntactically valid 11-char video id.
func IsVideoID(s string) bool {
	return videoIDPattern.MatchString(s)
}
