// Package ident normalizes user-supplied arXiv identifiers and URLs into a
// canonical identifier usable for source downloads and metadata queries.
package ident

import (
	"net/url"
	"regexp"
	"strings"

	"arxiv2epub/internal/services"
)

// ID is a parsed arXiv identifier. Canonical retains the version suffix when
// one was supplied; SourceID strips it because the e-print endpoint serves
// the latest source for the bare identifier.
type ID struct {
	Canonical string
	Version   string
}

var (
	// New-style identifiers: YYMM.NNNNN with optional vN suffix.
	newStyleRe = regexp.MustCompile(`^(\d{4}\.\d{4,5})(v\d+)?$`)
	// Old-style identifiers: archive[.subject]/YYMMNNN with optional vN suffix.
	oldStyleRe = regexp.MustCompile(`^([a-z][a-z-]*(?:\.[A-Z]{2})?/\d{7})(v\d+)?$`)
)

var urlPrefixes = []string{"abs/", "pdf/", "e-print/", "format/", "src/"}

// Parse resolves a bare identifier or an arXiv URL (abs, pdf, e-print) into
// an ID. It fails with services.ErrInvalidIdentifier when the input matches
// neither form.
func Parse(input string) (ID, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ID{}, services.Wrap(services.ErrInvalidIdentifier, "resolve", "parse", "empty input", nil)
	}

	candidate := trimmed
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		extracted, ok := fromURL(trimmed)
		if !ok {
			return ID{}, services.Wrap(services.ErrInvalidIdentifier, "resolve", "parse url", trimmed, nil)
		}
		candidate = extracted
	}
	candidate = strings.TrimPrefix(candidate, "arXiv:")

	if m := newStyleRe.FindStringSubmatch(candidate); m != nil {
		return ID{Canonical: m[1] + m[2], Version: m[2]}, nil
	}
	if m := oldStyleRe.FindStringSubmatch(candidate); m != nil {
		return ID{Canonical: m[1] + m[2], Version: m[2]}, nil
	}
	return ID{}, services.Wrap(services.ErrInvalidIdentifier, "resolve", "parse", trimmed, nil)
}

func fromURL(raw string) (string, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(parsed.Hostname())
	if host != "arxiv.org" && host != "www.arxiv.org" && host != "export.arxiv.org" {
		return "", false
	}
	path := strings.TrimPrefix(parsed.Path, "/")
	for _, prefix := range urlPrefixes {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		id := strings.TrimPrefix(path, prefix)
		id = strings.TrimSuffix(id, "/")
		id = strings.TrimSuffix(id, ".pdf")
		return id, id != ""
	}
	return "", false
}

// SourceID returns the identifier to request source archives with. Version
// suffixes are stripped; arXiv serves the most recent source either way.
func (id ID) SourceID() string {
	return strings.TrimSuffix(id.Canonical, id.Version)
}

// FileStem returns a filesystem-safe name derived from the canonical
// identifier. Old-style identifiers contain a slash that must not leak into
// paths.
func (id ID) FileStem() string {
	return strings.ReplaceAll(id.Canonical, "/", "_")
}

func (id ID) String() string {
	return id.Canonical
}
