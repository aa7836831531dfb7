package schemadoc

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// RefToURL implements the §6 URL-composition rule: an absolute ref (one
// containing "://" at a nonzero offset, or starting with "//") is parsed on
// its own; otherwise it is resolved against base.
func RefToURL(base *url.URL, ref string) (*url.URL, error) {
	if isAbsoluteRef(ref) {
		return url.Parse(ref)
	}
	if base == nil {
		return url.Parse(ref)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(u), nil
}

func isAbsoluteRef(ref string) bool {
	if strings.HasPrefix(ref, "//") {
		return true
	}
	if i := strings.Index(ref, "://"); i > 0 {
		return true
	}
	return false
}

// RefToFileURL behaves like RefToURL but additionally clears any fragment,
// used when the caller wants the base document URL a $ref points into
// rather than the exact pointer location.
func RefToFileURL(base *url.URL, ref string) (*url.URL, error) {
	u, err := RefToURL(base, ref)
	if err != nil {
		return nil, err
	}
	cleared := *u
	cleared.Fragment = ""
	return &cleared, nil
}

// PathToURL canonicalizes a bare local path (no scheme) into a file:// URL
// relative to the current working directory, so CLI callers can pass plain
// filesystem paths. Paths that already parse as an absolute URL with a
// scheme are returned unchanged. Recovered from original_source/schema.rs
// (path_to_url); see SPEC_FULL.md §4.2.
func PathToURL(path string) (*url.URL, error) {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return u, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	return &url.URL{Scheme: "file", Path: abs}, nil
}

// cwdURL returns a base document URL rooted at the process working
// directory.
func cwdURL() (*url.URL, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return PathToURL(wd)
}
