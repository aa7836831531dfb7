package schemadoc

import (
	"fmt"
	"net/url"
	"os"

	"github.com/sirupsen/logrus"
)

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Fetcher abstracts the out-of-scope resource-fetching collaborator (§1:
// "HTTP/file I/O for fetching schemas" is an external concern). Storage
// calls it synchronously during its load closure.
type Fetcher interface {
	Fetch(u *url.URL) (data []byte, contentType string, err error)
}

// FileFetcher is the only Fetcher this repo implements directly: local
// file:// URLs. http(s):// fetching remains an external collaborator per
// §6 ("optional feature").
type FileFetcher struct{}

// Fetch implements Fetcher for file:// URLs by reading the path verbatim;
// Storage.load calls LoadFile directly for file:// roots, so this exists to
// let FileFetcher double as a general-purpose Fetcher for callers that want
// one regardless of scheme mix.
func (FileFetcher) Fetch(u *url.URL) ([]byte, string, error) {
	data, err := readFile(u.Path)
	if err != nil {
		return nil, "", err
	}
	return data, "", nil
}

// Storage is C3: it loads and caches every document reachable from a set of
// root URLs by following $ref closures, then rewrites every $ref to its
// absolute form so references become self-describing.
type Storage struct {
	docs    map[string]*Document // keyed by base URL (fragment stripped)
	fetcher Fetcher
	log     logrus.FieldLogger
}

// NewStorage returns an empty Storage backed by fetcher for any non-local
// root. A nil fetcher is valid as long as every root is a file:// URL.
func NewStorage(fetcher Fetcher, log logrus.FieldLogger) *Storage {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Storage{docs: map[string]*Document{}, fetcher: fetcher, log: log}
}

// Get returns the document cached under the given base URL (fragment
// ignored).
func (s *Storage) Get(u *url.URL) (*Document, bool) {
	cleared := *u
	cleared.Fragment = ""
	d, ok := s.docs[cleared.String()]
	return d, ok
}

// Documents returns every cached document, for passes (like absolutize) that
// need to walk the whole closure.
func (s *Storage) Documents() []*Document {
	out := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	return out
}

// LoadRoots performs the two-phase C3 algorithm: load each root, walk its
// tree for every $ref, load any not-yet-seen base URL, repeat until the
// queue is empty; then rewrite every $ref everywhere to its absolute form.
func (s *Storage) LoadRoots(roots []*url.URL) error {
	queue := append([]*url.URL(nil), roots...)
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		cleared := *u
		cleared.Fragment = ""
		key := cleared.String()
		if _, seen := s.docs[key]; seen {
			continue
		}

		doc, err := s.load(&cleared)
		if err != nil {
			return err
		}
		s.docs[key] = doc

		refs, err := collectRefs(&cleared, doc.Body)
		if err != nil {
			return err
		}
		for _, r := range refs {
			rc := *r
			rc.Fragment = ""
			if _, seen := s.docs[rc.String()]; !seen {
				queue = append(queue, &rc)
			}
		}
	}

	return s.absolutizeAll()
}

func (s *Storage) load(u *url.URL) (*Document, error) {
	if u.Scheme == "file" || u.Scheme == "" {
		return LoadFile(u, s.log)
	}
	if s.fetcher == nil {
		return nil, fmt.Errorf("schemadoc: no fetcher configured for scheme %q", u.Scheme)
	}
	data, ct, err := s.fetcher.Fetch(u)
	if err != nil {
		return nil, err
	}
	return LoadBytes(u, data, ct)
}

// collectRefs walks body and returns the absolute target URL (fragment
// stripped by the caller) of every $ref found, resolved against base.
func collectRefs(base *url.URL, v interface{}) ([]*url.URL, error) {
	var out []*url.URL
	var walk func(v interface{}) error
	walk = func(v interface{}) error {
		switch t := v.(type) {
		case *OrderedMap:
			if ref, ok := t.Get("$ref"); ok {
				if s, ok := ref.(string); ok {
					u, err := RefToURL(base, s)
					if err != nil {
						return err
					}
					out = append(out, u)
				}
			}
			for _, k := range t.Keys() {
				val, _ := t.Get(k)
				if err := walk(val); err != nil {
					return err
				}
			}
		case []interface{}:
			for _, e := range t {
				if err := walk(e); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return out, walk(v)
}

// absolutizeAll rewrites every $ref in every cached document to its
// absolute URL form, establishing the post-construction invariant that the
// storage is a fixed point under $ref-closure.
func (s *Storage) absolutizeAll() error {
	for key, doc := range s.docs {
		u, err := url.Parse(key)
		if err != nil {
			return err
		}
		if err := walkRefs(u, doc.Body); err != nil {
			return err
		}
	}
	return nil
}
