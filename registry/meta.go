package registry

import (
	"strings"
)

// TemplateMeta is a .j2 template's declared metadata: what kind of IMG
// output it renders (Type is "models", "endpoints", or "tags") and what
// output filename to write.
type TemplateMeta struct {
	Type     string
	Filename string
	Extra    map[string]string
}

// ParseMeta reads a template body's first line as a
// "{# key=value, key=value #}" comment, per spec.md §6. A body whose first
// line isn't such a comment yields a zero TemplateMeta and false.
func ParseMeta(body string) (TemplateMeta, bool) {
	firstLine, _, _ := strings.Cut(body, "\n")
	firstLine = strings.TrimSpace(firstLine)

	if !strings.HasPrefix(firstLine, "{#") || !strings.HasSuffix(firstLine, "#}") {
		return TemplateMeta{}, false
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(firstLine, "{#"), "#}")
	meta := TemplateMeta{Extra: map[string]string{}}

	for _, pair := range strings.Split(inner, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "type":
			meta.Type = value
		case "filename":
			meta.Filename = value
		default:
			meta.Extra[key] = value
		}
	}

	return meta, true
}
