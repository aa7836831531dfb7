// Package name implements C10: deriving operationIds from endpoint paths and
// JSON-Schema/OpenAPI titles from document scope.
package name

import (
	"regexp"
	"strings"
)

// replacement is one ordered (pattern, template) rule, applied via
// regexp.ReplaceAllString semantics. Source table:
// https://gist.github.com/tbrianjones/ba0460cc1d55f357e00b (via the Rust
// original's word.rs), ported from Rust's lazy_static Regex array to a plain
// Go slice evaluated in order.
type replacement struct {
	pattern *regexp.Regexp
	repl    string
}

func rule(pattern, repl string) replacement {
	return replacement{pattern: regexp.MustCompile(pattern), repl: repl}
}

var singularRules = []replacement{
	rule(`(quiz)zes$`, "$1"),
	rule(`(matr)ices$`, "${1}ix"),
	rule(`(vert|ind)ices$`, "${1}ex"),
	rule(`^(ox)en$`, "$1"),
	rule(`(alias)es$`, "$1"),
	rule(`(octop|vir)i$`, "${1}us"),
	rule(`(cris|ax|test)es$`, "${1}is"),
	rule(`(shoe)s$`, "$1"),
	rule(`(o)es$`, "$1"),
	rule(`(bus)es$`, "$1"),
	rule(`([ml])ice$`, "${1}ouse"),
	rule(`(x|ch|ss|sh)es$`, "$1"),
	rule(`(m)ovies$`, "${1}ovie"),
	rule(`(s)eries$`, "${1}eries"),
	rule(`([^aeiouy]|qu)ies$`, "${1}y"),
	rule(`([lr])ves$`, "${1}f"),
	rule(`(tive)s$`, "$1"),
	rule(`(hive)s$`, "$1"),
	rule(`(li|wi|kni)ves$`, "${1}fe"),
	rule(`(shea|loa|lea|thie)ves$`, "${1}f"),
	rule(`(^analy)ses$`, "${1}sis"),
	rule(`((a)naly|(b)a|(d)iagno|(p)arenthe|(p)rogno|(s)ynop|(t)he)ses$`, "${1}${2}sis"),
	rule(`([ti])a$`, "${1}um"),
	rule(`(n)ews$`, "${1}ews"),
	rule(`(h|bl)ouses$`, "${1}ouse"),
	rule(`(corpse)s$`, "$1"),
	rule(`(us)es$`, "$1"),
	rule(`s$`, ""),
}

var pluralRules = []replacement{
	rule(`(quiz)$`, "${1}zes"),
	rule(`^(ox)$`, "${1}en"),
	rule(`([ml])ouse$`, "${1}ice"),
	rule(`(matr|vert|ind)ix|ex$`, "${1}ices"),
	rule(`(x|ch|ss|sh)$`, "${1}es"),
	rule(`([^aeiouy]|qu)y$`, "${1}ies"),
	rule(`(hive)$`, "${1}s"),
	rule(`(?:([^f])fe|([lr])f)$`, "${1}${2}ves"),
	rule(`(shea|lea|loa|thie)f$`, "${1}ves"),
	rule(`sis$`, "ses"),
	rule(`([ti])um$`, "${1}a"),
	rule(`(tomat|potat|ech|her|vet)o$`, "${1}oes"),
	rule(`(bu)s$`, "${1}ses"),
	rule(`(alias)$`, "${1}es"),
	rule(`(octop)us$`, "${1}i"),
	rule(`(ax|test)is$`, "${1}es"),
	rule(`(us)$`, "${1}es"),
	rule(`s$`, "s"),
	rule(`$`, "s"),
}

// Singularize returns word's singular form, using the first matching rule.
func Singularize(word string) string {
	for _, r := range singularRules {
		if r.pattern.MatchString(word) {
			return r.pattern.ReplaceAllString(word, r.repl)
		}
	}
	return word
}

// Pluralize returns word's plural form, using the first matching rule.
func Pluralize(word string) string {
	for _, r := range pluralRules {
		if r.pattern.MatchString(word) {
			return r.pattern.ReplaceAllString(word, r.repl)
		}
	}
	return word
}

// IsPlural reports whether word is already its own plural form.
func IsPlural(word string) bool {
	return Pluralize(word) == word
}

var nonWord = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Normalize lowercases word and strips path-segment punctuation (hyphens,
// underscores) so "user-groups" and "user_groups" both singularize/pluralize
// like "usergroups".
func Normalize(word string) string {
	return nonWord.ReplaceAllString(strings.ToLower(word), "")
}
