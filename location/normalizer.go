// Package location expands curated neighbourhood names into the spellings
// listings actually carry (Thai/English variants, district names, station
// aliases) so area matching can fall back to substring search.
package location

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type Normalizer struct {
	groups  []Group
	index   map[string]int
	markers []string
}

// NewNormalizer indexes every spelling of every group, so lookups work from
// any member of a group and not only from its canonical name.
func NewNormalizer(groups []Group, markers []string) *Normalizer {
	n := &Normalizer{
		groups: groups,
		index:  make(map[string]int, len(groups)*6),
	}
	for i, g := range groups {
		n.index[Key(g.Canonical)] = i
		for _, s := range g.Synonyms {
			if _, taken := n.index[Key(s)]; !taken {
				n.index[Key(s)] = i
			}
		}
	}
	for _, m := range markers {
		n.markers = append(n.markers, Key(m))
	}
	return n
}

var defaultNormalizer = NewNormalizer(PopularAreas, MetroMarkers)

// Default returns the normalizer built from the curated table.
func Default() *Normalizer { return defaultNormalizer }

// Key folds case, composes Thai combining marks and collapses whitespace so
// that equal spellings compare equal.
func Key(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Expand returns term followed by every spelling of its group. Unmapped terms
// come back as the singleton {term}.
func (n *Normalizer) Expand(term string) []string {
	out := []string{term}
	i, ok := n.index[Key(term)]
	if !ok {
		return out
	}
	seen := map[string]struct{}{Key(term): {}}
	add := func(s string) {
		k := Key(s)
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	add(n.groups[i].Canonical)
	for _, s := range n.groups[i].Synonyms {
		add(s)
	}
	return out
}

// Canonical maps any known spelling to its curated name.
func (n *Normalizer) Canonical(term string) (string, bool) {
	i, ok := n.index[Key(term)]
	if !ok {
		return "", false
	}
	return n.groups[i].Canonical, true
}

// Areas lists the curated names in table order.
func (n *Normalizer) Areas() []string {
	out := make([]string, 0, len(n.groups))
	for _, g := range n.groups {
		out = append(out, g.Canonical)
	}
	return out
}

// Same reports whether a and b are equal after normalisation.
func Same(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return Key(a) == Key(b)
}

// Mentions reports whether any expansion of term occurs in the concatenated
// fields. Thai spellings match as plain substrings; a Latin or numeric edge
// of a spelling must sit on a word boundary, so "Ari" is found in "BTS Ari"
// but not in "variety".
func (n *Normalizer) Mentions(term string, fields ...string) bool {
	if strings.TrimSpace(term) == "" {
		return false
	}
	haystack := Key(strings.Join(fields, " "))
	if haystack == "" {
		return false
	}
	for _, s := range n.Expand(term) {
		if k := Key(s); k != "" && containsTerm(haystack, k) {
			return true
		}
	}
	return false
}

func containsTerm(haystack, k string) bool {
	first, _ := utf8.DecodeRuneInString(k)
	last, _ := utf8.DecodeLastRuneInString(k)
	for off := 0; off < len(haystack); {
		i := strings.Index(haystack[off:], k)
		if i < 0 {
			return false
		}
		start, end := off+i, off+i+len(k)
		before, _ := utf8.DecodeLastRuneInString(haystack[:start])
		after, _ := utf8.DecodeRuneInString(haystack[end:])
		if !(isWordRune(first) && isWordRune(before)) && !(isWordRune(last) && isWordRune(after)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(haystack[start:])
		off = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.In(r, unicode.Latin) || unicode.IsDigit(r)
}

// InMetro reports whether province contains one of the metro markers.
func (n *Normalizer) InMetro(province string) bool {
	p := Key(province)
	if p == "" {
		return false
	}
	for _, m := range n.markers {
		if strings.Contains(p, m) {
			return true
		}
	}
	return false
}
