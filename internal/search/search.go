// Package search ranks entity names against a free-form query.
//
// Matching is diacritics-insensitive so that "franta" finds "FRANȚA". Scores
// are tiered by match quality (exact, prefix, word start, substring) with a
// length-ratio component inside each tier, so a query that covers more of a
// name outranks one that covers less without ever crossing into a higher tier.
package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases s and strips diacritical marks.
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Score rates how well query matches name, both already normalized. Returns 0
// when name does not contain query at all.
func Score(query, name string) float64 {
	if query == name {
		return 100
	}
	if !strings.Contains(name, query) {
		return 0
	}

	ratio := float64(len(query)) / float64(len(name))
	if strings.HasPrefix(name, query) {
		return 75 + ratio*20
	}
	if regexp.MustCompile(`\b` + regexp.QuoteMeta(query) + `\b`).MatchString(name) {
		return 60 + ratio*15
	}
	return 30 + ratio*25
}

// Search returns up to limit entity names ranked by match quality against
// query. Ties keep input order. An empty query returns the first limit names
// unranked.
func Search(query string, entities []string, limit int) []string {
	if limit > len(entities) {
		limit = len(entities)
	}
	if limit < 0 {
		limit = 0
	}

	q := Normalize(strings.TrimSpace(query))
	if q == "" {
		return append([]string(nil), entities[:limit]...)
	}

	type ranked struct {
		name  string
		score float64
	}
	matches := make([]ranked, 0, len(entities))
	for _, name := range entities {
		if s := Score(q, Normalize(name)); s > 0 {
			matches = append(matches, ranked{name: name, score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if limit > len(matches) {
		limit = len(matches)
	}
	results := make([]string, limit)
	for i := 0; i < limit; i++ {
		results[i] = matches[i].name
	}
	return results
}
