package retrieval

import (
	"regexp"
	"strings"
)

const (
	minTermLength = 3
	maxTerms      = 12
)

// stopWords are query tokens that carry no retrieval signal on their own.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"has": true, "him": true, "his": true, "how": true, "its": true,
	"who": true, "what": true, "when": true, "where": true, "why": true,
	"about": true, "with": true, "from": true, "this": true, "that": true,
	"these": true, "those": true, "does": true, "did": true, "have": true,
	"will": true, "would": true, "could": true, "should": true,
	"tell": true, "know": true, "mean": true, "said": true, "says": true,
}

var quotedPhraseRe = regexp.MustCompile(`"([^"]+)"`)

// ExtractTerms lowercases the query, splits it on whitespace and keeps the
// tokens long enough and rare enough to discriminate between notes. Order of
// first occurrence is preserved; duplicates are dropped; the result is
// capped so scoring stays bounded no matter how long the query is.
func ExtractTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		tok = strings.Trim(tok, `.,!?;:"'()[]{}`)
		if len([]rune(tok)) < minTermLength || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
		if len(terms) == maxTerms {
			break
		}
	}
	return terms
}

// ExtractEntities pulls higher-confidence markers out of the original-case
// query: quoted phrases and capitalized tokens. These are matched
// case-sensitively by the scorer, so "Seth" lands harder than "seth".
func ExtractEntities(query string) []string {
	seen := make(map[string]bool)
	var entities []string

	add := func(e string) {
		e = strings.TrimSpace(e)
		if len([]rune(e)) < 2 || seen[e] {
			return
		}
		seen[e] = true
		entities = append(entities, e)
	}

	for _, m := range quotedPhraseRe.FindAllStringSubmatch(query, -1) {
		add(m[1])
	}

	unquoted := quotedPhraseRe.ReplaceAllString(query, " ")
	for _, tok := range strings.Fields(unquoted) {
		tok = strings.Trim(tok, `.,!?;:'()[]{}`)
		if tok == "" {
			continue
		}
		first := []rune(tok)[0]
		if first >= 'A' && first <= 'Z' && !stopWords[strings.ToLower(tok)] {
			add(tok)
		}
	}
	return entities
}
