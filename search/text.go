package search

import "strings"

// Stop words never take part in matching
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "use": true, "case": true,
}

// tokenize splits text into lowercase words with punctuation trimmed and
// stop words removed. Commas inside a word split it, so comma separated
// attribute lists tokenize like prose.
func tokenize(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '/' || r == '|' || isSpace(r)
	})
	filtered := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}
	return filtered
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// wordSet returns the tokenized words of text as a set.
func wordSet(text string) map[string]bool {
	words := tokenize(text)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// containsAll reports whether every word appears in set.
func containsAll(set map[string]bool, words []string) bool {
	for _, w := range words {
		if !set[w] {
			return false
		}
	}
	return len(words) > 0
}
