package recall

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Intent is the kind of answer a question asks for.
type Intent int

const (
	// IntentLatest asks for the current state of something.
	IntentLatest Intent = iota

	// IntentHistory asks how something changed over time.
	IntentHistory
)

func (i Intent) String() string {
	if i == IntentHistory {
		return "history"
	}
	return "latest"
}

// historyKeywords mark a question as a history question when any appears
// in the lowercased text.
var historyKeywords = []string{"before", "earlier", "previously", "history", "initially", "past"}

// ClassifyIntent returns IntentHistory when the query contains a history
// keyword, IntentLatest otherwise. Negation is not considered.
func ClassifyIntent(query string) Intent {
	q := strings.ToLower(query)
	for _, kw := range historyKeywords {
		if strings.Contains(q, kw) {
			return IntentHistory
		}
	}
	return IntentLatest
}

var objectPattern = regexp.MustCompile(`(?i)\bmy\s+([\p{L}\p{N}_]+)`)

// ExtractObject returns the lowercased word following the first "my" in
// query, e.g. "car" for "where is my car now".
func ExtractObject(query string) (string, bool) {
	m := objectPattern.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// pronounSwaps maps first-person tokens to second person. Matching is
// whole word and case sensitive.
var pronounSwaps = map[string]string{
	"I'm": "You're",
	"i'm": "you're",
	"my":  "your",
	"My":  "Your",
	"I":   "You",
	"i":   "you",
	"am":  "are",
}

// Contractions come first so "I'm" is not split into "I" + "'m".
var pronounPattern = regexp.MustCompile(`\b(I'm|i'm|My|my|I|i|am)\b`)

// RewritePerspective turns first-person text into second person in a
// single pass, so replaced tokens are never rewritten again.
//
//	"I lost my keys"  -> "You lost your keys"
//	"I'm near my car" -> "You're near your car"
func RewritePerspective(text string) string {
	return pronounPattern.ReplaceAllStringFunc(text, func(tok string) string {
		return pronounSwaps[tok]
	})
}

// locationPrepositions are scanned for in this order; the leftmost match in
// the text wins and the order only settles matches at the same position.
// Matching is plain substring, so "cabin key" matches "in ".
var locationPrepositions = []string{"in ", "on ", "inside ", "near ", "at ", "to "}

// ExtractLocation returns the tail of text starting at its leftmost
// location preposition, capitalised, e.g. "In the garage" for
// "You parked your car in the garage".
func ExtractLocation(text string) (string, bool) {
	lower := asciiLower(text)

	best := -1
	for _, prep := range locationPrepositions {
		pos := strings.Index(lower, prep)
		if pos >= 0 && (best < 0 || pos < best) {
			best = pos
		}
	}
	if best < 0 {
		return "", false
	}

	return capitalize(text[best:]), true
}

// asciiLower lowercases A-Z only, keeping byte offsets aligned with s.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
