package kinds

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/slotfill/pkg/domain"
)

// wordPattern tokenises letters. Go's \b is ASCII-only, so name detection scans tokens instead.
var wordPattern = regexp.MustCompile(`\pL[\pL'\-]*`)

type token struct {
	text       string
	start, end int
}

func tokenize(text string) []token {
	locs := wordPattern.FindAllStringIndex(text, -1)
	out := make([]token, 0, len(locs))
	for _, l := range locs {
		out = append(out, token{text: text[l[0]:l[1]], start: l[0], end: l[1]})
	}
	return out
}

// NameDetector detects a personal name. An explicit lead-in phrase ("my name is Mario Rossi")
// wins; otherwise the first run of one or two adjacent capitalised tokens that are neither
// stop-words, month names nor country keywords is taken.
func NameDetector(loc *Locale) Detector {
	if loc == nil {
		loc = DefaultLocale()
	}
	return DetectorFunc(func(text string) (Match, bool) {
		if m, ok := detectPhrasedName(loc, text); ok {
			return m, true
		}
		return detectCapitalisedName(loc, text)
	})
}

func detectPhrasedName(loc *Locale, text string) (Match, bool) {
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		// Case folding changed byte offsets; spans would not line up.
		return Match{}, false
	}
	for _, phrase := range loc.NamePhrases {
		idx := indexWord(lower, phrase)
		if idx < 0 {
			continue
		}
		after := idx + len(phrase)
		var picked []token
		for _, tk := range tokenize(text[after:]) {
			if len(picked) == 2 || loc.IsStopWord(tk.text) {
				break
			}
			if len(picked) == 1 && strings.TrimSpace(text[after+picked[0].end:after+tk.start]) != "" {
				break
			}
			picked = append(picked, token{text: tk.text, start: after + tk.start, end: after + tk.end})
		}
		if len(picked) == 0 {
			continue
		}
		return nameMatch(picked, idx), true
	}
	return Match{}, false
}

func detectCapitalisedName(loc *Locale, text string) (Match, bool) {
	tokens := tokenize(text)
	for i, tk := range tokens {
		if !nameCandidate(loc, tk.text) {
			continue
		}
		picked := []token{tk}
		if i+1 < len(tokens) {
			next := tokens[i+1]
			if nameCandidate(loc, next.text) && strings.TrimSpace(text[tk.end:next.start]) == "" {
				picked = append(picked, next)
			}
		}
		return nameMatch(picked, picked[0].start), true
	}
	return Match{}, false
}

func nameCandidate(loc *Locale, word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	if !unicode.IsUpper(r) || utf8.RuneCountInString(word) < 2 {
		return false
	}
	if loc.IsStopWord(word) {
		return false
	}
	if _, ok := loc.MonthNumber(word); ok {
		return false
	}
	if _, ok := loc.Country(word); ok {
		return false
	}
	return true
}

func nameMatch(picked []token, start int) Match {
	first, last := picked[0].text, ""
	if len(picked) > 1 {
		last = picked[1].text
	}
	return Match{
		Value: domain.NameOf(first, last),
		Span:  Span{Start: start, End: picked[len(picked)-1].end},
	}
}

// indexWord finds phrase in s on word boundaries.
func indexWord(s, phrase string) int {
	from := 0
	for {
		i := strings.Index(s[from:], phrase)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(phrase)
		if boundaryBefore(s, i) && boundaryAfter(s, end) {
			return i
		}
		from = i + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
