// Package vectorspace builds the term-weighted condition matrix and encodes queries against it.
package vectorspace

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var stopwords = func() map[string]struct{} {
	words := strings.Fields(`a an and are as at be by does for from in into is it its of on or
		that the this to too was were with my i have has had been very`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// Tokenize lowercases a phrase, splits it on anything that is not a Unicode letter or digit,
// and drops stopwords and single-character tokens.
func Tokenize(phrase string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, strings.ToLower(phrase))

	fields := strings.Fields(cleaned)
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Terms returns the unigrams of a phrase followed by its bigrams.
// Bigrams never span two phrases.
func Terms(phrase string) []string {
	toks := Tokenize(phrase)
	if len(toks) == 0 {
		return nil
	}
	out := make([]string, 0, 2*len(toks)-1)
	out = append(out, toks...)
	for i := 0; i+1 < len(toks); i++ {
		out = append(out, toks[i]+" "+toks[i+1])
	}
	return out
}

// NormalizePhrase lowercases a phrase and collapses its whitespace.
// It is the key for phrase-level matching, not for term extraction.
func NormalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}
