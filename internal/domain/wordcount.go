package domain

import (
	"sort"
	"strings"
)

// WordCount maps a lower-cased token to its number of occurrences.
// A word that is present always has a count of at least 1.
type WordCount map[string]int

// Tokenize splits text on the space character, drops empty tokens and
// lower-cases the rest. Other whitespace is part of the token.
func Tokenize(text string) []string {
	parts := strings.Split(text, " ")
	tokens := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		tokens = append(tokens, strings.ToLower(p))
	}
	return tokens
}

// CountWords returns the word count of a single text.
func CountWords(text string) WordCount {
	wc := make(WordCount)
	for _, tok := range Tokenize(text) {
		wc[tok]++
	}
	return wc
}

// Get returns the count for word, ignoring case.
func (wc WordCount) Get(word string) int {
	return wc[strings.ToLower(word)]
}

// Add increments every word by its count in delta.
func (wc WordCount) Add(delta WordCount) {
	for word, n := range delta {
		if n <= 0 {
			continue
		}
		wc[word] += n
	}
}

// Subtract decrements every word by its count in delta. Words that would
// drop below 1 are removed.
func (wc WordCount) Subtract(delta WordCount) {
	for word, n := range delta {
		cur, ok := wc[word]
		if !ok {
			continue
		}
		if cur-n > 0 {
			wc[word] = cur - n
		} else {
			delete(wc, word)
		}
	}
}

// Clone returns an independent copy.
func (wc WordCount) Clone() WordCount {
	out := make(WordCount, len(wc))
	for word, n := range wc {
		out[word] = n
	}
	return out
}

// Words returns the words in lexical order.
func (wc WordCount) Words() []string {
	words := make([]string, 0, len(wc))
	for word := range wc {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// Total returns the sum of all counts.
func (wc WordCount) Total() int {
	total := 0
	for _, n := range wc {
		total += n
	}
	return total
}
