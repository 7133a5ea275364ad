package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeSplitsOnSpaceOnly(t *testing.T) {
	assert.Equal(t, []string{"moro", "glede"}, Tokenize("Moro  GLEDE "))
	assert.Equal(t, []string{"a\nb"}, Tokenize("a\nb"))
	assert.Empty(t, Tokenize("   "))
}

func TestCountWordsFoldsCase(t *testing.T) {
	wc := CountWords("Moro moro MORO fest")
	assert.Equal(t, WordCount{"moro": 3, "fest": 1}, wc)
	assert.Equal(t, 3, wc.Get("MoRo"))
	assert.Equal(t, 4, wc.Total())
}

func TestSubtractDeletesInsteadOfStoringZero(t *testing.T) {
	wc := WordCount{"moro": 2, "fest": 1}
	wc.Subtract(WordCount{"moro": 1, "fest": 3, "unknown": 1})

	assert.Equal(t, WordCount{"moro": 1}, wc)
	_, ok := wc["fest"]
	assert.False(t, ok)
}

func TestWordsSorted(t *testing.T) {
	wc := WordCount{"b": 1, "a": 2, "c": 1}
	assert.Equal(t, []string{"a", "b", "c"}, wc.Words())
}
