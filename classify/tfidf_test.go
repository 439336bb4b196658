package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"go", "dev", "https", "go", "dev"},
		tokenize("Go.dev a https://go.dev/x"))
	assert.Equal(t, []string{"中文标题", "abc_1"}, tokenize("中文标题 ABC_1 !"))
	assert.Empty(t, tokenize("a b c"))
}

func TestSelectFeatures(t *testing.T) {
	counts := map[string]int{"b": 3, "a": 3, "c": 1, "d": 5}
	assert.Equal(t, []string{"a", "b", "d"}, selectFeatures(counts, 3))
	assert.Equal(t, []string{"a", "b", "c", "d"}, selectFeatures(counts, 10))
}

func TestDominantTerms(t *testing.T) {
	docs := []string{
		"golang golang tutorial",
		"rust tutorial",
		"x",
	}
	got := dominantTerms(docs)

	// golang appears twice in doc 0 and nowhere else.
	assert.Equal(t, "golang", got[0])
	// rust is rarer than tutorial, so weighs more.
	assert.Equal(t, "rust", got[1])
	// no token of two or more characters
	assert.Equal(t, "", got[2])
}

func TestDominantTerms_TieBreaksAlphabetically(t *testing.T) {
	got := dominantTerms([]string{"zeta alpha"})
	assert.Equal(t, []string{"alpha"}, got)
}

func TestDominantTerms_VocabularyCap(t *testing.T) {
	// Eleven distinct terms; "kk" appears once and sorts last, so it is
	// the one dropped from the vocabulary.
	docs := []string{
		"aa aa bb bb cc cc dd dd ee ee",
		"ff ff gg gg hh hh ii ii jj jj",
		"kk",
	}
	got := dominantTerms(docs)
	assert.Equal(t, "", got[2])
	assert.Equal(t, "aa", got[0])
	assert.Equal(t, "ff", got[1])
}

func TestDominantTerms_Empty(t *testing.T) {
	assert.Empty(t, dominantTerms(nil))
	assert.Equal(t, []string{"", ""}, dominantTerms([]string{"", "!"}))
}
