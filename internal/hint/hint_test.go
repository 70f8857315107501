package hint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskWord_NoneRevealed(t *testing.T) {
	mask := MaskWord("cat", map[int]struct{}{})
	assert.Equal(t, "_ _ _", mask)
}

func TestMaskWord_SomeRevealed(t *testing.T) {
	mask := MaskWord("cat", map[int]struct{}{0: {}, 2: {}})
	assert.Equal(t, "c _ t", mask)
}

func TestMaskWord_AllRevealed(t *testing.T) {
	mask := MaskWord("cat", map[int]struct{}{0: {}, 1: {}, 2: {}})
	assert.Equal(t, "c a t", mask)
}

func TestMaskWord_Empty(t *testing.T) {
	assert.Equal(t, "", MaskWord("", map[int]struct{}{}))
}

func TestLevenshtein_Identical(t *testing.T) {
	assert.Equal(t, 0, Levenshtein("castle", "castle"))
}

func TestLevenshtein_OneSubstitution(t *testing.T) {
	assert.Equal(t, 1, Levenshtein("cat", "cot"))
}

func TestLevenshtein_OneInsertion(t *testing.T) {
	assert.Equal(t, 1, Levenshtein("cat", "cats"))
}

func TestLevenshtein_OneDeletion(t *testing.T) {
	assert.Equal(t, 1, Levenshtein("cats", "cat"))
}

func TestLevenshtein_EmptyStrings(t *testing.T) {
	assert.Equal(t, 3, Levenshtein("", "cat"))
	assert.Equal(t, 3, Levenshtein("cat", ""))
	assert.Equal(t, 0, Levenshtein("", ""))
}

func TestLevenshtein_Unrelated(t *testing.T) {
	assert.True(t, Levenshtein("castle", "dolphin") > 1)
}

func TestNormalize_TrimsCaseAndWhitespace(t *testing.T) {
	assert.Equal(t, "icecream", Normalize("  Ice Cream\t\n"))
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize("   "))
}
