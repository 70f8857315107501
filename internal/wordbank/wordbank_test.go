package wordbank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_SampleWord_ReturnsFromTier(t *testing.T) {
	s := NewStatic()
	word := s.SampleWord(Easy)
	assert.Contains(t, defaultEasy, word)
}

func TestStatic_SampleWord_FallsBackToMediumWhenTierEmpty(t *testing.T) {
	s := NewStatic()
	s.byDifficulty[Hard] = nil
	word := s.SampleWord(Hard)
	assert.Contains(t, defaultMedium, word)
}

func TestStatic_SampleWord_FallsBackToFixedWordWhenAllEmpty(t *testing.T) {
	s := &Static{byDifficulty: map[Difficulty][]string{}, rng: NewStatic().rng}
	assert.Equal(t, "drawing", s.SampleWord(Easy))
}

func TestStatic_SampleCustom(t *testing.T) {
	s := NewStatic()
	list := []string{"a", "b", "c"}
	assert.Contains(t, list, s.SampleCustom(list))
}

func TestStatic_SampleCustom_EmptyList(t *testing.T) {
	s := NewStatic()
	assert.Equal(t, "", s.SampleCustom(nil))
}

func TestStatic_LoadFile_ReplacesTier(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("Alpha\nBETA\n\nGamma\n"), 0o644))

	s := NewStatic()
	s.LoadFile(Easy, path)

	assert.ElementsMatch(t, []string{"alpha", "beta", "gamma"}, s.byDifficulty[Easy])
}

func TestStatic_LoadFile_MissingFileLeavesTierUntouched(t *testing.T) {
	s := NewStatic()
	before := append([]string(nil), s.byDifficulty[Easy]...)
	s.LoadFile(Easy, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Equal(t, before, s.byDifficulty[Easy])
}
