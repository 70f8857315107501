// Package wordbank implements the word selection policy boundary: picking
// a random word for a given difficulty, and picking a random custom word
// from a room's list. The corpus itself (the actual word list) is an
// external collaborator per spec.md §1 — this package owns only the
// sampling policy and a reasonable embedded default, grounded on the
// teacher's internal/game/words.go (load-from-file word list).
package wordbank

import (
	"bufio"
	"math/rand"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Difficulty buckets a candidate word draw, spec §4.1 "Word selection".
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// Source is the out-of-scope word corpus boundary: sampleWord(difficulty)
// and sampleCustom(list), as named in spec.md §1.
type Source interface {
	SampleWord(difficulty Difficulty) string
	SampleCustom(list []string) string
}

// Static is the default Source: an in-memory dictionary split into three
// difficulty tiers, optionally loaded from a newline-delimited file the way
// LoadWords did in the teacher.
type Static struct {
	byDifficulty map[Difficulty][]string
	rng          *rand.Rand
}

// NewStatic builds a Source from the built-in word tiers.
func NewStatic() *Static {
	return &Static{
		byDifficulty: map[Difficulty][]string{
			Easy:   append([]string(nil), defaultEasy...),
			Medium: append([]string(nil), defaultMedium...),
			Hard:   append([]string(nil), defaultHard...),
		},
		rng: rand.New(rand.NewSource(rand.Int63())),
	}
}

// LoadFile replaces one difficulty tier's words from a newline-delimited
// file, one word per line, lowercased. A missing or unreadable file is
// logged and leaves the existing tier untouched — the corpus is an
// external collaborator, so failures here are not fatal to the process.
func (s *Static) LoadFile(difficulty Difficulty, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("wordbank: could not open word list")
		return
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		w := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("wordbank: error scanning word list")
		return
	}
	if len(words) == 0 {
		return
	}
	s.byDifficulty[difficulty] = words
}

// SampleWord returns a uniformly random word from the given difficulty
// tier, falling back to Medium if the tier is empty.
func (s *Static) SampleWord(difficulty Difficulty) string {
	words := s.byDifficulty[difficulty]
	if len(words) == 0 {
		words = s.byDifficulty[Medium]
	}
	if len(words) == 0 {
		return "drawing"
	}
	return words[s.rng.Intn(len(words))]
}

// SampleCustom returns a uniformly random entry from list. Callers must
// not invoke this with an empty list (spec §4.1 only samples custom words
// "if non-empty").
func (s *Static) SampleCustom(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[s.rng.Intn(len(list))]
}

var (
	defaultEasy = []string{
		"cat", "dog", "sun", "hat", "cup", "fish", "star", "tree", "book", "ball",
		"moon", "cake", "fire", "shoe", "bird", "frog", "king", "bee", "egg", "ring",
	}
	defaultMedium = []string{
		"guitar", "elephant", "rainbow", "castle", "volcano", "bicycle", "dolphin",
		"sandwich", "balloon", "pyramid", "skeleton", "umbrella", "backpack",
		"telescope", "penguin", "mountain", "lighthouse", "waterfall", "butterfly",
		"dinosaur",
	}
	defaultHard = []string{
		"constellation", "metamorphosis", "archaeologist", "kaleidoscope",
		"procrastination", "philosophy", "thermodynamics", "architecture",
		"choreography", "civilization", "photosynthesis", "hieroglyphics",
		"extraterrestrial", "bureaucracy", "cryptography", "renaissance",
		"infrastructure", "democracy", "symmetry", "turbulence",
	}
)
