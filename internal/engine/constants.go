package engine

import "time"

// Scoring constants, spec §4.1 "Scoring (contract)".
const (
	maxPoints           = 500
	minPoints           = 50
	turnSeconds         = 60
	drawerBonusPerGuess = 50
)

// Phase timing, spec §4.1 "Transitions".
const (
	choosingWindow     = 8 * time.Second
	intermissionWindow = 5 * time.Second
	tickInterval       = 1 * time.Second
)

// Hint reveal thresholds, spec §4.1 "Hint reveals".
const secondHintAt = 15 // seconds remaining
