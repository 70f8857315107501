package gateway

import "github.com/pranavnigade123/drawzzl-backend/internal/model"

// applySettings merges a host's settings patch into room, clamping every
// provided field to spec §3's allowed ranges rather than rejecting
// out-of-range values outright.
func applySettings(r *model.Room, p settingsPatch) {
	if p.MaxPlayers != nil {
		r.MaxPlayers = clamp(*p.MaxPlayers, model.MinPlayers, model.MaxPlayersCeil)
	}
	if p.MaxRounds != nil {
		r.MaxRounds = clamp(*p.MaxRounds, model.MinRounds, model.MaxRoundsCeil)
	}
	if p.DrawTime != nil {
		r.DrawTime = clamp(*p.DrawTime, model.MinDrawSeconds, model.MaxDrawSeconds)
	}
	if p.WordCount != nil {
		r.WordCount = clamp(*p.WordCount, model.MinWordCount, model.MaxWordCount)
	}
	if p.CustomWords != nil {
		r.CustomWords = p.CustomWords
	}
	if p.CustomWordProbability != nil {
		r.CustomWordProbability = clamp(*p.CustomWordProbability, 0, 100)
	}
	if p.Private != nil {
		r.Private = *p.Private
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
