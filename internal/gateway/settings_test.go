package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pranavnigade123/drawzzl-backend/internal/model"
)

func intPtr(v int) *int { return &v }

func TestApplySettings_ClampsOutOfRangeValues(t *testing.T) {
	r := model.NewRoom("ABC123", model.Player{SessionID: "s1"})
	applySettings(r, settingsPatch{
		MaxPlayers:            intPtr(model.MaxPlayersCeil + 50),
		MaxRounds:             intPtr(0),
		DrawTime:              intPtr(10),
		WordCount:             intPtr(100),
		CustomWordProbability: intPtr(-10),
	})

	assert.Equal(t, model.MaxPlayersCeil, r.MaxPlayers)
	assert.Equal(t, model.MinRounds, r.MaxRounds)
	assert.Equal(t, model.MinDrawSeconds, r.DrawTime)
	assert.Equal(t, model.MaxWordCount, r.WordCount)
	assert.Equal(t, 0, r.CustomWordProbability)
}

func TestApplySettings_LeavesUnsetFieldsUntouched(t *testing.T) {
	r := model.NewRoom("ABC123", model.Player{SessionID: "s1"})
	r.MaxPlayers = 6
	applySettings(r, settingsPatch{})
	assert.Equal(t, 6, r.MaxPlayers)
}

func TestApplySettings_AppliesWithinRangeValues(t *testing.T) {
	r := model.NewRoom("ABC123", model.Player{SessionID: "s1"})
	applySettings(r, settingsPatch{
		MaxPlayers: intPtr(4),
		CustomWords: []string{"one", "two"},
		Private:     func() *bool { b := true; return &b }(),
	})
	assert.Equal(t, 4, r.MaxPlayers)
	assert.Equal(t, []string{"one", "two"}, r.CustomWords)
	assert.True(t, r.Private)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, clamp(5, 1, 10))
	assert.Equal(t, 1, clamp(-3, 1, 10))
	assert.Equal(t, 10, clamp(99, 1, 10))
}
