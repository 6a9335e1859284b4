package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPlayerConfig(t *testing.T) {
	cfg := DefaultPlayerConfig()
	assert.Equal(t, "guerrier", cfg.PlayerClass)
	assert.Equal(t, 5, cfg.PlayerLevel)
	assert.Equal(t, "investigation", cfg.QuestType)
	assert.Equal(t, ModelSonnet, cfg.Model)
	assert.InDelta(t, 0.85, cfg.Temperature, 1e-9)
	assert.Empty(t, cfg.FactionAffinities)
	assert.Empty(t, cfg.CompletedQuests)
}

func TestPlayerConfigClone(t *testing.T) {
	cfg := DefaultPlayerConfig()
	cfg.CompletedQuests = []string{"une"}
	cfg.FactionAffinities = map[string]int{"garde": 1}

	clone := cfg.Clone()
	clone.CompletedQuests[0] = "autre"
	clone.FactionAffinities["garde"] = -3

	assert.Equal(t, "une", cfg.CompletedQuests[0])
	assert.Equal(t, 1, cfg.FactionAffinities["garde"])
}

func TestClampAffinity(t *testing.T) {
	assert.Equal(t, AffinityMin, ClampAffinity(-10))
	assert.Equal(t, AffinityMax, ClampAffinity(10))
	assert.Equal(t, 2, ClampAffinity(2))
	assert.Equal(t, 0, ClampAffinity(0))
}
