package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Cendrebourg", d.World.Name)
	assert.Len(t, d.Factions, 5)
	assert.Len(t, d.Locations, 8)
	assert.Len(t, d.KeyNPCs, 8)
	assert.NotEmpty(t, d.QuestTypes)
	assert.NotEmpty(t, d.PlayerClasses)
	assert.NotEmpty(t, d.CompletedQuestExamples)

	for _, loc := range d.Locations {
		assert.GreaterOrEqual(t, loc.DangerLevel, 1, "location %s", loc.ID)
		assert.LessOrEqual(t, loc.DangerLevel, 5, "location %s", loc.ID)
	}
}

func TestLookups(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	t.Run("faction", func(t *testing.T) {
		f, ok := d.FactionByID("garde")
		require.True(t, ok)
		assert.NotEmpty(t, f.Name)

		_, ok = d.FactionByID("inconnue")
		assert.False(t, ok)
	})

	t.Run("location", func(t *testing.T) {
		l, ok := d.LocationByID("griffon_noir")
		require.True(t, ok)
		assert.NotEmpty(t, l.Name)

		_, ok = d.LocationByID("atlantide")
		assert.False(t, ok)
	})

	t.Run("quest type", func(t *testing.T) {
		qt, ok := d.QuestTypeByID("investigation")
		require.True(t, ok)
		assert.NotEmpty(t, qt.Label)
	})

	t.Run("class", func(t *testing.T) {
		pc, ok := d.ClassByID("guerrier")
		require.True(t, ok)
		assert.NotEmpty(t, pc.Label)
	})
}

func TestLabelFallbacks(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	assert.NotEqual(t, "guerrier", d.ClassLabel("guerrier"), "known ids resolve to display labels")
	assert.Equal(t, "paladin", d.ClassLabel("paladin"), "unknown ids fall back to the raw id")
	assert.Equal(t, "pelerinage", d.QuestTypeLabel("pelerinage"))
}
