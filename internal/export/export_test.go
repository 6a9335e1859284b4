package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quest-forge/internal/model"
)

func TestQuestDocument(t *testing.T) {
	q := &model.Quest{Title: "Les cendres du passé", Description: "Une vieille dette refait surface."}

	data, err := QuestDocument(q)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(string(data), "\n"))
	assert.Contains(t, string(data), "  \"title\"", "document is indented")

	var round model.Quest
	require.NoError(t, json.Unmarshal(data, &round))
	assert.Equal(t, q.Title, round.Title)
}

func TestCampaignDocument(t *testing.T) {
	campaign := []model.AcceptedQuest{
		{Quest: model.Quest{Title: "Première"}, AcceptedAt: time.Now()},
		{Quest: model.Quest{Title: "Seconde"}, AcceptedAt: time.Now()},
	}

	data, err := CampaignDocument(campaign)
	require.NoError(t, err)

	var round []model.AcceptedQuest
	require.NoError(t, json.Unmarshal(data, &round))
	require.Len(t, round, 2)
	assert.Equal(t, "Première", round[0].Quest.Title)
}

func TestQuestFilename(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "La Lettre Volée", "quest-la-lettre-volée.json"},
		{"collapsed whitespace", "Les   ombres \t du pont", "quest-les-ombres-du-pont.json"},
		{"empty title", "", "quest-export.json"},
		{"whitespace only", "   ", "quest-export.json"},
		{
			"long title is capped",
			"Une très longue aventure à travers toutes les terres connues du royaume",
			"quest-une-très-longue-aventure-à-tra.json",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, QuestFilename(tc.title))
		})
	}
}

func TestCampaignFilename(t *testing.T) {
	assert.Equal(t, "campagne-cendrebourg.json", CampaignFilename())
}
