package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quest-forge/internal/model"
)

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n  ", `{"a":1}`},
		{"fence with trailing spaces", "```json   \n{\"a\":1}\n```   ", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripFences(tc.in))
		})
	}
}

func TestParseQuest(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		raw := "```json\n" + `{
  "title": "Les disparus de la mine",
  "description": "Des mineurs ne remontent plus.",
  "type": "investigation",
  "difficulty": 3,
  "location_id": "mine",
  "faction_involved": "marchands",
  "quest_giver": {"name": "Aldric", "dialogue_intro": "Écoute-moi bien..."},
  "objectives": [{"id": 1, "description": "Descendre dans la mine", "type": "principal"}],
  "rewards": {"xp": 400, "gold": 120, "reputation": {"marchands": 1}}
}` + "\n```"

		q, err := ParseQuest(raw)
		require.NoError(t, err)
		assert.Equal(t, "Les disparus de la mine", q.Title)
		assert.Equal(t, 3, q.Difficulty)
		require.NotNil(t, q.QuestGiver)
		assert.Equal(t, "Aldric", q.QuestGiver.Name)
		require.Len(t, q.Objectives, 1)
		require.NotNil(t, q.Rewards)
		assert.Equal(t, map[string]int{"marchands": 1}, q.Rewards.Reputation)
	})

	t.Run("round trip preserves a fully populated quest", func(t *testing.T) {
		bonus := "Détection magique des pièges"
		item := "Amulette ternie"
		itemDesc := "Une amulette gravée du sceau de Varen."
		quest := model.Quest{
			Title:             "Le sceau brisé",
			Description:       "Le château de Varen cache un passage condamné.",
			Type:              "infiltration",
			Difficulty:        4,
			EstimatedDuration: "longue",
			LocationID:        "chateau_varen",
			FactionInvolved:   "lames_grises",
			QuestGiver: &model.QuestGiver{
				Name:             "Sera",
				DialogueIntro:    "On ne t'a rien dit sur l'aile est, n'est-ce pas ?",
				DialogueComplete: "Tu comprends maintenant ce qu'ils cachent.",
			},
			Objectives: []model.Objective{
				{ID: 1, Description: "Entrer dans l'aile est", Type: "principal", ClassBonus: &bonus},
				{ID: 2, Description: "Repartir sans être vu", Type: "optionnel"},
			},
			MoralChoice: &model.MoralChoice{
				Description: "Les preuves impliquent aussi un innocent.",
				OptionA:     &model.MoralOption{Label: "Tout révéler", Consequence: "L'innocent tombe avec Varen", FactionImpact: "+garde"},
				OptionB:     &model.MoralOption{Label: "Trier les preuves", Consequence: "Varen garde une porte de sortie", FactionImpact: "-garde"},
			},
			Rewards: &model.Rewards{
				XP:              650,
				Gold:            200,
				Item:            &item,
				ItemDescription: &itemDesc,
				Reputation:      map[string]int{"lames_grises": 1, "garde": -1},
			},
			LoreConnection: "Relie les disparitions au complot de Varen.",
		}

		payload, err := json.Marshal(quest)
		require.NoError(t, err)

		parsed, err := ParseQuest(string(payload))
		require.NoError(t, err)
		assert.Equal(t, &quest, parsed)
	})

	t.Run("partial payload is accepted", func(t *testing.T) {
		q, err := ParseQuest(`{"title": "Sans fioritures"}`)
		require.NoError(t, err)
		assert.Equal(t, "Sans fioritures", q.Title)
		assert.Nil(t, q.QuestGiver)
		assert.Nil(t, q.Rewards)
		assert.Nil(t, q.MoralChoice)
	})

	t.Run("malformed payload", func(t *testing.T) {
		q, err := ParseQuest("Voici votre quête : il était une fois...")
		assert.Nil(t, q)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JSON parse error:")
	})
}

func TestParseCoherence(t *testing.T) {
	t.Run("verdict", func(t *testing.T) {
		v, err := ParseCoherence("```json\n" + `{"score": 8, "verdict": "cohérente", "issues": [], "strengths": ["bon usage du lore"]}` + "\n```")
		require.NoError(t, err)
		require.NotNil(t, v.Score)
		assert.Equal(t, 8, *v.Score)
		assert.Equal(t, "cohérente", v.Verdict)
		assert.Equal(t, []string{"bon usage du lore"}, v.Strengths)
	})

	t.Run("missing score stays nil", func(t *testing.T) {
		v, err := ParseCoherence(`{"verdict": "incohérences mineures"}`)
		require.NoError(t, err)
		assert.Nil(t, v.Score)
	})

	t.Run("malformed verdict", func(t *testing.T) {
		_, err := ParseCoherence("La quête me semble correcte.")
		require.Error(t, err)
	})
}
