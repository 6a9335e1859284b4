// Package prompt builds the system prompts sent to the model. Both builders
// are pure: for a fixed world dataset and input snapshot they produce
// byte-identical output on every call.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"quest-forge/internal/model"
	"quest-forge/internal/world"
)

// QuestPromptInput is the player snapshot a generation prompt is built from.
// CompletedQuests is the resolved list: manual entries concatenated with
// campaign entries already rendered as "{title} — {description}".
type QuestPromptInput struct {
	QuestType         string
	ClassLabel        string
	PlayerLevel       int
	CompletedQuests   []string
	FactionAffinities map[string]int
}

// BuildWorldContext serializes the lore shared by both prompts: world
// header, factions, locations with danger levels, and key NPCs.
func BuildWorldContext(d *world.Data) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## MONDE : %s\n", d.World.Name)
	fmt.Fprintf(&b, "%s\n", d.World.Description)
	fmt.Fprintf(&b, "Époque : %s\n", d.World.Era)

	b.WriteString("\n## FACTIONS\n")
	for _, f := range d.Factions {
		fmt.Fprintf(&b, "- **%s** (%s) : %s — Leader : %s — Alignement : %s\n",
			f.Name, f.ID, f.Description, f.Leader, f.Alignment)
	}

	b.WriteString("\n## LIEUX\n")
	for _, l := range d.Locations {
		fmt.Fprintf(&b, "- **%s** (%s) [%s, danger: %d/5] : %s\n",
			l.Name, l.ID, l.Type, l.DangerLevel, l.Description)
	}

	b.WriteString("\n## PERSONNAGES CLÉS\n")
	for _, n := range d.KeyNPCs {
		fmt.Fprintf(&b, "- **%s** — %s — Faction : %s — Notes : %s\n",
			n.Name, n.Role, n.Faction, n.Notes)
	}

	return b.String()
}

// formatAffinities renders faction affinities as "id (+n)" entries in the
// dataset's faction order so the output stays deterministic regardless of map
// iteration order. Absent entries are neutral and not rendered.
func formatAffinities(d *world.Data, affinities map[string]int) string {
	var parts []string
	for _, f := range d.Factions {
		level, ok := affinities[f.ID]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%+d)", f.ID, level))
	}
	if len(parts) == 0 {
		return "Aucune encore"
	}
	return strings.Join(parts, ", ")
}

func formatCompletedQuests(quests []string) string {
	if len(quests) == 0 {
		return "Aucune (nouveau joueur)"
	}
	return strings.Join(quests, " | ")
}

// BuildQuestPrompt produces the generation system prompt: world context,
// player context, mission instructions, coherence rules, and the literal JSON
// schema the model must return.
func BuildQuestPrompt(d *world.Data, in QuestPromptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Tu es un game designer expert spécialisé dans la création de quêtes pour RPGs. Tu travailles dans l'univers de %s.\n\n", d.World.Name)

	b.WriteString(BuildWorldContext(d))

	b.WriteString("\n## PROFIL DU JOUEUR\n")
	fmt.Fprintf(&b, "- Classe : %s\n", in.ClassLabel)
	fmt.Fprintf(&b, "- Niveau : %d\n", in.PlayerLevel)
	fmt.Fprintf(&b, "- Affinités de faction : %s\n", formatAffinities(d, in.FactionAffinities))
	fmt.Fprintf(&b, "- Quêtes déjà complétées : %s\n", formatCompletedQuests(in.CompletedQuests))

	b.WriteString("\n## TA MISSION\n")
	fmt.Fprintf(&b, "Génère UNE quête de type \"%s\" qui :\n", in.QuestType)
	b.WriteString("1. Est cohérente avec le lore établi ci-dessus — utilise UNIQUEMENT les lieux, PNJs et factions listés\n")
	fmt.Fprintf(&b, "2. Est adaptée au niveau %d du joueur (difficulté appropriée)\n", in.PlayerLevel)
	b.WriteString("3. Tient compte des quêtes déjà complétées (ne pas répéter, mais peut faire suite)\n")
	fmt.Fprintf(&b, "4. Propose des interactions avec la classe %s du joueur (options liées à ses compétences)\n", in.ClassLabel)
	b.WriteString("5. Contient au moins un choix moral ou stratégique pour le joueur\n")
	b.WriteString("6. Fait avancer l'intrigue principale (le mystère des disparitions / le complot de Varen) directement ou indirectement\n")

	b.WriteString("\n## RÈGLES DE COHÉRENCE\n")
	b.WriteString("- N'invente PAS de nouveaux lieux, factions ou personnages principaux\n")
	b.WriteString("- Tu PEUX inventer des personnages secondaires mineurs (un garde, un villageois, un marchand de passage)\n")
	b.WriteString("- Les quêtes doivent avoir des conséquences logiques sur les relations de faction\n")
	b.WriteString("- Le danger doit correspondre au niveau du joueur et au lieu choisi\n")
	b.WriteString("- Les dialogues des PNJ doivent refléter leur personnalité établie\n")

	b.WriteString("\n## FORMAT DE RÉPONSE — JSON STRICT\n")
	b.WriteString("Réponds UNIQUEMENT avec un JSON valide, sans texte avant ou après :\n\n")
	fmt.Fprintf(&b, questSchemaTemplate, in.QuestType, in.ClassLabel)

	return b.String()
}

// questSchemaTemplate is the literal output schema with inline annotations.
// The two verbs are the quest type and the player class label.
const questSchemaTemplate = `{
  "title": "Titre de la quête (accrocheur, max 8 mots)",
  "description": "Description narrative de la quête (2-3 phrases, ambiance et enjeux)",
  "type": "%s",
  "difficulty": 1-5,
  "estimated_duration": "courte/moyenne/longue",
  "location_id": "id du lieu principal (parmi les lieux listés)",
  "faction_involved": "id de la faction principale impliquée",
  "quest_giver": {
    "name": "Nom du PNJ qui donne la quête",
    "dialogue_intro": "Ce que le PNJ dit pour introduire la quête (en personnage, 2-3 phrases)",
    "dialogue_complete": "Ce que le PNJ dit quand la quête est réussie (1-2 phrases)"
  },
  "objectives": [
    {
      "id": 1,
      "description": "Description de l'objectif",
      "type": "principal/optionnel",
      "class_bonus": "Avantage spécifique si le joueur est de classe %s (ou null)"
    }
  ],
  "moral_choice": {
    "description": "Le dilemme moral ou stratégique que le joueur rencontre",
    "option_a": { "label": "Choix A", "consequence": "Ce qui arrive", "faction_impact": "+faction_id ou -faction_id" },
    "option_b": { "label": "Choix B", "consequence": "Ce qui arrive", "faction_impact": "+faction_id ou -faction_id" }
  },
  "rewards": {
    "xp": 100-1000,
    "gold": 0-500,
    "item": "Nom de l'objet de récompense (ou null)",
    "item_description": "Description de l'objet (ou null)",
    "reputation": { "faction_id": +1 ou -1 }
  },
  "lore_connection": "Comment cette quête se connecte à l'intrigue principale (1 phrase)"
}`

// UserMessage is the single user-turn message accompanying the generation
// system prompt.
func UserMessage(questType, classLabel string, playerLevel int) string {
	return fmt.Sprintf("Génère une quête de type \"%s\" pour un joueur %s de niveau %d.", questType, classLabel, playerLevel)
}

// BuildCoherencePrompt produces the system prompt of the verification pass:
// same world context, the player's completed quests, seven verification
// rules, and the verdict schema.
func BuildCoherencePrompt(d *world.Data, completedQuests []string) string {
	completed := "Aucune"
	if len(completedQuests) > 0 {
		completed = strings.Join(completedQuests, "\n")
	}

	var b strings.Builder
	b.WriteString("Tu es un vérificateur de cohérence pour un jeu RPG. On te donne une quête générée et le contexte du monde. Tu dois vérifier que la quête est cohérente avec le lore établi.\n\n")
	b.WriteString(BuildWorldContext(d))
	b.WriteString("\n## QUÊTES DÉJÀ COMPLÉTÉES PAR LE JOUEUR\n")
	b.WriteString(completed)
	b.WriteString("\n\n## RÈGLES DE VÉRIFICATION\n")
	b.WriteString("1. Les lieux mentionnés existent-ils dans le monde ?\n")
	b.WriteString("2. Les PNJs mentionnés existent-ils et leurs rôles sont-ils corrects ?\n")
	b.WriteString("3. Les factions mentionnées existent-elles ?\n")
	b.WriteString("4. La quête ne contredit-elle pas les événements des quêtes déjà complétées ?\n")
	b.WriteString("5. Le niveau de danger est-il cohérent avec le lieu ?\n")
	b.WriteString("6. Les récompenses sont-elles proportionnelles à la difficulté ?\n")
	b.WriteString("7. Le choix moral a-t-il des conséquences logiques sur les factions ?\n")
	b.WriteString("\nRéponds UNIQUEMENT en JSON :\n")
	b.WriteString(`{
  "score": 1-10,
  "verdict": "cohérente" ou "incohérences mineures" ou "incohérences majeures",
  "issues": ["description du problème 1", "..."],
  "strengths": ["point fort 1", "..."]
}`)

	return b.String()
}

// CoherenceUserMessage wraps the quest to verify, pretty-printed so the model
// reads it the way a reviewer would.
func CoherenceUserMessage(q *model.Quest) string {
	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		// A Quest contains only marshal-safe fields; this path is unreachable
		// in practice but the builder must stay total.
		return "Vérifie la cohérence de cette quête :\n{}"
	}
	return "Vérifie la cohérence de cette quête :\n" + string(data)
}

// ResolveCompletedQuests merges the manual completed-quest entries with the
// campaign timeline rendered as "{title} — {description}". Duplicates are
// preserved.
func ResolveCompletedQuests(manual []string, campaign []model.AcceptedQuest) []string {
	out := make([]string, 0, len(manual)+len(campaign))
	out = append(out, manual...)
	for _, entry := range campaign {
		out = append(out, fmt.Sprintf("%s — %s", entry.Quest.Title, entry.Quest.Description))
	}
	return out
}
