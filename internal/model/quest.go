package model

import "time"

// Quest is the structure the model is instructed to return for a generation
// call. The schema is enforced by the prompt only, never by the decoder, so
// every nested field may be absent or malformed — consumers must treat each
// one as optional.
type Quest struct {
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Type              string       `json:"type"`
	Difficulty        int          `json:"difficulty"`
	EstimatedDuration string       `json:"estimated_duration"`
	LocationID        string       `json:"location_id"`
	FactionInvolved   string       `json:"faction_involved"`
	QuestGiver        *QuestGiver  `json:"quest_giver,omitempty"`
	Objectives        []Objective  `json:"objectives,omitempty"`
	MoralChoice       *MoralChoice `json:"moral_choice,omitempty"`
	Rewards           *Rewards     `json:"rewards,omitempty"`
	LoreConnection    string       `json:"lore_connection,omitempty"`
}

// QuestGiver is the NPC handing out the quest, with in-character dialogue for
// both ends of it.
type QuestGiver struct {
	Name             string `json:"name"`
	DialogueIntro    string `json:"dialogue_intro"`
	DialogueComplete string `json:"dialogue_complete"`
}

// Objective is a single quest step. Type is "principal" or "optionnel".
type Objective struct {
	ID          int     `json:"id"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	ClassBonus  *string `json:"class_bonus,omitempty"`
}

// MoralChoice is the quest's embedded binary decision point.
type MoralChoice struct {
	Description string       `json:"description"`
	OptionA     *MoralOption `json:"option_a,omitempty"`
	OptionB     *MoralOption `json:"option_b,omitempty"`
}

// MoralOption carries one branch of a moral choice. FactionImpact is a signed
// faction id, e.g. "+garde" or "-cercle".
type MoralOption struct {
	Label         string `json:"label"`
	Consequence   string `json:"consequence"`
	FactionImpact string `json:"faction_impact,omitempty"`
}

// Rewards lists what completing the quest grants. Reputation maps faction ids
// to signed affinity deltas.
type Rewards struct {
	XP              int            `json:"xp"`
	Gold            int            `json:"gold"`
	Item            *string        `json:"item,omitempty"`
	ItemDescription *string        `json:"item_description,omitempty"`
	Reputation      map[string]int `json:"reputation,omitempty"`
}

// CoherenceReport is the advisory verdict of the secondary verification pass.
// Score is nil when the pass itself failed; Verdict then carries the degraded
// marker and Issues the failure message.
type CoherenceReport struct {
	Score     *int      `json:"score"`
	Verdict   string    `json:"verdict"`
	Issues    []string  `json:"issues"`
	Strengths []string  `json:"strengths"`
	Meta      *CallMeta `json:"meta,omitempty"`
}

// VerdictCheckFailed marks a coherence pass that did not produce a usable
// verdict (transport failure or unparseable response).
const VerdictCheckFailed = "erreur d'analyse"

// DegradedCoherenceReport converts a coherence-pass failure into a data value
// so the primary quest flow is never blocked by the advisory pass.
func DegradedCoherenceReport(message string, meta *CallMeta) *CoherenceReport {
	return &CoherenceReport{
		Score:     nil,
		Verdict:   VerdictCheckFailed,
		Issues:    []string{message},
		Strengths: []string{},
		Meta:      meta,
	}
}

// CallMeta is the latency and token/cost accounting of a single model call.
// Read-only once produced.
type CallMeta struct {
	LatencyMS    int64   `json:"latency_ms"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	Model        string  `json:"model"`
}

// HistoryEntry is one generation kept in the session's bounded history.
type HistoryEntry struct {
	Quest     *Quest    `json:"quest"`
	Meta      *CallMeta `json:"meta"`
	Timestamp time.Time `json:"timestamp"`
}

// AcceptedQuest is one entry of the campaign timeline.
type AcceptedQuest struct {
	Quest      Quest     `json:"quest"`
	AcceptedAt time.Time `json:"accepted_at"`
}
