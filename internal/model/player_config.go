package model

// Supported model variants and their default.
const (
	ModelSonnet = "claude-sonnet-4-20250514"
	ModelHaiku  = "claude-haiku-4-5-20251001"
)

// Affinity bounds. An affinity of 0 is represented by the absence of an
// entry, never by a stored zero.
const (
	AffinityMin = -3
	AffinityMax = 3
)

// Player level bounds.
const (
	LevelMin = 1
	LevelMax = 20
)

// PlayerConfig is the mutable per-session player profile driving prompt
// construction. A session owns exactly one instance; it is mutated only by
// the session's transition handlers.
type PlayerConfig struct {
	PlayerClass       string         `json:"player_class"`
	PlayerLevel       int            `json:"player_level"`
	QuestType         string         `json:"quest_type"`
	CompletedQuests   []string       `json:"completed_quests"`
	FactionAffinities map[string]int `json:"faction_affinities"`
	Model             string         `json:"model"`
	Temperature       float64        `json:"temperature"`
}

// DefaultPlayerConfig returns the profile a fresh session starts with.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		PlayerClass:       "guerrier",
		PlayerLevel:       5,
		QuestType:         "investigation",
		CompletedQuests:   []string{},
		FactionAffinities: map[string]int{},
		Model:             ModelSonnet,
		Temperature:       0.85,
	}
}

// Clone returns a deep copy, safe to hand out in snapshots or to read outside
// the session lock.
func (c PlayerConfig) Clone() PlayerConfig {
	out := c
	out.CompletedQuests = make([]string, len(c.CompletedQuests))
	copy(out.CompletedQuests, c.CompletedQuests)
	out.FactionAffinities = make(map[string]int, len(c.FactionAffinities))
	for id, level := range c.FactionAffinities {
		out.FactionAffinities[id] = level
	}
	return out
}

// ClampAffinity bounds an affinity level to [AffinityMin, AffinityMax].
func ClampAffinity(level int) int {
	if level < AffinityMin {
		return AffinityMin
	}
	if level > AffinityMax {
		return AffinityMax
	}
	return level
}
