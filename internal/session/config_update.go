package session

import (
	"fmt"

	"quest-forge/internal/model"
)

// ConfigUpdate is a partial update of the player configuration. Nil fields
// are left untouched; FactionAffinities, when present, replaces the whole
// map.
type ConfigUpdate struct {
	PlayerClass       *string         `json:"player_class,omitempty"`
	PlayerLevel       *int            `json:"player_level,omitempty"`
	QuestType         *string         `json:"quest_type,omitempty"`
	CompletedQuests   *[]string       `json:"completed_quests,omitempty"`
	FactionAffinities *map[string]int `json:"faction_affinities,omitempty"`
	Model             *string         `json:"model,omitempty"`
	Temperature       *float64        `json:"temperature,omitempty"`
}

// UpdateConfig validates and applies a partial configuration update. The
// update is all-or-nothing: any invalid field rejects the whole call with
// model.ErrInvalidInput and leaves the configuration unchanged.
func (s *Session) UpdateConfig(upd ConfigUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg.Clone()

	if upd.PlayerClass != nil {
		if _, ok := s.world.ClassByID(*upd.PlayerClass); !ok {
			return fmt.Errorf("%w: unknown player class %q", model.ErrInvalidInput, *upd.PlayerClass)
		}
		next.PlayerClass = *upd.PlayerClass
	}
	if upd.PlayerLevel != nil {
		if *upd.PlayerLevel < model.LevelMin || *upd.PlayerLevel > model.LevelMax {
			return fmt.Errorf("%w: player level %d out of range", model.ErrInvalidInput, *upd.PlayerLevel)
		}
		next.PlayerLevel = *upd.PlayerLevel
	}
	if upd.QuestType != nil {
		if _, ok := s.world.QuestTypeByID(*upd.QuestType); !ok {
			return fmt.Errorf("%w: unknown quest type %q", model.ErrInvalidInput, *upd.QuestType)
		}
		next.QuestType = *upd.QuestType
	}
	if upd.CompletedQuests != nil {
		quests := make([]string, len(*upd.CompletedQuests))
		copy(quests, *upd.CompletedQuests)
		next.CompletedQuests = quests
	}
	if upd.FactionAffinities != nil {
		affinities := make(map[string]int, len(*upd.FactionAffinities))
		for factionID, level := range *upd.FactionAffinities {
			if _, ok := s.world.FactionByID(factionID); !ok {
				return fmt.Errorf("%w: unknown faction %q", model.ErrInvalidInput, factionID)
			}
			if level < model.AffinityMin || level > model.AffinityMax {
				return fmt.Errorf("%w: affinity %d for %q out of range", model.ErrInvalidInput, level, factionID)
			}
			if level == 0 {
				continue
			}
			affinities[factionID] = level
		}
		next.FactionAffinities = affinities
	}
	if upd.Model != nil {
		if *upd.Model != model.ModelSonnet && *upd.Model != model.ModelHaiku {
			return fmt.Errorf("%w: unknown model %q", model.ErrInvalidInput, *upd.Model)
		}
		next.Model = *upd.Model
	}
	if upd.Temperature != nil {
		if *upd.Temperature < 0 || *upd.Temperature > 1 {
			return fmt.Errorf("%w: temperature %.2f out of range", model.ErrInvalidInput, *upd.Temperature)
		}
		next.Temperature = *upd.Temperature
	}

	s.cfg = next
	return nil
}
