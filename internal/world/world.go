// Package world holds the read-only Cendrebourg reference dataset: the lore
// injected into prompts (factions, locations, key NPCs) and the taxonomies
// driving player configuration (quest types, player classes).
package world

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/world.yaml
var worldYAML []byte

// World describes the setting itself.
type World struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Era         string `yaml:"era" json:"era"`
}

// Faction is one of the powers of Cendrebourg.
type Faction struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Leader      string `yaml:"leader" json:"leader"`
	Alignment   string `yaml:"alignment" json:"alignment"`
}

// Location is a named place with an established danger level (1-5).
type Location struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Description string `yaml:"description" json:"description"`
	DangerLevel int    `yaml:"danger_level" json:"danger_level"`
}

// NPC is an established key character. Faction is a faction id or free text
// for characters outside the faction system.
type NPC struct {
	Name    string `yaml:"name" json:"name"`
	Role    string `yaml:"role" json:"role"`
	Faction string `yaml:"faction" json:"faction"`
	Notes   string `yaml:"notes" json:"notes"`
}

// QuestType is an entry of the quest-type taxonomy.
type QuestType struct {
	ID          string `yaml:"id" json:"id"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description"`
}

// PlayerClass is an entry of the player-class taxonomy.
type PlayerClass struct {
	ID        string `yaml:"id" json:"id"`
	Label     string `yaml:"label" json:"label"`
	Strengths string `yaml:"strengths" json:"strengths"`
}

// Data is the full immutable reference dataset.
type Data struct {
	World                  World         `yaml:"world" json:"world"`
	Factions               []Faction     `yaml:"factions" json:"factions"`
	Locations              []Location    `yaml:"locations" json:"locations"`
	KeyNPCs                []NPC         `yaml:"key_npcs" json:"key_npcs"`
	QuestTypes             []QuestType   `yaml:"quest_types" json:"quest_types"`
	PlayerClasses          []PlayerClass `yaml:"player_classes" json:"player_classes"`
	CompletedQuestExamples []string      `yaml:"completed_quest_examples" json:"completed_quest_examples"`
}

// Load decodes the embedded dataset and verifies its internal consistency.
func Load() (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(worldYAML, &d); err != nil {
		return nil, fmt.Errorf("failed to decode world dataset: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("invalid world dataset: %w", err)
	}
	return &d, nil
}

func (d *Data) validate() error {
	if d.World.Name == "" {
		return fmt.Errorf("world name is empty")
	}
	seen := map[string]string{}
	check := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("%s with empty id", kind)
		}
		key := kind + ":" + id
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate %s id %q", kind, id)
		}
		seen[key] = id
		return nil
	}
	for _, f := range d.Factions {
		if err := check("faction", f.ID); err != nil {
			return err
		}
	}
	for _, l := range d.Locations {
		if err := check("location", l.ID); err != nil {
			return err
		}
		if l.DangerLevel < 1 || l.DangerLevel > 5 {
			return fmt.Errorf("location %q has danger level %d outside 1..5", l.ID, l.DangerLevel)
		}
	}
	for _, q := range d.QuestTypes {
		if err := check("quest type", q.ID); err != nil {
			return err
		}
	}
	for _, c := range d.PlayerClasses {
		if err := check("player class", c.ID); err != nil {
			return err
		}
	}
	return nil
}

// FactionByID looks up a faction by its id.
func (d *Data) FactionByID(id string) (Faction, bool) {
	for _, f := range d.Factions {
		if f.ID == id {
			return f, true
		}
	}
	return Faction{}, false
}

// LocationByID looks up a location by its id.
func (d *Data) LocationByID(id string) (Location, bool) {
	for _, l := range d.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}

// QuestTypeByID looks up a quest type by its id.
func (d *Data) QuestTypeByID(id string) (QuestType, bool) {
	for _, q := range d.QuestTypes {
		if q.ID == id {
			return q, true
		}
	}
	return QuestType{}, false
}

// ClassByID looks up a player class by its id.
func (d *Data) ClassByID(id string) (PlayerClass, bool) {
	for _, c := range d.PlayerClasses {
		if c.ID == id {
			return c, true
		}
	}
	return PlayerClass{}, false
}

// ClassLabel returns the display label for a class id, falling back to the id
// itself for unknown values.
func (d *Data) ClassLabel(id string) string {
	if c, ok := d.ClassByID(id); ok {
		return c.Label
	}
	return id
}

// QuestTypeLabel returns the display label for a quest-type id, falling back
// to the id itself for unknown values.
func (d *Data) QuestTypeLabel(id string) string {
	if q, ok := d.QuestTypeByID(id); ok {
		return q.Label
	}
	return id
}
