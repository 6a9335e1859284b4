// Package export serializes quests and campaigns as pretty-printed JSON
// documents for download, and derives their filenames. It performs no I/O:
// the file-emission mechanics belong to the caller.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"quest-forge/internal/model"
)

const (
	slugMaxLen       = 30
	campaignFilename = "campagne-cendrebourg.json"
)

// QuestDocument renders a single quest with 2-space indentation.
func QuestDocument(q *model.Quest) ([]byte, error) {
	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize quest: %w", err)
	}
	return append(data, '\n'), nil
}

// CampaignDocument renders the full campaign timeline with 2-space
// indentation.
func CampaignDocument(campaign []model.AcceptedQuest) ([]byte, error) {
	data, err := json.MarshalIndent(campaign, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize campaign: %w", err)
	}
	return append(data, '\n'), nil
}

// QuestFilename derives a download filename from the quest title: lowercased,
// whitespace collapsed to hyphens, capped at 30 runes, with "export" as the
// fallback for empty titles.
func QuestFilename(title string) string {
	slug := slugify(title)
	if slug == "" {
		slug = "export"
	}
	return fmt.Sprintf("quest-%s.json", slug)
}

// CampaignFilename is fixed: the campaign is one document per session.
func CampaignFilename() string {
	return campaignFilename
}

func slugify(title string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsSpace(r) {
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
			continue
		}
		b.WriteRune(r)
		lastHyphen = false
	}
	runes := []rune(b.String())
	if len(runes) > slugMaxLen {
		runes = runes[:slugMaxLen]
	}
	return string(runes)
}
