package pipeline

import (
	"strings"

	"github.com/evtimahovich/talentflow/internal/models"
)

// ParseMentions extracts decision-maker ids referenced in a comment via the
// @FullName pattern. Matching is exact full-name string comparison, case
// sensitive, so decision-makers with duplicate names all match and cannot be
// told apart; every matching id is returned, in decision-maker order, once.
func ParseMentions(text string, decisionMakers []models.DecisionMaker) []string {
	if text == "" || len(decisionMakers) == 0 {
		return nil
	}

	var ids []string
	seen := make(map[string]bool)
	for _, dm := range decisionMakers {
		if dm.Name == "" || seen[dm.ID] {
			continue
		}
		if strings.Contains(text, "@"+dm.Name) {
			ids = append(ids, dm.ID)
			seen[dm.ID] = true
		}
	}
	return ids
}
