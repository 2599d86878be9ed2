package pipeline_test

import (
	"testing"

	"github.com/evtimahovich/talentflow/internal/models"
	"github.com/evtimahovich/talentflow/internal/pipeline"
)

func TestParseMentions(t *testing.T) {
	dms := []models.DecisionMaker{
		{ID: "dm1", Name: "Ivan Petrov"},
		{ID: "dm2", Name: "Anna Smith"},
		{ID: "dm3", Name: "Anna Smith"}, // duplicate name, both match
	}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single mention", "please check with @Ivan Petrov today", []string{"dm1"}},
		{"case sensitive", "ping @ivan petrov", nil},
		{"no at sign", "Ivan Petrov agreed", nil},
		{"duplicate names both match", "waiting on @Anna Smith", []string{"dm2", "dm3"}},
		{"multiple mentions", "@Ivan Petrov and @Anna Smith to review", []string{"dm1", "dm2", "dm3"}},
		{"empty text", "", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := pipeline.ParseMentions(tc.text, dms)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestParseMentions_NoDecisionMakers(t *testing.T) {
	if got := pipeline.ParseMentions("@Someone", nil); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
