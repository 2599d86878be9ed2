package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/evtimahovich/talentflow/internal/models"
)

type fakeGenerator struct {
	out string
	err error
	// captured prompt for assertions
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"plain json", `{"score": 87, "breakdown": {"hard_skills": 38, "experience": 27, "salary": 15, "bonus": 7}, "summary": "good"}`, 87, false},
		{"json wrapped in prose", "Here is my assessment:\n```json\n{\"score\": 42, \"breakdown\": {}, \"summary\": \"meh\"}\n```", 42, false},
		{"empty", "", 0, true},
		{"no json", "I cannot assess this candidate.", 0, true},
		{"score too high", `{"score": 180, "breakdown": {}}`, 0, true},
		{"negative score", `{"score": -5, "breakdown": {}}`, 0, true},
		{"malformed", `{"score": "high"}`, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := ParseAnalysis(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", a)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAnalysis: %v", err)
			}
			if a.Score != tc.want {
				t.Fatalf("score = %d, want %d", a.Score, tc.want)
			}
		})
	}
}

func TestEngine_Score(t *testing.T) {
	fake := &fakeGenerator{out: `{"score": 73, "breakdown": {"hard_skills": 30, "experience": 25, "salary": 13, "bonus": 5}, "summary": "solid"}`}
	e := &Engine{client: fake}

	candidate := models.Candidate{Name: "Mikhail Orlov", Position: "Go Backend Developer", Skills: []string{"Go", "gRPC"}, ExperienceYears: 5}
	vacancy := models.Vacancy{Title: "Go Backend Developer", Requirements: []string{"Go", "PostgreSQL"}, ExperienceYears: 4}

	a, err := e.Score(context.Background(), candidate, vacancy)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if a.Score != 73 || a.Breakdown.HardSkills != 30 {
		t.Fatalf("unexpected analysis: %+v", a)
	}

	for _, want := range []string{"Mikhail Orlov", "Go Backend Developer", "Go, gRPC", "Go, PostgreSQL"} {
		if !strings.Contains(fake.prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, fake.prompt)
		}
	}
}

func TestEngine_Score_GeneratorError(t *testing.T) {
	fake := &fakeGenerator{err: errors.New("model down")}
	e := &Engine{client: fake}

	if _, err := e.Score(context.Background(), models.Candidate{}, models.Vacancy{}); err == nil {
		t.Fatal("expected error when generator fails")
	}
}

func TestExtractJSON(t *testing.T) {
	if got := extractJSON("abc {\"a\":1} def"); got != `{"a":1}` {
		t.Fatalf("got %q", got)
	}
	if got := extractJSON("} {"); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
