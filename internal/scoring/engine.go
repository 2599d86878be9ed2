package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/evtimahovich/talentflow/internal/models"
)

// promptTemplate asks the model for a strict JSON match assessment of a
// candidate against a vacancy.
const promptTemplate = `You are a technical recruiter assistant.
Assess how well the candidate matches the vacancy and answer with a single JSON object:
{"score": <0-100>, "breakdown": {"hard_skills": <0-40>, "experience": <0-30>, "salary": <0-20>, "bonus": <0-10>}, "summary": "<one short paragraph>"}

Vacancy: {{.Vacancy.Title}}
Requirements: {{join .Vacancy.Requirements ", "}}
Experience required: {{.Vacancy.ExperienceYears}} years
Salary range: {{.Vacancy.SalaryRange}}

Candidate: {{.Candidate.Name}}, {{.Candidate.Position}}
Skills: {{join .Candidate.Skills ", "}}
Experience: {{.Candidate.ExperienceYears}} years
Salary expectation: {{.Candidate.SalaryExpectation}}`

// generator is the slice of Client the engine needs; tests substitute fakes.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine turns a candidate/vacancy pair into an AIAnalysis via the model.
type Engine struct {
	client generator
}

func NewEngine(client *Client) *Engine {
	return &Engine{client: client}
}

// Score renders the prompt, queries the model and parses the structured
// response. Scoring is advisory: callers attach the result when it arrives
// and pipeline commands never wait for it.
func (e *Engine) Score(ctx context.Context, candidate models.Candidate, vacancy models.Vacancy) (*models.AIAnalysis, error) {
	prompt, err := renderPrompt(candidate, vacancy)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	out, err := e.client.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	return ParseAnalysis(out)
}

func renderPrompt(candidate models.Candidate, vacancy models.Vacancy) (string, error) {
	tpl, err := template.New("match").Funcs(template.FuncMap{"join": strings.Join}).Parse(promptTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	data := map[string]any{"Candidate": candidate, "Vacancy": vacancy}
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// ParseAnalysis extracts a JSON object from arbitrary model output and
// validates the score range. Model output often wraps the JSON in prose or
// markdown, so everything outside the outermost braces is discarded.
func ParseAnalysis(s string) (*models.AIAnalysis, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("empty response")
	}

	j := extractJSON(s)
	if j == "" {
		return nil, errors.New("no JSON object found in response")
	}

	var a models.AIAnalysis
	if err := json.Unmarshal([]byte(j), &a); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	if a.Score < 0 || a.Score > 100 {
		return nil, fmt.Errorf("score %d out of range", a.Score)
	}

	return &a, nil
}

// extractJSON returns the substring from the first '{' to the last '}' in the
// input.
func extractJSON(s string) string {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last < first {
		return ""
	}
	return s[first : last+1]
}
