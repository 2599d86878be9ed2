package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/evtimahovich/talentflow/internal/models"
)

// Write-through sinks for the pipeline engine. Rows are upserted by id;
// interactions and vacancy events are append-only and ordered by insertion
// (seq), never by timestamp.

func (r *Repo) SaveCompany(ctx context.Context, c *models.Company) error {
	if c == nil {
		return fmt.Errorf("company is nil")
	}

	_, err := r.conn.Exec(ctx,
		`INSERT INTO companies (id, name, industry, size, location, founded, updated) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, industry = excluded.industry, size = excluded.size,
		 location = excluded.location, founded = excluded.founded, updated = excluded.updated`,
		c.ID, c.Name, c.Industry, c.Size, c.Location, c.Founded, now())
	if err != nil {
		return err
	}

	// decision-makers are append-only; existing rows stay untouched
	for _, dm := range c.DecisionMakers {
		if _, err := r.conn.Exec(ctx,
			`INSERT OR IGNORE INTO decision_makers (id, company_id, name, role, email, phone) VALUES (?, ?, ?, ?, ?, ?)`,
			dm.ID, c.ID, dm.Name, dm.Role, dm.Email, dm.Phone); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repo) SaveVacancy(ctx context.Context, v *models.Vacancy) error {
	if v == nil {
		return fmt.Errorf("vacancy is nil")
	}

	_, err := r.conn.Exec(ctx,
		`INSERT INTO vacancies (id, title, company_id, recruiter_id, description, location, work_format, salary_range,
		 experience_years, requirements, responsibilities, conditions, status, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, description = excluded.description,
		 location = excluded.location, work_format = excluded.work_format, salary_range = excluded.salary_range,
		 experience_years = excluded.experience_years, requirements = excluded.requirements,
		 responsibilities = excluded.responsibilities, conditions = excluded.conditions,
		 status = excluded.status, updated = excluded.updated`,
		v.ID, v.Title, v.CompanyID, v.RecruiterID, v.Description, v.Location, v.WorkFormat, v.SalaryRange,
		v.ExperienceYears, marshalStrings(v.Requirements), marshalStrings(v.Responsibilities),
		marshalStrings(v.Conditions), string(v.Status), now())
	return err
}

func (r *Repo) SaveCandidate(ctx context.Context, c *models.Candidate) error {
	if c == nil {
		return fmt.Errorf("candidate is nil")
	}

	var analysis any
	if c.AIAnalysis != nil {
		b, err := json.Marshal(c.AIAnalysis)
		if err != nil {
			return fmt.Errorf("marshal ai analysis: %w", err)
		}
		analysis = string(b)
	}

	_, err := r.conn.Exec(ctx,
		`INSERT INTO candidates (id, name, position, email, phone, salary_expectation, experience_years, skills,
		 status, shortlisted, ai_analysis, company_id, vacancy_id, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, position = excluded.position, email = excluded.email,
		 phone = excluded.phone, salary_expectation = excluded.salary_expectation,
		 experience_years = excluded.experience_years, skills = excluded.skills, status = excluded.status,
		 shortlisted = excluded.shortlisted, ai_analysis = excluded.ai_analysis,
		 company_id = excluded.company_id, vacancy_id = excluded.vacancy_id, updated = excluded.updated`,
		c.ID, c.Name, c.Position, c.Email, c.Phone, c.SalaryExpectation, c.ExperienceYears,
		marshalStrings(c.Skills), string(c.Status), boolToInt(c.Shortlisted), analysis,
		nullable(c.CompanyID), nullable(c.VacancyID), now())
	return err
}

func (r *Repo) AppendInteraction(ctx context.Context, candidateID string, it *models.Interaction) error {
	if it == nil {
		return fmt.Errorf("interaction is nil")
	}

	_, err := r.conn.Exec(ctx,
		`INSERT OR IGNORE INTO interactions (id, candidate_id, date, type, user, details, status_before, status_after,
		 mentions, interview_date, interview_time, participants)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, candidateID, it.Date.UTC().UnixMilli(), string(it.Type), it.User, it.Details,
		nullable(string(it.StatusBefore)), nullable(string(it.StatusAfter)),
		nullableList(it.Mentions), nullable(it.InterviewDate), nullable(it.InterviewTime),
		nullableList(it.Participants))
	return err
}

func (r *Repo) AppendVacancyEvent(ctx context.Context, vacancyID string, ev *models.VacancyEvent) error {
	if ev == nil {
		return fmt.Errorf("vacancy event is nil")
	}

	_, err := r.conn.Exec(ctx,
		`INSERT INTO vacancy_events (vacancy_id, date, user, action, details) VALUES (?, ?, ?, ?, ?)`,
		vacancyID, ev.Date.UTC().UnixMilli(), ev.User, ev.Action, ev.Details)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableList(v []string) any {
	if len(v) == 0 {
		return nil
	}
	return marshalStrings(v)
}
