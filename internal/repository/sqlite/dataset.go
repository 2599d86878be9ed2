package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evtimahovich/talentflow/internal/models"
)

// LoadDataset reads the whole pipeline state: companies with their
// decision-makers, vacancies with their events and candidates with their
// interaction history. Histories come back newest-first by insertion order
// (seq DESC), matching the engine's prepend discipline.
func (r *Repo) LoadDataset(ctx context.Context) (*models.Dataset, error) {
	ds := &models.Dataset{}

	companies, err := r.loadCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}
	ds.Companies = companies

	vacancies, err := r.loadVacancies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vacancies: %w", err)
	}
	ds.Vacancies = vacancies

	candidates, err := r.loadCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	ds.Candidates = candidates

	return ds, nil
}

func (r *Repo) loadCompanies(ctx context.Context) ([]models.Company, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, name, industry, size, location, founded FROM companies ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Company
	index := make(map[string]int)
	for rows.Next() {
		var c models.Company
		var industry, size, location sql.NullString
		var founded sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &industry, &size, &location, &founded); err != nil {
			return nil, err
		}
		c.Industry = industry.String
		c.Size = size.String
		c.Location = location.String
		c.Founded = int(founded.Int64)
		index[c.ID] = len(out)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dmRows, err := r.conn.QueryRows(ctx, `SELECT id, company_id, name, role, email, phone FROM decision_makers ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer dmRows.Close()

	for dmRows.Next() {
		var dm models.DecisionMaker
		var companyID string
		var role, email, phone sql.NullString
		if err := dmRows.Scan(&dm.ID, &companyID, &dm.Name, &role, &email, &phone); err != nil {
			return nil, err
		}
		dm.Role = role.String
		dm.Email = email.String
		dm.Phone = phone.String
		if i, ok := index[companyID]; ok {
			out[i].DecisionMakers = append(out[i].DecisionMakers, dm)
		}
	}

	return out, dmRows.Err()
}

func (r *Repo) loadVacancies(ctx context.Context) ([]models.Vacancy, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, title, company_id, recruiter_id, description, location, work_format, salary_range,
		 experience_years, requirements, responsibilities, conditions, status FROM vacancies ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Vacancy
	index := make(map[string]int)
	for rows.Next() {
		var v models.Vacancy
		var recruiterID, description, location, workFormat, salaryRange sql.NullString
		var expYears sql.NullInt64
		var reqs, resps, conds sql.NullString
		var status string
		if err := rows.Scan(&v.ID, &v.Title, &v.CompanyID, &recruiterID, &description, &location, &workFormat,
			&salaryRange, &expYears, &reqs, &resps, &conds, &status); err != nil {
			return nil, err
		}
		v.RecruiterID = recruiterID.String
		v.Description = description.String
		v.Location = location.String
		v.WorkFormat = workFormat.String
		v.SalaryRange = salaryRange.String
		v.ExperienceYears = int(expYears.Int64)
		v.Requirements = unmarshalStrings(reqs.String)
		v.Responsibilities = unmarshalStrings(resps.String)
		v.Conditions = unmarshalStrings(conds.String)
		v.Status = models.VacancyStatus(status)
		index[v.ID] = len(out)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	evRows, err := r.conn.QueryRows(ctx,
		`SELECT vacancy_id, date, user, action, details FROM vacancy_events ORDER BY seq DESC`)
	if err != nil {
		return nil, err
	}
	defer evRows.Close()

	for evRows.Next() {
		var vacancyID string
		var date int64
		var user, details sql.NullString
		var ev models.VacancyEvent
		if err := evRows.Scan(&vacancyID, &date, &user, &ev.Action, &details); err != nil {
			return nil, err
		}
		ev.Date = time.UnixMilli(date).UTC()
		ev.User = user.String
		ev.Details = details.String
		if i, ok := index[vacancyID]; ok {
			out[i].History = append(out[i].History, ev)
		}
	}

	return out, evRows.Err()
}

func (r *Repo) loadCandidates(ctx context.Context) ([]models.Candidate, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, name, position, email, phone, salary_expectation, experience_years, skills, status,
		 shortlisted, ai_analysis, company_id, vacancy_id FROM candidates ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Candidate
	index := make(map[string]int)
	for rows.Next() {
		var c models.Candidate
		var email, phone, salary, skills, analysis, companyID, vacancyID sql.NullString
		var expYears sql.NullInt64
		var status string
		var shortlisted int
		if err := rows.Scan(&c.ID, &c.Name, &c.Position, &email, &phone, &salary, &expYears, &skills,
			&status, &shortlisted, &analysis, &companyID, &vacancyID); err != nil {
			return nil, err
		}
		c.Email = email.String
		c.Phone = phone.String
		c.SalaryExpectation = salary.String
		c.ExperienceYears = int(expYears.Int64)
		c.Skills = unmarshalStrings(skills.String)
		c.Status = models.CandidateStatus(status)
		c.Shortlisted = shortlisted != 0
		c.CompanyID = companyID.String
		c.VacancyID = vacancyID.String
		if analysis.Valid && analysis.String != "" {
			var a models.AIAnalysis
			if err := json.Unmarshal([]byte(analysis.String), &a); err == nil {
				c.AIAnalysis = &a
			}
		}
		index[c.ID] = len(out)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itRows, err := r.conn.QueryRows(ctx,
		`SELECT id, candidate_id, date, type, user, details, status_before, status_after, mentions,
		 interview_date, interview_time, participants FROM interactions ORDER BY seq DESC`)
	if err != nil {
		return nil, err
	}
	defer itRows.Close()

	for itRows.Next() {
		var it models.Interaction
		var candidateID string
		var date int64
		var typ string
		var user, details, before, after, mentions, ivDate, ivTime, participants sql.NullString
		if err := itRows.Scan(&it.ID, &candidateID, &date, &typ, &user, &details, &before, &after,
			&mentions, &ivDate, &ivTime, &participants); err != nil {
			return nil, err
		}
		it.Date = time.UnixMilli(date).UTC()
		it.Type = models.InteractionType(typ)
		it.User = user.String
		it.Details = details.String
		it.StatusBefore = models.CandidateStatus(before.String)
		it.StatusAfter = models.CandidateStatus(after.String)
		it.Mentions = unmarshalStrings(mentions.String)
		it.InterviewDate = ivDate.String
		it.InterviewTime = ivTime.String
		it.Participants = unmarshalStrings(participants.String)
		if i, ok := index[candidateID]; ok {
			out[i].History = append(out[i].History, it)
		}
	}

	return out, itRows.Err()
}
