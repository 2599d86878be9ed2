package pipeline

import (
	"time"

	"github.com/evtimahovich/talentflow/internal/models"
)

// Read views. Each one is a pure derivation over the current state and the
// acting user, recomputed on every call; nothing here is cached.
//
// Client scoping note: candidates are matched to a client's vacancies by
// comparing the vacancy TITLE to the candidate POSITION string, not by
// candidate.VacancyID. Two companies with identically titled vacancies, or a
// position that drifts from the vacancy title, will leak or hide candidates.
// This mirrors the behavior the rest of the product was built against and is
// kept on purpose; a corrected filter would scope by vacancy id.

// VisibleCandidates returns the candidates the user may see, newest views
// computed from live state. Staff sees everything; a linked client sees only
// candidates whose position matches one of their company's vacancy titles; an
// unlinked client sees nothing.
func (e *Engine) VisibleCandidates(user models.User) []models.Candidate {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := []models.Candidate{}
	if user.Role == models.RoleClient {
		if user.CompanyID == "" {
			return out
		}
		titles := e.companyVacancyTitles(user.CompanyID, false)
		for _, id := range e.candidateOrder {
			c := e.candidates[id]
			if titles[c.Position] {
				out = append(out, *cloneCandidate(c))
			}
		}
		return out
	}

	for _, id := range e.candidateOrder {
		out = append(out, *cloneCandidate(e.candidates[id]))
	}
	return out
}

// VisibleVacancies returns all vacancies in the user's scope regardless of
// open/closed state.
func (e *Engine) VisibleVacancies(user models.User) []models.Vacancy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vacanciesInScope(user, false)
}

// ActiveVacancies narrows the same scoping to active vacancies only.
func (e *Engine) ActiveVacancies(user models.User) []models.Vacancy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vacanciesInScope(user, true)
}

func (e *Engine) vacanciesInScope(user models.User, activeOnly bool) []models.Vacancy {
	out := []models.Vacancy{}
	for _, id := range e.vacancyOrder {
		v := e.vacancies[id]
		if activeOnly && v.Status != models.VacancyActive {
			continue
		}
		if user.Role == models.RoleClient {
			if user.CompanyID == "" || v.CompanyID != user.CompanyID {
				continue
			}
		}
		out = append(out, *cloneVacancy(v))
	}
	return out
}

// companyVacancyTitles collects the titles of a company's vacancies.
// Callers must hold the lock.
func (e *Engine) companyVacancyTitles(companyID string, activeOnly bool) map[string]bool {
	titles := make(map[string]bool)
	for _, id := range e.vacancyOrder {
		v := e.vacancies[id]
		if v.CompanyID != companyID {
			continue
		}
		if activeOnly && v.Status != models.VacancyActive {
			continue
		}
		titles[v.Title] = true
	}
	return titles
}

// VisibleCompanies returns every company for staff, the user's own company
// for a linked client and nothing for an unlinked one.
func (e *Engine) VisibleCompanies(user models.User) []models.Company {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := []models.Company{}
	for _, id := range e.companyOrder {
		if user.Role == models.RoleClient && id != user.CompanyID {
			continue
		}
		out = append(out, *cloneCompany(e.companies[id]))
	}
	return out
}

// Candidate returns a deep copy of one candidate.
func (e *Engine) Candidate(id string) (*models.Candidate, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.candidates[id]
	if !ok {
		return nil, notFound("candidate", id)
	}
	return cloneCandidate(c), nil
}

// Vacancy returns a deep copy of one vacancy.
func (e *Engine) Vacancy(id string) (*models.Vacancy, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, ok := e.vacancies[id]
	if !ok {
		return nil, notFound("vacancy", id)
	}
	return cloneVacancy(v), nil
}

// CandidateDecisionMakers resolves the decision-makers of the candidate's
// company; empty when the candidate is not assigned to a company yet.
func (e *Engine) CandidateDecisionMakers(candidateID string) ([]models.DecisionMaker, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.candidates[candidateID]
	if !ok {
		return nil, notFound("candidate", candidateID)
	}
	if c.CompanyID == "" {
		return nil, nil
	}
	company, ok := e.companies[c.CompanyID]
	if !ok {
		return nil, nil
	}
	return append([]models.DecisionMaker(nil), company.DecisionMakers...), nil
}

// CandidateExport is the fully resolved single-candidate view handed to the
// document exporter: every field plus the full history, with company and
// vacancy names already looked up. The engine does not format documents.
type CandidateExport struct {
	Candidate    models.Candidate `json:"candidate"`
	CompanyName  string           `json:"company_name,omitempty"`
	VacancyTitle string           `json:"vacancy_title,omitempty"`
	ExportedAt   time.Time        `json:"exported_at"`
}

// Export builds the export view for one candidate.
func (e *Engine) Export(candidateID string) (*CandidateExport, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.candidates[candidateID]
	if !ok {
		return nil, notFound("candidate", candidateID)
	}

	out := &CandidateExport{Candidate: *cloneCandidate(c), ExportedAt: e.now()}
	if c.CompanyID != "" {
		if company, ok := e.companies[c.CompanyID]; ok {
			out.CompanyName = company.Name
		}
	}
	if c.VacancyID != "" {
		if v, ok := e.vacancies[c.VacancyID]; ok {
			out.VacancyTitle = v.Title
		}
	}
	return out, nil
}

// Snapshot deep-copies the whole dataset, mainly for tests and diagnostics.
func (e *Engine) Snapshot() *models.Dataset {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ds := &models.Dataset{}
	for _, id := range e.companyOrder {
		ds.Companies = append(ds.Companies, *cloneCompany(e.companies[id]))
	}
	for _, id := range e.vacancyOrder {
		ds.Vacancies = append(ds.Vacancies, *cloneVacancy(e.vacancies[id]))
	}
	for _, id := range e.candidateOrder {
		ds.Candidates = append(ds.Candidates, *cloneCandidate(e.candidates[id]))
	}
	return ds
}
