package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evtimahovich/talentflow/internal/models"
	"github.com/evtimahovich/talentflow/pkg/repository"
)

// Engine is the candidate pipeline: an in-memory store of companies,
// vacancies and candidates mutated only through the command methods below.
// All reads return deep copies, so the only way to observe a change is to
// issue a command. State is process-local; an optional write-through store
// persists mutations as a side effect and its failures never fail a command.
//
// The engine is deliberately permissive where the UI layer owns policy:
// empty comments and close/reopen reasons are accepted here and rejected at
// the API boundary.
type Engine struct {
	mu     sync.RWMutex
	logger *slog.Logger
	store  repository.PipelineStore

	companies  map[string]*models.Company
	vacancies  map[string]*models.Vacancy
	candidates map[string]*models.Candidate

	// insertion order, so read views are deterministic
	companyOrder   []string
	vacancyOrder   []string
	candidateOrder []string

	now   func() time.Time
	newID func() string
}

// NewEngine builds an engine seeded from the dataset. store may be nil when
// running without persistence (tests, ephemeral sessions).
func NewEngine(seed *models.Dataset, store repository.PipelineStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		logger:     logger,
		store:      store,
		companies:  make(map[string]*models.Company),
		vacancies:  make(map[string]*models.Vacancy),
		candidates: make(map[string]*models.Candidate),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}

	if seed != nil {
		for i := range seed.Companies {
			c := cloneCompany(&seed.Companies[i])
			e.companies[c.ID] = c
			e.companyOrder = append(e.companyOrder, c.ID)
		}
		for i := range seed.Vacancies {
			v := cloneVacancy(&seed.Vacancies[i])
			e.vacancies[v.ID] = v
			e.vacancyOrder = append(e.vacancyOrder, v.ID)
		}
		for i := range seed.Candidates {
			c := cloneCandidate(&seed.Candidates[i])
			e.candidates[c.ID] = c
			e.candidateOrder = append(e.candidateOrder, c.ID)
		}
	}

	return e
}

// persist runs one write-through operation and logs instead of failing:
// the in-memory state is authoritative for the session.
func (e *Engine) persist(ctx context.Context, op string, fn func(context.Context) error) {
	if e.store == nil {
		return
	}
	if err := fn(ctx); err != nil {
		e.logger.Error("pipeline write-through failed", slog.String("op", op), slog.Any("err", err))
	}
}

// logInteraction stamps and prepends an audit entry so History[0] is always
// the newest. Entries are never edited or removed afterwards.
func (e *Engine) logInteraction(c *models.Candidate, it models.Interaction) models.Interaction {
	it.ID = e.newID()
	it.Date = e.now()
	c.History = append([]models.Interaction{it}, c.History...)
	return it
}

// ChangeStatus moves a candidate to newStatus and records the transition.
// Re-selecting the current status degrades to a plain comment entry without
// before/after markers. Moving to rejected or blacklist always clears the
// shortlist flag. The transition graph is intentionally unrestricted:
// recruiting workflows need exception paths such as new → blacklist.
func (e *Engine) ChangeStatus(ctx context.Context, actor models.User, candidateID string, newStatus models.CandidateStatus, comment string) error {
	if !newStatus.Valid() {
		return fmt.Errorf("invalid candidate status %q", newStatus)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.candidates[candidateID]
	if !ok {
		return notFound("candidate", candidateID)
	}

	prev := c.Status
	c.Status = newStatus
	if newStatus.ClearsShortlist() {
		c.Shortlisted = false
	}

	it := models.Interaction{
		Type:    models.InteractionComment,
		User:    actor.Name,
		Details: comment,
	}
	if newStatus != prev {
		it.Type = models.InteractionStatusChange
		it.StatusBefore = prev
		it.StatusAfter = newStatus
	}
	logged := e.logInteraction(c, it)

	e.persist(ctx, "change_status", func(ctx context.Context) error {
		if err := e.store.SaveCandidate(ctx, cloneCandidate(c)); err != nil {
			return err
		}
		return e.store.AppendInteraction(ctx, c.ID, &logged)
	})

	return nil
}

// AddComment appends a comment entry. Mentions are decision-maker ids already
// resolved by the caller (see ParseMentions); the engine stores them as-is.
// Status and shortlist are untouched.
func (e *Engine) AddComment(ctx context.Context, actor models.User, candidateID, text string, mentions []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.candidates[candidateID]
	if !ok {
		return notFound("candidate", candidateID)
	}

	logged := e.logInteraction(c, models.Interaction{
		Type:     models.InteractionComment,
		User:     actor.Name,
		Details:  text,
		Mentions: append([]string(nil), mentions...),
	})

	e.persist(ctx, "add_comment", func(ctx context.Context) error {
		return e.store.AppendInteraction(ctx, c.ID, &logged)
	})

	return nil
}

// ToggleShortlist flips the shortlist flag without an audit entry. Unlike the
// status path there is no guard here against shortlisting a rejected or
// blacklisted candidate; that matches the source behavior this engine keeps.
func (e *Engine) ToggleShortlist(ctx context.Context, actor models.User, candidateID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.candidates[candidateID]
	if !ok {
		return notFound("candidate", candidateID)
	}

	c.Shortlisted = !c.Shortlisted

	e.persist(ctx, "toggle_shortlist", func(ctx context.Context) error {
		return e.store.SaveCandidate(ctx, cloneCandidate(c))
	})

	return nil
}

// AssignToVacancy links each candidate to the vacancy and its company and
// forces the status to sent_to_client, even for candidates already further
// along the pipeline: every (re)assignment restarts the client track, and the
// logged entry keeps the prior stage. A missing vacancy no-ops the whole
// batch; unknown candidate ids are skipped.
func (e *Engine) AssignToVacancy(ctx context.Context, actor models.User, candidateIDs []string, vacancyID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.vacancies[vacancyID]
	if !ok {
		return notFound("vacancy", vacancyID)
	}

	for _, id := range candidateIDs {
		c, ok := e.candidates[id]
		if !ok {
			e.logger.Warn("assign: unknown candidate skipped", slog.String("candidate_id", id))
			continue
		}

		prev := c.Status
		c.VacancyID = v.ID
		c.CompanyID = v.CompanyID
		c.Status = models.StatusSentToClient

		logged := e.logInteraction(c, models.Interaction{
			Type:         models.InteractionStatusChange,
			User:         actor.Name,
			Details:      fmt.Sprintf("Assigned to vacancy %q", v.Title),
			StatusBefore: prev,
			StatusAfter:  models.StatusSentToClient,
		})

		e.persist(ctx, "assign_to_vacancy", func(ctx context.Context) error {
			if err := e.store.SaveCandidate(ctx, cloneCandidate(c)); err != nil {
				return err
			}
			return e.store.AppendInteraction(ctx, c.ID, &logged)
		})
	}

	return nil
}

// ScheduleInterview records an interview_scheduled entry for the candidate.
func (e *Engine) ScheduleInterview(ctx context.Context, actor models.User, candidateID, date, timeOfDay string, participants []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.candidates[candidateID]
	if !ok {
		return notFound("candidate", candidateID)
	}

	logged := e.logInteraction(c, models.Interaction{
		Type:          models.InteractionInterviewScheduled,
		User:          actor.Name,
		Details:       fmt.Sprintf("Interview scheduled for %s %s", date, timeOfDay),
		InterviewDate: date,
		InterviewTime: timeOfDay,
		Participants:  append([]string(nil), participants...),
	})

	e.persist(ctx, "schedule_interview", func(ctx context.Context) error {
		return e.store.AppendInteraction(ctx, c.ID, &logged)
	})

	return nil
}

// logVacancyEvent stamps and prepends an event on a vacancy's history.
func (e *Engine) logVacancyEvent(v *models.Vacancy, action, details, user string) models.VacancyEvent {
	ev := models.VacancyEvent{Date: e.now(), User: user, Action: action, Details: details}
	v.History = append([]models.VacancyEvent{ev}, v.History...)
	return ev
}

// CloseVacancy marks the vacancy closed and logs the reason. Closing an
// already-closed vacancy still appends an entry: history logs attempts.
func (e *Engine) CloseVacancy(ctx context.Context, actor models.User, vacancyID, reason string) error {
	return e.setVacancyStatus(ctx, actor, vacancyID, models.VacancyClosed, "closed", reason)
}

// ReopenVacancy marks the vacancy active again and logs the reason.
func (e *Engine) ReopenVacancy(ctx context.Context, actor models.User, vacancyID, reason string) error {
	return e.setVacancyStatus(ctx, actor, vacancyID, models.VacancyActive, "reopened", reason)
}

func (e *Engine) setVacancyStatus(ctx context.Context, actor models.User, vacancyID string, status models.VacancyStatus, action, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.vacancies[vacancyID]
	if !ok {
		return notFound("vacancy", vacancyID)
	}

	v.Status = status
	ev := e.logVacancyEvent(v, action, reason, actor.Name)

	e.persist(ctx, action+"_vacancy", func(ctx context.Context) error {
		if err := e.store.SaveVacancy(ctx, cloneVacancy(v)); err != nil {
			return err
		}
		return e.store.AppendVacancyEvent(ctx, v.ID, &ev)
	})

	return nil
}

// CreateCompany registers a company and returns its id.
func (e *Engine) CreateCompany(ctx context.Context, actor models.User, company models.Company) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if company.ID == "" {
		company.ID = e.newID()
	}
	if _, exists := e.companies[company.ID]; exists {
		return "", fmt.Errorf("company %s already exists", company.ID)
	}

	c := cloneCompany(&company)
	e.companies[c.ID] = c
	e.companyOrder = append(e.companyOrder, c.ID)

	e.persist(ctx, "create_company", func(ctx context.Context) error {
		return e.store.SaveCompany(ctx, cloneCompany(c))
	})

	return c.ID, nil
}

// AddDecisionMaker appends a contact to a company. Decision-makers are only
// ever appended, never replaced.
func (e *Engine) AddDecisionMaker(ctx context.Context, actor models.User, companyID string, dm models.DecisionMaker) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.companies[companyID]
	if !ok {
		return "", notFound("company", companyID)
	}

	if dm.ID == "" {
		dm.ID = e.newID()
	}
	c.DecisionMakers = append(c.DecisionMakers, dm)

	e.persist(ctx, "add_decision_maker", func(ctx context.Context) error {
		return e.store.SaveCompany(ctx, cloneCompany(c))
	})

	return dm.ID, nil
}

// CreateVacancy opens a requisition under an existing company and returns its
// id. The creating recruiter is recorded and an initial history entry logged.
func (e *Engine) CreateVacancy(ctx context.Context, actor models.User, vacancy models.Vacancy) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.companies[vacancy.CompanyID]; !ok {
		return "", notFound("company", vacancy.CompanyID)
	}

	if vacancy.ID == "" {
		vacancy.ID = e.newID()
	}
	if _, exists := e.vacancies[vacancy.ID]; exists {
		return "", fmt.Errorf("vacancy %s already exists", vacancy.ID)
	}
	if vacancy.RecruiterID == "" {
		vacancy.RecruiterID = actor.ID
	}
	if vacancy.Status == "" {
		vacancy.Status = models.VacancyActive
	}

	v := cloneVacancy(&vacancy)
	e.logVacancyEvent(v, "created", "", actor.Name)
	e.vacancies[v.ID] = v
	e.vacancyOrder = append(e.vacancyOrder, v.ID)

	e.persist(ctx, "create_vacancy", func(ctx context.Context) error {
		return e.store.SaveVacancy(ctx, cloneVacancy(v))
	})

	return v.ID, nil
}

// VacancyUpdate carries optional field changes; nil means keep.
type VacancyUpdate struct {
	Title            *string   `json:"title,omitempty"`
	Description      *string   `json:"description,omitempty"`
	Location         *string   `json:"location,omitempty"`
	WorkFormat       *string   `json:"work_format,omitempty"`
	SalaryRange      *string   `json:"salary_range,omitempty"`
	ExperienceYears  *int      `json:"experience_years,omitempty"`
	Requirements     *[]string `json:"requirements,omitempty"`
	Responsibilities *[]string `json:"responsibilities,omitempty"`
	Conditions       *[]string `json:"conditions,omitempty"`
}

// UpdateVacancy applies the non-nil fields and logs which ones changed.
func (e *Engine) UpdateVacancy(ctx context.Context, actor models.User, vacancyID string, upd VacancyUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.vacancies[vacancyID]
	if !ok {
		return notFound("vacancy", vacancyID)
	}

	var changed []string
	if upd.Title != nil {
		v.Title = *upd.Title
		changed = append(changed, "title")
	}
	if upd.Description != nil {
		v.Description = *upd.Description
		changed = append(changed, "description")
	}
	if upd.Location != nil {
		v.Location = *upd.Location
		changed = append(changed, "location")
	}
	if upd.WorkFormat != nil {
		v.WorkFormat = *upd.WorkFormat
		changed = append(changed, "work_format")
	}
	if upd.SalaryRange != nil {
		v.SalaryRange = *upd.SalaryRange
		changed = append(changed, "salary_range")
	}
	if upd.ExperienceYears != nil {
		v.ExperienceYears = *upd.ExperienceYears
		changed = append(changed, "experience_years")
	}
	if upd.Requirements != nil {
		v.Requirements = append([]string(nil), (*upd.Requirements)...)
		changed = append(changed, "requirements")
	}
	if upd.Responsibilities != nil {
		v.Responsibilities = append([]string(nil), (*upd.Responsibilities)...)
		changed = append(changed, "responsibilities")
	}
	if upd.Conditions != nil {
		v.Conditions = append([]string(nil), (*upd.Conditions)...)
		changed = append(changed, "conditions")
	}

	if len(changed) == 0 {
		return nil
	}

	ev := e.logVacancyEvent(v, "updated", "Changed: "+strings.Join(changed, ", "), actor.Name)

	e.persist(ctx, "update_vacancy", func(ctx context.Context) error {
		if err := e.store.SaveVacancy(ctx, cloneVacancy(v)); err != nil {
			return err
		}
		return e.store.AppendVacancyEvent(ctx, v.ID, &ev)
	})

	return nil
}

// SetAIAnalysis attaches an externally computed match score. No audit entry
// is logged: scoring is advisory and absence is a valid state.
func (e *Engine) SetAIAnalysis(ctx context.Context, candidateID string, analysis models.AIAnalysis) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.candidates[candidateID]
	if !ok {
		return notFound("candidate", candidateID)
	}

	a := analysis
	c.AIAnalysis = &a

	e.persist(ctx, "set_ai_analysis", func(ctx context.Context) error {
		return e.store.SaveCandidate(ctx, cloneCandidate(c))
	})

	return nil
}
