package pipeline_test

import (
	"context"
	"testing"

	"github.com/evtimahovich/talentflow/internal/models"
	"github.com/evtimahovich/talentflow/internal/pipeline"
)

var recruiter = models.User{ID: "u1", Name: "Rita Recruiter", Role: models.RoleRecruiter}

func testDataset() *models.Dataset {
	return &models.Dataset{
		Companies: []models.Company{
			{ID: "comp_a", Name: "Acme", DecisionMakers: []models.DecisionMaker{
				{ID: "dm1", Name: "Ivan Petrov", Role: "CTO"},
				{ID: "dm2", Name: "Anna Smith", Role: "HR Lead"},
			}},
			{ID: "comp_b", Name: "Globex"},
		},
		Vacancies: []models.Vacancy{
			{ID: "vac_1", Title: "Go Developer", CompanyID: "comp_a", Status: models.VacancyActive},
			{ID: "vac_2", Title: "QA Engineer", CompanyID: "comp_b", Status: models.VacancyActive},
		},
		Candidates: []models.Candidate{
			{ID: "cand_1", Name: "Carl", Position: "Go Developer", Status: models.StatusNew, Shortlisted: true},
			{ID: "cand_2", Name: "Dana", Position: "QA Engineer", Status: models.StatusHired},
		},
	}
}

func newEngine(t *testing.T) *pipeline.Engine {
	t.Helper()
	return pipeline.NewEngine(testDataset(), nil, nil)
}

func mustCandidate(t *testing.T, e *pipeline.Engine, id string) *models.Candidate {
	t.Helper()
	c, err := e.Candidate(id)
	if err != nil {
		t.Fatalf("candidate %s: %v", id, err)
	}
	return c
}

func TestChangeStatus_BlacklistClearsShortlist(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	if err := e.ChangeStatus(ctx, recruiter, "cand_1", models.StatusBlacklist, "policy violation"); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}

	c := mustCandidate(t, e, "cand_1")
	if c.Status != models.StatusBlacklist {
		t.Fatalf("status = %s, want blacklist", c.Status)
	}
	if c.Shortlisted {
		t.Fatal("shortlisted should be cleared on blacklist")
	}

	it := c.History[0]
	if it.Type != models.InteractionStatusChange {
		t.Fatalf("history[0].type = %s, want status_change", it.Type)
	}
	if it.StatusBefore != models.StatusNew || it.StatusAfter != models.StatusBlacklist {
		t.Fatalf("transition = %s → %s, want new → blacklist", it.StatusBefore, it.StatusAfter)
	}
	if it.Details != "policy violation" {
		t.Fatalf("details = %q", it.Details)
	}
	if it.User != recruiter.Name {
		t.Fatalf("user = %q, want %q", it.User, recruiter.Name)
	}
}

func TestChangeStatus_RejectedClearsShortlist(t *testing.T) {
	e := newEngine(t)
	if err := e.ChangeStatus(context.Background(), recruiter, "cand_1", models.StatusRejected, "no fit"); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if mustCandidate(t, e, "cand_1").Shortlisted {
		t.Fatal("shortlisted should be cleared on rejected")
	}
}

func TestChangeStatus_SameStatusDegradesToComment(t *testing.T) {
	e := newEngine(t)
	if err := e.ChangeStatus(context.Background(), recruiter, "cand_1", models.StatusNew, "still new"); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}

	c := mustCandidate(t, e, "cand_1")
	it := c.History[0]
	if it.Type != models.InteractionComment {
		t.Fatalf("history[0].type = %s, want comment", it.Type)
	}
	if it.StatusBefore != "" || it.StatusAfter != "" {
		t.Fatalf("same-status entry must not carry before/after, got %q/%q", it.StatusBefore, it.StatusAfter)
	}
	if !c.Shortlisted {
		t.Fatal("shortlist must survive a same-status comment")
	}
}

func TestChangeStatus_EmptyCommentAccepted(t *testing.T) {
	// The engine is mechanism; comment policy lives at the API boundary.
	e := newEngine(t)
	if err := e.ChangeStatus(context.Background(), recruiter, "cand_1", models.StatusOffer, ""); err != nil {
		t.Fatalf("engine must accept empty comment, got %v", err)
	}
}

func TestChangeStatus_NotFound(t *testing.T) {
	e := newEngine(t)
	err := e.ChangeStatus(context.Background(), recruiter, "nope", models.StatusOffer, "x")
	if !pipeline.IsNotFound(err) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
}

func TestHistory_AppendOnlyAndPrepended(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	if err := e.AddComment(ctx, recruiter, "cand_1", "first", nil); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	before := mustCandidate(t, e, "cand_1").History

	if err := e.ChangeStatus(ctx, recruiter, "cand_1", models.StatusTestTask, "moved"); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	after := mustCandidate(t, e, "cand_1").History

	if len(after) != len(before)+1 {
		t.Fatalf("history grew by %d, want 1", len(after)-len(before))
	}
	if after[0].Details != "moved" {
		t.Fatalf("history[0] is not the newest entry: %+v", after[0])
	}
	// prior entries unchanged, shifted by one
	for i, it := range before {
		got := after[i+1]
		if got.ID != it.ID || got.Details != it.Details || got.Type != it.Type {
			t.Fatalf("existing entry %d mutated: %+v vs %+v", i, got, it)
		}
	}
}

func TestAddComment_DoesNotTouchStatusOrShortlist(t *testing.T) {
	e := newEngine(t)
	if err := e.AddComment(context.Background(), recruiter, "cand_1", "ping @Ivan Petrov", []string{"dm1"}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	c := mustCandidate(t, e, "cand_1")
	if c.Status != models.StatusNew || !c.Shortlisted {
		t.Fatalf("comment changed candidate state: status=%s shortlisted=%v", c.Status, c.Shortlisted)
	}
	it := c.History[0]
	if it.Type != models.InteractionComment || len(it.Mentions) != 1 || it.Mentions[0] != "dm1" {
		t.Fatalf("unexpected comment entry: %+v", it)
	}
}

func TestToggleShortlist_SilentAndUnguarded(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	before := len(mustCandidate(t, e, "cand_1").History)
	if err := e.ToggleShortlist(ctx, recruiter, "cand_1"); err != nil {
		t.Fatalf("ToggleShortlist: %v", err)
	}

	c := mustCandidate(t, e, "cand_1")
	if c.Shortlisted {
		t.Fatal("toggle should flip true → false")
	}
	if len(c.History) != before {
		t.Fatal("toggle must not append an audit entry")
	}

	// no guard: a blacklisted candidate can still be shortlisted here
	if err := e.ChangeStatus(ctx, recruiter, "cand_1", models.StatusBlacklist, "x"); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if err := e.ToggleShortlist(ctx, recruiter, "cand_1"); err != nil {
		t.Fatalf("ToggleShortlist: %v", err)
	}
	if !mustCandidate(t, e, "cand_1").Shortlisted {
		t.Fatal("toggle outside the status path is intentionally unguarded")
	}
}

func TestAssignToVacancy_ForcesSentToClient(t *testing.T) {
	e := newEngine(t)

	// cand_2 is already hired; assignment still regresses it
	if err := e.AssignToVacancy(context.Background(), recruiter, []string{"cand_2"}, "vac_1"); err != nil {
		t.Fatalf("AssignToVacancy: %v", err)
	}

	c := mustCandidate(t, e, "cand_2")
	if c.Status != models.StatusSentToClient {
		t.Fatalf("status = %s, want sent_to_client", c.Status)
	}
	if c.VacancyID != "vac_1" || c.CompanyID != "comp_a" {
		t.Fatalf("assignment links wrong: vacancy=%s company=%s", c.VacancyID, c.CompanyID)
	}
	it := c.History[0]
	if it.Type != models.InteractionStatusChange || it.StatusBefore != models.StatusHired || it.StatusAfter != models.StatusSentToClient {
		t.Fatalf("unexpected assignment entry: %+v", it)
	}
}

func TestAssignToVacancy_MissingVacancyNoOpsBatch(t *testing.T) {
	e := newEngine(t)
	err := e.AssignToVacancy(context.Background(), recruiter, []string{"cand_1", "cand_2"}, "nope")
	if !pipeline.IsNotFound(err) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
	if c := mustCandidate(t, e, "cand_1"); c.Status != models.StatusNew || len(c.History) != 0 {
		t.Fatalf("batch must not touch candidates when vacancy is missing: %+v", c)
	}
}

func TestVacancyCloseReopenRoundTrip(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	if err := e.CloseVacancy(ctx, recruiter, "vac_1", "r1"); err != nil {
		t.Fatalf("CloseVacancy: %v", err)
	}
	if err := e.ReopenVacancy(ctx, recruiter, "vac_1", "r2"); err != nil {
		t.Fatalf("ReopenVacancy: %v", err)
	}

	v, err := e.Vacancy("vac_1")
	if err != nil {
		t.Fatalf("Vacancy: %v", err)
	}
	if v.Status != models.VacancyActive {
		t.Fatalf("status = %s, want active", v.Status)
	}
	if len(v.History) < 2 {
		t.Fatalf("history = %d entries, want at least 2", len(v.History))
	}
	if v.History[0].Action != "reopened" || v.History[0].Details != "r2" {
		t.Fatalf("history[0] = %+v, want reopened(r2)", v.History[0])
	}
	if v.History[1].Action != "closed" || v.History[1].Details != "r1" {
		t.Fatalf("history[1] = %+v, want closed(r1)", v.History[1])
	}
}

func TestCloseVacancy_RedundantCloseStillLogged(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	if err := e.CloseVacancy(ctx, recruiter, "vac_1", "r1"); err != nil {
		t.Fatalf("CloseVacancy: %v", err)
	}
	if err := e.CloseVacancy(ctx, recruiter, "vac_1", "r2"); err != nil {
		t.Fatalf("second CloseVacancy: %v", err)
	}

	v, _ := e.Vacancy("vac_1")
	if v.Status != models.VacancyClosed {
		t.Fatalf("status = %s, want closed", v.Status)
	}
	// history logs attempts, so the redundant close is recorded too
	if v.History[0].Details != "r2" || v.History[1].Details != "r1" {
		t.Fatalf("unexpected history order: %+v", v.History[:2])
	}
}

func TestCreateVacancy_RequiresCompany(t *testing.T) {
	e := newEngine(t)
	_, err := e.CreateVacancy(context.Background(), recruiter, models.Vacancy{Title: "X", CompanyID: "nope"})
	if !pipeline.IsNotFound(err) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
}

func TestCreateVacancy_DefaultsAndInitialHistory(t *testing.T) {
	e := newEngine(t)
	id, err := e.CreateVacancy(context.Background(), recruiter, models.Vacancy{Title: "Backend Developer", CompanyID: "comp_b"})
	if err != nil {
		t.Fatalf("CreateVacancy: %v", err)
	}

	v, err := e.Vacancy(id)
	if err != nil {
		t.Fatalf("Vacancy: %v", err)
	}
	if v.Status != models.VacancyActive {
		t.Fatalf("status = %s, want active", v.Status)
	}
	if v.RecruiterID != recruiter.ID {
		t.Fatalf("recruiter_id = %s, want %s", v.RecruiterID, recruiter.ID)
	}
	if len(v.History) != 1 || v.History[0].Action != "created" {
		t.Fatalf("want one created entry, got %+v", v.History)
	}
}

func TestUpdateVacancy_LogsChangedFields(t *testing.T) {
	e := newEngine(t)
	title := "Senior Go Developer"
	if err := e.UpdateVacancy(context.Background(), recruiter, "vac_1", pipeline.VacancyUpdate{Title: &title}); err != nil {
		t.Fatalf("UpdateVacancy: %v", err)
	}

	v, _ := e.Vacancy("vac_1")
	if v.Title != title {
		t.Fatalf("title = %q", v.Title)
	}
	if v.History[0].Action != "updated" {
		t.Fatalf("history[0] = %+v", v.History[0])
	}
}

func TestAddDecisionMaker_AppendsOnly(t *testing.T) {
	e := newEngine(t)
	id, err := e.AddDecisionMaker(context.Background(), recruiter, "comp_a", models.DecisionMaker{Name: "New Contact"})
	if err != nil {
		t.Fatalf("AddDecisionMaker: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	companies := e.VisibleCompanies(recruiter)
	for _, c := range companies {
		if c.ID != "comp_a" {
			continue
		}
		if len(c.DecisionMakers) != 3 {
			t.Fatalf("decision makers = %d, want 3 (existing preserved)", len(c.DecisionMakers))
		}
		if c.DecisionMakers[0].ID != "dm1" || c.DecisionMakers[2].ID != id {
			t.Fatalf("append order broken: %+v", c.DecisionMakers)
		}
	}
}

func TestScheduleInterview(t *testing.T) {
	e := newEngine(t)
	if err := e.ScheduleInterview(context.Background(), recruiter, "cand_1", "2026-09-01", "14:30", []string{"Ivan Petrov"}); err != nil {
		t.Fatalf("ScheduleInterview: %v", err)
	}

	it := mustCandidate(t, e, "cand_1").History[0]
	if it.Type != models.InteractionInterviewScheduled {
		t.Fatalf("type = %s", it.Type)
	}
	if it.InterviewDate != "2026-09-01" || it.InterviewTime != "14:30" {
		t.Fatalf("unexpected schedule: %+v", it)
	}
	if len(it.Participants) != 1 {
		t.Fatalf("participants = %v", it.Participants)
	}
}

func TestSetAIAnalysis_OptionalAndSilent(t *testing.T) {
	e := newEngine(t)
	before := len(mustCandidate(t, e, "cand_1").History)

	a := models.AIAnalysis{Score: 87, Breakdown: models.ScoreBreakdown{HardSkills: 40, Experience: 30, Salary: 12, Bonus: 5}, Summary: "strong match"}
	if err := e.SetAIAnalysis(context.Background(), "cand_1", a); err != nil {
		t.Fatalf("SetAIAnalysis: %v", err)
	}

	c := mustCandidate(t, e, "cand_1")
	if c.AIAnalysis == nil || c.AIAnalysis.Score != 87 {
		t.Fatalf("analysis not attached: %+v", c.AIAnalysis)
	}
	if len(c.History) != before {
		t.Fatal("scoring must not append an audit entry")
	}
}
