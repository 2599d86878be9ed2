package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	dbfiles "github.com/evtimahovich/talentflow/db"
	"github.com/evtimahovich/talentflow/internal/db"
	"github.com/evtimahovich/talentflow/internal/models"
)

// testRepo opens a fresh database with the schema applied. Passing the
// migration FS in the seed slot keeps the demo fixture out of the tests.
func testRepo(t *testing.T) *Repo {
	t.Helper()
	ctx := context.Background()
	d, err := db.New(ctx, filepath.Join(t.TempDir(), "repo_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := db.Migrate(ctx, d, dbfiles.Migrations, dbfiles.Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(d)
}

func TestUserCRUD(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	u := &models.User{
		ID:           "user_1",
		Name:         "Rita Fischer",
		Email:        "rita@talentflow.dev",
		Role:         models.RoleRecruiter,
		PasswordHash: "$2a$10$fakehash",
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := repo.GetUserByID(ctx, "user_1")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got == nil || got.Email != u.Email || got.Role != models.RoleRecruiter {
		t.Fatalf("got %+v", got)
	}
	if got.CompanyID != "" {
		t.Errorf("company_id should stay empty, got %q", got.CompanyID)
	}

	byEmail, err := repo.GetUserByEmail(ctx, "rita@talentflow.dev")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail == nil || byEmail.ID != "user_1" {
		t.Fatalf("got %+v", byEmail)
	}

	missing, err := repo.GetUserByID(ctx, "nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing user, got %+v", missing)
	}

	got.Name = "Rita F."
	got.CompanyID = "comp_1"
	if err := repo.UpdateUser(ctx, got); err != nil {
		t.Fatalf("update user: %v", err)
	}
	updated, err := repo.GetUserByID(ctx, "user_1")
	if err != nil {
		t.Fatalf("get updated: %v", err)
	}
	if updated.Name != "Rita F." || updated.CompanyID != "comp_1" {
		t.Errorf("update not applied: %+v", updated)
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	company := &models.Company{
		ID:       "comp_1",
		Name:     "Acme",
		Industry: "fintech",
		Founded:  2015,
		DecisionMakers: []models.DecisionMaker{
			{ID: "dm_1", Name: "Ivan Petrov", Role: "CTO"},
			{ID: "dm_2", Name: "Anna Smith", Email: "anna@acme.io"},
		},
	}
	if err := repo.SaveCompany(ctx, company); err != nil {
		t.Fatalf("save company: %v", err)
	}

	vacancy := &models.Vacancy{
		ID:           "vac_1",
		Title:        "Go Developer",
		CompanyID:    "comp_1",
		RecruiterID:  "user_1",
		Requirements: []string{"Go", "SQL"},
		Status:       models.VacancyActive,
	}
	if err := repo.SaveVacancy(ctx, vacancy); err != nil {
		t.Fatalf("save vacancy: %v", err)
	}
	for _, action := range []string{"created", "updated"} {
		ev := &models.VacancyEvent{Date: time.Now(), User: "Rita Fischer", Action: action}
		if err := repo.AppendVacancyEvent(ctx, "vac_1", ev); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	candidate := &models.Candidate{
		ID:          "cand_1",
		Name:        "Carl Bakker",
		Position:    "Go Developer",
		Skills:      []string{"Go", "Kubernetes"},
		Status:      models.StatusNew,
		Shortlisted: true,
		CompanyID:   "comp_1",
		VacancyID:   "vac_1",
		AIAnalysis:  &models.AIAnalysis{Score: 82, Breakdown: models.ScoreBreakdown{HardSkills: 35, Experience: 25, Salary: 15, Bonus: 7}},
	}
	if err := repo.SaveCandidate(ctx, candidate); err != nil {
		t.Fatalf("save candidate: %v", err)
	}
	first := &models.Interaction{ID: "int_1", Date: time.Now(), Type: models.InteractionComment, User: "Rita Fischer", Details: "strong profile", Mentions: []string{"dm_1"}}
	second := &models.Interaction{ID: "int_2", Date: time.Now(), Type: models.InteractionStatusChange, User: "Rita Fischer", StatusBefore: models.StatusNew, StatusAfter: models.StatusSentToClient}
	if err := repo.AppendInteraction(ctx, "cand_1", first); err != nil {
		t.Fatalf("append interaction: %v", err)
	}
	if err := repo.AppendInteraction(ctx, "cand_1", second); err != nil {
		t.Fatalf("append interaction: %v", err)
	}

	ds, err := repo.LoadDataset(ctx)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	if len(ds.Companies) != 1 || len(ds.Vacancies) != 1 || len(ds.Candidates) != 1 {
		t.Fatalf("dataset shape = %d/%d/%d", len(ds.Companies), len(ds.Vacancies), len(ds.Candidates))
	}

	c := ds.Companies[0]
	if len(c.DecisionMakers) != 2 || c.DecisionMakers[0].ID != "dm_1" {
		t.Errorf("decision makers = %+v", c.DecisionMakers)
	}
	if c.Founded != 2015 {
		t.Errorf("founded = %d", c.Founded)
	}

	v := ds.Vacancies[0]
	if len(v.Requirements) != 2 || v.Requirements[0] != "Go" {
		t.Errorf("requirements = %v", v.Requirements)
	}
	if len(v.History) != 2 || v.History[0].Action != "updated" || v.History[1].Action != "created" {
		t.Errorf("vacancy history not newest-first: %+v", v.History)
	}

	cand := ds.Candidates[0]
	if !cand.Shortlisted || cand.Status != models.StatusNew {
		t.Errorf("candidate = %+v", cand)
	}
	if cand.AIAnalysis == nil || cand.AIAnalysis.Score != 82 || cand.AIAnalysis.Breakdown.HardSkills != 35 {
		t.Errorf("ai analysis = %+v", cand.AIAnalysis)
	}
	if len(cand.History) != 2 {
		t.Fatalf("history len = %d", len(cand.History))
	}
	if cand.History[0].ID != "int_2" || cand.History[1].ID != "int_1" {
		t.Errorf("history not newest-first: %s, %s", cand.History[0].ID, cand.History[1].ID)
	}
	if cand.History[0].StatusBefore != models.StatusNew || cand.History[0].StatusAfter != models.StatusSentToClient {
		t.Errorf("status change entry = %+v", cand.History[0])
	}
	if len(cand.History[1].Mentions) != 1 || cand.History[1].Mentions[0] != "dm_1" {
		t.Errorf("mentions = %v", cand.History[1].Mentions)
	}
}

func TestSaveCandidateUpsert(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	c := &models.Candidate{ID: "cand_1", Name: "Dana", Position: "QA Engineer", Status: models.StatusNew, Shortlisted: true}
	if err := repo.SaveCandidate(ctx, c); err != nil {
		t.Fatalf("save: %v", err)
	}
	c.Status = models.StatusRejected
	c.Shortlisted = false
	if err := repo.SaveCandidate(ctx, c); err != nil {
		t.Fatalf("save again: %v", err)
	}

	ds, err := repo.LoadDataset(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(ds.Candidates))
	}
	got := ds.Candidates[0]
	if got.Status != models.StatusRejected || got.Shortlisted {
		t.Errorf("upsert not applied: %+v", got)
	}
}

func TestAppendInteractionIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := testRepo(t)

	if err := repo.SaveCandidate(ctx, &models.Candidate{ID: "cand_1", Name: "Dana", Position: "QA Engineer", Status: models.StatusNew}); err != nil {
		t.Fatalf("save candidate: %v", err)
	}
	it := &models.Interaction{ID: "int_1", Date: time.Now(), Type: models.InteractionComment, User: "Rita", Details: "dup"}
	for i := 0; i < 2; i++ {
		if err := repo.AppendInteraction(ctx, "cand_1", it); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	ds, err := repo.LoadDataset(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Candidates[0].History) != 1 {
		t.Errorf("duplicate interaction id stored twice: %d rows", len(ds.Candidates[0].History))
	}
}

func TestSeedFixtureLoads(t *testing.T) {
	ctx := context.Background()
	d, err := db.New(ctx, filepath.Join(t.TempDir(), "seeded.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := db.Migrate(ctx, d, dbfiles.Migrations, dbfiles.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ds, err := New(d).LoadDataset(ctx)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	if len(ds.Companies) == 0 || len(ds.Vacancies) == 0 || len(ds.Candidates) == 0 {
		t.Fatalf("demo fixture empty: %d/%d/%d", len(ds.Companies), len(ds.Vacancies), len(ds.Candidates))
	}
	for _, c := range ds.Candidates {
		if !c.Status.Valid() {
			t.Errorf("seeded candidate %s has invalid status %q", c.ID, c.Status)
		}
	}

	// running migrate twice must be safe
	if err := db.Migrate(ctx, d, dbfiles.Migrations, dbfiles.SeedFiles); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
