package repository

import (
	"context"

	"github.com/evtimahovich/talentflow/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

// PipelineStore is the write-through sink behind the in-memory pipeline
// engine. The engine stays authoritative for the session; store failures are
// logged by the engine and never fail a command.
type PipelineStore interface {
	SaveCompany(ctx context.Context, c *models.Company) error
	SaveVacancy(ctx context.Context, v *models.Vacancy) error
	SaveCandidate(ctx context.Context, c *models.Candidate) error
	AppendInteraction(ctx context.Context, candidateID string, it *models.Interaction) error
	AppendVacancyEvent(ctx context.Context, vacancyID string, ev *models.VacancyEvent) error
}

// DatasetRepo loads the full pipeline dataset that seeds the engine.
type DatasetRepo interface {
	LoadDataset(ctx context.Context) (*models.Dataset, error)
}
