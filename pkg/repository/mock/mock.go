package mock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/evtimahovich/talentflow/internal/models"
)

// Test helpers and mocks
type Mocks struct {
	Users *UserRepo
	Store *PipelineStore
}

func NewMocks() *Mocks {
	return &Mocks{
		Users: &UserRepo{users: map[string]*models.User{}},
		Store: &PipelineStore{},
	}
}

// UserRepo is an in-memory user store keyed by id.
type UserRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	CreateErr error
}

func (m *UserRepo) CreateUser(ctx context.Context, u *models.User) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// mirror the schema: email is required and unique
	if u.Email == "" {
		return errors.New("email is required")
	}
	for _, existing := range m.users {
		if existing.Email == u.Email && existing.ID != u.ID {
			return fmt.Errorf("email %s already exists", u.Email)
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *UserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *UserRepo) UpdateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

// PipelineStore counts writes and optionally fails them; the engine must
// treat store failures as non-fatal.
type PipelineStore struct {
	mu           sync.Mutex
	Companies    int
	Vacancies    int
	Candidates   int
	Interactions int
	Events       int
	Err          error
}

func (m *PipelineStore) SaveCompany(ctx context.Context, c *models.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Companies++
	return m.Err
}

func (m *PipelineStore) SaveVacancy(ctx context.Context, v *models.Vacancy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Vacancies++
	return m.Err
}

func (m *PipelineStore) SaveCandidate(ctx context.Context, c *models.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Candidates++
	return m.Err
}

func (m *PipelineStore) AppendInteraction(ctx context.Context, candidateID string, it *models.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Interactions++
	return m.Err
}

func (m *PipelineStore) AppendVacancyEvent(ctx context.Context, vacancyID string, ev *models.VacancyEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events++
	return m.Err
}
