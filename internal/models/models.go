package models

import (
	"fmt"
	"time"
)

// Role identifies what a user may see and do.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleRecruitmentHead Role = "recruitment_head"
	RoleRecruiter       Role = "recruiter"
	RoleClient          Role = "client"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleRecruitmentHead, RoleRecruiter, RoleClient:
		return true
	}
	return false
}

// Staff reports whether the role belongs to the recruiting side. Staff sees
// the full dataset; clients see only their own company's slice.
func (r Role) Staff() bool {
	switch r {
	case RoleAdmin, RoleRecruitmentHead, RoleRecruiter:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// CandidateStatus is the candidate's pipeline stage. The main track runs
// new → hired; rejected, reserve, fired and blacklist are side branches
// reachable from any stage. Transitions are not restricted to forward-only.
type CandidateStatus string

const (
	StatusNew             CandidateStatus = "new"
	StatusSentToClient    CandidateStatus = "sent_to_client"
	StatusClientInterview CandidateStatus = "client_interview"
	StatusTestTask        CandidateStatus = "test_task"
	StatusSecurityCheck   CandidateStatus = "security_check"
	StatusInternship      CandidateStatus = "internship"
	StatusOffer           CandidateStatus = "offer"
	StatusHired           CandidateStatus = "hired"
	StatusRejected        CandidateStatus = "rejected"
	StatusReserve         CandidateStatus = "reserve"
	StatusFired           CandidateStatus = "fired"
	StatusBlacklist       CandidateStatus = "blacklist"
)

func (s CandidateStatus) Valid() bool {
	switch s {
	case StatusNew, StatusSentToClient, StatusClientInterview, StatusTestTask,
		StatusSecurityCheck, StatusInternship, StatusOffer, StatusHired,
		StatusRejected, StatusReserve, StatusFired, StatusBlacklist:
		return true
	}
	return false
}

// ClearsShortlist reports whether the status forbids a shortlist mark: no
// candidate may be both shortlisted and rejected or blacklisted.
func (s CandidateStatus) ClearsShortlist() bool {
	return s == StatusRejected || s == StatusBlacklist
}

func ParseCandidateStatus(s string) (CandidateStatus, error) {
	st := CandidateStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown candidate status %q", s)
	}
	return st, nil
}

// VacancyStatus is a binary open/closed toggle, not a state machine.
type VacancyStatus string

const (
	VacancyActive VacancyStatus = "active"
	VacancyClosed VacancyStatus = "closed"
)

// InteractionType classifies an audit-trail entry.
type InteractionType string

const (
	InteractionCall               InteractionType = "call"
	InteractionMessage            InteractionType = "message"
	InteractionStatusChange       InteractionType = "status_change"
	InteractionComment            InteractionType = "comment"
	InteractionInterviewScheduled InteractionType = "interview_scheduled"
)

// User is the acting identity. CompanyID is set only for client users; a
// client with an empty CompanyID is a new, unlinked client and sees nothing.
type User struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	Role         Role   `json:"role" db:"role"`
	CompanyID    string `json:"company_id,omitempty" db:"company_id"`
	Avatar       string `json:"avatar,omitempty" db:"avatar"`
	PasswordHash string `json:"-" db:"password_hash"`
}

// DecisionMaker is a named contact at a client company; referenced by
// comment mentions and interview scheduling.
type DecisionMaker struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Role  string `json:"role,omitempty" db:"role"`
	Email string `json:"email,omitempty" db:"email"`
	Phone string `json:"phone,omitempty" db:"phone"`
}

type Company struct {
	ID             string          `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Industry       string          `json:"industry,omitempty" db:"industry"`
	Size           string          `json:"size,omitempty" db:"size"`
	Location       string          `json:"location,omitempty" db:"location"`
	Founded        int             `json:"founded,omitempty" db:"founded"`
	DecisionMakers []DecisionMaker `json:"decision_makers,omitempty"`
}

// VacancyEvent is one audit entry on a vacancy. History is append-only and
// kept newest-first; it logs attempts, not deduplicated state.
type VacancyEvent struct {
	Date    time.Time `json:"date"`
	User    string    `json:"user"`
	Action  string    `json:"action"`
	Details string    `json:"details"`
}

type Vacancy struct {
	ID               string         `json:"id" db:"id"`
	Title            string         `json:"title" db:"title"`
	CompanyID        string         `json:"company_id" db:"company_id"`
	RecruiterID      string         `json:"recruiter_id" db:"recruiter_id"`
	Description      string         `json:"description,omitempty" db:"description"`
	Location         string         `json:"location,omitempty" db:"location"`
	WorkFormat       string         `json:"work_format,omitempty" db:"work_format"`
	SalaryRange      string         `json:"salary_range,omitempty" db:"salary_range"`
	ExperienceYears  int            `json:"experience_years,omitempty" db:"experience_years"`
	Requirements     []string       `json:"requirements,omitempty"`
	Responsibilities []string       `json:"responsibilities,omitempty"`
	Conditions       []string       `json:"conditions,omitempty"`
	Status           VacancyStatus  `json:"status" db:"status"`
	History          []VacancyEvent `json:"history,omitempty"`
}

// ScoreBreakdown is the per-dimension decomposition of an AI match score.
type ScoreBreakdown struct {
	HardSkills int `json:"hard_skills"`
	Experience int `json:"experience"`
	Salary     int `json:"salary"`
	Bonus      int `json:"bonus"`
}

// AIAnalysis is an externally computed candidate/vacancy match. Absence is
// valid and never blocks a pipeline command.
type AIAnalysis struct {
	Score     int            `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Summary   string         `json:"summary,omitempty"`
}

type Candidate struct {
	ID                string          `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Position          string          `json:"position" db:"position"`
	Email             string          `json:"email,omitempty" db:"email"`
	Phone             string          `json:"phone,omitempty" db:"phone"`
	SalaryExpectation string          `json:"salary_expectation,omitempty" db:"salary_expectation"`
	ExperienceYears   int             `json:"experience_years,omitempty" db:"experience_years"`
	Skills            []string        `json:"skills,omitempty"`
	Status            CandidateStatus `json:"status" db:"status"`
	Shortlisted       bool            `json:"shortlisted" db:"shortlisted"`
	AIAnalysis        *AIAnalysis     `json:"ai_analysis,omitempty"`
	CompanyID         string          `json:"company_id,omitempty" db:"company_id"`
	VacancyID         string          `json:"vacancy_id,omitempty" db:"vacancy_id"`
	History           []Interaction   `json:"history,omitempty"`
}

// Interaction is an immutable audit entry owned by its candidate. Entries are
// prepended so History[0] is always the most recent; order is insertion
// order, never a timestamp sort (two entries can share a millisecond).
type Interaction struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Type          InteractionType `json:"type"`
	User          string          `json:"user"`
	Details       string          `json:"details,omitempty"`
	StatusBefore  CandidateStatus `json:"status_before,omitempty"`
	StatusAfter   CandidateStatus `json:"status_after,omitempty"`
	Mentions      []string        `json:"mentions,omitempty"`
	InterviewDate string          `json:"interview_date,omitempty"`
	InterviewTime string          `json:"interview_time,omitempty"`
	Participants  []string        `json:"participants,omitempty"`
}

// Dataset is the full pipeline state: the fixture loaded into the engine at
// startup and the shape persisted through the write-through store.
type Dataset struct {
	Companies  []Company   `json:"companies"`
	Vacancies  []Vacancy   `json:"vacancies"`
	Candidates []Candidate `json:"candidates"`
}
