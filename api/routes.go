package api

import (
	"github.com/gorilla/mux"

	"github.com/evtimahovich/talentflow/internal/config"
	"github.com/evtimahovich/talentflow/internal/identity"
	"github.com/evtimahovich/talentflow/internal/jobs"
	"github.com/evtimahovich/talentflow/internal/pipeline"
	"github.com/evtimahovich/talentflow/pkg/repository"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, engine *pipeline.Engine,
	users repository.UserRepo, idc *identity.Client, pool *jobs.WorkerPool) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(users, idc, cfg.JWTSecret, cfg.TokenDuration)
	viewsHandler := NewViewsHandler(engine)
	pipelineHandler := NewPipelineHandler(engine, pool)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")
	r.HandleFunc("/v1/auth/session", authHandler.ExchangeSession).Methods("POST")

	// Protected reads: every signed-in user, views scoped by role
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddleware(cfg.JWTSecret, users))

	apiV1.HandleFunc("/auth/signout", authHandler.Signout).Methods("POST")
	apiV1.HandleFunc("/profile", authHandler.Me).Methods("GET")
	apiV1.HandleFunc("/profile", authHandler.UpdateProfile).Methods("PATCH")

	apiV1.HandleFunc("/candidates", viewsHandler.ListCandidates).Methods("GET")
	apiV1.HandleFunc("/candidates/{id}", viewsHandler.GetCandidate).Methods("GET")
	apiV1.HandleFunc("/vacancies", viewsHandler.ListVacancies).Methods("GET")
	apiV1.HandleFunc("/vacancies/{id}", viewsHandler.GetVacancy).Methods("GET")
	apiV1.HandleFunc("/companies", viewsHandler.ListCompanies).Methods("GET")

	// Pipeline mutations and exports: staff only
	staff := r.PathPrefix("/v1").Subrouter()
	staff.Use(JWTAuthMiddleware(cfg.JWTSecret, users))
	staff.Use(RequireStaff)

	staff.HandleFunc("/candidates/{id}/status", pipelineHandler.ChangeStatus).Methods("POST")
	staff.HandleFunc("/candidates/{id}/comments", pipelineHandler.AddComment).Methods("POST")
	staff.HandleFunc("/candidates/{id}/shortlist", pipelineHandler.ToggleShortlist).Methods("POST")
	staff.HandleFunc("/candidates/{id}/interviews", pipelineHandler.ScheduleInterview).Methods("POST")
	staff.HandleFunc("/candidates/{id}/export", viewsHandler.ExportCandidate).Methods("GET")

	staff.HandleFunc("/vacancies", pipelineHandler.CreateVacancy).Methods("POST")
	staff.HandleFunc("/vacancies/{id}", pipelineHandler.UpdateVacancy).Methods("PATCH")
	staff.HandleFunc("/vacancies/{id}/close", pipelineHandler.CloseVacancy).Methods("POST")
	staff.HandleFunc("/vacancies/{id}/reopen", pipelineHandler.ReopenVacancy).Methods("POST")
	staff.HandleFunc("/vacancies/{id}/assign", pipelineHandler.AssignToVacancy).Methods("POST")

	staff.HandleFunc("/companies", pipelineHandler.CreateCompany).Methods("POST")
	staff.HandleFunc("/companies/{id}/decision-makers", pipelineHandler.AddDecisionMaker).Methods("POST")

	return r
}
