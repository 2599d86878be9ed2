package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/evtimahovich/talentflow/internal/jobs"
	"github.com/evtimahovich/talentflow/internal/models"
	"github.com/evtimahovich/talentflow/internal/pipeline"
)

// PipelineHandler exposes the engine's commands. All routes behind it are
// staff-only; the engine itself stays permissive and the request schemas in
// validation.go carry the boundary policy.
type PipelineHandler struct {
	engine *pipeline.Engine
	pool   *jobs.WorkerPool // nil when background scoring is disabled
}

func NewPipelineHandler(engine *pipeline.Engine, pool *jobs.WorkerPool) *PipelineHandler {
	return &PipelineHandler{engine: engine, pool: pool}
}

type changeStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

func (h *PipelineHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validateBody(r.Context(), statusChangeSchema, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req changeStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	status, err := models.ParseCandidateStatus(req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	candidateID := mux.Vars(r)["id"]
	if err := h.engine.ChangeStatus(r.Context(), *userFrom(r), candidateID, status, req.Comment); err != nil {
		writeEngineError(w, err)
		return
	}

	h.writeCandidate(w, candidateID)
}

type commentRequest struct {
	Text string `json:"text"`
}

func (h *PipelineHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validateBody(r.Context(), commentSchema, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req commentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	candidateID := mux.Vars(r)["id"]

	// mentions are resolved against the candidate's company contacts
	dms, err := h.engine.CandidateDecisionMakers(candidateID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	mentions := pipeline.ParseMentions(req.Text, dms)

	if err := h.engine.AddComment(r.Context(), *userFrom(r), candidateID, req.Text, mentions); err != nil {
		writeEngineError(w, err)
		return
	}

	h.writeCandidate(w, candidateID)
}

func (h *PipelineHandler) ToggleShortlist(w http.ResponseWriter, r *http.Request) {
	candidateID := mux.Vars(r)["id"]
	if err := h.engine.ToggleShortlist(r.Context(), *userFrom(r), candidateID); err != nil {
		writeEngineError(w, err)
		return
	}

	h.writeCandidate(w, candidateID)
}

type assignRequest struct {
	CandidateIDs []string `json:"candidate_ids"`
}

func (h *PipelineHandler) AssignToVacancy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validateBody(r.Context(), assignSchema, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req assignRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	vacancyID := mux.Vars(r)["id"]
	if err := h.engine.AssignToVacancy(r.Context(), *userFrom(r), req.CandidateIDs, vacancyID); err != nil {
		writeEngineError(w, err)
		return
	}

	// scoring runs in the background; a full queue never fails the command
	if h.pool != nil {
		for _, cid := range req.CandidateIDs {
			payload := jobs.ScorePayload{CandidateID: cid, VacancyID: vacancyID}
			if _, err := h.pool.Enqueue(r.Context(), jobs.JobTypeScoreCandidate, payload, 100, 3); err != nil {
				logger.Warn("enqueue score job", "err", err, "candidate_id", cid)
			}
		}
	}

	v, err := h.engine.Vacancy(vacancyID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, v, http.StatusOK)
}

type interviewRequest struct {
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	Participants []string `json:"participants,omitempty"`
}

func (h *PipelineHandler) ScheduleInterview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validateBody(r.Context(), interviewSchema, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req interviewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	candidateID := mux.Vars(r)["id"]
	if err := h.engine.ScheduleInterview(r.Context(), *userFrom(r), candidateID, req.Date, req.Time, req.Participants); err != nil {
		writeEngineError(w, err)
		return
	}

	h.writeCandidate(w, candidateID)
}

type lifecycleRequest struct {
	Reason string `json:"reason"`
}

func (h *PipelineHandler) CloseVacancy(w http.ResponseWriter, r *http.Request) {
	h.vacancyLifecycle(w, r, h.engine.CloseVacancy)
}

func (h *PipelineHandler) ReopenVacancy(w http.ResponseWriter, r *http.Request) {
	h.vacancyLifecycle(w, r, h.engine.ReopenVacancy)
}

func (h *PipelineHandler) vacancyLifecycle(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, actor models.User, vacancyID, reason string) error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validateBody(r.Context(), lifecycleSchema, body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req lifecycleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	vacancyID := mux.Vars(r)["id"]
	if err := op(r.Context(), *userFrom(r), vacancyID, req.Reason); err != nil {
		writeEngineError(w, err)
		return
	}

	v, err := h.engine.Vacancy(vacancyID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, v, http.StatusOK)
}

type createdResponse struct {
	ID string `json:"id"`
}

func (h *PipelineHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var company models.Company
	if err := json.NewDecoder(r.Body).Decode(&company); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if company.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	id, err := h.engine.CreateCompany(r.Context(), *userFrom(r), company)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, createdResponse{ID: id}, http.StatusCreated)
}

func (h *PipelineHandler) AddDecisionMaker(w http.ResponseWriter, r *http.Request) {
	var dm models.DecisionMaker
	if err := json.NewDecoder(r.Body).Decode(&dm); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if dm.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	id, err := h.engine.AddDecisionMaker(r.Context(), *userFrom(r), mux.Vars(r)["id"], dm)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, createdResponse{ID: id}, http.StatusCreated)
}

func (h *PipelineHandler) CreateVacancy(w http.ResponseWriter, r *http.Request) {
	var vacancy models.Vacancy
	if err := json.NewDecoder(r.Body).Decode(&vacancy); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if vacancy.Title == "" || vacancy.CompanyID == "" {
		http.Error(w, "title and company_id are required", http.StatusBadRequest)
		return
	}

	// lifecycle state and audit history are engine-owned; a request body
	// cannot smuggle them in
	vacancy.Status = ""
	vacancy.History = nil

	id, err := h.engine.CreateVacancy(r.Context(), *userFrom(r), vacancy)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, createdResponse{ID: id}, http.StatusCreated)
}

func (h *PipelineHandler) UpdateVacancy(w http.ResponseWriter, r *http.Request) {
	var upd pipeline.VacancyUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	vacancyID := mux.Vars(r)["id"]
	if err := h.engine.UpdateVacancy(r.Context(), *userFrom(r), vacancyID, upd); err != nil {
		writeEngineError(w, err)
		return
	}

	v, err := h.engine.Vacancy(vacancyID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, v, http.StatusOK)
}

func (h *PipelineHandler) writeCandidate(w http.ResponseWriter, candidateID string) {
	c, err := h.engine.Candidate(candidateID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, c, http.StatusOK)
}
