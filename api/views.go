package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/evtimahovich/talentflow/internal/models"
	"github.com/evtimahovich/talentflow/internal/pipeline"
)

// ViewsHandler serves the read side. Every response is filtered by the
// acting user's role before it leaves the process.
type ViewsHandler struct {
	engine *pipeline.Engine
}

func NewViewsHandler(engine *pipeline.Engine) *ViewsHandler {
	return &ViewsHandler{engine: engine}
}

func (h *ViewsHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.VisibleCandidates(*userFrom(r)), http.StatusOK)
}

func (h *ViewsHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r)
	id := mux.Vars(r)["id"]

	c, err := h.engine.Candidate(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if !h.candidateVisible(*u, c) {
		// a candidate outside the client's scope does not exist for them
		http.Error(w, "candidate not found: "+id, http.StatusNotFound)
		return
	}
	writeJSON(w, c, http.StatusOK)
}

func (h *ViewsHandler) ListVacancies(w http.ResponseWriter, r *http.Request) {
	u := *userFrom(r)
	if r.URL.Query().Get("active") == "true" {
		writeJSON(w, h.engine.ActiveVacancies(u), http.StatusOK)
		return
	}
	writeJSON(w, h.engine.VisibleVacancies(u), http.StatusOK)
}

func (h *ViewsHandler) GetVacancy(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r)
	id := mux.Vars(r)["id"]

	v, err := h.engine.Vacancy(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if u.Role == models.RoleClient && v.CompanyID != u.CompanyID {
		http.Error(w, "vacancy not found: "+id, http.StatusNotFound)
		return
	}
	writeJSON(w, v, http.StatusOK)
}

func (h *ViewsHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.VisibleCompanies(*userFrom(r)), http.StatusOK)
}

// ExportCandidate returns a fully resolved candidate record for download.
// Staff-only: the export includes the company and vacancy names regardless
// of client scoping.
func (h *ViewsHandler) ExportCandidate(w http.ResponseWriter, r *http.Request) {
	ex, err := h.engine.Export(mux.Vars(r)["id"])
	if err != nil {
		writeEngineError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=candidate_"+ex.Candidate.ID+".json")
	writeJSON(w, ex, http.StatusOK)
}

// candidateVisible applies the list scoping to a single record: clients only
// reach candidates that would appear in their own list.
func (h *ViewsHandler) candidateVisible(u models.User, c *models.Candidate) bool {
	if u.Role != models.RoleClient {
		return true
	}
	for _, vc := range h.engine.VisibleCandidates(u) {
		if vc.ID == c.ID {
			return true
		}
	}
	return false
}
