package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/benreeder-coder/clienthub/internal/engine/projects"
	"github.com/benreeder-coder/clienthub/internal/guard"
	"github.com/benreeder-coder/clienthub/internal/pkg/errors"
)

const moduleProjects = "projects"

type ProjectHandler struct {
	svc   *projects.Service
	guard *guard.Guard
}

func NewProjectHandler(svc *projects.Service, g *guard.Guard) *ProjectHandler {
	return &ProjectHandler{svc: svc, guard: g}
}

type ProjectRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")

	access, appErr := h.guard.CheckModuleAccess(r.Context(), orgID, moduleProjects)
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	project, appErr := h.svc.Create(orgID, access.UserID, projects.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")

	if _, appErr := h.guard.CheckModuleAccess(r.Context(), orgID, moduleProjects); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	list, appErr := h.svc.List(orgID)
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")
	projectID := pathParam(r, "project_id")

	if _, appErr := h.guard.CheckModuleAccess(r.Context(), orgID, moduleProjects); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	project, appErr := h.svc.Get(projectID, orgID)
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(project)
}

type ProjectUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")
	projectID := pathParam(r, "project_id")

	if _, appErr := h.guard.CheckModuleAccess(r.Context(), orgID, moduleProjects); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	var req ProjectUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	project, appErr := h.svc.Update(projectID, orgID, projects.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")
	projectID := pathParam(r, "project_id")

	if _, appErr := h.guard.CheckModuleAccess(r.Context(), orgID, moduleProjects); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	if appErr := h.svc.Delete(projectID, orgID); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
