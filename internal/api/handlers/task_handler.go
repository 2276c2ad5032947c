package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/benreeder-coder/clienthub/internal/engine/tasks"
	"github.com/benreeder-coder/clienthub/internal/guard"
	"github.com/benreeder-coder/clienthub/internal/pkg/errors"
)

const moduleTasks = "tasks"

type TaskHandler struct {
	svc   *tasks.Service
	guard *guard.Guard
}

func NewTaskHandler(svc *tasks.Service, g *guard.Guard) *TaskHandler {
	return &TaskHandler{svc: svc, guard: g}
}

type TaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	ProjectID   *string `json:"project_id"`
	AssignedTo  *string `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")

	access, appErr := h.guard.CheckModuleAccess(r.Context(), orgID, moduleTasks)
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	task, appErr := h.svc.Create(orgID, access.UserID, tasks.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	})
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")

	if _, appErr := h.guard.CheckModuleAccess(r.Context(), orgID, moduleTasks); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	projectID := r.URL.Query().Get("project_id")
	list, appErr := h.svc.List(orgID, projectID)
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")
	taskID := pathParam(r, "task_id")

	if _, appErr := h.guard.CheckModuleAccess(r.Context(), orgID, moduleTasks); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	task, appErr := h.svc.Get(taskID, orgID)
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

type TaskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	ProjectID   *string `json:"project_id"`
	AssignedTo  *string `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")
	taskID := pathParam(r, "task_id")

	if _, appErr := h.guard.CheckModuleAccess(r.Context(), orgID, moduleTasks); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	var req TaskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	task, appErr := h.svc.Update(taskID, orgID, tasks.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	})
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

type MoveTaskRequest struct {
	Status   string `json:"status"`
	Position int    `json:"position"`
}

// Move relocates a task on the kanban board. Status is the destination
// column, position the destination index within it.
func (h *TaskHandler) Move(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")
	taskID := pathParam(r, "task_id")

	if _, appErr := h.guard.CheckModuleAccess(r.Context(), orgID, moduleTasks); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	var req MoveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	task, appErr := h.svc.Move(orgID, taskID, req.Status, req.Position)
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")
	taskID := pathParam(r, "task_id")

	if _, appErr := h.guard.CheckModuleAccess(r.Context(), orgID, moduleTasks); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	if appErr := h.svc.Delete(taskID, orgID); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
