package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/benreeder-coder/clienthub/internal/engine/onboarding"
	"github.com/benreeder-coder/clienthub/internal/guard"
	"github.com/benreeder-coder/clienthub/internal/pkg/errors"
	"github.com/benreeder-coder/clienthub/internal/platform/models"
)

type OnboardingHandler struct {
	svc   *onboarding.Service
	guard *guard.Guard
}

func NewOnboardingHandler(svc *onboarding.Service, g *guard.Guard) *OnboardingHandler {
	return &OnboardingHandler{svc: svc, guard: g}
}

func (h *OnboardingHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")

	access, appErr := h.guard.CheckMembership(r.Context(), orgID)
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	isAdmin := access.Role == models.RoleOrgAdmin || access.Role == models.RoleSuperAdmin
	status, appErr := h.svc.GetStatus(orgID, isAdmin)
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

type RecordEventRequest struct {
	EventType string                 `json:"event_type"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func (h *OnboardingHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")

	access, appErr := h.guard.CheckMembership(r.Context(), orgID)
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	var req RecordEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if appErr := h.svc.RecordEvent(onboarding.EventType(req.EventType), access.UserID, orgID, req.Metadata); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "recorded"})
}

func (h *OnboardingHandler) Skip(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")

	access, appErr := h.guard.CheckAdmin(r.Context(), orgID)
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	if appErr := h.svc.Skip(orgID, access.UserID); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "skipped"})
}
