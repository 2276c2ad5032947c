package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/benreeder-coder/clienthub/internal/engine/modules"
	"github.com/benreeder-coder/clienthub/internal/guard"
	"github.com/benreeder-coder/clienthub/internal/pkg/errors"
	"github.com/benreeder-coder/clienthub/internal/platform/audit"
	"github.com/benreeder-coder/clienthub/internal/platform/models"
)

type ModuleHandler struct {
	registry *modules.Registry
	resolver *modules.Resolver
	repo     *modules.Repository
	guard    *guard.Guard
	auditLog *audit.Logger
}

func NewModuleHandler(registry *modules.Registry, resolver *modules.Resolver, repo *modules.Repository,
	g *guard.Guard, auditLog *audit.Logger) *ModuleHandler {
	return &ModuleHandler{
		registry: registry,
		resolver: resolver,
		repo:     repo,
		guard:    g,
		auditLog: auditLog,
	}
}

// List returns every registered module resolved for the org, hidden ones
// included. Callers filter on state.
func (h *ModuleHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")

	if _, appErr := h.guard.CheckMembership(r.Context(), orgID); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	resolved, err := h.resolver.ResolveModules(orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Failed to resolve modules", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resolved)
}

type PutOverrideRequest struct {
	StateOverride  *string                `json:"state_override"`
	ConfigOverride map[string]interface{} `json:"config_override,omitempty"`
}

func (h *ModuleHandler) PutOverride(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")
	moduleKey := pathParam(r, "module_key")

	access, appErr := h.guard.CheckSuperAdmin(r.Context())
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	if _, known := h.registry.Lookup(moduleKey); !known {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Unknown module", nil)
		return
	}

	var req PutOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.StateOverride != nil {
		if _, err := modules.ParseState(*req.StateOverride); err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid module state", nil)
			return
		}
	}

	ov := &models.OrgModuleOverride{
		ID:             uuid.New().String(),
		OrgID:          orgID,
		ModuleKey:      moduleKey,
		StateOverride:  req.StateOverride,
		ConfigOverride: req.ConfigOverride,
		UpdatedAt:      time.Now().Unix(),
	}
	if err := h.repo.UpsertOverride(ov); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Failed to save override", nil)
		return
	}

	h.auditLog.Log(&models.AuditLog{
		OrgID:      orgID,
		UserID:     access.UserID,
		Action:     "module_override_set",
		EntityType: "module",
		EntityID:   moduleKey,
		Metadata: map[string]interface{}{
			"state_override": req.StateOverride,
		},
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ov)
}

func (h *ModuleHandler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")
	moduleKey := pathParam(r, "module_key")

	access, appErr := h.guard.CheckSuperAdmin(r.Context())
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	if err := h.repo.DeleteOverride(orgID, moduleKey); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Failed to delete override", nil)
		return
	}

	h.auditLog.Log(&models.AuditLog{
		OrgID:      orgID,
		UserID:     access.UserID,
		Action:     "module_override_cleared",
		EntityType: "module",
		EntityID:   moduleKey,
	})

	w.WriteHeader(http.StatusNoContent)
}
