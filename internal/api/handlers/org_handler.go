package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	apiContext "github.com/benreeder-coder/clienthub/internal/api/context"
	"github.com/benreeder-coder/clienthub/internal/engine/modules"
	"github.com/benreeder-coder/clienthub/internal/engine/onboarding"
	"github.com/benreeder-coder/clienthub/internal/guard"
	"github.com/benreeder-coder/clienthub/internal/pkg/errors"
	"github.com/benreeder-coder/clienthub/internal/pkg/validator"
	"github.com/benreeder-coder/clienthub/internal/platform/audit"
	"github.com/benreeder-coder/clienthub/internal/platform/models"
	"github.com/benreeder-coder/clienthub/internal/platform/repositories"
)

func pathParam(r *http.Request, name string) string {
	params, ok := r.Context().Value(apiContext.Params).(httprouter.Params)
	if !ok {
		return ""
	}
	return params.ByName(name)
}

type OrgHandler struct {
	orgRepo        *repositories.OrganizationRepository
	userRepo       *repositories.UserProfileRepository
	membershipRepo *repositories.MembershipRepository
	templateRepo   *repositories.TemplateRepository
	moduleRepo     *modules.Repository
	onboardingRepo *onboarding.Repository
	onboardingSvc  *onboarding.Service
	guard          *guard.Guard
	auditLog       *audit.Logger
}

func NewOrgHandler(orgRepo *repositories.OrganizationRepository, userRepo *repositories.UserProfileRepository,
	membershipRepo *repositories.MembershipRepository, templateRepo *repositories.TemplateRepository,
	moduleRepo *modules.Repository, onboardingRepo *onboarding.Repository, onboardingSvc *onboarding.Service,
	g *guard.Guard, auditLog *audit.Logger) *OrgHandler {
	return &OrgHandler{
		orgRepo:        orgRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		templateRepo:   templateRepo,
		moduleRepo:     moduleRepo,
		onboardingRepo: onboardingRepo,
		onboardingSvc:  onboardingSvc,
		guard:          g,
		auditLog:       auditLog,
	}
}

type CreateOrgRequest struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	TemplateID string `json:"template_id,omitempty"`
}

func (h *OrgHandler) Create(w http.ResponseWriter, r *http.Request) {
	access, appErr := h.guard.CheckSuperAdmin(r.Context())
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	var req CreateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.Required(req.Name, "name"); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	if err := validator.Required(req.Slug, "slug"); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	existing, err := h.orgRepo.GetBySlug(req.Slug)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Database error", nil)
		return
	}
	if existing != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Organization slug already in use", nil)
		return
	}

	now := time.Now().Unix()
	org := &models.Organization{
		ID:               uuid.New().String(),
		Name:             req.Name,
		Slug:             req.Slug,
		Settings:         map[string]interface{}{},
		OnboardingStatus: models.OnboardingPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	tx, err := h.orgRepo.BeginTx()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Database error", nil)
		return
	}
	defer tx.Rollback()

	if err := h.orgRepo.CreateTx(tx, org); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Failed to create organization", nil)
		return
	}

	if req.TemplateID != "" {
		template, err := h.templateRepo.GetByID(req.TemplateID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Database error", nil)
			return
		}
		if template == nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown template", nil)
			return
		}
		if err := h.moduleRepo.AssignTemplateTx(tx, org.ID, template.ID, &access.UserID); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Failed to assign template", nil)
			return
		}
	}

	workflow := &models.OnboardingWorkflow{
		ID:        uuid.New().String(),
		OrgID:     org.ID,
		Status:    models.OnboardingPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.onboardingRepo.CreateWorkflowTx(tx, workflow); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Failed to create onboarding workflow", nil)
		return
	}

	if err := tx.Commit(); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Database error", nil)
		return
	}

	h.auditLog.Log(&models.AuditLog{
		OrgID:      org.ID,
		UserID:     access.UserID,
		Action:     "org_created",
		EntityType: "organization",
		EntityID:   org.ID,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(org)
}

// List returns every org for super admins, or the caller's orgs otherwise.
func (h *OrgHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, appErr := h.guard.Identity(r.Context())
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	if _, err := h.guard.CheckSuperAdmin(r.Context()); err == nil {
		orgs, err := h.orgRepo.List()
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Database error", nil)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(orgs)
		return
	}

	memberships, err := h.membershipRepo.ListOrgsForUser(claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Database error", nil)
		return
	}

	orgs := make([]*models.Organization, 0, len(memberships))
	for _, m := range memberships {
		org, err := h.orgRepo.GetByID(m.OrgID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Database error", nil)
			return
		}
		if org != nil {
			orgs = append(orgs, org)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orgs)
}

func (h *OrgHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")

	if _, appErr := h.guard.CheckMembership(r.Context(), orgID); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	org, err := h.orgRepo.GetByID(orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Database error", nil)
		return
	}
	if org == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Organization not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(org)
}

func (h *OrgHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")

	if _, appErr := h.guard.CheckMembership(r.Context(), orgID); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	memberships, err := h.membershipRepo.ListByOrg(orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(memberships)
}

type AddMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *OrgHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")

	access, appErr := h.guard.CheckAdmin(r.Context(), orgID)
	if appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.ValidEmail(req.Email); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid role", nil)
		return
	}
	if role == models.RoleSuperAdmin {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Cannot grant super admin through membership", nil)
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Database error", nil)
		return
	}
	if user == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "No user with that email", nil)
		return
	}

	existing, err := h.membershipRepo.Get(user.ID, orgID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Database error", nil)
		return
	}
	if existing != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "User is already a member", nil)
		return
	}

	membership := &models.OrgMembership{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		OrgID:     orgID,
		Role:      role,
		CreatedAt: time.Now().Unix(),
	}
	if err := h.membershipRepo.Create(membership); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Failed to create membership", nil)
		return
	}

	if err := h.onboardingSvc.RecordEvent(onboarding.EventTeamMemberInvited, access.UserID, orgID, map[string]interface{}{
		"invited_user_id": user.ID,
	}); err != nil {
		log.Error().Err(err).Str("org_id", orgID).Msg("failed to record team member invite event")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(membership)
}

func (h *OrgHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	orgID := pathParam(r, "org_id")

	if _, appErr := h.guard.CheckAdmin(r.Context(), orgID); appErr != nil {
		errors.WriteAppError(w, appErr)
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	entries, err := h.auditLog.ListByOrg(orgID, limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeDatabase, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
