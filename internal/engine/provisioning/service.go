package provisioning

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/benreeder-coder/clienthub/internal/engine/modules"
	"github.com/benreeder-coder/clienthub/internal/engine/onboarding"
	"github.com/benreeder-coder/clienthub/internal/integrations/pandadoc"
	"github.com/benreeder-coder/clienthub/internal/pkg/errors"
	"github.com/benreeder-coder/clienthub/internal/platform/audit"
	"github.com/benreeder-coder/clienthub/internal/platform/email"
	"github.com/benreeder-coder/clienthub/internal/platform/models"
	"github.com/benreeder-coder/clienthub/internal/platform/repositories"
)

// Result reports what a webhook delivery did. Status is one of ignored,
// exists, provisioned.
type Result struct {
	Status   string `json:"status"`
	OrgID    string `json:"org_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Template string `json:"template,omitempty"`
}

// Service turns a completed contract into a ready workspace: organization,
// template assignment, admin user, membership, and a pending onboarding
// workflow. Idempotent on slug collision.
type Service struct {
	docs           pandadoc.DocumentAPI
	orgRepo        *repositories.OrganizationRepository
	userRepo       *repositories.UserProfileRepository
	membershipRepo *repositories.MembershipRepository
	templateRepo   *repositories.TemplateRepository
	moduleRepo     *modules.Repository
	onboardingRepo *onboarding.Repository
	auditLog       *audit.Logger
	sender         email.Sender
	appURL         string
}

func NewService(docs pandadoc.DocumentAPI, orgRepo *repositories.OrganizationRepository,
	userRepo *repositories.UserProfileRepository, membershipRepo *repositories.MembershipRepository,
	templateRepo *repositories.TemplateRepository, moduleRepo *modules.Repository,
	onboardingRepo *onboarding.Repository, auditLog *audit.Logger, sender email.Sender, appURL string) *Service {
	return &Service{
		docs:           docs,
		orgRepo:        orgRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		templateRepo:   templateRepo,
		moduleRepo:     moduleRepo,
		onboardingRepo: onboardingRepo,
		auditLog:       auditLog,
		sender:         sender,
		appURL:         appURL,
	}
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe org slug from a company name.
func Slugify(name string) string {
	slug := slugCleaner.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// ProvisionFromDocument handles a verified completion event for one
// contract document.
func (s *Service) ProvisionFromDocument(documentID string) (*Result, *errors.Error) {
	doc, err := s.docs.GetDocument(documentID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "Failed to fetch contract document", err)
	}
	fields, err := s.docs.GetDocumentFields(documentID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "Failed to fetch contract fields", err)
	}

	info := pandadoc.ExtractPackageInfo(fields)

	var signer *pandadoc.Recipient
	for i := range doc.Recipients {
		r := doc.Recipients[i]
		if r.Role == "signer" && r.HasCompleted {
			signer = &doc.Recipients[i]
			break
		}
	}

	clientEmail := info.ClientEmail
	clientName := info.ClientName
	if clientEmail == "" && signer != nil {
		clientEmail = signer.Email
	}
	if clientName == "" && signer != nil {
		clientName = strings.TrimSpace(signer.FirstName + " " + signer.LastName)
	}
	if clientEmail == "" {
		return nil, errors.Validation("No client email found in document")
	}

	companyName := info.CompanyName
	if companyName == "" {
		companyName = clientName
	}
	if companyName == "" {
		companyName = strings.SplitN(clientEmail, "@", 2)[0]
	}

	slug := Slugify(companyName)
	if slug == "" {
		return nil, errors.Validation("Could not derive organization slug")
	}

	existing, err := s.orgRepo.GetBySlug(slug)
	if err != nil {
		return nil, errors.Database("Failed to check for existing organization", err)
	}
	if existing != nil {
		log.Info().Str("slug", slug).Str("org_id", existing.ID).Msg("organization already provisioned")
		return &Result{Status: "exists", OrgID: existing.ID}, nil
	}

	templateName := pandadoc.DefaultTemplateName
	if info.PackageName != "" {
		templateName = pandadoc.TemplateForPackage(info.PackageName)
	}
	template, err := s.templateRepo.GetByName(templateName)
	if err != nil {
		return nil, errors.Database("Failed to look up workspace template", err)
	}
	if template == nil {
		template, err = s.templateRepo.FirstActive()
		if err != nil {
			return nil, errors.Database("Failed to look up fallback template", err)
		}
	}

	now := time.Now().Unix()
	org := &models.Organization{
		ID:   uuid.New().String(),
		Name: companyName,
		Slug: slug,
		Settings: map[string]interface{}{
			"pandadoc_document_id": documentID,
			"package":              info.PackageName,
			"tier":                 info.TierLevel,
		},
		OnboardingStatus: models.OnboardingPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	userID, appErr := s.findOrCreateUser(clientEmail, clientName, now)
	if appErr != nil {
		return nil, appErr
	}

	tx, err := s.orgRepo.BeginTx()
	if err != nil {
		return nil, errors.Database("Failed to begin provisioning transaction", err)
	}
	defer tx.Rollback()

	if err := s.orgRepo.CreateTx(tx, org); err != nil {
		return nil, errors.Database("Failed to create organization", err)
	}

	if template != nil {
		if err := s.moduleRepo.AssignTemplateTx(tx, org.ID, template.ID, nil); err != nil {
			return nil, errors.Database("Failed to assign template", err)
		}
	} else {
		log.Warn().Str("org_id", org.ID).Msg("no active workspace template available, provisioning without one")
	}

	membership := &models.OrgMembership{
		ID:        uuid.New().String(),
		UserID:    userID,
		OrgID:     org.ID,
		Role:      models.RoleOrgAdmin,
		CreatedAt: now,
	}
	if err := s.membershipRepo.CreateTx(tx, membership); err != nil {
		return nil, errors.Database("Failed to create membership", err)
	}

	workflow := &models.OnboardingWorkflow{
		ID:        uuid.New().String(),
		OrgID:     org.ID,
		Status:    models.OnboardingPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.onboardingRepo.CreateWorkflowTx(tx, workflow); err != nil {
		return nil, errors.Database("Failed to create onboarding workflow", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Database("Failed to commit provisioning", err)
	}

	s.auditLog.Log(&models.AuditLog{
		OrgID:      org.ID,
		Action:     "org_created_from_contract",
		EntityType: "organization",
		EntityID:   org.ID,
		Metadata: map[string]interface{}{
			"pandadoc_document_id": documentID,
			"package":              info.PackageName,
			"tier":                 info.TierLevel,
			"client_email":         clientEmail,
		},
	})

	name := clientName
	if name == "" {
		name = clientEmail
	}
	msg := email.WelcomeMessage(name, companyName, s.appURL+"/login")
	if _, err := s.sender.Send([]string{clientEmail}, msg.Subject, msg.HTMLBody, msg.TextBody); err != nil {
		log.Error().Err(err).Str("org_id", org.ID).Msg("failed to send welcome email")
	}

	templateUsed := ""
	if template != nil {
		templateUsed = template.Name
	}
	return &Result{Status: "provisioned", OrgID: org.ID, UserID: userID, Template: templateUsed}, nil
}

func (s *Service) findOrCreateUser(clientEmail, clientName string, now int64) (string, *errors.Error) {
	existing, err := s.userRepo.GetByEmail(clientEmail)
	if err != nil {
		return "", errors.Database("Failed to look up user", err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	user := &models.UserProfile{
		ID:        uuid.New().String(),
		Email:     clientEmail,
		FullName:  clientName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return "", errors.Database("Failed to create user", err)
	}
	return user.ID, nil
}
