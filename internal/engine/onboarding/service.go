package onboarding

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/benreeder-coder/clienthub/internal/pkg/errors"
	"github.com/benreeder-coder/clienthub/internal/platform/email"
	"github.com/benreeder-coder/clienthub/internal/platform/models"
	"github.com/benreeder-coder/clienthub/internal/platform/repositories"
)

// ModuleSource supplies the currently-enabled module keys for an org. The
// module resolution engine satisfies this.
type ModuleSource interface {
	EnabledKeys(orgID string) ([]string, error)
}

// Service drives the per-organization onboarding state machine. The event
// log is the source of truth; workflow and org status fields are a
// denormalized cache recomputed from full history on every event.
type Service struct {
	catalog  []Step
	repo     *Repository
	orgRepo  *repositories.OrganizationRepository
	userRepo *repositories.UserProfileRepository
	resolver ModuleSource
	sender   email.Sender
	appURL   string
}

func NewService(catalog []Step, repo *Repository, orgRepo *repositories.OrganizationRepository,
	userRepo *repositories.UserProfileRepository, resolver ModuleSource, sender email.Sender, appURL string) *Service {
	return &Service{
		catalog:  catalog,
		repo:     repo,
		orgRepo:  orgRepo,
		userRepo: userRepo,
		resolver: resolver,
		sender:   sender,
		appURL:   appURL,
	}
}

// RecordEvent appends one immutable event and then recomputes derived
// state. The event insert is the durability boundary: recompute failures
// are logged and swallowed because the cache is repairable by replay.
func (s *Service) RecordEvent(eventType EventType, userID, orgID string, metadata map[string]interface{}) *errors.Error {
	if _, err := ParseEventType(string(eventType)); err != nil {
		return errors.Validation(err.Error())
	}

	if err := s.repo.InsertEvent(eventType, userID, orgID, metadata); err != nil {
		log.Error().Err(err).Str("org_id", orgID).Str("event", string(eventType)).Msg("failed to record onboarding event")
		return errors.Database("Failed to record onboarding event", err)
	}

	if err := s.UpdateProgress(orgID); err != nil {
		log.Error().Err(err).Str("org_id", orgID).Msg("onboarding progress recompute failed")
	}

	return nil
}

// UpdateProgress reloads the full event history and current module state,
// recomputes progress, and updates the workflow plus the org mirror field.
// Terminal workflows (completed, skipped) are never modified.
func (s *Service) UpdateProgress(orgID string) error {
	workflow, err := s.repo.WorkflowForOrg(orgID)
	if err != nil {
		return err
	}
	if workflow == nil {
		return fmt.Errorf("no onboarding workflow for org %s", orgID)
	}
	if models.IsTerminalOnboarding(workflow.Status) {
		return nil
	}

	eventTypes, err := s.repo.EventTypesForOrg(orgID)
	if err != nil {
		return err
	}

	enabledModules, err := s.resolver.EnabledKeys(orgID)
	if err != nil {
		return err
	}

	// Recompute assumes the admin step list; the only admin-gated step is
	// optional, so this cannot affect completion.
	steps := ApplicableSteps(s.catalog, enabledModules, true)
	progress := ComputeProgress(steps, eventTypes)

	now := time.Now().Unix()

	workflow.CurrentStep = nil
	if progress.CurrentStep != nil {
		key := progress.CurrentStep.Key
		workflow.CurrentStep = &key
	}

	if workflow.StartedAt == nil && len(eventTypes) > 0 {
		workflow.StartedAt = &now
		workflow.Status = models.OnboardingInProgress
	}

	completedNow := false
	if progress.IsComplete && workflow.Status != models.OnboardingCompleted {
		workflow.Status = models.OnboardingCompleted
		workflow.CompletedAt = &now
		completedNow = true
	}

	if err := s.repo.UpdateWorkflow(workflow); err != nil {
		return err
	}

	// Mirror onto the organization: completed mirrors exactly, any other
	// non-pending workflow state shows as in_progress.
	mirror := ""
	switch {
	case workflow.Status == models.OnboardingCompleted:
		mirror = models.OnboardingCompleted
	case workflow.Status != models.OnboardingPending:
		mirror = models.OnboardingInProgress
	}
	if mirror != "" {
		if err := s.orgRepo.UpdateOnboardingStatus(orgID, mirror, now); err != nil {
			return err
		}
	}

	if completedNow {
		s.notifyCompletion(orgID)
	}

	return nil
}

// Skip is a terminal override: it records the skip event for the acting
// user, force-sets the workflow to skipped, and marks the org completed.
// It never runs the normal completion check.
func (s *Service) Skip(orgID, userID string) *errors.Error {
	if userID != "" {
		if err := s.repo.InsertEvent(EventOnboardingSkipped, userID, orgID, nil); err != nil {
			log.Error().Err(err).Str("org_id", orgID).Msg("failed to record skip event")
		}
	}

	workflow, err := s.repo.WorkflowForOrg(orgID)
	if err != nil {
		return errors.Database("Failed to load onboarding workflow", err)
	}
	if workflow == nil {
		return errors.NotFound("Onboarding workflow not found")
	}

	now := time.Now().Unix()
	workflow.Status = models.OnboardingSkipped
	workflow.CompletedAt = &now
	if err := s.repo.UpdateWorkflow(workflow); err != nil {
		return errors.Database("Failed to skip onboarding", err)
	}

	if err := s.orgRepo.UpdateOnboardingStatus(orgID, models.OnboardingCompleted, now); err != nil {
		return errors.Database("Failed to update organization status", err)
	}

	return nil
}

// StepStatus is the per-step view returned by Status.
type StepStatus struct {
	Step
	Status string `json:"status"` // completed | current | pending
}

type Status struct {
	Workflow *models.OnboardingWorkflow `json:"workflow"`
	Steps    []StepStatus               `json:"steps"`
	Progress Progress                   `json:"progress"`
}

// GetStatus computes the live onboarding view for an org.
func (s *Service) GetStatus(orgID string, isAdmin bool) (*Status, *errors.Error) {
	workflow, err := s.repo.WorkflowForOrg(orgID)
	if err != nil {
		return nil, errors.Database("Failed to load onboarding workflow", err)
	}

	eventTypes, err := s.repo.EventTypesForOrg(orgID)
	if err != nil {
		return nil, errors.Database("Failed to load onboarding events", err)
	}

	enabledModules, err := s.resolver.EnabledKeys(orgID)
	if err != nil {
		return nil, errors.Database("Failed to resolve enabled modules", err)
	}

	steps := ApplicableSteps(s.catalog, enabledModules, isAdmin)
	progress := ComputeProgress(steps, eventTypes)

	completed := make(map[EventType]bool, len(eventTypes))
	for _, event := range eventTypes {
		completed[event] = true
	}

	stepStatuses := make([]StepStatus, 0, len(steps))
	for _, step := range steps {
		status := "pending"
		if StepComplete(step, completed) {
			status = "completed"
		} else if progress.CurrentStep != nil && progress.CurrentStep.Key == step.Key {
			status = "current"
		}
		stepStatuses = append(stepStatuses, StepStatus{Step: step, Status: status})
	}

	return &Status{Workflow: workflow, Steps: stepStatuses, Progress: progress}, nil
}

// SendReminder emails the user their current step if onboarding is still
// incomplete. Used by the background worker sweep.
func (s *Service) SendReminder(orgID, userID string) error {
	profile, err := s.userRepo.GetByID(userID)
	if err != nil || profile == nil {
		return err
	}
	org, err := s.orgRepo.GetByID(orgID)
	if err != nil || org == nil {
		return err
	}

	status, appErr := s.GetStatus(orgID, true)
	if appErr != nil {
		return appErr
	}
	if status.Progress.IsComplete {
		return nil
	}

	currentStep := "Continue setup"
	if status.Progress.CurrentStep != nil {
		currentStep = status.Progress.CurrentStep.Title
	}

	name := profile.FullName
	if name == "" {
		name = profile.Email
	}

	msg := email.OnboardingReminderMessage(name, org.Name, currentStep,
		status.Progress.CompletedSteps, status.Progress.TotalSteps, s.appURL+"/onboarding")
	if _, err := s.sender.Send([]string{profile.Email}, msg.Subject, msg.HTMLBody, msg.TextBody); err != nil {
		log.Error().Err(err).Str("org_id", orgID).Msg("failed to send onboarding reminder")
	}
	return nil
}

// notifyCompletion emails every super admin. Fire-and-log: a failure here
// never rolls back the completion itself.
func (s *Service) notifyCompletion(orgID string) {
	org, err := s.orgRepo.GetByID(orgID)
	if err != nil || org == nil {
		log.Error().Err(err).Str("org_id", orgID).Msg("failed to load org for completion notification")
		return
	}

	admins, err := s.userRepo.ListSuperAdmins()
	if err != nil {
		log.Error().Err(err).Msg("failed to list super admins for completion notification")
		return
	}
	if len(admins) == 0 {
		return
	}

	to := make([]string, 0, len(admins))
	for _, admin := range admins {
		to = append(to, admin.Email)
	}

	msg := email.AdminNotificationMessage(
		fmt.Sprintf("%s completed onboarding", org.Name),
		fmt.Sprintf("The organization %q has completed their onboarding process and is now fully set up.", org.Name),
		s.appURL+"/admin/organizations/"+orgID,
		"View Organization",
	)
	if _, err := s.sender.Send(to, msg.Subject, msg.HTMLBody, msg.TextBody); err != nil {
		log.Error().Err(err).Str("org_id", orgID).Msg("failed to send completion notification")
	}
}
