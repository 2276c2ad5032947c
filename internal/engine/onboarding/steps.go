package onboarding

import (
	"fmt"
	"math"
	"sort"
)

// EventType enumerates every recordable onboarding event.
type EventType string

const (
	EventProfileCompleted           EventType = "profile_completed"
	EventAvatarUploaded             EventType = "avatar_uploaded"
	EventNotificationPreferencesSet EventType = "notification_preferences_set"
	EventFirstProjectCreated        EventType = "first_project_created"
	EventFirstTaskCreated           EventType = "first_task_created"
	EventFirstDocumentUploaded      EventType = "first_document_uploaded"
	EventTeamMemberInvited          EventType = "team_member_invited"
	EventTeamMemberJoined           EventType = "team_member_joined"
	EventIntegrationConnected       EventType = "integration_connected"
	EventWorkflowsExplored          EventType = "workflows_explored"
	EventOutreachCampaignCreated    EventType = "outreach_campaign_created"
	EventAnalyticsDashboardViewed   EventType = "analytics_dashboard_viewed"
	EventOnboardingSkipped          EventType = "onboarding_skipped"
	EventOnboardingCompleted        EventType = "onboarding_completed"
)

var knownEventTypes = map[EventType]bool{
	EventProfileCompleted:           true,
	EventAvatarUploaded:             true,
	EventNotificationPreferencesSet: true,
	EventFirstProjectCreated:        true,
	EventFirstTaskCreated:           true,
	EventFirstDocumentUploaded:      true,
	EventTeamMemberInvited:          true,
	EventTeamMemberJoined:           true,
	EventIntegrationConnected:       true,
	EventWorkflowsExplored:          true,
	EventOutreachCampaignCreated:    true,
	EventAnalyticsDashboardViewed:   true,
	EventOnboardingSkipped:          true,
	EventOnboardingCompleted:        true,
}

func ParseEventType(s string) (EventType, error) {
	if knownEventTypes[EventType(s)] {
		return EventType(s), nil
	}
	return "", fmt.Errorf("unknown onboarding event type %q", s)
}

// Step is one unit of guided setup. A step is satisfied when every event
// type in RequiredEvents has been recorded for the org.
type Step struct {
	Key            string      `json:"key"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Module         string      `json:"module,omitempty"`
	RequiredEvents []EventType `json:"required_events"`
	Order          int         `json:"order"`
	IsOptional     bool        `json:"is_optional"`
}

// stepInviteTeam is admin-gated rather than module-gated.
const stepInviteTeam = "invite_team"

// DefaultSteps is the full step catalog; ApplicableSteps filters it per
// org. Loaded once at startup and passed into the service.
func DefaultSteps() []Step {
	return []Step{
		{Key: "profile", Title: "Complete Your Profile", Description: "Add your name and profile picture",
			RequiredEvents: []EventType{EventProfileCompleted}, Order: 1},
		{Key: "first_project", Title: "Create Your First Project", Description: "Set up a project to organize your work",
			Module: "projects", RequiredEvents: []EventType{EventFirstProjectCreated}, Order: 2},
		{Key: "first_task", Title: "Add Your First Task", Description: "Break down work into manageable tasks",
			Module: "tasks", RequiredEvents: []EventType{EventFirstTaskCreated}, Order: 3},
		{Key: "first_document", Title: "Upload a Document", Description: "Store important files in your workspace",
			Module: "documents", RequiredEvents: []EventType{EventFirstDocumentUploaded}, Order: 4, IsOptional: true},
		{Key: stepInviteTeam, Title: "Invite Your Team", Description: "Add team members to collaborate",
			RequiredEvents: []EventType{EventTeamMemberInvited}, Order: 5, IsOptional: true},
		{Key: "explore_workflows", Title: "Explore Workflows", Description: "Learn how to automate your processes",
			Module: "workflows", RequiredEvents: []EventType{EventWorkflowsExplored}, Order: 6, IsOptional: true},
		{Key: "first_campaign", Title: "Create an Outreach Campaign", Description: "Start your first outreach campaign",
			Module: "outreach", RequiredEvents: []EventType{EventOutreachCampaignCreated}, Order: 7, IsOptional: true},
		{Key: "view_analytics", Title: "View Analytics", Description: "Explore your performance metrics",
			Module: "analytics", RequiredEvents: []EventType{EventAnalyticsDashboardViewed}, Order: 8, IsOptional: true},
	}
}

// ApplicableSteps filters the catalog for one org: module-dependent steps
// require the module to be enabled, the team-invite step requires an admin.
// The list is recomputed from live module state on every call, so it can
// shrink or grow mid-onboarding.
func ApplicableSteps(catalog []Step, enabledModules []string, isAdmin bool) []Step {
	enabled := make(map[string]bool, len(enabledModules))
	for _, key := range enabledModules {
		enabled[key] = true
	}

	var steps []Step
	for _, step := range catalog {
		if step.Module != "" && !enabled[step.Module] {
			continue
		}
		if step.Key == stepInviteTeam && !isAdmin {
			continue
		}
		steps = append(steps, step)
	}

	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Order < steps[j].Order
	})
	return steps
}

// Progress summarizes completion over an applicable step list. Only
// required steps gate IsComplete and PercentComplete.
type Progress struct {
	CompletedSteps    int   `json:"completed_steps"`
	TotalSteps        int   `json:"total_steps"`
	RequiredCompleted int   `json:"required_completed"`
	RequiredTotal     int   `json:"required_total"`
	PercentComplete   int   `json:"percent_complete"`
	IsComplete        bool  `json:"is_complete"`
	CurrentStep       *Step `json:"current_step,omitempty"`
	NextStep          *Step `json:"next_step,omitempty"`
}

// StepComplete reports whether every required event of the step is present
// in the completed set. Order and duplicates are irrelevant.
func StepComplete(step Step, completed map[EventType]bool) bool {
	for _, event := range step.RequiredEvents {
		if !completed[event] {
			return false
		}
	}
	return true
}

// ComputeProgress walks the steps once in declared order. CurrentStep is
// the first incomplete step, NextStep the first incomplete step after it.
func ComputeProgress(steps []Step, completedEvents []EventType) Progress {
	completed := make(map[EventType]bool, len(completedEvents))
	for _, event := range completedEvents {
		completed[event] = true
	}

	progress := Progress{TotalSteps: len(steps)}

	for i := range steps {
		step := steps[i]
		if !step.IsOptional {
			progress.RequiredTotal++
		}

		if StepComplete(step, completed) {
			progress.CompletedSteps++
			if !step.IsOptional {
				progress.RequiredCompleted++
			}
			continue
		}

		if progress.CurrentStep == nil {
			progress.CurrentStep = &steps[i]
		} else if progress.NextStep == nil {
			progress.NextStep = &steps[i]
		}
	}

	progress.IsComplete = progress.RequiredCompleted >= progress.RequiredTotal
	if progress.RequiredTotal == 0 {
		progress.PercentComplete = 100
	} else {
		progress.PercentComplete = int(math.Round(float64(progress.RequiredCompleted) / float64(progress.RequiredTotal) * 100))
	}

	return progress
}
