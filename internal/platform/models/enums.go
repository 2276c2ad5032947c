package models

import "fmt"

// Roles a user can hold within an organization. SuperAdmin is synthesized
// from the user profile flag and never stored as a membership row role.
const (
	RoleSuperAdmin = "super_admin"
	RoleOrgAdmin   = "org_admin"
	RoleOrgMember  = "org_member"
	RoleClient     = "client"
)

const (
	OnboardingPending    = "pending"
	OnboardingInProgress = "in_progress"
	OnboardingCompleted  = "completed"
	OnboardingSkipped    = "skipped"
)

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusReview     = "review"
	TaskStatusDone       = "done"
	TaskStatusArchived   = "archived"
)

const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on_hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// ParseRole validates a stored membership role. Unrecognized values are an
// error, never coerced.
func ParseRole(s string) (string, error) {
	switch s {
	case RoleSuperAdmin, RoleOrgAdmin, RoleOrgMember, RoleClient:
		return s, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func ParseOnboardingStatus(s string) (string, error) {
	switch s {
	case OnboardingPending, OnboardingInProgress, OnboardingCompleted, OnboardingSkipped:
		return s, nil
	}
	return "", fmt.Errorf("unknown onboarding status %q", s)
}

func ParseTaskStatus(s string) (string, error) {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone, TaskStatusArchived:
		return s, nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

func ParseProjectStatus(s string) (string, error) {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold,
		ProjectStatusCompleted, ProjectStatusCancelled:
		return s, nil
	}
	return "", fmt.Errorf("unknown project status %q", s)
}

// IsTerminalOnboarding reports whether a workflow status can never change
// again.
func IsTerminalOnboarding(status string) bool {
	return status == OnboardingCompleted || status == OnboardingSkipped
}
