package tasks

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/benreeder-coder/clienthub/internal/engine/onboarding"
	"github.com/benreeder-coder/clienthub/internal/pkg/errors"
	"github.com/benreeder-coder/clienthub/internal/platform/models"
)

// EventRecorder lets the service emit onboarding events without owning the
// onboarding engine. Recording is fire-and-forget; the engine's recompute
// is idempotent so repeated events are harmless.
type EventRecorder interface {
	RecordEvent(eventType onboarding.EventType, userID, orgID string, metadata map[string]interface{}) *errors.Error
}

type Service struct {
	repo       *Repository
	onboarding EventRecorder
}

func NewService(repo *Repository, recorder EventRecorder) *Service {
	return &Service{repo: repo, onboarding: recorder}
}

type CreateInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	ProjectID   *string
	AssignedTo  *string
	DueDate     *string
}

func (s *Service) Create(orgID, userID string, in CreateInput) (*models.Task, *errors.Error) {
	if in.Title == "" {
		return nil, errors.Validation("Task title is required")
	}
	if in.Status == "" {
		in.Status = models.TaskStatusTodo
	}
	if _, err := models.ParseTaskStatus(in.Status); err != nil {
		return nil, errors.Validation(err.Error())
	}
	if in.Priority == "" {
		in.Priority = "medium"
	}

	now := time.Now().Unix()
	task := &models.Task{
		ID:          uuid.New().String(),
		OrgID:       orgID,
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		AssignedTo:  in.AssignedTo,
		DueDate:     in.DueDate,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(task); err != nil {
		return nil, errors.Database("Failed to create task", err)
	}

	if s.onboarding != nil {
		if appErr := s.onboarding.RecordEvent(onboarding.EventFirstTaskCreated, userID, orgID,
			map[string]interface{}{"task_id": task.ID}); appErr != nil {
			log.Error().Err(appErr).Str("org_id", orgID).Msg("failed to record first task event")
		}
	}

	return task, nil
}

func (s *Service) Get(taskID, orgID string) (*models.Task, *errors.Error) {
	task, err := s.repo.GetByID(taskID, orgID)
	if err != nil {
		return nil, errors.Database("Failed to fetch task", err)
	}
	if task == nil {
		return nil, errors.NotFound("Task not found")
	}
	return task, nil
}

func (s *Service) List(orgID, projectID string) ([]*models.Task, *errors.Error) {
	tasks, err := s.repo.ListByOrg(orgID, projectID)
	if err != nil {
		return nil, errors.Database("Failed to fetch tasks", err)
	}
	return tasks, nil
}

type UpdateInput struct {
	Title       *string
	Description *string
	Priority    *string
	ProjectID   *string
	AssignedTo  *string
	DueDate     *string
}

func (s *Service) Update(taskID, orgID string, in UpdateInput) (*models.Task, *errors.Error) {
	task, appErr := s.Get(taskID, orgID)
	if appErr != nil {
		return nil, appErr
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, errors.Validation("Task title cannot be empty")
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.ProjectID != nil {
		task.ProjectID = in.ProjectID
	}
	if in.AssignedTo != nil {
		task.AssignedTo = in.AssignedTo
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	if err := s.repo.Update(task); err != nil {
		return nil, errors.Database("Failed to update task", err)
	}
	return task, nil
}

// Move runs the kanban reordering protocol. Position is validated and
// clamped to the target partition before any row is touched.
func (s *Service) Move(orgID, taskID, newStatus string, newPosition int) (*models.Task, *errors.Error) {
	if _, err := models.ParseTaskStatus(newStatus); err != nil {
		return nil, errors.Validation(err.Error())
	}
	if newPosition < 0 {
		return nil, errors.Validation("Position must be zero or greater")
	}

	current, appErr := s.Get(taskID, orgID)
	if appErr != nil {
		return nil, appErr
	}

	// Clamp to the end of the target column so the partition stays dense.
	size, err := s.repo.PartitionSize(orgID, newStatus)
	if err != nil {
		return nil, errors.Database("Failed to inspect task column", err)
	}
	maxPosition := size
	if current.Status == newStatus {
		maxPosition = size - 1
	}
	if maxPosition < 0 {
		maxPosition = 0
	}
	if newPosition > maxPosition {
		newPosition = maxPosition
	}

	task, err := s.repo.Move(orgID, taskID, newStatus, newPosition)
	if err != nil {
		return nil, errors.Database("Failed to move task", err)
	}
	return task, nil
}

func (s *Service) Delete(taskID, orgID string) *errors.Error {
	if _, appErr := s.Get(taskID, orgID); appErr != nil {
		return appErr
	}
	if err := s.repo.Delete(taskID, orgID); err != nil {
		return errors.Database("Failed to delete task", err)
	}
	return nil
}
