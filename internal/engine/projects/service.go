package projects

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/benreeder-coder/clienthub/internal/engine/onboarding"
	"github.com/benreeder-coder/clienthub/internal/pkg/errors"
	"github.com/benreeder-coder/clienthub/internal/platform/models"
)

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
	Name        string
	Description string
	Status      string
	StartDate   *string
	EndDate     *string
}

func (s *Service) Create(orgID, userID string, in CreateInput) (*models.Project, *errors.Error) {
	if in.Name == "" {
		return nil, errors.Validation("Project name is required")
	}
	if in.Status == "" {
		in.Status = models.ProjectStatusPlanning
	}
	if _, err := models.ParseProjectStatus(in.Status); err != nil {
		return nil, errors.Validation(err.Error())
	}

	now := time.Now().Unix()
	project := &models.Project{
		ID:          uuid.New().String(),
		OrgID:       orgID,
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(project); err != nil {
		return nil, errors.Database("Failed to create project", err)
	}

	if s.onboarding != nil {
		if appErr := s.onboarding.RecordEvent(onboarding.EventFirstProjectCreated, userID, orgID,
			map[string]interface{}{"project_id": project.ID}); appErr != nil {
			log.Error().Err(appErr).Str("org_id", orgID).Msg("failed to record first project event")
		}
	}

	return project, nil
}

func (s *Service) Get(projectID, orgID string) (*models.Project, *errors.Error) {
	project, err := s.repo.GetByID(projectID, orgID)
	if err != nil {
		return nil, errors.Database("Failed to fetch project", err)
	}
	if project == nil {
		return nil, errors.NotFound("Project not found")
	}
	return project, nil
}

func (s *Service) List(orgID string) ([]*models.Project, *errors.Error) {
	projects, err := s.repo.ListByOrg(orgID)
	if err != nil {
		return nil, errors.Database("Failed to fetch projects", err)
	}
	return projects, nil
}

type UpdateInput struct {
	Name        *string
	Description *string
	Status      *string
	StartDate   *string
	EndDate     *string
}

func (s *Service) Update(projectID, orgID string, in UpdateInput) (*models.Project, *errors.Error) {
	project, appErr := s.Get(projectID, orgID)
	if appErr != nil {
		return nil, appErr
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, errors.Validation("Project name cannot be empty")
		}
		project.Name = *in.Name
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Status != nil {
		if _, err := models.ParseProjectStatus(*in.Status); err != nil {
			return nil, errors.Validation(err.Error())
		}
		project.Status = *in.Status
	}
	if in.StartDate != nil {
		project.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		project.EndDate = in.EndDate
	}

	if err := s.repo.Update(project); err != nil {
		return nil, errors.Database("Failed to update project", err)
	}
	return project, nil
}

func (s *Service) Delete(projectID, orgID string) *errors.Error {
	if _, appErr := s.Get(projectID, orgID); appErr != nil {
		return appErr
	}
	if err := s.repo.Delete(projectID, orgID); err != nil {
		return errors.Database("Failed to delete project", err)
	}
	return nil
}
