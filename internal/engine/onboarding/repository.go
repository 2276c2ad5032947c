package onboarding

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/benreeder-coder/clienthub/internal/platform/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertEvent appends to the immutable event log. Rows are never updated
// or deleted.
func (r *Repository) InsertEvent(eventType EventType, userID, orgID string, metadata map[string]interface{}) error {
	metadataJSON, _ := json.Marshal(metadata)
	_, err := r.db.Exec(`
		INSERT INTO onboarding_events (id, event_type, user_id, org_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), string(eventType), userID, orgID, string(metadataJSON), time.Now().Unix())
	return err
}

// EventTypesForOrg returns every recorded event type for the org, oldest
// first. Duplicates are preserved; progress computation treats them as a
// set.
func (r *Repository) EventTypesForOrg(orgID string) ([]EventType, error) {
	rows, err := r.db.Query(`
		SELECT event_type FROM onboarding_events WHERE org_id = ? ORDER BY created_at
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []EventType
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		types = append(types, EventType(raw))
	}
	return types, rows.Err()
}

func (r *Repository) CreateWorkflow(w *models.OnboardingWorkflow) error {
	return r.createWorkflow(r.db, w)
}

func (r *Repository) CreateWorkflowTx(tx *sql.Tx, w *models.OnboardingWorkflow) error {
	return r.createWorkflow(tx, w)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func (r *Repository) createWorkflow(e execer, w *models.OnboardingWorkflow) error {
	_, err := e.Exec(`
		INSERT INTO onboarding_workflows (id, org_id, status, current_step, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.OrgID, w.Status, w.CurrentStep, w.StartedAt, w.CompletedAt, w.CreatedAt, w.UpdatedAt)
	return err
}

func (r *Repository) WorkflowForOrg(orgID string) (*models.OnboardingWorkflow, error) {
	w := &models.OnboardingWorkflow{}
	err := r.db.QueryRow(`
		SELECT id, org_id, status, current_step, started_at, completed_at, created_at, updated_at
		FROM onboarding_workflows WHERE org_id = ?
	`, orgID).Scan(&w.ID, &w.OrgID, &w.Status, &w.CurrentStep, &w.StartedAt, &w.CompletedAt, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

func (r *Repository) UpdateWorkflow(w *models.OnboardingWorkflow) error {
	w.UpdatedAt = time.Now().Unix()
	_, err := r.db.Exec(`
		UPDATE onboarding_workflows SET status = ?, current_step = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`, w.Status, w.CurrentStep, w.StartedAt, w.CompletedAt, w.UpdatedAt, w.ID)
	return err
}

// StaleInProgress lists workflows started before the cutoff and still not
// finished. The reminder worker sweeps these.
func (r *Repository) StaleInProgress(cutoff int64) ([]*models.OnboardingWorkflow, error) {
	rows, err := r.db.Query(`
		SELECT id, org_id, status, current_step, started_at, completed_at, created_at, updated_at
		FROM onboarding_workflows
		WHERE status = ? AND updated_at < ?
	`, models.OnboardingInProgress, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workflows []*models.OnboardingWorkflow
	for rows.Next() {
		w := &models.OnboardingWorkflow{}
		if err := rows.Scan(&w.ID, &w.OrgID, &w.Status, &w.CurrentStep, &w.StartedAt, &w.CompletedAt, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		workflows = append(workflows, w)
	}
	return workflows, rows.Err()
}
