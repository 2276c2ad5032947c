package repositories

import (
	"database/sql"

	"github.com/benreeder-coder/clienthub/internal/platform/models"
)

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(t *models.WorkspaceTemplate) error {
	_, err := r.db.Exec(`
		INSERT INTO workspace_templates (id, name, description, is_default, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.Description, t.IsDefault, t.IsActive, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *TemplateRepository) GetByID(id string) (*models.WorkspaceTemplate, error) {
	return r.getBy("id = ?", id)
}

func (r *TemplateRepository) GetByName(name string) (*models.WorkspaceTemplate, error) {
	return r.getBy("name = ?", name)
}

// FirstActive is the provisioning fallback when a package maps to a
// template that does not exist.
func (r *TemplateRepository) FirstActive() (*models.WorkspaceTemplate, error) {
	return r.getBy("is_active = 1 ORDER BY created_at LIMIT 1", nil)
}

func (r *TemplateRepository) getBy(where string, arg interface{}) (*models.WorkspaceTemplate, error) {
	t := &models.WorkspaceTemplate{}
	query := `
		SELECT id, name, description, is_default, is_active, created_at, updated_at
		FROM workspace_templates WHERE ` + where
	var row *sql.Row
	if arg != nil {
		row = r.db.QueryRow(query, arg)
	} else {
		row = r.db.QueryRow(query)
	}
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.IsDefault, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *TemplateRepository) List() ([]*models.WorkspaceTemplate, error) {
	rows, err := r.db.Query(`
		SELECT id, name, description, is_default, is_active, created_at, updated_at
		FROM workspace_templates ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.WorkspaceTemplate
	for rows.Next() {
		t := &models.WorkspaceTemplate{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.IsDefault, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}
