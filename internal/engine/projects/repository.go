package projects

import (
	"database/sql"
	"time"

	"github.com/benreeder-coder/clienthub/internal/platform/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const projectColumns = `id, org_id, name, description, status, start_date, end_date, created_by, created_at, updated_at`

func (r *Repository) Create(project *models.Project) error {
	_, err := r.db.Exec(`
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, project.ID, project.OrgID, project.Name, project.Description, project.Status,
		project.StartDate, project.EndDate, project.CreatedBy, project.CreatedAt, project.UpdatedAt)
	return err
}

func (r *Repository) GetByID(projectID, orgID string) (*models.Project, error) {
	row := r.db.QueryRow(`
		SELECT `+projectColumns+` FROM projects WHERE id = ? AND org_id = ?
	`, projectID, orgID)
	return scanProject(row)
}

func (r *Repository) ListByOrg(orgID string) ([]*models.Project, error) {
	rows, err := r.db.Query(`
		SELECT `+projectColumns+` FROM projects WHERE org_id = ? ORDER BY created_at DESC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (r *Repository) Update(project *models.Project) error {
	project.UpdatedAt = time.Now().Unix()
	_, err := r.db.Exec(`
		UPDATE projects SET name = ?, description = ?, status = ?, start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ? AND org_id = ?
	`, project.Name, project.Description, project.Status, project.StartDate, project.EndDate,
		project.UpdatedAt, project.ID, project.OrgID)
	return err
}

func (r *Repository) Delete(projectID, orgID string) error {
	_, err := r.db.Exec(`DELETE FROM projects WHERE id = ? AND org_id = ?`, projectID, orgID)
	return err
}

func scanProject(s interface {
	Scan(dest ...interface{}) error
}) (*models.Project, error) {
	project := &models.Project{}
	err := s.Scan(
		&project.ID,
		&project.OrgID,
		&project.Name,
		&project.Description,
		&project.Status,
		&project.StartDate,
		&project.EndDate,
		&project.CreatedBy,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return project, nil
}
