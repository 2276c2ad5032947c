package tasks

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

const taskColumns = `id, org_id, project_id, title, description, status, priority, assigned_to, due_date, sort_order, created_by, created_at, updated_at`

// Create appends the task at the end of its (org, status) partition. The
// read-max-then-insert pair runs in one transaction so concurrent creates
// cannot claim the same slot.
func (r *Repository) Create(task *models.Task) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var maxSort sql.NullInt64
	err = tx.QueryRow(`
		SELECT MAX(sort_order) FROM tasks WHERE org_id = ? AND status = ?
	`, task.OrgID, task.Status).Scan(&maxSort)
	if err != nil {
		return err
	}
	task.SortOrder = 0
	if maxSort.Valid {
		task.SortOrder = int(maxSort.Int64) + 1
	}

	_, err = tx.Exec(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.OrgID, task.ProjectID, task.Title, task.Description, task.Status,
		task.Priority, task.AssignedTo, task.DueDate, task.SortOrder, task.CreatedBy,
		task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) GetByID(taskID, orgID string) (*models.Task, error) {
	row := r.db.QueryRow(`
		SELECT `+taskColumns+` FROM tasks WHERE id = ? AND org_id = ?
	`, taskID, orgID)
	return scanTask(row)
}

func (r *Repository) ListByOrg(orgID string, projectID string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE org_id = ?`
	args := []interface{}{orgID}
	if projectID != "" {
		query += ` AND project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY status, sort_order`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *Repository) Update(task *models.Task) error {
	task.UpdatedAt = time.Now().Unix()
	_, err := r.db.Exec(`
		UPDATE tasks SET project_id = ?, title = ?, description = ?, priority = ?,
			assigned_to = ?, due_date = ?, updated_at = ?
		WHERE id = ? AND org_id = ?
	`, task.ProjectID, task.Title, task.Description, task.Priority,
		task.AssignedTo, task.DueDate, task.UpdatedAt, task.ID, task.OrgID)
	return err
}

// Move repositions a task within or across status columns. The whole
// reorder-then-set sequence runs in one transaction: partial application
// would break the gap-free sort_order invariant.
func (r *Repository) Move(orgID, taskID, newStatus string, newPosition int) (*models.Task, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var oldStatus string
	var oldPosition int
	err = tx.QueryRow(`
		SELECT status, sort_order FROM tasks WHERE id = ? AND org_id = ?
	`, taskID, orgID).Scan(&oldStatus, &oldPosition)
	if err != nil {
		return nil, err
	}

	if oldStatus == newStatus {
		switch {
		case newPosition > oldPosition:
			_, err = tx.Exec(`
				UPDATE tasks SET sort_order = sort_order - 1
				WHERE org_id = ? AND status = ? AND sort_order > ? AND sort_order <= ?
			`, orgID, oldStatus, oldPosition, newPosition)
		case newPosition < oldPosition:
			_, err = tx.Exec(`
				UPDATE tasks SET sort_order = sort_order + 1
				WHERE org_id = ? AND status = ? AND sort_order >= ? AND sort_order < ?
			`, orgID, oldStatus, newPosition, oldPosition)
		}
		if err != nil {
			return nil, err
		}
	} else {
		// Close the gap left in the old column.
		_, err = tx.Exec(`
			UPDATE tasks SET sort_order = sort_order - 1
			WHERE org_id = ? AND status = ? AND sort_order > ?
		`, orgID, oldStatus, oldPosition)
		if err != nil {
			return nil, err
		}
		// Open a slot in the new column.
		_, err = tx.Exec(`
			UPDATE tasks SET sort_order = sort_order + 1
			WHERE org_id = ? AND status = ? AND sort_order >= ?
		`, orgID, newStatus, newPosition)
		if err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(`
		UPDATE tasks SET status = ?, sort_order = ?, updated_at = ? WHERE id = ? AND org_id = ?
	`, newStatus, newPosition, time.Now().Unix(), taskID, orgID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(taskID, orgID)
}

// Delete removes the task and closes the vacated slot so the partition
// stays dense.
func (r *Repository) Delete(taskID, orgID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status string
	var position int
	err = tx.QueryRow(`
		SELECT status, sort_order FROM tasks WHERE id = ? AND org_id = ?
	`, taskID, orgID).Scan(&status, &position)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ? AND org_id = ?`, taskID, orgID); err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE tasks SET sort_order = sort_order - 1
		WHERE org_id = ? AND status = ? AND sort_order > ?
	`, orgID, status, position)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// PartitionSize counts tasks in one (org, status) column.
func (r *Repository) PartitionSize(orgID, status string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM tasks WHERE org_id = ? AND status = ?
	`, orgID, status).Scan(&count)
	return count, err
}

func scanTask(s interface {
	Scan(dest ...interface{}) error
}) (*models.Task, error) {
	task := &models.Task{}
	err := s.Scan(
		&task.ID,
		&task.OrgID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.AssignedTo,
		&task.DueDate,
		&task.SortOrder,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}
