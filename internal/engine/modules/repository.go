package modules

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

// TemplateIDForOrg returns the org's single template assignment, or empty
// when no template is assigned.
func (r *Repository) TemplateIDForOrg(orgID string) (string, error) {
	var templateID string
	err := r.db.QueryRow(`
		SELECT template_id FROM org_template_assignments WHERE org_id = ?
	`, orgID).Scan(&templateID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return templateID, nil
}

func (r *Repository) templateDefaults(templateID string) (map[string]templateDefault, error) {
	rows, err := r.db.Query(`
		SELECT module_key, display_name, description, icon, route_path, default_state, sort_order, config
		FROM template_modules WHERE template_id = ? ORDER BY sort_order
	`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defaults := make(map[string]templateDefault)
	for rows.Next() {
		var td templateDefault
		var state string
		var configRaw []byte
		if err := rows.Scan(&td.ModuleKey, &td.DisplayName, &td.Description, &td.Icon, &td.RoutePath, &state, &td.SortOrder, &configRaw); err != nil {
			return nil, err
		}
		parsed, err := ParseState(state)
		if err != nil {
			return nil, err
		}
		td.DefaultState = parsed
		if len(configRaw) > 0 {
			json.Unmarshal(configRaw, &td.Config)
		}
		defaults[td.ModuleKey] = td
	}
	return defaults, rows.Err()
}

func (r *Repository) overrides(orgID string) (map[string]override, error) {
	rows, err := r.db.Query(`
		SELECT module_key, state_override, config_override
		FROM org_module_overrides WHERE org_id = ?
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make(map[string]override)
	for rows.Next() {
		var ov override
		var state sql.NullString
		var configRaw []byte
		if err := rows.Scan(&ov.ModuleKey, &state, &configRaw); err != nil {
			return nil, err
		}
		if state.Valid {
			parsed, err := ParseState(state.String)
			if err != nil {
				return nil, err
			}
			ov.State = &parsed
		}
		if len(configRaw) > 0 {
			json.Unmarshal(configRaw, &ov.Config)
		}
		overrides[ov.ModuleKey] = ov
	}
	return overrides, rows.Err()
}

// overrideState reads at most one row: the hot-path half of the two-point
// lookup in ResolveState.
func (r *Repository) overrideState(orgID, moduleKey string) (*ModuleState, bool, error) {
	var state sql.NullString
	err := r.db.QueryRow(`
		SELECT state_override FROM org_module_overrides WHERE org_id = ? AND module_key = ?
	`, orgID, moduleKey).Scan(&state)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !state.Valid {
		return nil, true, nil
	}
	parsed, err := ParseState(state.String)
	if err != nil {
		return nil, true, err
	}
	return &parsed, true, nil
}

func (r *Repository) templateDefaultState(templateID, moduleKey string) (*ModuleState, error) {
	var state string
	err := r.db.QueryRow(`
		SELECT default_state FROM template_modules WHERE template_id = ? AND module_key = ?
	`, templateID, moduleKey).Scan(&state)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	parsed, err := ParseState(state)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// AssignTemplate sets the org's single template assignment.
func (r *Repository) AssignTemplate(orgID, templateID string, assignedBy *string) error {
	return r.assignTemplate(r.db, orgID, templateID, assignedBy)
}

func (r *Repository) AssignTemplateTx(tx *sql.Tx, orgID, templateID string, assignedBy *string) error {
	return r.assignTemplate(tx, orgID, templateID, assignedBy)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func (r *Repository) assignTemplate(e execer, orgID, templateID string, assignedBy *string) error {
	_, err := e.Exec(`
		INSERT INTO org_template_assignments (id, org_id, template_id, assigned_by, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(org_id) DO UPDATE SET template_id = excluded.template_id, assigned_by = excluded.assigned_by
	`, uuid.New().String(), orgID, templateID, assignedBy, time.Now().Unix())
	return err
}

// UpsertOverride records a per-org deviation from the template default. A
// nil state clears the state override but keeps the config override.
func (r *Repository) UpsertOverride(ov *models.OrgModuleOverride) error {
	configJSON, _ := json.Marshal(ov.ConfigOverride)
	_, err := r.db.Exec(`
		INSERT INTO org_module_overrides (id, org_id, module_key, state_override, config_override, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(org_id, module_key) DO UPDATE SET
			state_override = excluded.state_override,
			config_override = excluded.config_override,
			updated_at = excluded.updated_at
	`, uuid.New().String(), ov.OrgID, ov.ModuleKey, ov.StateOverride, string(configJSON), time.Now().Unix())
	return err
}

func (r *Repository) DeleteOverride(orgID, moduleKey string) error {
	_, err := r.db.Exec(`
		DELETE FROM org_module_overrides WHERE org_id = ? AND module_key = ?
	`, orgID, moduleKey)
	return err
}

// CreateTemplateModule seeds one template_modules row. Used by migrations
// and admin template management.
func (r *Repository) CreateTemplateModule(tm *models.TemplateModule) error {
	configJSON, _ := json.Marshal(tm.Config)
	if tm.ID == "" {
		tm.ID = uuid.New().String()
	}
	_, err := r.db.Exec(`
		INSERT INTO template_modules (id, template_id, module_key, display_name, description, icon, route_path, default_state, sort_order, config)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tm.ID, tm.TemplateID, tm.ModuleKey, tm.DisplayName, tm.Description, tm.Icon, tm.RoutePath, tm.DefaultState, tm.SortOrder, string(configJSON))
	return err
}
