package repositories

import (
	"database/sql"
	"encoding/json"

	"github.com/benreeder-coder/clienthub/internal/platform/models"
)

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *OrganizationRepository) Create(org *models.Organization) error {
	return r.create(r.db, org)
}

func (r *OrganizationRepository) CreateTx(tx *sql.Tx, org *models.Organization) error {
	return r.create(tx, org)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func (r *OrganizationRepository) create(e execer, org *models.Organization) error {
	settingsJSON, _ := json.Marshal(org.Settings)
	_, err := e.Exec(`
		INSERT INTO organizations (id, name, slug, settings, onboarding_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, org.ID, org.Name, org.Slug, string(settingsJSON), org.OnboardingStatus, org.CreatedAt, org.UpdatedAt)
	return err
}

func (r *OrganizationRepository) GetByID(id string) (*models.Organization, error) {
	return r.getBy("id", id)
}

func (r *OrganizationRepository) GetBySlug(slug string) (*models.Organization, error) {
	return r.getBy("slug", slug)
}

func (r *OrganizationRepository) getBy(column, value string) (*models.Organization, error) {
	org := &models.Organization{}
	var settingsRaw []byte
	err := r.db.QueryRow(`
		SELECT id, name, slug, settings, onboarding_status, created_at, updated_at
		FROM organizations WHERE `+column+` = ?
	`, value).Scan(&org.ID, &org.Name, &org.Slug, &settingsRaw, &org.OnboardingStatus, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if len(settingsRaw) > 0 {
		json.Unmarshal(settingsRaw, &org.Settings)
	}
	return org, nil
}

func (r *OrganizationRepository) List() ([]*models.Organization, error) {
	rows, err := r.db.Query(`
		SELECT id, name, slug, settings, onboarding_status, created_at, updated_at
		FROM organizations ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org := &models.Organization{}
		var settingsRaw []byte
		if err := rows.Scan(&org.ID, &org.Name, &org.Slug, &settingsRaw, &org.OnboardingStatus, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, err
		}
		if len(settingsRaw) > 0 {
			json.Unmarshal(settingsRaw, &org.Settings)
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// UpdateOnboardingStatus maintains the denormalized mirror of the
// onboarding workflow status on the organization row.
func (r *OrganizationRepository) UpdateOnboardingStatus(orgID, status string, updatedAt int64) error {
	_, err := r.db.Exec(`
		UPDATE organizations SET onboarding_status = ?, updated_at = ? WHERE id = ?
	`, status, updatedAt, orgID)
	return err
}

type UserProfileRepository struct {
	db *sql.DB
}

func NewUserProfileRepository(db *sql.DB) *UserProfileRepository {
	return &UserProfileRepository{db: db}
}

func (r *UserProfileRepository) Create(user *models.UserProfile) error {
	return r.create(r.db, user)
}

func (r *UserProfileRepository) CreateTx(tx *sql.Tx, user *models.UserProfile) error {
	return r.create(tx, user)
}

func (r *UserProfileRepository) create(e execer, user *models.UserProfile) error {
	_, err := e.Exec(`
		INSERT INTO user_profiles (id, email, full_name, avatar_url, password_hash, is_super_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.FullName, user.AvatarURL, user.PasswordHash, user.IsSuperAdmin, user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *UserProfileRepository) GetByID(id string) (*models.UserProfile, error) {
	return r.getBy("id", id)
}

func (r *UserProfileRepository) GetByEmail(email string) (*models.UserProfile, error) {
	return r.getBy("email", email)
}

func (r *UserProfileRepository) getBy(column, value string) (*models.UserProfile, error) {
	user := &models.UserProfile{}
	err := r.db.QueryRow(`
		SELECT id, email, full_name, avatar_url, password_hash, is_super_admin, created_at, updated_at
		FROM user_profiles WHERE `+column+` = ?
	`, value).Scan(&user.ID, &user.Email, &user.FullName, &user.AvatarURL, &user.PasswordHash, &user.IsSuperAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *UserProfileRepository) ListSuperAdmins() ([]*models.UserProfile, error) {
	rows, err := r.db.Query(`
		SELECT id, email, full_name, avatar_url, password_hash, is_super_admin, created_at, updated_at
		FROM user_profiles WHERE is_super_admin = 1
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.UserProfile
	for rows.Next() {
		user := &models.UserProfile{}
		if err := rows.Scan(&user.ID, &user.Email, &user.FullName, &user.AvatarURL, &user.PasswordHash, &user.IsSuperAdmin, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type MembershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Create(m *models.OrgMembership) error {
	return r.create(r.db, m)
}

func (r *MembershipRepository) CreateTx(tx *sql.Tx, m *models.OrgMembership) error {
	return r.create(tx, m)
}

func (r *MembershipRepository) create(e execer, m *models.OrgMembership) error {
	_, err := e.Exec(`
		INSERT INTO org_memberships (id, user_id, org_id, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.UserID, m.OrgID, m.Role, m.CreatedAt)
	return err
}

func (r *MembershipRepository) Get(userID, orgID string) (*models.OrgMembership, error) {
	m := &models.OrgMembership{}
	err := r.db.QueryRow(`
		SELECT id, user_id, org_id, role, created_at
		FROM org_memberships WHERE user_id = ? AND org_id = ?
	`, userID, orgID).Scan(&m.ID, &m.UserID, &m.OrgID, &m.Role, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *MembershipRepository) ListByOrg(orgID string) ([]*models.OrgMembership, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, org_id, role, created_at
		FROM org_memberships WHERE org_id = ? ORDER BY created_at
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.OrgMembership
	for rows.Next() {
		m := &models.OrgMembership{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.OrgID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *MembershipRepository) ListOrgsForUser(userID string) ([]*models.OrgMembership, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, org_id, role, created_at
		FROM org_memberships WHERE user_id = ? ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.OrgMembership
	for rows.Next() {
		m := &models.OrgMembership{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.OrgID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
