package models

type Organization struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Slug             string                 `json:"slug"`
	Settings         map[string]interface{} `json:"settings"`
	OnboardingStatus string                 `json:"onboarding_status"`
	CreatedAt        int64                  `json:"created_at"`
	UpdatedAt        int64                  `json:"updated_at"`
}

type UserProfile struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	PasswordHash string `json:"-"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

type OrgMembership struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	OrgID     string `json:"org_id"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"created_at"`
}

type WorkspaceTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"is_default"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

type TemplateModule struct {
	ID           string                 `json:"id"`
	TemplateID   string                 `json:"template_id"`
	ModuleKey    string                 `json:"module_key"`
	DisplayName  string                 `json:"display_name,omitempty"`
	Description  string                 `json:"description,omitempty"`
	Icon         string                 `json:"icon,omitempty"`
	RoutePath    string                 `json:"route_path,omitempty"`
	DefaultState string                 `json:"default_state"`
	SortOrder    int                    `json:"sort_order"`
	Config       map[string]interface{} `json:"config"`
}

type OrgTemplateAssignment struct {
	ID         string  `json:"id"`
	OrgID      string  `json:"org_id"`
	TemplateID string  `json:"template_id"`
	AssignedBy *string `json:"assigned_by,omitempty"`
	CreatedAt  int64   `json:"created_at"`
}

type OrgModuleOverride struct {
	ID             string                 `json:"id"`
	OrgID          string                 `json:"org_id"`
	ModuleKey      string                 `json:"module_key"`
	StateOverride  *string                `json:"state_override"`
	ConfigOverride map[string]interface{} `json:"config_override,omitempty"`
	UpdatedAt      int64                  `json:"updated_at"`
}

type OnboardingWorkflow struct {
	ID          string  `json:"id"`
	OrgID       string  `json:"org_id"`
	Status      string  `json:"status"`
	CurrentStep *string `json:"current_step,omitempty"`
	StartedAt   *int64  `json:"started_at,omitempty"`
	CompletedAt *int64  `json:"completed_at,omitempty"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
}

type Project struct {
	ID          string  `json:"id"`
	OrgID       string  `json:"org_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
}

type Task struct {
	ID          string  `json:"id"`
	OrgID       string  `json:"org_id"`
	ProjectID   *string `json:"project_id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	SortOrder   int     `json:"sort_order"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
}

type AuditLog struct {
	ID         string                 `json:"id"`
	OrgID      string                 `json:"org_id,omitempty"`
	UserID     string                 `json:"user_id,omitempty"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  int64                  `json:"created_at"`
}
