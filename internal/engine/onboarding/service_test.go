package onboarding

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/benreeder-coder/clienthub/internal/platform/email"
	"github.com/benreeder-coder/clienthub/internal/platform/models"
	"github.com/benreeder-coder/clienthub/internal/platform/repositories"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}

	query := `
	CREATE TABLE organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		settings TEXT NOT NULL DEFAULT '{}',
		onboarding_status TEXT NOT NULL DEFAULT 'pending',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE user_profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		is_super_admin INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE onboarding_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		org_id TEXT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at INTEGER NOT NULL
	);
	CREATE TABLE onboarding_workflows (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'pending',
		current_step TEXT,
		started_at INTEGER,
		completed_at INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	return db
}

// fixedModules satisfies ModuleSource with a static enabled set.
type fixedModules struct {
	keys []string
}

func (f *fixedModules) EnabledKeys(orgID string) ([]string, error) {
	return f.keys, nil
}

func setupService(t *testing.T, db *sql.DB, enabled []string) *Service {
	t.Helper()

	repo := NewRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	userRepo := repositories.NewUserProfileRepository(db)

	now := time.Now().Unix()
	org := &models.Organization{
		ID: "org1", Name: "Acme", Slug: "acme",
		Settings:         map[string]interface{}{},
		OnboardingStatus: models.OnboardingPending,
		CreatedAt:        now, UpdatedAt: now,
	}
	if err := orgRepo.Create(org); err != nil {
		t.Fatalf("Failed to create org: %v", err)
	}
	workflow := &models.OnboardingWorkflow{
		ID: "wf1", OrgID: "org1", Status: models.OnboardingPending,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := repo.CreateWorkflow(workflow); err != nil {
		t.Fatalf("Failed to create workflow: %v", err)
	}

	return NewService(DefaultSteps(), repo, orgRepo, userRepo,
		&fixedModules{keys: enabled}, email.LogSender{}, "http://localhost")
}

func orgStatus(t *testing.T, db *sql.DB) string {
	t.Helper()
	var status string
	if err := db.QueryRow(`SELECT onboarding_status FROM organizations WHERE id = 'org1'`).Scan(&status); err != nil {
		t.Fatalf("Failed to read org status: %v", err)
	}
	return status
}

func TestRecordEvent_UnknownTypeRejected(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := setupService(t, db, nil)

	appErr := svc.RecordEvent("made_up", "user1", "org1", nil)
	if appErr == nil {
		t.Fatal("Expected validation error for unknown event type")
	}
	if appErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s, want VALIDATION_ERROR", appErr.Code)
	}
}

func TestRecordEvent_StartsWorkflow(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := setupService(t, db, []string{"projects", "tasks"})

	if appErr := svc.RecordEvent(EventProfileCompleted, "user1", "org1", nil); appErr != nil {
		t.Fatalf("RecordEvent failed: %v", appErr)
	}

	workflow, err := NewRepository(db).WorkflowForOrg("org1")
	if err != nil {
		t.Fatalf("Failed to load workflow: %v", err)
	}
	if workflow.Status != models.OnboardingInProgress {
		t.Errorf("Status = %s, want in_progress", workflow.Status)
	}
	if workflow.StartedAt == nil {
		t.Error("StartedAt should be set after the first event")
	}
	if workflow.CurrentStep == nil || *workflow.CurrentStep != "first_project" {
		t.Errorf("CurrentStep = %v, want first_project", workflow.CurrentStep)
	}
	if got := orgStatus(t, db); got != models.OnboardingInProgress {
		t.Errorf("Org mirror = %s, want in_progress", got)
	}
}

func TestRecordEvent_CompletionFlow(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := setupService(t, db, []string{"projects", "tasks"})

	for _, event := range []EventType{EventProfileCompleted, EventFirstProjectCreated, EventFirstTaskCreated} {
		if appErr := svc.RecordEvent(event, "user1", "org1", nil); appErr != nil {
			t.Fatalf("RecordEvent(%s) failed: %v", event, appErr)
		}
	}

	workflow, err := NewRepository(db).WorkflowForOrg("org1")
	if err != nil {
		t.Fatalf("Failed to load workflow: %v", err)
	}
	if workflow.Status != models.OnboardingCompleted {
		t.Errorf("Status = %s, want completed", workflow.Status)
	}
	if workflow.CompletedAt == nil {
		t.Error("CompletedAt should be set on completion")
	}
	if got := orgStatus(t, db); got != models.OnboardingCompleted {
		t.Errorf("Org mirror = %s, want completed", got)
	}
}

func TestRecordEvent_CompletionIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := setupService(t, db, []string{"projects", "tasks"})

	for _, event := range []EventType{EventProfileCompleted, EventFirstProjectCreated, EventFirstTaskCreated} {
		if appErr := svc.RecordEvent(event, "user1", "org1", nil); appErr != nil {
			t.Fatalf("RecordEvent failed: %v", appErr)
		}
	}

	repo := NewRepository(db)
	before, _ := repo.WorkflowForOrg("org1")

	// Further events append to the log but never leave the terminal state.
	if appErr := svc.RecordEvent(EventWorkflowsExplored, "user1", "org1", nil); appErr != nil {
		t.Fatalf("RecordEvent failed: %v", appErr)
	}

	after, _ := repo.WorkflowForOrg("org1")
	if after.Status != models.OnboardingCompleted {
		t.Errorf("Status = %s, want completed", after.Status)
	}
	if before.CompletedAt == nil || after.CompletedAt == nil || *before.CompletedAt != *after.CompletedAt {
		t.Error("CompletedAt changed after terminal state")
	}
}

func TestUpdateProgress_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := setupService(t, db, []string{"projects", "tasks"})

	if appErr := svc.RecordEvent(EventProfileCompleted, "user1", "org1", nil); appErr != nil {
		t.Fatalf("RecordEvent failed: %v", appErr)
	}

	repo := NewRepository(db)
	first, _ := repo.WorkflowForOrg("org1")

	// Replaying the recompute from the same history changes nothing
	// observable.
	if err := svc.UpdateProgress("org1"); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	second, _ := repo.WorkflowForOrg("org1")

	if first.Status != second.Status {
		t.Errorf("Status changed on replay: %s vs %s", first.Status, second.Status)
	}
	if *first.CurrentStep != *second.CurrentStep {
		t.Errorf("CurrentStep changed on replay: %s vs %s", *first.CurrentStep, *second.CurrentStep)
	}
}

func TestSkip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := setupService(t, db, []string{"projects", "tasks"})

	if appErr := svc.Skip("org1", "admin1"); appErr != nil {
		t.Fatalf("Skip failed: %v", appErr)
	}

	repo := NewRepository(db)
	workflow, _ := repo.WorkflowForOrg("org1")
	if workflow.Status != models.OnboardingSkipped {
		t.Errorf("Status = %s, want skipped", workflow.Status)
	}
	if workflow.CompletedAt == nil {
		t.Error("CompletedAt should be set on skip")
	}
	// The org mirror reports completed so the client UI stops prompting.
	if got := orgStatus(t, db); got != models.OnboardingCompleted {
		t.Errorf("Org mirror = %s, want completed", got)
	}

	// The skip event lands in the log.
	events, err := repo.EventTypesForOrg("org1")
	if err != nil {
		t.Fatalf("Failed to load events: %v", err)
	}
	found := false
	for _, e := range events {
		if e == EventOnboardingSkipped {
			found = true
		}
	}
	if !found {
		t.Error("Skip should record an onboarding_skipped event")
	}
}

func TestSkip_IsTerminal(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := setupService(t, db, []string{"projects", "tasks"})

	if appErr := svc.Skip("org1", "admin1"); appErr != nil {
		t.Fatalf("Skip failed: %v", appErr)
	}

	// Later events never resurrect a skipped workflow.
	for _, event := range []EventType{EventProfileCompleted, EventFirstProjectCreated, EventFirstTaskCreated} {
		if appErr := svc.RecordEvent(event, "user1", "org1", nil); appErr != nil {
			t.Fatalf("RecordEvent failed: %v", appErr)
		}
	}

	workflow, _ := NewRepository(db).WorkflowForOrg("org1")
	if workflow.Status != models.OnboardingSkipped {
		t.Errorf("Status = %s, want skipped", workflow.Status)
	}
}

func TestGetStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := setupService(t, db, []string{"projects", "tasks"})

	if appErr := svc.RecordEvent(EventProfileCompleted, "user1", "org1", nil); appErr != nil {
		t.Fatalf("RecordEvent failed: %v", appErr)
	}

	status, appErr := svc.GetStatus("org1", true)
	if appErr != nil {
		t.Fatalf("GetStatus failed: %v", appErr)
	}

	byKey := make(map[string]string)
	for _, s := range status.Steps {
		byKey[s.Key] = s.Status
	}
	if byKey["profile"] != "completed" {
		t.Errorf("profile = %s, want completed", byKey["profile"])
	}
	if byKey["first_project"] != "current" {
		t.Errorf("first_project = %s, want current", byKey["first_project"])
	}
	if byKey["first_task"] != "pending" {
		t.Errorf("first_task = %s, want pending", byKey["first_task"])
	}

	// Non-admin view drops the invite step entirely.
	memberView, appErr := svc.GetStatus("org1", false)
	if appErr != nil {
		t.Fatalf("GetStatus failed: %v", appErr)
	}
	for _, s := range memberView.Steps {
		if s.Key == "invite_team" {
			t.Error("invite_team should not appear for non-admins")
		}
	}
}
