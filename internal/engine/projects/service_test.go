package projects

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/benreeder-coder/clienthub/internal/engine/onboarding"
	"github.com/benreeder-coder/clienthub/internal/pkg/errors"
	"github.com/benreeder-coder/clienthub/internal/platform/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}

	query := `
	CREATE TABLE projects (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'planning',
		start_date TEXT,
		end_date TEXT,
		created_by TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	return db
}

type fakeRecorder struct {
	events []onboarding.EventType
}

func (f *fakeRecorder) RecordEvent(eventType onboarding.EventType, userID, orgID string, metadata map[string]interface{}) *errors.Error {
	f.events = append(f.events, eventType)
	return nil
}

func TestServiceCreate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	recorder := &fakeRecorder{}
	svc := NewService(NewRepository(db), recorder)

	project, appErr := svc.Create("org1", "user1", CreateInput{Name: "Website Redesign"})
	if appErr != nil {
		t.Fatalf("Create failed: %v", appErr)
	}
	if project.Status != models.ProjectStatusPlanning {
		t.Errorf("Status = %s, want planning default", project.Status)
	}
	if project.CreatedBy != "user1" {
		t.Errorf("CreatedBy = %s", project.CreatedBy)
	}

	if len(recorder.events) != 1 || recorder.events[0] != onboarding.EventFirstProjectCreated {
		t.Errorf("Expected first_project_created event, got %v", recorder.events)
	}
}

func TestServiceCreate_Validation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := NewService(NewRepository(db), nil)

	if _, appErr := svc.Create("org1", "user1", CreateInput{}); appErr == nil {
		t.Error("Expected error for missing name")
	}
	if _, appErr := svc.Create("org1", "user1", CreateInput{Name: "P", Status: "bogus"}); appErr == nil {
		t.Error("Expected error for unknown status")
	}
}

func TestServiceUpdate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := NewService(NewRepository(db), nil)

	project, appErr := svc.Create("org1", "user1", CreateInput{Name: "Website Redesign"})
	if appErr != nil {
		t.Fatalf("Create failed: %v", appErr)
	}

	status := models.ProjectStatusActive
	name := "Website Relaunch"
	updated, appErr := svc.Update(project.ID, "org1", UpdateInput{Name: &name, Status: &status})
	if appErr != nil {
		t.Fatalf("Update failed: %v", appErr)
	}
	if updated.Name != "Website Relaunch" || updated.Status != models.ProjectStatusActive {
		t.Errorf("Update not applied: %+v", updated)
	}

	empty := ""
	if _, appErr := svc.Update(project.ID, "org1", UpdateInput{Name: &empty}); appErr == nil {
		t.Error("Expected error for empty name")
	}
}

func TestServiceGet_ScopedToOrg(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := NewService(NewRepository(db), nil)

	project, appErr := svc.Create("org1", "user1", CreateInput{Name: "Website Redesign"})
	if appErr != nil {
		t.Fatalf("Create failed: %v", appErr)
	}

	if _, appErr := svc.Get(project.ID, "org1"); appErr != nil {
		t.Errorf("Get in own org failed: %v", appErr)
	}
	if _, appErr := svc.Get(project.ID, "org2"); appErr == nil || appErr.Code != errors.ErrCodeNotFound {
		t.Errorf("Expected NOT_FOUND across orgs, got %v", appErr)
	}
}

func TestServiceDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	svc := NewService(NewRepository(db), nil)

	project, appErr := svc.Create("org1", "user1", CreateInput{Name: "Website Redesign"})
	if appErr != nil {
		t.Fatalf("Create failed: %v", appErr)
	}

	if appErr := svc.Delete(project.ID, "org1"); appErr != nil {
		t.Fatalf("Delete failed: %v", appErr)
	}
	if appErr := svc.Delete(project.ID, "org1"); appErr == nil || appErr.Code != errors.ErrCodeNotFound {
		t.Errorf("Expected NOT_FOUND for deleted project, got %v", appErr)
	}
}
