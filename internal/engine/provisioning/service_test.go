package provisioning

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/benreeder-coder/clienthub/internal/engine/modules"
	"github.com/benreeder-coder/clienthub/internal/engine/onboarding"
	"github.com/benreeder-coder/clienthub/internal/integrations/pandadoc"
	"github.com/benreeder-coder/clienthub/internal/platform/audit"
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
	CREATE TABLE org_memberships (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		org_id TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE (user_id, org_id)
	);
	CREATE TABLE workspace_templates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		is_default INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE org_template_assignments (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL UNIQUE,
		template_id TEXT NOT NULL,
		assigned_by TEXT,
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
	CREATE TABLE audit_logs (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		user_id TEXT,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL DEFAULT '',
		entity_id TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	return db
}

// stubDocs serves canned document data instead of the PandaDoc API.
type stubDocs struct {
	doc       *pandadoc.Document
	fields    []pandadoc.Field
	docErr    error
	fieldsErr error
}

func (s *stubDocs) GetDocument(documentID string) (*pandadoc.Document, error) {
	return s.doc, s.docErr
}

func (s *stubDocs) GetDocumentFields(documentID string) ([]pandadoc.Field, error) {
	return s.fields, s.fieldsErr
}

func setupService(t *testing.T, db *sql.DB, docs pandadoc.DocumentAPI) *Service {
	t.Helper()
	return NewService(
		docs,
		repositories.NewOrganizationRepository(db),
		repositories.NewUserProfileRepository(db),
		repositories.NewMembershipRepository(db),
		repositories.NewTemplateRepository(db),
		modules.NewRepository(db),
		onboarding.NewRepository(db),
		audit.NewLogger(db),
		email.LogSender{},
		"https://portal.example.com",
	)
}

func seedTemplate(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	now := time.Now().Unix()
	err := repositories.NewTemplateRepository(db).Create(&models.WorkspaceTemplate{
		ID: id, Name: name, IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Failed to seed template: %v", err)
	}
}

func signedDoc() *pandadoc.Document {
	return &pandadoc.Document{
		ID:     "doc-1",
		Name:   "Service Agreement",
		Status: "document.completed",
		Recipients: []pandadoc.Recipient{
			{Email: "owner@agency.com", Role: "sender", HasCompleted: true},
			{Email: "jane@acme.com", FirstName: "Jane", LastName: "Doe", Role: "signer", HasCompleted: true},
		},
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme Inc", "acme-inc"},
		{"  Big  Corp!  ", "big-corp"},
		{"Already-Slugged", "already-slugged"},
		{"123 Go", "123-go"},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestProvisionFromDocument(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedTemplate(t, db, "tpl-standard", "standard-client-portal")
	seedTemplate(t, db, "tpl-fullstack", "full-stack-agency")

	docs := &stubDocs{
		doc: signedDoc(),
		fields: []pandadoc.Field{
			{Name: "package", Value: "enterprise"},
			{Name: "company_name", Value: "Acme Inc"},
			{Name: "client_email", Value: "jane@acme.com"},
			{Name: "client_name", Value: "Jane Doe"},
		},
	}
	svc := setupService(t, db, docs)

	result, appErr := svc.ProvisionFromDocument("doc-1")
	if appErr != nil {
		t.Fatalf("ProvisionFromDocument failed: %v", appErr)
	}
	if result.Status != "provisioned" {
		t.Fatalf("Status = %s, want provisioned", result.Status)
	}
	if result.Template != "full-stack-agency" {
		t.Errorf("Template = %s, want full-stack-agency", result.Template)
	}

	org, err := repositories.NewOrganizationRepository(db).GetBySlug("acme-inc")
	if err != nil || org == nil {
		t.Fatalf("Organization not created: %v", err)
	}
	if org.Name != "Acme Inc" {
		t.Errorf("org.Name = %s", org.Name)
	}
	if org.Settings["pandadoc_document_id"] != "doc-1" {
		t.Errorf("Settings missing document id: %v", org.Settings)
	}
	if org.OnboardingStatus != models.OnboardingPending {
		t.Errorf("OnboardingStatus = %s, want pending", org.OnboardingStatus)
	}

	user, err := repositories.NewUserProfileRepository(db).GetByEmail("jane@acme.com")
	if err != nil || user == nil {
		t.Fatalf("User not created: %v", err)
	}
	if user.FullName != "Jane Doe" {
		t.Errorf("FullName = %s", user.FullName)
	}

	membership, err := repositories.NewMembershipRepository(db).Get(user.ID, org.ID)
	if err != nil || membership == nil {
		t.Fatalf("Membership not created: %v", err)
	}
	if membership.Role != models.RoleOrgAdmin {
		t.Errorf("Role = %s, want org_admin", membership.Role)
	}

	templateID, err := modules.NewRepository(db).TemplateIDForOrg(org.ID)
	if err != nil {
		t.Fatalf("Template not assigned: %v", err)
	}
	if templateID != "tpl-fullstack" {
		t.Errorf("templateID = %s, want tpl-fullstack", templateID)
	}

	workflow, err := onboarding.NewRepository(db).WorkflowForOrg(org.ID)
	if err != nil || workflow == nil {
		t.Fatalf("Workflow not created: %v", err)
	}
	if workflow.Status != models.OnboardingPending {
		t.Errorf("Workflow status = %s, want pending", workflow.Status)
	}

	entries, err := audit.NewLogger(db).ListByOrg(org.ID, 10)
	if err != nil || len(entries) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d (%v)", len(entries), err)
	}
	if entries[0].Action != "org_created_from_contract" {
		t.Errorf("audit action = %s", entries[0].Action)
	}
}

func TestProvisionFromDocument_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedTemplate(t, db, "tpl-standard", "standard-client-portal")

	docs := &stubDocs{
		doc: signedDoc(),
		fields: []pandadoc.Field{
			{Name: "company_name", Value: "Acme Inc"},
			{Name: "client_email", Value: "jane@acme.com"},
		},
	}
	svc := setupService(t, db, docs)

	first, appErr := svc.ProvisionFromDocument("doc-1")
	if appErr != nil {
		t.Fatalf("First provisioning failed: %v", appErr)
	}

	second, appErr := svc.ProvisionFromDocument("doc-1")
	if appErr != nil {
		t.Fatalf("Second provisioning failed: %v", appErr)
	}
	if second.Status != "exists" {
		t.Errorf("Status = %s, want exists", second.Status)
	}
	if second.OrgID != first.OrgID {
		t.Errorf("OrgID changed across deliveries: %s vs %s", first.OrgID, second.OrgID)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM organizations`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 organization, got %d", count)
	}
}

func TestProvisionFromDocument_SignerFallback(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedTemplate(t, db, "tpl-standard", "standard-client-portal")

	// No form fields at all: email, name, and company come from the signer.
	docs := &stubDocs{doc: signedDoc(), fields: nil}
	svc := setupService(t, db, docs)

	result, appErr := svc.ProvisionFromDocument("doc-1")
	if appErr != nil {
		t.Fatalf("ProvisionFromDocument failed: %v", appErr)
	}
	if result.Status != "provisioned" {
		t.Fatalf("Status = %s", result.Status)
	}

	org, err := repositories.NewOrganizationRepository(db).GetBySlug("jane-doe")
	if err != nil || org == nil {
		t.Fatalf("Expected org slugged from signer name, got %v (%v)", org, err)
	}

	user, err := repositories.NewUserProfileRepository(db).GetByEmail("jane@acme.com")
	if err != nil || user == nil {
		t.Fatalf("User not created from signer email: %v", err)
	}
}

func TestProvisionFromDocument_NoEmail(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	doc := &pandadoc.Document{ID: "doc-1", Status: "document.completed"}
	docs := &stubDocs{doc: doc, fields: nil}
	svc := setupService(t, db, docs)

	if _, appErr := svc.ProvisionFromDocument("doc-1"); appErr == nil {
		t.Fatal("Expected error when no client email is available")
	}
}

func TestProvisionFromDocument_UnknownPackageFallsBack(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	// Only one active template exists, and it is not the default name.
	seedTemplate(t, db, "tpl-custom", "bespoke-portal")

	docs := &stubDocs{
		doc: signedDoc(),
		fields: []pandadoc.Field{
			{Name: "package", Value: "mystery-plan"},
			{Name: "company_name", Value: "Acme Inc"},
			{Name: "client_email", Value: "jane@acme.com"},
		},
	}
	svc := setupService(t, db, docs)

	result, appErr := svc.ProvisionFromDocument("doc-1")
	if appErr != nil {
		t.Fatalf("ProvisionFromDocument failed: %v", appErr)
	}
	if result.Template != "bespoke-portal" {
		t.Errorf("Template = %s, want bespoke-portal fallback", result.Template)
	}
}

func TestProvisionFromDocument_ReusesExistingUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedTemplate(t, db, "tpl-standard", "standard-client-portal")

	now := time.Now().Unix()
	existing := &models.UserProfile{
		ID: "user-existing", Email: "jane@acme.com", FullName: "Jane Doe",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := repositories.NewUserProfileRepository(db).Create(existing); err != nil {
		t.Fatal(err)
	}

	docs := &stubDocs{
		doc: signedDoc(),
		fields: []pandadoc.Field{
			{Name: "company_name", Value: "Acme Inc"},
			{Name: "client_email", Value: "jane@acme.com"},
		},
	}
	svc := setupService(t, db, docs)

	result, appErr := svc.ProvisionFromDocument("doc-1")
	if appErr != nil {
		t.Fatalf("ProvisionFromDocument failed: %v", appErr)
	}
	if result.UserID != "user-existing" {
		t.Errorf("UserID = %s, want user-existing", result.UserID)
	}
}

func TestProvisionFromDocument_FetchError(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	docs := &stubDocs{docErr: fmt.Errorf("pandadoc unavailable")}
	svc := setupService(t, db, docs)

	if _, appErr := svc.ProvisionFromDocument("doc-1"); appErr == nil {
		t.Fatal("Expected error when document fetch fails")
	}
}
