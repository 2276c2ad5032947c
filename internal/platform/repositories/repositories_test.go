package repositories

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestOrganizationRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewOrganizationRepository(db)

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "slug", "settings", "onboarding_status", "created_at", "updated_at"}).
			AddRow("org_123", "Acme Inc", "acme-inc", `{"tier":"pro"}`, "in_progress", 1234567890, 1234567890)

		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE id = ?").
			WithArgs("org_123").
			WillReturnRows(rows)

		org, err := repo.GetByID("org_123")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if org == nil || org.Slug != "acme-inc" {
			t.Errorf("unexpected org: %+v", org)
		}
		if org.Settings["tier"] != "pro" {
			t.Errorf("settings not decoded: %v", org.Settings)
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE id = ?").
			WithArgs("org_999").
			WillReturnError(sql.ErrNoRows)

		org, err := repo.GetByID("org_999")
		if err != nil {
			t.Fatalf("expected nil error for missing row, got %v", err)
		}
		if org != nil {
			t.Errorf("expected nil org, got %+v", org)
		}
	})

	t.Run("Query Error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE id = ?").
			WithArgs("org_123").
			WillReturnError(sql.ErrConnDone)

		if _, err := repo.GetByID("org_123"); err == nil {
			t.Error("expected error to propagate")
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestOrganizationRepository_UpdateOnboardingStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewOrganizationRepository(db)

	mock.ExpectExec("UPDATE organizations SET onboarding_status").
		WithArgs("completed", int64(1234567890), "org_123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateOnboardingStatus("org_123", "completed", 1234567890); err != nil {
		t.Fatalf("UpdateOnboardingStatus failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestMembershipRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewMembershipRepository(db)

	t.Run("Not Found Maps To Nil", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM org_memberships WHERE user_id = (.+) AND org_id = ?").
			WithArgs("user_1", "org_1").
			WillReturnError(sql.ErrNoRows)

		m, err := repo.Get("user_1", "org_1")
		if err != nil {
			t.Fatalf("expected nil error for missing membership, got %v", err)
		}
		if m != nil {
			t.Errorf("expected nil membership, got %+v", m)
		}
	})

	t.Run("Query Error Propagates", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM org_memberships WHERE user_id = (.+) AND org_id = ?").
			WithArgs("user_1", "org_1").
			WillReturnError(sql.ErrConnDone)

		if _, err := repo.Get("user_1", "org_1"); err == nil {
			t.Error("expected error to propagate")
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
