package audit

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/benreeder-coder/clienthub/internal/platform/models"
)

// Logger appends audit_logs rows. Writes are best-effort: an audit failure
// is logged and never fails the operation that produced it.
type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(entry *models.AuditLog) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}

	metadataJSON, _ := json.Marshal(entry.Metadata)

	_, err := l.db.Exec(`
		INSERT INTO audit_logs (id, org_id, user_id, action, entity_type, entity_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.OrgID, entry.UserID, entry.Action, entry.EntityType, entry.EntityID, string(metadataJSON), entry.CreatedAt)
	if err != nil {
		log.Error().Err(err).Str("action", entry.Action).Msg("failed to write audit log")
	}
}

func (l *Logger) ListByOrg(orgID string, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := l.db.Query(`
		SELECT id, org_id, user_id, action, entity_type, entity_id, metadata, created_at
		FROM audit_logs WHERE org_id = ? ORDER BY created_at DESC LIMIT ?
	`, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		var metadataRaw []byte
		if err := rows.Scan(&entry.ID, &entry.OrgID, &entry.UserID, &entry.Action, &entry.EntityType, &entry.EntityID, &metadataRaw, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadataRaw) > 0 {
			json.Unmarshal(metadataRaw, &entry.Metadata)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// PruneOlderThan removes entries past the retention window. Used by the
// background worker.
func (l *Logger) PruneOlderThan(cutoff int64) (int64, error) {
	res, err := l.db.Exec(`DELETE FROM audit_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
