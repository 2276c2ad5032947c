package workers

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/benreeder-coder/clienthub/internal/engine/onboarding"
	"github.com/benreeder-coder/clienthub/internal/platform/audit"
	"github.com/benreeder-coder/clienthub/internal/platform/config"
	"github.com/benreeder-coder/clienthub/internal/platform/models"
	"github.com/benreeder-coder/clienthub/internal/platform/repositories"
)

// Runner owns the periodic maintenance jobs: onboarding reminder sweeps
// and audit log retention.
type Runner struct {
	cfg            config.WorkersConfig
	onboardingSvc  *onboarding.Service
	repo           *onboarding.Repository
	membershipRepo *repositories.MembershipRepository
	auditLog       *audit.Logger
}

func NewRunner(cfg config.WorkersConfig, svc *onboarding.Service, repo *onboarding.Repository,
	membershipRepo *repositories.MembershipRepository, auditLog *audit.Logger) *Runner {
	return &Runner{
		cfg:            cfg,
		onboardingSvc:  svc,
		repo:           repo,
		membershipRepo: membershipRepo,
		auditLog:       auditLog,
	}
}

// SweepStaleOnboarding emails every org admin a reminder for workflows
// that have been in progress longer than the staleness window.
func (r *Runner) SweepStaleOnboarding() {
	cutoff := time.Now().Add(-r.cfg.ReminderStaleAfter).Unix()
	workflows, err := r.repo.StaleInProgress(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("stale onboarding sweep failed")
		return
	}

	for _, w := range workflows {
		members, err := r.membershipRepo.ListByOrg(w.OrgID)
		if err != nil {
			log.Error().Err(err).Str("org_id", w.OrgID).Msg("failed to list members for reminder")
			continue
		}
		for _, m := range members {
			if m.Role != models.RoleOrgAdmin {
				continue
			}
			if err := r.onboardingSvc.SendReminder(w.OrgID, m.UserID); err != nil {
				log.Error().Err(err).Str("org_id", w.OrgID).Str("user_id", m.UserID).Msg("failed to send onboarding reminder")
			}
		}
	}

	if len(workflows) > 0 {
		log.Info().Int("count", len(workflows)).Msg("onboarding reminder sweep finished")
	}
}

// PruneAuditLogs deletes audit entries older than the retention window.
func (r *Runner) PruneAuditLogs() {
	cutoff := time.Now().Add(-r.cfg.AuditRetention).Unix()
	deleted, err := r.auditLog.PruneOlderThan(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("audit log prune failed")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("audit logs pruned")
	}
}
