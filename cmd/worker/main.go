package main

import (
	"log"
	"time"

	"github.com/benreeder-coder/clienthub/internal/engine/modules"
	"github.com/benreeder-coder/clienthub/internal/engine/onboarding"
	"github.com/benreeder-coder/clienthub/internal/pkg/logger"
	"github.com/benreeder-coder/clienthub/internal/platform/audit"
	"github.com/benreeder-coder/clienthub/internal/platform/config"
	"github.com/benreeder-coder/clienthub/internal/platform/database"
	"github.com/benreeder-coder/clienthub/internal/platform/email"
	"github.com/benreeder-coder/clienthub/internal/platform/repositories"
	"github.com/benreeder-coder/clienthub/internal/workers"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	orgRepo := repositories.NewOrganizationRepository(db)
	userRepo := repositories.NewUserProfileRepository(db)
	membershipRepo := repositories.NewMembershipRepository(db)
	moduleRepo := modules.NewRepository(db)
	onboardingRepo := onboarding.NewRepository(db)

	resolver := modules.NewResolver(modules.DefaultRegistry(), moduleRepo)
	sender := email.NewSender(cfg.Email)
	onboardingSvc := onboarding.NewService(onboarding.DefaultSteps(), onboardingRepo, orgRepo, userRepo,
		resolver, sender, cfg.Domains.AppURL)
	auditLog := audit.NewLogger(db)

	runner := workers.NewRunner(cfg.Workers, onboardingSvc, onboardingRepo, membershipRepo, auditLog)

	log.Println("Starting background workers...")

	go runReminderWorker(runner, cfg.Workers.ReminderInterval)
	go runAuditPruneWorker(runner)

	// Keep process alive
	select {}
}

func runReminderWorker(runner *workers.Runner, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		runner.SweepStaleOnboarding()
	}
}

func runAuditPruneWorker(runner *workers.Runner) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		runner.PruneAuditLogs()
	}
}
