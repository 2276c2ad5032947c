package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/benreeder-coder/clienthub/internal/api"
	"github.com/benreeder-coder/clienthub/internal/api/handlers"
	"github.com/benreeder-coder/clienthub/internal/api/middleware"
	"github.com/benreeder-coder/clienthub/internal/engine/modules"
	"github.com/benreeder-coder/clienthub/internal/engine/onboarding"
	"github.com/benreeder-coder/clienthub/internal/engine/projects"
	"github.com/benreeder-coder/clienthub/internal/engine/provisioning"
	"github.com/benreeder-coder/clienthub/internal/engine/tasks"
	"github.com/benreeder-coder/clienthub/internal/guard"
	"github.com/benreeder-coder/clienthub/internal/integrations/pandadoc"
	"github.com/benreeder-coder/clienthub/internal/pkg/logger"
	"github.com/benreeder-coder/clienthub/internal/platform/audit"
	"github.com/benreeder-coder/clienthub/internal/platform/auth"
	"github.com/benreeder-coder/clienthub/internal/platform/config"
	"github.com/benreeder-coder/clienthub/internal/platform/database"
	"github.com/benreeder-coder/clienthub/internal/platform/email"
	"github.com/benreeder-coder/clienthub/internal/platform/repositories"
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

	// Repositories
	orgRepo := repositories.NewOrganizationRepository(db)
	userRepo := repositories.NewUserProfileRepository(db)
	membershipRepo := repositories.NewMembershipRepository(db)
	templateRepo := repositories.NewTemplateRepository(db)
	moduleRepo := modules.NewRepository(db)
	onboardingRepo := onboarding.NewRepository(db)
	projectRepo := projects.NewRepository(db)
	taskRepo := tasks.NewRepository(db)

	// Platform services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	auditLog := audit.NewLogger(db)
	sender := email.NewSender(cfg.Email)
	pandadocClient := pandadoc.NewClient(cfg.PandaDoc)

	// Engines
	registry := modules.DefaultRegistry()
	resolver := modules.NewResolver(registry, moduleRepo)
	accessGuard := guard.NewGuard(userRepo, membershipRepo, resolver)
	onboardingSvc := onboarding.NewService(onboarding.DefaultSteps(), onboardingRepo, orgRepo, userRepo,
		resolver, sender, cfg.Domains.AppURL)
	projectSvc := projects.NewService(projectRepo, onboardingSvc)
	taskSvc := tasks.NewService(taskRepo, onboardingSvc)
	provisioningSvc := provisioning.NewService(pandadocClient, orgRepo, userRepo, membershipRepo,
		templateRepo, moduleRepo, onboardingRepo, auditLog, sender, cfg.Domains.AppURL)

	// Handlers
	deps := &api.Dependencies{
		AuthHandler: handlers.NewAuthHandler(userRepo, tokenSvc),
		OrgHandler: handlers.NewOrgHandler(orgRepo, userRepo, membershipRepo, templateRepo,
			moduleRepo, onboardingRepo, onboardingSvc, accessGuard, auditLog),
		ModuleHandler:     handlers.NewModuleHandler(registry, resolver, moduleRepo, accessGuard, auditLog),
		OnboardingHandler: handlers.NewOnboardingHandler(onboardingSvc, accessGuard),
		ProjectHandler:    handlers.NewProjectHandler(projectSvc, accessGuard),
		TaskHandler:       handlers.NewTaskHandler(taskSvc, accessGuard),
		WebhookHandler:    handlers.NewWebhookHandler(pandadocClient, provisioningSvc),
		HealthHandler:     handlers.NewHealthHandler(db),
		AuthMiddleware:    middleware.NewAuthMiddleware(tokenSvc),
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
