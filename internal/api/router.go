package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "github.com/benreeder-coder/clienthub/internal/api/context"
	"github.com/benreeder-coder/clienthub/internal/api/handlers"
	"github.com/benreeder-coder/clienthub/internal/api/middleware"
)

type Dependencies struct {
	AuthHandler       *handlers.AuthHandler
	OrgHandler        *handlers.OrgHandler
	ModuleHandler     *handlers.ModuleHandler
	OnboardingHandler *handlers.OnboardingHandler
	ProjectHandler    *handlers.ProjectHandler
	TaskHandler       *handlers.TaskHandler
	WebhookHandler    *handlers.WebhookHandler
	HealthHandler     *handlers.HealthHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	// Public endpoints
	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.POST("/api/v1/webhooks/pandadoc", wrap(deps.WebhookHandler.HandlePandaDoc))

	// Authentication routes
	router.POST("/api/v1/auth/signup", wrap(deps.AuthHandler.Signup))
	router.POST("/api/v1/auth/login", wrap(deps.AuthHandler.Login))
	router.POST("/api/v1/auth/refresh", wrap(deps.AuthHandler.Refresh))

	authMid := deps.AuthMiddleware

	router.GET("/api/v1/auth/me", chain(deps.AuthHandler.Me, authMid.Handle))

	// Organization management. Role checks live in the guard, not here:
	// per-org roles come from membership rows, never from the token.
	router.POST("/api/v1/organizations", chain(deps.OrgHandler.Create, authMid.Handle))
	router.GET("/api/v1/organizations", chain(deps.OrgHandler.List, authMid.Handle))
	router.GET("/api/v1/organizations/:org_id", chain(deps.OrgHandler.Get, authMid.Handle))
	router.GET("/api/v1/organizations/:org_id/members", chain(deps.OrgHandler.ListMembers, authMid.Handle))
	router.POST("/api/v1/organizations/:org_id/members", chain(deps.OrgHandler.AddMember, authMid.Handle))
	router.GET("/api/v1/organizations/:org_id/audit", chain(deps.OrgHandler.ListAudit, authMid.Handle))

	// Module resolution
	router.GET("/api/v1/organizations/:org_id/modules", chain(deps.ModuleHandler.List, authMid.Handle))
	router.PUT("/api/v1/organizations/:org_id/modules/:module_key/override", chain(deps.ModuleHandler.PutOverride, authMid.Handle))
	router.DELETE("/api/v1/organizations/:org_id/modules/:module_key/override", chain(deps.ModuleHandler.DeleteOverride, authMid.Handle))

	// Onboarding
	router.GET("/api/v1/organizations/:org_id/onboarding/status", chain(deps.OnboardingHandler.GetStatus, authMid.Handle))
	router.POST("/api/v1/organizations/:org_id/onboarding/events", chain(deps.OnboardingHandler.RecordEvent, authMid.Handle))
	router.POST("/api/v1/organizations/:org_id/onboarding/skip", chain(deps.OnboardingHandler.Skip, authMid.Handle))

	// Projects
	router.POST("/api/v1/organizations/:org_id/projects", chain(deps.ProjectHandler.Create, authMid.Handle))
	router.GET("/api/v1/organizations/:org_id/projects", chain(deps.ProjectHandler.List, authMid.Handle))
	router.GET("/api/v1/organizations/:org_id/projects/:project_id", chain(deps.ProjectHandler.Get, authMid.Handle))
	router.PATCH("/api/v1/organizations/:org_id/projects/:project_id", chain(deps.ProjectHandler.Update, authMid.Handle))
	router.DELETE("/api/v1/organizations/:org_id/projects/:project_id", chain(deps.ProjectHandler.Delete, authMid.Handle))

	// Tasks
	router.POST("/api/v1/organizations/:org_id/tasks", chain(deps.TaskHandler.Create, authMid.Handle))
	router.GET("/api/v1/organizations/:org_id/tasks", chain(deps.TaskHandler.List, authMid.Handle))
	router.GET("/api/v1/organizations/:org_id/tasks/:task_id", chain(deps.TaskHandler.Get, authMid.Handle))
	router.PATCH("/api/v1/organizations/:org_id/tasks/:task_id", chain(deps.TaskHandler.Update, authMid.Handle))
	router.POST("/api/v1/organizations/:org_id/tasks/:task_id/move", chain(deps.TaskHandler.Move, authMid.Handle))
	router.DELETE("/api/v1/organizations/:org_id/tasks/:task_id", chain(deps.TaskHandler.Delete, authMid.Handle))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
