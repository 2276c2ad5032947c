package guard

import (
	"context"

	"github.com/rs/zerolog/log"

	apiContext "github.com/benreeder-coder/clienthub/internal/api/context"
	"github.com/benreeder-coder/clienthub/internal/engine/modules"
	"github.com/benreeder-coder/clienthub/internal/pkg/errors"
	"github.com/benreeder-coder/clienthub/internal/platform/auth"
	"github.com/benreeder-coder/clienthub/internal/platform/models"
	"github.com/benreeder-coder/clienthub/internal/platform/repositories"
)

// Access is the resolved identity for one request against one org.
type Access struct {
	UserID string
	Email  string
	Role   string
}

// Guard implements the access-control primitives. Every check fails
// closed: a missing row or a query error is forbidden, never allow.
type Guard struct {
	userRepo       *repositories.UserProfileRepository
	membershipRepo *repositories.MembershipRepository
	resolver       *modules.Resolver
}

func NewGuard(userRepo *repositories.UserProfileRepository, membershipRepo *repositories.MembershipRepository, resolver *modules.Resolver) *Guard {
	return &Guard{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		resolver:       resolver,
	}
}

// Identity returns the authenticated claims from the request context.
func (g *Guard) Identity(ctx context.Context) (*auth.Claims, *errors.Error) {
	claims, ok := ctx.Value(apiContext.Claims).(*auth.Claims)
	if !ok || claims == nil || claims.UserID == "" {
		return nil, errors.Unauthorized("Authentication required")
	}
	return claims, nil
}

// isSuperAdmin checks the profile row, not the token flag.
func (g *Guard) isSuperAdmin(userID string) bool {
	profile, err := g.userRepo.GetByID(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("super admin lookup failed")
		return false
	}
	return profile != nil && profile.IsSuperAdmin
}

// CheckMembership resolves the caller's role within the org. Super admins
// get a synthetic super_admin role for any org without a membership row.
func (g *Guard) CheckMembership(ctx context.Context, orgID string) (*Access, *errors.Error) {
	claims, appErr := g.Identity(ctx)
	if appErr != nil {
		return nil, appErr
	}

	membership, err := g.membershipRepo.Get(claims.UserID, orgID)
	if err != nil {
		log.Error().Err(err).Str("org_id", orgID).Msg("membership lookup failed")
		return nil, errors.Forbidden("Access denied")
	}

	if membership == nil {
		if g.isSuperAdmin(claims.UserID) {
			return &Access{UserID: claims.UserID, Email: claims.Email, Role: models.RoleSuperAdmin}, nil
		}
		return nil, errors.Forbidden("Access denied")
	}

	role, err := models.ParseRole(membership.Role)
	if err != nil {
		log.Error().Err(err).Str("org_id", orgID).Msg("membership row carries invalid role")
		return nil, errors.Forbidden("Access denied")
	}

	return &Access{UserID: claims.UserID, Email: claims.Email, Role: role}, nil
}

// CheckAdmin succeeds only for org_admin or super_admin.
func (g *Guard) CheckAdmin(ctx context.Context, orgID string) (*Access, *errors.Error) {
	access, appErr := g.CheckMembership(ctx, orgID)
	if appErr != nil {
		return nil, appErr
	}
	if access.Role != models.RoleOrgAdmin && access.Role != models.RoleSuperAdmin {
		return nil, errors.Forbidden("Admin access required")
	}
	return access, nil
}

// CheckSuperAdmin succeeds only for platform super admins.
func (g *Guard) CheckSuperAdmin(ctx context.Context) (*Access, *errors.Error) {
	claims, appErr := g.Identity(ctx)
	if appErr != nil {
		return nil, appErr
	}
	if !g.isSuperAdmin(claims.UserID) {
		return nil, errors.Forbidden("Super admin access required")
	}
	return &Access{UserID: claims.UserID, Email: claims.Email, Role: models.RoleSuperAdmin}, nil
}

// CheckModuleAccess gates an operation behind the module resolution
// engine. Super admins bypass module gating; everyone else needs the
// module to resolve to enabled.
func (g *Guard) CheckModuleAccess(ctx context.Context, orgID, moduleKey string) (*Access, *errors.Error) {
	access, appErr := g.CheckMembership(ctx, orgID)
	if appErr != nil {
		return nil, appErr
	}

	if access.Role == models.RoleSuperAdmin {
		return access, nil
	}

	if !g.resolver.IsAccessible(orgID, moduleKey) {
		return nil, errors.ModuleLocked("Module not accessible")
	}

	return access, nil
}
