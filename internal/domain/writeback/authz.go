package writeback

import (
	"context"

	"github.com/rs/zerolog"
)

// Authorizer answers whether a user may approve a given action type in a
// clinic. Every miss (no profile, no permission row, flag off, store error)
// resolves to false; absent configuration is never permissive.
type Authorizer struct {
	profiles    ProfileReader
	permissions PermissionReader
	logger      zerolog.Logger
}

func NewAuthorizer(profiles ProfileReader, permissions PermissionReader, logger zerolog.Logger) *Authorizer {
	return &Authorizer{
		profiles:    profiles,
		permissions: permissions,
		logger:      logger.With().Str("component", "writeback_authz").Logger(),
	}
}

// CanApprove resolves the user's role and reads that role's flag for the
// action type. It never returns an error; failures deny.
func (a *Authorizer) CanApprove(ctx context.Context, userID, clinicID string, action ActionType) bool {
	profile, err := a.profiles.GetByID(ctx, userID)
	if err != nil {
		a.logger.Debug().Err(err).Str("user_id", userID).Msg("no profile, denying approval")
		return false
	}

	perms, err := a.permissions.Get(ctx, clinicID, profile.Role)
	if err != nil {
		a.logger.Debug().Err(err).
			Str("clinic_id", clinicID).
			Str("role", profile.Role).
			Msg("no permission row, denying approval")
		return false
	}

	return perms.Allows(action)
}

// RoleOf resolves a user's clinic role, empty when unknown.
func (a *Authorizer) RoleOf(ctx context.Context, userID string) string {
	profile, err := a.profiles.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return profile.Role
}
