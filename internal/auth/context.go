package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
)

// UserContext holds authenticated user information for a request
type UserContext struct {
	UserID      uuid.UUID
	Username    string
	DisplayName string
	Roles       []domain.UserRoleType
	// ActiveRole is the highest-precedence role the user holds; a session
	// runs as exactly one role and cannot switch mid-session.
	ActiveRole domain.UserRoleType
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRoleType) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// AtLeast reports whether the session's active role meets or exceeds the
// required role in the precedence order.
func (u *UserContext) AtLeast(required domain.UserRoleType) bool {
	return domain.RoleAtLeast(u.ActiveRole, required)
}

// IsSupervisor checks for supervisor privileges or higher
func (u *UserContext) IsSupervisor() bool {
	return u.AtLeast(domain.RoleSupervisor)
}

// IsCreditControl checks for credit-control privileges or higher
func (u *UserContext) IsCreditControl() bool {
	return u.AtLeast(domain.RoleCreditControl)
}

// GetDisplayNameInitials returns initials from the display name (e.g., "John Doe" -> "JD")
func (u *UserContext) GetDisplayNameInitials() string {
	if u.DisplayName == "" {
		return ""
	}
	parts := strings.Fields(u.DisplayName)
	initials := ""
	for _, part := range parts {
		if len(part) > 0 {
			initials += strings.ToUpper(string(part[0]))
		}
	}
	return initials
}

// RolesAsStrings returns roles as a slice of strings
func (u *UserContext) RolesAsStrings() []string {
	result := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		result[i] = string(role)
	}
	return result
}
