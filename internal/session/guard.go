package session

import "fittrack/fitness-tracker/internal/domain"

// Route targets used by guard decisions.
const (
	SignInPath = "/login"
	AdminHome  = "/admin"
	CoachHome  = "/coach"
	UserHome   = "/dashboard"
)

// Decision is the outcome of a route guard check: either render, or
// redirect to Target.
type Decision struct {
	Allow  bool
	Target string
}

// Decide is the pure route-guard function. It owns no state: callers
// supply the authentication flag and role from session state.
//
// Unauthenticated requests redirect to sign-in. An authenticated user
// whose role is outside the allowed set (when one is given) redirects to
// that role's own landing area. Everything else renders.
func Decide(isAuthenticated bool, role domain.Role, allowed []domain.Role) Decision {
	if !isAuthenticated {
		return Decision{Target: SignInPath}
	}
	if len(allowed) == 0 {
		return Decision{Allow: true}
	}
	for _, a := range allowed {
		if role == a {
			return Decision{Allow: true}
		}
	}
	return Decision{Target: Landing(role)}
}

// Landing returns the default landing area for a role.
func Landing(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return AdminHome
	case domain.RoleCoach:
		return CoachHome
	default:
		return UserHome
	}
}
