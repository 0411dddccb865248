package domain

import "context"

// Role separates operators from sponsor-scoped dashboard users.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSponsor Role = "sponsor"
)

// Principal is the request-scoped caller identity supplied by the
// authentication layer.
type Principal struct {
	UserID    string
	Role      Role
	SponsorID string
}

// IsAdmin reports whether the principal may see and mutate everything.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// CanSee reports whether the principal may read records of sponsorID.
func (p Principal) CanSee(sponsorID string) bool {
	return p.IsAdmin() || (p.Role == RoleSponsor && p.SponsorID != "" && p.SponsorID == sponsorID)
}

type principalKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached to ctx.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// SystemPrincipal is used by background jobs.
var SystemPrincipal = Principal{UserID: "system", Role: RoleAdmin}
