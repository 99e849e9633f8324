package auth

import "context"

type Role string

const (
	RoleCustomer       Role = "CUSTOMER"
	RoleStallOwner     Role = "STALL_OWNER"
	RoleFoodCourtOwner Role = "FOOD_COURT_OWNER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleStallOwner, RoleFoodCourtOwner:
		return true
	}
	return false
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Email  string
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleFoodCourtOwner }

type contextKey string

const actorKey contextKey = "actor"

// WithActor sets the caller into context (called by middleware)
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFrom retrieves the caller; ok is false for anonymous requests.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok && a.UserID != ""
}
