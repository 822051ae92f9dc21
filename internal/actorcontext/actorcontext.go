package actorcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDoctor     Role = "doctor"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role acts on behalf of the clinic.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type Actor struct {
	ID   snowflake.ID
	Role Role
}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || actor.ID == 0 {
		return Actor{}, false
	}
	return actor, true
}

// ActorIDPtr returns the actor id for audit columns, nil when anonymous.
func ActorIDPtr(ctx context.Context) *snowflake.ID {
	actor, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	id := actor.ID
	return &id
}
