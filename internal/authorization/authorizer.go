package authorization

import (
	"fmt"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/railzwaylabs/aligntrack/internal/actorcontext"
	"go.uber.org/fx"
)

var Module = fx.Module("authorization",
	fx.Provide(New),
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && r.act == p.act
`

type rule struct {
	role   actorcontext.Role
	path   string
	method string
}

// Route-level policy. Ownership of a doctor's own resources is enforced by
// the services.
var rules = []rule{
	// shared reads
	{actorcontext.RoleDoctor, "/api/cases", http.MethodPost},
	{actorcontext.RoleDoctor, "/api/cases/:id", http.MethodGet},
	{actorcontext.RoleDoctor, "/api/doctors/:id/cases", http.MethodGet},
	{actorcontext.RoleDoctor, "/api/doctors/:id/payments", http.MethodGet},
	{actorcontext.RoleDoctor, "/api/doctors/:id/billing", http.MethodGet},
	{actorcontext.RoleDoctor, "/api/services", http.MethodGet},
	{actorcontext.RoleDoctor, "/api/notifications/unread-count", http.MethodGet},
	{actorcontext.RoleDoctor, "/api/notifications/read", http.MethodPost},

	// doctor decisions
	{actorcontext.RoleDoctor, "/api/cases/:id/approve", http.MethodPost},
	{actorcontext.RoleDoctor, "/api/cases/:id/reject", http.MethodPost},
	{actorcontext.RoleDoctor, "/api/cases/:id/request-edit", http.MethodPost},
	{actorcontext.RoleDoctor, "/api/cases/:id/complete", http.MethodPost},
	{actorcontext.RoleDoctor, "/api/cases/:id/refinements", http.MethodPost},

	// clinic staff
	{actorcontext.RoleAdmin, "/api/cases", http.MethodPost},
	{actorcontext.RoleAdmin, "/api/cases/:id", http.MethodGet},
	{actorcontext.RoleAdmin, "/api/doctors/:id/cases", http.MethodGet},
	{actorcontext.RoleAdmin, "/api/doctors/:id/payments", http.MethodGet},
	{actorcontext.RoleAdmin, "/api/doctors/:id/billing", http.MethodGet},
	{actorcontext.RoleAdmin, "/api/services", http.MethodGet},
	{actorcontext.RoleAdmin, "/api/cases/:id/accept", http.MethodPost},
	{actorcontext.RoleAdmin, "/api/cases/:id/decline", http.MethodPost},
	{actorcontext.RoleAdmin, "/api/cases/:id/undo-decline", http.MethodPost},
	{actorcontext.RoleAdmin, "/api/cases/:id/send-for-approval", http.MethodPost},
	{actorcontext.RoleAdmin, "/api/cases/:id/plan", http.MethodPost},
	{actorcontext.RoleAdmin, "/api/cases/:id/manufacturing", http.MethodPost},
	{actorcontext.RoleAdmin, "/api/payments", http.MethodPost},
	{actorcontext.RoleAdmin, "/api/payments/:id", http.MethodGet},
	{actorcontext.RoleAdmin, "/api/billing/totals", http.MethodGet},

	{actorcontext.RoleSuperAdmin, "/api/cases/:id", http.MethodDelete},
	{actorcontext.RoleSuperAdmin, "/api/payments/:id", http.MethodDelete},
}

// Authorizer answers route-level access questions for a role.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

func New() (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load authorization model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	for _, r := range rules {
		if _, err := enforcer.AddPolicy(string(r.role), r.path, r.method); err != nil {
			return nil, fmt.Errorf("add policy %s %s %s: %w", r.role, r.method, r.path, err)
		}
	}
	// super_admin can do everything admin can.
	if _, err := enforcer.AddGroupingPolicy(string(actorcontext.RoleSuperAdmin), string(actorcontext.RoleAdmin)); err != nil {
		return nil, fmt.Errorf("add role inheritance: %w", err)
	}

	return &Authorizer{enforcer: enforcer}, nil
}

func (a *Authorizer) Allowed(role actorcontext.Role, path, method string) (bool, error) {
	if !role.Valid() {
		return false, nil
	}
	return a.enforcer.Enforce(string(role), path, method)
}
