package policy

import "github.com/boxline/boxline-backend/internal/model"

// Principal is the authenticated actor behind a request. It is resolved by
// the auth middleware (or constructed synthetically for background work)
// and passed explicitly into every service call.
type Principal struct {
	UID          string
	Role         model.Role
	Email        string
	IsSystemUser bool
	Verification model.VerificationStatus
}

// Ref carries the instance fields conditions inspect. Services build one
// from the row under evaluation; a nil Ref means "no instance yet", e.g.
// a list call, and ownership conditions pass optimistically so the caller
// can apply the equivalent filter as a query predicate.
type Ref struct {
	ID           string
	UserUID      string
	OwnerUserUID string
}

type Condition string

const (
	IsAdmin  Condition = "is_admin"
	IsSystem Condition = "is_system"
	IsSelf   Condition = "is_self"
	IsOwner  Condition = "is_owner"
)

// Permission is either an unconditional verdict or a set of conditions
// with OR semantics.
type Permission struct {
	allow bool
	conds []Condition
}

func Allow() Permission {
	return Permission{allow: true}
}

func Deny() Permission {
	return Permission{allow: false}
}

func If(c Condition) Permission {
	return Permission{conds: []Condition{c}}
}

func AnyOf(cs ...Condition) Permission {
	return Permission{conds: cs}
}

// Rules maps role -> resource -> action -> permission. The wildcard entry
// rules[role][ResourceAny][ActionAny] short-circuits every lookup for that
// role.
type Rules map[model.Role]map[string]map[string]Permission

type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Can reports whether the principal may perform action on resource. An
// absent principal or an unregistered (role, resource, action) triple is a
// deny; absence of a rule is never permission. Can performs no I/O and is
// safe for concurrent use.
func (e *Engine) Can(p *Principal, action, resource string, ref *Ref) bool {
	if p == nil {
		return false
	}
	perResource, ok := e.rules[p.Role]
	if !ok {
		return false
	}
	if wc, ok := perResource[ResourceAny][ActionAny]; ok && wc.allow {
		return true
	}
	perm, ok := perResource[resource][action]
	if !ok {
		return false
	}
	if len(perm.conds) == 0 {
		return perm.allow
	}
	for _, c := range perm.conds {
		if satisfies(p, c, ref) {
			return true
		}
	}
	return false
}

func satisfies(p *Principal, c Condition, ref *Ref) bool {
	switch c {
	case IsAdmin:
		return p.Role == model.RoleAdmin
	case IsSystem:
		return p.Role == model.RoleSystem
	case IsSelf:
		if ref == nil {
			return true
		}
		target := ref.UserUID
		if target == "" {
			target = ref.ID
		}
		return target == p.UID
	case IsOwner:
		if ref == nil {
			return true
		}
		target := ref.OwnerUserUID
		if target == "" {
			target = ref.UserUID
		}
		return target == p.UID
	}
	return false
}
