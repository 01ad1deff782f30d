package accesscontrol

import (
	"log/slog"

	"github.com/valcriss/sovrane/internal"
)

// Actor is whoever is performing an operation. *user.User satisfies it.
type Actor interface {
	ActorID() string
	DirectAssignments() []Assignment
	GrantedRoles() []Role
}

// Resolver decides whether an actor holds a permission key. Resolution is
// re-evaluated on every call: role and permission membership can change
// between requests, so nothing is cached here.
type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Has applies the precedence chain, first match wins:
//  1. a direct non-deny assignment with KeyRoot allows;
//  2. a direct non-deny assignment with the requested key allows;
//  3. any held role granting KeyRoot or the requested key allows;
//  4. otherwise deny.
//
// A deny entry never grants; it only stops the matching direct grant from
// counting at steps 1-2. Role grants are not affected by user-level denies.
func (r *Resolver) Has(actor Actor, key Key) bool {
	for _, a := range actor.DirectAssignments() {
		if a.Deny {
			continue
		}
		if a.Key == KeyRoot || a.Key == key {
			return true
		}
	}

	for _, role := range actor.GrantedRoles() {
		for _, a := range role.Assignments {
			if a.Key == KeyRoot || a.Key == key {
				return true
			}
		}
	}

	return false
}

// Check is Has with a failure value: a generic Forbidden error that does not
// reveal which key was required.
func (r *Resolver) Check(actor Actor, key Key) error {
	if r.Has(actor, key) {
		return nil
	}
	r.logger.Warn("access denied",
		"actor_id", actor.ActorID(),
		"required_key", string(key))
	return internal.ErrForbidden
}
