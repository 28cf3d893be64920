// Package policy maps (actor role, action, relationship-to-target) to an
// allow/deny decision. It is a pure function over its inputs so it can be
// tested without any transport or storage in place.
package policy

import (
	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
)

// Action identifies an attempted operation on a user record.
type Action string

const (
	ActionList        Action = "list"
	ActionView        Action = "view"
	ActionCreate      Action = "create"
	ActionUpdateSelf  Action = "update_self"
	ActionUpdateOther Action = "update_other"
	ActionChangeRole  Action = "change_role"
	ActionActivate    Action = "activate"
	ActionDeactivate  Action = "deactivate"
	ActionVerify      Action = "verify"
	ActionDelete      Action = "delete"
	ActionBulk        Action = "bulk_action"
)

// Allow decides whether an actor with the given role may perform action.
// self reports whether the actor targets their own record. Default deny:
// any combination not explicitly allowed below is denied, and callers must
// surface every deny as the same Forbidden outcome.
func Allow(actor entity.Role, action Action, self bool) bool {
	switch actor {
	case entity.RoleAdmin:
		return allowAdmin(action, self)
	case entity.RoleEditor:
		return allowEditor(action, self)
	case entity.RoleUser:
		return allowUser(action, self)
	default:
		return false
	}
}

func allowAdmin(action Action, self bool) bool {
	switch action {
	case ActionActivate, ActionDeactivate, ActionDelete:
		// An admin can never lock themselves out or remove their own account.
		return !self
	case ActionList, ActionView, ActionCreate, ActionUpdateSelf, ActionUpdateOther,
		ActionChangeRole, ActionVerify, ActionBulk:
		return true
	default:
		return false
	}
}

func allowEditor(action Action, _ bool) bool {
	switch action {
	case ActionList, ActionView, ActionUpdateSelf, ActionUpdateOther:
		return true
	default:
		return false
	}
}

func allowUser(action Action, self bool) bool {
	switch action {
	case ActionView, ActionUpdateSelf:
		return self
	default:
		return false
	}
}
