package policy_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/internal/domain/policy"
)

func TestDecisionTable(t *testing.T) {
	cases := []struct {
		role   entity.Role
		action policy.Action
		self   bool
		want   bool
	}{
		// user: own record only, nothing administrative
		{entity.RoleUser, policy.ActionView, true, true},
		{entity.RoleUser, policy.ActionView, false, false},
		{entity.RoleUser, policy.ActionUpdateSelf, true, true},
		{entity.RoleUser, policy.ActionUpdateOther, false, false},
		{entity.RoleUser, policy.ActionList, false, false},
		{entity.RoleUser, policy.ActionChangeRole, true, false},
		{entity.RoleUser, policy.ActionActivate, false, false},
		{entity.RoleUser, policy.ActionDeactivate, true, false},
		{entity.RoleUser, policy.ActionVerify, false, false},
		{entity.RoleUser, policy.ActionDelete, true, false},
		{entity.RoleUser, policy.ActionBulk, false, false},

		// editor: read and profile edits, no lifecycle or role control
		{entity.RoleEditor, policy.ActionList, false, true},
		{entity.RoleEditor, policy.ActionView, false, true},
		{entity.RoleEditor, policy.ActionUpdateSelf, true, true},
		{entity.RoleEditor, policy.ActionUpdateOther, false, true},
		{entity.RoleEditor, policy.ActionChangeRole, false, false},
		{entity.RoleEditor, policy.ActionActivate, false, false},
		{entity.RoleEditor, policy.ActionDeactivate, false, false},
		{entity.RoleEditor, policy.ActionVerify, false, false},
		{entity.RoleEditor, policy.ActionDelete, false, false},
		{entity.RoleEditor, policy.ActionBulk, false, false},

		// admin: everything, except self-targeted lockout actions
		{entity.RoleAdmin, policy.ActionList, false, true},
		{entity.RoleAdmin, policy.ActionView, false, true},
		{entity.RoleAdmin, policy.ActionCreate, false, true},
		{entity.RoleAdmin, policy.ActionUpdateOther, false, true},
		{entity.RoleAdmin, policy.ActionChangeRole, false, true},
		{entity.RoleAdmin, policy.ActionChangeRole, true, true},
		{entity.RoleAdmin, policy.ActionActivate, false, true},
		{entity.RoleAdmin, policy.ActionActivate, true, false},
		{entity.RoleAdmin, policy.ActionDeactivate, false, true},
		{entity.RoleAdmin, policy.ActionDeactivate, true, false},
		{entity.RoleAdmin, policy.ActionVerify, false, true},
		{entity.RoleAdmin, policy.ActionDelete, false, true},
		{entity.RoleAdmin, policy.ActionDelete, true, false},
		{entity.RoleAdmin, policy.ActionBulk, false, true},

		// unknown role: default deny
		{entity.Role("superuser"), policy.ActionView, true, false},
		{entity.Role(""), policy.ActionList, false, false},
	}

	for _, tc := range cases {
		name := fmt.Sprintf("%s/%s/self=%v", tc.role, tc.action, tc.self)
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, policy.Allow(tc.role, tc.action, tc.self))
		})
	}
}
