// Package guard is the role check invoked before any core operation.
// Core services accept a pre-authorized identity and never re-check
// roles themselves.
package guard

import "github.com/pkruglov/shopfloor-bot/pkg/models"

// Allow reports whether an active user holds one of the given roles.
func Allow(u *models.User, roles ...models.Role) bool {
	if u == nil || !u.IsActive {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// CanManage gates task creation and report generation.
func CanManage(u *models.User) bool {
	return Allow(u, models.RoleAdmin, models.RoleManager)
}

// IsEmployee gates acknowledgement and reporting of own tasks.
func IsEmployee(u *models.User) bool {
	return Allow(u, models.RoleEmployee)
}
