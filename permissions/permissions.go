// Package permissions holds the capability table gating every mutating
// operation. Checks are explicit per action instead of ad-hoc role
// comparisons scattered through handlers.
package permissions

import (
	"github.com/Tung-Worramet/store-api/apperr"
	"github.com/Tung-Worramet/store-api/models"
)

type Action string

const (
	ActionUpdateCart        Action = "cart:update"
	ActionCreateOrder       Action = "order:create"
	ActionCancelOrder       Action = "order:cancel"
	ActionUpdateOrderStatus Action = "order:update-status"
	ActionManageProducts    Action = "product:manage"
	ActionManageCategories  Action = "category:manage"
	ActionExportOrders      Action = "order:export"
)

var capabilities = map[models.UserRole]map[Action]bool{
	models.UserRoleUser: {
		ActionUpdateCart:  true,
		ActionCreateOrder: true,
		ActionCancelOrder: true,
	},
	models.UserRoleAdmin: {
		ActionUpdateCart:        true,
		ActionCreateOrder:       true,
		ActionCancelOrder:       true,
		ActionUpdateOrderStatus: true,
		ActionManageProducts:    true,
		ActionManageCategories:  true,
		ActionExportOrders:      true,
	},
}

// Authorize returns an authorization error unless user's role grants action.
// Banned users hold no capabilities at all.
func Authorize(action Action, user *models.User) error {
	if user == nil || user.Status != models.UserStatusActive {
		return apperr.Unauthorized("You do not have permission to perform this action")
	}
	if !capabilities[user.Role][action] {
		return apperr.Unauthorized("You do not have permission to perform this action")
	}
	return nil
}
