// Package rbac maps roles to the permissions route guards check.
package rbac

import "github.com/Skotchmaster/storefront/internal/models"

type Permission string

const (
	ViewAllUsers  Permission = "VIEW_ALL_USERS"
	ViewUser      Permission = "VIEW_USER"
	CreateUser    Permission = "CREATE_USER"
	UpdateUser    Permission = "UPDATE_USER"
	DeleteUser    Permission = "DELETE_USER"
	ViewOwnUser   Permission = "VIEW_OWN_USER"
	UpdateOwnUser Permission = "UPDATE_OWN_USER"

	CreateProduct  Permission = "CREATE_PRODUCT"
	UpdateProduct  Permission = "UPDATE_PRODUCT"
	DeleteProduct  Permission = "DELETE_PRODUCT"
	ManageCategory Permission = "MANAGE_CATEGORY"
	ManageGroup    Permission = "MANAGE_GROUP"

	ViewAllOrders  Permission = "VIEW_ALL_ORDERS"
	CreateOrder    Permission = "CREATE_ORDER"
	UpdateOrder    Permission = "UPDATE_ORDER"
	DeleteOrder    Permission = "DELETE_ORDER"
	ViewOwnOrders  Permission = "VIEW_OWN_ORDERS"
	CreateOwnOrder Permission = "CREATE_OWN_ORDER"
	UpdateOwnOrder Permission = "UPDATE_OWN_ORDER"

	ViewCart      Permission = "VIEW_CART"
	ViewOwnCart   Permission = "VIEW_OWN_CART"
	CreateOwnCart Permission = "CREATE_OWN_CART"
	UpdateOwnCart Permission = "UPDATE_OWN_CART"
	DeleteOwnCart Permission = "DELETE_OWN_CART"
)

var ownAccount = []Permission{ViewOwnUser, UpdateOwnUser}

var shopper = []Permission{
	ViewOwnOrders, CreateOwnOrder, UpdateOwnOrder,
	ViewOwnCart, CreateOwnCart, UpdateOwnCart, DeleteOwnCart,
}

var catalogWrite = []Permission{CreateProduct, UpdateProduct, DeleteProduct}

var table = map[models.Role]map[Permission]struct{}{
	models.RoleAdmin: set(ownAccount, shopper, catalogWrite, []Permission{
		ViewAllUsers, ViewUser, CreateUser, UpdateUser, DeleteUser,
		ManageCategory, ManageGroup,
		ViewAllOrders, CreateOrder, UpdateOrder, DeleteOrder,
		ViewCart,
	}),
	models.RoleStaff: set(ownAccount, catalogWrite, []Permission{
		ViewAllOrders, UpdateOrder,
		ManageCategory, ManageGroup,
		ViewCart,
	}),
	models.RoleCustomer: set(ownAccount, shopper),
	models.RoleSupplier: set(ownAccount, catalogWrite),
}

func set(groups ...[]Permission) map[Permission]struct{} {
	out := make(map[Permission]struct{})
	for _, g := range groups {
		for _, p := range g {
			out[p] = struct{}{}
		}
	}
	return out
}

func Can(role models.Role, perm Permission) bool {
	_, ok := table[role][perm]
	return ok
}

// CanAny reports whether role holds at least one of perms.
func CanAny(role models.Role, perms ...Permission) bool {
	for _, p := range perms {
		if Can(role, p) {
			return true
		}
	}
	return false
}
