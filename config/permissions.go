package config

import (
	"sort"

	"p9e.in/gemstock/models"
)

// Resources that carry permissions. Route registration uses the same names.
const (
	ResLooseStock     = "loose_stock"
	ResCertifiedStock = "certified_stock"
	ResJewelleryStock = "jewellery_stock"
	ResSales          = "sales"
	ResPurchases      = "purchases"
	ResExpenses       = "expenses"
	ResMemo           = "memo"
	ResIgi            = "igi"
	ResReports        = "reports"
	ResFiles          = "files"
	ResUsers          = "users"
	ResRoles          = "roles"
)

var resourceActions = map[string][]string{
	ResLooseStock:     {"read", "create", "update", "delete"},
	ResCertifiedStock: {"read", "create", "update", "delete"},
	ResJewelleryStock: {"read", "create", "update", "delete"},
	ResSales:          {"read", "create", "update", "delete", "import"},
	ResPurchases:      {"read", "create", "update", "delete", "import"},
	ResExpenses:       {"read", "create", "update", "delete", "import"},
	ResMemo:           {"read", "create", "update", "delete", "decide"},
	ResIgi:            {"read", "create", "update", "delete", "receive"},
	ResReports:        {"read", "export"},
	ResFiles:          {"create"},
	ResUsers:          {"read", "create", "update", "delete"},
	ResRoles:          {"read", "create", "update", "delete"},
}

// PermissionCatalog lists every grantable permission, sorted by id.
func PermissionCatalog() []models.Permission {
	var out []models.Permission
	for res, actions := range resourceActions {
		for _, action := range actions {
			out = append(out, models.Permission{
				ID:          res + ":" + action,
				Resource:    res,
				Action:      action,
				Description: action + " " + res,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DefaultRoles are created on first start.
func DefaultRoles() []models.Role {
	return []models.Role{
		{
			Name:        "admin",
			Description: "Full access",
			Permissions: models.PermissionSet{"*:*"},
			IsActive:    true,
		},
		{
			Name:        "manager",
			Description: "Inventory, ledgers, custody and reports",
			Permissions: models.PermissionSet{
				"loose_stock:*", "certified_stock:*", "jewellery_stock:*",
				"sales:*", "purchases:*", "expenses:*",
				"memo:*", "igi:*", "reports:*", "files:create",
				"users:read", "roles:read",
			},
			IsActive: true,
		},
		{
			Name:        "sales",
			Description: "Sales desk",
			Permissions: models.PermissionSet{
				"sales:*", "memo:*",
				"loose_stock:read", "certified_stock:read", "jewellery_stock:read",
				"reports:read",
			},
			IsActive: true,
		},
		{
			Name:        "viewer",
			Description: "Read-only",
			Permissions: models.PermissionSet{"*:read"},
			IsActive:    true,
		},
	}
}
