package utils

import "testing"

func TestMatchesPermission(t *testing.T) {
	tests := []struct {
		name     string
		granted  string
		required string
		expected bool
	}{
		{"exact match", "sales:create", "sales:create", true},
		{"different action", "sales:create", "sales:read", false},
		{"different resource", "sales:create", "purchases:create", false},

		{"full wildcard *", "*", "memo:update", true},
		{"full wildcard *:*", "*:*", "users:delete", true},

		{"resource wildcard create", "sales:*", "sales:create", true},
		{"resource wildcard delete", "sales:*", "sales:delete", true},
		{"resource wildcard other resource", "sales:*", "expenses:create", false},

		{"action wildcard stock", "*:read", "certified_stock:read", true},
		{"action wildcard reports", "*:read", "reports:read", true},
		{"action wildcard other action", "*:read", "reports:export", false},

		{"empty required", "sales:create", "", false},
		{"empty granted", "", "sales:create", false},
		{"single part exact", "admin", "admin", true},
		{"single part vs pair", "admin", "admin:read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MatchesPermission(tt.granted, tt.required)
			if result != tt.expected {
				t.Errorf("MatchesPermission(%q, %q) = %v, expected %v",
					tt.granted, tt.required, result, tt.expected)
			}
		})
	}
}

func TestHasPermission_RoleScenarios(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		granted  []string
		required string
		expected bool
	}{
		{
			name:     "admin has everything",
			role:     "admin",
			granted:  []string{"*:*"},
			required: "users:delete",
			expected: true,
		},
		{
			name:     "sales role can create sales",
			role:     "sales",
			granted:  []string{"sales:*", "loose_stock:read", "certified_stock:read"},
			required: "sales:create",
			expected: true,
		},
		{
			name:     "sales role cannot delete purchases",
			role:     "sales",
			granted:  []string{"sales:*", "loose_stock:read"},
			required: "purchases:delete",
			expected: false,
		},
		{
			name:     "viewer reads reports",
			role:     "viewer",
			granted:  []string{"*:read"},
			required: "reports:read",
			expected: true,
		},
		{
			name:     "viewer cannot import",
			role:     "viewer",
			granted:  []string{"*:read"},
			required: "sales:import",
			expected: false,
		},
		{
			name:     "no permissions",
			role:     "none",
			granted:  nil,
			required: "sales:read",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPermission(tt.granted, tt.required); got != tt.expected {
				t.Errorf("%s: HasPermission(%v, %q) = %v, expected %v",
					tt.role, tt.granted, tt.required, got, tt.expected)
			}
		})
	}
}
