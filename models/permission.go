package models

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"p9e.in/gemstock/utils"
)

// Permission describes one "resource:action" grant in the catalog.
type Permission struct {
	ID          string `json:"id"` // e.g. "sales:create"
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// PermissionSet is stored as a postgres text[] (plain text elsewhere) using
// the lib/pq array encoding.
type PermissionSet []string

func (p PermissionSet) Value() (driver.Value, error) {
	return pq.StringArray(p).Value()
}

func (p *PermissionSet) Scan(src interface{}) error {
	var a pq.StringArray
	if err := a.Scan(src); err != nil {
		return err
	}
	*p = PermissionSet(a)
	return nil
}

func (PermissionSet) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Role is a named set of permission ids.
type Role struct {
	Record
	Name        string        `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string        `gorm:"size:255" json:"description"`
	Permissions PermissionSet `json:"permissions"`
	IsActive    bool          `gorm:"not null" json:"isActive"`
}

// HasPermission checks the role's grants, honouring wildcards.
func (r *Role) HasPermission(permission string) bool {
	if r == nil || !r.IsActive {
		return false
	}
	return utils.HasPermission(r.Permissions, permission)
}
