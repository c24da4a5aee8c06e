// models/user.go
package models

// User is a back-office login.
type User struct {
	Record
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone        string `gorm:"size:15;index" json:"phone"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	RoleID       uint   `gorm:"index" json:"roleId"`
	IsActive     bool   `gorm:"not null" json:"isActive"`
}
