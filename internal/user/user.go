package user

import (
	"time"

	"github.com/valcriss/sovrane/internal/accesscontrol"
)

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusArchived  = "archived"
)

type User struct {
	ID           string  `json:"id" gorm:"primaryKey"`
	Email        string  `json:"email" gorm:"uniqueIndex;not null"`
	Name         string  `json:"name" gorm:"not null"`
	PasswordHash string  `json:"-" gorm:"column:password_hash"`
	Status       string  `json:"status" gorm:"default:active"`
	SiteID       string  `json:"site_id" gorm:"column:site_id;not null"`
	DepartmentID *string `json:"department_id,omitempty" gorm:"column:department_id"`

	// Loaded by the repository alongside the row; never persisted through
	// the user table itself.
	Roles       []accesscontrol.Role       `json:"roles,omitempty" gorm:"-"`
	Permissions []accesscontrol.Assignment `json:"permissions,omitempty" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// ActorID, DirectAssignments and GrantedRoles make *User an
// accesscontrol.Actor so a loaded user can be handed straight to the
// resolver.
func (u *User) ActorID() string {
	return u.ID
}

func (u *User) DirectAssignments() []accesscontrol.Assignment {
	return u.Permissions
}

func (u *User) GrantedRoles() []accesscontrol.Role {
	return u.Roles
}

func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusSuspended, StatusArchived:
		return true
	}
	return false
}
