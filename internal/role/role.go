package role

import (
	"time"

	"github.com/valcriss/sovrane/internal/accesscontrol"
)

type Role struct {
	ID    string `json:"id" gorm:"primaryKey"`
	Label string `json:"label" gorm:"not null"`

	// Role assignments are grants only; there is no deny at the role level.
	Assignments []accesscontrol.Assignment `json:"assignments" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by" gorm:"column:created_by"`
	UpdatedBy string    `json:"updated_by" gorm:"column:updated_by"`
}

func (Role) TableName() string {
	return "roles"
}

// Grants converts to the resolver's view of this role.
func (r *Role) Grants() accesscontrol.Role {
	return accesscontrol.Role{
		ID:          r.ID,
		Label:       r.Label,
		Assignments: r.Assignments,
	}
}
