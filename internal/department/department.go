package department

import (
	"time"

	"github.com/valcriss/sovrane/internal/permission"
)

type Department struct {
	ID                 string  `json:"id" gorm:"primaryKey"`
	Label              string  `json:"label" gorm:"not null"`
	ParentDepartmentID *string `json:"parent_department_id,omitempty" gorm:"column:parent_department_id"`
	ManagerUserID      *string `json:"manager_user_id,omitempty" gorm:"column:manager_user_id"`
	SiteID             string  `json:"site_id" gorm:"column:site_id;not null"`

	Permissions []permission.Permission `json:"permissions" gorm:"many2many:department_permissions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by" gorm:"column:created_by"`
	UpdatedBy string    `json:"updated_by" gorm:"column:updated_by"`
}

func (Department) TableName() string {
	return "departments"
}

// HasPermission reports whether the permission id is already attached.
func (d *Department) HasPermission(permissionID string) bool {
	for _, p := range d.Permissions {
		if p.ID == permissionID {
			return true
		}
	}
	return false
}

