package permission

import (
	"time"

	"github.com/valcriss/sovrane/internal/accesscontrol"
)

type Permission struct {
	ID          string            `json:"id" gorm:"primaryKey"`
	Key         accesscontrol.Key `json:"key" gorm:"uniqueIndex;not null"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (Permission) TableName() string {
	return "permissions"
}
