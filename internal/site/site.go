package site

import "time"

type Site struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Label     string    `json:"label" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by" gorm:"column:created_by"`
	UpdatedBy string    `json:"updated_by" gorm:"column:updated_by"`
}

func (Site) TableName() string {
	return "sites"
}
