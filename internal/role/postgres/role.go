package postgres

import (
	"gorm.io/gorm"

	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/role"
)

// assignmentRow is one grant carried by a role.
type assignmentRow struct {
	RoleID        string  `gorm:"column:role_id;primaryKey"`
	PermissionKey string  `gorm:"column:permission_key;primaryKey"`
	ScopeID       *string `gorm:"column:scope_id"`
}

func (assignmentRow) TableName() string { return "role_assignments" }

// userRoleRow mirrors the user membership join table so a role delete can
// revoke the role from its holders in the same transaction.
type userRoleRow struct {
	UserID string `gorm:"column:user_id;primaryKey"`
	RoleID string `gorm:"column:role_id;primaryKey"`
}

func (userRoleRow) TableName() string { return "user_roles" }

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.Repository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByID(id string) (*role.Role, error) {
	var ro role.Role
	err := r.db.Where("id = ?", id).First(&ro).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadAssignments(&ro); err != nil {
		return nil, err
	}
	return &ro, nil
}

func (r *RoleRepository) GetAll() ([]*role.Role, error) {
	var roles []*role.Role
	if err := r.db.Order("label ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	for _, ro := range roles {
		if err := r.loadAssignments(ro); err != nil {
			return nil, err
		}
	}
	return roles, nil
}

func (r *RoleRepository) Create(ro *role.Role) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ro).Error; err != nil {
			return err
		}
		return saveAssignments(tx, ro)
	})
}

func (r *RoleRepository) Update(ro *role.Role) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(ro).Error; err != nil {
			return err
		}
		return saveAssignments(tx, ro)
	})
}

func (r *RoleRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&assignmentRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&userRoleRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&role.Role{}).Error
	})
}

func (r *RoleRepository) loadAssignments(ro *role.Role) error {
	var rows []assignmentRow
	if err := r.db.Where("role_id = ?", ro.ID).Find(&rows).Error; err != nil {
		return err
	}
	ro.Assignments = make([]accesscontrol.Assignment, len(rows))
	for i, row := range rows {
		ro.Assignments[i] = accesscontrol.Assignment{
			Key:     accesscontrol.Key(row.PermissionKey),
			ScopeID: row.ScopeID,
		}
	}
	return nil
}

func saveAssignments(tx *gorm.DB, ro *role.Role) error {
	if err := tx.Where("role_id = ?", ro.ID).Delete(&assignmentRow{}).Error; err != nil {
		return err
	}
	for _, a := range ro.Assignments {
		row := assignmentRow{
			RoleID:        ro.ID,
			PermissionKey: string(a.Key),
			ScopeID:       a.ScopeID,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
