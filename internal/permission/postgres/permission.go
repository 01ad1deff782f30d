package postgres

import (
	"gorm.io/gorm"

	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/permission"
)

// departmentPermissionRow mirrors the department attachment join table so a
// permission delete can clear its side of the foreign key.
type departmentPermissionRow struct {
	DepartmentID string `gorm:"column:department_id;primaryKey"`
	PermissionID string `gorm:"column:permission_id;primaryKey"`
}

func (departmentPermissionRow) TableName() string { return "department_permissions" }

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.Repository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetByID(id string) (*permission.Permission, error) {
	var p permission.Permission
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PermissionRepository) GetByKey(key accesscontrol.Key) (*permission.Permission, error) {
	var p permission.Permission
	err := r.db.Where("key = ?", string(key)).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PermissionRepository) GetAll() ([]*permission.Permission, error) {
	var permissions []*permission.Permission
	err := r.db.Order("key ASC").Find(&permissions).Error
	return permissions, err
}

func (r *PermissionRepository) Create(p *permission.Permission) error {
	return r.db.Create(p).Error
}

func (r *PermissionRepository) Update(p *permission.Permission) error {
	return r.db.Save(p).Error
}

// Delete drops department attachments first; user and role assignments
// reference the permission by key, not id, so they are left in place and
// simply never match again.
func (r *PermissionRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&departmentPermissionRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&permission.Permission{}).Error
	})
}
