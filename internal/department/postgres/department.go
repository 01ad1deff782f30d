package postgres

import (
	"gorm.io/gorm"

	"github.com/valcriss/sovrane/internal/department"
	"github.com/valcriss/sovrane/internal/permission"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.Repository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) GetByID(id string) (*department.Department, error) {
	var d department.Department
	err := r.db.Preload("Permissions").Where("id = ?", id).First(&d).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) GetByLabel(label string) (*department.Department, error) {
	var d department.Department
	err := r.db.Preload("Permissions").Where("label = ?", label).First(&d).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) GetBySiteID(siteID string) ([]*department.Department, error) {
	var departments []*department.Department
	err := r.db.Preload("Permissions").Where("site_id = ?", siteID).Order("label ASC").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) GetByParentID(parentID string) ([]*department.Department, error) {
	var departments []*department.Department
	err := r.db.Preload("Permissions").Where("parent_department_id = ?", parentID).Order("label ASC").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) GetAll() ([]*department.Department, error) {
	var departments []*department.Department
	err := r.db.Preload("Permissions").Order("label ASC").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) Create(d *department.Department) error {
	return r.db.Create(d).Error
}

// Update saves scalar columns only; the permission attachment has its own
// Add/RemovePermission operations, so the association is left untouched here.
func (r *DepartmentRepository) Update(d *department.Department) error {
	return r.db.Omit("Permissions").Save(d).Error
}

func (r *DepartmentRepository) AddPermission(departmentID, permissionID string) error {
	return r.db.Model(&department.Department{ID: departmentID}).
		Association("Permissions").
		Append(&permission.Permission{ID: permissionID})
}

func (r *DepartmentRepository) RemovePermission(departmentID, permissionID string) error {
	return r.db.Model(&department.Department{ID: departmentID}).
		Association("Permissions").
		Delete(&permission.Permission{ID: permissionID})
}

// Delete detaches the department's permission rows and orphans its children
// before removing the row itself, so the join-table and self-referencing
// foreign keys cannot block the delete.
func (r *DepartmentRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&department.Department{ID: id}).
			Association("Permissions").
			Clear(); err != nil {
			return err
		}
		if err := tx.Model(&department.Department{}).
			Where("parent_department_id = ?", id).
			Update("parent_department_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&department.Department{}).Error
	})
}
