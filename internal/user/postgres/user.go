package postgres

import (
	"gorm.io/gorm"

	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/user"
)

// userRoleRow joins users to roles.
type userRoleRow struct {
	UserID string `gorm:"column:user_id;primaryKey"`
	RoleID string `gorm:"column:role_id;primaryKey"`
}

func (userRoleRow) TableName() string { return "user_roles" }

// userAssignmentRow is one direct grant or deny on a user.
type userAssignmentRow struct {
	UserID        string  `gorm:"column:user_id;primaryKey"`
	PermissionKey string  `gorm:"column:permission_key;primaryKey"`
	ScopeID       *string `gorm:"column:scope_id"`
	Deny          bool    `gorm:"column:deny"`
}

func (userAssignmentRow) TableName() string { return "user_permissions" }

// roleAssignmentRow is one grant carried by a role. Role grants never deny.
type roleAssignmentRow struct {
	RoleID        string  `gorm:"column:role_id;primaryKey"`
	PermissionKey string  `gorm:"column:permission_key;primaryKey"`
	ScopeID       *string `gorm:"column:scope_id"`
}

func (roleAssignmentRow) TableName() string { return "role_assignments" }

type roleRow struct {
	ID    string `gorm:"column:id"`
	Label string `gorm:"column:label"`
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id string) (*user.User, error) {
	return r.getOne("id = ?", id)
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	return r.getOne("email = ?", email)
}

func (r *UserRepository) getOne(query string, arg string) (*user.User, error) {
	var u user.User
	err := r.db.Where(query, arg).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadAccess(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByDepartmentID(departmentID string) ([]*user.User, error) {
	var users []*user.User
	err := r.db.Where("department_id = ?", departmentID).Order("name ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetBySiteID(siteID string) ([]*user.User, error) {
	var users []*user.User
	err := r.db.Where("site_id = ?", siteID).Order("name ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetAll() ([]*user.User, error) {
	var users []*user.User
	err := r.db.Order("name ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Create(u *user.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return r.saveAccess(tx, u)
	})
}

func (r *UserRepository) Update(u *user.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(u).Error; err != nil {
			return err
		}
		return r.saveAccess(tx, u)
	})
}

func (r *UserRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&userRoleRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&userAssignmentRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&user.User{}).Error
	})
}

// loadAccess fills Roles and Permissions, the resolver's two inputs, from the
// join tables.
func (r *UserRepository) loadAccess(u *user.User) error {
	var assignmentRows []userAssignmentRow
	if err := r.db.Where("user_id = ?", u.ID).Find(&assignmentRows).Error; err != nil {
		return err
	}
	u.Permissions = make([]accesscontrol.Assignment, len(assignmentRows))
	for i, row := range assignmentRows {
		u.Permissions[i] = accesscontrol.Assignment{
			Key:     accesscontrol.Key(row.PermissionKey),
			ScopeID: row.ScopeID,
			Deny:    row.Deny,
		}
	}

	var roleRows []roleRow
	err := r.db.
		Table("roles").
		Select("roles.id, roles.label").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", u.ID).
		Scan(&roleRows).Error
	if err != nil {
		return err
	}

	u.Roles = make([]accesscontrol.Role, len(roleRows))
	for i, row := range roleRows {
		var grantRows []roleAssignmentRow
		if err := r.db.Where("role_id = ?", row.ID).Find(&grantRows).Error; err != nil {
			return err
		}
		grants := make([]accesscontrol.Assignment, len(grantRows))
		for j, g := range grantRows {
			grants[j] = accesscontrol.Assignment{
				Key:     accesscontrol.Key(g.PermissionKey),
				ScopeID: g.ScopeID,
			}
		}
		u.Roles[i] = accesscontrol.Role{ID: row.ID, Label: row.Label, Assignments: grants}
	}
	return nil
}

// saveAccess replaces the user's join rows with the in-memory sets.
func (r *UserRepository) saveAccess(tx *gorm.DB, u *user.User) error {
	if err := tx.Where("user_id = ?", u.ID).Delete(&userRoleRow{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", u.ID).Delete(&userAssignmentRow{}).Error; err != nil {
		return err
	}

	for _, role := range u.Roles {
		row := userRoleRow{UserID: u.ID, RoleID: role.ID}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	for _, assignment := range u.Permissions {
		row := userAssignmentRow{
			UserID:        u.ID,
			PermissionKey: string(assignment.Key),
			ScopeID:       assignment.ScopeID,
			Deny:          assignment.Deny,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
