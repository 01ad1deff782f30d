package postgres

import (
	"gorm.io/gorm"

	"github.com/valcriss/sovrane/internal/user"
	"github.com/valcriss/sovrane/internal/usergroup"
)

// memberRow joins groups to member users.
type memberRow struct {
	GroupID string `gorm:"column:group_id;primaryKey"`
	UserID  string `gorm:"column:user_id;primaryKey"`
}

func (memberRow) TableName() string { return "user_group_members" }

// responsibleRow joins groups to the users allowed to manage them.
type responsibleRow struct {
	GroupID string `gorm:"column:group_id;primaryKey"`
	UserID  string `gorm:"column:user_id;primaryKey"`
}

func (responsibleRow) TableName() string { return "user_group_responsibles" }

type UserGroupRepository struct {
	db *gorm.DB
}

func NewUserGroupRepository(db *gorm.DB) usergroup.Repository {
	return &UserGroupRepository{db: db}
}

func (r *UserGroupRepository) GetByID(id string) (*usergroup.UserGroup, error) {
	var g usergroup.UserGroup
	err := r.db.Where("id = ?", id).First(&g).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *UserGroupRepository) GetAll() ([]*usergroup.UserGroup, error) {
	var groups []*usergroup.UserGroup
	err := r.db.Order("name ASC").Find(&groups).Error
	return groups, err
}

func (r *UserGroupRepository) Create(g *usergroup.UserGroup) error {
	return r.db.Create(g).Error
}

func (r *UserGroupRepository) Update(g *usergroup.UserGroup) error {
	return r.db.Save(g).Error
}

func (r *UserGroupRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&memberRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&responsibleRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&usergroup.UserGroup{}).Error
	})
}

// Add/Remove are idempotent at the row level so re-joining an existing member
// does not error.
func (r *UserGroupRepository) AddUser(groupID, userID string) error {
	row := memberRow{GroupID: groupID, UserID: userID}
	return r.db.Where(&row).FirstOrCreate(&row).Error
}

func (r *UserGroupRepository) RemoveUser(groupID, userID string) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&memberRow{}).Error
}

func (r *UserGroupRepository) AddResponsible(groupID, userID string) error {
	row := responsibleRow{GroupID: groupID, UserID: userID}
	return r.db.Where(&row).FirstOrCreate(&row).Error
}

func (r *UserGroupRepository) RemoveResponsible(groupID, userID string) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&responsibleRow{}).Error
}

func (r *UserGroupRepository) ListMembers(groupID string) ([]*user.User, error) {
	var users []*user.User
	err := r.db.
		Table("users").
		Select("users.*").
		Joins("JOIN user_group_members ON user_group_members.user_id = users.id").
		Where("user_group_members.group_id = ?", groupID).
		Order("users.name ASC").
		Scan(&users).Error
	return users, err
}

func (r *UserGroupRepository) ListResponsibles(groupID string) ([]*user.User, error) {
	var users []*user.User
	err := r.db.
		Table("users").
		Select("users.*").
		Joins("JOIN user_group_responsibles ON user_group_responsibles.user_id = users.id").
		Where("user_group_responsibles.group_id = ?", groupID).
		Order("users.name ASC").
		Scan(&users).Error
	return users, err
}

func (r *UserGroupRepository) IsResponsible(groupID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&responsibleRow{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
