package department

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/valcriss/sovrane/internal"
	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/pagination"
	"github.com/valcriss/sovrane/internal/permission"
	"github.com/valcriss/sovrane/internal/user"
)

// Repository is the department persistence port. Lookups that miss return
// (nil, nil).
type Repository interface {
	GetByID(id string) (*Department, error)
	GetByLabel(label string) (*Department, error)
	GetBySiteID(siteID string) ([]*Department, error)
	GetByParentID(parentID string) ([]*Department, error)
	GetAll() ([]*Department, error)
	Create(d *Department) error
	Update(d *Department) error
	AddPermission(departmentID, permissionID string) error
	RemovePermission(departmentID, permissionID string) error
	Delete(id string) error
}

// UserRepository is the slice of the user port this service needs: member
// reassignment writes through the user row, never the department row.
type UserRepository interface {
	GetByID(id string) (*user.User, error)
	GetByDepartmentID(departmentID string) ([]*user.User, error)
	Update(u *user.User) error
}

type PermissionFinder interface {
	GetByID(id string) (*permission.Permission, error)
}

// Service owns the department hierarchy invariants. Every operation runs the
// actor through the resolver before any repository access.
type Service struct {
	repo        Repository
	users       UserRepository
	permissions PermissionFinder
	resolver    *accesscontrol.Resolver
	logger      *slog.Logger
}

func NewService(repo Repository, users UserRepository, permissions PermissionFinder, resolver *accesscontrol.Resolver, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		users:       users,
		permissions: permissions,
		resolver:    resolver,
		logger:      logger,
	}
}

func (s *Service) CreateDepartment(actor accesscontrol.Actor, dto CreateDepartmentDTO) (*Department, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyCreateDepartment); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	d := &Department{
		ID:                 uuid.NewString(),
		Label:              dto.Label,
		ParentDepartmentID: dto.ParentDepartmentID,
		ManagerUserID:      dto.ManagerUserID,
		SiteID:             dto.SiteID,
		CreatedAt:          now,
		UpdatedAt:          now,
		CreatedBy:          actor.ActorID(),
		UpdatedBy:          actor.ActorID(),
	}

	if err := s.repo.Create(d); err != nil {
		s.logger.Error("failed to create department", "error", err, "label", dto.Label)
		return nil, err
	}

	s.logger.Info("department created", "department_id", d.ID, "actor_id", actor.ActorID())
	return d, nil
}

func (s *Service) GetDepartment(actor accesscontrol.Actor, id string) (*Department, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadDepartments); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) ListDepartments(actor accesscontrol.Actor, params pagination.Params) (pagination.Page[*Department], error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadDepartments); err != nil {
		return pagination.Page[*Department]{}, err
	}

	departments, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return pagination.Page[*Department]{}, err
	}

	return pagination.Paginate(departments, params,
		pagination.MatchSearch(params.Search, func(d *Department) string { return d.Label }),
		pagination.MatchID(params.SiteID, func(d *Department) string { return d.SiteID }),
	), nil
}

// GetDepartmentChildren pages over the direct children of a department. A
// missing parent is a sentinel, not an error.
func (s *Service) GetDepartmentChildren(actor accesscontrol.Actor, parentID string, params pagination.Params) (pagination.Page[*Department], error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadDepartments); err != nil {
		return pagination.Page[*Department]{}, err
	}

	children, err := s.repo.GetByParentID(parentID)
	if err != nil {
		s.logger.Error("failed to list department children", "error", err, "department_id", parentID)
		return pagination.Page[*Department]{}, err
	}

	return pagination.Paginate(children, params,
		pagination.MatchSearch(params.Search, func(d *Department) string { return d.Label }),
	), nil
}

func (s *Service) ListDepartmentUsers(actor accesscontrol.Actor, departmentID string, params pagination.Params) (pagination.Page[*user.User], error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadUsers); err != nil {
		return pagination.Page[*user.User]{}, err
	}

	users, err := s.users.GetByDepartmentID(departmentID)
	if err != nil {
		return pagination.Page[*user.User]{}, err
	}

	return pagination.Paginate(users, params,
		pagination.MatchSearch(params.Search, func(u *user.User) string { return u.Name }),
	), nil
}

// UpdateDepartment replaces the mutable fields in one write.
func (s *Service) UpdateDepartment(actor accesscontrol.Actor, id string, dto UpdateDepartmentDTO) (*Department, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyUpdateDepartment); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	d, err := s.repo.GetByID(id)
	if err != nil || d == nil {
		return nil, err
	}

	d.Label = dto.Label
	d.SiteID = dto.SiteID
	d.ManagerUserID = dto.ManagerUserID
	s.stamp(d, actor)

	if err := s.repo.Update(d); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}
	return d, nil
}

// AddChildDepartment links child under parent by rewriting the child's
// parent reference. Only the child row is written.
func (s *Service) AddChildDepartment(actor accesscontrol.Actor, parentID, childID string) (*Department, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyManageDepartmentHierarchy); err != nil {
		return nil, err
	}

	parent, err := s.repo.GetByID(parentID)
	if err != nil || parent == nil {
		return nil, err
	}

	child, err := s.repo.GetByID(childID)
	if err != nil || child == nil {
		return nil, err
	}

	child.ParentDepartmentID = &parent.ID
	s.stamp(child, actor)

	if err := s.repo.Update(child); err != nil {
		s.logger.Error("failed to attach child department", "error", err, "parent_id", parentID, "child_id", childID)
		return nil, err
	}

	s.logger.Info("child department attached", "parent_id", parentID, "child_id", childID, "actor_id", actor.ActorID())
	return child, nil
}

// RemoveChildDepartment clears the child's parent reference. Removing a
// child that is already parent-less is a no-op, not an error.
func (s *Service) RemoveChildDepartment(actor accesscontrol.Actor, childID string) (*Department, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyManageDepartmentHierarchy); err != nil {
		return nil, err
	}

	child, err := s.repo.GetByID(childID)
	if err != nil || child == nil {
		return nil, err
	}

	if child.ParentDepartmentID == nil {
		return child, nil
	}

	child.ParentDepartmentID = nil
	s.stamp(child, actor)

	if err := s.repo.Update(child); err != nil {
		s.logger.Error("failed to detach child department", "error", err, "child_id", childID)
		return nil, err
	}
	return child, nil
}

// SetParentDepartment is AddChildDepartment addressed from the child's side.
// No ancestry check is performed when linking.
func (s *Service) SetParentDepartment(actor accesscontrol.Actor, childID, parentID string) (*Department, error) {
	return s.AddChildDepartment(actor, parentID, childID)
}

func (s *Service) RemoveParentDepartment(actor accesscontrol.Actor, childID string) (*Department, error) {
	return s.RemoveChildDepartment(actor, childID)
}

func (s *Service) SetManager(actor accesscontrol.Actor, departmentID, userID string) (*Department, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyManageDepartmentUsers); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(departmentID)
	if err != nil || d == nil {
		return nil, err
	}

	manager, err := s.users.GetByID(userID)
	if err != nil || manager == nil {
		return nil, err
	}

	d.ManagerUserID = &manager.ID
	s.stamp(d, actor)

	if err := s.repo.Update(d); err != nil {
		s.logger.Error("failed to set department manager", "error", err, "department_id", departmentID, "user_id", userID)
		return nil, err
	}
	return d, nil
}

func (s *Service) RemoveManager(actor accesscontrol.Actor, departmentID string) (*Department, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyManageDepartmentUsers); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(departmentID)
	if err != nil || d == nil {
		return nil, err
	}

	d.ManagerUserID = nil
	s.stamp(d, actor)

	if err := s.repo.Update(d); err != nil {
		s.logger.Error("failed to remove department manager", "error", err, "department_id", departmentID)
		return nil, err
	}
	return d, nil
}

func (s *Service) AddPermission(actor accesscontrol.Actor, departmentID, permissionID string) (*Department, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyManageDepartmentPermissions); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(departmentID)
	if err != nil || d == nil {
		return nil, err
	}

	perm, err := s.permissions.GetByID(permissionID)
	if err != nil || perm == nil {
		return nil, err
	}

	if !d.HasPermission(perm.ID) {
		if err := s.repo.AddPermission(d.ID, perm.ID); err != nil {
			s.logger.Error("failed to attach department permission", "error", err, "department_id", departmentID, "permission_id", permissionID)
			return nil, err
		}
		d.Permissions = append(d.Permissions, *perm)
	}

	s.stamp(d, actor)
	if err := s.repo.Update(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) RemovePermission(actor accesscontrol.Actor, departmentID, permissionID string) (*Department, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyManageDepartmentPermissions); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(departmentID)
	if err != nil || d == nil {
		return nil, err
	}

	if d.HasPermission(permissionID) {
		if err := s.repo.RemovePermission(d.ID, permissionID); err != nil {
			s.logger.Error("failed to detach department permission", "error", err, "department_id", departmentID, "permission_id", permissionID)
			return nil, err
		}
		kept := d.Permissions[:0]
		for _, p := range d.Permissions {
			if p.ID != permissionID {
				kept = append(kept, p)
			}
		}
		d.Permissions = kept
	}

	s.stamp(d, actor)
	if err := s.repo.Update(d); err != nil {
		return nil, err
	}
	return d, nil
}

// AddUser reassigns the user to the department. The write goes through the
// user repository; the department row is untouched.
func (s *Service) AddUser(actor accesscontrol.Actor, departmentID, userID string) (*user.User, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyManageDepartmentUsers); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(departmentID)
	if err != nil || d == nil {
		return nil, err
	}

	u, err := s.users.GetByID(userID)
	if err != nil || u == nil {
		return nil, err
	}

	u.DepartmentID = &d.ID
	u.UpdatedAt = time.Now()

	if err := s.users.Update(u); err != nil {
		s.logger.Error("failed to assign user to department", "error", err, "department_id", departmentID, "user_id", userID)
		return nil, err
	}

	s.logger.Info("user assigned to department", "department_id", departmentID, "user_id", userID, "actor_id", actor.ActorID())
	return u, nil
}

// RemoveUser detaches the user from whatever department they are in. The
// department reference on User is optional precisely so this can null it.
func (s *Service) RemoveUser(actor accesscontrol.Actor, userID string) (*user.User, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyManageDepartmentUsers); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(userID)
	if err != nil || u == nil {
		return nil, err
	}

	u.DepartmentID = nil
	u.UpdatedAt = time.Now()

	if err := s.users.Update(u); err != nil {
		s.logger.Error("failed to detach user from department", "error", err, "user_id", userID)
		return nil, err
	}
	return u, nil
}

// DeleteDepartment is rejected while any user still references the
// department; the repository delete is never reached in that case.
func (s *Service) DeleteDepartment(actor accesscontrol.Actor, id string) (*Department, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyDeleteDepartment); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(id)
	if err != nil || d == nil {
		return nil, err
	}

	attached, err := s.users.GetByDepartmentID(id)
	if err != nil {
		return nil, err
	}
	if len(attached) > 0 {
		s.logger.Warn("department delete blocked by attached users", "department_id", id, "user_count", len(attached))
		return nil, internal.ErrDepartmentHasUsers
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return nil, err
	}

	s.logger.Info("department deleted", "department_id", id, "actor_id", actor.ActorID())
	return d, nil
}

func (s *Service) stamp(d *Department, actor accesscontrol.Actor) {
	d.UpdatedAt = time.Now()
	d.UpdatedBy = actor.ActorID()
}
