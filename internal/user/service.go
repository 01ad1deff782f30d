package user

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/valcriss/sovrane/internal"

	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/pagination"
)

// Repository is the user persistence port. Lookups that miss return
// (nil, nil) so callers can translate to a 404 without treating it as a
// fault.
type Repository interface {
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	GetByDepartmentID(departmentID string) ([]*User, error)
	GetBySiteID(siteID string) ([]*User, error)
	GetAll() ([]*User, error)
	Create(u *User) error
	Update(u *User) error
	Delete(id string) error
}

type Service struct {
	repo       Repository
	resolver   *accesscontrol.Resolver
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, resolver *accesscontrol.Resolver, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		resolver:   resolver,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) CreateUser(actor accesscontrol.Actor, dto CreateUserDTO) (*User, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyCreateUser); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	deptID := dto.DepartmentID
	u := &User{
		ID:           uuid.NewString(),
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: string(hash),
		Status:       StatusActive,
		SiteID:       dto.SiteID,
		DepartmentID: &deptID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "actor_id", actor.ActorID())
	return u, nil
}

func (s *Service) GetUser(actor accesscontrol.Actor, id string) (*User, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadUsers); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) ListUsers(actor accesscontrol.Actor, params pagination.Params) (pagination.Page[*User], error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadUsers); err != nil {
		return pagination.Page[*User]{}, err
	}

	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return pagination.Page[*User]{}, err
	}

	return pagination.Paginate(users, params,
		pagination.MatchSearch(params.Search, func(u *User) string { return u.Name }),
		pagination.MatchID(params.SiteID, func(u *User) string { return u.SiteID }),
	), nil
}

func (s *Service) UpdateUser(actor accesscontrol.Actor, id string, dto UpdateUserDTO) (*User, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyUpdateUser); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(id)
	if err != nil || u == nil {
		return nil, err
	}

	u.Name = dto.Name
	u.SiteID = dto.SiteID
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}
	return u, nil
}

func (s *Service) ChangeStatus(actor accesscontrol.Actor, id string, dto ChangeStatusDTO) (*User, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyUpdateUser); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(id)
	if err != nil || u == nil {
		return nil, err
	}

	u.Status = dto.Status
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to change user status", "error", err, "user_id", id)
		return nil, err
	}

	s.logger.Info("user status changed", "user_id", id, "status", dto.Status, "actor_id", actor.ActorID())
	return u, nil
}

func (s *Service) DeleteUser(actor accesscontrol.Actor, id string) (*User, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyDeleteUser); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil || u == nil {
		return nil, err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return nil, err
	}

	s.logger.Info("user deleted", "user_id", id, "actor_id", actor.ActorID())
	return u, nil
}
