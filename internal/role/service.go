package role

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/valcriss/sovrane/internal"

	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/pagination"
)

type Repository interface {
	GetByID(id string) (*Role, error)
	GetAll() ([]*Role, error)
	Create(r *Role) error
	Update(r *Role) error
	Delete(id string) error
}

type Service struct {
	repo     Repository
	resolver *accesscontrol.Resolver
	logger   *slog.Logger
}

func NewService(repo Repository, resolver *accesscontrol.Resolver, logger *slog.Logger) *Service {
	return &Service{repo: repo, resolver: resolver, logger: logger}
}

func (s *Service) CreateRole(actor accesscontrol.Actor, dto RoleDTO) (*Role, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyCreateRole); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	r := &Role{
		ID:          uuid.NewString(),
		Label:       dto.Label,
		Assignments: dto.toAssignments(),
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   actor.ActorID(),
		UpdatedBy:   actor.ActorID(),
	}

	if err := s.repo.Create(r); err != nil {
		s.logger.Error("failed to create role", "error", err, "label", dto.Label)
		return nil, err
	}

	s.logger.Info("role created", "role_id", r.ID, "actor_id", actor.ActorID())
	return r, nil
}

func (s *Service) GetRole(actor accesscontrol.Actor, id string) (*Role, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadRoles); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) ListRoles(actor accesscontrol.Actor, params pagination.Params) (pagination.Page[*Role], error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadRoles); err != nil {
		return pagination.Page[*Role]{}, err
	}

	roles, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return pagination.Page[*Role]{}, err
	}

	return pagination.Paginate(roles, params,
		pagination.MatchSearch(params.Search, func(r *Role) string { return r.Label }),
	), nil
}

// UpdateRole replaces the label and the full assignment set.
func (s *Service) UpdateRole(actor accesscontrol.Actor, id string, dto RoleDTO) (*Role, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyUpdateRole); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	r, err := s.repo.GetByID(id)
	if err != nil || r == nil {
		return nil, err
	}

	r.Label = dto.Label
	r.Assignments = dto.toAssignments()
	r.UpdatedAt = time.Now()
	r.UpdatedBy = actor.ActorID()

	if err := s.repo.Update(r); err != nil {
		s.logger.Error("failed to update role", "error", err, "role_id", id)
		return nil, err
	}
	return r, nil
}

func (s *Service) DeleteRole(actor accesscontrol.Actor, id string) (*Role, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyDeleteRole); err != nil {
		return nil, err
	}

	r, err := s.repo.GetByID(id)
	if err != nil || r == nil {
		return nil, err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete role", "error", err, "role_id", id)
		return nil, err
	}

	s.logger.Info("role deleted", "role_id", id, "actor_id", actor.ActorID())
	return r, nil
}
