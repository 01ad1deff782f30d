package permission

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/valcriss/sovrane/internal"

	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/pagination"
)

type Repository interface {
	GetByID(id string) (*Permission, error)
	GetByKey(key accesscontrol.Key) (*Permission, error)
	GetAll() ([]*Permission, error)
	Create(p *Permission) error
	Update(p *Permission) error
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

func (s *Service) CreatePermission(actor accesscontrol.Actor, dto CreatePermissionDTO) (*Permission, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyCreatePermission); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	p := &Permission{
		ID:          uuid.NewString(),
		Key:         accesscontrol.Key(dto.Key),
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create permission", "error", err, "key", dto.Key)
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPermission(actor accesscontrol.Actor, id string) (*Permission, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadPermissions); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) GetPermissionByKey(actor accesscontrol.Actor, key string) (*Permission, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadPermissions); err != nil {
		return nil, err
	}
	return s.repo.GetByKey(accesscontrol.Key(key))
}

func (s *Service) ListPermissions(actor accesscontrol.Actor, params pagination.Params) (pagination.Page[*Permission], error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadPermissions); err != nil {
		return pagination.Page[*Permission]{}, err
	}

	permissions, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return pagination.Page[*Permission]{}, err
	}

	return pagination.Paginate(permissions, params,
		pagination.MatchSearch(params.Search, func(p *Permission) string { return string(p.Key) }),
	), nil
}

func (s *Service) UpdatePermission(actor accesscontrol.Actor, id string, dto UpdatePermissionDTO) (*Permission, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyUpdatePermission); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(id)
	if err != nil || p == nil {
		return nil, err
	}

	p.Description = dto.Description
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(p); err != nil {
		s.logger.Error("failed to update permission", "error", err, "permission_id", id)
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePermission(actor accesscontrol.Actor, id string) (*Permission, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyDeletePermission); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(id)
	if err != nil || p == nil {
		return nil, err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete permission", "error", err, "permission_id", id)
		return nil, err
	}
	return p, nil
}
