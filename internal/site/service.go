package site

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/valcriss/sovrane/internal"
	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/department"
	"github.com/valcriss/sovrane/internal/pagination"
	"github.com/valcriss/sovrane/internal/user"
)

type Repository interface {
	GetByID(id string) (*Site, error)
	GetByLabel(label string) (*Site, error)
	GetAll() ([]*Site, error)
	Create(s *Site) error
	Update(s *Site) error
	Delete(id string) error
}

// UserFinder and DepartmentFinder are the dependent-record checks consulted
// before a site is removed.
type UserFinder interface {
	GetBySiteID(siteID string) ([]*user.User, error)
}

type DepartmentFinder interface {
	GetBySiteID(siteID string) ([]*department.Department, error)
}

type Service struct {
	repo        Repository
	users       UserFinder
	departments DepartmentFinder
	resolver    *accesscontrol.Resolver
	logger      *slog.Logger
}

func NewService(repo Repository, users UserFinder, departments DepartmentFinder, resolver *accesscontrol.Resolver, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		users:       users,
		departments: departments,
		resolver:    resolver,
		logger:      logger,
	}
}

func (s *Service) CreateSite(actor accesscontrol.Actor, dto SiteDTO) (*Site, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyCreateSite); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	site := &Site{
		ID:        uuid.NewString(),
		Label:     dto.Label,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actor.ActorID(),
		UpdatedBy: actor.ActorID(),
	}

	if err := s.repo.Create(site); err != nil {
		s.logger.Error("failed to create site", "error", err, "label", dto.Label)
		return nil, err
	}

	s.logger.Info("site created", "site_id", site.ID, "actor_id", actor.ActorID())
	return site, nil
}

func (s *Service) GetSite(actor accesscontrol.Actor, id string) (*Site, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadSites); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) ListSites(actor accesscontrol.Actor, params pagination.Params) (pagination.Page[*Site], error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadSites); err != nil {
		return pagination.Page[*Site]{}, err
	}

	sites, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list sites", "error", err)
		return pagination.Page[*Site]{}, err
	}

	return pagination.Paginate(sites, params,
		pagination.MatchSearch(params.Search, func(st *Site) string { return st.Label }),
	), nil
}

func (s *Service) UpdateSite(actor accesscontrol.Actor, id string, dto SiteDTO) (*Site, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyUpdateSite); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	site, err := s.repo.GetByID(id)
	if err != nil || site == nil {
		return nil, err
	}

	site.Label = dto.Label
	site.UpdatedAt = time.Now()
	site.UpdatedBy = actor.ActorID()

	if err := s.repo.Update(site); err != nil {
		s.logger.Error("failed to update site", "error", err, "site_id", id)
		return nil, err
	}
	return site, nil
}

// DeleteSite refuses to remove a site while any user or department still
// references it.
func (s *Service) DeleteSite(actor accesscontrol.Actor, id string) (*Site, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyDeleteSite); err != nil {
		return nil, err
	}

	site, err := s.repo.GetByID(id)
	if err != nil || site == nil {
		return nil, err
	}

	users, err := s.users.GetBySiteID(id)
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		s.logger.Warn("site delete blocked by attached users", "site_id", id, "user_count", len(users))
		return nil, internal.ErrSiteHasUsers
	}

	departments, err := s.departments.GetBySiteID(id)
	if err != nil {
		return nil, err
	}
	if len(departments) > 0 {
		s.logger.Warn("site delete blocked by attached departments", "site_id", id, "department_count", len(departments))
		return nil, internal.ErrSiteHasDepartments
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete site", "error", err, "site_id", id)
		return nil, err
	}

	s.logger.Info("site deleted", "site_id", id, "actor_id", actor.ActorID())
	return site, nil
}
