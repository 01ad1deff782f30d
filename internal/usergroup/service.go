package usergroup

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/valcriss/sovrane/internal"
	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/pagination"
	"github.com/valcriss/sovrane/internal/user"
)

// Repository owns the join-table semantics for membership and
// responsibility. Adding a user who is already in the set is the
// repository's problem, not the service's.
type Repository interface {
	GetByID(id string) (*UserGroup, error)
	GetAll() ([]*UserGroup, error)
	Create(g *UserGroup) error
	Update(g *UserGroup) error
	Delete(id string) error

	AddUser(groupID, userID string) error
	RemoveUser(groupID, userID string) error
	AddResponsible(groupID, userID string) error
	RemoveResponsible(groupID, userID string) error
	ListMembers(groupID string) ([]*user.User, error)
	ListResponsibles(groupID string) ([]*user.User, error)
	IsResponsible(groupID, userID string) (bool, error)
}

type UserFinder interface {
	GetByID(id string) (*user.User, error)
}

type Service struct {
	repo     Repository
	users    UserFinder
	resolver *accesscontrol.Resolver
	logger   *slog.Logger
}

func NewService(repo Repository, users UserFinder, resolver *accesscontrol.Resolver, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		resolver: resolver,
		logger:   logger,
	}
}

// CreateGroup creates the group and enrolls the creating actor as its first
// responsible so the responsible set is never empty.
func (s *Service) CreateGroup(actor accesscontrol.Actor, dto GroupDTO) (*UserGroup, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyCreateGroup); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	g := &UserGroup{
		ID:          uuid.NewString(),
		Name:        dto.Name,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   actor.ActorID(),
		UpdatedBy:   actor.ActorID(),
	}

	if err := s.repo.Create(g); err != nil {
		s.logger.Error("failed to create group", "error", err, "name", dto.Name)
		return nil, err
	}

	if err := s.repo.AddResponsible(g.ID, actor.ActorID()); err != nil {
		s.logger.Error("failed to enroll creator as responsible", "error", err, "group_id", g.ID)
		return nil, err
	}

	s.logger.Info("group created", "group_id", g.ID, "actor_id", actor.ActorID())
	return g, nil
}

func (s *Service) GetGroup(actor accesscontrol.Actor, id string) (*UserGroup, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadGroups); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) ListGroups(actor accesscontrol.Actor, params pagination.Params) (pagination.Page[*UserGroup], error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadGroups); err != nil {
		return pagination.Page[*UserGroup]{}, err
	}

	groups, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list groups", "error", err)
		return pagination.Page[*UserGroup]{}, err
	}

	return pagination.Paginate(groups, params,
		pagination.MatchSearch(params.Search, func(g *UserGroup) string { return g.Name }),
	), nil
}

// UpdateGroup requires the update-group key and, on top of it, that the
// actor is currently responsible for this group. The ownership check
// complements the permission key; it never replaces it.
func (s *Service) UpdateGroup(actor accesscontrol.Actor, id string, dto GroupDTO) (*UserGroup, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyUpdateGroup); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	g, err := s.repo.GetByID(id)
	if err != nil || g == nil {
		return nil, err
	}

	if err := s.requireResponsible(actor, g.ID); err != nil {
		return nil, err
	}

	g.Name = dto.Name
	g.Description = dto.Description
	g.UpdatedAt = time.Now()
	g.UpdatedBy = actor.ActorID()

	if err := s.repo.Update(g); err != nil {
		s.logger.Error("failed to update group", "error", err, "group_id", id)
		return nil, err
	}
	return g, nil
}

func (s *Service) DeleteGroup(actor accesscontrol.Actor, id string) (*UserGroup, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyDeleteGroup); err != nil {
		return nil, err
	}

	g, err := s.repo.GetByID(id)
	if err != nil || g == nil {
		return nil, err
	}

	if err := s.requireResponsible(actor, g.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete group", "error", err, "group_id", id)
		return nil, err
	}

	s.logger.Info("group deleted", "group_id", id, "actor_id", actor.ActorID())
	return g, nil
}

func (s *Service) AddMember(actor accesscontrol.Actor, groupID, userID string) (*UserGroup, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyManageGroupMembers); err != nil {
		return nil, err
	}
	return s.joinLeave(groupID, userID, s.repo.AddUser)
}

func (s *Service) RemoveMember(actor accesscontrol.Actor, groupID, userID string) (*UserGroup, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyManageGroupMembers); err != nil {
		return nil, err
	}
	return s.joinLeave(groupID, userID, s.repo.RemoveUser)
}

func (s *Service) AddResponsible(actor accesscontrol.Actor, groupID, userID string) (*UserGroup, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyManageGroupResponsibles); err != nil {
		return nil, err
	}
	return s.joinLeave(groupID, userID, s.repo.AddResponsible)
}

func (s *Service) RemoveResponsible(actor accesscontrol.Actor, groupID, userID string) (*UserGroup, error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyManageGroupResponsibles); err != nil {
		return nil, err
	}
	return s.joinLeave(groupID, userID, s.repo.RemoveResponsible)
}

func (s *Service) ListMembers(actor accesscontrol.Actor, groupID string, params pagination.Params) (pagination.Page[*user.User], error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadGroups); err != nil {
		return pagination.Page[*user.User]{}, err
	}

	members, err := s.repo.ListMembers(groupID)
	if err != nil {
		return pagination.Page[*user.User]{}, err
	}

	return pagination.Paginate(members, params,
		pagination.MatchSearch(params.Search, func(u *user.User) string { return u.Name }),
	), nil
}

func (s *Service) ListResponsibles(actor accesscontrol.Actor, groupID string, params pagination.Params) (pagination.Page[*user.User], error) {
	if err := s.resolver.Check(actor, accesscontrol.KeyReadGroups); err != nil {
		return pagination.Page[*user.User]{}, err
	}

	responsibles, err := s.repo.ListResponsibles(groupID)
	if err != nil {
		return pagination.Page[*user.User]{}, err
	}

	return pagination.Paginate(responsibles, params,
		pagination.MatchSearch(params.Search, func(u *user.User) string { return u.Name }),
	), nil
}

// joinLeave loads both sides, bails out with the sentinel if either is
// missing, then delegates the join-table write to the repository.
func (s *Service) joinLeave(groupID, userID string, op func(groupID, userID string) error) (*UserGroup, error) {
	g, err := s.repo.GetByID(groupID)
	if err != nil || g == nil {
		return nil, err
	}

	u, err := s.users.GetByID(userID)
	if err != nil || u == nil {
		return nil, err
	}

	if err := op(g.ID, u.ID); err != nil {
		s.logger.Error("group membership write failed", "error", err, "group_id", groupID, "user_id", userID)
		return nil, err
	}
	return g, nil
}

func (s *Service) requireResponsible(actor accesscontrol.Actor, groupID string) error {
	responsible, err := s.repo.IsResponsible(groupID, actor.ActorID())
	if err != nil {
		return err
	}
	if !responsible {
		s.logger.Warn("group change denied: actor is not responsible", "group_id", groupID, "actor_id", actor.ActorID())
		return internal.ErrNotResponsible
	}
	return nil
}
