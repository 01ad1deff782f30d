package usergroup_test

import (
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/valcriss/sovrane/internal"
	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/pagination"
	"github.com/valcriss/sovrane/internal/user"
	"github.com/valcriss/sovrane/internal/usergroup"
)

type testActor struct {
	id          string
	assignments []accesscontrol.Assignment
}

func (a *testActor) ActorID() string                               { return a.id }
func (a *testActor) DirectAssignments() []accesscontrol.Assignment { return a.assignments }
func (a *testActor) GrantedRoles() []accesscontrol.Role            { return nil }

func rootActor(id string) *testActor {
	return &testActor{
		id:          id,
		assignments: []accesscontrol.Assignment{{Key: accesscontrol.KeyRoot}},
	}
}

type membership struct{ groupID, userID string }

// Mock group repository owning the join tables
type mockGroupRepository struct {
	groups       map[string]*usergroup.UserGroup
	members      map[membership]bool
	responsibles map[membership]bool
	deleteCalls  int
	updateCalls  int
}

func newMockGroupRepository() *mockGroupRepository {
	return &mockGroupRepository{
		groups:       make(map[string]*usergroup.UserGroup),
		members:      make(map[membership]bool),
		responsibles: make(map[membership]bool),
	}
}

func (m *mockGroupRepository) GetByID(id string) (*usergroup.UserGroup, error) {
	return m.groups[id], nil
}

func (m *mockGroupRepository) GetAll() ([]*usergroup.UserGroup, error) {
	var out []*usergroup.UserGroup
	for _, g := range m.groups {
		out = append(out, g)
	}
	return out, nil
}

func (m *mockGroupRepository) Create(g *usergroup.UserGroup) error {
	m.groups[g.ID] = g
	return nil
}

func (m *mockGroupRepository) Update(g *usergroup.UserGroup) error {
	m.updateCalls++
	m.groups[g.ID] = g
	return nil
}

func (m *mockGroupRepository) Delete(id string) error {
	m.deleteCalls++
	delete(m.groups, id)
	return nil
}

func (m *mockGroupRepository) AddUser(groupID, userID string) error {
	m.members[membership{groupID, userID}] = true
	return nil
}

func (m *mockGroupRepository) RemoveUser(groupID, userID string) error {
	delete(m.members, membership{groupID, userID})
	return nil
}

func (m *mockGroupRepository) AddResponsible(groupID, userID string) error {
	m.responsibles[membership{groupID, userID}] = true
	return nil
}

func (m *mockGroupRepository) RemoveResponsible(groupID, userID string) error {
	delete(m.responsibles, membership{groupID, userID})
	return nil
}

func (m *mockGroupRepository) ListMembers(groupID string) ([]*user.User, error) {
	var out []*user.User
	for ms := range m.members {
		if ms.groupID == groupID {
			out = append(out, &user.User{ID: ms.userID, Name: "user-" + ms.userID})
		}
	}
	return out, nil
}

func (m *mockGroupRepository) ListResponsibles(groupID string) ([]*user.User, error) {
	var out []*user.User
	for ms := range m.responsibles {
		if ms.groupID == groupID {
			out = append(out, &user.User{ID: ms.userID, Name: "user-" + ms.userID})
		}
	}
	return out, nil
}

func (m *mockGroupRepository) IsResponsible(groupID, userID string) (bool, error) {
	return m.responsibles[membership{groupID, userID}], nil
}

type mockUserFinder struct {
	users map[string]*user.User
}

func (m *mockUserFinder) GetByID(id string) (*user.User, error) {
	return m.users[id], nil
}

var _ = Describe("UserGroupService", func() {
	var (
		service *usergroup.Service
		repo    *mockGroupRepository
		users   *mockUserFinder
	)

	BeforeEach(func() {
		repo = newMockGroupRepository()
		users = &mockUserFinder{users: make(map[string]*user.User)}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		resolver := accesscontrol.NewResolver(logger)
		service = usergroup.NewService(repo, users, resolver, logger)
	})

	Describe("CreateGroup", func() {
		It("enrolls the creator as the first responsible", func() {
			g, err := service.CreateGroup(rootActor("creator"), usergroup.GroupDTO{Name: "Ops"})

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.responsibles[membership{g.ID, "creator"}]).To(BeTrue())
		})

		It("rejects an empty name", func() {
			_, err := service.CreateGroup(rootActor("creator"), usergroup.GroupDTO{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})
	})

	Describe("UpdateGroup", func() {
		It("rejects an actor who holds the key but is not responsible", func() {
			g, err := service.CreateGroup(rootActor("creator"), usergroup.GroupDTO{Name: "Ops"})
			Expect(err).ToNot(HaveOccurred())

			outsider := rootActor("outsider")
			result, err := service.UpdateGroup(outsider, g.ID, usergroup.GroupDTO{Name: "Renamed"})

			Expect(result).To(BeNil())
			Expect(err).To(MatchError(internal.ErrNotResponsible))
			Expect(repo.updateCalls).To(BeZero())
		})

		It("lets a responsible actor update", func() {
			creator := rootActor("creator")
			g, err := service.CreateGroup(creator, usergroup.GroupDTO{Name: "Ops"})
			Expect(err).ToNot(HaveOccurred())

			result, err := service.UpdateGroup(creator, g.ID, usergroup.GroupDTO{Name: "Renamed"})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Name).To(Equal("Renamed"))
			Expect(result.UpdatedBy).To(Equal("creator"))
		})
	})

	Describe("DeleteGroup", func() {
		It("rejects a non-responsible actor without touching delete", func() {
			g, err := service.CreateGroup(rootActor("creator"), usergroup.GroupDTO{Name: "Ops"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.DeleteGroup(rootActor("outsider"), g.ID)

			Expect(err).To(MatchError(internal.ErrNotResponsible))
			Expect(repo.deleteCalls).To(BeZero())
		})
	})

	Describe("membership", func() {
		var groupID string

		BeforeEach(func() {
			g, err := service.CreateGroup(rootActor("creator"), usergroup.GroupDTO{Name: "Ops"})
			Expect(err).ToNot(HaveOccurred())
			groupID = g.ID
			users.users["u1"] = &user.User{ID: "u1", Name: "Ada"}
		})

		It("adds and removes a member", func() {
			actor := rootActor("creator")

			g, err := service.AddMember(actor, groupID, "u1")
			Expect(err).ToNot(HaveOccurred())
			Expect(g.ID).To(Equal(groupID))
			Expect(repo.members[membership{groupID, "u1"}]).To(BeTrue())

			_, err = service.RemoveMember(actor, groupID, "u1")
			Expect(err).ToNot(HaveOccurred())
			Expect(repo.members[membership{groupID, "u1"}]).To(BeFalse())
		})

		It("returns the nil sentinel when the group is missing", func() {
			g, err := service.AddMember(rootActor("creator"), "missing", "u1")

			Expect(err).ToNot(HaveOccurred())
			Expect(g).To(BeNil())
		})

		It("returns the nil sentinel when the user is missing", func() {
			g, err := service.AddMember(rootActor("creator"), groupID, "missing")

			Expect(err).ToNot(HaveOccurred())
			Expect(g).To(BeNil())
		})

		It("pages members filtered by name", func() {
			actor := rootActor("creator")
			users.users["u2"] = &user.User{ID: "u2", Name: "Grace"}
			_, err := service.AddMember(actor, groupID, "u1")
			Expect(err).ToNot(HaveOccurred())
			_, err = service.AddMember(actor, groupID, "u2")
			Expect(err).ToNot(HaveOccurred())

			page, err := service.ListMembers(actor, groupID, pagination.Params{Page: 1, Limit: 10, Search: "user-u2"})

			Expect(err).ToNot(HaveOccurred())
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].ID).To(Equal("u2"))
		})
	})
})
