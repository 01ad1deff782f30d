package role_test

import (
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/valcriss/sovrane/internal"
	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/pagination"
	"github.com/valcriss/sovrane/internal/role"
)

type testActor struct {
	id          string
	assignments []accesscontrol.Assignment
	roles       []accesscontrol.Role
}

func (a *testActor) ActorID() string                               { return a.id }
func (a *testActor) DirectAssignments() []accesscontrol.Assignment { return a.assignments }
func (a *testActor) GrantedRoles() []accesscontrol.Role            { return a.roles }

func rootActor() *testActor {
	return &testActor{
		id:          "actor-1",
		assignments: []accesscontrol.Assignment{{Key: accesscontrol.KeyRoot}},
	}
}

// Mock role repository for testing
type mockRoleRepository struct {
	roles       map[string]*role.Role
	updateCalls int
	deleteCalls int
}

func newMockRoleRepository() *mockRoleRepository {
	return &mockRoleRepository{roles: make(map[string]*role.Role)}
}

func (m *mockRoleRepository) GetByID(id string) (*role.Role, error) {
	return m.roles[id], nil
}

func (m *mockRoleRepository) GetAll() ([]*role.Role, error) {
	out := make([]*role.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRoleRepository) Create(r *role.Role) error {
	m.roles[r.ID] = r
	return nil
}

func (m *mockRoleRepository) Update(r *role.Role) error {
	m.updateCalls++
	m.roles[r.ID] = r
	return nil
}

func (m *mockRoleRepository) Delete(id string) error {
	m.deleteCalls++
	delete(m.roles, id)
	return nil
}

var _ = Describe("Role Service", func() {
	var (
		repo    *mockRoleRepository
		service *role.Service
		actor   *testActor
	)

	BeforeEach(func() {
		repo = newMockRoleRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = role.NewService(repo, accesscontrol.NewResolver(logger), logger)
		actor = rootActor()
	})

	Describe("CreateRole", func() {
		It("should create a role with its assignments", func() {
			created, err := service.CreateRole(actor, role.RoleDTO{
				Label: "Site Manager",
				Assignments: []role.AssignmentDTO{
					{Key: "read-sites"},
					{Key: "update-site"},
				},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(created.Label).To(Equal("Site Manager"))
			Expect(created.Assignments).To(HaveLen(2))
			Expect(created.Assignments[0].Key).To(Equal(accesscontrol.Key("read-sites")))
			Expect(created.CreatedBy).To(Equal("actor-1"))
		})

		It("should reject an assignment without a key", func() {
			_, err := service.CreateRole(actor, role.RoleDTO{
				Label:       "Broken",
				Assignments: []role.AssignmentDTO{{Key: ""}},
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(repo.roles).To(BeEmpty())
		})
	})

	Describe("UpdateRole", func() {
		It("should replace the assignment set", func() {
			repo.roles["role-1"] = &role.Role{
				ID:    "role-1",
				Label: "Old",
				Assignments: []accesscontrol.Assignment{
					{Key: "read-sites"},
					{Key: "update-site"},
				},
			}

			updated, err := service.UpdateRole(actor, "role-1", role.RoleDTO{
				Label:       "New",
				Assignments: []role.AssignmentDTO{{Key: "read-users"}},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Label).To(Equal("New"))
			Expect(updated.Assignments).To(HaveLen(1))
			Expect(updated.Assignments[0].Key).To(Equal(accesscontrol.Key("read-users")))
			Expect(repo.updateCalls).To(Equal(1))
		})

		It("should return nil for an unknown role", func() {
			updated, err := service.UpdateRole(actor, "missing", role.RoleDTO{Label: "New"})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated).To(BeNil())
			Expect(repo.updateCalls).To(BeZero())
		})
	})

	Describe("ListRoles", func() {
		It("should filter by label search", func() {
			repo.roles["role-1"] = &role.Role{ID: "role-1", Label: "Site Manager"}
			repo.roles["role-2"] = &role.Role{ID: "role-2", Label: "Auditor"}

			page, err := service.ListRoles(actor, pagination.Params{Page: 1, Limit: 10, Search: "manager"})

			Expect(err).ToNot(HaveOccurred())
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].Label).To(Equal("Site Manager"))
		})
	})

	Describe("DeleteRole", func() {
		It("should delete an existing role", func() {
			repo.roles["role-1"] = &role.Role{ID: "role-1", Label: "Site Manager"}

			deleted, err := service.DeleteRole(actor, "role-1")

			Expect(err).ToNot(HaveOccurred())
			Expect(deleted.ID).To(Equal("role-1"))
			Expect(repo.deleteCalls).To(Equal(1))
		})

		It("should return nil for an unknown role", func() {
			deleted, err := service.DeleteRole(actor, "missing")

			Expect(err).ToNot(HaveOccurred())
			Expect(deleted).To(BeNil())
			Expect(repo.deleteCalls).To(BeZero())
		})
	})
})
