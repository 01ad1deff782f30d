package permission_test

import (
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/valcriss/sovrane/internal"
	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/pagination"
	"github.com/valcriss/sovrane/internal/permission"
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

// Mock permission repository for testing
type mockPermissionRepository struct {
	permissions map[string]*permission.Permission
	deleteCalls int
}

func newMockPermissionRepository() *mockPermissionRepository {
	return &mockPermissionRepository{permissions: make(map[string]*permission.Permission)}
}

func (m *mockPermissionRepository) GetByID(id string) (*permission.Permission, error) {
	return m.permissions[id], nil
}

func (m *mockPermissionRepository) GetByKey(key accesscontrol.Key) (*permission.Permission, error) {
	for _, p := range m.permissions {
		if p.Key == key {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockPermissionRepository) GetAll() ([]*permission.Permission, error) {
	out := make([]*permission.Permission, 0, len(m.permissions))
	for _, p := range m.permissions {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockPermissionRepository) Create(p *permission.Permission) error {
	m.permissions[p.ID] = p
	return nil
}

func (m *mockPermissionRepository) Update(p *permission.Permission) error {
	m.permissions[p.ID] = p
	return nil
}

func (m *mockPermissionRepository) Delete(id string) error {
	m.deleteCalls++
	delete(m.permissions, id)
	return nil
}

var _ = Describe("Permission Service", func() {
	var (
		repo    *mockPermissionRepository
		service *permission.Service
		actor   *testActor
	)

	BeforeEach(func() {
		repo = newMockPermissionRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = permission.NewService(repo, accesscontrol.NewResolver(logger), logger)
		actor = rootActor()
	})

	Describe("CreatePermission", func() {
		It("should create a permission with the given key", func() {
			created, err := service.CreatePermission(actor, permission.CreatePermissionDTO{
				Key:         "export-reports",
				Description: "Export reporting data",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(created.Key).To(Equal(accesscontrol.Key("export-reports")))
			Expect(repo.permissions).To(HaveKey(created.ID))
		})

		It("should reject an empty key", func() {
			_, err := service.CreatePermission(actor, permission.CreatePermissionDTO{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(repo.permissions).To(BeEmpty())
		})
	})

	Describe("GetPermissionByKey", func() {
		It("should find a permission by its key", func() {
			repo.permissions["perm-1"] = &permission.Permission{ID: "perm-1", Key: "read-users"}

			found, err := service.GetPermissionByKey(actor, "read-users")

			Expect(err).ToNot(HaveOccurred())
			Expect(found.ID).To(Equal("perm-1"))
		})

		It("should return nil for an unknown key", func() {
			found, err := service.GetPermissionByKey(actor, "unknown")

			Expect(err).ToNot(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("ListPermissions", func() {
		It("should filter by key search", func() {
			repo.permissions["perm-1"] = &permission.Permission{ID: "perm-1", Key: "read-users"}
			repo.permissions["perm-2"] = &permission.Permission{ID: "perm-2", Key: "read-sites"}
			repo.permissions["perm-3"] = &permission.Permission{ID: "perm-3", Key: "delete-site"}

			page, err := service.ListPermissions(actor, pagination.Params{Page: 1, Limit: 10, Search: "read"})

			Expect(err).ToNot(HaveOccurred())
			Expect(page.Items).To(HaveLen(2))
		})
	})

	Describe("DeletePermission", func() {
		It("should delete an existing permission", func() {
			repo.permissions["perm-1"] = &permission.Permission{ID: "perm-1", Key: "read-users"}

			deleted, err := service.DeletePermission(actor, "perm-1")

			Expect(err).ToNot(HaveOccurred())
			Expect(deleted.ID).To(Equal("perm-1"))
			Expect(repo.deleteCalls).To(Equal(1))
		})

		It("should return nil for an unknown permission", func() {
			deleted, err := service.DeletePermission(actor, "missing")

			Expect(err).ToNot(HaveOccurred())
			Expect(deleted).To(BeNil())
			Expect(repo.deleteCalls).To(BeZero())
		})
	})
})
