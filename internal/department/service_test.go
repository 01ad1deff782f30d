package department_test

import (
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/valcriss/sovrane/internal"
	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/department"
	"github.com/valcriss/sovrane/internal/pagination"
	"github.com/valcriss/sovrane/internal/permission"
	"github.com/valcriss/sovrane/internal/user"
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

// Mock department repository for testing
type mockDepartmentRepository struct {
	departments map[string]*department.Department
	getError    error
	updateError error
	deleteCalls int
	updateCalls int
	getCalls    int
}

func newMockDepartmentRepository() *mockDepartmentRepository {
	return &mockDepartmentRepository{departments: make(map[string]*department.Department)}
}

func (m *mockDepartmentRepository) GetByID(id string) (*department.Department, error) {
	m.getCalls++
	if m.getError != nil {
		return nil, m.getError
	}
	return m.departments[id], nil
}

func (m *mockDepartmentRepository) GetByLabel(label string) (*department.Department, error) {
	for _, d := range m.departments {
		if d.Label == label {
			return d, nil
		}
	}
	return nil, nil
}

func (m *mockDepartmentRepository) GetBySiteID(siteID string) ([]*department.Department, error) {
	var out []*department.Department
	for _, d := range m.departments {
		if d.SiteID == siteID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDepartmentRepository) GetByParentID(parentID string) ([]*department.Department, error) {
	var out []*department.Department
	for _, d := range m.departments {
		if d.ParentDepartmentID != nil && *d.ParentDepartmentID == parentID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDepartmentRepository) GetAll() ([]*department.Department, error) {
	var out []*department.Department
	for _, d := range m.departments {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockDepartmentRepository) Create(d *department.Department) error {
	m.departments[d.ID] = d
	return nil
}

func (m *mockDepartmentRepository) Update(d *department.Department) error {
	m.updateCalls++
	if m.updateError != nil {
		return m.updateError
	}
	m.departments[d.ID] = d
	return nil
}

func (m *mockDepartmentRepository) AddPermission(departmentID, permissionID string) error {
	return nil
}

func (m *mockDepartmentRepository) RemovePermission(departmentID, permissionID string) error {
	return nil
}

func (m *mockDepartmentRepository) Delete(id string) error {
	m.deleteCalls++
	delete(m.departments, id)
	return nil
}

// Mock user repository slice used by the department service
type mockUserRepository struct {
	users       map[string]*user.User
	updateCalls int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*user.User)}
}

func (m *mockUserRepository) GetByID(id string) (*user.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepository) GetByDepartmentID(departmentID string) ([]*user.User, error) {
	var out []*user.User
	for _, u := range m.users {
		if u.DepartmentID != nil && *u.DepartmentID == departmentID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepository) Update(u *user.User) error {
	m.updateCalls++
	m.users[u.ID] = u
	return nil
}

type mockPermissionFinder struct {
	permissions map[string]*permission.Permission
}

func newMockPermissionFinder() *mockPermissionFinder {
	return &mockPermissionFinder{permissions: make(map[string]*permission.Permission)}
}

func (m *mockPermissionFinder) GetByID(id string) (*permission.Permission, error) {
	return m.permissions[id], nil
}

var _ = Describe("DepartmentService", func() {
	var (
		service     *department.Service
		repo        *mockDepartmentRepository
		users       *mockUserRepository
		permissions *mockPermissionFinder
	)

	seed := func(id, label string) *department.Department {
		d := &department.Department{ID: id, Label: label, SiteID: "s1"}
		repo.departments[id] = d
		return d
	}

	BeforeEach(func() {
		repo = newMockDepartmentRepository()
		users = newMockUserRepository()
		permissions = newMockPermissionFinder()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		resolver := accesscontrol.NewResolver(logger)
		service = department.NewService(repo, users, permissions, resolver, logger)
	})

	Describe("authorization", func() {
		It("rejects an actor without the required key before touching the repository", func() {
			reader := &testActor{
				id:          "reader",
				assignments: []accesscontrol.Assignment{{Key: accesscontrol.KeyReadUsers}},
			}

			result, err := service.CreateDepartment(reader, department.CreateDepartmentDTO{Label: "Eng", SiteID: "s1"})

			Expect(result).To(BeNil())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
			Expect(repo.getCalls).To(BeZero())
			Expect(repo.updateCalls).To(BeZero())
		})
	})

	Describe("CreateDepartment", func() {
		It("stamps audit fields from the actor", func() {
			result, err := service.CreateDepartment(rootActor(), department.CreateDepartmentDTO{Label: "Eng", SiteID: "s1"})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ID).ToNot(BeEmpty())
			Expect(result.CreatedBy).To(Equal("actor-1"))
			Expect(result.UpdatedBy).To(Equal("actor-1"))
			Expect(result.CreatedAt).ToNot(BeZero())
		})

		It("rejects a missing label as a validation error", func() {
			_, err := service.CreateDepartment(rootActor(), department.CreateDepartmentDTO{SiteID: "s1"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})
	})

	Describe("AddChildDepartment", func() {
		It("links the child under the parent by rewriting the child's parent reference", func() {
			seed("d1", "Parent")
			seed("d2", "Child")

			child, err := service.AddChildDepartment(rootActor(), "d1", "d2")

			Expect(err).ToNot(HaveOccurred())
			Expect(child.ID).To(Equal("d2"))
			Expect(child.ParentDepartmentID).ToNot(BeNil())
			Expect(*child.ParentDepartmentID).To(Equal("d1"))
			Expect(repo.departments["d1"].ParentDepartmentID).To(BeNil())
		})

		It("returns the nil sentinel when the parent is missing", func() {
			seed("d2", "Child")

			child, err := service.AddChildDepartment(rootActor(), "missing", "d2")

			Expect(err).ToNot(HaveOccurred())
			Expect(child).To(BeNil())
			Expect(repo.updateCalls).To(BeZero())
		})

		It("returns the nil sentinel when the child is missing", func() {
			seed("d1", "Parent")

			child, err := service.AddChildDepartment(rootActor(), "d1", "missing")

			Expect(err).ToNot(HaveOccurred())
			Expect(child).To(BeNil())
		})
	})

	Describe("RemoveChildDepartment", func() {
		It("clears the parent reference", func() {
			parentID := "d1"
			seed("d1", "Parent")
			child := seed("d2", "Child")
			child.ParentDepartmentID = &parentID

			result, err := service.RemoveChildDepartment(rootActor(), "d2")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ParentDepartmentID).To(BeNil())
		})

		It("is a no-op on an already parent-less child", func() {
			seed("d2", "Child")

			result, err := service.RemoveChildDepartment(rootActor(), "d2")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ID).To(Equal("d2"))
			Expect(repo.updateCalls).To(BeZero())
		})
	})

	Describe("GetDepartmentChildren", func() {
		It("pages and filters children by label", func() {
			parentID := "d1"
			seed("d1", "Parent")
			for _, id := range []string{"c1", "c2", "c3"} {
				child := seed(id, "node-"+id)
				child.ParentDepartmentID = &parentID
			}
			repo.departments["c1"].Label = "child1"

			page, err := service.GetDepartmentChildren(rootActor(), "d1", pagination.Params{Page: 1, Limit: 10, Search: "child1"})

			Expect(err).ToNot(HaveOccurred())
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].ID).To(Equal("c1"))
			Expect(page.Total).To(Equal(1))
		})
	})

	Describe("AddUser and RemoveUser", func() {
		It("reassigns the user through the user repository, leaving the department row untouched", func() {
			seed("d1", "Eng")
			users.users["u1"] = &user.User{ID: "u1", Name: "Ada", SiteID: "s1"}

			moved, err := service.AddUser(rootActor(), "d1", "u1")

			Expect(err).ToNot(HaveOccurred())
			Expect(moved.DepartmentID).ToNot(BeNil())
			Expect(*moved.DepartmentID).To(Equal("d1"))
			Expect(users.updateCalls).To(Equal(1))
			Expect(repo.updateCalls).To(BeZero())
		})

		It("nulls the user's department reference on removal", func() {
			departmentID := "d1"
			users.users["u1"] = &user.User{ID: "u1", Name: "Ada", SiteID: "s1", DepartmentID: &departmentID}

			removed, err := service.RemoveUser(rootActor(), "u1")

			Expect(err).ToNot(HaveOccurred())
			Expect(removed.DepartmentID).To(BeNil())
		})
	})

	Describe("SetManager", func() {
		It("sets the manager when department and user exist", func() {
			seed("d1", "Eng")
			users.users["u1"] = &user.User{ID: "u1", Name: "Ada", SiteID: "s1"}

			result, err := service.SetManager(rootActor(), "d1", "u1")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ManagerUserID).ToNot(BeNil())
			Expect(*result.ManagerUserID).To(Equal("u1"))
		})

		It("returns the nil sentinel when the user is missing", func() {
			seed("d1", "Eng")

			result, err := service.SetManager(rootActor(), "d1", "missing")

			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(BeNil())
		})
	})

	Describe("AddPermission", func() {
		It("attaches the permission once", func() {
			seed("d1", "Eng")
			permissions.permissions["p1"] = &permission.Permission{ID: "p1", Key: accesscontrol.KeyReadUsers}

			result, err := service.AddPermission(rootActor(), "d1", "p1")
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Permissions).To(HaveLen(1))

			result, err = service.AddPermission(rootActor(), "d1", "p1")
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Permissions).To(HaveLen(1))
		})
	})

	Describe("DeleteDepartment", func() {
		It("is rejected while a user still references the department, without calling delete", func() {
			departmentID := "d1"
			seed("d1", "Eng")
			users.users["u1"] = &user.User{ID: "u1", Name: "Ada", SiteID: "s1", DepartmentID: &departmentID}

			result, err := service.DeleteDepartment(rootActor(), "d1")

			Expect(result).To(BeNil())
			Expect(err).To(MatchError(internal.ErrDepartmentHasUsers))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("Department has attached users"))
			Expect(repo.deleteCalls).To(BeZero())
		})

		It("deletes once no user references the department", func() {
			seed("d1", "Eng")

			result, err := service.DeleteDepartment(rootActor(), "d1")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ID).To(Equal("d1"))
			Expect(repo.deleteCalls).To(Equal(1))
		})
	})
})
