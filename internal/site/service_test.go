package site_test

import (
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/valcriss/sovrane/internal"
	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/department"
	"github.com/valcriss/sovrane/internal/pagination"
	"github.com/valcriss/sovrane/internal/site"
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

// Mock site repository for testing
type mockSiteRepository struct {
	sites       map[string]*site.Site
	createError error
	deleteCalls int
	updateCalls int
}

func newMockSiteRepository() *mockSiteRepository {
	return &mockSiteRepository{sites: make(map[string]*site.Site)}
}

func (m *mockSiteRepository) GetByID(id string) (*site.Site, error) {
	return m.sites[id], nil
}

func (m *mockSiteRepository) GetByLabel(label string) (*site.Site, error) {
	for _, s := range m.sites {
		if s.Label == label {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockSiteRepository) GetAll() ([]*site.Site, error) {
	out := make([]*site.Site, 0, len(m.sites))
	for _, s := range m.sites {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSiteRepository) Create(s *site.Site) error {
	if m.createError != nil {
		return m.createError
	}
	m.sites[s.ID] = s
	return nil
}

func (m *mockSiteRepository) Update(s *site.Site) error {
	m.updateCalls++
	m.sites[s.ID] = s
	return nil
}

func (m *mockSiteRepository) Delete(id string) error {
	m.deleteCalls++
	delete(m.sites, id)
	return nil
}

type mockUserFinder struct {
	users map[string][]*user.User
}

func (m *mockUserFinder) GetBySiteID(siteID string) ([]*user.User, error) {
	return m.users[siteID], nil
}

type mockDepartmentFinder struct {
	departments map[string][]*department.Department
}

func (m *mockDepartmentFinder) GetBySiteID(siteID string) ([]*department.Department, error) {
	return m.departments[siteID], nil
}

var _ = Describe("Site Service", func() {
	var (
		repo    *mockSiteRepository
		users   *mockUserFinder
		deps    *mockDepartmentFinder
		service *site.Service
		actor   *testActor
	)

	BeforeEach(func() {
		repo = newMockSiteRepository()
		users = &mockUserFinder{users: make(map[string][]*user.User)}
		deps = &mockDepartmentFinder{departments: make(map[string][]*department.Department)}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = site.NewService(repo, users, deps, accesscontrol.NewResolver(logger), logger)
		actor = rootActor()
	})

	Describe("CreateSite", func() {
		It("should create a site with audit stamps", func() {
			created, err := service.CreateSite(actor, site.SiteDTO{Label: "Lyon"})

			Expect(err).ToNot(HaveOccurred())
			Expect(created.ID).ToNot(BeEmpty())
			Expect(created.Label).To(Equal("Lyon"))
			Expect(created.CreatedBy).To(Equal("actor-1"))
			Expect(created.UpdatedBy).To(Equal("actor-1"))
			Expect(repo.sites).To(HaveKey(created.ID))
		})

		It("should reject an empty label", func() {
			_, err := service.CreateSite(actor, site.SiteDTO{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(repo.sites).To(BeEmpty())
		})

		It("should reject an actor without the create permission", func() {
			reader := &testActor{
				id:          "actor-2",
				assignments: []accesscontrol.Assignment{{Key: accesscontrol.KeyReadSites}},
			}

			_, err := service.CreateSite(reader, site.SiteDTO{Label: "Lyon"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
			Expect(repo.sites).To(BeEmpty())
		})
	})

	Describe("UpdateSite", func() {
		It("should update the label and audit stamps", func() {
			repo.sites["site-1"] = &site.Site{ID: "site-1", Label: "Old", UpdatedBy: "someone"}

			updated, err := service.UpdateSite(actor, "site-1", site.SiteDTO{Label: "New"})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Label).To(Equal("New"))
			Expect(updated.UpdatedBy).To(Equal("actor-1"))
			Expect(repo.updateCalls).To(Equal(1))
		})

		It("should return nil for an unknown site", func() {
			updated, err := service.UpdateSite(actor, "missing", site.SiteDTO{Label: "New"})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated).To(BeNil())
			Expect(repo.updateCalls).To(BeZero())
		})
	})

	Describe("ListSites", func() {
		BeforeEach(func() {
			repo.sites["site-1"] = &site.Site{ID: "site-1", Label: "Paris"}
			repo.sites["site-2"] = &site.Site{ID: "site-2", Label: "Lyon"}
			repo.sites["site-3"] = &site.Site{ID: "site-3", Label: "Marseille"}
		})

		It("should page through all sites", func() {
			page, err := service.ListSites(actor, pagination.Params{Page: 1, Limit: 2})

			Expect(err).ToNot(HaveOccurred())
			Expect(page.Items).To(HaveLen(2))
			Expect(page.Total).To(Equal(3))
		})

		It("should filter by search term", func() {
			page, err := service.ListSites(actor, pagination.Params{Page: 1, Limit: 10, Search: "lyon"})

			Expect(err).ToNot(HaveOccurred())
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].Label).To(Equal("Lyon"))
		})
	})

	Describe("DeleteSite", func() {
		BeforeEach(func() {
			repo.sites["site-1"] = &site.Site{ID: "site-1", Label: "Paris"}
		})

		It("should refuse deletion while users reference the site", func() {
			users.users["site-1"] = []*user.User{{ID: "user-1", SiteID: "site-1"}}

			_, err := service.DeleteSite(actor, "site-1")

			Expect(err).To(Equal(internal.ErrSiteHasUsers))
			Expect(repo.deleteCalls).To(BeZero())
			Expect(repo.sites).To(HaveKey("site-1"))
		})

		It("should refuse deletion while departments reference the site", func() {
			deps.departments["site-1"] = []*department.Department{{ID: "dept-1", SiteID: "site-1"}}

			_, err := service.DeleteSite(actor, "site-1")

			Expect(err).To(Equal(internal.ErrSiteHasDepartments))
			Expect(repo.deleteCalls).To(BeZero())
		})

		It("should delete an unreferenced site", func() {
			deleted, err := service.DeleteSite(actor, "site-1")

			Expect(err).ToNot(HaveOccurred())
			Expect(deleted.ID).To(Equal("site-1"))
			Expect(repo.deleteCalls).To(Equal(1))
			Expect(repo.sites).ToNot(HaveKey("site-1"))
		})

		It("should return nil for an unknown site", func() {
			deleted, err := service.DeleteSite(actor, "missing")

			Expect(err).ToNot(HaveOccurred())
			Expect(deleted).To(BeNil())
			Expect(repo.deleteCalls).To(BeZero())
		})
	})
})
