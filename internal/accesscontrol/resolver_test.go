package accesscontrol_test

import (
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/valcriss/sovrane/internal"
	"github.com/valcriss/sovrane/internal/accesscontrol"
)

type testActor struct {
	id          string
	assignments []accesscontrol.Assignment
	roles       []accesscontrol.Role
}

func (a *testActor) ActorID() string { return a.id }

func (a *testActor) DirectAssignments() []accesscontrol.Assignment { return a.assignments }

func (a *testActor) GrantedRoles() []accesscontrol.Role { return a.roles }

var _ = Describe("Resolver", func() {
	var resolver *accesscontrol.Resolver

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		resolver = accesscontrol.NewResolver(logger)
	})

	Describe("Has", func() {
		Context("with direct assignments", func() {
			It("allows any key when the actor holds a direct root grant", func() {
				actor := &testActor{
					id: "u1",
					assignments: []accesscontrol.Assignment{
						{Key: accesscontrol.KeyRoot},
					},
				}

				Expect(resolver.Has(actor, accesscontrol.KeyCreateDepartment)).To(BeTrue())
				Expect(resolver.Has(actor, accesscontrol.KeyDeleteSite)).To(BeTrue())
			})

			It("allows an exactly matching direct grant", func() {
				actor := &testActor{
					id: "u1",
					assignments: []accesscontrol.Assignment{
						{Key: accesscontrol.KeyReadUsers},
					},
				}

				Expect(resolver.Has(actor, accesscontrol.KeyReadUsers)).To(BeTrue())
				Expect(resolver.Has(actor, accesscontrol.KeyCreateDepartment)).To(BeFalse())
			})

			It("ignores direct grants flagged deny", func() {
				actor := &testActor{
					id: "u1",
					assignments: []accesscontrol.Assignment{
						{Key: accesscontrol.KeyReadUsers, Deny: true},
					},
				}

				Expect(resolver.Has(actor, accesscontrol.KeyReadUsers)).To(BeFalse())
			})

			It("ignores a deny-flagged root entry", func() {
				actor := &testActor{
					id: "u1",
					assignments: []accesscontrol.Assignment{
						{Key: accesscontrol.KeyRoot, Deny: true},
					},
				}

				Expect(resolver.Has(actor, accesscontrol.KeyReadUsers)).To(BeFalse())
			})
		})

		Context("with role grants", func() {
			It("allows a key granted through a role", func() {
				actor := &testActor{
					id: "u1",
					roles: []accesscontrol.Role{
						{ID: "r1", Label: "reader", Assignments: []accesscontrol.Assignment{
							{Key: accesscontrol.KeyReadDepartments},
						}},
					},
				}

				Expect(resolver.Has(actor, accesscontrol.KeyReadDepartments)).To(BeTrue())
				Expect(resolver.Has(actor, accesscontrol.KeyDeleteDepartment)).To(BeFalse())
			})

			It("allows any key through a role holding root", func() {
				actor := &testActor{
					id: "u1",
					roles: []accesscontrol.Role{
						{ID: "r1", Label: "admin", Assignments: []accesscontrol.Assignment{
							{Key: accesscontrol.KeyRoot},
						}},
					},
				}

				Expect(resolver.Has(actor, accesscontrol.KeyDeleteSite)).To(BeTrue())
			})

			It("does not let a user-level deny suppress a role grant", func() {
				actor := &testActor{
					id: "u1",
					assignments: []accesscontrol.Assignment{
						{Key: accesscontrol.KeyReadUsers, Deny: true},
					},
					roles: []accesscontrol.Role{
						{ID: "r1", Label: "reader", Assignments: []accesscontrol.Assignment{
							{Key: accesscontrol.KeyReadUsers},
						}},
					},
				}

				Expect(resolver.Has(actor, accesscontrol.KeyReadUsers)).To(BeTrue())
			})
		})

		Context("with no matching grant", func() {
			It("denies", func() {
				actor := &testActor{id: "u1"}

				Expect(resolver.Has(actor, accesscontrol.KeyReadUsers)).To(BeFalse())
			})
		})
	})

	Describe("Check", func() {
		It("returns nil when the key is held", func() {
			actor := &testActor{
				id:          "u1",
				assignments: []accesscontrol.Assignment{{Key: accesscontrol.KeyReadSites}},
			}

			Expect(resolver.Check(actor, accesscontrol.KeyReadSites)).To(Succeed())
		})

		It("returns a generic forbidden error that does not name the key", func() {
			actor := &testActor{id: "u1"}

			err := resolver.Check(actor, accesscontrol.KeyDeleteSite)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
			Expect(appErr.Message).ToNot(ContainSubstring(string(accesscontrol.KeyDeleteSite)))
		})
	})
})
