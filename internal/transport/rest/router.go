package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/valcriss/sovrane/internal/auth"
	"github.com/valcriss/sovrane/internal/department"
	"github.com/valcriss/sovrane/internal/permission"
	"github.com/valcriss/sovrane/internal/role"
	"github.com/valcriss/sovrane/internal/site"
	"github.com/valcriss/sovrane/internal/transport/middleware"
	"github.com/valcriss/sovrane/internal/transport/swagger"
	"github.com/valcriss/sovrane/internal/user"
	"github.com/valcriss/sovrane/internal/usergroup"
)

// Handlers bundles the per-domain HTTP handlers so the wiring in cmd stays
// one call.
type Handlers struct {
	Auth        *auth.Handler
	User        *user.Handler
	Department  *department.Handler
	Site        *site.Handler
	Group       *usergroup.Handler
	Permission  *permission.Handler
	Role        *role.Handler
	OpenAPISpec http.Handler
}

// RegisterAllRoutes mounts the full API under /api/v1. Everything except
// auth, health and the OpenAPI document sits behind the auth middleware; the
// services enforce per-operation permissions themselves.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if h.OpenAPISpec != nil {
		router.Handle("/openapi.yml", h.OpenAPISpec)
		router.Handle("/swagger/*", swagger.UIHandler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
				pr.Route("/users", func(ur chi.Router) {
					ur.Post("/", h.User.CreateUser)
					ur.Get("/", h.User.ListUsers)
					ur.Get("/{id}", h.User.GetUser)
					ur.Put("/{id}", h.User.UpdateUser)
					ur.Patch("/{id}/status", h.User.ChangeStatus)
					ur.Delete("/{id}", h.User.DeleteUser)
				})
			}

			if h.Department != nil {
				pr.Route("/departments", func(dr chi.Router) {
					dr.Post("/", h.Department.CreateDepartment)
					dr.Get("/", h.Department.ListDepartments)
					dr.Get("/{id}", h.Department.GetDepartment)
					dr.Put("/{id}", h.Department.UpdateDepartment)
					dr.Delete("/{id}", h.Department.DeleteDepartment)

					dr.Get("/{id}/children", h.Department.GetDepartmentChildren)
					dr.Post("/{id}/children/{childID}", h.Department.AddChildDepartment)
					dr.Delete("/{id}/children/{childID}", h.Department.RemoveChildDepartment)

					dr.Put("/{id}/parent/{parentID}", h.Department.SetParentDepartment)
					dr.Delete("/{id}/parent", h.Department.RemoveParentDepartment)

					dr.Put("/{id}/manager/{userID}", h.Department.SetManager)
					dr.Delete("/{id}/manager", h.Department.RemoveManager)

					dr.Post("/{id}/permissions/{permissionID}", h.Department.AddPermission)
					dr.Delete("/{id}/permissions/{permissionID}", h.Department.RemovePermission)

					dr.Get("/{id}/users", h.Department.ListDepartmentUsers)
					dr.Post("/{id}/users/{userID}", h.Department.AddUser)
					dr.Delete("/{id}/users/{userID}", h.Department.RemoveUser)
				})
			}

			if h.Site != nil {
				pr.Route("/sites", func(sr chi.Router) {
					sr.Post("/", h.Site.CreateSite)
					sr.Get("/", h.Site.ListSites)
					sr.Get("/{id}", h.Site.GetSite)
					sr.Put("/{id}", h.Site.UpdateSite)
					sr.Delete("/{id}", h.Site.DeleteSite)
				})
			}

			if h.Group != nil {
				pr.Route("/groups", func(gr chi.Router) {
					gr.Post("/", h.Group.CreateGroup)
					gr.Get("/", h.Group.ListGroups)
					gr.Get("/{id}", h.Group.GetGroup)
					gr.Put("/{id}", h.Group.UpdateGroup)
					gr.Delete("/{id}", h.Group.DeleteGroup)

					gr.Get("/{id}/members", h.Group.ListMembers)
					gr.Post("/{id}/members/{userID}", h.Group.AddMember)
					gr.Delete("/{id}/members/{userID}", h.Group.RemoveMember)

					gr.Get("/{id}/responsibles", h.Group.ListResponsibles)
					gr.Post("/{id}/responsibles/{userID}", h.Group.AddResponsible)
					gr.Delete("/{id}/responsibles/{userID}", h.Group.RemoveResponsible)
				})
			}

			if h.Permission != nil {
				pr.Route("/permissions", func(pmr chi.Router) {
					pmr.Post("/", h.Permission.CreatePermission)
					pmr.Get("/", h.Permission.ListPermissions)
					pmr.Get("/key/{key}", h.Permission.GetPermissionByKey)
					pmr.Get("/{id}", h.Permission.GetPermission)
					pmr.Put("/{id}", h.Permission.UpdatePermission)
					pmr.Delete("/{id}", h.Permission.DeletePermission)
				})
			}

			if h.Role != nil {
				pr.Route("/roles", func(rr chi.Router) {
					rr.Post("/", h.Role.CreateRole)
					rr.Get("/", h.Role.ListRoles)
					rr.Get("/{id}", h.Role.GetRole)
					rr.Put("/{id}", h.Role.UpdateRole)
					rr.Delete("/{id}", h.Role.DeleteRole)
				})
			}
		})
	})
}
