package department

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/auth"
	"github.com/valcriss/sovrane/internal/core/events"
	"github.com/valcriss/sovrane/internal/pagination"
	"github.com/valcriss/sovrane/internal/transport"
	"github.com/valcriss/sovrane/internal/user"
	"github.com/valcriss/sovrane/pkg/logger"
)

type ServiceAPI interface {
	CreateDepartment(actor accesscontrol.Actor, dto CreateDepartmentDTO) (*Department, error)
	GetDepartment(actor accesscontrol.Actor, id string) (*Department, error)
	ListDepartments(actor accesscontrol.Actor, params pagination.Params) (pagination.Page[*Department], error)
	GetDepartmentChildren(actor accesscontrol.Actor, parentID string, params pagination.Params) (pagination.Page[*Department], error)
	ListDepartmentUsers(actor accesscontrol.Actor, departmentID string, params pagination.Params) (pagination.Page[*user.User], error)
	UpdateDepartment(actor accesscontrol.Actor, id string, dto UpdateDepartmentDTO) (*Department, error)
	AddChildDepartment(actor accesscontrol.Actor, parentID, childID string) (*Department, error)
	RemoveChildDepartment(actor accesscontrol.Actor, childID string) (*Department, error)
	SetParentDepartment(actor accesscontrol.Actor, childID, parentID string) (*Department, error)
	RemoveParentDepartment(actor accesscontrol.Actor, childID string) (*Department, error)
	SetManager(actor accesscontrol.Actor, departmentID, userID string) (*Department, error)
	RemoveManager(actor accesscontrol.Actor, departmentID string) (*Department, error)
	AddPermission(actor accesscontrol.Actor, departmentID, permissionID string) (*Department, error)
	RemovePermission(actor accesscontrol.Actor, departmentID, permissionID string) (*Department, error)
	AddUser(actor accesscontrol.Actor, departmentID, userID string) (*user.User, error)
	RemoveUser(actor accesscontrol.Actor, userID string) (*user.User, error)
	DeleteDepartment(actor accesscontrol.Actor, id string) (*Department, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Events  *events.EventBus
}

func NewHandler(service ServiceAPI, bus *events.EventBus) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Events:      bus,
	}
}

func (h *Handler) publish(r *http.Request, kind, entityID, action string) {
	if h.Events == nil {
		return
	}
	_ = h.Events.Publish(r.Context(), events.NewEntityChangedEvent(r.Context(), kind, entityID, action))
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateDepartment(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.publish(r, events.KindDepartment, created.ID, events.ActionCreated)
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	found, err := h.Service.GetDepartment(actor, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if found == nil {
		h.WriteNotFound(w, "department not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, err := h.Service.ListDepartments(actor, transport.PaginationParams(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) GetDepartmentChildren(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, err := h.Service.GetDepartmentChildren(actor, chi.URLParam(r, "id"), transport.PaginationParams(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) ListDepartmentUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, err := h.Service.ListDepartmentUsers(actor, chi.URLParam(r, "id"), transport.PaginationParams(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateDepartment(actor, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if updated == nil {
		h.WriteNotFound(w, "department not found")
		return
	}

	h.publish(r, events.KindDepartment, updated.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) AddChildDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	child, err := h.Service.AddChildDepartment(actor, chi.URLParam(r, "id"), chi.URLParam(r, "childID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if child == nil {
		h.WriteNotFound(w, "department not found")
		return
	}

	h.publish(r, events.KindDepartment, child.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, child)
}

func (h *Handler) RemoveChildDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	child, err := h.Service.RemoveChildDepartment(actor, chi.URLParam(r, "childID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if child == nil {
		h.WriteNotFound(w, "department not found")
		return
	}

	h.publish(r, events.KindDepartment, child.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, child)
}

func (h *Handler) SetParentDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	child, err := h.Service.SetParentDepartment(actor, chi.URLParam(r, "id"), chi.URLParam(r, "parentID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if child == nil {
		h.WriteNotFound(w, "department not found")
		return
	}

	h.publish(r, events.KindDepartment, child.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, child)
}

func (h *Handler) RemoveParentDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	child, err := h.Service.RemoveParentDepartment(actor, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if child == nil {
		h.WriteNotFound(w, "department not found")
		return
	}

	h.publish(r, events.KindDepartment, child.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, child)
}

func (h *Handler) SetManager(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	updated, err := h.Service.SetManager(actor, chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if updated == nil {
		h.WriteNotFound(w, "department not found")
		return
	}

	h.publish(r, events.KindDepartment, updated.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) RemoveManager(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	updated, err := h.Service.RemoveManager(actor, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if updated == nil {
		h.WriteNotFound(w, "department not found")
		return
	}

	h.publish(r, events.KindDepartment, updated.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) AddPermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	updated, err := h.Service.AddPermission(actor, chi.URLParam(r, "id"), chi.URLParam(r, "permissionID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if updated == nil {
		h.WriteNotFound(w, "department not found")
		return
	}

	h.publish(r, events.KindDepartment, updated.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) RemovePermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	updated, err := h.Service.RemovePermission(actor, chi.URLParam(r, "id"), chi.URLParam(r, "permissionID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if updated == nil {
		h.WriteNotFound(w, "department not found")
		return
	}

	h.publish(r, events.KindDepartment, updated.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	moved, err := h.Service.AddUser(actor, chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if moved == nil {
		h.WriteNotFound(w, "department or user not found")
		return
	}

	h.publish(r, events.KindUser, moved.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, moved)
}

func (h *Handler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	moved, err := h.Service.RemoveUser(actor, chi.URLParam(r, "userID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if moved == nil {
		h.WriteNotFound(w, "user not found")
		return
	}

	h.publish(r, events.KindUser, moved.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, moved)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	deleted, err := h.Service.DeleteDepartment(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if deleted == nil {
		h.WriteNotFound(w, "department not found")
		return
	}

	h.publish(r, events.KindDepartment, id, events.ActionDeleted)
	w.WriteHeader(http.StatusNoContent)
}
