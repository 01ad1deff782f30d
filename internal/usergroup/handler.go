package usergroup

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
	CreateGroup(actor accesscontrol.Actor, dto GroupDTO) (*UserGroup, error)
	GetGroup(actor accesscontrol.Actor, id string) (*UserGroup, error)
	ListGroups(actor accesscontrol.Actor, params pagination.Params) (pagination.Page[*UserGroup], error)
	UpdateGroup(actor accesscontrol.Actor, id string, dto GroupDTO) (*UserGroup, error)
	DeleteGroup(actor accesscontrol.Actor, id string) (*UserGroup, error)
	AddMember(actor accesscontrol.Actor, groupID, userID string) (*UserGroup, error)
	RemoveMember(actor accesscontrol.Actor, groupID, userID string) (*UserGroup, error)
	AddResponsible(actor accesscontrol.Actor, groupID, userID string) (*UserGroup, error)
	RemoveResponsible(actor accesscontrol.Actor, groupID, userID string) (*UserGroup, error)
	ListMembers(actor accesscontrol.Actor, groupID string, params pagination.Params) (pagination.Page[*user.User], error)
	ListResponsibles(actor accesscontrol.Actor, groupID string, params pagination.Params) (pagination.Page[*user.User], error)
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

func (h *Handler) publish(r *http.Request, entityID, action string) {
	if h.Events == nil {
		return
	}
	_ = h.Events.Publish(r.Context(), events.NewEntityChangedEvent(r.Context(), events.KindUserGroup, entityID, action))
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto GroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateGroup(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.publish(r, created.ID, events.ActionCreated)
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	found, err := h.Service.GetGroup(actor, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if found == nil {
		h.WriteNotFound(w, "group not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, err := h.Service.ListGroups(actor, transport.PaginationParams(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto GroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateGroup(actor, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if updated == nil {
		h.WriteNotFound(w, "group not found")
		return
	}

	h.publish(r, updated.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	deleted, err := h.Service.DeleteGroup(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if deleted == nil {
		h.WriteNotFound(w, "group not found")
		return
	}

	h.publish(r, id, events.ActionDeleted)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) membershipOp(w http.ResponseWriter, r *http.Request, op func(actor accesscontrol.Actor, groupID, userID string) (*UserGroup, error)) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	group, err := op(actor, chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if group == nil {
		h.WriteNotFound(w, "group or user not found")
		return
	}

	h.publish(r, group.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, group)
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	h.membershipOp(w, r, h.Service.AddMember)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	h.membershipOp(w, r, h.Service.RemoveMember)
}

func (h *Handler) AddResponsible(w http.ResponseWriter, r *http.Request) {
	h.membershipOp(w, r, h.Service.AddResponsible)
}

func (h *Handler) RemoveResponsible(w http.ResponseWriter, r *http.Request) {
	h.membershipOp(w, r, h.Service.RemoveResponsible)
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, err := h.Service.ListMembers(actor, chi.URLParam(r, "id"), transport.PaginationParams(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) ListResponsibles(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, err := h.Service.ListResponsibles(actor, chi.URLParam(r, "id"), transport.PaginationParams(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}
