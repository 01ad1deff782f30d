package user

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/valcriss/sovrane/internal/accesscontrol"
	"github.com/valcriss/sovrane/internal/core/events"
	"github.com/valcriss/sovrane/internal/pagination"
	"github.com/valcriss/sovrane/internal/transport"
	"github.com/valcriss/sovrane/pkg/logger"
)

type ServiceAPI interface {
	CreateUser(actor accesscontrol.Actor, dto CreateUserDTO) (*User, error)
	GetUser(actor accesscontrol.Actor, id string) (*User, error)
	ListUsers(actor accesscontrol.Actor, params pagination.Params) (pagination.Page[*User], error)
	UpdateUser(actor accesscontrol.Actor, id string, dto UpdateUserDTO) (*User, error)
	ChangeStatus(actor accesscontrol.Actor, id string, dto ChangeStatusDTO) (*User, error)
	DeleteUser(actor accesscontrol.Actor, id string) (*User, error)
}

// ActorProvider decouples the handler from the auth package so user does not
// import it back.
type ActorProvider func(r *http.Request) (*User, bool)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Events  *events.EventBus
	actor   ActorProvider
}

func NewHandler(service ServiceAPI, bus *events.EventBus, actor ActorProvider) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Events:      bus,
		actor:       actor,
	}
}

func (h *Handler) publish(r *http.Request, entityID, action string) {
	if h.Events == nil {
		return
	}
	_ = h.Events.Publish(r.Context(), events.NewEntityChangedEvent(r.Context(), events.KindUser, entityID, action))
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.WriteJSON(w, http.StatusOK, actor)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateUser(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.publish(r, created.ID, events.ActionCreated)
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	found, err := h.Service.GetUser(actor, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if found == nil {
		h.WriteNotFound(w, "user not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, err := h.Service.ListUsers(actor, transport.PaginationParams(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	updated, err := h.Service.UpdateUser(actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if updated == nil {
		h.WriteNotFound(w, "user not found")
		return
	}

	h.publish(r, updated.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ChangeStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	updated, err := h.Service.ChangeStatus(actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if updated == nil {
		h.WriteNotFound(w, "user not found")
		return
	}

	h.publish(r, updated.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	deleted, err := h.Service.DeleteUser(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if deleted == nil {
		h.WriteNotFound(w, "user not found")
		return
	}

	h.publish(r, id, events.ActionDeleted)
	w.WriteHeader(http.StatusNoContent)
}
