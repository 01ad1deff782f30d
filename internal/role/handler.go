package role

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
	"github.com/valcriss/sovrane/pkg/logger"
)

type ServiceAPI interface {
	CreateRole(actor accesscontrol.Actor, dto RoleDTO) (*Role, error)
	GetRole(actor accesscontrol.Actor, id string) (*Role, error)
	ListRoles(actor accesscontrol.Actor, params pagination.Params) (pagination.Page[*Role], error)
	UpdateRole(actor accesscontrol.Actor, id string, dto RoleDTO) (*Role, error)
	DeleteRole(actor accesscontrol.Actor, id string) (*Role, error)
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
	_ = h.Events.Publish(r.Context(), events.NewEntityChangedEvent(r.Context(), events.KindRole, entityID, action))
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto RoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateRole(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.publish(r, created.ID, events.ActionCreated)
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	found, err := h.Service.GetRole(actor, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if found == nil {
		h.WriteNotFound(w, "role not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, err := h.Service.ListRoles(actor, transport.PaginationParams(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto RoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateRole(actor, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if updated == nil {
		h.WriteNotFound(w, "role not found")
		return
	}

	h.publish(r, updated.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	deleted, err := h.Service.DeleteRole(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if deleted == nil {
		h.WriteNotFound(w, "role not found")
		return
	}

	h.publish(r, id, events.ActionDeleted)
	w.WriteHeader(http.StatusNoContent)
}
