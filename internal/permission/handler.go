package permission

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
	CreatePermission(actor accesscontrol.Actor, dto CreatePermissionDTO) (*Permission, error)
	GetPermission(actor accesscontrol.Actor, id string) (*Permission, error)
	GetPermissionByKey(actor accesscontrol.Actor, key string) (*Permission, error)
	ListPermissions(actor accesscontrol.Actor, params pagination.Params) (pagination.Page[*Permission], error)
	UpdatePermission(actor accesscontrol.Actor, id string, dto UpdatePermissionDTO) (*Permission, error)
	DeletePermission(actor accesscontrol.Actor, id string) (*Permission, error)
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
	_ = h.Events.Publish(r.Context(), events.NewEntityChangedEvent(r.Context(), events.KindPermission, entityID, action))
}

func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreatePermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreatePermission(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.publish(r, created.ID, events.ActionCreated)
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetPermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	found, err := h.Service.GetPermission(actor, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if found == nil {
		h.WriteNotFound(w, "permission not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) GetPermissionByKey(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	found, err := h.Service.GetPermissionByKey(actor, chi.URLParam(r, "key"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if found == nil {
		h.WriteNotFound(w, "permission not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, err := h.Service.ListPermissions(actor, transport.PaginationParams(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdatePermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdatePermission(actor, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if updated == nil {
		h.WriteNotFound(w, "permission not found")
		return
	}

	h.publish(r, updated.ID, events.ActionUpdated)
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	deleted, err := h.Service.DeletePermission(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if deleted == nil {
		h.WriteNotFound(w, "permission not found")
		return
	}

	h.publish(r, id, events.ActionDeleted)
	w.WriteHeader(http.StatusNoContent)
}
