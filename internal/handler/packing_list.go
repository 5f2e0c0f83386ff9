package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/ulpack/internal/apperror"
	"github.com/dukerupert/ulpack/internal/model"
	"github.com/dukerupert/ulpack/internal/store"
	"github.com/dukerupert/ulpack/internal/websocket"
)

type PackingListHandler struct {
	lists  *store.PackingListStore
	items  *store.GearItemStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewPackingListHandler(ls *store.PackingListStore, gs *store.GearItemStore, hub *websocket.Hub, logger *slog.Logger) *PackingListHandler {
	return &PackingListHandler{lists: ls, items: gs, hub: hub, logger: logger}
}

func (h *PackingListHandler) broadcast(action, listID string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(websocket.EntityPackingList, action, listID, listID, nil))
	}
}

var errListNotFound = apperror.NotFound("Packing list not found")

func (h *PackingListHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, lists)
}

func (h *PackingListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ListInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	list, err := h.lists.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("packing list created", "list_id", list.ID)
	h.broadcast("created", list.ID)

	writeData(w, http.StatusCreated, ListDetail{PackingList: *list, Items: []model.GearItem{}})
}

func (h *PackingListHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := loadDetailByID(r.Context(), h.lists, h.items, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if detail == nil {
		writeError(w, h.logger, errListNotFound)
		return
	}
	writeData(w, http.StatusOK, detail)
}

func (h *PackingListHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in model.ListInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	list, err := h.lists.Update(r.Context(), r.PathValue("id"), in)
	h.respondDetail(w, r, list, err, "updated")
}

func (h *PackingListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ok, err := h.lists.Delete(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !ok {
		writeError(w, h.logger, errListNotFound)
		return
	}
	h.logger.Info("packing list deleted", "list_id", id)
	h.broadcast("deleted", id)
	writeData(w, http.StatusOK, map[string]string{"id": id})
}

type unitRequest struct {
	Unit string `json:"unit"`
}

func (h *PackingListHandler) SetUnit(w http.ResponseWriter, r *http.Request) {
	var req unitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	unit, ok := model.ParseUnit(req.Unit)
	if !ok {
		writeError(w, h.logger, apperror.Validation("Invalid unit", apperror.FieldErrors{"unit": "must be g or oz"}))
		return
	}

	list, err := h.lists.SetUnit(r.Context(), r.PathValue("id"), unit)
	h.respondDetail(w, r, list, err, "updated")
}

type shareRequest struct {
	IsShared *bool `json:"is_shared"`
}

func (h *PackingListHandler) SetShared(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.IsShared == nil {
		writeError(w, h.logger, apperror.Validation("Invalid share setting", apperror.FieldErrors{"is_shared": "required"}))
		return
	}

	list, err := h.lists.SetShared(r.Context(), r.PathValue("id"), *req.IsShared)
	h.respondDetail(w, r, list, err, "updated")
}

func (h *PackingListHandler) RegenerateShare(w http.ResponseWriter, r *http.Request) {
	list, err := h.lists.RegenerateShareToken(r.Context(), r.PathValue("id"))
	if list != nil {
		h.logger.Info("share token regenerated", "list_id", list.ID)
	}
	h.respondDetail(w, r, list, err, "share_regenerated")
}

// Shared serves the public view behind a share token.
func (h *PackingListHandler) Shared(w http.ResponseWriter, r *http.Request) {
	list, err := h.lists.GetShared(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if list == nil {
		writeError(w, h.logger, apperror.NotFound("Shared list not found"))
		return
	}
	detail, err := loadDetail(r.Context(), h.items, list)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, detail.Shared())
}

// respondDetail finishes a single-list mutation: nil list means not found,
// otherwise the fresh detail is returned and subscribers are notified.
func (h *PackingListHandler) respondDetail(w http.ResponseWriter, r *http.Request, list *model.PackingList, err error, action string) {
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if list == nil {
		writeError(w, h.logger, errListNotFound)
		return
	}
	detail, err := loadDetail(r.Context(), h.items, list)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.broadcast(action, list.ID)
	writeData(w, http.StatusOK, detail)
}
