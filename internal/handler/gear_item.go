package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/ulpack/internal/apperror"
	"github.com/dukerupert/ulpack/internal/model"
	"github.com/dukerupert/ulpack/internal/store"
	"github.com/dukerupert/ulpack/internal/websocket"
)

type GearItemHandler struct {
	lists  *store.PackingListStore
	items  *store.GearItemStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewGearItemHandler(ls *store.PackingListStore, gs *store.GearItemStore, hub *websocket.Hub, logger *slog.Logger) *GearItemHandler {
	return &GearItemHandler{lists: ls, items: gs, hub: hub, logger: logger}
}

func (h *GearItemHandler) broadcast(action, id, listID string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(websocket.EntityGearItem, action, id, listID, nil))
	}
}

var errItemNotFound = apperror.NotFound("Gear item not found")

// itemRequest is the JSON body for creating or replacing an item. Quantity
// is a pointer so that an omitted value defaults to 1 while an explicit 0
// is rejected.
type itemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	WeightGrams int    `json:"weight_grams"`
	Quantity    *int   `json:"quantity"`
	Kind        string `json:"kind"`
	Notes       string `json:"notes"`
}

func (req itemRequest) input() model.GearItemInput {
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	return model.GearItemInput{
		Name:        req.Name,
		Category:    req.Category,
		WeightGrams: req.WeightGrams,
		Quantity:    qty,
		Kind:        req.Kind,
		Notes:       req.Notes,
	}
}

func decodeItem(r *http.Request) (model.GearItemInput, error) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		return model.GearItemInput{}, err
	}
	in := req.input().Normalize()
	if err := in.Validate(); err != nil {
		return model.GearItemInput{}, err
	}
	return in, nil
}

func (h *GearItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("id")
	in, err := decodeItem(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.items.Create(r.Context(), in.Item(listID))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if item == nil {
		writeError(w, h.logger, errListNotFound)
		return
	}
	h.broadcast("created", item.ID, listID)
	h.respondDetail(w, r, listID, http.StatusCreated)
}

func (h *GearItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	listID, itemID := r.PathValue("id"), r.PathValue("item_id")
	in, err := decodeItem(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.items.Update(r.Context(), listID, itemID, in.Item(listID))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if item == nil {
		writeError(w, h.logger, errItemNotFound)
		return
	}
	h.broadcast("updated", itemID, listID)
	h.respondDetail(w, r, listID, http.StatusOK)
}

func (h *GearItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	listID, itemID := r.PathValue("id"), r.PathValue("item_id")
	ok, err := h.items.Delete(r.Context(), listID, itemID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !ok {
		writeError(w, h.logger, errItemNotFound)
		return
	}
	h.broadcast("deleted", itemID, listID)
	h.respondDetail(w, r, listID, http.StatusOK)
}

type reorderRequest struct {
	ItemIDs []string `json:"item_ids"`
}

func (h *GearItemHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("id")
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	seen := make(map[string]bool, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		if seen[id] {
			writeError(w, h.logger, apperror.Validation("Invalid order", apperror.FieldErrors{"item_ids": "must not contain duplicates"}))
			return
		}
		seen[id] = true
	}

	ok, err := h.items.Reorder(r.Context(), listID, req.ItemIDs)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !ok {
		writeError(w, h.logger, apperror.NotFound("Packing list or gear item not found"))
		return
	}
	h.broadcast("reordered", "", listID)
	h.respondDetail(w, r, listID, http.StatusOK)
}

// ListAll is the cross-list gear feed.
func (h *GearItemHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	entries, err := h.items.ListAll(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, entries)
}

// CreateInventory registers an item without a chosen list by appending it
// to the gear inventory list.
func (h *GearItemHandler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	in, err := decodeItem(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	inventory, err := h.lists.ResolveInventory(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	item, err := h.items.Create(r.Context(), in.Item(inventory.ID))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if item == nil {
		writeError(w, h.logger, errListNotFound)
		return
	}
	h.broadcast("created", item.ID, inventory.ID)
	writeData(w, http.StatusCreated, model.GearListEntry{GearItem: *item, ListTitle: inventory.Title})
}

func (h *GearItemHandler) respondDetail(w http.ResponseWriter, r *http.Request, listID string, status int) {
	detail, err := loadDetailByID(r.Context(), h.lists, h.items, listID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if detail == nil {
		writeError(w, h.logger, errListNotFound)
		return
	}
	writeData(w, status, detail)
}
