package handler

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/dukerupert/ulpack/internal/apperror"
	"github.com/dukerupert/ulpack/internal/model"
	"github.com/dukerupert/ulpack/internal/store"
	"github.com/dukerupert/ulpack/internal/websocket"
	"github.com/dukerupert/ulpack/internal/weight"
)

var pages = []string{"index.html", "list.html", "shared.html", "gear.html", "not_found.html"}

// ParseTemplates builds one template set per page so that every page can
// define its own "content" block. Each set also carries the shared partials.
func ParseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"weight": weight.Format,
	}
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(fsys,
			"templates/layout.html", "templates/partials/*.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		templates[page] = tmpl
	}
	return templates, nil
}

// formValues echoes submitted form input back into a re-rendered form.
type formValues struct {
	Title       string
	Description string
	Name        string
	Category    string
	Kind        string
	Weight      string
	Quantity    string
	Notes       string
}

var defaultItemForm = formValues{Kind: string(model.KindBase), Quantity: "1"}

type pageData struct {
	Title      string
	Error      string
	Message    string
	Form       formValues
	Lists      []model.PackingList
	Detail     *ListDetail
	Entries    []model.GearListEntry
	Categories []model.Category
	Kinds      []model.Kind
	ReadOnly   bool
}

type TemplateHandler struct {
	lists     *store.PackingListStore
	items     *store.GearItemStore
	hub       *websocket.Hub
	templates map[string]*template.Template
	logger    *slog.Logger
}

func NewTemplateHandler(ls *store.PackingListStore, gs *store.GearItemStore, hub *websocket.Hub, tmpl map[string]*template.Template, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{lists: ls, items: gs, hub: hub, templates: tmpl, logger: logger}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// inputErrorMessage flattens a validation error into one line for display.
func inputErrorMessage(err error) string {
	appErr := apperror.As(err)
	fields, _ := appErr.Details.(apperror.FieldErrors)
	if len(fields) == 0 {
		return "Input error: " + appErr.Message
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + fields[k]
	}
	return "Input error: " + strings.Join(parts, "; ")
}

func (h *TemplateHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, r, http.StatusOK, "", formValues{})
}

func (h *TemplateHandler) renderIndex(w http.ResponseWriter, r *http.Request, status int, errMsg string, form formValues) {
	lists, err := h.lists.List(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.render(w, status, "index.html", pageData{
		Title: "Packing lists",
		Error: errMsg,
		Form:  form,
		Lists: lists,
	})
}

func (h *TemplateHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	form := formValues{Title: r.FormValue("title"), Description: r.FormValue("description")}

	in := model.ListInput{Title: form.Title, Description: form.Description}.Normalize()
	if err := in.Validate(); err != nil {
		h.renderIndex(w, r, http.StatusBadRequest, apperror.As(err).Message, form)
		return
	}

	list, err := h.lists.Create(r.Context(), in)
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.broadcast(websocket.EntityPackingList, "created", list.ID, list.ID)
	http.Redirect(w, r, "/lists/"+list.ID, http.StatusSeeOther)
}

func (h *TemplateHandler) ShowList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, r.PathValue("id"), http.StatusOK, "", defaultItemForm)
}

func (h *TemplateHandler) renderList(w http.ResponseWriter, r *http.Request, listID string, status int, errMsg string, form formValues) {
	detail, err := loadDetailByID(r.Context(), h.lists, h.items, listID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	if detail == nil {
		h.notFound(w, "That packing list does not exist.")
		return
	}

	data := pageData{
		Title:      detail.Title,
		Error:      errMsg,
		Form:       form,
		Detail:     detail,
		Categories: model.Categories(),
		Kinds:      model.Kinds(),
	}
	if isHTMX(r) {
		h.renderPartial(w, status, "list.html", "items_section", data)
		return
	}
	h.render(w, status, "list.html", data)
}

func parseItemForm(r *http.Request) (formValues, model.GearItemInput, error) {
	form := formValues{
		Name:     r.FormValue("name"),
		Category: r.FormValue("category"),
		Kind:     r.FormValue("kind"),
		Weight:   strings.TrimSpace(r.FormValue("weight_grams")),
		Quantity: strings.TrimSpace(r.FormValue("quantity")),
		Notes:    r.FormValue("notes"),
	}

	fields := apperror.FieldErrors{}
	grams, err := strconv.Atoi(form.Weight)
	if err != nil {
		fields["weight_grams"] = "must be a whole number of grams"
	}
	qty := 1
	if form.Quantity != "" {
		if qty, err = strconv.Atoi(form.Quantity); err != nil {
			fields["quantity"] = "must be a whole number"
		}
	}

	in := model.GearItemInput{
		Name:        form.Name,
		Category:    form.Category,
		WeightGrams: grams,
		Quantity:    qty,
		Kind:        form.Kind,
		Notes:       form.Notes,
	}.Normalize()

	if err := in.Validate(); err != nil {
		if more, ok := apperror.As(err).Details.(apperror.FieldErrors); ok {
			for k, v := range more {
				if _, exists := fields[k]; !exists {
					fields[k] = v
				}
			}
		}
	}
	if len(fields) > 0 {
		return form, in, apperror.Validation("Invalid gear item", fields)
	}
	return form, in, nil
}

// afterItemChange answers an item mutation: HTMX requests get the refreshed
// items partial, plain form posts are redirected back to the list.
func (h *TemplateHandler) afterItemChange(w http.ResponseWriter, r *http.Request, listID string) {
	if isHTMX(r) {
		h.renderList(w, r, listID, http.StatusOK, "", defaultItemForm)
		return
	}
	http.Redirect(w, r, "/lists/"+listID, http.StatusSeeOther)
}

func (h *TemplateHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	form, in, err := parseItemForm(r)
	if err != nil {
		h.renderList(w, r, listID, http.StatusBadRequest, inputErrorMessage(err), form)
		return
	}

	item, err := h.items.Create(r.Context(), in.Item(listID))
	if err != nil {
		h.serverError(w, err)
		return
	}
	if item == nil {
		h.notFound(w, "That packing list does not exist.")
		return
	}
	h.broadcast(websocket.EntityGearItem, "created", item.ID, listID)
	h.afterItemChange(w, r, listID)
}

func (h *TemplateHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	listID, itemID := r.PathValue("id"), r.PathValue("item_id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	form, in, err := parseItemForm(r)
	if err != nil {
		h.renderList(w, r, listID, http.StatusBadRequest, inputErrorMessage(err), form)
		return
	}

	item, err := h.items.Update(r.Context(), listID, itemID, in.Item(listID))
	if err != nil {
		h.serverError(w, err)
		return
	}
	if item == nil {
		h.notFound(w, "That gear item does not exist.")
		return
	}
	h.broadcast(websocket.EntityGearItem, "updated", itemID, listID)
	h.afterItemChange(w, r, listID)
}

func (h *TemplateHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	listID, itemID := r.PathValue("id"), r.PathValue("item_id")
	ok, err := h.items.Delete(r.Context(), listID, itemID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	if !ok {
		h.notFound(w, "That gear item does not exist.")
		return
	}
	h.broadcast(websocket.EntityGearItem, "deleted", itemID, listID)
	h.afterItemChange(w, r, listID)
}

func (h *TemplateHandler) SetUnit(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	unit, ok := model.ParseUnit(r.FormValue("unit"))
	if !ok {
		h.renderList(w, r, listID, http.StatusBadRequest, "Input error: unit must be g or oz", defaultItemForm)
		return
	}
	h.mutateList(w, r, func(ctx context.Context) (*model.PackingList, error) {
		return h.lists.SetUnit(ctx, listID, unit)
	})
}

func (h *TemplateHandler) RegenerateShare(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("id")
	h.mutateList(w, r, func(ctx context.Context) (*model.PackingList, error) {
		return h.lists.RegenerateShareToken(ctx, listID)
	})
}

func (h *TemplateHandler) mutateList(w http.ResponseWriter, r *http.Request, mutate func(context.Context) (*model.PackingList, error)) {
	list, err := mutate(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	if list == nil {
		h.notFound(w, "That packing list does not exist.")
		return
	}
	h.broadcast(websocket.EntityPackingList, "updated", list.ID, list.ID)
	http.Redirect(w, r, "/lists/"+list.ID, http.StatusSeeOther)
}

func (h *TemplateHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("id")
	ok, err := h.lists.Delete(r.Context(), listID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	if !ok {
		h.notFound(w, "That packing list does not exist.")
		return
	}
	h.broadcast(websocket.EntityPackingList, "deleted", listID, listID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *TemplateHandler) Shared(w http.ResponseWriter, r *http.Request) {
	list, err := h.lists.GetShared(r.Context(), r.PathValue("token"))
	if err != nil {
		h.serverError(w, err)
		return
	}
	if list == nil {
		h.notFound(w, "This shared list does not exist or is no longer shared.")
		return
	}
	detail, err := loadDetail(r.Context(), h.items, list)
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.render(w, http.StatusOK, "shared.html", pageData{
		Title:    detail.Title,
		Detail:   detail,
		ReadOnly: true,
	})
}

func (h *TemplateHandler) Gear(w http.ResponseWriter, r *http.Request) {
	h.renderGear(w, r, http.StatusOK, "", defaultItemForm)
}

func (h *TemplateHandler) renderGear(w http.ResponseWriter, r *http.Request, status int, errMsg string, form formValues) {
	entries, err := h.items.ListAll(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.render(w, status, "gear.html", pageData{
		Title:      "All gear",
		Error:      errMsg,
		Form:       form,
		Entries:    entries,
		Categories: model.Categories(),
		Kinds:      model.Kinds(),
	})
}

func (h *TemplateHandler) CreateGear(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	form, in, err := parseItemForm(r)
	if err != nil {
		h.renderGear(w, r, http.StatusBadRequest, inputErrorMessage(err), form)
		return
	}

	inventory, err := h.lists.ResolveInventory(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	item, err := h.items.Create(r.Context(), in.Item(inventory.ID))
	if err != nil {
		h.serverError(w, err)
		return
	}
	if item != nil {
		h.broadcast(websocket.EntityGearItem, "created", item.ID, inventory.ID)
	}
	http.Redirect(w, r, "/gear", http.StatusSeeOther)
}

func (h *TemplateHandler) broadcast(entity, action, id, listID string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(entity, action, id, listID, nil))
	}
}

func (h *TemplateHandler) notFound(w http.ResponseWriter, message string) {
	h.render(w, http.StatusNotFound, "not_found.html", pageData{Title: "Not found", Message: message})
}

// serverError answers a store failure on an HTML route. Classified errors
// keep their API status, except validation which is a 400 for forms.
func (h *TemplateHandler) serverError(w http.ResponseWriter, err error) {
	appErr := apperror.As(err)
	status := apperror.Status(err)
	switch {
	case appErr.Code == apperror.CodeValidation:
		status = http.StatusBadRequest
	case status >= http.StatusInternalServerError:
		h.logger.Error("request failed", "error", err)
	}
	http.Error(w, appErr.Message, status)
}

func (h *TemplateHandler) render(w http.ResponseWriter, status int, page string, data pageData) {
	h.renderPartial(w, status, page, "layout.html", data)
}

// renderPartial executes one named template from a page's set. The status
// is already sent when execution starts, so render errors are only logged.
func (h *TemplateHandler) renderPartial(w http.ResponseWriter, status int, page, name string, data pageData) {
	tmpl, ok := h.templates[page]
	if !ok {
		h.logger.Error("template not found", "name", page)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template render", "template", name, "error", err)
	}
}
