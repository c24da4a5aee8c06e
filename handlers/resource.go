package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"go.uber.org/zap"

	"p9e.in/gemstock/pkg/crud"
	"p9e.in/gemstock/pkg/reporting"
)

// Resource serves the CRUD screens of one record type: list with search and
// date range, create, get, update, delete, batch create, print and export.
type Resource[T any] struct {
	Name  string // URL segment, e.g. "certified-stock"
	Title string // heading on prints and exports
	Store crud.Store[T]

	// Prepare normalizes and validates a record before it is saved.
	Prepare func(*T) error
	// Defaults seeds the record before the request body is decoded over it,
	// so fields absent from the body keep these values. stored is nil on
	// create.
	Defaults func(stored, item *T)
	// Merge carries server-owned state from the stored record into an update.
	Merge func(stored, item *T)
	// BeforeDelete may refuse a delete, e.g. a role still in use.
	BeforeDelete func(ctx context.Context, id uint) error

	log *zap.Logger
	now func() time.Time
}

func NewResource[T any](name, title string, store crud.Store[T], log *zap.Logger) *Resource[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resource[T]{
		Name:  name,
		Title: title,
		Store: store,
		log:   log.With(zap.String("resource", name)),
		now:   time.Now,
	}
}

func (h *Resource[T]) prepare(item *T) error {
	if h.Prepare == nil {
		return nil
	}
	return h.Prepare(item)
}

// List answers GET /<res>?q=&from=&to=.
func (h *Resource[T]) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	items, err := h.Store.List(r.Context(), q)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Total: len(items), Data: items})
}

func (h *Resource[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	item, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Resource[T]) Create(w http.ResponseWriter, r *http.Request) {
	var item T
	if h.Defaults != nil {
		h.Defaults(nil, &item)
	}
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, h.log, err)
		return
	}
	clearID(&item)
	if err := h.prepare(&item); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.Store.Create(r.Context(), &item); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Update replaces every field but the id; an empty code keeps the stored one.
func (h *Resource[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var stored *T
	if h.Defaults != nil || h.Merge != nil {
		if stored, err = h.Store.Get(r.Context(), id); err != nil {
			writeError(w, h.log, err)
			return
		}
	}
	var item T
	if h.Defaults != nil {
		h.Defaults(stored, &item)
	}
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, h.log, err)
		return
	}
	if h.Merge != nil {
		h.Merge(stored, &item)
	}
	if err := h.prepare(&item); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.Store.Update(r.Context(), id, &item); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Resource[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if h.BeforeDelete != nil {
		if err := h.BeforeDelete(r.Context(), id); err != nil {
			writeError(w, h.log, err)
			return
		}
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type batchResult struct {
	Created int      `json:"created"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
	Data    any      `json:"data"`
}

// Batch creates each posted record independently; failures are reported
// per index and do not stop the rest.
func (h *Resource[T]) Batch(w http.ResponseWriter, r *http.Request) {
	var batch []json.RawMessage
	if err := decodeJSON(r, &batch); err != nil {
		writeError(w, h.log, err)
		return
	}
	res := batchResult{Errors: []string{}}
	created := make([]T, 0, len(batch))
	for i, raw := range batch {
		var item T
		if h.Defaults != nil {
			h.Defaults(nil, &item)
		}
		err := json.Unmarshal(raw, &item)
		if err == nil {
			clearID(&item)
			err = h.prepare(&item)
		}
		if err == nil {
			err = h.Store.Create(r.Context(), &item)
		}
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		res.Created++
		created = append(created, item)
	}
	res.Data = created
	h.log.Info("batch create", zap.Int("created", res.Created), zap.Int("failed", res.Failed))
	writeJSON(w, http.StatusOK, res)
}

// Export answers GET /<res>/export?format=csv|xlsx with the filtered listing.
func (h *Resource[T]) Export(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	items, err := h.Store.List(r.Context(), q)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "xlsx" {
		writeError(w, h.log, invalidf("unsupported export format %q", format))
		return
	}
	now := h.now()
	body, contentType, ext, err := reporting.Render(format, reporting.RecordsTable(h.Title, items), now)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeDownload(w, contentType, fmt.Sprintf("%s_%s.%s", reporting.SanitizeFilename(h.Name), now.Format("20060102_150405"), ext), body)
}

// Print answers GET /<res>/{id}/print with a printable HTML document.
func (h *Resource[T]) Print(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	item, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	body, err := printDocument(h.Title, *item, h.now())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func writeDownload(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// clearID drops a client supplied id; the store assigns it.
func clearID(item any) {
	if rec, ok := item.(crud.Identifiable); ok {
		rec.SetID(0)
	}
}

// itemsOf returns the nested Items slice of a custody record, or nil.
func itemsOf(record any) any {
	v := reflect.Indirect(reflect.ValueOf(record))
	if v.Kind() != reflect.Struct {
		return nil
	}
	f := v.FieldByName("Items")
	if !f.IsValid() || f.Kind() != reflect.Slice {
		return nil
	}
	return f.Interface()
}
