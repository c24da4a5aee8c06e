package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
)

// listResponse is the envelope of every collection endpoint.
type listResponse struct {
	Total int `json:"total"`
	Data  any `json:"data"`
}

// badRequest marks an error caused by the request content.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func invalidf(format string, args ...any) error {
	return badRequest{msg: fmt.Sprintf(format, args...)}
}

// conflict marks a request that clashes with stored state.
type conflict struct{ msg string }

func (e conflict) Error() string { return e.msg }

func conflictf(format string, args ...any) error {
	return conflict{msg: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps store and domain errors onto status codes. Unexpected
// errors are logged and answered with 500.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		br badRequest
		cf conflict
	)
	switch {
	case errors.Is(err, crud.ErrNotFound):
		httpError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, models.ErrAlreadyProcessed), errors.As(err, &cf):
		httpError(w, http.StatusConflict, err.Error())
	case errors.Is(err, crud.ErrInvalid),
		errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrInvalidDecision),
		errors.As(err, &br):
		httpError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error("request failed", zap.Error(err))
		httpError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalidf("invalid JSON: %v", err)
	}
	return nil
}

func parseID(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, invalidf("invalid id %q", raw)
	}
	return uint(id), nil
}

// parseQuery reads ?q=&from=&to= into a store query.
func parseQuery(r *http.Request) (crud.Query, error) {
	v := r.URL.Query()
	q := crud.Query{Search: strings.TrimSpace(v.Get("q"))}
	if q.Search == "" {
		q.Search = strings.TrimSpace(v.Get("search"))
	}
	for _, p := range []struct {
		key string
		dst *time.Time
	}{{"from", &q.From}, {"to", &q.To}} {
		raw := v.Get(p.key)
		if raw == "" {
			continue
		}
		d, err := models.ParseDate(raw)
		if err != nil {
			return q, invalidf("invalid %s date %q, expected YYYY-MM-DD", p.key, raw)
		}
		*p.dst = d.Time()
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return q, invalidf("to date is before from date")
	}
	return q, nil
}
