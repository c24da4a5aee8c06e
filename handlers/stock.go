package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
	"p9e.in/gemstock/pkg/reporting"
)

// StockSummary answers GET /<stock-res>/summary with totals over the
// filtered listing.
func StockSummary[T any, P interface {
	*T
	models.StockItem
}](store crud.Store[T], log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseQuery(r)
		if err != nil {
			writeError(w, log, err)
			return
		}
		items, err := store.List(r.Context(), q)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, reporting.SummarizeStock[T, P](items))
	}
}
