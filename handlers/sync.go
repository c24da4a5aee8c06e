package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"p9e.in/gemstock/pkg/crud"
	"p9e.in/gemstock/pkg/importer"
	"p9e.in/gemstock/pkg/legacy"
)

// LegacySync answers POST /sync/<ledger>. A nil client means no legacy
// backend is configured, which is reported the same way as one that is
// offline.
func LegacySync[T any, P interface {
	*T
	crud.Coded
}](client *legacy.Client, paths []string, store crud.Store[T], normalize importer.Normalizer[T], log *zap.Logger) http.HandlerFunc {
	log = log.Named("sync")
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			writeJSON(w, http.StatusOK, legacy.SyncResult{
				Status:  legacy.StatusUnavailable,
				Errors:  []importer.RowError{},
				Message: "legacy backend is not configured",
			})
			return
		}
		res, err := legacy.Sync[T, P](r.Context(), client, paths, store, normalize, log)
		if err != nil {
			writeError(w, log, err)
			return
		}
		log.Info("legacy sync",
			zap.Strings("paths", paths),
			zap.String("status", res.Status),
			zap.Int("fetched", res.Fetched),
			zap.Int("created", res.Created),
			zap.Int("skipped", res.Skipped))
		writeJSON(w, http.StatusOK, res)
	}
}
