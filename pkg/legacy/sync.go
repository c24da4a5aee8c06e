package legacy

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
	"p9e.in/gemstock/pkg/importer"
)

// Sync statuses.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// SyncResult reports a pull from the legacy backend.
type SyncResult struct {
	Status  string              `json:"status"`
	Fetched int                 `json:"fetched"`
	Created int                 `json:"created"`
	Skipped int                 `json:"skipped"`
	Failed  int                 `json:"failed"`
	Errors  []importer.RowError `json:"errors"`
	Message string              `json:"message,omitempty"`
}

// Sync fetches the records at paths, maps them and creates the ones whose
// code is not yet in store. Records without a code are always created.
func Sync[T any, P interface {
	*T
	crud.Coded
}](ctx context.Context, c *Client, paths []string, store crud.Store[T], normalize importer.Normalizer[T], log *zap.Logger) (SyncResult, error) {
	res := SyncResult{Status: StatusOK, Errors: []importer.RowError{}}

	rows, err := c.Fetch(ctx, paths...)
	if errors.Is(err, ErrUnavailable) {
		res.Status = StatusUnavailable
		res.Message = err.Error()
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Fetched = len(rows)

	existing, err := store.List(ctx, crud.Query{})
	if err != nil {
		return res, err
	}
	known := make(map[string]bool, len(existing))
	for i := range existing {
		known[P(&existing[i]).GetCode()] = true
	}

	today := models.NewDate(time.Now())
	for _, row := range rows {
		rec, err := normalize(row, today)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, importer.RowError{Row: row.Line, Error: err.Error()})
			continue
		}
		code := P(&rec).GetCode()
		if code != "" && known[code] {
			res.Skipped++
			continue
		}
		if err := store.Create(ctx, &rec); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, importer.RowError{Row: row.Line, Error: err.Error()})
			continue
		}
		known[P(&rec).GetCode()] = true
		res.Created++
	}
	log.Info("legacy sync finished",
		zap.Int("fetched", res.Fetched),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed))
	return res, nil
}
