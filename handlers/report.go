package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"p9e.in/gemstock/config"
	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/archive"
	"p9e.in/gemstock/pkg/crud"
	"p9e.in/gemstock/pkg/reporting"
)

const defaultSnapshotLimit = 30

// ReportHandler serves the period report, its exports, the dashboard and
// the snapshot archive.
type ReportHandler struct {
	stores  *config.Stores
	archive archive.Repository // nil when the archive is disabled
	log     *zap.Logger
	now     func() time.Time
}

func NewReportHandler(stores *config.Stores, repo archive.Repository, log *zap.Logger) *ReportHandler {
	return &ReportHandler{stores: stores, archive: repo, log: log.Named("reports"), now: time.Now}
}

// Build loads the three ledgers for [from, to] and aggregates them. Zero
// bounds are open. Bounds are calendar days in the caller's location.
func (h *ReportHandler) Build(ctx context.Context, from, to time.Time) (reporting.Summary, error) {
	q := crud.Query{From: calendarDay(from), To: calendarDay(to)}
	var (
		l   reporting.Ledgers
		err error
	)
	if l.Sales, err = h.stores.Sales.List(ctx, q); err != nil {
		return reporting.Summary{}, fmt.Errorf("load sales: %w", err)
	}
	if l.Purchases, err = h.stores.Purchases.List(ctx, q); err != nil {
		return reporting.Summary{}, fmt.Errorf("load purchases: %w", err)
	}
	if l.Expenses, err = h.stores.Expenses.List(ctx, q); err != nil {
		return reporting.Summary{}, fmt.Errorf("load expenses: %w", err)
	}
	return reporting.Build(l, q.From, q.To, h.now()), nil
}

// calendarDay moves t to midnight UTC of its local date, the form record
// dates are stored in.
func calendarDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return models.NewDate(t).Time()
}

// Summary answers GET /reports/summary?from=&to=.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	s, err := h.Build(r.Context(), q.From, q.To)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Export answers GET /reports/export?format=csv|xlsx|html&from=&to=. The
// html format is the printable report.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	s, err := h.Build(r.Context(), q.From, q.To)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "xlsx" && format != "html" {
		writeError(w, h.log, invalidf("unsupported export format %q", format))
		return
	}
	now := h.now()
	body, contentType, ext, err := reporting.Render(format, reporting.SummaryTable("Business Report", s), now)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if ext == "html" {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}
	writeDownload(w, contentType, fmt.Sprintf("report_%s.%s", now.Format("20060102_150405"), ext), body)
}

// Dashboard is the landing page payload.
type Dashboard struct {
	LooseStock     models.StockSummary `json:"looseStock"`
	CertifiedStock models.StockSummary `json:"certifiedStock"`
	JewelleryStock models.StockSummary `json:"jewelleryStock"`
	Month          reporting.Totals    `json:"month"`
	PendingMemos   int                 `json:"pendingMemos"`
	PendingIgi     int                 `json:"pendingIgi"`
}

// Dashboard answers GET /dashboard.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *ReportHandler) dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	all := crud.Query{}

	loose, err := h.stores.LooseStock.List(ctx, all)
	if err != nil {
		return d, err
	}
	d.LooseStock = reporting.SummarizeStock(loose)

	certified, err := h.stores.CertifiedStock.List(ctx, all)
	if err != nil {
		return d, err
	}
	d.CertifiedStock = reporting.SummarizeStock(certified)

	jewellery, err := h.stores.JewelleryStock.List(ctx, all)
	if err != nil {
		return d, err
	}
	d.JewelleryStock = reporting.SummarizeStock(jewellery)

	now := h.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	s, err := h.Build(ctx, monthStart, now)
	if err != nil {
		return d, err
	}
	d.Month = s.Totals

	for _, store := range []crud.Store[models.Memo]{h.stores.MemoGive, h.stores.MemoTake} {
		memos, err := store.List(ctx, all)
		if err != nil {
			return d, err
		}
		for i := range memos {
			if memos[i].PendingItems() > 0 {
				d.PendingMemos++
			}
		}
	}
	issues, err := h.stores.IgiIssues.List(ctx, all)
	if err != nil {
		return d, err
	}
	for i := range issues {
		d.PendingIgi += issues[i].PendingItems()
	}
	return d, nil
}

// Snapshots answers GET /reports/snapshots?limit=. Without an archive the
// list is empty.
func (h *ReportHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultSnapshotLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			writeError(w, h.log, invalidf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	snaps := []archive.Snapshot{}
	if h.archive != nil {
		got, err := h.archive.RecentSnapshots(r.Context(), limit)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		snaps = append(snaps, got...)
	}
	writeJSON(w, http.StatusOK, listResponse{Total: len(snaps), Data: snaps})
}
