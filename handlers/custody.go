package handlers

import (
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
)

// MemoHandler runs the return/purchase decision on one memo direction.
type MemoHandler struct {
	Kind  string
	Store crud.Store[models.Memo]

	mu  sync.Mutex // serializes read-decide-write
	log *zap.Logger
	now func() time.Time
}

func NewMemoHandler(kind string, store crud.Store[models.Memo], log *zap.Logger) *MemoHandler {
	return &MemoHandler{Kind: kind, Store: store, log: log.Named("memo-" + kind), now: time.Now}
}

type decisionReq struct {
	Lines    []int  `json:"lines"`
	Decision string `json:"decision"`
}

// Decide answers POST /memo-<kind>/{id}/decision. Items already decided
// produce 409 and the memo is left unchanged.
func (h *MemoHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var req decisionReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	memo, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	// the stored record shares its items slice with the copy from Get
	memo.Items = slices.Clone(memo.Items)
	if err := memo.Decide(req.Lines, req.Decision, h.now()); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.Store.Update(r.Context(), id, memo); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.log.Info("memo decision recorded",
		zap.String("memo", memo.MemoNo),
		zap.String("decision", req.Decision),
		zap.Ints("lines", req.Lines),
		zap.String("status", memo.Status))
	writeJSON(w, http.StatusOK, memo)
}

// IgiHandler runs the lab receive step.
type IgiHandler struct {
	Store crud.Store[models.IgiIssue]

	mu  sync.Mutex
	log *zap.Logger
	now func() time.Time
}

func NewIgiHandler(store crud.Store[models.IgiIssue], log *zap.Logger) *IgiHandler {
	return &IgiHandler{Store: store, log: log.Named("igi"), now: time.Now}
}

type receiveReq struct {
	Items []models.IgiReceipt `json:"items"`
}

// Receive answers POST /igi-issues/{id}/receive.
func (h *IgiHandler) Receive(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var req receiveReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if len(req.Items) == 0 {
		writeError(w, h.log, invalidf("no items to receive"))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	issue, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	issue.Items = slices.Clone(issue.Items)
	if err := issue.Receive(req.Items, models.NewDate(h.now())); err != nil {
		if !isDomainError(err) {
			err = invalidf("%v", err)
		}
		writeError(w, h.log, err)
		return
	}
	if err := h.Store.Update(r.Context(), id, issue); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.log.Info("igi items received",
		zap.String("issue", issue.IssueNo),
		zap.Int("received", len(req.Items)),
		zap.String("status", issue.Status))
	writeJSON(w, http.StatusOK, issue)
}

// PendingItem is an issued stone still at the lab.
type PendingItem struct {
	IssueID   uint           `json:"issueId"`
	IssueNo   string         `json:"issueNo"`
	Lab       string         `json:"lab"`
	IssueDate models.Date    `json:"issueDate"`
	Item      models.IgiItem `json:"item"`
}

// PendingItems answers GET /igi-issues/pending-items.
func (h *IgiHandler) PendingItems(w http.ResponseWriter, r *http.Request) {
	issues, err := h.Store.List(r.Context(), crud.Query{})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	out := []PendingItem{}
	for _, g := range issues {
		for _, it := range g.Items {
			if it.Status == models.StatusCompleted {
				continue
			}
			out = append(out, PendingItem{IssueID: g.ID, IssueNo: g.IssueNo, Lab: g.Lab, IssueDate: g.IssueDate, Item: it})
		}
	}
	writeJSON(w, http.StatusOK, listResponse{Total: len(out), Data: out})
}

func isDomainError(err error) bool {
	return errors.Is(err, models.ErrAlreadyProcessed) || errors.Is(err, models.ErrItemNotFound)
}
