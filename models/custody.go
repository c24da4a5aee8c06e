package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrAlreadyProcessed = errors.New("item already processed")
	ErrInvalidDecision  = errors.New("decision must be Returned or Purchased")
)

// Memo directions.
const (
	MemoGive = "give" // goods lent to a third party
	MemoTake = "take" // goods borrowed from a third party
)

// Decisions recorded against memo items.
const (
	DecisionReturned  = "Returned"
	DecisionPurchased = "Purchased"
)

// Memo is a custody-transfer header: goods lent out to (give) or borrowed
// from (take) a party, pending a return or purchase decision per item.
type Memo struct {
	Record
	Kind      string     `gorm:"size:10;index;not null" json:"kind"`
	MemoNo    string     `gorm:"size:20;uniqueIndex;not null" json:"memoNo"`
	Party     string     `gorm:"size:100" json:"party"`
	IssueDate Date       `json:"issueDate"`
	DueDate   Date       `json:"dueDate"`
	Status    string     `gorm:"size:20;index" json:"status"`
	Remark    string     `json:"remark"`
	Items     []MemoItem `gorm:"foreignKey:MemoID;constraint:OnDelete:CASCADE" json:"items"`
}

// MemoItem is one line on a memo.
type MemoItem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	MemoID      uint       `gorm:"index" json:"memoId"`
	Line        int        `json:"line"`
	Description string     `json:"description"`
	Shape       string     `gorm:"size:30" json:"shape"`
	Pieces      Number     `json:"pieces"`
	Weight      Number     `json:"weight"`
	Rate        Number     `json:"rate"`
	Amount      Number     `json:"amount"`
	Status      string     `gorm:"size:20" json:"status"`
	Decision    string     `gorm:"size:20" json:"decision"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
}

func (m Memo) CodeTemplate() string {
	if m.Kind == MemoTake {
		return "MT-#####"
	}
	return "MG-#####"
}
func (m *Memo) GetCode() string       { return m.MemoNo }
func (m *Memo) SetCode(code string)   { m.MemoNo = code }
func (m *Memo) RecordDate() time.Time { return m.IssueDate.Time() }

// Normalize fills defaults on the header and its items and numbers the items.
func (m *Memo) Normalize() {
	if m.Status == "" {
		m.Status = StatusPending
	}
	next := 0
	for _, it := range m.Items {
		if it.Line > next {
			next = it.Line
		}
	}
	for i := range m.Items {
		it := &m.Items[i]
		if it.Line == 0 {
			next++
			it.Line = next
		}
		if it.Status == "" {
			it.Status = StatusPending
		}
		if it.Amount == 0 {
			it.Amount = it.Weight * it.Rate
		}
	}
	m.refreshStatus()
}

// PendingItems counts items still awaiting a decision.
func (m *Memo) PendingItems() int {
	n := 0
	for _, it := range m.Items {
		if it.Status != StatusCompleted {
			n++
		}
	}
	return n
}

func (m *Memo) refreshStatus() {
	if len(m.Items) > 0 {
		m.Status = rollUp(m.PendingItems())
	}
}

// KeepProcessed copies the decision state of lines already on stored into m.
// Lines new to m start pending.
func (m *Memo) KeepProcessed(stored *Memo) {
	byLine := make(map[int]MemoItem, len(stored.Items))
	for _, it := range stored.Items {
		byLine[it.Line] = it
	}
	for i := range m.Items {
		it := &m.Items[i]
		old, ok := byLine[it.Line]
		if it.Line == 0 || !ok {
			it.Status, it.Decision, it.DecidedAt = StatusPending, "", nil
			continue
		}
		it.Status, it.Decision, it.DecidedAt = old.Status, old.Decision, old.DecidedAt
	}
}

func rollUp(pending int) string {
	if pending == 0 {
		return StatusCompleted
	}
	return StatusPending
}

// Decide records decision on the given item lines, or on every pending item
// when lines is empty. Deciding an item twice fails with ErrAlreadyProcessed
// and leaves the memo unchanged.
func (m *Memo) Decide(lines []int, decision string, at time.Time) error {
	if decision != DecisionReturned && decision != DecisionPurchased {
		return ErrInvalidDecision
	}
	targets, err := m.resolveLines(lines)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("memo %s: %w", m.MemoNo, ErrAlreadyProcessed)
	}
	for _, i := range targets {
		it := &m.Items[i]
		it.Status = StatusCompleted
		it.Decision = decision
		ts := at
		it.DecidedAt = &ts
	}
	m.refreshStatus()
	return nil
}

func (m *Memo) resolveLines(lines []int) ([]int, error) {
	var idx []int
	if len(lines) == 0 {
		for i, it := range m.Items {
			if it.Status != StatusCompleted {
				idx = append(idx, i)
			}
		}
		return idx, nil
	}
	for _, line := range lines {
		found := false
		for i, it := range m.Items {
			if it.Line != line {
				continue
			}
			if it.Status == StatusCompleted {
				return nil, fmt.Errorf("memo %s line %d: %w", m.MemoNo, line, ErrAlreadyProcessed)
			}
			idx = append(idx, i)
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("memo %s line %d: %w", m.MemoNo, line, ErrItemNotFound)
		}
	}
	return idx, nil
}

// IgiIssue tracks a batch of items sent to the lab for certification.
type IgiIssue struct {
	Record
	IssueNo   string    `gorm:"size:20;uniqueIndex;not null" json:"issueNo"`
	Lab       string    `gorm:"size:20" json:"lab"`
	IssueDate Date      `json:"issueDate"`
	Status    string    `gorm:"size:20;index" json:"status"`
	Remark    string    `json:"remark"`
	Items     []IgiItem `gorm:"foreignKey:IssueID;constraint:OnDelete:CASCADE" json:"items"`
}

// IgiItem is one stone on an IGI issue.
type IgiItem struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	IssueID           uint   `gorm:"index" json:"issueId"`
	Line              int    `json:"line"`
	StockCode         string `gorm:"size:20" json:"stockCode"`
	Description       string `json:"description"`
	Shape             string `gorm:"size:30" json:"shape"`
	Pieces            Number `json:"pieces"`
	Weight            Number `json:"weight"`
	Rate              Number `json:"rate"`
	Amount            Number `json:"amount"`
	Status            string `gorm:"size:20" json:"status"`
	CertificateNumber string `gorm:"size:50" json:"certificateNumber"`
	ReceivedDate      Date   `json:"receivedDate"`
}

func (IgiIssue) CodeTemplate() string     { return "IGI-#####" }
func (g *IgiIssue) GetCode() string       { return g.IssueNo }
func (g *IgiIssue) SetCode(code string)   { g.IssueNo = code }
func (g *IgiIssue) RecordDate() time.Time { return g.IssueDate.Time() }

func (g *IgiIssue) Normalize() {
	if g.Lab == "" {
		g.Lab = "IGI"
	}
	if g.Status == "" {
		g.Status = StatusPending
	}
	next := 0
	for _, it := range g.Items {
		if it.Line > next {
			next = it.Line
		}
	}
	for i := range g.Items {
		it := &g.Items[i]
		if it.Line == 0 {
			next++
			it.Line = next
		}
		if it.Status == "" {
			it.Status = StatusPending
		}
		if it.Amount == 0 {
			it.Amount = it.Weight * it.Rate
		}
	}
	g.refreshStatus()
}

func (g *IgiIssue) PendingItems() int {
	n := 0
	for _, it := range g.Items {
		if it.Status != StatusCompleted {
			n++
		}
	}
	return n
}

func (g *IgiIssue) refreshStatus() {
	if len(g.Items) > 0 {
		g.Status = rollUp(g.PendingItems())
	}
}

// KeepReceived copies lab results of lines already on stored into g.
func (g *IgiIssue) KeepReceived(stored *IgiIssue) {
	byLine := make(map[int]IgiItem, len(stored.Items))
	for _, it := range stored.Items {
		byLine[it.Line] = it
	}
	for i := range g.Items {
		it := &g.Items[i]
		old, ok := byLine[it.Line]
		if it.Line == 0 || !ok {
			it.Status, it.CertificateNumber, it.ReceivedDate = StatusPending, "", Date{}
			continue
		}
		it.Status, it.CertificateNumber, it.ReceivedDate = old.Status, old.CertificateNumber, old.ReceivedDate
	}
}

// IgiReceipt is the certificate returned by the lab for one issued line.
type IgiReceipt struct {
	Line              int    `json:"line"`
	CertificateNumber string `json:"certificateNumber"`
	ReceivedDate      Date   `json:"receivedDate"`
}

// Receive marks lines as returned from the lab. All receipts are validated
// before any item changes.
func (g *IgiIssue) Receive(receipts []IgiReceipt, today Date) error {
	idx := make([]int, len(receipts))
	for n, rc := range receipts {
		if rc.CertificateNumber == "" {
			return fmt.Errorf("line %d: certificate number is required", rc.Line)
		}
		found := -1
		for i, it := range g.Items {
			if it.Line == rc.Line {
				found = i
				break
			}
		}
		if found < 0 {
			return fmt.Errorf("issue %s line %d: %w", g.IssueNo, rc.Line, ErrItemNotFound)
		}
		if g.Items[found].Status == StatusCompleted {
			return fmt.Errorf("issue %s line %d: %w", g.IssueNo, rc.Line, ErrAlreadyProcessed)
		}
		idx[n] = found
	}
	for n, rc := range receipts {
		it := &g.Items[idx[n]]
		it.CertificateNumber = rc.CertificateNumber
		it.ReceivedDate = rc.ReceivedDate
		if it.ReceivedDate.IsZero() {
			it.ReceivedDate = today
		}
		it.Status = StatusCompleted
	}
	g.refreshStatus()
	return nil
}
