package models

import "time"

// Payment modes offered on ledger forms. Imported rows may carry others.
var PaymentModes = []string{"Cash", "Card", "UPI", "Bank Transfer", "Cheque", "Credit"}

// Sale is one line of the sales ledger.
type Sale struct {
	Record
	InvoiceNo      string `gorm:"size:20;uniqueIndex;not null" json:"invoiceNo"`
	Date           Date   `gorm:"index" json:"date"`
	Customer       string `gorm:"size:100" json:"customer"`
	SalesExecutive string `gorm:"size:100" json:"salesExecutive"`
	Category       string `gorm:"size:50" json:"category"`
	Item           string `json:"item"`
	Shape          string `gorm:"size:30" json:"shape"`
	Carat          Number `json:"carat"`
	Color          string `gorm:"size:20" json:"color"`
	Clarity        string `gorm:"size:20" json:"clarity"`
	CertificateNo  string `gorm:"size:50" json:"certificateNo"`
	Quantity       Number `json:"quantity"`
	Rate           Number `json:"rate"`
	Total          Number `json:"total"`
	PaymentMode    string `gorm:"size:30" json:"paymentMode"`
	Remark         string `json:"remark"`
}

func (Sale) CodeTemplate() string     { return "SL-#####" }
func (s *Sale) GetCode() string       { return s.InvoiceNo }
func (s *Sale) SetCode(code string)   { s.InvoiceNo = code }
func (s *Sale) RecordDate() time.Time { return s.Date.Time() }
func (s *Sale) FillTotal()            { s.Total = fillTotal(s.Total, s.Quantity, s.Rate) }

// Purchase is one line of the purchase ledger.
type Purchase struct {
	Record
	BillNo            string `gorm:"size:20;uniqueIndex;not null" json:"billNo"`
	Date              Date   `gorm:"index" json:"date"`
	Vendor            string `gorm:"size:100" json:"vendor"`
	PurchaseExecutive string `gorm:"size:100" json:"purchaseExecutive"`
	Category          string `gorm:"size:50" json:"category"`
	Item              string `json:"item"`
	Shape             string `gorm:"size:30" json:"shape"`
	Carat             Number `json:"carat"`
	Color             string `gorm:"size:20" json:"color"`
	Clarity           string `gorm:"size:20" json:"clarity"`
	CertificateNo     string `gorm:"size:50" json:"certificateNo"`
	Quantity          Number `json:"quantity"`
	Rate              Number `json:"rate"`
	Total             Number `json:"total"`
	PaymentMode       string `gorm:"size:30" json:"paymentMode"`
	Remark            string `json:"remark"`
}

func (Purchase) CodeTemplate() string     { return "PU-#####" }
func (p *Purchase) GetCode() string       { return p.BillNo }
func (p *Purchase) SetCode(code string)   { p.BillNo = code }
func (p *Purchase) RecordDate() time.Time { return p.Date.Time() }
func (p *Purchase) FillTotal()            { p.Total = fillTotal(p.Total, p.Quantity, p.Rate) }

// Expense is one line of the expense ledger.
type Expense struct {
	Record
	VoucherNo   string `gorm:"size:20;uniqueIndex;not null" json:"voucherNo"`
	Date        Date   `gorm:"index" json:"date"`
	PaidTo      string `gorm:"size:100" json:"paidTo"`
	Category    string `gorm:"size:50" json:"category"`
	Description string `json:"description"`
	Quantity    Number `json:"quantity"`
	Rate        Number `json:"rate"`
	Total       Number `json:"total"`
	PaymentMode string `gorm:"size:30" json:"paymentMode"`
	UpdatedBy   string `gorm:"size:100" json:"updatedBy"`
	Remark      string `json:"remark"`
}

func (Expense) CodeTemplate() string     { return "EX-#####" }
func (e *Expense) GetCode() string       { return e.VoucherNo }
func (e *Expense) SetCode(code string)   { e.VoucherNo = code }
func (e *Expense) RecordDate() time.Time { return e.Date.Time() }
func (e *Expense) FillTotal()            { e.Total = fillTotal(e.Total, e.Quantity, e.Rate) }

// fillTotal derives a missing total from quantity and rate.
func fillTotal(total, qty, rate Number) Number {
	if total != 0 {
		return total
	}
	return qty * rate
}
