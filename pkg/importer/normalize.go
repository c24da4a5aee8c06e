package importer

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"p9e.in/gemstock/models"
	"p9e.in/gemstock/utils"
)

// Defaults applied to imported ledger rows.
const (
	DefaultShape       = "Round"
	DefaultPaymentMode = "Cash"
	DefaultCategory    = "General"
)

var ErrEmptyRow = errors.New("row has no item and no amount")

// Header aliases, checked in order. Legacy backend names are included.
var (
	colDate        = []string{"date", "saleDate", "purchaseDate", "expenseDate", "invoiceDate", "billDate"}
	colCategory    = []string{"category", "iteam", "itemCategory", "type"}
	colItem        = []string{"item", "itemName", "description", "product", "particulars", "details"}
	colShape       = []string{"shape", "stoneShape"}
	colCarat       = []string{"carat", "carats", "caratWeight", "weight", "wt", "cts"}
	colColor       = []string{"color", "colour", "col"}
	colClarity     = []string{"clarity", "clr"}
	colCertificate = []string{"certificateNo", "certificateNumber", "certificate", "certNo", "labNo", "lab_no"}
	colQuantity    = []string{"quantity", "qty", "pcs", "pieces"}
	colRate        = []string{"rate", "price", "unitPrice"}
	colTotal       = []string{"total", "amount", "totalAmount", "value", "netAmount"}
	colPaymentMode = []string{"paymentMode", "payment_mode", "pay_mode", "payment", "mode"}
	colRemark      = []string{"remark", "remarks", "notes", "note"}
)

// Spreadsheet spellings on top of the layouts models.ParseDate knows.
var extraDateLayouts = []string{
	"02.01.2006",
	"2-Jan-2006",
	"02-Jan-06",
	"2 January 2006",
}

// ParseDate accepts the common spreadsheet date spellings, including Excel
// serial numbers. Day-first is assumed for slash dates.
func ParseDate(s string) (models.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Date{}, false
	}
	if d, err := models.ParseDate(s); err == nil {
		return d, true
	}
	for _, layout := range extraDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.NewDate(t), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 2958466 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return models.NewDate(t), true
		}
	}
	return models.Date{}, false
}

func dateOr(s string, today models.Date) models.Date {
	if d, ok := ParseDate(s); ok {
		return d
	}
	return today
}

func number(s string) models.Number { return models.Number(utils.ParseFloat(s)) }

func quantity(s string) models.Number {
	if q := number(s); q != 0 {
		return q
	}
	return 1
}

func shape(s string) string {
	if s == "" {
		return DefaultShape
	}
	// a Caser is stateful, so one per call
	return cases.Title(language.English).String(s)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Sale maps a sales sheet row.
func Sale(r Row, today models.Date) (models.Sale, error) {
	s := models.Sale{
		InvoiceNo:      r.Get("invoiceNo", "invoice", "invoiceNumber", "billNo"),
		Date:           dateOr(r.Get(colDate...), today),
		Customer:       r.Get("customer", "customerName", "customer_name", "client", "party", "buyer"),
		SalesExecutive: r.Get("salesExecutive", "sales_executive", "executive", "salesman", "salesPerson"),
		Category:       orDefault(r.Get(colCategory...), DefaultCategory),
		Item:           r.Get(colItem...),
		Shape:          shape(r.Get(colShape...)),
		Carat:          number(r.Get(colCarat...)),
		Color:          r.Get(colColor...),
		Clarity:        r.Get(colClarity...),
		CertificateNo:  r.Get(colCertificate...),
		Quantity:       quantity(r.Get(colQuantity...)),
		Rate:           number(r.Get(colRate...)),
		Total:          number(r.Get(colTotal...)),
		PaymentMode:    orDefault(r.Get(colPaymentMode...), DefaultPaymentMode),
		Remark:         r.Get(colRemark...),
	}
	if s.Item == "" && s.Total == 0 && s.Rate == 0 {
		return s, ErrEmptyRow
	}
	s.FillTotal()
	return s, nil
}

// Purchase maps a purchase sheet row.
func Purchase(r Row, today models.Date) (models.Purchase, error) {
	p := models.Purchase{
		BillNo:            r.Get("billNo", "bill", "billNumber", "invoiceNo", "invoice"),
		Date:              dateOr(r.Get(colDate...), today),
		Vendor:            r.Get("vendor", "vendorName", "vendor_name", "supplier", "party", "seller"),
		PurchaseExecutive: r.Get("purchaseExecutive", "purchase_executive", "executive", "buyer"),
		Category:          orDefault(r.Get(colCategory...), DefaultCategory),
		Item:              r.Get(colItem...),
		Shape:             shape(r.Get(colShape...)),
		Carat:             number(r.Get(colCarat...)),
		Color:             r.Get(colColor...),
		Clarity:           r.Get(colClarity...),
		CertificateNo:     r.Get(colCertificate...),
		Quantity:          quantity(r.Get(colQuantity...)),
		Rate:              number(r.Get(colRate...)),
		Total:             number(r.Get(colTotal...)),
		PaymentMode:       orDefault(r.Get(colPaymentMode...), DefaultPaymentMode),
		Remark:            r.Get(colRemark...),
	}
	if p.Item == "" && p.Total == 0 && p.Rate == 0 {
		return p, ErrEmptyRow
	}
	p.FillTotal()
	return p, nil
}

// Expense maps an expense sheet row.
func Expense(r Row, today models.Date) (models.Expense, error) {
	e := models.Expense{
		VoucherNo:   r.Get("voucherNo", "voucher", "voucherNumber", "ref", "reference"),
		Date:        dateOr(r.Get(colDate...), today),
		PaidTo:      r.Get("paidTo", "paid_to", "payee", "vendor", "party"),
		Category:    orDefault(r.Get("category", "expenseType", "head", "type", "iteam"), DefaultCategory),
		Description: r.Get("description", "particulars", "details", "item", "narration"),
		Quantity:    quantity(r.Get(colQuantity...)),
		Rate:        number(r.Get(colRate...)),
		Total:       number(r.Get(colTotal...)),
		PaymentMode: orDefault(r.Get(colPaymentMode...), DefaultPaymentMode),
		UpdatedBy:   r.Get("updatedBy", "updated_by", "enteredBy", "user"),
		Remark:      r.Get(colRemark...),
	}
	if e.Description == "" && e.Total == 0 && e.Rate == 0 {
		return e, ErrEmptyRow
	}
	e.FillTotal()
	return e, nil
}
