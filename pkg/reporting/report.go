// Package reporting aggregates the sales, purchase and expense ledgers into
// the period report and renders tabular exports.
package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"p9e.in/gemstock/models"
)

// Ledgers is the input of a report: records already narrowed to the period.
type Ledgers struct {
	Sales     []models.Sale
	Purchases []models.Purchase
	Expenses  []models.Expense
}

// Totals holds the headline figures of a period.
type Totals struct {
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalPurchases decimal.Decimal `json:"totalPurchases"`
	TotalExpenses  decimal.Decimal `json:"totalExpenses"`
	GrossProfit    decimal.Decimal `json:"grossProfit"`
	NetProfit      decimal.Decimal `json:"netProfit"`
	ProfitMargin   decimal.Decimal `json:"profitMargin"`
	SalesCount     int             `json:"salesCount"`
	PurchaseCount  int             `json:"purchaseCount"`
	ExpenseCount   int             `json:"expenseCount"`
}

// Bucket is one slice of a grouping, e.g. sales for category "Diamond".
type Bucket struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// DailyPoint is one day of the chart series.
type DailyPoint struct {
	Date      string          `json:"date"`
	Sales     decimal.Decimal `json:"sales"`
	Purchases decimal.Decimal `json:"purchases"`
	Expenses  decimal.Decimal `json:"expenses"`
}

// Summary is the full period report.
type Summary struct {
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
	Totals

	SalesByCategory       []Bucket     `json:"salesByCategory"`
	SalesByExecutive      []Bucket     `json:"salesByExecutive"`
	SalesByPaymentMode    []Bucket     `json:"salesByPaymentMode"`
	PurchasesByCategory   []Bucket     `json:"purchasesByCategory"`
	PurchasesByVendor     []Bucket     `json:"purchasesByVendor"`
	ExpensesByCategory    []Bucket     `json:"expensesByCategory"`
	ExpensesByPaymentMode []Bucket     `json:"expensesByPaymentMode"`
	Daily                 []DailyPoint `json:"daily"`
}

var hundred = decimal.NewFromInt(100)

func amount(n models.Number) decimal.Decimal {
	return decimal.NewFromFloat(n.Float())
}

// ComputeTotals derives profit figures from the three ledger totals.
// The margin is zero when there are no sales.
func ComputeTotals(sales, purchases, expenses decimal.Decimal) Totals {
	t := Totals{
		TotalSales:     sales,
		TotalPurchases: purchases,
		TotalExpenses:  expenses,
	}
	t.GrossProfit = sales.Sub(purchases)
	t.NetProfit = t.GrossProfit.Sub(expenses)
	if sales.IsZero() {
		t.ProfitMargin = decimal.Zero
	} else {
		t.ProfitMargin = t.NetProfit.Div(sales).Mul(hundred).Round(2)
	}
	return t
}

// Build aggregates l. from and to only label the result; filtering is done
// by the caller.
func Build(l Ledgers, from, to time.Time, now time.Time) Summary {
	var sales, purchases, expenses decimal.Decimal

	salesCat := newGrouping()
	salesExec := newGrouping()
	salesPay := newGrouping()
	purCat := newGrouping()
	purVendor := newGrouping()
	expCat := newGrouping()
	expPay := newGrouping()
	daily := map[string]*DailyPoint{}

	day := func(t time.Time) *DailyPoint {
		key := "undated"
		if !t.IsZero() {
			key = t.Format(models.DateLayout)
		}
		p, ok := daily[key]
		if !ok {
			p = &DailyPoint{Date: key}
			daily[key] = p
		}
		return p
	}

	for i := range l.Sales {
		s := &l.Sales[i]
		v := amount(s.Total)
		sales = sales.Add(v)
		salesCat.add(s.Category, v)
		salesExec.add(s.SalesExecutive, v)
		salesPay.add(s.PaymentMode, v)
		p := day(s.RecordDate())
		p.Sales = p.Sales.Add(v)
	}
	for i := range l.Purchases {
		p := &l.Purchases[i]
		v := amount(p.Total)
		purchases = purchases.Add(v)
		purCat.add(p.Category, v)
		purVendor.add(p.Vendor, v)
		d := day(p.RecordDate())
		d.Purchases = d.Purchases.Add(v)
	}
	for i := range l.Expenses {
		e := &l.Expenses[i]
		v := amount(e.Total)
		expenses = expenses.Add(v)
		expCat.add(e.Category, v)
		expPay.add(e.PaymentMode, v)
		d := day(e.RecordDate())
		d.Expenses = d.Expenses.Add(v)
	}

	totals := ComputeTotals(sales, purchases, expenses)
	totals.SalesCount = len(l.Sales)
	totals.PurchaseCount = len(l.Purchases)
	totals.ExpenseCount = len(l.Expenses)

	sum := Summary{
		GeneratedAt:           now,
		Totals:                totals,
		SalesByCategory:       salesCat.buckets(),
		SalesByExecutive:      salesExec.buckets(),
		SalesByPaymentMode:    salesPay.buckets(),
		PurchasesByCategory:   purCat.buckets(),
		PurchasesByVendor:     purVendor.buckets(),
		ExpensesByCategory:    expCat.buckets(),
		ExpensesByPaymentMode: expPay.buckets(),
		Daily:                 make([]DailyPoint, 0, len(daily)),
	}
	if !from.IsZero() {
		sum.From = from.Format(models.DateLayout)
	}
	if !to.IsZero() {
		sum.To = to.Format(models.DateLayout)
	}
	for _, p := range daily {
		sum.Daily = append(sum.Daily, *p)
	}
	sort.Slice(sum.Daily, func(i, j int) bool { return sum.Daily[i].Date < sum.Daily[j].Date })
	return sum
}

type grouping struct {
	order []string
	byKey map[string]*Bucket
}

func newGrouping() *grouping {
	return &grouping{byKey: map[string]*Bucket{}}
}

func (g *grouping) add(key string, v decimal.Decimal) {
	if key == "" {
		key = "Unspecified"
	}
	b, ok := g.byKey[key]
	if !ok {
		b = &Bucket{Key: key}
		g.byKey[key] = b
		g.order = append(g.order, key)
	}
	b.Count++
	b.Total = b.Total.Add(v)
}

// buckets returns the groups by descending total, ties by key.
func (g *grouping) buckets() []Bucket {
	out := make([]Bucket, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, *g.byKey[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Key < out[j].Key
	})
	return out
}
