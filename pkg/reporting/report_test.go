package reporting

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"p9e.in/gemstock/models"
)

func date(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func fixture(t *testing.T) Ledgers {
	return Ledgers{
		Sales: []models.Sale{
			{Date: date(t, "2024-03-01"), Category: "Diamond", SalesExecutive: "Rahul", PaymentMode: "Card", Total: 1000.10},
			{Date: date(t, "2024-03-01"), Category: "Gold", SalesExecutive: "Sneha", PaymentMode: "Cash", Total: 250.20},
			{Date: date(t, "2024-03-02"), Category: "Diamond", SalesExecutive: "Rahul", PaymentMode: "Cash", Total: 499.70},
		},
		Purchases: []models.Purchase{
			{Date: date(t, "2024-03-01"), Category: "Diamond", Vendor: "Surat", Total: 800.30},
			{Date: date(t, "2024-03-03"), Vendor: "Jaipur", Total: 100},
		},
		Expenses: []models.Expense{
			{Date: date(t, "2024-03-02"), Category: "Utilities", PaymentMode: "UPI", Total: 120.45},
		},
	}
}

func TestBuild_ProfitIdentities(t *testing.T) {
	s := Build(fixture(t), time.Time{}, time.Time{}, time.Now())

	wantSales := decimal.RequireFromString("1750")
	wantPurchases := decimal.RequireFromString("900.3")
	wantExpenses := decimal.RequireFromString("120.45")

	if !s.TotalSales.Equal(wantSales) {
		t.Errorf("TotalSales = %s, want %s", s.TotalSales, wantSales)
	}
	if !s.TotalPurchases.Equal(wantPurchases) {
		t.Errorf("TotalPurchases = %s, want %s", s.TotalPurchases, wantPurchases)
	}
	if !s.TotalExpenses.Equal(wantExpenses) {
		t.Errorf("TotalExpenses = %s, want %s", s.TotalExpenses, wantExpenses)
	}
	if !s.GrossProfit.Equal(s.TotalSales.Sub(s.TotalPurchases)) {
		t.Errorf("GrossProfit = %s, want sales - purchases", s.GrossProfit)
	}
	if !s.NetProfit.Equal(s.GrossProfit.Sub(s.TotalExpenses)) {
		t.Errorf("NetProfit = %s, want gross - expenses", s.NetProfit)
	}
	if got := s.NetProfit.String(); got != "729.25" {
		t.Errorf("NetProfit = %s, want 729.25", got)
	}
	// 729.25 / 1750 * 100 = 41.6714...
	if got := s.ProfitMargin.String(); got != "41.67" {
		t.Errorf("ProfitMargin = %s, want 41.67", got)
	}
	if s.SalesCount != 3 || s.PurchaseCount != 2 || s.ExpenseCount != 1 {
		t.Errorf("counts = %d/%d/%d", s.SalesCount, s.PurchaseCount, s.ExpenseCount)
	}
}

func TestComputeTotals_ZeroSales(t *testing.T) {
	tests := []struct {
		name       string
		purchases  string
		expenses   string
		wantNet    string
		wantMargin string
	}{
		{"all zero", "0", "0", "0", "0"},
		{"costs only", "500", "25.5", "-525.5", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(decimal.Zero,
				decimal.RequireFromString(tt.purchases),
				decimal.RequireFromString(tt.expenses))
			if got.NetProfit.String() != tt.wantNet {
				t.Errorf("NetProfit = %s, want %s", got.NetProfit, tt.wantNet)
			}
			if got.ProfitMargin.String() != tt.wantMargin {
				t.Errorf("ProfitMargin = %s, want %s", got.ProfitMargin, tt.wantMargin)
			}
		})
	}
}

func TestBuild_Groupings(t *testing.T) {
	s := Build(fixture(t), time.Time{}, time.Time{}, time.Now())

	if len(s.SalesByCategory) != 2 {
		t.Fatalf("SalesByCategory = %+v", s.SalesByCategory)
	}
	top := s.SalesByCategory[0]
	if top.Key != "Diamond" || top.Count != 2 || top.Total.String() != "1499.8" {
		t.Errorf("top category = %+v", top)
	}

	var unspecified bool
	for _, b := range s.PurchasesByCategory {
		if b.Key == "Unspecified" {
			unspecified = true
		}
	}
	if !unspecified {
		t.Errorf("purchase with empty category not grouped as Unspecified: %+v", s.PurchasesByCategory)
	}

	wantDays := []string{"2024-03-01", "2024-03-02", "2024-03-03"}
	if len(s.Daily) != len(wantDays) {
		t.Fatalf("Daily = %+v", s.Daily)
	}
	for i, d := range wantDays {
		if s.Daily[i].Date != d {
			t.Errorf("Daily[%d].Date = %s, want %s", i, s.Daily[i].Date, d)
		}
	}
	if got := s.Daily[0].Sales.String(); got != "1250.3" {
		t.Errorf("Daily[0].Sales = %s, want 1250.3", got)
	}
}

func TestRecordsTable(t *testing.T) {
	items := []models.CertifiedStock{
		{Record: models.Record{ID: 7}, Code: "CS-00007", CertificateNumber: "GIA-1", CaratWeight: 1.5},
	}
	tbl := RecordsTable("Certified Stock", items)

	var haveID, haveCert bool
	for _, c := range tbl.Columns {
		switch c.Key {
		case "id":
			haveID = true
		case "certificateNumber":
			haveCert = true
			if c.Label != "Certificate Number" {
				t.Errorf("label = %q", c.Label)
			}
		}
	}
	if !haveID || !haveCert {
		t.Fatalf("columns = %+v", tbl.Columns)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0]["certificateNumber"] != "GIA-1" {
		t.Fatalf("rows = %+v", tbl.Rows)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "CS-00007") || !strings.Contains(lines[1], "1.5") {
		t.Errorf("csv row = %q", lines[1])
	}
}

func TestRecordsTable_SkipsItems(t *testing.T) {
	tbl := RecordsTable("Memo", []models.Memo{{MemoNo: "MG-1", Items: []models.MemoItem{{Line: 1}}}})
	for _, c := range tbl.Columns {
		if c.Key == "items" {
			t.Fatal("items column should be skipped")
		}
	}
}

func TestRender(t *testing.T) {
	s := Build(fixture(t), time.Time{}, time.Time{}, time.Now())
	tbl := SummaryTable("Report", s)

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"csv", "text/csv", "Net Profit,729.25"},
		{"html", "text/html; charset=utf-8", "<td>729.25</td>"},
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "PK"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			body, ct, ext, err := Render(tt.format, tbl, time.Now())
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if ct != tt.contentType || ext != tt.format {
				t.Errorf("content type %q ext %q", ct, ext)
			}
			if !bytes.Contains(body, []byte(tt.contains)) {
				t.Errorf("body does not contain %q", tt.contains)
			}
		})
	}

	if _, _, _, err := Render("pdf", tbl, time.Now()); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSummarizeStock(t *testing.T) {
	items := []models.LooseStock{
		{CaratWeight: 0.5, CostPrice: 100.1, SellingPrice: 150},
		{CaratWeight: 0.25, CostPrice: 200.2, SellingPrice: 300},
	}
	got := SummarizeStock(items)
	if got.TotalItems != 2 || got.TotalWeight != 0.75 || got.TotalCost != 300.3 || got.TotalValue != 450 {
		t.Errorf("SummarizeStock = %+v", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename("sales report: 2024/03"); got != "sales_report__2024_03" {
		t.Errorf("SanitizeFilename = %q", got)
	}
}
