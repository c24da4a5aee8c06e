package archive

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"p9e.in/gemstock/pkg/reporting"
)

func TestFromSummary(t *testing.T) {
	s := reporting.Summary{
		Totals: reporting.ComputeTotals(
			decimal.RequireFromString("1000"),
			decimal.RequireFromString("600"),
			decimal.RequireFromString("150")),
		SalesByCategory: []reporting.Bucket{{Key: "Diamond", Count: 2, Total: decimal.RequireFromString("1000")}},
	}
	at := time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)
	snap := FromSummary("2024-03-05", s, at)

	if snap.Day != "2024-03-05" || !snap.TakenAt.Equal(at) {
		t.Errorf("snapshot header = %+v", snap)
	}
	if snap.GrossProfit != 400 || snap.NetProfit != 250 || snap.ProfitMargin != 25 {
		t.Errorf("profit = %v / %v / %v", snap.GrossProfit, snap.NetProfit, snap.ProfitMargin)
	}
	if snap.SalesByCategory["Diamond"] != 1000 {
		t.Errorf("by category = %v", snap.SalesByCategory)
	}
}
