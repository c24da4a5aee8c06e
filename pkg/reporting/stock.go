package reporting

import (
	"github.com/shopspring/decimal"

	"p9e.in/gemstock/models"
)

// SummarizeStock totals a stock listing for the summary strip.
func SummarizeStock[T any, P interface {
	*T
	models.StockItem
}](items []T) models.StockSummary {
	var weight, cost, value decimal.Decimal
	for i := range items {
		it := P(&items[i])
		weight = weight.Add(decimal.NewFromFloat(it.StockWeight()))
		cost = cost.Add(decimal.NewFromFloat(it.StockCost()))
		value = value.Add(decimal.NewFromFloat(it.StockValue()))
	}
	return models.StockSummary{
		TotalItems:  len(items),
		TotalWeight: weight.Round(3).InexactFloat64(),
		TotalCost:   cost.Round(2).InexactFloat64(),
		TotalValue:  value.Round(2).InexactFloat64(),
	}
}
