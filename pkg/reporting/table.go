package reporting

import (
	"reflect"
	"strings"
	"unicode"
)

// RecordsTable lays out a slice of records as a table whose columns follow
// the JSON field names of the element type. Nested slices (memo items and
// the like) are left out.
func RecordsTable(title string, items any) *Table {
	t := &Table{Title: title}
	v := reflect.ValueOf(items)
	if v.Kind() != reflect.Slice {
		return t
	}
	typ := v.Type().Elem()
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return t
	}
	var paths [][]int
	collectColumns(typ, nil, &t.Columns, &paths)

	for i := 0; i < v.Len(); i++ {
		item := reflect.Indirect(v.Index(i))
		if !item.IsValid() {
			continue
		}
		row := make(map[string]any, len(t.Columns))
		for n, c := range t.Columns {
			row[c.Key] = item.FieldByIndex(paths[n]).Interface()
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func collectColumns(typ reflect.Type, prefix []int, cols *[]Column, paths *[][]int) {
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		index := append(append([]int{}, prefix...), i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectColumns(f.Type, index, cols, paths)
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		switch f.Type.Kind() {
		case reflect.Map, reflect.Pointer:
			continue
		case reflect.Slice:
			if f.Type.Elem().Kind() != reflect.Uint8 {
				continue
			}
		}
		*cols = append(*cols, Column{Key: name, Label: Label(name)})
		*paths = append(*paths, index)
	}
}

// Label turns a camelCase field name into a column heading:
// "certificateNumber" -> "Certificate Number".
func Label(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SummaryTable lays out a period report: headline totals and groupings in
// the summary block, the daily series as rows.
func SummaryTable(title string, s Summary) *Table {
	t := &Table{
		Title: title,
		Columns: []Column{
			{Key: "date", Label: "Date"},
			{Key: "sales", Label: "Sales"},
			{Key: "purchases", Label: "Purchases"},
			{Key: "expenses", Label: "Expenses"},
		},
	}
	for _, p := range s.Daily {
		t.Rows = append(t.Rows, map[string]any{
			"date":      p.Date,
			"sales":     p.Sales.StringFixed(2),
			"purchases": p.Purchases.StringFixed(2),
			"expenses":  p.Expenses.StringFixed(2),
		})
	}

	period := "All dates"
	if s.From != "" || s.To != "" {
		period = s.From + " to " + s.To
	}
	t.Summary = [][2]string{
		{"Period", period},
		{"Total Sales", s.TotalSales.StringFixed(2)},
		{"Total Purchases", s.TotalPurchases.StringFixed(2)},
		{"Total Expenses", s.TotalExpenses.StringFixed(2)},
		{"Gross Profit", s.GrossProfit.StringFixed(2)},
		{"Net Profit", s.NetProfit.StringFixed(2)},
		{"Profit Margin %", s.ProfitMargin.StringFixed(2)},
	}
	groups := []struct {
		name    string
		buckets []Bucket
	}{
		{"Sales by Category", s.SalesByCategory},
		{"Sales by Executive", s.SalesByExecutive},
		{"Sales by Payment Mode", s.SalesByPaymentMode},
		{"Purchases by Category", s.PurchasesByCategory},
		{"Purchases by Vendor", s.PurchasesByVendor},
		{"Expenses by Category", s.ExpensesByCategory},
		{"Expenses by Payment Mode", s.ExpensesByPaymentMode},
	}
	for _, g := range groups {
		for _, b := range g.buckets {
			t.Summary = append(t.Summary, [2]string{g.name + ": " + b.Key, b.Total.StringFixed(2)})
		}
	}
	return t
}
