package crud

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"p9e.in/gemstock/models"
)

func seedLoose() []models.LooseStock {
	return []models.LooseStock{
		{Record: models.Record{ID: 1}, Code: "LS-10001", StoneType: "Diamond", Shape: "Round", CaratWeight: 0.5, Color: "F", Clarity: "VS1", Location: models.LocationSafe},
		{Record: models.Record{ID: 2}, Code: "LS-10002", StoneType: "Ruby", Shape: "Oval", CaratWeight: 1.2, Color: "Pigeon Blood", Clarity: "VVS2", Location: models.LocationMainStore},
		{Record: models.Record{ID: 3}, Code: "LS-10003", StoneType: "Emerald", Shape: "Emerald", CaratWeight: 2.1, Color: "Green", Clarity: "SI1", Location: models.LocationDisplayCase, Notes: "Colombian origin"},
	}
}

func TestMemoryStore_CreateAssignsIDAndCode(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(seedLoose()...)

	item := &models.LooseStock{StoneType: "Sapphire", Shape: "Cushion"}
	if err := s.Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if s.Len() != 4 {
		t.Fatalf("len = %d, want 4", s.Len())
	}
	if item.ID != 4 {
		t.Errorf("id = %d, want 4", item.ID)
	}
	if !MatchesTemplate(item.Code, "LS-#####") {
		t.Errorf("code %q does not match LS-#####", item.Code)
	}
	if item.CaratWeight != 0 || item.CostPrice != 0 {
		t.Errorf("numeric fields should default to 0, got %v %v", item.CaratWeight, item.CostPrice)
	}
	if item.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestMemoryStore_IDsNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(seedLoose()...)

	if err := s.Delete(ctx, 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	item := &models.LooseStock{StoneType: "Topaz"}
	if err := s.Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if item.ID != 4 {
		t.Errorf("id = %d, want 4", item.ID)
	}
}

func TestMemoryStore_UpdateKeepsIDAndLength(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(seedLoose()...)

	before, err := s.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	upd := &models.LooseStock{Record: models.Record{ID: 99}, StoneType: "Spinel", Shape: "Pear", CaratWeight: 3}
	if err := s.Update(ctx, 2, upd); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := s.Get(ctx, 2)
	if got.ID != 2 {
		t.Errorf("id = %d, want 2", got.ID)
	}
	if got.StoneType != "Spinel" || got.Shape != "Pear" || got.CaratWeight != 3 {
		t.Errorf("fields not overwritten: %+v", got)
	}
	if got.Color != "" {
		t.Errorf("color should be overwritten with empty value, got %q", got.Color)
	}
	if got.Code != before.Code {
		t.Errorf("code = %q, want kept %q", got.Code, before.Code)
	}
	if !got.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("CreatedAt changed")
	}
	if s.Len() != 3 {
		t.Errorf("len = %d, want 3", s.Len())
	}
}

func TestMemoryStore_UpdateUnknown(t *testing.T) {
	s := NewMemoryStore(seedLoose()...)
	err := s.Update(context.Background(), 42, &models.LooseStock{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(seedLoose()...)

	if err := s.Delete(ctx, 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if _, err := s.Get(ctx, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}

	err := s.Delete(ctx, 2)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if s.Len() != 2 {
		t.Errorf("len after no-op delete = %d, want 2", s.Len())
	}
}

func TestMemoryStore_DuplicateCodeRejected(t *testing.T) {
	s := NewMemoryStore(seedLoose()...)
	err := s.Create(context.Background(), &models.LooseStock{Code: "LS-10001"})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestMemoryStore_Search(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(seedLoose()...)

	tests := []struct {
		query string
		want  []uint
	}{
		{"", []uint{1, 2, 3}},
		{"ruby", []uint{2}},
		{"RUBY", []uint{2}},
		{"colombian", []uint{3}},
		{"emerald", []uint{3}},
		{"ls-1000", []uint{1, 2, 3}},
		{"2.1", []uint{3}},
		{"display", []uint{3}},
		{"tanzanite", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.List(ctx, Query{Search: tt.query})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d results, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("result %d id = %d, want %d", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestMemoryStore_DateRange(t *testing.T) {
	ctx := context.Background()
	day := func(s string) models.Date {
		d, err := models.ParseDate(s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}
	s := NewMemoryStore(
		models.Sale{InvoiceNo: "SL-00001", Date: day("2024-01-05"), Customer: "A"},
		models.Sale{InvoiceNo: "SL-00002", Date: day("2024-01-20"), Customer: "B"},
		models.Sale{InvoiceNo: "SL-00003", Date: day("2024-02-01"), Customer: "C"},
	)

	from := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	got, err := s.List(ctx, Query{From: from, To: to})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d, want 2 (bounds inclusive)", len(got))
	}
	if got[0].Customer != "A" || got[1].Customer != "B" {
		t.Errorf("unexpected order/content: %+v", got)
	}
}

func TestMemoryStore_SearchNestedItems(t *testing.T) {
	s := NewMemoryStore(
		models.Memo{Kind: models.MemoGive, MemoNo: "MG-00001", Party: "Shah Jewellers",
			Items: []models.MemoItem{{Line: 1, Description: "Solitaire ring"}}},
		models.Memo{Kind: models.MemoGive, MemoNo: "MG-00002", Party: "Mehta & Sons",
			Items: []models.MemoItem{{Line: 1, Description: "Tennis bracelet"}}},
	)
	got, _ := s.List(context.Background(), Query{Search: "bracelet"})
	if len(got) != 1 || got[0].MemoNo != "MG-00002" {
		t.Fatalf("nested search failed: %+v", got)
	}
}

func TestMemoryStore_SearchFieldSelection(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore[models.User]()
	if err := users.Create(ctx, &models.User{Name: "Asha", Email: "asha@shop.test", PasswordHash: "$2a$10$abcdefghijklmnopqrstuv"}); err != nil {
		t.Fatal(err)
	}
	sales := NewMemoryStore[models.Sale]()
	if err := sales.Create(ctx, &models.Sale{InvoiceNo: "SL-00001", Customer: "Bulk buyer", Rate: 1500000, Quantity: 2, Total: 3000000}); err != nil {
		t.Fatal(err)
	}
	if err := sales.Create(ctx, &models.Sale{InvoiceNo: "SL-00002", Customer: "Walk-in", Item: "Studs", Rate: 450}); err != nil {
		t.Fatal(err)
	}
	year := strconv.Itoa(time.Now().Year())

	tests := []struct {
		name  string
		count func(q string) int
		query string
		want  int
	}{
		{"hidden password hash", func(q string) int { got, _ := users.List(ctx, Query{Search: q}); return len(got) }, "$2a$", 0},
		{"visible email", func(q string) int { got, _ := users.List(ctx, Query{Search: q}); return len(got) }, "asha@", 1},
		{"large rate in plain digits", func(q string) int { got, _ := sales.List(ctx, Query{Search: q}); return len(got) }, "1500000", 1},
		{"large total", func(q string) int { got, _ := sales.List(ctx, Query{Search: q}); return len(got) }, "3000000", 1},
		{"no exponent form", func(q string) int { got, _ := sales.List(ctx, Query{Search: q}); return len(got) }, "e+06", 0},
		{"timestamps not searched", func(q string) int { got, _ := sales.List(ctx, Query{Search: q}); return len(got) }, year, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.count(tt.query); got != tt.want {
				t.Errorf("search %q matched %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}
