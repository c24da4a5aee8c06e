package crud_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"p9e.in/gemstock/config"
	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
)

// openTestDB returns a migrated private in-memory database. One connection
// keeps every query on the same memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := config.Migrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func memoStores(db *gorm.DB) (give, take *crud.GormStore[models.Memo]) {
	give = crud.NewGormStore(db,
		crud.WithPreload[models.Memo]("Items"),
		crud.WithScope[models.Memo]("kind = ?", models.MemoGive))
	take = crud.NewGormStore(db,
		crud.WithPreload[models.Memo]("Items"),
		crud.WithScope[models.Memo]("kind = ?", models.MemoTake))
	return give, take
}

func newMemo(kind, party string, descs ...string) *models.Memo {
	m := &models.Memo{Kind: kind, Party: party}
	for _, d := range descs {
		m.Items = append(m.Items, models.MemoItem{Description: d, Weight: 1, Rate: 100})
	}
	m.Normalize()
	return m
}

func countItems(t *testing.T, db *gorm.DB, memoID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.MemoItem{}).Where("memo_id = ?", memoID).Count(&n).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	return n
}

func TestGormStore_CreateGeneratesCode(t *testing.T) {
	ctx := context.Background()
	give, take := memoStores(openTestDB(t))

	out := newMemo(models.MemoGive, "Shah Gems", "ring", "pendant")
	if err := give.Create(ctx, out); err != nil {
		t.Fatalf("Create give: %v", err)
	}
	in := newMemo(models.MemoTake, "Mehta Traders", "loose lot")
	if err := take.Create(ctx, in); err != nil {
		t.Fatalf("Create take: %v", err)
	}

	if !crud.MatchesTemplate(out.MemoNo, "MG-#####") {
		t.Errorf("give memo no %q does not match MG-#####", out.MemoNo)
	}
	if !crud.MatchesTemplate(in.MemoNo, "MT-#####") {
		t.Errorf("take memo no %q does not match MT-#####", in.MemoNo)
	}

	got, err := give.Get(ctx, out.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MemoNo != out.MemoNo || len(got.Items) != 2 {
		t.Errorf("stored memo = %s with %d items, want %s with 2", got.MemoNo, len(got.Items), out.MemoNo)
	}
}

func TestGormStore_KindScope(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	give, take := memoStores(db)

	out := newMemo(models.MemoGive, "Shah Gems", "ring", "pendant")
	if err := give.Create(ctx, out); err != nil {
		t.Fatalf("Create give: %v", err)
	}
	in := newMemo(models.MemoTake, "Mehta Traders", "loose lot")
	if err := take.Create(ctx, in); err != nil {
		t.Fatalf("Create take: %v", err)
	}

	if _, err := take.Get(ctx, out.ID); !errors.Is(err, crud.ErrNotFound) {
		t.Errorf("Get across kinds: err = %v, want ErrNotFound", err)
	}
	renamed := *out
	renamed.Party = "changed"
	if err := take.Update(ctx, out.ID, &renamed); !errors.Is(err, crud.ErrNotFound) {
		t.Errorf("Update across kinds: err = %v, want ErrNotFound", err)
	}
	if err := take.Delete(ctx, out.ID); !errors.Is(err, crud.ErrNotFound) {
		t.Errorf("Delete across kinds: err = %v, want ErrNotFound", err)
	}

	got, err := give.Get(ctx, out.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Party != "Shah Gems" || len(got.Items) != 2 {
		t.Errorf("give memo = %q with %d items, want untouched", got.Party, len(got.Items))
	}

	listed, err := take.List(ctx, crud.Query{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != in.ID {
		t.Errorf("take list = %+v, want only memo %d", listed, in.ID)
	}

	if err := give.Delete(ctx, out.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n := countItems(t, db, out.ID); n != 0 {
		t.Errorf("deleted memo keeps %d items", n)
	}
	if n := countItems(t, db, in.ID); n != 1 {
		t.Errorf("other memo has %d items, want 1", n)
	}
	if _, err := give.Get(ctx, out.ID); !errors.Is(err, crud.ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
}

func TestGormStore_UpdateReplacesItems(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	give, _ := memoStores(db)

	m := newMemo(models.MemoGive, "Shah Gems", "ring", "pendant")
	if err := give.Create(ctx, m); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, err := give.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := stored.Decide([]int{1}, models.DecisionReturned, time.Now()); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if err := give.Update(ctx, m.ID, stored); err != nil {
		t.Fatalf("Update after decide: %v", err)
	}

	decided, err := give.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	first := decided.Items[0]
	if first.Status != models.StatusCompleted || first.Decision != models.DecisionReturned || first.DecidedAt == nil {
		t.Errorf("line 1 = %s/%s/%v, want Completed/Returned with a time", first.Status, first.Decision, first.DecidedAt)
	}
	if decided.Items[1].Status != models.StatusPending {
		t.Errorf("line 2 status = %s, want Pending", decided.Items[1].Status)
	}

	// drop line 2, add a new line
	decided.Items = append(decided.Items[:1], models.MemoItem{Description: "bangle", Weight: 2, Rate: 50})
	decided.Normalize()
	if err := give.Update(ctx, m.ID, decided); err != nil {
		t.Fatalf("Update items: %v", err)
	}

	got, err := give.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	if got.Items[0].Line != 1 || got.Items[0].Status != models.StatusCompleted {
		t.Errorf("first item = line %d %s, want line 1 Completed", got.Items[0].Line, got.Items[0].Status)
	}
	if got.Items[1].Description != "bangle" || got.Items[1].Line != 2 || got.Items[1].Amount != 100 {
		t.Errorf("new item = %+v, want bangle on line 2 with amount 100", got.Items[1])
	}
	if n := countItems(t, db, m.ID); n != 2 {
		t.Errorf("item rows = %d, want 2", n)
	}
}

func TestGormStore_DuplicateCodeIsInvalid(t *testing.T) {
	ctx := context.Background()
	give, _ := memoStores(openTestDB(t))

	first := newMemo(models.MemoGive, "Shah Gems", "ring")
	first.MemoNo = "MG-00001"
	if err := give.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second := newMemo(models.MemoGive, "Mehta Traders", "pendant")
	second.MemoNo = "MG-00001"
	if err := give.Create(ctx, second); !errors.Is(err, crud.ErrInvalid) {
		t.Fatalf("Create duplicate: err = %v, want ErrInvalid", err)
	}

	second.ID = 0
	second.MemoNo = "MG-00002"
	if err := give.Create(ctx, second); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second.MemoNo = "MG-00001"
	if err := give.Update(ctx, second.ID, second); !errors.Is(err, crud.ErrInvalid) {
		t.Errorf("Update to duplicate: err = %v, want ErrInvalid", err)
	}
}

func TestGormStore_InactiveFlagPersists(t *testing.T) {
	ctx := context.Background()
	roles := crud.NewGormStore[models.Role](openTestDB(t))

	role := &models.Role{Name: "clerk", Permissions: models.PermissionSet{"sales:read"}}
	if err := roles.Create(ctx, role); err != nil {
		t.Fatalf("Create: %v", err)
	}

	steps := []struct {
		name   string
		active bool
	}{
		{"created inactive", false},
		{"enabled", true},
		{"disabled again", false},
	}
	for i, step := range steps {
		if i > 0 {
			update := *role
			update.IsActive = step.active
			if err := roles.Update(ctx, role.ID, &update); err != nil {
				t.Fatalf("%s: Update: %v", step.name, err)
			}
		}
		got, err := roles.Get(ctx, role.ID)
		if err != nil {
			t.Fatalf("%s: Get: %v", step.name, err)
		}
		if got.IsActive != step.active {
			t.Errorf("%s: isActive = %v, want %v", step.name, got.IsActive, step.active)
		}
		if len(got.Permissions) != 1 || got.Permissions[0] != "sales:read" {
			t.Errorf("%s: permissions = %v", step.name, got.Permissions)
		}
	}
}

func TestGormStore_ListSearch(t *testing.T) {
	ctx := context.Background()
	give, _ := memoStores(openTestDB(t))

	for _, m := range []*models.Memo{
		newMemo(models.MemoGive, "Shah Gems", "emerald ring"),
		newMemo(models.MemoGive, "Mehta Traders", "ruby pendant"),
	} {
		if err := give.Create(ctx, m); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	tests := []struct {
		search string
		want   int
	}{
		{"", 2},
		{"shah", 1},
		{"RUBY", 1}, // item descriptions are searched
		{"sapphire", 0},
	}
	for _, tt := range tests {
		got, err := give.List(ctx, crud.Query{Search: tt.search})
		if err != nil {
			t.Fatalf("List %q: %v", tt.search, err)
		}
		if len(got) != tt.want {
			t.Errorf("List %q = %d, want %d", tt.search, len(got), tt.want)
		}
	}
}
