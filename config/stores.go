package config

import (
	"gorm.io/gorm"

	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
)

// Stores holds one store per back-office resource.
type Stores struct {
	LooseStock     crud.Store[models.LooseStock]
	CertifiedStock crud.Store[models.CertifiedStock]
	JewelleryStock crud.Store[models.JewelleryStock]
	Sales          crud.Store[models.Sale]
	Purchases      crud.Store[models.Purchase]
	Expenses       crud.Store[models.Expense]
	MemoGive       crud.Store[models.Memo]
	MemoTake       crud.Store[models.Memo]
	IgiIssues      crud.Store[models.IgiIssue]
	Users          crud.Store[models.User]
	Roles          crud.Store[models.Role]
}

// NewMemoryStores returns in-process stores preloaded with the sample
// datasets. Users and roles start empty; SeedAdmin fills them.
func NewMemoryStores() *Stores {
	return &Stores{
		LooseStock:     crud.NewMemoryStore(SampleLooseStock()...),
		CertifiedStock: crud.NewMemoryStore(SampleCertifiedStock()...),
		JewelleryStock: crud.NewMemoryStore(SampleJewelleryStock()...),
		Sales:          crud.NewMemoryStore(SampleSales()...),
		Purchases:      crud.NewMemoryStore(SamplePurchases()...),
		Expenses:       crud.NewMemoryStore(SampleExpenses()...),
		MemoGive:       crud.NewMemoryStore(SampleMemos(models.MemoGive)...),
		MemoTake:       crud.NewMemoryStore(SampleMemos(models.MemoTake)...),
		IgiIssues:      crud.NewMemoryStore(SampleIgiIssues()...),
		Users:          crud.NewMemoryStore[models.User](),
		Roles:          crud.NewMemoryStore[models.Role](),
	}
}

// NewGormStores returns stores backed by db. Both memo directions share the
// memos table, split on kind.
func NewGormStores(db *gorm.DB) *Stores {
	return &Stores{
		LooseStock:     crud.NewGormStore[models.LooseStock](db),
		CertifiedStock: crud.NewGormStore[models.CertifiedStock](db),
		JewelleryStock: crud.NewGormStore[models.JewelleryStock](db),
		Sales:          crud.NewGormStore[models.Sale](db),
		Purchases:      crud.NewGormStore[models.Purchase](db),
		Expenses:       crud.NewGormStore[models.Expense](db),
		MemoGive: crud.NewGormStore(db,
			crud.WithPreload[models.Memo]("Items"),
			crud.WithScope[models.Memo]("kind = ?", models.MemoGive)),
		MemoTake: crud.NewGormStore(db,
			crud.WithPreload[models.Memo]("Items"),
			crud.WithScope[models.Memo]("kind = ?", models.MemoTake)),
		IgiIssues: crud.NewGormStore(db, crud.WithPreload[models.IgiIssue]("Items")),
		Users:     crud.NewGormStore[models.User](db),
		Roles:     crud.NewGormStore[models.Role](db),
	}
}
