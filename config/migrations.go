package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"p9e.in/gemstock/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "01032024_create_stock_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.LooseStock{}, &models.CertifiedStock{}, &models.JewelleryStock{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("loose_stocks", "certified_stocks", "jewellery_stocks")
			},
		},
		{
			ID: "01032024_create_ledger_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Sale{}, &models.Purchase{}, &models.Expense{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("sales", "purchases", "expenses")
			},
		},
		{
			ID: "08032024_create_custody_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Memo{}, &models.MemoItem{}, &models.IgiIssue{}, &models.IgiItem{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("memo_items", "memos", "igi_items", "igi_issues")
			},
		},
		{
			ID: "15032024_create_admin_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Role{}, &models.User{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("users", "roles")
			},
		},
		{
			ID: "02042024_add_certified_stock_attachments",
			Migrate: func(tx *gorm.DB) error {
				if tx.Migrator().HasColumn(&models.CertifiedStock{}, "Attachments") {
					return nil
				}
				return tx.Migrator().AddColumn(&models.CertifiedStock{}, "Attachments")
			},
		},
	})
	return m.Migrate()
}
