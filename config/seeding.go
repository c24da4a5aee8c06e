package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/crud"
)

// =====================================================
// Sample datasets (memory storage)
// =====================================================

func sampleDate(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func SampleLooseStock() []models.LooseStock {
	return []models.LooseStock{
		{Record: models.Record{ID: 1}, Code: "LS-20481", StoneType: "Diamond", Shape: "Round", CaratWeight: 0.52, Pieces: 1, Color: "G", Clarity: "VS2", Cut: "Excellent", CostPrice: 1450, SellingPrice: 1950, Location: models.LocationSafe},
		{Record: models.Record{ID: 2}, Code: "LS-20482", StoneType: "Diamond", Shape: "Princess", CaratWeight: 0.75, Pieces: 1, Color: "H", Clarity: "SI1", Cut: "Very Good", CostPrice: 1900, SellingPrice: 2600, Location: models.LocationMainStore},
		{Record: models.Record{ID: 3}, Code: "LS-20483", StoneType: "Ruby", Shape: "Oval", CaratWeight: 1.1, Pieces: 1, Color: "Pigeon Blood", Clarity: "VS", CostPrice: 3200, SellingPrice: 4500, Location: models.LocationDisplayCase, Notes: "Burmese"},
		{Record: models.Record{ID: 4}, Code: "LS-20484", StoneType: "Diamond", Shape: "Round", CaratWeight: 2.4, Pieces: 12, Color: "F-G", Clarity: "VS", CostPrice: 5400, SellingPrice: 7100, Location: models.LocationSafe, Notes: "Melee parcel"},
	}
}

func SampleCertifiedStock() []models.CertifiedStock {
	return []models.CertifiedStock{
		{Record: models.Record{ID: 1}, Code: "CS-10231", CertificateNumber: "GIA-2141438171", Lab: "GIA", Shape: "Round", CaratWeight: 1.01, Color: "D", Clarity: "VVS1", Cut: "Excellent", Polish: "Excellent", Symmetry: "Excellent", Fluorescence: "None", Measurements: "6.45 x 6.48 x 3.98", CostPrice: 14500, SellingPrice: 18900, Location: models.LocationSafe},
		{Record: models.Record{ID: 2}, Code: "CS-10232", CertificateNumber: "IGI-LG512345678", Lab: "IGI", Shape: "Oval", CaratWeight: 1.5, Color: "E", Clarity: "VS1", Cut: "Very Good", Polish: "Excellent", Symmetry: "Very Good", Fluorescence: "Faint", Measurements: "9.12 x 6.58 x 4.05", CostPrice: 9800, SellingPrice: 12800, Location: models.LocationDisplayCase},
		{Record: models.Record{ID: 3}, Code: "CS-10233", CertificateNumber: "AGS-54321678", Lab: "AGS", Shape: "Cushion", CaratWeight: 2.03, Color: "F", Clarity: "VS2", Cut: "Ideal", Polish: "Ideal", Symmetry: "Ideal", Fluorescence: "None", Measurements: "7.60 x 7.21 x 4.88", CostPrice: 21000, SellingPrice: 26500, Location: models.LocationSafe},
		{Record: models.Record{ID: 4}, Code: "CS-10234", CertificateNumber: "HRD-190012345", Lab: "HRD", Shape: "Emerald", CaratWeight: 1.22, Color: "G", Clarity: "VVS2", Cut: "Very Good", Polish: "Very Good", Symmetry: "Good", Fluorescence: "Medium", Measurements: "7.35 x 5.20 x 3.41", CostPrice: 8700, SellingPrice: 11200, Location: models.LocationMainStore},
		{Record: models.Record{ID: 5}, Code: "CS-10235", CertificateNumber: "GIA-6234567890", Lab: "GIA", Shape: "Pear", CaratWeight: 0.9, Color: "H", Clarity: "SI1", Cut: "Excellent", Polish: "Excellent", Symmetry: "Very Good", Fluorescence: "None", Measurements: "8.10 x 5.30 x 3.22", CostPrice: 4300, SellingPrice: 5900, Location: models.LocationDisplayCase},
	}
}

func SampleJewelleryStock() []models.JewelleryStock {
	return []models.JewelleryStock{
		{Record: models.Record{ID: 1}, Code: "JW-30011", Name: "Solitaire Ring", Category: "Ring", MetalType: "Gold", Purity: "18K", GrossWeight: 4.2, NetWeight: 3.9, StoneWeight: 0.3, StoneDetails: "1 RD 0.30ct G VS", Pieces: 1, CostPrice: 1200, SellingPrice: 1850, Location: models.LocationDisplayCase},
		{Record: models.Record{ID: 2}, Code: "JW-30012", Name: "Tennis Bracelet", Category: "Bracelet", MetalType: "White Gold", Purity: "14K", GrossWeight: 12.8, NetWeight: 11.2, StoneWeight: 1.6, StoneDetails: "48 RD 3.20ct total", Pieces: 1, CostPrice: 3900, SellingPrice: 5400, Location: models.LocationSafe},
		{Record: models.Record{ID: 3}, Code: "JW-30013", Name: "Drop Earrings", Category: "Earrings", MetalType: "Platinum", Purity: "950", GrossWeight: 6.1, NetWeight: 5.7, StoneWeight: 0.4, StoneDetails: "2 PS 1.00ct", Pieces: 2, CostPrice: 2700, SellingPrice: 3600, Location: models.LocationMainStore},
	}
}

func SampleSales() []models.Sale {
	return []models.Sale{
		{Record: models.Record{ID: 1}, InvoiceNo: "SL-50001", Date: sampleDate("2024-03-02"), Customer: "Priya Sharma", SalesExecutive: "Rahul", Category: "Diamond", Item: "Round brilliant 1.01ct", Shape: "Round", Carat: 1.01, Color: "D", Clarity: "VVS1", CertificateNo: "GIA-2141438171", Quantity: 1, Rate: 18900, Total: 18900, PaymentMode: "Card"},
		{Record: models.Record{ID: 2}, InvoiceNo: "SL-50002", Date: sampleDate("2024-03-09"), Customer: "Anil Mehta", SalesExecutive: "Sneha", Category: "Jewellery", Item: "Solitaire ring", Quantity: 1, Rate: 1850, Total: 1850, PaymentMode: "UPI"},
		{Record: models.Record{ID: 3}, InvoiceNo: "SL-50003", Date: sampleDate("2024-03-15"), Customer: "Kavita Rao", SalesExecutive: "Rahul", Category: "Gemstone", Item: "Ruby oval", Shape: "Oval", Carat: 1.1, Quantity: 1, Rate: 4500, Total: 4500, PaymentMode: "Bank Transfer"},
	}
}

func SamplePurchases() []models.Purchase {
	return []models.Purchase{
		{Record: models.Record{ID: 1}, BillNo: "PU-70001", Date: sampleDate("2024-03-01"), Vendor: "Surat Diamonds", PurchaseExecutive: "Vikram", Category: "Diamond", Item: "Round parcel", Shape: "Round", Carat: 2.4, Quantity: 12, Rate: 450, Total: 5400, PaymentMode: "Bank Transfer"},
		{Record: models.Record{ID: 2}, BillNo: "PU-70002", Date: sampleDate("2024-03-12"), Vendor: "Jaipur Gems", PurchaseExecutive: "Vikram", Category: "Gemstone", Item: "Ruby oval", Shape: "Oval", Carat: 1.1, Quantity: 1, Rate: 3200, Total: 3200, PaymentMode: "Cheque"},
	}
}

func SampleExpenses() []models.Expense {
	return []models.Expense{
		{Record: models.Record{ID: 1}, VoucherNo: "EX-90001", Date: sampleDate("2024-03-05"), PaidTo: "City Power", Category: "Utilities", Description: "Electricity bill", Quantity: 1, Rate: 320, Total: 320, PaymentMode: "UPI", UpdatedBy: "Accounts"},
		{Record: models.Record{ID: 2}, VoucherNo: "EX-90002", Date: sampleDate("2024-03-10"), PaidTo: "SecureVault", Category: "Security", Description: "Safe maintenance", Quantity: 1, Rate: 150, Total: 150, PaymentMode: "Cash", UpdatedBy: "Accounts"},
	}
}

func SampleMemos(kind string) []models.Memo {
	if kind == models.MemoTake {
		return []models.Memo{
			{Record: models.Record{ID: 1}, Kind: models.MemoTake, MemoNo: "MT-40001", Party: "Antwerp Trading", IssueDate: sampleDate("2024-03-04"), DueDate: sampleDate("2024-03-18"), Status: models.StatusPending,
				Items: []models.MemoItem{
					{Line: 1, Description: "Cushion 3.02ct", Shape: "Cushion", Pieces: 1, Weight: 3.02, Rate: 9000, Amount: 27180, Status: models.StatusPending},
				}},
		}
	}
	return []models.Memo{
		{Record: models.Record{ID: 1}, Kind: models.MemoGive, MemoNo: "MG-60001", Party: "Shah Jewellers", IssueDate: sampleDate("2024-03-06"), DueDate: sampleDate("2024-03-20"), Status: models.StatusPending,
			Items: []models.MemoItem{
				{Line: 1, Description: "Round 0.75ct", Shape: "Round", Pieces: 1, Weight: 0.75, Rate: 3400, Amount: 2550, Status: models.StatusPending},
				{Line: 2, Description: "Pear 0.90ct", Shape: "Pear", Pieces: 1, Weight: 0.9, Rate: 6500, Amount: 5850, Status: models.StatusPending},
			}},
	}
}

func SampleIgiIssues() []models.IgiIssue {
	return []models.IgiIssue{
		{Record: models.Record{ID: 1}, IssueNo: "IGI-80001", Lab: "IGI", IssueDate: sampleDate("2024-03-08"), Status: models.StatusPending,
			Items: []models.IgiItem{
				{Line: 1, StockCode: "LS-20481", Description: "Round 0.52ct", Shape: "Round", Pieces: 1, Weight: 0.52, Status: models.StatusPending},
				{Line: 2, StockCode: "LS-20482", Description: "Princess 0.75ct", Shape: "Princess", Pieces: 1, Weight: 0.75, Status: models.StatusPending},
			}},
	}
}

// =====================================================
// Roles & admin user
// =====================================================

// SeedAdmin creates the default roles and the admin login when the role
// table is empty.
func SeedAdmin(ctx context.Context, roles crud.Store[models.Role], users crud.Store[models.User], email, password string, log *zap.Logger) error {
	existing, err := roles.List(ctx, crud.Query{})
	if err != nil {
		return fmt.Errorf("list roles: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	var adminRoleID uint
	for _, role := range DefaultRoles() {
		role := role
		if err := roles.Create(ctx, &role); err != nil {
			return fmt.Errorf("create role %s: %w", role.Name, err)
		}
		if role.Name == "admin" {
			adminRoleID = role.ID
		}
	}
	if adminRoleID == 0 {
		return errors.New("admin role was not created")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       adminRoleID,
		IsActive:     true,
	}
	if err := users.Create(ctx, &admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info("seeded roles and admin user",
		zap.String("email", email),
		zap.Time("at", time.Now()))
	return nil
}
