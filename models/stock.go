package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// LooseStock is an uncertified loose stone (or parcel of stones) held in inventory.
type LooseStock struct {
	Record
	Code         string `gorm:"size:20;uniqueIndex;not null" json:"code"`
	StoneType    string `gorm:"size:50" json:"stoneType"`
	Shape        string `gorm:"size:30" json:"shape"`
	CaratWeight  Number `json:"caratWeight"`
	Pieces       Number `json:"pieces"`
	Color        string `gorm:"size:20" json:"color"`
	Clarity      string `gorm:"size:20" json:"clarity"`
	Cut          string `gorm:"size:20" json:"cut"`
	CostPrice    Number `json:"costPrice"`
	SellingPrice Number `json:"sellingPrice"`
	Location     string `gorm:"size:30" json:"location"`
	Notes        string `json:"notes"`
}

func (LooseStock) TableName() string       { return "loose_stocks" }
func (LooseStock) CodeTemplate() string    { return "LS-#####" }
func (s *LooseStock) GetCode() string      { return s.Code }
func (s *LooseStock) SetCode(code string)  { s.Code = code }
func (s *LooseStock) StockWeight() float64 { return s.CaratWeight.Float() }
func (s *LooseStock) StockCost() float64   { return s.CostPrice.Float() }
func (s *LooseStock) StockValue() float64  { return s.SellingPrice.Float() }

// Grading labs accepted on certified stock.
var CertificateLabs = []string{"GIA", "IGI", "AGS", "HRD"}

// CertifiedStock is a loose stone accompanied by a third-party grading certificate.
type CertifiedStock struct {
	Record
	Code              string         `gorm:"size:20;uniqueIndex;not null" json:"code"`
	CertificateNumber string         `gorm:"size:50;index" json:"certificateNumber"`
	Lab               string         `gorm:"size:10" json:"lab"`
	Shape             string         `gorm:"size:30" json:"shape"`
	CaratWeight       Number         `json:"caratWeight"`
	Color             string         `gorm:"size:20" json:"color"`
	Clarity           string         `gorm:"size:20" json:"clarity"`
	Cut               string         `gorm:"size:20" json:"cut"`
	Polish            string         `gorm:"size:20" json:"polish"`
	Symmetry          string         `gorm:"size:20" json:"symmetry"`
	Fluorescence      string         `gorm:"size:20" json:"fluorescence"`
	Measurements      string         `gorm:"size:50" json:"measurements"`
	CostPrice         Number         `json:"costPrice"`
	SellingPrice      Number         `json:"sellingPrice"`
	Location          string         `gorm:"size:30" json:"location"`
	Notes             string         `json:"notes"`
	Attachments       datatypes.JSON `json:"attachments,omitempty"`
}

func (CertifiedStock) TableName() string       { return "certified_stocks" }
func (CertifiedStock) CodeTemplate() string    { return "CS-#####" }
func (s *CertifiedStock) GetCode() string      { return s.Code }
func (s *CertifiedStock) SetCode(code string)  { s.Code = code }
func (s *CertifiedStock) StockWeight() float64 { return s.CaratWeight.Float() }
func (s *CertifiedStock) StockCost() float64   { return s.CostPrice.Float() }
func (s *CertifiedStock) StockValue() float64  { return s.SellingPrice.Float() }

// AttachmentURLs decodes the attachments column.
func (s *CertifiedStock) AttachmentURLs() []string {
	var urls []string
	if len(s.Attachments) == 0 {
		return urls
	}
	_ = json.Unmarshal(s.Attachments, &urls)
	return urls
}

// AddAttachment appends url to the attachments column.
func (s *CertifiedStock) AddAttachment(url string) error {
	urls := append(s.AttachmentURLs(), url)
	b, err := json.Marshal(urls)
	if err != nil {
		return err
	}
	s.Attachments = datatypes.JSON(b)
	return nil
}

// JewelleryStock is a finished piece.
type JewelleryStock struct {
	Record
	Code         string `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name         string `gorm:"size:100" json:"name"`
	Category     string `gorm:"size:50" json:"category"`
	MetalType    string `gorm:"size:30" json:"metalType"`
	Purity       string `gorm:"size:10" json:"purity"`
	GrossWeight  Number `json:"grossWeight"`
	NetWeight    Number `json:"netWeight"`
	StoneWeight  Number `json:"stoneWeight"`
	StoneDetails string `json:"stoneDetails"`
	Pieces       Number `json:"pieces"`
	CostPrice    Number `json:"costPrice"`
	SellingPrice Number `json:"sellingPrice"`
	Location     string `gorm:"size:30" json:"location"`
	Notes        string `json:"notes"`
}

func (JewelleryStock) TableName() string       { return "jewellery_stocks" }
func (JewelleryStock) CodeTemplate() string    { return "JW-#####" }
func (s *JewelleryStock) GetCode() string      { return s.Code }
func (s *JewelleryStock) SetCode(code string)  { s.Code = code }
func (s *JewelleryStock) StockWeight() float64 { return s.GrossWeight.Float() }
func (s *JewelleryStock) StockCost() float64   { return s.CostPrice.Float() }
func (s *JewelleryStock) StockValue() float64  { return s.SellingPrice.Float() }

// StockItem is implemented by every stock record and feeds the stock summary.
type StockItem interface {
	StockWeight() float64
	StockCost() float64
	StockValue() float64
}

// StockSummary is the totals strip shown above each stock table.
type StockSummary struct {
	TotalItems  int     `json:"totalItems"`
	TotalWeight float64 `json:"totalWeight"`
	TotalCost   float64 `json:"totalCost"`
	TotalValue  float64 `json:"totalValue"`
}
