package models

import (
	"time"
)

// Product types relevant to commission calculation
const (
	ProductTypeProduct = "product"
	ProductTypeService = "service"
)

// Product is the catalog entry a variation belongs to.
type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	ProductType string    `gorm:"type:varchar(20);not null;default:'product';index" json:"product_type"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductVariation carries the cost price used for gross-profit commission.
type ProductVariation struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Name      string    `gorm:"size:255" json:"name"`
	CostPrice float64   `gorm:"type:decimal(12,2);not null;default:0" json:"cost_price"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Product Product `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
}

func (ProductVariation) TableName() string {
	return "product_variations"
}

// Sale is a completed POS sale owned by a user.
type Sale struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	TotalAmount float64   `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	SaleDate    time.Time `gorm:"not null;index" json:"sale_date"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	User  User       `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one line of a sale; UnitPrice is the price snapshot at sale time.
type SaleItem struct {
	ID                 uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	SaleID             uint    `gorm:"not null;index" json:"sale_id"`
	ProductVariationID uint    `gorm:"not null;index" json:"product_variation_id"`
	Quantity           int     `gorm:"not null" json:"quantity"`
	UnitPrice          float64 `gorm:"type:decimal(12,2);not null" json:"unit_price"`

	ProductVariation ProductVariation `gorm:"foreignKey:ProductVariationID;references:ID" json:"product_variation,omitempty"`
}

func (SaleItem) TableName() string {
	return "sale_items"
}

// GrossProfit returns (unit_price - cost_price) * quantity for this line.
func (i *SaleItem) GrossProfit() float64 {
	return (i.UnitPrice - i.ProductVariation.CostPrice) * float64(i.Quantity)
}

// SaleFilter represents filter criteria for sale queries
type SaleFilter struct {
	ID         *uint      `json:"id,omitempty"`
	UserID     *uint      `json:"user_id,omitempty"`
	SoldAfter  *time.Time `json:"sold_after,omitempty"`
	SoldBefore *time.Time `json:"sold_before,omitempty"`
}
