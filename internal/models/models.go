package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"                          json:"id"`
	OwnerID   string     `gorm:"uniqueIndex;not null"                          json:"owner_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"                       json:"id"`
	CartID    uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID int64           `gorm:"uniqueIndex:idx_cart_product;not null"      json:"product_id"`
	Position  int             `gorm:"not null"                                   json:"position"`
	Name      string          `gorm:"not null"                                   json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"                json:"price"`
	Image     string          `json:"image"`
	Qty       int             `gorm:"not null;check:qty>0"                       json:"qty"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name        string          `gorm:"not null;index"                 json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"price"`
	Description string          `json:"description"`
	Images      []string        `gorm:"type:text;serializer:json"      json:"images"`
	Category    Category        `gorm:"type:text;serializer:json"      json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Receipt struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"                             json:"id"`
	OrderID       string          `gorm:"uniqueIndex;not null"                             json:"order_id"`
	OwnerID       string          `gorm:"index;not null"                                   json:"owner_id"`
	CustomerName  string          `gorm:"not null"                                         json:"customer_name"`
	CustomerEmail string          `gorm:"not null"                                         json:"customer_email"`
	ItemsCount    int             `gorm:"not null"                                         json:"items_count"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null"                      json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:numeric(12,2);not null"                      json:"tax"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null"                      json:"total"`
	Items         []ReceiptItem   `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time       `gorm:"not null"                                         json:"created_at"`
}

type ReceiptItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"        json:"id"`
	ReceiptID uuid.UUID       `gorm:"type:uuid;index;not null"    json:"receipt_id"`
	Position  int             `gorm:"not null"                    json:"position"`
	ProductID int64           `gorm:"not null"                    json:"product_id"`
	Name      string          `gorm:"not null"                    json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Image     string          `json:"image"`
	Qty       int             `gorm:"not null"                    json:"qty"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (i *ReceiptItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (Cart) TableName() string        { return "carts" }
func (CartItem) TableName() string    { return "cart_items" }
func (Product) TableName() string     { return "products" }
func (Receipt) TableName() string     { return "receipts" }
func (ReceiptItem) TableName() string { return "receipt_items" }

func All() []any {
	return []any{&Product{}, &Cart{}, &CartItem{}, &Receipt{}, &ReceiptItem{}}
}
