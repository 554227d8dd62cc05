package transport

import (
	"time"

	"github.com/Skotchmaster/mock_cart/internal/domain"
	"github.com/Skotchmaster/mock_cart/internal/pricing"
)

type CartItemRequest struct {
	ProductID *int64 `json:"productId"`
	Qty       *int   `json:"qty"`
}

type CheckoutRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LineItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Qty       int     `json:"qty"`
}

type CartResponse struct {
	Items    []LineItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Tax      float64    `json:"tax"`
	Total    float64    `json:"total"`
}

type ReceiptResponse struct {
	OrderID       string     `json:"orderId"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	ItemsCount    int        `json:"itemsCount"`
	Items         []LineItem `json:"items"`
	Subtotal      float64    `json:"subtotal"`
	Tax           float64    `json:"tax"`
	Total         float64    `json:"total"`
	Timestamp     time.Time  `json:"timestamp"`
	Message       string     `json:"message"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Category    Category `json:"category"`
}

type SearchMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type SearchResponse struct {
	Data []Product  `json:"data"`
	Meta SearchMeta `json:"meta"`
}

func FromSnapshot(s pricing.Snapshot) CartResponse {
	return CartResponse{
		Items:    fromLineItems(s.Items),
		Subtotal: s.Subtotal.InexactFloat64(),
		Tax:      s.Tax.InexactFloat64(),
		Total:    s.Total.InexactFloat64(),
	}
}

func FromReceipt(r *domain.Receipt) ReceiptResponse {
	return ReceiptResponse{
		OrderID:       r.OrderID,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		ItemsCount:    r.ItemsCount,
		Items:         fromLineItems(r.Items),
		Subtotal:      r.Subtotal.InexactFloat64(),
		Tax:           r.Tax.InexactFloat64(),
		Total:         r.Total.InexactFloat64(),
		Timestamp:     r.Timestamp,
		Message:       domain.ReceiptMessage,
	}
}

func FromProduct(p domain.Product) Product {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.InexactFloat64(),
		Description: p.Description,
		Images:      images,
		Category:    Category{ID: p.Category.ID, Name: p.Category.Name},
	}
}

func FromProducts(ps []domain.Product) []Product {
	out := make([]Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromProduct(p))
	}
	return out
}

func fromLineItems(items []domain.LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.InexactFloat64(),
			Image:     it.Image,
			Qty:       it.Qty,
		})
	}
	return out
}
