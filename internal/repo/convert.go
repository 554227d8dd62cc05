package repo

import (
	"github.com/Skotchmaster/mock_cart/internal/domain"
	"github.com/Skotchmaster/mock_cart/internal/models"
)

func toDomainCart(m *models.Cart) *domain.Cart {
	cart := &domain.Cart{
		OwnerID:   domain.CartIdentity(m.OwnerID),
		Items:     make([]domain.LineItem, 0, len(m.Items)),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, it := range m.Items {
		cart.Items = append(cart.Items, domain.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Qty:       it.Qty,
		})
	}
	return cart
}

func toCartItemRows(cart *models.Cart, items []domain.LineItem) []models.CartItem {
	rows := make([]models.CartItem, 0, len(items))
	for i, it := range items {
		rows = append(rows, models.CartItem{
			CartID:    cart.ID,
			ProductID: it.ProductID,
			Position:  i,
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Qty:       it.Qty,
		})
	}
	return rows
}

func toDomainProduct(m *models.Product) domain.Product {
	images := m.Images
	if images == nil {
		images = []string{}
	}
	return domain.Product{
		ID:          m.ID,
		Name:        m.Name,
		Price:       m.Price,
		Description: m.Description,
		Images:      images,
		Category:    domain.Category{ID: m.Category.ID, Name: m.Category.Name},
	}
}

func toProductRow(p domain.Product) models.Product {
	return models.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Images:      p.Images,
		Category:    models.Category{ID: p.Category.ID, Name: p.Category.Name},
	}
}

func toReceiptRow(owner domain.CartIdentity, r *domain.Receipt) models.Receipt {
	row := models.Receipt{
		OrderID:       r.OrderID,
		OwnerID:       string(owner),
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		ItemsCount:    r.ItemsCount,
		Subtotal:      r.Subtotal,
		Tax:           r.Tax,
		Total:         r.Total,
		CreatedAt:     r.Timestamp,
		Items:         make([]models.ReceiptItem, 0, len(r.Items)),
	}
	for i, it := range r.Items {
		row.Items = append(row.Items, models.ReceiptItem{
			Position:  i,
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Qty:       it.Qty,
		})
	}
	return row
}

func toDomainReceipt(m *models.Receipt) *domain.Receipt {
	r := &domain.Receipt{
		OrderID:       m.OrderID,
		CustomerName:  m.CustomerName,
		CustomerEmail: m.CustomerEmail,
		ItemsCount:    m.ItemsCount,
		Subtotal:      m.Subtotal,
		Tax:           m.Tax,
		Total:         m.Total,
		Timestamp:     m.CreatedAt,
		Items:         make([]domain.LineItem, 0, len(m.Items)),
	}
	for _, it := range m.Items {
		r.Items = append(r.Items, domain.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Qty:       it.Qty,
		})
	}
	return r
}
