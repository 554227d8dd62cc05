package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/mock_cart/internal/domain"
	"github.com/Skotchmaster/mock_cart/internal/models"
)

func (r *GormRepo) FindReceipt(ctx context.Context, orderID string) (*domain.Receipt, error) {
	var rec models.Receipt
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("order_id = ?", orderID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainReceipt(&rec), nil
}
