package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/mock_cart/internal/domain"
	"github.com/Skotchmaster/mock_cart/internal/models"
)

func (r *GormRepo) LoadCart(ctx context.Context, owner domain.CartIdentity) (*domain.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("owner_id = ?", string(owner)).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainCart(&cart), nil
}

// MutateCart loads the owner's cart under a row lock, applies fn and writes
// the resulting lines back in the same transaction. Nothing is written when
// fn fails. With create set, a missing cart is created empty first.
func (r *GormRepo) MutateCart(ctx context.Context, owner domain.CartIdentity, create bool, fn func(*domain.Cart) error) (*domain.Cart, error) {
	var out *domain.Cart
	err := r.withLockedCart(ctx, owner, create, func(tx *gorm.DB, row *models.Cart, cart *domain.Cart) error {
		if err := fn(cart); err != nil {
			return err
		}
		if err := saveCart(tx, row, cart); err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CheckoutCart is MutateCart for checkout: the emptied cart and the receipt
// returned by fn are committed together or not at all.
func (r *GormRepo) CheckoutCart(ctx context.Context, owner domain.CartIdentity, fn func(*domain.Cart) (*domain.Receipt, error)) (*domain.Receipt, error) {
	var out *domain.Receipt
	err := r.withLockedCart(ctx, owner, false, func(tx *gorm.DB, row *models.Cart, cart *domain.Cart) error {
		receipt, err := fn(cart)
		if err != nil {
			return err
		}
		if err := saveCart(tx, row, cart); err != nil {
			return err
		}
		rec := toReceiptRow(owner, receipt)
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		out = receipt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) withLockedCart(ctx context.Context, owner domain.CartIdentity, create bool, fn func(tx *gorm.DB, row *models.Cart, cart *domain.Cart) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockCart(tx, owner, create)
		if err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", row.ID).Order("position ASC").Find(&row.Items).Error; err != nil {
			return err
		}
		return fn(tx, row, toDomainCart(row))
	})
}

func lockCart(tx *gorm.DB, owner domain.CartIdentity, create bool) (*models.Cart, error) {
	var row models.Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ?", string(owner)).
		First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !create {
		return nil, ErrCartNotFound
	}

	fresh := models.Cart{OwnerID: string(owner)}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, err
	}

	// another writer may have won the insert; lock whatever row exists now
	var locked models.Cart
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ?", string(owner)).
		First(&locked).Error; err != nil {
		return nil, err
	}
	return &locked, nil
}

func saveCart(tx *gorm.DB, row *models.Cart, cart *domain.Cart) error {
	if err := tx.Where("cart_id = ?", row.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	items := toCartItemRows(row, cart.Items)
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	if err := tx.Model(&models.Cart{}).Where("id = ?", row.ID).Update("updated_at", now).Error; err != nil {
		return err
	}

	cart.CreatedAt = row.CreatedAt
	cart.UpdatedAt = now
	return nil
}
