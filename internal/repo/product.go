package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/mock_cart/internal/catalog"
	"github.com/Skotchmaster/mock_cart/internal/domain"
	"github.com/Skotchmaster/mock_cart/internal/models"
)

func (r *GormRepo) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Product{}, catalog.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return toDomainProduct(&product), nil
}

func (r *GormRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []models.Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainProduct(&rows[i]))
	}
	return out, nil
}

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// InsertProducts skips ids that already exist so concurrent seeders do not collide.
func (r *GormRepo) InsertProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]models.Product, 0, len(products))
	for _, p := range products {
		rows = append(rows, toProductRow(p))
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&rows).Error
}

func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []domain.Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	where := "LOWER(name) LIKE ? OR LOWER(description) LIKE ?"

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where(where, pattern, pattern).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var rows []models.Product
	if err := r.DB.WithContext(ctx).
		Where(where, pattern, pattern).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return 0, nil, err
	}

	out := make([]domain.Product, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainProduct(&rows[i]))
	}
	return total, out, nil
}
