package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/mock_cart/internal/models"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrReceiptNotFound = errors.New("receipt not found")
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate() error {
	return r.DB.AutoMigrate(models.All()...)
}
