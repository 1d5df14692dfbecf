package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/viacell/comissoes-service/models"
	"gorm.io/gorm"
)

// SaleRepositoryImpl implements SaleRepository interface
type SaleRepositoryImpl struct {
	*BaseRepository[models.Sale, models.SaleFilter]
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &SaleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Sale, models.SaleFilter](db),
	}
}

// ListByUserInPeriod returns a user's sales in the inclusive [start, end]
// period. Line items are preloaded down to the product so the evaluator can
// compute gross profit and count service items without further queries.
func (r *SaleRepositoryImpl) ListByUserInPeriod(ctx context.Context, userID uint, start, end time.Time) ([]*models.Sale, error) {
	db := r.getDB(ctx)

	var sales []*models.Sale
	err := db.Where("user_id = ? AND sale_date >= ? AND sale_date <= ?", userID, start, end).
		Order("sale_date").
		Preload("Items.ProductVariation.Product").
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sales for user %d: %w", userID, err)
	}
	return sales, nil
}
