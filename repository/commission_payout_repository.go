package repository

import (
	"context"
	"fmt"

	"github.com/viacell/comissoes-service/models"
	"gorm.io/gorm"
)

// CommissionPayoutRepositoryImpl implements CommissionPayoutRepository interface
type CommissionPayoutRepositoryImpl struct {
	*BaseRepository[models.CommissionPayout, models.CommissionPayoutFilter]
}

// NewCommissionPayoutRepository creates a new commission payout repository
func NewCommissionPayoutRepository(db *gorm.DB) CommissionPayoutRepository {
	return &CommissionPayoutRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CommissionPayout, models.CommissionPayoutFilter](db),
	}
}

// Delete removes a payout by id and reports whether a row was deleted.
func (r *CommissionPayoutRepositoryImpl) Delete(ctx context.Context, id uint) (bool, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	res := db.Delete(&models.CommissionPayout{}, id)
	if res.Error != nil {
		err = fmt.Errorf("failed to delete payout %d: %w", id, res.Error)
		return false, err
	}
	return res.RowsAffected > 0, nil
}

// ListWithUser returns all payouts joined with the paying user's display name,
// ordered by payout_date descending.
func (r *CommissionPayoutRepositoryImpl) ListWithUser(ctx context.Context) ([]*PayoutWithUser, error) {
	db := r.getDB(ctx)

	var rows []*PayoutWithUser
	err := db.Model(&models.CommissionPayout{}).
		Select("commission_payouts.*, users.name AS user_name").
		Joins("JOIN users ON users.id = commission_payouts.user_id").
		Order("commission_payouts.payout_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	return rows, nil
}

// ByFilter retrieves payouts based on filter criteria
func (r *CommissionPayoutRepositoryImpl) ByFilter(ctx context.Context, filter models.CommissionPayoutFilter, orderBy string, limit, offset int) ([]*models.CommissionPayout, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.CommissionPayout{})
	query = r.applyFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("payout_date DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var payouts []*models.CommissionPayout
	if err := query.Find(&payouts).Error; err != nil {
		return nil, fmt.Errorf("failed to list payouts by filter: %w", err)
	}
	return payouts, nil
}

// applyFilter applies the filter to the query
func (r *CommissionPayoutRepositoryImpl) applyFilter(query *gorm.DB, filter models.CommissionPayoutFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.PaidAfter != nil {
		query = query.Where("payout_date >= ?", *filter.PaidAfter)
	}
	if filter.PaidBefore != nil {
		query = query.Where("payout_date <= ?", *filter.PaidBefore)
	}
	return query
}
