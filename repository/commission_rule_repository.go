package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/viacell/comissoes-service/models"
	"gorm.io/gorm"
)

// CommissionRuleRepositoryImpl implements CommissionRuleRepository interface
type CommissionRuleRepositoryImpl struct {
	*BaseRepository[models.CommissionRule, models.CommissionRuleFilter]
}

// NewCommissionRuleRepository creates a new commission rule repository
func NewCommissionRuleRepository(db *gorm.DB) CommissionRuleRepository {
	return &CommissionRuleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CommissionRule, models.CommissionRuleFilter](db),
	}
}

// ListActiveForRole returns the rules of a role whose validity window overlaps
// the inclusive [start, end] period. A null bound is unbounded on that side.
// Newest-created rules come first; that order drives the breakdown listing.
func (r *CommissionRuleRepositoryImpl) ListActiveForRole(ctx context.Context, roleID uint, start, end time.Time) ([]*models.CommissionRule, error) {
	db := r.getDB(ctx)

	var rules []*models.CommissionRule
	err := db.Where("role_id = ?", roleID).
		Where("start_date IS NULL OR start_date <= ?", end).
		Where("end_date IS NULL OR end_date >= ?", start).
		Order("created_at DESC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active commission rules for role %d: %w", roleID, err)
	}
	return rules, nil
}

// ByFilter retrieves commission rules based on filter criteria
func (r *CommissionRuleRepositoryImpl) ByFilter(ctx context.Context, filter models.CommissionRuleFilter, orderBy string, limit, offset int) ([]*models.CommissionRule, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.CommissionRule{})
	query = r.applyFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("created_at DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rules []*models.CommissionRule
	if err := query.Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list commission rules by filter: %w", err)
	}
	return rules, nil
}

// applyFilter applies the filter to the query
func (r *CommissionRuleRepositoryImpl) applyFilter(query *gorm.DB, filter models.CommissionRuleFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.RoleID != nil {
		query = query.Where("role_id = ?", *filter.RoleID)
	}
	if filter.CommissionType != nil {
		query = query.Where("commission_type = ?", *filter.CommissionType)
	}
	if filter.AppliesTo != nil {
		query = query.Where("applies_to = ?", *filter.AppliesTo)
	}
	if filter.Value != nil {
		query = query.Where("value = ?", *filter.Value)
	}
	return query
}
