// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/viacell/comissoes-service/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// RoleRepository defines operations for roles
type RoleRepository interface {
	ByID(ctx context.Context, id uint) (*models.Role, error)
	ByName(ctx context.Context, name string) (*models.Role, error)
	Save(ctx context.Context, role *models.Role) error
}

// UserRepository defines operations for users
type UserRepository interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	ListActive(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// CommissionRuleRepository defines operations for commission rules
type CommissionRuleRepository interface {
	ByID(ctx context.Context, id uint) (*models.CommissionRule, error)
	Save(ctx context.Context, rule *models.CommissionRule) error
	SaveBatch(ctx context.Context, rules []*models.CommissionRule) error
	// ListActiveForRole returns the rules of a role whose validity window
	// overlaps the inclusive [start, end] period, newest-created first.
	ListActiveForRole(ctx context.Context, roleID uint, start, end time.Time) ([]*models.CommissionRule, error)
	ByFilter(ctx context.Context, filter models.CommissionRuleFilter, orderBy string, limit, offset int) ([]*models.CommissionRule, error)
}

// SaleRepository defines read operations over the POS sales tables
type SaleRepository interface {
	// ListByUserInPeriod returns a user's sales with line items, variations
	// and products preloaded, for gross-profit and service-count rules.
	ListByUserInPeriod(ctx context.Context, userID uint, start, end time.Time) ([]*models.Sale, error)
}

// RepairRepository defines read operations over the POS repairs table
type RepairRepository interface {
	// ListFinishedByTechnicianInPeriod returns repairs with status Finalizado
	// whose updated_at falls within the inclusive [start, end] period.
	ListFinishedByTechnicianInPeriod(ctx context.Context, technicianID uint, start, end time.Time) ([]*models.Repair, error)
}

// PayoutWithUser is a payout row joined with the paying user's display name.
type PayoutWithUser struct {
	models.CommissionPayout
	UserName string `json:"user_name"`
}

// CommissionPayoutRepository defines operations for the payout ledger
type CommissionPayoutRepository interface {
	ByID(ctx context.Context, id uint) (*models.CommissionPayout, error)
	Save(ctx context.Context, payout *models.CommissionPayout) error
	Update(ctx context.Context, payout *models.CommissionPayout) error
	// Delete removes a payout by id and reports whether a row was deleted.
	Delete(ctx context.Context, id uint) (bool, error)
	// ListWithUser returns all payouts joined with the user's name, ordered
	// by payout_date descending.
	ListWithUser(ctx context.Context) ([]*PayoutWithUser, error)
	ByFilter(ctx context.Context, filter models.CommissionPayoutFilter, orderBy string, limit, offset int) ([]*models.CommissionPayout, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	ByID(ctx context.Context, id uint) (*models.AuditLog, error)
	Save(ctx context.Context, entry *models.AuditLog) error
	ListByEntity(ctx context.Context, entityType string, entityID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByActor(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
