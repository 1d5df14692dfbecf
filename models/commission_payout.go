package models

import (
	"time"
)

// CommissionPayout is a manually recorded disbursement of commission to a
// user. It is independent of any calculated total: recording a payout never
// derives from the calculator's output.
type CommissionPayout struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Amount      float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	PayoutDate  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"payout_date"`
	PeriodStart time.Time `gorm:"not null" json:"period_start"`
	PeriodEnd   time.Time `gorm:"not null" json:"period_end"`
	Notes       *string   `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

func (CommissionPayout) TableName() string {
	return "commission_payouts"
}

// CommissionPayoutFilter represents filter criteria for payout queries
type CommissionPayoutFilter struct {
	ID         *uint      `json:"id,omitempty"`
	UserID     *uint      `json:"user_id,omitempty"`
	CreatedBy  *uint      `json:"created_by,omitempty"`
	PaidAfter  *time.Time `json:"paid_after,omitempty"`
	PaidBefore *time.Time `json:"paid_before,omitempty"`
}
