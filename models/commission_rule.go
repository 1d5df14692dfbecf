package models

import (
	"time"
)

// Commission rule types: the formula shape applied to the measured base.
const (
	CommissionTypePercentageOfSale        = "percentage_of_sale"
	CommissionTypeFixedPerService         = "fixed_per_service"
	CommissionTypePercentageOfGrossProfit = "percentage_of_gross_profit"
	CommissionTypeFixedPerServiceType     = "fixed_per_service_type"
)

// Activity domains a rule measures.
const (
	AppliesToSales   = "sales"
	AppliesToRepairs = "repairs"
)

// CommissionRule is a role-scoped, time-windowed formula for computing
// commission from sales or repair activity. A nil StartDate/EndDate means the
// window is unbounded on that side.
type CommissionRule struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID         uint       `gorm:"not null;index" json:"role_id"`
	CommissionType string     `gorm:"type:varchar(40);not null" json:"commission_type"`
	AppliesTo      string     `gorm:"type:varchar(20);not null" json:"applies_to"`
	Value          float64    `gorm:"type:decimal(12,4);not null" json:"value"`
	StartDate      *time.Time `gorm:"index" json:"start_date,omitempty"`
	EndDate        *time.Time `gorm:"index" json:"end_date,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Role Role `gorm:"foreignKey:RoleID;references:ID" json:"role,omitempty"`
}

func (CommissionRule) TableName() string {
	return "commission_rules"
}

// OverlapsPeriod reports whether the rule's validity window overlaps the
// inclusive [start, end] query period. Bounds are inclusive and a nil bound is
// treated as unbounded.
func (r *CommissionRule) OverlapsPeriod(start, end time.Time) bool {
	if r.StartDate != nil && r.StartDate.After(end) {
		return false
	}
	if r.EndDate != nil && r.EndDate.Before(start) {
		return false
	}
	return true
}

// CommissionRuleFilter represents filter criteria for commission rule queries
type CommissionRuleFilter struct {
	ID             *uint    `json:"id,omitempty"`
	RoleID         *uint    `json:"role_id,omitempty"`
	CommissionType *string  `json:"commission_type,omitempty"`
	AppliesTo      *string  `json:"applies_to,omitempty"`
	Value          *float64 `json:"value,omitempty"`
}
