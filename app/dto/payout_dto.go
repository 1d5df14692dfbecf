package dto

// CreatePayoutRequest records a manual commission disbursement.
type CreatePayoutRequest struct {
	UserID      uint    `json:"user_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	PeriodStart string  `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string  `json:"period_end" validate:"required,datetime=2006-01-02"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdatePayoutRequest replaces every field of an existing payout.
type UpdatePayoutRequest struct {
	UserID      uint    `json:"user_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	PayoutDate  string  `json:"payout_date" validate:"required,datetime=2006-01-02"`
	PeriodStart string  `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string  `json:"period_end" validate:"required,datetime=2006-01-02"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// PayoutDTO is the wire representation of a recorded payout.
type PayoutDTO struct {
	ID          uint    `json:"id"`
	UserID      uint    `json:"user_id"`
	UserName    string  `json:"user_name,omitempty"`
	Amount      float64 `json:"amount"`
	PayoutDate  string  `json:"payout_date"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	Notes       *string `json:"notes,omitempty"`
	CreatedBy   uint    `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
}

// ListPayoutsResponse wraps the payout ledger listing.
type ListPayoutsResponse struct {
	Items []PayoutDTO `json:"items"`
}
