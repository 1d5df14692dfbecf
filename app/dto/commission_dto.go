package dto

// CalculateCommissionRequest carries the calculator's query parameters.
// Dates are ISO dates; the period is inclusive on both ends.
type CalculateCommissionRequest struct {
	UserID    uint   `query:"user_id" json:"user_id" validate:"required"`
	StartDate string `query:"start_date" json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `query:"end_date" json:"end_date" validate:"required,datetime=2006-01-02"`
}

// CommissionDetailDTO is one breakdown line explaining how a rule contributed.
type CommissionDetailDTO struct {
	Rule      string  `json:"rule"`
	AppliesTo string  `json:"applies_to"`
	Amount    float64 `json:"amount"`
	BaseValue float64 `json:"base_value"`
}

// CalculateCommissionResponse is the calculator's primary response shape.
type CalculateCommissionResponse struct {
	UserID          uint                  `json:"user_id"`
	UserName        string                `json:"user_name"`
	RoleName        string                `json:"role_name"`
	Period          string                `json:"period"`
	TotalCommission float64               `json:"total_commission"`
	Details         []CommissionDetailDTO `json:"details"`
}

// CalculatedCommissionsResponse is the legacy listing shape kept for the
// /calculated endpoint; it reports the same evaluation as /calculate.
type CalculatedCommissionsResponse struct {
	UserID          uint                  `json:"user_id"`
	UserName        string                `json:"user_name"`
	RoleName        string                `json:"role_name"`
	Period          string                `json:"period"`
	Items           []CommissionDetailDTO `json:"items"`
	TotalCommission float64               `json:"total_commission"`
}
