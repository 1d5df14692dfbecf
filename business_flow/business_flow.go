// Package businessflow contains the business logic for the commission service.
package businessflow

import (
	"time"

	"github.com/viacell/comissoes-service/app/dto"
	"github.com/viacell/comissoes-service/repository"
	"github.com/viacell/comissoes-service/utils"
)

// Actor identifies the authenticated user performing a mutation, for audit
// attribution. Handlers build it from the token claims.
type Actor struct {
	ID   uint
	Name string
}

// ClientMetadata holds client-related information for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// Period is an inclusive [Start, End] calculation window. End covers its
// whole closing day.
type Period struct {
	Start time.Time
	End   time.Time
}

// ParsePeriod parses ISO date bounds into an inclusive period and enforces
// ordering. The upper bound is extended to the end of its day so sales and
// repairs timestamped during the closing day are included.
func ParsePeriod(startDate, endDate string) (Period, error) {
	start, err := time.ParseInLocation(utils.DateLayout, startDate, time.UTC)
	if err != nil {
		return Period{}, NewBusinessError("INVALID_DATE_FORMAT", "As datas devem estar no formato AAAA-MM-DD.", ErrInvalidDateFormat)
	}
	end, err := time.ParseInLocation(utils.DateLayout, endDate, time.UTC)
	if err != nil {
		return Period{}, NewBusinessError("INVALID_DATE_FORMAT", "As datas devem estar no formato AAAA-MM-DD.", ErrInvalidDateFormat)
	}
	if start.After(end) {
		return Period{}, NewBusinessError("INVALID_PERIOD", "A data inicial não pode ser posterior à data final.", ErrStartDateAfterEndDate)
	}
	return Period{Start: start, End: utils.EndOfDay(end)}, nil
}

// Label formats the period the way the POS front office displays it.
func (p Period) Label() string {
	return p.Start.Format(utils.DateLayout) + " a " + p.End.Format(utils.DateLayout)
}

// ToPayoutDTO converts a payout model row to its wire representation
func ToPayoutDTO(row *repository.PayoutWithUser) dto.PayoutDTO {
	return dto.PayoutDTO{
		ID:          row.ID,
		UserID:      row.UserID,
		UserName:    row.UserName,
		Amount:      row.Amount,
		PayoutDate:  row.PayoutDate.Format(utils.DateLayout),
		PeriodStart: row.PeriodStart.Format(utils.DateLayout),
		PeriodEnd:   row.PeriodEnd.Format(utils.DateLayout),
		Notes:       row.Notes,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt.Format(time.RFC3339),
	}
}
