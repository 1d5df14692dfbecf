package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/viacell/comissoes-service/app/dto"
	"github.com/viacell/comissoes-service/models"
	"github.com/viacell/comissoes-service/repository"
	"github.com/viacell/comissoes-service/utils"
)

const calculationCachePrefix = "commission_calculation:"

// CommissionFlow defines the read-only commission calculation use cases.
type CommissionFlow interface {
	CalculateCommission(ctx context.Context, req *dto.CalculateCommissionRequest, metadata *ClientMetadata) (*dto.CalculateCommissionResponse, error)
	ListCalculatedCommissions(ctx context.Context, req *dto.CalculateCommissionRequest, metadata *ClientMetadata) (*dto.CalculatedCommissionsResponse, error)
}

type CommissionFlowImpl struct {
	userRepo   repository.UserRepository
	ruleRepo   repository.CommissionRuleRepository
	saleRepo   repository.SaleRepository
	repairRepo repository.RepairRepository
	rc         *redis.Client
}

// NewCommissionFlow creates a new commission calculation flow. The redis
// client is optional; without it every request recomputes from the store.
func NewCommissionFlow(
	userRepo repository.UserRepository,
	ruleRepo repository.CommissionRuleRepository,
	saleRepo repository.SaleRepository,
	repairRepo repository.RepairRepository,
	rc *redis.Client,
) CommissionFlow {
	return &CommissionFlowImpl{
		userRepo:   userRepo,
		ruleRepo:   ruleRepo,
		saleRepo:   saleRepo,
		repairRepo: repairRepo,
		rc:         rc,
	}
}

// CalculateCommission resolves the user, selects the role's active rules for
// the period, bulk-fetches the user's sales and finished repairs once, and
// reports the evaluated total with an itemized breakdown. Read-only: no
// payout row is ever created here. A cache hit answers before any repository
// work happens.
func (f *CommissionFlowImpl) CalculateCommission(ctx context.Context, req *dto.CalculateCommissionRequest, metadata *ClientMetadata) (*dto.CalculateCommissionResponse, error) {
	period, err := validateCalculationRequest(req)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("%s%d:%s:%s", calculationCachePrefix, req.UserID, req.StartDate, req.EndDate)
	if cached := f.cachedResponse(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	user, rules, dataset, err := f.loadEvaluationInputs(ctx, req.UserID, period)
	if err != nil {
		return nil, err
	}

	result := EvaluateRules(rules, dataset)

	res := &dto.CalculateCommissionResponse{
		UserID:          user.ID,
		UserName:        user.Name,
		RoleName:        user.Role.Name,
		Period:          period.Label(),
		TotalCommission: result.TotalCommission,
		Details:         result.Details,
	}

	f.storeInCache(ctx, cacheKey, res)

	return res, nil
}

// ListCalculatedCommissions serves the legacy listing endpoint. It runs the
// same canonical evaluation over the same bulk dataset as
// CalculateCommission, so the two endpoints can never drift apart.
func (f *CommissionFlowImpl) ListCalculatedCommissions(ctx context.Context, req *dto.CalculateCommissionRequest, metadata *ClientMetadata) (*dto.CalculatedCommissionsResponse, error) {
	period, err := validateCalculationRequest(req)
	if err != nil {
		return nil, err
	}

	user, rules, dataset, err := f.loadEvaluationInputs(ctx, req.UserID, period)
	if err != nil {
		return nil, err
	}

	result := EvaluateRules(rules, dataset)

	return &dto.CalculatedCommissionsResponse{
		UserID:          user.ID,
		UserName:        user.Name,
		RoleName:        user.Role.Name,
		Period:          period.Label(),
		Items:           result.Details,
		TotalCommission: result.TotalCommission,
	}, nil
}

// validateCalculationRequest checks the required fields and parses the
// period. Runs before the cache lookup so malformed requests never hit it.
func validateCalculationRequest(req *dto.CalculateCommissionRequest) (Period, error) {
	if req == nil || req.UserID == 0 || req.StartDate == "" || req.EndDate == "" {
		return Period{}, NewBusinessError("MISSING_REQUIRED_FIELDS", "user_id, start_date e end_date são obrigatórios.", ErrCalculationFieldsRequired)
	}
	return ParsePeriod(req.StartDate, req.EndDate)
}

// loadEvaluationInputs resolves the user and role, then fetches rules plus
// the activity dataset up front.
func (f *CommissionFlowImpl) loadEvaluationInputs(ctx context.Context, userID uint, period Period) (*models.User, []*models.CommissionRule, *CommissionDataset, error) {
	user, err := f.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, nil, nil, NewBusinessError("USER_LOOKUP_FAILED", "Falha ao buscar usuário", err)
	}
	if user == nil {
		return nil, nil, nil, NewBusinessError("USER_NOT_FOUND", "Usuário não encontrado.", ErrUserNotFound)
	}

	rules, err := f.ruleRepo.ListActiveForRole(ctx, user.RoleID, period.Start, period.End)
	if err != nil {
		return nil, nil, nil, NewBusinessError("RULE_FETCH_FAILED", "Falha ao buscar regras de comissão", err)
	}

	sales, err := f.saleRepo.ListByUserInPeriod(ctx, user.ID, period.Start, period.End)
	if err != nil {
		return nil, nil, nil, NewBusinessError("SALES_FETCH_FAILED", "Falha ao buscar vendas do período", err)
	}

	repairs, err := f.repairRepo.ListFinishedByTechnicianInPeriod(ctx, user.ID, period.Start, period.End)
	if err != nil {
		return nil, nil, nil, NewBusinessError("REPAIRS_FETCH_FAILED", "Falha ao buscar reparos do período", err)
	}

	return user, rules, &CommissionDataset{Sales: sales, Repairs: repairs}, nil
}

func (f *CommissionFlowImpl) cachedResponse(ctx context.Context, key string) *dto.CalculateCommissionResponse {
	if f.rc == nil {
		return nil
	}
	payload, err := f.rc.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var res dto.CalculateCommissionResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil
	}
	return &res
}

func (f *CommissionFlowImpl) storeInCache(ctx context.Context, key string, res *dto.CalculateCommissionResponse) {
	if f.rc == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := f.rc.Set(ctx, key, payload, utils.CalculationCacheTTL).Err(); err != nil {
		log.Printf("Failed to cache commission calculation %s: %v", key, err)
	}
}
