package businessflow

import (
	"log"

	"github.com/shopspring/decimal"
	"github.com/viacell/comissoes-service/app/dto"
	"github.com/viacell/comissoes-service/models"
)

// CommissionDataset is the bulk-fetched activity of one user for one period.
// It is fetched once and shared by every rule evaluation, so adding rules
// never adds queries.
type CommissionDataset struct {
	Sales   []*models.Sale
	Repairs []*models.Repair
}

// TotalSales sums sale totals across the dataset.
func (ds *CommissionDataset) TotalSales() decimal.Decimal {
	total := decimal.Zero
	for _, s := range ds.Sales {
		total = total.Add(decimal.NewFromFloat(s.TotalAmount))
	}
	return total
}

// TotalGrossProfit sums (unit_price - cost_price) * quantity across every
// sale line item.
func (ds *CommissionDataset) TotalGrossProfit() decimal.Decimal {
	total := decimal.Zero
	for _, s := range ds.Sales {
		for _, item := range s.Items {
			unit := decimal.NewFromFloat(item.UnitPrice)
			cost := decimal.NewFromFloat(item.ProductVariation.CostPrice)
			qty := decimal.NewFromInt(int64(item.Quantity))
			total = total.Add(unit.Sub(cost).Mul(qty))
		}
	}
	return total
}

// ServiceItemCount sums quantities of line items whose product is a service.
func (ds *CommissionDataset) ServiceItemCount() decimal.Decimal {
	count := decimal.Zero
	for _, s := range ds.Sales {
		for _, item := range s.Items {
			if item.ProductVariation.Product.ProductType == models.ProductTypeService {
				count = count.Add(decimal.NewFromInt(int64(item.Quantity)))
			}
		}
	}
	return count
}

// FinishedRepairCount counts the fetched finished repairs.
func (ds *CommissionDataset) FinishedRepairCount() decimal.Decimal {
	return decimal.NewFromInt(int64(len(ds.Repairs)))
}

// EvaluationResult is the outcome of applying a rule set to a dataset.
type EvaluationResult struct {
	TotalCommission float64
	Details         []dto.CommissionDetailDTO
}

type ruleKey struct {
	appliesTo      string
	commissionType string
}

// ruleStrategy computes (base, commission) for one rule against the dataset.
type ruleStrategy func(ds *CommissionDataset, value decimal.Decimal) (base, commission decimal.Decimal)

// ruleStrategies is the exhaustive mapping of supported
// (applies_to, commission_type) pairs. Rules with an unmapped pair are
// logged and skipped: they contribute nothing and produce no detail line.
var ruleStrategies = map[ruleKey]ruleStrategy{
	{models.AppliesToSales, models.CommissionTypePercentageOfSale}: func(ds *CommissionDataset, value decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
		base := ds.TotalSales()
		return base, base.Mul(value)
	},
	{models.AppliesToRepairs, models.CommissionTypeFixedPerService}: func(ds *CommissionDataset, value decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
		base := ds.FinishedRepairCount()
		return base, base.Mul(value)
	},
	{models.AppliesToSales, models.CommissionTypePercentageOfGrossProfit}: func(ds *CommissionDataset, value decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
		base := ds.TotalGrossProfit()
		return base, base.Mul(value)
	},
	{models.AppliesToSales, models.CommissionTypeFixedPerServiceType}: func(ds *CommissionDataset, value decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
		base := ds.ServiceItemCount()
		return base, base.Mul(value)
	},
}

// EvaluateRules is the single canonical rule evaluation: every endpoint that
// reports commissions goes through it. Rules are evaluated in the order
// given (newest-created first, per repository contract) and summed; the total
// always equals the rounded sum of the detail amounts.
func EvaluateRules(rules []*models.CommissionRule, ds *CommissionDataset) EvaluationResult {
	total := decimal.Zero
	details := make([]dto.CommissionDetailDTO, 0, len(rules))

	for _, rule := range rules {
		strategy, ok := ruleStrategies[ruleKey{rule.AppliesTo, rule.CommissionType}]
		if !ok {
			log.Printf("Commission rule %d has unsupported combination (%s, %s), skipping", rule.ID, rule.AppliesTo, rule.CommissionType)
			continue
		}

		base, commission := strategy(ds, decimal.NewFromFloat(rule.Value))
		amount := commission.Round(2)
		total = total.Add(amount)

		details = append(details, dto.CommissionDetailDTO{
			Rule:      rule.CommissionType,
			AppliesTo: rule.AppliesTo,
			Amount:    amount.InexactFloat64(),
			BaseValue: base.InexactFloat64(),
		})
	}

	return EvaluationResult{
		TotalCommission: total.Round(2).InexactFloat64(),
		Details:         details,
	}
}
