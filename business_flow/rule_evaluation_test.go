package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viacell/comissoes-service/models"
)

func saleWithItems(total float64, items ...models.SaleItem) *models.Sale {
	return &models.Sale{TotalAmount: total, Items: items}
}

func serviceItem(quantity int, unitPrice, costPrice float64) models.SaleItem {
	return models.SaleItem{
		Quantity:  quantity,
		UnitPrice: unitPrice,
		ProductVariation: models.ProductVariation{
			CostPrice: costPrice,
			Product:   models.Product{ProductType: models.ProductTypeService},
		},
	}
}

func productItem(quantity int, unitPrice, costPrice float64) models.SaleItem {
	return models.SaleItem{
		Quantity:  quantity,
		UnitPrice: unitPrice,
		ProductVariation: models.ProductVariation{
			CostPrice: costPrice,
			Product:   models.Product{ProductType: models.ProductTypeProduct},
		},
	}
}

func TestEvaluateRulesEmptyRuleSet(t *testing.T) {
	ds := &CommissionDataset{
		Sales: []*models.Sale{saleWithItems(500)},
	}

	result := EvaluateRules(nil, ds)

	assert.Equal(t, 0.0, result.TotalCommission)
	assert.Empty(t, result.Details)
	assert.NotNil(t, result.Details)
}

func TestEvaluateRulesPercentageOfSale(t *testing.T) {
	ds := &CommissionDataset{
		Sales: []*models.Sale{saleWithItems(600), saleWithItems(400)},
	}
	rules := []*models.CommissionRule{
		{ID: 1, AppliesTo: models.AppliesToSales, CommissionType: models.CommissionTypePercentageOfSale, Value: 0.05},
	}

	result := EvaluateRules(rules, ds)

	require.Len(t, result.Details, 1)
	assert.Equal(t, 50.0, result.TotalCommission)
	assert.Equal(t, 50.0, result.Details[0].Amount)
	assert.Equal(t, 1000.0, result.Details[0].BaseValue)
	assert.Equal(t, models.CommissionTypePercentageOfSale, result.Details[0].Rule)
	assert.Equal(t, models.AppliesToSales, result.Details[0].AppliesTo)
}

func TestEvaluateRulesFixedPerFinishedRepair(t *testing.T) {
	ds := &CommissionDataset{
		Repairs: []*models.Repair{
			{Status: models.RepairStatusFinalizado},
			{Status: models.RepairStatusFinalizado},
			{Status: models.RepairStatusFinalizado},
		},
	}
	rules := []*models.CommissionRule{
		{ID: 2, AppliesTo: models.AppliesToRepairs, CommissionType: models.CommissionTypeFixedPerService, Value: 20},
	}

	result := EvaluateRules(rules, ds)

	require.Len(t, result.Details, 1)
	assert.Equal(t, 60.0, result.TotalCommission)
	assert.Equal(t, 3.0, result.Details[0].BaseValue)
}

func TestEvaluateRulesPercentageOfGrossProfit(t *testing.T) {
	// Gross profit: (150-100)*2 + (80-50)*1 = 130
	ds := &CommissionDataset{
		Sales: []*models.Sale{
			saleWithItems(380, productItem(2, 150, 100), productItem(1, 80, 50)),
		},
	}
	rules := []*models.CommissionRule{
		{ID: 3, AppliesTo: models.AppliesToSales, CommissionType: models.CommissionTypePercentageOfGrossProfit, Value: 0.1},
	}

	result := EvaluateRules(rules, ds)

	require.Len(t, result.Details, 1)
	assert.Equal(t, 13.0, result.TotalCommission)
	assert.Equal(t, 130.0, result.Details[0].BaseValue)
}

func TestEvaluateRulesFixedPerServiceType(t *testing.T) {
	// Only service line items count: 2 + 3 = 5 units
	ds := &CommissionDataset{
		Sales: []*models.Sale{
			saleWithItems(0, serviceItem(2, 90, 0), productItem(4, 30, 10)),
			saleWithItems(0, serviceItem(3, 120, 0)),
		},
	}
	rules := []*models.CommissionRule{
		{ID: 4, AppliesTo: models.AppliesToSales, CommissionType: models.CommissionTypeFixedPerServiceType, Value: 7.5},
	}

	result := EvaluateRules(rules, ds)

	require.Len(t, result.Details, 1)
	assert.Equal(t, 37.5, result.TotalCommission)
	assert.Equal(t, 5.0, result.Details[0].BaseValue)
}

func TestEvaluateRulesSkipsUnsupportedCombination(t *testing.T) {
	ds := &CommissionDataset{
		Sales: []*models.Sale{saleWithItems(1000)},
	}
	rules := []*models.CommissionRule{
		// percentage_of_sale over repairs is not a supported pairing
		{ID: 5, AppliesTo: models.AppliesToRepairs, CommissionType: models.CommissionTypePercentageOfSale, Value: 0.5},
		{ID: 6, AppliesTo: models.AppliesToSales, CommissionType: models.CommissionTypePercentageOfSale, Value: 0.1},
	}

	result := EvaluateRules(rules, ds)

	require.Len(t, result.Details, 1)
	assert.Equal(t, 100.0, result.TotalCommission)
}

func TestEvaluateRulesTotalEqualsSumOfDetails(t *testing.T) {
	ds := &CommissionDataset{
		Sales: []*models.Sale{
			saleWithItems(333.33, serviceItem(1, 99.99, 33.33)),
		},
		Repairs: []*models.Repair{
			{Status: models.RepairStatusFinalizado},
		},
	}
	rules := []*models.CommissionRule{
		{ID: 1, AppliesTo: models.AppliesToSales, CommissionType: models.CommissionTypePercentageOfSale, Value: 0.0333},
		{ID: 2, AppliesTo: models.AppliesToRepairs, CommissionType: models.CommissionTypeFixedPerService, Value: 12.345},
		{ID: 3, AppliesTo: models.AppliesToSales, CommissionType: models.CommissionTypePercentageOfGrossProfit, Value: 0.0777},
		{ID: 4, AppliesTo: models.AppliesToSales, CommissionType: models.CommissionTypeFixedPerServiceType, Value: 1.115},
	}

	result := EvaluateRules(rules, ds)

	require.Len(t, result.Details, 4)
	sum := 0.0
	for _, d := range result.Details {
		sum += d.Amount
	}
	assert.InDelta(t, sum, result.TotalCommission, 0.0001)
}

func TestEvaluateRulesZeroActivity(t *testing.T) {
	ds := &CommissionDataset{}
	rules := []*models.CommissionRule{
		{ID: 1, AppliesTo: models.AppliesToSales, CommissionType: models.CommissionTypePercentageOfSale, Value: 0.1},
	}

	result := EvaluateRules(rules, ds)

	require.Len(t, result.Details, 1)
	assert.Equal(t, 0.0, result.TotalCommission)
	assert.Equal(t, 0.0, result.Details[0].Amount)
}
