// Package testing provides test utilities and database setup for testing the commission service
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/viacell/comissoes-service/models"
	"github.com/viacell/comissoes-service/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates a test user with the given role name
func (tf *TestFixtures) CreateTestUser(roleName string) (*models.User, error) {
	var role models.Role
	err := tf.DB.DB.Where("name = ?", roleName).Last(&role).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find role %s: %w", roleName, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	suffix := rand.Intn(900000000) + 100000000

	user := &models.User{
		Name:         fmt.Sprintf("Usuário Teste %d", suffix),
		Email:        fmt.Sprintf("teste.%d@example.com", suffix),
		PasswordHash: string(hashedPassword),
		RoleID:       role.ID,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	user.Role = role
	return user, nil
}

// CreateTestCommissionRule creates a rule for the given role
func (tf *TestFixtures) CreateTestCommissionRule(roleID uint, commissionType, appliesTo string, value float64, startDate, endDate *time.Time) (*models.CommissionRule, error) {
	rule := &models.CommissionRule{
		RoleID:         roleID,
		CommissionType: commissionType,
		AppliesTo:      appliesTo,
		Value:          value,
		StartDate:      startDate,
		EndDate:        endDate,
	}

	if err := tf.DB.DB.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create test commission rule: %w", err)
	}

	return rule, nil
}

// CreateTestSale creates a sale with one line item for the given user
func (tf *TestFixtures) CreateTestSale(userID uint, totalAmount float64, saleDate time.Time, productType string, quantity int, unitPrice, costPrice float64) (*models.Sale, error) {
	product := &models.Product{
		Name:        fmt.Sprintf("Produto Teste %d", rand.Intn(100000)),
		ProductType: productType,
	}
	if err := tf.DB.DB.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create test product: %w", err)
	}

	variation := &models.ProductVariation{
		ProductID: product.ID,
		Name:      "Padrão",
		CostPrice: costPrice,
	}
	if err := tf.DB.DB.Create(variation).Error; err != nil {
		return nil, fmt.Errorf("failed to create test product variation: %w", err)
	}

	sale := &models.Sale{
		UserID:      userID,
		TotalAmount: totalAmount,
		SaleDate:    saleDate,
	}
	if err := tf.DB.DB.Create(sale).Error; err != nil {
		return nil, fmt.Errorf("failed to create test sale: %w", err)
	}

	item := &models.SaleItem{
		SaleID:             sale.ID,
		ProductVariationID: variation.ID,
		Quantity:           quantity,
		UnitPrice:          unitPrice,
	}
	if err := tf.DB.DB.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create test sale item: %w", err)
	}

	sale.Items = []models.SaleItem{*item}
	return sale, nil
}

// CreateTestRepair creates a repair for the given technician
func (tf *TestFixtures) CreateTestRepair(technicianID uint, status string, finalCost float64, updatedAt time.Time) (*models.Repair, error) {
	repair := &models.Repair{
		TechnicianID: technicianID,
		Status:       status,
		FinalCost:    finalCost,
	}
	if err := tf.DB.DB.Create(repair).Error; err != nil {
		return nil, fmt.Errorf("failed to create test repair: %w", err)
	}

	// Set updated_at explicitly since gorm overwrites it on create
	if err := tf.DB.DB.Model(repair).UpdateColumn("updated_at", updatedAt).Error; err != nil {
		return nil, fmt.Errorf("failed to backdate test repair: %w", err)
	}
	repair.UpdatedAt = updatedAt

	return repair, nil
}

// CreateTestPayout creates a payout row for the given user
func (tf *TestFixtures) CreateTestPayout(userID, createdBy uint, amount float64, periodStart, periodEnd time.Time) (*models.CommissionPayout, error) {
	payout := &models.CommissionPayout{
		UserID:      userID,
		Amount:      amount,
		PayoutDate:  utils.UTCNow(),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		CreatedBy:   createdBy,
	}
	if err := tf.DB.DB.Create(payout).Error; err != nil {
		return nil, fmt.Errorf("failed to create test payout: %w", err)
	}

	return payout, nil
}
