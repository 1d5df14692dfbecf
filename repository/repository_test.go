package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viacell/comissoes-service/models"
	"github.com/viacell/comissoes-service/repository"
	testingutil "github.com/viacell/comissoes-service/testing"
)

// setupRepositoryTest provisions a throwaway database. The suite is skipped
// when no local PostgreSQL is reachable so unit-only runs stay green.
func setupRepositoryTest(t *testing.T) *testingutil.TestDB {
	t.Helper()

	db, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("skipping repository tests, test database unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := db.TeardownTestDB(); err != nil {
			t.Logf("failed to teardown test database: %v", err)
		}
	})
	return db
}

func TestUserRepositoryLookups(t *testing.T) {
	db := setupRepositoryTest(t)
	fixtures := testingutil.NewTestFixtures(db)
	ctx := context.Background()

	created, err := fixtures.CreateTestUser(models.RoleNameVendedor)
	require.NoError(t, err)

	repo := repository.NewUserRepository(db.DB)

	byID, err := repo.ByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, created.Email, byID.Email)
	assert.Equal(t, models.RoleNameVendedor, byID.Role.Name)

	byEmail, err := repo.ByEmail(ctx, created.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, created.ID, byEmail.ID)

	missing, err := repo.ByID(ctx, created.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCommissionRuleRepositoryListActiveForRole(t *testing.T) {
	db := setupRepositoryTest(t)
	fixtures := testingutil.NewTestFixtures(db)
	ctx := context.Background()

	user, err := fixtures.CreateTestUser(models.RoleNameVendedor)
	require.NoError(t, err)

	queryStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	queryEnd := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	// Unbounded rule, always active
	first, err := fixtures.CreateTestCommissionRule(user.RoleID, models.CommissionTypePercentageOfSale, models.AppliesToSales, 0.05, nil, nil)
	require.NoError(t, err)

	// Window touching the query start on its last day
	boundaryEnd := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second, err := fixtures.CreateTestCommissionRule(user.RoleID, models.CommissionTypePercentageOfGrossProfit, models.AppliesToSales, 0.1, nil, &boundaryEnd)
	require.NoError(t, err)

	// Expired before the query window
	expiredEnd := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	_, err = fixtures.CreateTestCommissionRule(user.RoleID, models.CommissionTypeFixedPerServiceType, models.AppliesToSales, 9, nil, &expiredEnd)
	require.NoError(t, err)

	repo := repository.NewCommissionRuleRepository(db.DB)

	rules, err := repo.ListActiveForRole(ctx, user.RoleID, queryStart, queryEnd)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	// Newest created first
	assert.Equal(t, second.ID, rules[0].ID)
	assert.Equal(t, first.ID, rules[1].ID)
}

func TestSaleRepositoryListByUserInPeriod(t *testing.T) {
	db := setupRepositoryTest(t)
	fixtures := testingutil.NewTestFixtures(db)
	ctx := context.Background()

	user, err := fixtures.CreateTestUser(models.RoleNameVendedor)
	require.NoError(t, err)

	inWindow := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	outOfWindow := time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC)

	_, err = fixtures.CreateTestSale(user.ID, 300, inWindow, models.ProductTypeService, 2, 150, 40)
	require.NoError(t, err)
	_, err = fixtures.CreateTestSale(user.ID, 999, outOfWindow, models.ProductTypeProduct, 1, 999, 500)
	require.NoError(t, err)

	repo := repository.NewSaleRepository(db.DB)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	sales, err := repo.ListByUserInPeriod(ctx, user.ID, start, end)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 300.0, sales[0].TotalAmount)

	// Line items with variation and product come preloaded
	require.Len(t, sales[0].Items, 1)
	item := sales[0].Items[0]
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, models.ProductTypeService, item.ProductVariation.Product.ProductType)
}

func TestRepairRepositoryListFinishedByTechnicianInPeriod(t *testing.T) {
	db := setupRepositoryTest(t)
	fixtures := testingutil.NewTestFixtures(db)
	ctx := context.Background()

	tech, err := fixtures.CreateTestUser(models.RoleNameTecnico)
	require.NoError(t, err)

	inWindow := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	outOfWindow := time.Date(2023, 12, 10, 12, 0, 0, 0, time.UTC)

	_, err = fixtures.CreateTestRepair(tech.ID, models.RepairStatusFinalizado, 120, inWindow)
	require.NoError(t, err)
	_, err = fixtures.CreateTestRepair(tech.ID, models.RepairStatusFinalizado, 80, outOfWindow)
	require.NoError(t, err)
	_, err = fixtures.CreateTestRepair(tech.ID, models.RepairStatusAberto, 0, inWindow)
	require.NoError(t, err)

	repo := repository.NewRepairRepository(db.DB)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	repairs, err := repo.ListFinishedByTechnicianInPeriod(ctx, tech.ID, start, end)
	require.NoError(t, err)
	require.Len(t, repairs, 1)
	assert.Equal(t, 120.0, repairs[0].FinalCost)
}

func TestCommissionPayoutRepositoryLifecycle(t *testing.T) {
	db := setupRepositoryTest(t)
	fixtures := testingutil.NewTestFixtures(db)
	ctx := context.Background()

	user, err := fixtures.CreateTestUser(models.RoleNameVendedor)
	require.NoError(t, err)
	manager, err := fixtures.CreateTestUser(models.RoleNameGerente)
	require.NoError(t, err)

	periodStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	payout, err := fixtures.CreateTestPayout(user.ID, manager.ID, 420.5, periodStart, periodEnd)
	require.NoError(t, err)

	repo := repository.NewCommissionPayoutRepository(db.DB)

	found, err := repo.ByID(ctx, payout.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 420.5, found.Amount)

	rows, err := repo.ListWithUser(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, user.Name, rows[0].UserName)

	found.Amount = 500
	require.NoError(t, repo.Update(ctx, found))
	updated, err := repo.ByID(ctx, payout.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, updated.Amount)

	deleted, err := repo.Delete(ctx, payout.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deletedAgain, err := repo.Delete(ctx, payout.ID)
	require.NoError(t, err)
	assert.False(t, deletedAgain)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := setupRepositoryTest(t)
	fixtures := testingutil.NewTestFixtures(db)
	ctx := context.Background()

	user, err := fixtures.CreateTestUser(models.RoleNameVendedor)
	require.NoError(t, err)
	manager, err := fixtures.CreateTestUser(models.RoleNameGerente)
	require.NoError(t, err)

	repo := repository.NewCommissionPayoutRepository(db.DB)

	var savedID uint
	err = repository.WithTransaction(ctx, db.DB, func(txCtx context.Context) error {
		payout := &models.CommissionPayout{
			UserID:      user.ID,
			Amount:      100,
			PayoutDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			CreatedBy:   manager.ID,
		}
		if err := repo.Save(txCtx, payout); err != nil {
			return err
		}
		savedID = payout.ID
		return errors.New("forced failure after save")
	})
	require.Error(t, err)
	require.NotZero(t, savedID)

	// The save inside the failed transaction never became visible
	found, err := repo.ByID(ctx, savedID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestWithTransactionCommitsOnSuccess(t *testing.T) {
	db := setupRepositoryTest(t)
	fixtures := testingutil.NewTestFixtures(db)
	ctx := context.Background()

	user, err := fixtures.CreateTestUser(models.RoleNameVendedor)
	require.NoError(t, err)
	manager, err := fixtures.CreateTestUser(models.RoleNameGerente)
	require.NoError(t, err)

	repo := repository.NewCommissionPayoutRepository(db.DB)

	var savedID uint
	err = repository.WithTransaction(ctx, db.DB, func(txCtx context.Context) error {
		payout := &models.CommissionPayout{
			UserID:      user.ID,
			Amount:      250,
			PayoutDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			PeriodEnd:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			CreatedBy:   manager.ID,
		}
		if err := repo.Save(txCtx, payout); err != nil {
			return err
		}
		savedID = payout.ID
		return nil
	})
	require.NoError(t, err)

	found, err := repo.ByID(ctx, savedID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 250.0, found.Amount)
}

func TestAuditLogRepositoryListByEntity(t *testing.T) {
	db := setupRepositoryTest(t)
	fixtures := testingutil.NewTestFixtures(db)
	ctx := context.Background()

	manager, err := fixtures.CreateTestUser(models.RoleNameGerente)
	require.NoError(t, err)

	repo := repository.NewAuditLogRepository(db.DB)

	entityID := uint(42)
	success := true
	desc := "Pagamento de comissão de R$100.00 registrado para o usuário #1."
	entityType := models.AuditEntityCommissionPayout
	entry := &models.AuditLog{
		UserID:      &manager.ID,
		ActorName:   manager.Name,
		Action:      models.AuditActionPayoutCreated,
		Description: &desc,
		EntityType:  &entityType,
		EntityID:    &entityID,
		Success:     &success,
	}
	require.NoError(t, repo.Save(ctx, entry))
	require.NotZero(t, entry.ID)

	entries, err := repo.ListByEntity(ctx, models.AuditEntityCommissionPayout, entityID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionPayoutCreated, entries[0].Action)
	assert.Equal(t, manager.Name, entries[0].ActorName)

	byActor, err := repo.ListByActor(ctx, manager.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, byActor, 1)
}
