package businessflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viacell/comissoes-service/app/dto"
	"github.com/viacell/comissoes-service/models"
	"github.com/viacell/comissoes-service/repository"
	"github.com/viacell/comissoes-service/utils"
)

type fakePayoutRepo struct {
	payouts map[uint]*models.CommissionPayout
	nextID  uint
}

func newFakePayoutRepo() *fakePayoutRepo {
	return &fakePayoutRepo{payouts: map[uint]*models.CommissionPayout{}, nextID: 1}
}

func (r *fakePayoutRepo) ByID(ctx context.Context, id uint) (*models.CommissionPayout, error) {
	p, ok := r.payouts[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r *fakePayoutRepo) Save(ctx context.Context, payout *models.CommissionPayout) error {
	payout.ID = r.nextID
	r.nextID++
	payout.CreatedAt = utils.UTCNow()
	clone := *payout
	r.payouts[payout.ID] = &clone
	return nil
}

func (r *fakePayoutRepo) Update(ctx context.Context, payout *models.CommissionPayout) error {
	if _, ok := r.payouts[payout.ID]; !ok {
		return errors.New("payout does not exist")
	}
	clone := *payout
	r.payouts[payout.ID] = &clone
	return nil
}

func (r *fakePayoutRepo) Delete(ctx context.Context, id uint) (bool, error) {
	if _, ok := r.payouts[id]; !ok {
		return false, nil
	}
	delete(r.payouts, id)
	return true, nil
}

func (r *fakePayoutRepo) ListWithUser(ctx context.Context) ([]*repository.PayoutWithUser, error) {
	rows := make([]*repository.PayoutWithUser, 0, len(r.payouts))
	for _, p := range r.payouts {
		rows = append(rows, &repository.PayoutWithUser{CommissionPayout: *p})
	}
	return rows, nil
}

func (r *fakePayoutRepo) ByFilter(ctx context.Context, filter models.CommissionPayoutFilter, orderBy string, limit, offset int) ([]*models.CommissionPayout, error) {
	return nil, nil
}

type fakeAuditRepo struct {
	entries []*models.AuditLog
	saveErr error
}

func (r *fakeAuditRepo) ByID(ctx context.Context, id uint) (*models.AuditLog, error) {
	return nil, nil
}

func (r *fakeAuditRepo) Save(ctx context.Context, entry *models.AuditLog) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) ListByEntity(ctx context.Context, entityType string, entityID uint, limit, offset int) ([]*models.AuditLog, error) {
	return r.entries, nil
}

func (r *fakeAuditRepo) ListByActor(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error) {
	return r.entries, nil
}

func (r *fakeAuditRepo) ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	return nil, nil
}

type payoutFlowFixture struct {
	flow    PayoutFlow
	payouts *fakePayoutRepo
	users   *fakeUserRepo
	audits  *fakeAuditRepo
}

func newPayoutFlowFixture() *payoutFlowFixture {
	payouts := newFakePayoutRepo()
	audits := &fakeAuditRepo{}
	users := &fakeUserRepo{users: map[uint]*models.User{
		1: vendedorUser(1),
	}}
	return &payoutFlowFixture{
		flow:    NewPayoutFlow(nil, payouts, users, audits),
		payouts: payouts,
		users:   users,
		audits:  audits,
	}
}

func gerenteActor() Actor {
	return Actor{ID: 9, Name: "Gerente Loja"}
}

func validCreateRequest() *dto.CreatePayoutRequest {
	return &dto.CreatePayoutRequest{
		UserID:      1,
		Amount:      150,
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-01-31",
	}
}

func TestCreatePayoutMissingUser(t *testing.T) {
	fx := newPayoutFlowFixture()

	req := validCreateRequest()
	req.UserID = 0
	_, err := fx.flow.CreatePayout(context.Background(), req, gerenteActor(), nil)

	require.Error(t, err)
	assert.True(t, IsPayoutUserRequired(err))
	assert.Empty(t, fx.payouts.payouts)
	assert.Empty(t, fx.audits.entries)
}

func TestCreatePayoutInvalidAmount(t *testing.T) {
	fx := newPayoutFlowFixture()

	for _, amount := range []float64{0, -10} {
		req := validCreateRequest()
		req.Amount = amount
		_, err := fx.flow.CreatePayout(context.Background(), req, gerenteActor(), nil)

		require.Error(t, err)
		assert.True(t, IsPayoutAmountInvalid(err))
	}
	assert.Empty(t, fx.audits.entries)
}

func TestCreatePayoutMissingPeriod(t *testing.T) {
	fx := newPayoutFlowFixture()

	req := validCreateRequest()
	req.PeriodEnd = ""
	_, err := fx.flow.CreatePayout(context.Background(), req, gerenteActor(), nil)

	require.Error(t, err)
	assert.True(t, IsPayoutPeriodRequired(err))
}

func TestCreatePayoutInvertedPeriod(t *testing.T) {
	fx := newPayoutFlowFixture()

	req := validCreateRequest()
	req.PeriodStart = "2024-02-01"
	req.PeriodEnd = "2024-01-01"
	_, err := fx.flow.CreatePayout(context.Background(), req, gerenteActor(), nil)

	require.Error(t, err)
	assert.True(t, IsStartDateAfterEndDate(err))
}

func TestCreatePayoutUnknownUser(t *testing.T) {
	fx := newPayoutFlowFixture()

	req := validCreateRequest()
	req.UserID = 404
	_, err := fx.flow.CreatePayout(context.Background(), req, gerenteActor(), nil)

	require.Error(t, err)
	assert.True(t, IsUserNotFound(err))
	assert.Empty(t, fx.audits.entries)
}

func TestCreatePayoutWritesSingleAuditEntry(t *testing.T) {
	fx := newPayoutFlowFixture()

	metadata := NewClientMetadata("10.0.0.8", "pos-frontend/2.1")
	metadata.SetRequestID("req-123")

	res, err := fx.flow.CreatePayout(context.Background(), validCreateRequest(), gerenteActor(), metadata)

	require.NoError(t, err)
	assert.Equal(t, uint(1), res.UserID)
	assert.Equal(t, "Ana Vendedora", res.UserName)
	assert.Equal(t, 150.0, res.Amount)
	assert.Equal(t, "2024-01-01", res.PeriodStart)
	assert.Equal(t, "2024-01-31", res.PeriodEnd)
	assert.Equal(t, uint(9), res.CreatedBy)

	require.Len(t, fx.audits.entries, 1)
	entry := fx.audits.entries[0]
	assert.Equal(t, models.AuditActionPayoutCreated, entry.Action)
	assert.Equal(t, "Gerente Loja", entry.ActorName)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, uint(9), *entry.UserID)
	require.NotNil(t, entry.EntityType)
	assert.Equal(t, models.AuditEntityCommissionPayout, *entry.EntityType)
	require.NotNil(t, entry.EntityID)
	assert.Equal(t, res.ID, *entry.EntityID)
	require.NotNil(t, entry.Description)
	assert.Equal(t, "Pagamento de comissão de R$150.00 registrado para o usuário #1.", *entry.Description)
	require.NotNil(t, entry.IPAddress)
	assert.Equal(t, "10.0.0.8", *entry.IPAddress)
	require.NotNil(t, entry.RequestID)
	assert.Equal(t, "req-123", *entry.RequestID)
	assert.True(t, utils.IsTrue(entry.Success))
}

func TestCreatePayoutSucceedsWhenAuditFails(t *testing.T) {
	fx := newPayoutFlowFixture()
	fx.audits.saveErr = errors.New("audit store unavailable")

	res, err := fx.flow.CreatePayout(context.Background(), validCreateRequest(), gerenteActor(), nil)

	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	require.Len(t, fx.payouts.payouts, 1)
	assert.Empty(t, fx.audits.entries)
}

func TestGetPayout(t *testing.T) {
	fx := newPayoutFlowFixture()

	created, err := fx.flow.CreatePayout(context.Background(), validCreateRequest(), gerenteActor(), nil)
	require.NoError(t, err)

	got, err := fx.flow.GetPayout(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Amount, got.Amount)
	assert.Equal(t, "Ana Vendedora", got.UserName)
}

func TestGetPayoutSurvivesUserLookupFailure(t *testing.T) {
	fx := newPayoutFlowFixture()

	created, err := fx.flow.CreatePayout(context.Background(), validCreateRequest(), gerenteActor(), nil)
	require.NoError(t, err)

	fx.users.byIDErr = errors.New("user store unavailable")

	got, err := fx.flow.GetPayout(context.Background(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Empty(t, got.UserName)
}

func TestGetPayoutNotFound(t *testing.T) {
	fx := newPayoutFlowFixture()

	_, err := fx.flow.GetPayout(context.Background(), 77)

	require.Error(t, err)
	assert.True(t, IsPayoutNotFound(err))
	assert.Equal(t, "Pagamento de comissão não encontrado.", BusinessMessage(err, ""))
}

func TestListPayouts(t *testing.T) {
	fx := newPayoutFlowFixture()

	_, err := fx.flow.CreatePayout(context.Background(), validCreateRequest(), gerenteActor(), nil)
	require.NoError(t, err)
	_, err = fx.flow.CreatePayout(context.Background(), validCreateRequest(), gerenteActor(), nil)
	require.NoError(t, err)

	res, err := fx.flow.ListPayouts(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
}

func TestUpdatePayout(t *testing.T) {
	fx := newPayoutFlowFixture()

	created, err := fx.flow.CreatePayout(context.Background(), validCreateRequest(), gerenteActor(), nil)
	require.NoError(t, err)

	req := &dto.UpdatePayoutRequest{
		UserID:      1,
		Amount:      275.5,
		PayoutDate:  "2024-02-10",
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-01-31",
		Notes:       utils.ToPtr("Ajuste de fechamento"),
	}
	updated, err := fx.flow.UpdatePayout(context.Background(), created.ID, req, gerenteActor(), nil)

	require.NoError(t, err)
	assert.Equal(t, 275.5, updated.Amount)
	assert.Equal(t, "2024-02-10", updated.PayoutDate)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "Ajuste de fechamento", *updated.Notes)

	require.Len(t, fx.audits.entries, 2)
	last := fx.audits.entries[1]
	assert.Equal(t, models.AuditActionPayoutUpdated, last.Action)
	require.NotNil(t, last.Description)
	assert.Equal(t, "Pagamento de comissão #1 atualizado.", *last.Description)

	stored := fx.payouts.payouts[created.ID]
	assert.Equal(t, 275.5, stored.Amount)
}

func TestUpdatePayoutNotFound(t *testing.T) {
	fx := newPayoutFlowFixture()

	req := &dto.UpdatePayoutRequest{
		UserID:      1,
		Amount:      100,
		PayoutDate:  "2024-02-10",
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-01-31",
	}
	_, err := fx.flow.UpdatePayout(context.Background(), 55, req, gerenteActor(), nil)

	require.Error(t, err)
	assert.True(t, IsPayoutNotFound(err))
	assert.Empty(t, fx.audits.entries)
}

func TestUpdatePayoutInvalidPayoutDate(t *testing.T) {
	fx := newPayoutFlowFixture()

	created, err := fx.flow.CreatePayout(context.Background(), validCreateRequest(), gerenteActor(), nil)
	require.NoError(t, err)

	req := &dto.UpdatePayoutRequest{
		UserID:      1,
		Amount:      100,
		PayoutDate:  "10/02/2024",
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-01-31",
	}
	_, err = fx.flow.UpdatePayout(context.Background(), created.ID, req, gerenteActor(), nil)

	require.Error(t, err)
	assert.True(t, IsInvalidDateFormat(err))
}

func TestDeletePayout(t *testing.T) {
	fx := newPayoutFlowFixture()

	created, err := fx.flow.CreatePayout(context.Background(), validCreateRequest(), gerenteActor(), nil)
	require.NoError(t, err)

	err = fx.flow.DeletePayout(context.Background(), created.ID, gerenteActor(), nil)

	require.NoError(t, err)
	assert.Empty(t, fx.payouts.payouts)

	require.Len(t, fx.audits.entries, 2)
	last := fx.audits.entries[1]
	assert.Equal(t, models.AuditActionPayoutDeleted, last.Action)
	require.NotNil(t, last.Description)
	assert.Equal(t, "Pagamento de comissão #1 deletado.", *last.Description)
}

func TestDeletePayoutNotFound(t *testing.T) {
	fx := newPayoutFlowFixture()

	err := fx.flow.DeletePayout(context.Background(), 99, gerenteActor(), nil)

	require.Error(t, err)
	assert.True(t, IsPayoutNotFound(err))
	assert.Empty(t, fx.audits.entries)
}

func TestExportPayoutsExcel(t *testing.T) {
	fx := newPayoutFlowFixture()

	_, err := fx.flow.CreatePayout(context.Background(), validCreateRequest(), gerenteActor(), nil)
	require.NoError(t, err)

	filename, data, err := fx.flow.ExportPayoutsExcel(context.Background())

	require.NoError(t, err)
	assert.Contains(t, filename, "pagamentos_comissao_")
	assert.Contains(t, filename, ".xlsx")
	assert.NotEmpty(t, data)
	// XLSX files are ZIP containers
	assert.Equal(t, []byte{0x50, 0x4b}, data[:2])
}

func TestParsePayoutPeriodKeepsBoundsAsSubmitted(t *testing.T) {
	f := &PayoutFlowImpl{}

	period, err := f.parsePayoutPeriod("2024-01-01", "2024-01-31")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), period.End)
}
