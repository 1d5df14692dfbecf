package businessflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/viacell/comissoes-service/app/dto"
	"github.com/viacell/comissoes-service/models"
	"github.com/viacell/comissoes-service/repository"
	"github.com/viacell/comissoes-service/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// PayoutFlow provides use cases for the manual commission payout ledger.
// Payouts are independent of the calculator: recording one never derives
// from a calculated total.
type PayoutFlow interface {
	CreatePayout(ctx context.Context, req *dto.CreatePayoutRequest, actor Actor, metadata *ClientMetadata) (*dto.PayoutDTO, error)
	ListPayouts(ctx context.Context) (*dto.ListPayoutsResponse, error)
	GetPayout(ctx context.Context, id uint) (*dto.PayoutDTO, error)
	UpdatePayout(ctx context.Context, id uint, req *dto.UpdatePayoutRequest, actor Actor, metadata *ClientMetadata) (*dto.PayoutDTO, error)
	DeletePayout(ctx context.Context, id uint, actor Actor, metadata *ClientMetadata) error
	// ExportPayoutsExcel renders the full ledger as an XLSX workbook and
	// returns the suggested filename with the file bytes.
	ExportPayoutsExcel(ctx context.Context) (string, []byte, error)
}

type PayoutFlowImpl struct {
	db         *gorm.DB
	payoutRepo repository.CommissionPayoutRepository
	userRepo   repository.UserRepository
	auditRepo  repository.AuditLogRepository
}

// NewPayoutFlow creates a new payout ledger flow. The db handle is optional;
// without it multi-step writes fall back to the repositories' own per-write
// transactions.
func NewPayoutFlow(
	db *gorm.DB,
	payoutRepo repository.CommissionPayoutRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
) PayoutFlow {
	return &PayoutFlowImpl{
		db:         db,
		payoutRepo: payoutRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
	}
}

// CreatePayout validates and records a disbursement, then writes one audit
// entry attributed to the acting user.
func (f *PayoutFlowImpl) CreatePayout(ctx context.Context, req *dto.CreatePayoutRequest, actor Actor, metadata *ClientMetadata) (*dto.PayoutDTO, error) {
	if req == nil || req.UserID == 0 {
		return nil, NewBusinessError("PAYOUT_USER_REQUIRED", "O usuário do pagamento é obrigatório.", ErrPayoutUserRequired)
	}
	if req.Amount <= 0 {
		return nil, NewBusinessError("PAYOUT_AMOUNT_INVALID", "O valor do pagamento deve ser maior que zero.", ErrPayoutAmountInvalid)
	}
	period, err := f.parsePayoutPeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	user, err := f.userRepo.ByID(ctx, req.UserID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Falha ao buscar usuário", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "Usuário não encontrado.", ErrUserNotFound)
	}

	payout := &models.CommissionPayout{
		UserID:      req.UserID,
		Amount:      req.Amount,
		PayoutDate:  utils.UTCNow(),
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Notes:       req.Notes,
		CreatedBy:   actor.ID,
	}
	if err := f.payoutRepo.Save(ctx, payout); err != nil {
		return nil, NewBusinessError("PAYOUT_CREATE_FAILED", "Falha ao registrar pagamento de comissão", err)
	}

	f.recordAudit(ctx, actor, metadata, models.AuditActionPayoutCreated, payout.ID,
		fmt.Sprintf("Pagamento de comissão de R$%.2f registrado para o usuário #%d.", payout.Amount, payout.UserID))

	res := ToPayoutDTO(&repository.PayoutWithUser{CommissionPayout: *payout, UserName: user.Name})
	return &res, nil
}

// ListPayouts returns the whole ledger, newest payment first.
func (f *PayoutFlowImpl) ListPayouts(ctx context.Context) (*dto.ListPayoutsResponse, error) {
	rows, err := f.payoutRepo.ListWithUser(ctx)
	if err != nil {
		return nil, NewBusinessError("PAYOUT_LIST_FAILED", "Falha ao listar pagamentos de comissão", err)
	}

	items := make([]dto.PayoutDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToPayoutDTO(row))
	}
	return &dto.ListPayoutsResponse{Items: items}, nil
}

// GetPayout returns a single payout by id.
func (f *PayoutFlowImpl) GetPayout(ctx context.Context, id uint) (*dto.PayoutDTO, error) {
	row, err := f.fetchPayoutWithUser(ctx, id)
	if err != nil {
		return nil, err
	}
	res := ToPayoutDTO(row)
	return &res, nil
}

// UpdatePayout replaces every field of an existing payout and writes one
// audit entry on success.
func (f *PayoutFlowImpl) UpdatePayout(ctx context.Context, id uint, req *dto.UpdatePayoutRequest, actor Actor, metadata *ClientMetadata) (*dto.PayoutDTO, error) {
	if req == nil || req.UserID == 0 {
		return nil, NewBusinessError("PAYOUT_USER_REQUIRED", "O usuário do pagamento é obrigatório.", ErrPayoutUserRequired)
	}
	if req.Amount <= 0 {
		return nil, NewBusinessError("PAYOUT_AMOUNT_INVALID", "O valor do pagamento deve ser maior que zero.", ErrPayoutAmountInvalid)
	}
	period, err := f.parsePayoutPeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	payoutDate, err := time.ParseInLocation(utils.DateLayout, req.PayoutDate, time.UTC)
	if err != nil {
		return nil, NewBusinessError("INVALID_DATE_FORMAT", "As datas devem estar no formato AAAA-MM-DD.", ErrInvalidDateFormat)
	}

	// Read-modify-write under one transaction so concurrent updates can't
	// interleave between the lookup and the save.
	var payout *models.CommissionPayout
	var user *models.User
	apply := func(txCtx context.Context) error {
		var err error
		payout, err = f.payoutRepo.ByID(txCtx, id)
		if err != nil {
			return NewBusinessError("PAYOUT_LOOKUP_FAILED", "Falha ao buscar pagamento de comissão", err)
		}
		if payout == nil {
			return NewBusinessError("PAYOUT_NOT_FOUND", "Pagamento de comissão não encontrado.", ErrPayoutNotFound)
		}

		user, err = f.userRepo.ByID(txCtx, req.UserID)
		if err != nil {
			return NewBusinessError("USER_LOOKUP_FAILED", "Falha ao buscar usuário", err)
		}
		if user == nil {
			return NewBusinessError("USER_NOT_FOUND", "Usuário não encontrado.", ErrUserNotFound)
		}

		payout.UserID = req.UserID
		payout.Amount = req.Amount
		payout.PayoutDate = payoutDate
		payout.PeriodStart = period.Start
		payout.PeriodEnd = period.End
		payout.Notes = req.Notes
		payout.UpdatedAt = utils.UTCNow()
		if err := f.payoutRepo.Update(txCtx, payout); err != nil {
			return NewBusinessError("PAYOUT_UPDATE_FAILED", "Falha ao atualizar pagamento de comissão", err)
		}
		return nil
	}

	if f.db != nil {
		err = repository.WithTransaction(ctx, f.db, apply)
	} else {
		err = apply(ctx)
	}
	if err != nil {
		return nil, err
	}

	f.recordAudit(ctx, actor, metadata, models.AuditActionPayoutUpdated, payout.ID,
		fmt.Sprintf("Pagamento de comissão #%d atualizado.", payout.ID))

	res := ToPayoutDTO(&repository.PayoutWithUser{CommissionPayout: *payout, UserName: user.Name})
	return &res, nil
}

// DeletePayout removes a payout and writes one audit entry on success.
func (f *PayoutFlowImpl) DeletePayout(ctx context.Context, id uint, actor Actor, metadata *ClientMetadata) error {
	deleted, err := f.payoutRepo.Delete(ctx, id)
	if err != nil {
		return NewBusinessError("PAYOUT_DELETE_FAILED", "Falha ao deletar pagamento de comissão", err)
	}
	if !deleted {
		return NewBusinessError("PAYOUT_NOT_FOUND", "Pagamento de comissão não encontrado.", ErrPayoutNotFound)
	}

	f.recordAudit(ctx, actor, metadata, models.AuditActionPayoutDeleted, id,
		fmt.Sprintf("Pagamento de comissão #%d deletado.", id))

	return nil
}

func (f *PayoutFlowImpl) ExportPayoutsExcel(ctx context.Context) (string, []byte, error) {
	rows, err := f.payoutRepo.ListWithUser(ctx)
	if err != nil {
		return "", nil, NewBusinessError("PAYOUT_LIST_FAILED", "Falha ao listar pagamentos de comissão", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "pagamentos"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"id", "usuario_id", "usuario", "valor", "data_pagamento", "periodo_inicio", "periodo_fim", "observacoes", "registrado_por", "criado_em"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, row := range rows {
		notes := ""
		if row.Notes != nil {
			notes = *row.Notes
		}
		record := []interface{}{
			row.ID,
			row.UserID,
			row.UserName,
			row.Amount,
			row.PayoutDate.UTC().Format(utils.DateLayout),
			row.PeriodStart.UTC().Format(utils.DateLayout),
			row.PeriodEnd.UTC().Format(utils.DateLayout),
			notes,
			row.CreatedBy,
			row.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Falha ao gerar planilha de pagamentos", err)
	}

	filename := fmt.Sprintf("pagamentos_comissao_%s.xlsx", utils.UTCNow().Format("20060102"))
	return filename, buf.Bytes(), nil
}

// parsePayoutPeriod validates the payout's reference period without the
// end-of-day extension used by the calculator: the ledger stores the bounds
// exactly as submitted.
func (f *PayoutFlowImpl) parsePayoutPeriod(startDate, endDate string) (Period, error) {
	if startDate == "" || endDate == "" {
		return Period{}, NewBusinessError("PAYOUT_PERIOD_REQUIRED", "O período de referência do pagamento é obrigatório.", ErrPayoutPeriodRequired)
	}
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
	return Period{Start: start, End: end}, nil
}

func (f *PayoutFlowImpl) fetchPayoutWithUser(ctx context.Context, id uint) (*repository.PayoutWithUser, error) {
	payout, err := f.payoutRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("PAYOUT_LOOKUP_FAILED", "Falha ao buscar pagamento de comissão", err)
	}
	if payout == nil {
		return nil, NewBusinessError("PAYOUT_NOT_FOUND", "Pagamento de comissão não encontrado.", ErrPayoutNotFound)
	}

	// The display name is cosmetic: a failed lookup is logged, not fatal.
	userName := ""
	user, err := f.userRepo.ByID(ctx, payout.UserID)
	if err != nil {
		log.Printf("Failed to resolve user %d for payout %d: %v", payout.UserID, id, err)
	} else if user != nil {
		userName = user.Name
	}
	return &repository.PayoutWithUser{CommissionPayout: *payout, UserName: userName}, nil
}

// recordAudit writes the single audit entry of a successful mutation. Audit
// failures are logged and never propagate: the mutation already happened.
func (f *PayoutFlowImpl) recordAudit(ctx context.Context, actor Actor, metadata *ClientMetadata, action string, entityID uint, description string) {
	entry := &models.AuditLog{
		ActorName:   actor.Name,
		Action:      action,
		Description: utils.ToPtr(description),
		EntityType:  utils.ToPtr(models.AuditEntityCommissionPayout),
		EntityID:    &entityID,
		Success:     utils.ToPtr(true),
	}
	if actor.ID != 0 {
		entry.UserID = utils.ToPtr(actor.ID)
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			entry.IPAddress = utils.ToPtr(metadata.IPAddress)
		}
		if metadata.RequestID != "" {
			entry.RequestID = utils.ToPtr(metadata.RequestID)
		}
	}

	if err := f.auditRepo.Save(ctx, entry); err != nil {
		log.Printf("Failed to write audit entry %s for payout %d: %v", action, entityID, err)
	}
}
