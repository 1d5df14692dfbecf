package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/viacell/comissoes-service/app/dto"
	"github.com/viacell/comissoes-service/app/middleware"
	businessflow "github.com/viacell/comissoes-service/business_flow"
	"github.com/viacell/comissoes-service/utils"
)

// PayoutHandlerInterface defines the contract for the payout ledger endpoints
type PayoutHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// PayoutHandler handles the commission payout ledger endpoints
type PayoutHandler struct {
	flow      businessflow.PayoutFlow
	validator *validator.Validate
}

func NewPayoutHandler(flow businessflow.PayoutFlow) PayoutHandlerInterface {
	return &PayoutHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// ErrorResponse standard JSON error
func (h *PayoutHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (h *PayoutHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create records a new commission payout
// @Summary Create Commission Payout
// @Description Record a manual commission disbursement for a user
// @Tags Payouts
// @Accept json
// @Produce json
// @Param request body dto.CreatePayoutRequest true "Payout data"
// @Success 201 {object} dto.APIResponse{data=dto.PayoutDTO}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/commissions/payouts [post]
func (h *PayoutHandler) Create(c fiber.Ctx) error {
	var req dto.CreatePayoutRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []map[string]string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, map[string]string{
				"field":   err.Field(),
				"message": getValidationErrorMessage(err),
			})
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Dados do pagamento inválidos", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.flow.CreatePayout(h.createRequestContext(c, "/api/v1/commissions/payouts"), &req, h.actorFromContext(c), h.clientMetadata(c))
	if err != nil {
		return h.payoutErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Pagamento de comissão registrado com sucesso", res)
}

// List returns the whole payout ledger, newest payment first
// @Summary List Commission Payouts
// @Tags Payouts
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListPayoutsResponse}
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/commissions/payouts [get]
func (h *PayoutHandler) List(c fiber.Ctx) error {
	res, err := h.flow.ListPayouts(h.createRequestContext(c, "/api/v1/commissions/payouts"))
	if err != nil {
		return h.payoutErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Pagamentos listados com sucesso", res)
}

// Get returns a single payout by id
// @Summary Get Commission Payout
// @Tags Payouts
// @Produce json
// @Param id path int true "Payout ID"
// @Success 200 {object} dto.APIResponse{data=dto.PayoutDTO}
// @Failure 404 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/commissions/payouts/{id} [get]
func (h *PayoutHandler) Get(c fiber.Ctx) error {
	id, ok := h.parseIDParam(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Identificador de pagamento inválido", "INVALID_REQUEST", nil)
	}

	res, err := h.flow.GetPayout(h.createRequestContext(c, "/api/v1/commissions/payouts/:id"), id)
	if err != nil {
		return h.payoutErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Pagamento encontrado", res)
}

// Update replaces every field of an existing payout
// @Summary Update Commission Payout
// @Tags Payouts
// @Accept json
// @Produce json
// @Param id path int true "Payout ID"
// @Param request body dto.UpdatePayoutRequest true "Payout data"
// @Success 200 {object} dto.APIResponse{data=dto.PayoutDTO}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/commissions/payouts/{id} [put]
func (h *PayoutHandler) Update(c fiber.Ctx) error {
	id, ok := h.parseIDParam(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Identificador de pagamento inválido", "INVALID_REQUEST", nil)
	}

	var req dto.UpdatePayoutRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []map[string]string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, map[string]string{
				"field":   err.Field(),
				"message": getValidationErrorMessage(err),
			})
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Dados do pagamento inválidos", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.flow.UpdatePayout(h.createRequestContext(c, "/api/v1/commissions/payouts/:id"), id, &req, h.actorFromContext(c), h.clientMetadata(c))
	if err != nil {
		return h.payoutErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Pagamento de comissão atualizado com sucesso", res)
}

// Delete removes a payout from the ledger
// @Summary Delete Commission Payout
// @Tags Payouts
// @Param id path int true "Payout ID"
// @Success 204 {string} string "No Content"
// @Failure 404 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/commissions/payouts/{id} [delete]
func (h *PayoutHandler) Delete(c fiber.Ctx) error {
	id, ok := h.parseIDParam(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Identificador de pagamento inválido", "INVALID_REQUEST", nil)
	}

	if err := h.flow.DeletePayout(h.createRequestContext(c, "/api/v1/commissions/payouts/:id"), id, h.actorFromContext(c), h.clientMetadata(c)); err != nil {
		return h.payoutErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Export downloads the payout ledger as an Excel workbook
// @Summary Export Commission Payouts (Excel)
// @Tags Payouts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {string} string "Excel file"
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/commissions/payouts/export [get]
func (h *PayoutHandler) Export(c fiber.Ctx) error {
	filename, data, err := h.flow.ExportPayoutsExcel(h.createRequestContext(c, "/api/v1/commissions/payouts/export"))
	if err != nil {
		return h.payoutErrorResponse(c, err)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

func (h *PayoutHandler) payoutErrorResponse(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsValidationError(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.BusinessMessage(err, "Dados do pagamento inválidos"), "VALIDATION_ERROR", nil)
	case businessflow.IsNotFoundError(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, businessflow.BusinessMessage(err, "Recurso não encontrado"), "NOT_FOUND", nil)
	default:
		log.Println("Payout operation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Erro interno ao processar pagamento", "INTERNAL_ERROR", nil)
	}
}

func (h *PayoutHandler) parseIDParam(c fiber.Ctx) (uint, bool) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *PayoutHandler) actorFromContext(c fiber.Ctx) businessflow.Actor {
	actor := businessflow.Actor{}
	if id, ok := middleware.GetUserIDFromContext(c); ok {
		actor.ID = id
	}
	if name, ok := middleware.GetUserNameFromContext(c); ok {
		actor.Name = name
	}
	return actor
}

func (h *PayoutHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))
	return metadata
}

func (h *PayoutHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PayoutHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
