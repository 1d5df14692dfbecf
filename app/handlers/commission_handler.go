package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/viacell/comissoes-service/app/dto"
	businessflow "github.com/viacell/comissoes-service/business_flow"
	"github.com/viacell/comissoes-service/utils"
)

// CommissionHandlerInterface defines the contract for commission calculation endpoints
type CommissionHandlerInterface interface {
	Calculate(c fiber.Ctx) error
	ListCalculated(c fiber.Ctx) error
}

// CommissionHandler handles the read-only commission calculation endpoints
type CommissionHandler struct {
	flow      businessflow.CommissionFlow
	validator *validator.Validate
}

func NewCommissionHandler(flow businessflow.CommissionFlow) CommissionHandlerInterface {
	return &CommissionHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// ErrorResponse standard JSON error
func (h *CommissionHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
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
func (h *CommissionHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Calculate computes a user's commission for an inclusive date period
// @Summary Calculate Commission
// @Description Calculate a user's commission total with a per-rule breakdown for a period
// @Tags Commissions
// @Produce json
// @Param user_id query int true "User ID"
// @Param start_date query string true "Period start (YYYY-MM-DD)"
// @Param end_date query string true "Period end (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.CalculateCommissionResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/commissions/calculate [get]
func (h *CommissionHandler) Calculate(c fiber.Ctx) error {
	var req dto.CalculateCommissionRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []map[string]string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, map[string]string{
				"field":   err.Field(),
				"message": getValidationErrorMessage(err),
			})
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "user_id, start_date e end_date são obrigatórios.", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	res, err := h.flow.CalculateCommission(h.createRequestContext(c, "/api/v1/commissions/calculate"), &req, metadata)
	if err != nil {
		return h.commissionErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Comissão calculada com sucesso", res)
}

// ListCalculated reports the same evaluation as Calculate in the legacy listing shape
// @Summary List Calculated Commissions
// @Description List the calculated commission breakdown of a user for a period
// @Tags Commissions
// @Produce json
// @Param user_id query int true "User ID"
// @Param start_date query string true "Period start (YYYY-MM-DD)"
// @Param end_date query string true "Period end (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.CalculatedCommissionsResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/commissions/calculated [get]
func (h *CommissionHandler) ListCalculated(c fiber.Ctx) error {
	var req dto.CalculateCommissionRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []map[string]string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, map[string]string{
				"field":   err.Field(),
				"message": getValidationErrorMessage(err),
			})
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "user_id, start_date e end_date são obrigatórios.", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	res, err := h.flow.ListCalculatedCommissions(h.createRequestContext(c, "/api/v1/commissions/calculated"), &req, metadata)
	if err != nil {
		return h.commissionErrorResponse(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Comissões calculadas com sucesso", res)
}

func (h *CommissionHandler) commissionErrorResponse(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsValidationError(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.BusinessMessage(err, "Parâmetros inválidos"), "VALIDATION_ERROR", nil)
	case businessflow.IsNotFoundError(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, businessflow.BusinessMessage(err, "Recurso não encontrado"), "NOT_FOUND", nil)
	default:
		log.Println("Commission calculation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Erro interno ao calcular comissões", "INTERNAL_ERROR", nil)
	}
}

func (h *CommissionHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *CommissionHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
