package controller

import (
	"voice-intake-be/internal/dto"
	"voice-intake-be/internal/pkg/serverutils"
	"voice-intake-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CallLogController interface {
	RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler)
}

type callLogController struct {
	callLogService service.ICallLogService
}

func NewCallLogController(callLogService service.ICallLogService) CallLogController {
	return &callLogController{
		callLogService: callLogService,
	}
}

func (c *callLogController) RegisterRoutes(api fiber.Router, jwtMiddleware fiber.Handler) {
	office := api.Group("/office", jwtMiddleware)
	office.Get("/calls", c.ListCalls)
	office.Get("/calls/:callId", c.GetCall)
	office.Get("/leads", c.ListLeads)
}

// ListCalls returns the tenant's recent call logs, newest first
// @Summary List call logs
// @Tags Office
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.PagedResponse
// @Router /api/office/calls [get]
func (c *callLogController) ListCalls(ctx *fiber.Ctx) error {
	tenantID, err := tenantFromLocals(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	var query dto.ListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid query"))
	}
	if err := serverutils.ValidateStruct(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	page, err := c.callLogService.ListCalls(ctx.Context(), tenantID, query.Limit, query.Offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Calls retrieved", page))
}

// GetCall returns one call log with its full transcript
// @Summary Get a call log
// @Tags Office
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.CallLogResponse
// @Router /api/office/calls/{callId} [get]
func (c *callLogController) GetCall(ctx *fiber.Ctx) error {
	tenantID, err := tenantFromLocals(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	call, err := c.callLogService.GetCall(ctx.Context(), tenantID, ctx.Params("callId"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	if call == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "call not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Call retrieved", call))
}

// ListLeads returns the tenant's fallback leads, newest first
// @Summary List leads
// @Tags Office
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.PagedResponse
// @Router /api/office/leads [get]
func (c *callLogController) ListLeads(ctx *fiber.Ctx) error {
	tenantID, err := tenantFromLocals(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	var query dto.ListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid query"))
	}

	page, err := c.callLogService.ListLeads(ctx.Context(), tenantID, query.Limit, query.Offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Leads retrieved", page))
}

func tenantFromLocals(ctx *fiber.Ctx) (string, error) {
	tenantID, ok := ctx.Locals("tenant_id").(string)
	if !ok || tenantID == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "missing tenant claim")
	}
	return tenantID, nil
}
