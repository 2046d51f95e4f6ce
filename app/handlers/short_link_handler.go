package handlers

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/middleware"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ShortLinkHandlerInterface defines the contract for short link management handlers
type ShortLinkHandlerInterface interface {
	CreateShortLink(c fiber.Ctx) error
	CreateShortLinks(c fiber.Ctx) error
	ListShortLinks(c fiber.Ctx) error
	GetShortLink(c fiber.Ctx) error
	DeactivateShortLink(c fiber.Ctx) error
	SystemStats(c fiber.Ctx) error
}

// ShortLinkHandler handles short link management HTTP requests
type ShortLinkHandler struct {
	shortenFlow businessflow.ShortenFlow
	validator   *validator.Validate
}

// NewShortLinkHandler creates a new short link handler
func NewShortLinkHandler(shortenFlow businessflow.ShortenFlow) ShortLinkHandlerInterface {
	return &ShortLinkHandler{
		shortenFlow: shortenFlow,
		validator:   validator.New(),
	}
}

func (h *ShortLinkHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ShortLinkHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateShortLink handles the single URL shortening process
// @Summary Create Short Link
// @Tags ShortLinks
// @Accept json
// @Produce json
// @Param request body dto.CreateShortLinkRequest true "Shorten data"
// @Success 201 {object} dto.APIResponse{data=dto.CreateShortLinkResponse} "Short link created"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 409 {object} dto.APIResponse "Alias already taken"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links [post]
func (h *ShortLinkHandler) CreateShortLink(c fiber.Ctx) error {
	var req dto.CreateShortLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(clientIP(c), c.Get("User-Agent"))

	result, err := h.shortenFlow.CreateShortLink(h.createRequestContext(c, "/api/v1/links"), &req, metadata)
	if err != nil {
		return h.mapCreateError(c, err)
	}

	status := fiber.StatusCreated
	if result.Existing {
		status = fiber.StatusOK
	} else {
		middleware.ShortLinkCreated()
	}
	return h.SuccessResponse(c, status, result.Message, result)
}

// CreateShortLinks handles the bulk shortening process. Per-item failures are reported
// in the results; the call itself succeeds as long as the batch was processed.
// @Summary Create Short Links
// @Tags ShortLinks
// @Accept json
// @Produce json
// @Param request body dto.BulkCreateShortLinksRequest true "Bulk shorten data"
// @Success 200 {object} dto.APIResponse{data=dto.BulkCreateShortLinksResponse} "Bulk shorten processed"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/bulk [post]
func (h *ShortLinkHandler) CreateShortLinks(c fiber.Ctx) error {
	var req dto.BulkCreateShortLinksRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(clientIP(c), c.Get("User-Agent"))

	result, err := h.shortenFlow.CreateShortLinks(h.createRequestContext(c, "/api/v1/links/bulk"), &req, metadata)
	if err != nil {
		log.Println("Bulk shorten failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Bulk shorten failed", "BULK_SHORTEN_FAILED", nil)
	}

	for _, r := range result.Results {
		if r.Success && !r.Existing {
			middleware.ShortLinkCreated()
		}
	}
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListShortLinks returns a paginated listing filtered by query parameters
// @Summary List Short Links
// @Tags ShortLinks
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListShortLinksResponse} "Short links retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid filters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links [get]
func (h *ShortLinkHandler) ListShortLinks(c fiber.Ctx) error {
	var req dto.ListShortLinksRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	result, err := h.shortenFlow.ListShortLinks(h.createRequestContext(c, "/api/v1/links"), &req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) || businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_FILTERS", nil)
		}
		log.Println("List short links failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list short links", "LIST_SHORT_LINKS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// GetShortLink returns the detail of one short link by code or alias
// @Summary Get Short Link
// @Tags ShortLinks
// @Produce json
// @Param code path string true "Short code or custom alias"
// @Success 200 {object} dto.APIResponse{data=dto.GetShortLinkResponse} "Short link retrieved"
// @Failure 404 {object} dto.APIResponse "Short link not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/{code} [get]
func (h *ShortLinkHandler) GetShortLink(c fiber.Ctx) error {
	key := c.Params("code")
	if key == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Short code is required", "MISSING_CODE", nil)
	}

	result, err := h.shortenFlow.GetShortLink(h.createRequestContext(c, "/api/v1/links/"+key), key)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Short link not found", "LINK_NOT_FOUND", nil)
		}
		log.Println("Get short link failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get short link", "GET_SHORT_LINK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// DeactivateShortLink disables a short link; subsequent visits return 404
// @Summary Deactivate Short Link
// @Tags ShortLinks
// @Produce json
// @Param code path string true "Short code or custom alias"
// @Success 200 {object} dto.APIResponse{data=dto.DeactivateShortLinkResponse} "Short link deactivated"
// @Failure 404 {object} dto.APIResponse "Short link not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/{code} [delete]
func (h *ShortLinkHandler) DeactivateShortLink(c fiber.Ctx) error {
	key := c.Params("code")
	if key == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Short code is required", "MISSING_CODE", nil)
	}

	result, err := h.shortenFlow.DeactivateShortLink(h.createRequestContext(c, "/api/v1/links/"+key), key)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Short link not found", "LINK_NOT_FOUND", nil)
		}
		log.Println("Deactivate short link failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to deactivate short link", "DEACTIVATE_SHORT_LINK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// SystemStats returns system-wide counters and the top target domains
// @Summary System Stats
// @Tags ShortLinks
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SystemStatsResponse} "System stats retrieved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/stats [get]
func (h *ShortLinkHandler) SystemStats(c fiber.Ctx) error {
	result, err := h.shortenFlow.SystemStats(h.createRequestContext(c, "/api/v1/stats"))
	if err != nil {
		log.Println("System stats failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute system stats", "SYSTEM_STATS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *ShortLinkHandler) mapCreateError(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsInvalidURL(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "URL is invalid", "INVALID_URL", nil)
	case businessflow.IsUnsafeURL(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "URL is not allowed", "UNSAFE_URL", nil)
	case businessflow.IsInvalidAlias(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Custom alias is invalid", "INVALID_ALIAS", nil)
	case businessflow.IsAliasTaken(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Custom alias is already taken", "ALIAS_TAKEN", nil)
	case businessflow.IsCodeExhausted(err):
		log.Println("Short code allocation exhausted", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Could not allocate a short code", "CODE_EXHAUSTED", nil)
	default:
		log.Println("Create short link failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create short link", "CREATE_SHORT_LINK_FAILED", nil)
	}
}

func (h *ShortLinkHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func (h *ShortLinkHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, clientIP(c))
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
