package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/gofiber/fiber/v3"
)

// AnalyticsHandlerInterface defines the contract for analytics and export handlers
type AnalyticsHandlerInterface interface {
	LinkAnalytics(c fiber.Ctx) error
	DownloadClicksCSV(c fiber.Ctx) error
	DownloadShortLinksExcel(c fiber.Ctx) error
}

// AnalyticsHandler handles analytics and export HTTP requests
type AnalyticsHandler struct {
	analyticsFlow businessflow.AnalyticsFlow
	exportFlow    businessflow.ExportFlow
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsFlow businessflow.AnalyticsFlow, exportFlow businessflow.ExportFlow) AnalyticsHandlerInterface {
	return &AnalyticsHandler{
		analyticsFlow: analyticsFlow,
		exportFlow:    exportFlow,
	}
}

func (h *AnalyticsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AnalyticsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// LinkAnalytics returns the click rollup for one link over the requested window
// @Summary Link Analytics
// @Tags Analytics
// @Produce json
// @Param code path string true "Short code or custom alias"
// @Param days query int false "Window size in days (default 30)"
// @Success 200 {object} dto.APIResponse{data=dto.LinkAnalyticsResponse} "Analytics retrieved"
// @Failure 404 {object} dto.APIResponse "Short link not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/{code}/analytics [get]
func (h *AnalyticsHandler) LinkAnalytics(c fiber.Ctx) error {
	key := c.Params("code")
	if key == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Short code is required", "MISSING_CODE", nil)
	}
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "days must be a positive integer", "INVALID_DAYS", nil)
		}
		days = parsed
	}

	result, err := h.analyticsFlow.LinkAnalytics(h.createRequestContext(c, "/api/v1/links/"+key+"/analytics"), key, days)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Short link not found", "LINK_NOT_FOUND", nil)
		}
		log.Println("Link analytics failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute analytics", "LINK_ANALYTICS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// DownloadClicksCSV streams a link's raw click log as CSV
// @Summary Download Clicks CSV
// @Tags Analytics
// @Produce text/csv
// @Param code path string true "Short code or custom alias"
// @Success 200 {string} string "CSV file"
// @Failure 404 {object} dto.APIResponse "Short link not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/{code}/clicks.csv [get]
func (h *AnalyticsHandler) DownloadClicksCSV(c fiber.Ctx) error {
	key := c.Params("code")
	if key == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Short code is required", "MISSING_CODE", nil)
	}

	filename, payload, err := h.exportFlow.DownloadClicksCSV(h.createRequestContextWithTimeout(c, "/api/v1/links/"+key+"/clicks.csv", 60*time.Second), key)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Short link not found", "LINK_NOT_FOUND", nil)
		}
		log.Println("Clicks CSV export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export clicks", "EXPORT_CLICKS_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(payload)
}

// DownloadShortLinksExcel streams the link inventory as an Excel workbook
// @Summary Download Short Links Excel
// @Tags Analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param is_active query bool false "Filter by active flag"
// @Param domain query string false "Filter by target domain"
// @Success 200 {string} string "Excel file"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/exports/links.xlsx [get]
func (h *AnalyticsHandler) DownloadShortLinksExcel(c fiber.Ctx) error {
	filter := models.ShortLinkFilter{}
	if raw := c.Query("is_active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "is_active must be a boolean", "INVALID_FILTERS", nil)
		}
		filter.IsActive = &parsed
	}
	if domain := c.Query("domain"); domain != "" {
		filter.Domain = &domain
	}

	filename, payload, err := h.exportFlow.DownloadShortLinksExcel(h.createRequestContextWithTimeout(c, "/api/v1/exports/links.xlsx", 60*time.Second), filter)
	if err != nil {
		log.Println("Short links Excel export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export short links", "EXPORT_SHORT_LINKS_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(payload)
}

func (h *AnalyticsHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func (h *AnalyticsHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, clientIP(c))
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
