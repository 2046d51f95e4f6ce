package handlers

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/Kusanagi/app/middleware"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/gofiber/fiber/v3"
)

// RedirectHandlerInterface defines the contract for the public redirect endpoint
type RedirectHandlerInterface interface {
	Visit(c fiber.Ctx) error
}

type RedirectHandler struct {
	visitFlow businessflow.VisitFlow
}

func NewRedirectHandler(visitFlow businessflow.VisitFlow) RedirectHandlerInterface {
	return &RedirectHandler{visitFlow: visitFlow}
}

// Visit resolves a short link, enqueues the click, and redirects
// @Summary Visit Short Link
// @Tags ShortLinks
// @Produce json
// @Param code path string true "Short code or custom alias"
// @Success 302 {string} string "Redirect"
// @Failure 404 {object} any
// @Failure 410 {object} any
// @Failure 500 {object} any
// @Router /{code} [get]
func (h *RedirectHandler) Visit(c fiber.Ctx) error {
	key := c.Params("code")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).SendString("invalid short link")
	}

	metadata := businessflow.NewClientMetadata(clientIP(c), c.Get("User-Agent"))
	metadata.SetReferer(c.Get("Referer"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	target, err := h.visitFlow.Visit(h.createRequestContext(c, "/"+key), key, metadata)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return c.Status(fiber.StatusNotFound).SendString("not found")
		}
		if businessflow.IsLinkExpired(err) {
			return c.Status(fiber.StatusGone).SendString("link expired")
		}
		log.Println("Visit short link failed", err)
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	middleware.RedirectServed()
	return c.Redirect().Status(fiber.StatusFound).To(target)
}

func (h *RedirectHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 5*time.Second)
}

func (h *RedirectHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, clientIP(c))
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
