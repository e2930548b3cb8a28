package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medport/internal/security"
)

// BearerAuth guards /api with HS256 tokens. It is a no-op without a secret.
func (handler *Handler) BearerAuth(c *fiber.Ctx) error {
	if len(handler.secretKey) == 0 {
		return c.Next()
	}

	key := throttleKey(c)
	now := handler.clock.Now()
	if handler.tokenThrottle.blocked(key, now) {
		return apiError(c, fiber.StatusTooManyRequests, "too many failed attempts")
	}

	raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		handler.tokenThrottle.fail(key, now)
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	claims, err := security.ParseToken(handler.secretKey, raw, now)
	if err != nil {
		handler.tokenThrottle.fail(key, now)
		handler.logger.Debug("rejected bearer token", "request_id", requestID(c), "error", err)
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.tokenThrottle.reset(key)
	c.Locals(contextSubjectKey, claims.Subject)
	return c.Next()
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
