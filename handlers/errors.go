package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"influencer-battle/services"
)

var kindStatus = map[services.ErrorKind]int{
	services.KindAlreadyJoined:      fiber.StatusConflict,
	services.KindDuplicateHandle:    fiber.StatusConflict,
	services.KindInvalidInput:       fiber.StatusBadRequest,
	services.KindFileTooLarge:       fiber.StatusRequestEntityTooLarge,
	services.KindProfileIncomplete:  fiber.StatusUnprocessableEntity,
	services.KindInvalidVideoSource: fiber.StatusUnprocessableEntity,
	services.KindOnboardingRequired: fiber.StatusPreconditionFailed,
	services.KindAuthFailed:         fiber.StatusUnauthorized,
	services.KindForbidden:          fiber.StatusForbidden,
	services.KindNotFound:           fiber.StatusNotFound,
	services.KindStorageFailure:     fiber.StatusBadGateway,
}

// respondError writes err as {"error", "code"} with the status for its kind.
func respondError(c *fiber.Ctx, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return c.Status(fiber.StatusRequestTimeout).JSON(fiber.Map{"error": "request cancelled"})
	}

	kind := services.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		log.Printf("❌ [HTTP] %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
			"cause": err.Error(),
		})
	}

	body := fiber.Map{"error": err.Error(), "code": kind}
	if kind == services.KindOnboardingRequired {
		body["action"] = "/onboarding"
	}
	if status >= fiber.StatusInternalServerError {
		log.Printf("⚠️ [HTTP] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(body)
}
