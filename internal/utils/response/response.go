package response

import (
	"github.com/gofiber/fiber/v2"
)

// Success writes a 200 body with success set alongside the given fields.
func Success(c *fiber.Ctx, data fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range data {
		body[k] = v
	}
	return c.JSON(body)
}

// Error writes {"error": summary, "message": detail}. The message is omitted when empty.
func Error(c *fiber.Ctx, status int, summary, message string) error {
	body := fiber.Map{"error": summary}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, "Bad request", message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized", message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, "Forbidden", message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, "Not found", message)
}

func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, "Conflict", message)
}

func ServerError(c *fiber.Ctx, summary, message string) error {
	return Error(c, fiber.StatusInternalServerError, summary, message)
}
