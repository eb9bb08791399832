package auth

import "github.com/gofiber/fiber/v2"

// Envelope is the JSON body of every auth response.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

func respondOK(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondError(c *fiber.Ctx, status int, kind ErrorKind, message string) error {
	return c.Status(status).JSON(Envelope{
		Success:   false,
		Message:   message,
		ErrorCode: string(kind),
	})
}
