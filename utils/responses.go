package utils

import "github.com/gofiber/fiber/v2"

// ErrorResponse is the error envelope every handler returns: a short
// human-facing message plus the underlying error string.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Fail sends an error envelope with the given status.
func Fail(c *fiber.Ctx, status int, message string, err error) error {
	resp := ErrorResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	return c.Status(status).JSON(resp)
}

// BadRequest sends a 400 with the given message.
func BadRequest(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusBadRequest, message, nil)
}

// Unauthorized sends a 401 with the given message.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusUnauthorized, message, nil)
}

// NotFound sends a 404 with the given message.
func NotFound(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusNotFound, message, nil)
}

// ServerError sends a 500 with the given message and error detail.
func ServerError(c *fiber.Ctx, message string, err error) error {
	return Fail(c, fiber.StatusInternalServerError, message, err)
}
