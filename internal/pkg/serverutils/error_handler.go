package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// ErrorHandlerMiddleware turns panics into a JSON 500 instead of
// dropping the connection.
func ErrorHandlerMiddleware() fiber.Handler {
	return recover.New()
}
