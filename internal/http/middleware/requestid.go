package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the header used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key used to store the request ID in Fiber's context locals.
	RequestIDLocalKey = "request_id"

	// maxRequestIDLen caps the length of a caller-supplied request ID. IDs
	// end up in every log line and in response headers, so an oversized or
	// binary-ish value gets replaced instead of echoed back.
	maxRequestIDLen = 64
)

// RequestID ensures every request carries a usable request ID.
//
// A caller-supplied X-Request-ID is kept when it is non-empty, within length
// bounds, and printable ASCII; anything else is replaced with a fresh UUID.
// The accepted value is stored in context locals under RequestIDLocalKey and
// echoed on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if !usableRequestID(id) {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}

func usableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
