package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/twilio/twilio-go/client"
)

// ValidateTwilioSignature validates that the webhook request is from Twilio.
// baseURL overrides the scheme and host used to rebuild the signed URL when
// the bot runs behind a proxy; leave it empty to use the request's own.
func ValidateTwilioSignature(authToken, baseURL string) fiber.Handler {
	validator := client.NewRequestValidator(authToken)

	return func(c *fiber.Ctx) error {
		// Get Twilio signature from header
		twilioSignature := c.Get("X-Twilio-Signature")
		if twilioSignature == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Twilio signature",
			})
		}

		if authToken == "" {
			// Log error but don't expose to client
			log.Println("ERROR: TWILIO_AUTH_TOKEN not set")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		// Get all form parameters
		formParams := make(map[string]string)
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			formParams[string(key)] = string(value)
		})

		if !validator.Validate(fullURL(c, baseURL), formParams, twilioSignature) {
			log.Printf("⚠️  Rejected webhook with invalid Twilio signature from %s", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}

		return c.Next()
	}
}

// fullURL rebuilds the URL Twilio signed, including the query string
func fullURL(c *fiber.Ctx, baseURL string) string {
	if baseURL != "" {
		return baseURL + string(c.Request().RequestURI())
	}
	return c.BaseURL() + string(c.Request().RequestURI())
}
