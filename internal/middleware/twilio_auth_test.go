package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAuthToken = "12345"

// sign computes the X-Twilio-Signature for a form POST the way Twilio does
func sign(t *testing.T, token, fullURL string, form url.Values) string {
	t.Helper()
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := fullURL
	for _, k := range keys {
		data += k + form.Get(k)
	}

	mac := hmac.New(sha1.New, []byte(token))
	_, err := mac.Write([]byte(data))
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newSignedApp(baseURL string) *fiber.App {
	app := fiber.New()
	app.Post("/bot", ValidateTwilioSignature(testAuthToken, baseURL), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestValidateTwilioSignature(t *testing.T) {
	form := url.Values{"Body": {"hi"}, "From": {"whatsapp:+1555"}}

	tests := []struct {
		name      string
		baseURL   string
		signedURL string
		signature string
		want      int
	}{
		{name: "valid", signedURL: "http://example.com/bot", want: fiber.StatusOK},
		{name: "behind proxy", baseURL: "https://bot.example.org", signedURL: "https://bot.example.org/bot", want: fiber.StatusOK},
		{name: "wrong url", signedURL: "http://evil.com/bot", want: fiber.StatusUnauthorized},
		{name: "missing signature", signature: "-", want: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newSignedApp(tt.baseURL)

			req := httptest.NewRequest(fiber.MethodPost, "http://example.com/bot", strings.NewReader(form.Encode()))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
			if tt.signature != "-" {
				req.Header.Set("X-Twilio-Signature", sign(t, testAuthToken, tt.signedURL, form))
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestValidateTwilioSignature_NoAuthToken(t *testing.T) {
	app := fiber.New()
	app.Post("/bot", ValidateTwilioSignature("", ""), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest(fiber.MethodPost, "http://example.com/bot", strings.NewReader("Body=hi"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.Header.Set("X-Twilio-Signature", "abc")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
