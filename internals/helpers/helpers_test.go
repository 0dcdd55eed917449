package helper

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "0 B", HumanSize(0))
	assert.Equal(t, "1023 B", HumanSize(1023))
	assert.Equal(t, "1.5 KB", HumanSize(1536))
	assert.Equal(t, "50.0 MB", HumanSize(52428800))
	assert.Equal(t, "1.0 GB", HumanSize(1<<30))
}

func TestFailureKindStatus(t *testing.T) {
	assert.Equal(t, fiber.StatusUnprocessableEntity, FailValidation.Status())
	assert.Equal(t, fiber.StatusForbidden, FailForbidden.Status())
	assert.Equal(t, fiber.StatusUnauthorized, FailUnauthenticated.Status())
	assert.Equal(t, fiber.StatusBadGateway, FailGateway.Status())
	assert.Equal(t, fiber.StatusInternalServerError, FailureKind("other").Status())
}

func TestKindOfWrapped(t *testing.T) {
	base := Gateway("could not load", errors.New("boom"))
	wrapped := errors.Join(errors.New("ctx"), base)
	assert.Equal(t, FailGateway, KindOf(wrapped))
	assert.Equal(t, FailureKind(""), KindOf(errors.New("plain")))
	assert.ErrorContains(t, base, "boom")
}

func TestJsonFailureCarriesData(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return JsonFailure(c, Validation("name", "Name is required"), fiber.Map{"name": ""})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"error_code":"VALIDATION_ERROR"`)
	assert.Contains(t, string(body), `"Name is required"`)
	assert.Contains(t, string(body), `"data":{"name":""}`)
}
