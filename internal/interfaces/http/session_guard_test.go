package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/application/session"
	"github.com/jhoicas/caminvoice-api/internal/domain"
	apphttp "github.com/jhoicas/caminvoice-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	validToken = "token-valido"
	testUserID = "00000000-0000-0000-0000-000000000001"
)

type fakeAuthn struct{}

func (fakeAuthn) Authenticate(_ context.Context, token string) (*session.Identity, error) {
	if token != validToken {
		return nil, domain.ErrUnauthorized
	}
	return &session.Identity{SessionID: "s-1", UserID: testUserID, Email: "marie@dupont.be"}, nil
}

func buildGuardedApp() *fiber.App {
	app := fiber.New()
	app.Get("/api/invoices/:id", apphttp.SessionGuard(fakeAuthn{}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c)})
	})
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests SessionGuard
// ──────────────────────────────────────────────────────────────────────────────

func TestSessionGuard_SinToken_401ConRedirect(t *testing.T) {
	resp := do(t, buildGuardedApp(), httptest.NewRequest(http.MethodGet, "/api/invoices/42", nil))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, apphttp.CodeUnauthorized, body.Code)
	assert.Equal(t, "/login?redirect=%2Fapi%2Finvoices%2F42", body.Redirect)
}

func TestSessionGuard_NavegadorRecibe302(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/invoices/42", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	resp := do(t, buildGuardedApp(), req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, apphttp.LoginRedirect("/api/invoices/42"), resp.Header.Get("Location"))
}

func TestSessionGuard_TokenInvalido(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/invoices/42", nil)
	req.Header.Set("Authorization", "Bearer otro")
	resp := do(t, buildGuardedApp(), req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/invoices/42", nil)
	req.Header.Set("Authorization", "Basic "+validToken)
	resp = do(t, buildGuardedApp(), req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionGuard_IdentidadEnLocals(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/invoices/42", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	resp := do(t, buildGuardedApp(), req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
}

func TestSessionGuard_TokenEnCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/invoices/42", nil)
	req.AddCookie(&http.Cookie{Name: apphttp.SessionCookie, Value: validToken})
	resp := do(t, buildGuardedApp(), req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
