package http

import (
	"context"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/application/session"
)

// LocalIdentity clave de la identidad de sesión en c.Locals.
const LocalIdentity = "identity"

// SessionCookie cookie con el token para la navegación desde el navegador.
const SessionCookie = "caminvoice_session"

// LoginPath pantalla de login a la que se redirige sin sesión.
const LoginPath = "/login"

// Authenticator valida un token y devuelve la identidad de su sesión (auth.AuthUseCase).
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Identity, error)
}

// SessionGuard exige una sesión válida. Sin ella responde 401 con la ruta de login
// (o 302 si el cliente navega con HTML). La identidad queda en c.Locals(LocalIdentity).
func SessionGuard(authn Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return denied(c, "sesión requerida")
		}
		id, err := authn.Authenticate(c.UserContext(), token)
		if err != nil || id == nil {
			return denied(c, "token inválido o sesión expirada")
		}
		c.Locals(LocalIdentity, id)
		return c.Next()
	}
}

// bearerToken del header Authorization o, en su defecto, de la cookie de sesión.
func bearerToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	return c.Cookies(SessionCookie)
}

// LoginRedirect /login?redirect=<ruta solicitada>.
func LoginRedirect(path string) string {
	return LoginPath + "?redirect=" + url.QueryEscape(path)
}

func denied(c *fiber.Ctx, msg string) error {
	target := LoginRedirect(c.OriginalURL())
	if c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMETextHTML {
		return c.Redirect(target, fiber.StatusFound)
	}
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Code:     CodeUnauthorized,
		Message:  msg,
		Redirect: target,
	})
}

// GetIdentity identidad de la sesión (después de SessionGuard).
func GetIdentity(c *fiber.Ctx) *session.Identity {
	id, _ := c.Locals(LocalIdentity).(*session.Identity)
	return id
}

// GetUserID devuelve el UserID de la sesión o "".
func GetUserID(c *fiber.Ctx) string {
	if id := GetIdentity(c); id != nil {
		return id.UserID
	}
	return ""
}
