package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/caminvoice-api/internal/application/analytics"
	"github.com/jhoicas/caminvoice-api/internal/application/auth"
	"github.com/jhoicas/caminvoice-api/internal/application/billing"
)

// Route entrada de la tabla de rutas. RequiresAuth antepone SessionGuard al handler.
type Route struct {
	Name         string
	Method       string
	Path         string
	Title        string
	RequiresAuth bool
	Handler      fiber.Handler
}

// HomePath destino de "/".
const HomePath = "/api/customers"

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	CustomerUC    *billing.CustomerUseCase
	ServiceTypeUC *billing.ServiceTypeUseCase
	ProfileUC     *billing.ProfileUseCase
	InvoiceUC     *billing.InvoiceUseCase
	DocumentUC    *billing.PDFUseCase
	DashboardUC   *analytics.DashboardUseCase
	Health        *HealthHandler
	CookieSecure  bool
}

// Routes tabla declarativa de la API.
func Routes(deps RouterDeps) []Route {
	authH := NewAuthHandler(deps.AuthUC, deps.CookieSecure)
	customerH := NewCustomerHandler(deps.CustomerUC)
	serviceH := NewServiceTypeHandler(deps.ServiceTypeUC)
	profileH := NewProfileHandler(deps.ProfileUC)
	invoiceH := NewInvoiceHandler(deps.InvoiceUC)
	documentH := NewDocumentHandler(deps.DocumentUC)
	dashboardH := NewDashboardHandler(deps.DashboardUC)

	routes := []Route{
		{Name: "home", Method: fiber.MethodGet, Path: "/", Title: "Inicio", Handler: Home},

		// Auth
		{Name: "auth.register", Method: fiber.MethodPost, Path: "/api/auth/register", Title: "Registro", Handler: authH.Register},
		{Name: "auth.login", Method: fiber.MethodPost, Path: "/api/auth/login", Title: "Login", Handler: authH.Login},
		{Name: "auth.logout", Method: fiber.MethodPost, Path: "/api/auth/logout", Title: "Logout", RequiresAuth: true, Handler: authH.Logout},
		{Name: "auth.me", Method: fiber.MethodGet, Path: "/api/auth/me", Title: "Sesión", RequiresAuth: true, Handler: authH.Me},

		// Dashboard
		{Name: "dashboard", Method: fiber.MethodGet, Path: "/api/dashboard/summary", Title: "Dashboard", RequiresAuth: true, Handler: dashboardH.GetSummary},

		// Customers
		{Name: "customers.list", Method: fiber.MethodGet, Path: "/api/customers", Title: "Clientes", RequiresAuth: true, Handler: customerH.List},
		{Name: "customers.stats", Method: fiber.MethodGet, Path: "/api/customers/stats", Title: "Estadísticas de clientes", RequiresAuth: true, Handler: customerH.Stats},
		{Name: "customers.options", Method: fiber.MethodGet, Path: "/api/customers/options", Title: "Clientes para facturar", RequiresAuth: true, Handler: customerH.Options},
		{Name: "customers.create", Method: fiber.MethodPost, Path: "/api/customers", Title: "Nuevo cliente", RequiresAuth: true, Handler: customerH.Create},
		{Name: "customers.get", Method: fiber.MethodGet, Path: "/api/customers/:id", Title: "Cliente", RequiresAuth: true, Handler: customerH.Get},
		{Name: "customers.update", Method: fiber.MethodPut, Path: "/api/customers/:id", Title: "Editar cliente", RequiresAuth: true, Handler: customerH.Update},
		{Name: "customers.delete", Method: fiber.MethodDelete, Path: "/api/customers/:id", Title: "Eliminar cliente", RequiresAuth: true, Handler: customerH.Delete},

		// Service types
		{Name: "services.list", Method: fiber.MethodGet, Path: "/api/service-types", Title: "Servicios", RequiresAuth: true, Handler: serviceH.List},
		{Name: "services.create", Method: fiber.MethodPost, Path: "/api/service-types", Title: "Nuevo servicio", RequiresAuth: true, Handler: serviceH.Create},
		{Name: "services.get", Method: fiber.MethodGet, Path: "/api/service-types/:id", Title: "Servicio", RequiresAuth: true, Handler: serviceH.Get},
		{Name: "services.update", Method: fiber.MethodPut, Path: "/api/service-types/:id", Title: "Editar servicio", RequiresAuth: true, Handler: serviceH.Update},
		{Name: "services.delete", Method: fiber.MethodDelete, Path: "/api/service-types/:id", Title: "Eliminar servicio", RequiresAuth: true, Handler: serviceH.Delete},

		// Profile
		{Name: "profile.get", Method: fiber.MethodGet, Path: "/api/profile", Title: "Perfil", RequiresAuth: true, Handler: profileH.Get},
		{Name: "profile.completion", Method: fiber.MethodGet, Path: "/api/profile/completion", Title: "Completitud del perfil", RequiresAuth: true, Handler: profileH.Completion},
		{Name: "profile.defaults", Method: fiber.MethodGet, Path: "/api/profile/defaults", Title: "Perfil por defecto", RequiresAuth: true, Handler: profileH.Defaults},
		{Name: "profile.create", Method: fiber.MethodPost, Path: "/api/profile", Title: "Crear perfil", RequiresAuth: true, Handler: profileH.Create},
		{Name: "profile.save", Method: fiber.MethodPut, Path: "/api/profile", Title: "Guardar perfil", RequiresAuth: true, Handler: profileH.Save},
		{Name: "profile.delete", Method: fiber.MethodDelete, Path: "/api/profile", Title: "Eliminar perfil", RequiresAuth: true, Handler: profileH.Delete},

		// Invoices
		{Name: "invoices.list", Method: fiber.MethodGet, Path: "/api/invoices", Title: "Facturas", RequiresAuth: true, Handler: invoiceH.List},
		{Name: "invoices.stats", Method: fiber.MethodGet, Path: "/api/invoices/stats", Title: "Estadísticas de facturas", RequiresAuth: true, Handler: invoiceH.Stats},
		{Name: "invoices.create", Method: fiber.MethodPost, Path: "/api/invoices", Title: "Nueva factura", RequiresAuth: true, Handler: invoiceH.Create},
		{Name: "invoices.get", Method: fiber.MethodGet, Path: "/api/invoices/:id", Title: "Factura", RequiresAuth: true, Handler: invoiceH.Get},
		{Name: "invoices.update", Method: fiber.MethodPut, Path: "/api/invoices/:id", Title: "Editar factura", RequiresAuth: true, Handler: invoiceH.Update},
		{Name: "invoices.delete", Method: fiber.MethodDelete, Path: "/api/invoices/:id", Title: "Eliminar factura", RequiresAuth: true, Handler: invoiceH.Delete},
		{Name: "invoices.status", Method: fiber.MethodPatch, Path: "/api/invoices/:id/status", Title: "Cambiar estado", RequiresAuth: true, Handler: invoiceH.UpdateStatus},
		{Name: "invoices.recalculate", Method: fiber.MethodPost, Path: "/api/invoices/:id/recalculate", Title: "Recalcular totales", RequiresAuth: true, Handler: invoiceH.Recalculate},
		{Name: "invoices.items.create", Method: fiber.MethodPost, Path: "/api/invoices/:id/items", Title: "Añadir línea", RequiresAuth: true, Handler: invoiceH.AddItem},
		{Name: "invoices.items.update", Method: fiber.MethodPut, Path: "/api/invoices/:id/items/:itemId", Title: "Editar línea", RequiresAuth: true, Handler: invoiceH.UpdateItem},
		{Name: "invoices.items.delete", Method: fiber.MethodDelete, Path: "/api/invoices/:id/items/:itemId", Title: "Eliminar línea", RequiresAuth: true, Handler: invoiceH.DeleteItem},

		// Documents
		{Name: "invoices.pdf", Method: fiber.MethodGet, Path: "/api/invoices/:id/pdf", Title: "Descargar PDF", RequiresAuth: true, Handler: documentH.Download},
		{Name: "invoices.preview", Method: fiber.MethodGet, Path: "/api/invoices/:id/preview", Title: "Vista previa", RequiresAuth: true, Handler: documentH.Preview},
		{Name: "invoices.blob", Method: fiber.MethodGet, Path: "/api/invoices/:id/blob", Title: "PDF en memoria", RequiresAuth: true, Handler: documentH.Blob},
		{Name: "invoices.archive", Method: fiber.MethodPost, Path: "/api/invoices/:id/archive", Title: "Archivar PDF", RequiresAuth: true, Handler: documentH.Archive},
		{Name: "invoices.ubl", Method: fiber.MethodGet, Path: "/api/invoices/:id/ubl", Title: "Factura electrónica UBL", RequiresAuth: true, Handler: documentH.UBL},
		{Name: "documents.renderers", Method: fiber.MethodGet, Path: "/api/documents/renderers", Title: "Renderers PDF", RequiresAuth: true, Handler: documentH.Renderers},
	}
	if deps.Health != nil {
		routes = append(routes, Route{Name: "health", Method: fiber.MethodGet, Path: "/health", Title: "Salud", Handler: deps.Health.Check})
	}
	return routes
}

// Register monta la tabla en app. Las rutas protegidas pasan por SessionGuard.
func Register(app fiber.Router, routes []Route, authn Authenticator) {
	guard := SessionGuard(authn)
	for _, r := range routes {
		handlers := []fiber.Handler{r.Handler}
		if r.RequiresAuth {
			handlers = append([]fiber.Handler{guard}, handlers...)
		}
		app.Add(r.Method, r.Path, handlers...).Name(r.Name)
	}
}

// Router registra todas las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	Register(app, Routes(deps), deps.AuthUC)
}

// Home redirige "/" al listado de clientes.
func Home(c *fiber.Ctx) error {
	return c.Redirect(HomePath, fiber.StatusFound)
}
