package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/afero"

	_ "github.com/jhoicas/caminvoice-api/docs"
	"github.com/jhoicas/caminvoice-api/internal/application/analytics"
	"github.com/jhoicas/caminvoice-api/internal/application/auth"
	"github.com/jhoicas/caminvoice-api/internal/application/billing"
	"github.com/jhoicas/caminvoice-api/internal/application/session"
	"github.com/jhoicas/caminvoice-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/caminvoice-api/internal/infrastructure/pdf"
	"github.com/jhoicas/caminvoice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/caminvoice-api/internal/infrastructure/redisstore"
	"github.com/jhoicas/caminvoice-api/internal/infrastructure/ubl"
	httpRouter "github.com/jhoicas/caminvoice-api/internal/interfaces/http"
	"github.com/jhoicas/caminvoice-api/pkg/config"
	"github.com/jhoicas/caminvoice-api/pkg/logger"
)

// @title CamInvoice API
// @version 1.0
// @description API de facturación para instructores de autoescuela.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET no configurado")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		applied, err := postgres.RunMigrations(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Int("applied", applied).Msg("migraciones aplicadas")
	}

	// Sesiones: Redis guarda la identidad y difunde login/logout entre instancias
	redisClient := redisstore.NewClient(cfg.Redis)
	defer redisClient.Close()
	sessions := session.NewStore(
		redisstore.NewSessionBackend(redisClient, cfg.Redis.SessionPrefix, cfg.Redis.EventsChannel),
		cfg.JWT.TTL(),
	)
	if err := sessions.Init(ctx); err != nil {
		log.Warn().Err(err).Msg("suscripción a eventos de sesión")
	}
	defer sessions.Close()

	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	serviceTypeRepo := postgres.NewServiceTypeRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	m := metrics.New(true)

	numbers := billing.NewInvoiceNumberGenerator(invoiceRepo, billing.NumberGeneratorConfig{
		MaxRetries: cfg.Invoice.NumberRetries,
		RetryDelay: cfg.Invoice.NumberRetryDelay,
	}, billing.WithNumberMetrics(m))

	authUC := auth.NewAuthUseCase(userRepo, sessions, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	customerUC := billing.NewCustomerUseCase(customerRepo, invoiceRepo)
	serviceTypeUC := billing.NewServiceTypeUseCase(serviceTypeRepo)
	profileUC := billing.NewProfileUseCase(profileRepo, userRepo, cfg.Invoice.DefaultTaxRate)
	invoiceUC := billing.NewInvoiceUseCase(
		txRunner, invoiceRepo, customerRepo, serviceTypeRepo, profileRepo, numbers,
		billing.InvoiceConfig{
			DefaultTaxRate: cfg.Invoice.DefaultTaxRate,
			PaymentDays:    cfg.Invoice.PaymentDays,
		},
		m,
	)
	dashboardUC := analytics.NewDashboardUseCase(invoiceUC, customerUC, profileUC)

	// PDF: renderer vectorial (gofpdf) y de plantilla (maroto + vista previa HTML)
	templateRenderer, err := infrapdf.NewTemplateRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("plantilla de factura")
	}
	documentUC := billing.NewPDFUseCase(
		invoiceUC, profileUC,
		[]billing.InvoiceRenderer{infrapdf.NewVectorRenderer(), templateRenderer},
		ubl.NewExporter(),
		afero.NewOsFs(),
		billing.PDFConfig{
			DefaultRenderer: cfg.PDF.DefaultRenderer,
			ArchiveDir:      cfg.PDF.ExportDir,
		},
		m,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "CamInvoice API",
	}))

	app.Get("/metrics", m.Handler())

	health := httpRouter.NewHealthHandler(cfg.App.Name, map[string]httpRouter.Pinger{
		"postgres": pool.Ping,
		"redis": func(ctx context.Context) error {
			return redisstore.Ping(ctx, redisClient)
		},
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		CustomerUC:    customerUC,
		ServiceTypeUC: serviceTypeUC,
		ProfileUC:     profileUC,
		InvoiceUC:     invoiceUC,
		DocumentUC:    documentUC,
		DashboardUC:   dashboardUC,
		Health:        health,
		CookieSecure:  cfg.App.IsProduction(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
