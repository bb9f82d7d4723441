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
	"github.com/joho/godotenv"

	"github.com/tu-usuario/factura-lv/internal/application/auth"
	"github.com/tu-usuario/factura-lv/internal/application/billing"
	"github.com/tu-usuario/factura-lv/internal/application/catalog"
	"github.com/tu-usuario/factura-lv/internal/application/settings"
	"github.com/tu-usuario/factura-lv/internal/domain/numbering"
	infraeds "github.com/tu-usuario/factura-lv/internal/infrastructure/eds"
	infragdrive "github.com/tu-usuario/factura-lv/internal/infrastructure/gdrive"
	infrapdf "github.com/tu-usuario/factura-lv/internal/infrastructure/pdf"
	infrapeppol "github.com/tu-usuario/factura-lv/internal/infrastructure/peppol"
	infrasmtp "github.com/tu-usuario/factura-lv/internal/infrastructure/smtp"
	"github.com/tu-usuario/factura-lv/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/factura-lv/internal/interfaces/http"
	"github.com/tu-usuario/factura-lv/pkg/config"
	"github.com/tu-usuario/factura-lv/pkg/logger"
	pkgpeppol "github.com/tu-usuario/factura-lv/pkg/peppol"
)

func main() {
	// Cargar .env si existe; en producción las env vars ya vienen del entorno.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// Los tipos de IVA admitidos y el mapa de categorías UBL se validan en el
	// arranque: un tipo sin categoría imposibilitaría exportar las facturas.
	allowedRates, err := cfg.Billing.AllowedVatRates()
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de IVA")
	}
	categories := pkgpeppol.DefaultRateCategories()
	if err := categories.Validate(allowedRates); err != nil {
		log.Fatal().Err(err).Msg("mapa de categorías de IVA incompleto")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	invoiceRepo := postgres.NewInvoiceRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	serviceRepo := postgres.NewServiceRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	sequenceRepo := postgres.NewSequenceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	settingsUC := settings.NewUseCase(settingsRepo)

	// La clave del contador es la serie de configuración; el prefijo editable
	// en ajustes solo cambia cómo se muestra el número, nunca la numeración.
	authority := numbering.NewAuthority(sequenceRepo, numbering.Config{
		Start: int64(cfg.Billing.CounterStart),
		PrefixFor: func(string) string {
			return settingsUC.SeriesPrefix(cfg.Billing.SeriesPrefix)
		},
	})
	clientUC := catalog.NewClientUseCase(clientRepo)
	serviceUC := catalog.NewServiceUseCase(serviceRepo, allowedRates)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	billingCfg := billing.Config{
		Currency:     cfg.Billing.Currency,
		AllowedRates: allowedRates,
		SeriesPrefix: cfg.Billing.SeriesPrefix,
		DueDays:      cfg.Billing.DueDays,
	}
	invoiceUC := billing.NewInvoiceUseCase(
		invoiceRepo, clientRepo, settingsUC, authority, txRunner, billingCfg, log,
	)

	// Integraciones opcionales: sin configuración quedan en nil y el caso de
	// uso responde con un error de validación en lugar de fallar en runtime.
	var edsSubmitter billing.EDSSubmitter
	if cfg.EDS.Enabled() {
		edsSubmitter = infraeds.NewClient(cfg.EDS.BaseURL, cfg.EDS.APIKey, log)
	}
	var mailer billing.Mailer
	if cfg.SMTP.Enabled() {
		mailer = infrasmtp.NewMailer(cfg.SMTP, log)
	}
	var backup billing.BackupUploader
	if cfg.GDrive.Enabled() {
		uploader, err := infragdrive.NewUploader(ctx, cfg.GDrive.CredentialsFile, cfg.GDrive.FolderID, log)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente de Google Drive")
		}
		backup = uploader
	}

	exportUC := billing.NewExportUseCase(
		invoiceRepo,
		infrapeppol.NewXMLBuilderService(),
		categories,
		infrapdf.NewMarotoInvoiceGenerator(),
		edsSubmitter,
		mailer,
		backup,
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Factura LV API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		InvoiceUC:  invoiceUC,
		ExportUC:   exportUC,
		ClientUC:   clientUC,
		ServiceUC:  serviceUC,
		SettingsUC: settingsUC,
		AuthUC:     authUC,
		JWTSecret:  cfg.JWT.Secret,
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
