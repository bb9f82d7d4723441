package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/factura-lv/internal/application/auth"
	"github.com/tu-usuario/factura-lv/internal/application/billing"
	"github.com/tu-usuario/factura-lv/internal/application/catalog"
	"github.com/tu-usuario/factura-lv/internal/application/settings"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InvoiceUC  *billing.InvoiceUseCase
	ExportUC   *billing.ExportUseCase
	ClientUC   *catalog.ClientUseCase
	ServiceUC  *catalog.ServiceUseCase
	SettingsUC *settings.UseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	protected.Post("/auth/change-password", authHandler.ChangePassword)

	// Clients (protegido)
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", clientHandler.Delete)

	// Services (protegido)
	services := protected.Group("/services")
	serviceHandler := NewServiceHandler(deps.ServiceUC)
	services.Post("/", serviceHandler.Create)
	services.Get("/", serviceHandler.List)
	services.Get("/:id", serviceHandler.GetByID)
	services.Put("/:id", serviceHandler.Update)
	services.Delete("/:id", serviceHandler.Delete)

	// Settings (protegido)
	settingsHandler := NewSettingsHandler(deps.SettingsUC)
	protected.Get("/settings", settingsHandler.GetAll)
	protected.Put("/settings", settingsHandler.Update)

	// Invoices (protegido)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.ExportUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	// Las rutas fijas van antes de /:id para que Fiber no las capture como parámetro.
	invoices.Get("/next-number", invoiceHandler.PeekNextNumber)
	invoices.Get("/export/csv", invoiceHandler.CSV)
	invoices.Get("/by-number/:number", invoiceHandler.GetByNumber)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Post("/:id/issue", invoiceHandler.Issue)
	invoices.Post("/:id/pay", invoiceHandler.MarkPaid)
	invoices.Post("/:id/cancel", invoiceHandler.Cancel)
	invoices.Post("/:id/duplicate", invoiceHandler.Duplicate)
	invoices.Get("/:id/xml", invoiceHandler.XML)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)
	invoices.Post("/:id/eds", invoiceHandler.SubmitEDS)
	invoices.Post("/:id/email", invoiceHandler.Email)
	invoices.Post("/:id/backup", invoiceHandler.Backup)
}
