package http

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/factura-lv/internal/application/billing"
	"github.com/tu-usuario/factura-lv/internal/application/dto"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
	"github.com/tu-usuario/factura-lv/internal/domain/repository"
)

// InvoiceHandler maneja las peticiones HTTP de facturas.
type InvoiceHandler struct {
	invoiceUC *billing.InvoiceUseCase
	exportUC  *billing.ExportUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(invoiceUC *billing.InvoiceUseCase, exportUC *billing.ExportUseCase) *InvoiceHandler {
	return &InvoiceHandler{invoiceUC: invoiceUC, exportUC: exportUC}
}

// Create POST /api/invoices crea un borrador.
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.invoiceUC.CreateDraft(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/invoices?search=&status=&date_from=&date_to=&limit=&offset=
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var in dto.ListInvoicesRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.invoiceUC.List(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.invoiceUC.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByNumber GET /api/invoices/by-number/:number
func (h *InvoiceHandler) GetByNumber(c *fiber.Ctx) error {
	number, err := url.PathUnescape(c.Params("number"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAM", Message: "número inválido"})
	}
	out, err := h.invoiceUC.GetByNumber(number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/invoices/:id (solo borradores).
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.invoiceUC.UpdateDraft(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/invoices/:id (solo borradores).
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.invoiceUC.DeleteDraft(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Issue POST /api/invoices/:id/issue asigna número y congela.
func (h *InvoiceHandler) Issue(c *fiber.Ctx) error {
	out, err := h.invoiceUC.Issue(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MarkPaid POST /api/invoices/:id/pay
func (h *InvoiceHandler) MarkPaid(c *fiber.Ctx) error {
	out, err := h.invoiceUC.MarkPaid(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel POST /api/invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.invoiceUC.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Duplicate POST /api/invoices/:id/duplicate
func (h *InvoiceHandler) Duplicate(c *fiber.Ctx) error {
	out, err := h.invoiceUC.Duplicate(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PeekNextNumber GET /api/invoices/next-number. Informativo: no reserva.
func (h *InvoiceHandler) PeekNextNumber(c *fiber.Ctx) error {
	out, err := h.invoiceUC.PeekNextNumber(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// XML GET /api/invoices/:id/xml devuelve el documento UBL de una factura emitida.
func (h *InvoiceHandler) XML(c *fiber.Ctx) error {
	xmlBytes, filename, err := h.exportUC.BuildXML(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(xmlBytes)
}

// PDF GET /api/invoices/:id/pdf (también disponible para borradores).
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.exportUC.BuildPDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// CSV GET /api/invoices/export/csv?status=&date_from=&date_to=
func (h *InvoiceHandler) CSV(c *fiber.Ctx) error {
	filter := repository.InvoiceFilter{
		Search: c.Query("search"),
		Status: entity.InvoiceStatus(c.Query("status")),
	}
	if s := c.Query("date_from"); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_from inválido", Field: "date_from"})
		}
		filter.DateFrom = &d
	}
	if s := c.Query("date_to"); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_to inválido", Field: "date_to"})
		}
		filter.DateTo = &d
	}
	csvBytes, err := h.exportUC.ExportCSV(filter)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="invoices.csv"`)
	return c.Send(csvBytes)
}

// SubmitEDS POST /api/invoices/:id/eds presenta el e-rēķins ante el VID.
func (h *InvoiceHandler) SubmitEDS(c *fiber.Ctx) error {
	out, err := h.exportUC.SubmitEDS(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if !out.Accepted {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(out)
}

// Email POST /api/invoices/:id/email envía la factura al comprador.
func (h *InvoiceHandler) Email(c *fiber.Ctx) error {
	var in dto.EmailInvoiceRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.exportUC.Email(c.Context(), c.Params("id"), in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Backup POST /api/invoices/:id/backup copia PDF y XML en Drive.
func (h *InvoiceHandler) Backup(c *fiber.Ctx) error {
	if err := h.exportUC.Backup(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
