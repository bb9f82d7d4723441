package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/factura-lv/internal/application/dto"
	"github.com/tu-usuario/factura-lv/internal/application/settings"
)

// SettingsHandler expone los datos del emisor y demás ajustes clave-valor.
type SettingsHandler struct {
	uc *settings.UseCase
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(uc *settings.UseCase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

// GetAll GET /api/settings
func (h *SettingsHandler) GetAll(c *fiber.Ctx) error {
	values, err := h.uc.GetAll()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SettingsResponse{Values: values})
}

// Update PUT /api/settings
//
// Actualización parcial: solo sobreescribe las claves presentes en el cuerpo.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.Update(in.Values); err != nil {
		return respondError(c, err)
	}
	values, err := h.uc.GetAll()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SettingsResponse{Values: values})
}
