package peppol

import (
	"fmt"

	"github.com/tu-usuario/factura-lv/internal/domain"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
)

// validateForExport comprueba la presencia de todo campo que el perfil
// PEPPOL BIS 3.0 declara obligatorio, antes de emitir un solo byte.
// Los fallos se corrigen completando datos upstream (cliente, configuración
// del emisor), nunca dentro del serializador.
func validateForExport(ctx *ExportContext) error {
	if ctx == nil || ctx.Invoice == nil {
		return domain.NewExportValidationError("invoice", "contexto de exportación incompleto")
	}
	inv := ctx.Invoice

	// La exportación exige número asignado: un borrador no es exportable.
	if inv.Status == entity.InvoiceStatusDraft {
		return domain.NewExportValidationError("status", "una factura en borrador no tiene número asignado")
	}
	if inv.Number == "" {
		return domain.NewExportValidationError("number", "obligatorio para exportar")
	}
	if len(inv.Items) == 0 {
		return domain.NewExportValidationError("items", "la factura no tiene líneas")
	}

	if err := validateParty("issuer", inv.Issuer); err != nil {
		return err
	}
	if err := validateParty("buyer", inv.Buyer); err != nil {
		return err
	}

	// Cada tipo de IVA presente debe tener categoría de impuesto mapeada.
	for i, item := range inv.Items {
		if _, ok := ctx.RateCategories.Category(item.VatRate); !ok {
			return domain.NewExportValidationError(
				fmt.Sprintf("items[%d].vatRate", i),
				fmt.Sprintf("tipo %s sin categoría de impuesto para el estándar", item.VatRate.String()),
			)
		}
	}
	return nil
}

func validateParty(prefix string, p entity.Party) error {
	if p.Name == "" {
		return domain.NewExportValidationError(prefix+".name", "obligatorio")
	}
	if p.RegNumber == "" && p.VatNumber == "" {
		return domain.NewExportValidationError(prefix+".regNumber", "se requiere número de registro o de IVA")
	}
	if p.LegalAddress == "" {
		return domain.NewExportValidationError(prefix+".legalAddress", "dirección obligatoria")
	}
	if p.CountryCode == "" {
		return domain.NewExportValidationError(prefix+".countryCode", "código de país obligatorio")
	}
	return nil
}
