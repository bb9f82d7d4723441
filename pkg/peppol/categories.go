package peppol

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateCategoryMap asocia explícitamente cada tipo de IVA configurado con su
// categoría de impuesto UNTDID 5305. Sustituye la búsqueda ad-hoc "S si > 0":
// un tipo sin entrada en el mapa se rechaza en vez de codificarse en silencio.
type RateCategoryMap map[string]string

// RateKey normaliza un tipo de IVA como clave del mapa ("21.00").
func RateKey(rate decimal.Decimal) string {
	return rate.Round(2).StringFixed(2)
}

// Category devuelve la categoría para un tipo, o false si no está mapeado.
func (m RateCategoryMap) Category(rate decimal.Decimal) (string, bool) {
	c, ok := m[RateKey(rate)]
	return c, ok
}

// DefaultRateCategories mapea los tipos de IVA letones vigentes:
// 21% estándar, 12% y 5% reducidos (categoría S), 0% exento (categoría E,
// mismo criterio que el documento impreso del emisor).
func DefaultRateCategories() RateCategoryMap {
	return RateCategoryMap{
		"0.00":  TaxCategoryExempt,
		"5.00":  TaxCategoryStandard,
		"12.00": TaxCategoryStandard,
		"21.00": TaxCategoryStandard,
	}
}

// Validate comprueba en el arranque que todos los tipos permitidos tienen
// categoría mapeada y que las categorías son códigos UNTDID 5305 conocidos.
func (m RateCategoryMap) Validate(allowedRates []decimal.Decimal) error {
	valid := map[string]bool{
		TaxCategoryStandard:  true,
		TaxCategoryZeroRated: true,
		TaxCategoryExempt:    true,
	}
	for _, rate := range allowedRates {
		cat, ok := m.Category(rate)
		if !ok {
			return fmt.Errorf("peppol: tipo de IVA %s sin categoría de impuesto mapeada", RateKey(rate))
		}
		if !valid[cat] {
			return fmt.Errorf("peppol: categoría %q inválida para el tipo %s", cat, RateKey(rate))
		}
	}
	return nil
}
