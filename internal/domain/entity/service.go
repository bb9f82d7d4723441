package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service es una entrada del catálogo de servicios/productos predefinidos.
type Service struct {
	ID           string
	Name         string
	Unit         string // "gab." (unidad), "h", "mēn."...
	DefaultPrice decimal.Decimal
	VatRate      decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
