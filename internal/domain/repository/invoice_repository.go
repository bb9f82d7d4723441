package repository

import (
	"time"

	"github.com/tu-usuario/factura-lv/internal/domain/entity"
)

// InvoiceFilter filtros de listado (búsqueda, estado, rango de fechas).
type InvoiceFilter struct {
	Search   string // número de factura o nombre del comprador
	Status   entity.InvoiceStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	// Create persiste cabecera y líneas de un borrador nuevo.
	Create(invoice *entity.Invoice) error
	// Update actualiza número, estado, totales, notas y updated_at.
	// Las líneas solo se reescriben mientras la factura sigue en Draft.
	Update(invoice *entity.Invoice) error
	GetByID(id string) (*entity.Invoice, error)
	// GetByNumber busca por número asignado (único global).
	GetByNumber(number string) (*entity.Invoice, error)
	// List devuelve la página filtrada y el total sin paginar.
	List(filter InvoiceFilter) ([]*entity.Invoice, int, error)
	// Delete elimina cabecera y líneas. Los casos de uso solo lo permiten
	// para borradores: una factura emitida se cancela, nunca se borra.
	Delete(id string) error
}
