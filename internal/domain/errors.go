package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrDuplicate          = errors.New("recurso duplicado")

	// Taxonomía del núcleo de facturación. Todos recuperables: ninguno
	// termina el proceso; la política de reintento es del caller.
	ErrValidation       = errors.New("datos de entrada inválidos")
	ErrInvalidState     = errors.New("operación no permitida en el estado actual")
	ErrConcurrency      = errors.New("contención en el contador de numeración")
	ErrExportValidation = errors.New("factura incompleta para exportación estructurada")
)

// ValidationError indica un campo malformado o fuera de rango.
// Siempre nombra el campo ofensor para que el caller pueda corregirlo.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación: campo %q: %s", e.Field, e.Reason)
}

// Is permite errors.Is(err, domain.ErrValidation).
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError construye el error nombrando el campo ofensor.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidStateError indica una transición de ciclo de vida prohibida
// (por ejemplo Issue sobre una factura ya emitida).
type InvalidStateError struct {
	Op     string // operación intentada: "issue", "markPaid", "cancel"...
	Status string // estado actual de la factura
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("estado inválido: %s no permitido con estado %q", e.Op, e.Status)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// NewInvalidStateError construye el error con operación y estado actual.
func NewInvalidStateError(op, status string) error {
	return &InvalidStateError{Op: op, Status: status}
}

// ConcurrencyError indica que la autoridad de numeración agotó su
// presupuesto de reintentos sin obtener acceso exclusivo al contador.
// El caller debe reintentar la emisión completa, no solo la numeración.
type ConcurrencyError struct {
	Series string
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("concurrencia: no se obtuvo el contador de la serie %q", e.Series)
}

func (e *ConcurrencyError) Is(target error) bool { return target == ErrConcurrency }

// NewConcurrencyError construye el error con la serie en disputa.
func NewConcurrencyError(series string) error {
	return &ConcurrencyError{Series: series}
}

// ExportValidationError indica datos insuficientes para emitir el documento
// PEPPOL BIS 3.0. Se corrige completando datos upstream, no en el serializador.
type ExportValidationError struct {
	Field  string
	Reason string
}

func (e *ExportValidationError) Error() string {
	return fmt.Sprintf("exportación: campo %q: %s", e.Field, e.Reason)
}

func (e *ExportValidationError) Is(target error) bool { return target == ErrExportValidation }

// NewExportValidationError construye el error nombrando el campo faltante.
func NewExportValidationError(field, reason string) error {
	return &ExportValidationError{Field: field, Reason: reason}
}
