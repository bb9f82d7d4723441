package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/factura-lv/internal/domain/entity"
	"github.com/tu-usuario/factura-lv/internal/domain/repository"
	"github.com/tu-usuario/factura-lv/internal/infrastructure/eds"
	"github.com/tu-usuario/factura-lv/internal/infrastructure/smtp"
)

// Config parámetros de facturación del despliegue.
type Config struct {
	Currency     string
	AllowedRates []decimal.Decimal
	SeriesPrefix string // serie por defecto si la configuración no define otra
	DueDays      int    // plazo de pago por defecto
}

// NumberAuthority es la autoridad de numeración vista desde los casos de
// uso. La implementa numbering.Authority.
type NumberAuthority interface {
	NextNumber(ctx context.Context, series string) (string, error)
	PeekNextNumber(ctx context.Context, series string) (string, error)
}

// TxRunner ejecuta fn con un repositorio de facturas atado a una
// transacción: cabecera y líneas se escriben atómicamente.
type TxRunner interface {
	Run(ctx context.Context, fn func(invoices repository.InvoiceRepository) error) error
}

// PDFGenerator genera la representación imprimible de una factura.
type PDFGenerator interface {
	Generate(ctx context.Context, inv *entity.Invoice) ([]byte, error)
}

// EDSSubmitter presenta el documento ante el EDS del VID.
type EDSSubmitter interface {
	Submit(ctx context.Context, filename string, xmlBytes []byte) (*eds.Result, error)
}

// Mailer envía la factura por correo con adjuntos.
type Mailer interface {
	Send(to, subject, body string, attachments []smtp.Attachment) error
}

// BackupUploader guarda copias de los documentos emitidos.
type BackupUploader interface {
	Upload(ctx context.Context, name, mimeType string, content []byte) (string, error)
}
