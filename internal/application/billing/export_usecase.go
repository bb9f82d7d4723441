package billing

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ucarion/c14n"

	"github.com/tu-usuario/factura-lv/internal/application/dto"
	"github.com/tu-usuario/factura-lv/internal/domain"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
	"github.com/tu-usuario/factura-lv/internal/domain/repository"
	"github.com/tu-usuario/factura-lv/internal/infrastructure/peppol"
	"github.com/tu-usuario/factura-lv/internal/infrastructure/smtp"
	pkgpeppol "github.com/tu-usuario/factura-lv/pkg/peppol"
	"github.com/tu-usuario/factura-lv/pkg/logger"
)

// ExportUseCase produce los documentos derivados de una factura emitida:
// XML PEPPOL BIS 3.0, PDF, CSV de listados, presentación ante el EDS,
// correo al comprador y copia de seguridad en Drive.
type ExportUseCase struct {
	invoiceRepo repository.InvoiceRepository
	xmlBuilder  *peppol.XMLBuilderService
	categories  pkgpeppol.RateCategoryMap
	pdfGen      PDFGenerator
	eds         EDSSubmitter   // nil = presentación deshabilitada
	mailer      Mailer         // nil = correo deshabilitado
	backup      BackupUploader // nil = copia deshabilitada
	log         *logger.Logger
}

// NewExportUseCase construye el caso de uso. eds, mailer y backup son
// opcionales: nil desactiva la función correspondiente.
func NewExportUseCase(
	invoiceRepo repository.InvoiceRepository,
	xmlBuilder *peppol.XMLBuilderService,
	categories pkgpeppol.RateCategoryMap,
	pdfGen PDFGenerator,
	edsClient EDSSubmitter,
	mailer Mailer,
	backup BackupUploader,
	log *logger.Logger,
) *ExportUseCase {
	return &ExportUseCase{
		invoiceRepo: invoiceRepo,
		xmlBuilder:  xmlBuilder,
		categories:  categories,
		pdfGen:      pdfGen,
		eds:         edsClient,
		mailer:      mailer,
		backup:      backup,
		log:         log.Component("export"),
	}
}

// BuildXML genera el documento UBL de una factura emitida y el nombre de
// fichero sugerido.
func (uc *ExportUseCase) BuildXML(ctx context.Context, id string) ([]byte, string, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, "", err
	}
	xmlBytes, err := uc.xmlBuilder.Build(&peppol.ExportContext{
		Invoice:        inv,
		RateCategories: uc.categories,
	})
	if err != nil {
		return nil, "", err
	}
	return xmlBytes, documentName(inv, "xml"), nil
}

// Checksum devuelve el SHA-256 hex del documento canonicalizado (C14N):
// estable ante diferencias de indentación o de orden de atributos, sirve
// como huella del documento presentado.
func Checksum(xmlBytes []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(xmlBytes))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("canonicalizar documento: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// SubmitEDS genera el XML y lo presenta ante el EDS del VID.
func (uc *ExportUseCase) SubmitEDS(ctx context.Context, id string) (*dto.SubmitEDSResponse, error) {
	if uc.eds == nil {
		return nil, domain.NewValidationError("eds", "presentación ante el EDS no configurada")
	}
	xmlBytes, filename, err := uc.BuildXML(ctx, id)
	if err != nil {
		return nil, err
	}
	checksum, err := Checksum(xmlBytes)
	if err != nil {
		return nil, err
	}
	result, err := uc.eds.Submit(ctx, filename, xmlBytes)
	if err != nil {
		return nil, err
	}
	return &dto.SubmitEDSResponse{
		Accepted:   result.Accepted,
		StatusCode: result.StatusCode,
		Details:    result.Body,
		Checksum:   checksum,
	}, nil
}

// BuildPDF genera el PDF de la factura. A diferencia del XML, un borrador
// también se puede imprimir (marcado como MELNRAKSTS, sin número).
func (uc *ExportUseCase) BuildPDF(ctx context.Context, id string) ([]byte, string, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := uc.pdfGen.Generate(ctx, inv)
	if err != nil {
		return nil, "", err
	}
	return pdfBytes, documentName(inv, "pdf"), nil
}

// ExportCSV exporta el listado filtrado como CSV (una fila por factura),
// para la declaración trimestral del contable.
func (uc *ExportUseCase) ExportCSV(filter repository.InvoiceFilter) ([]byte, error) {
	filter.Limit = 10000 // exportación completa, no paginada
	invoices, _, err := uc.invoiceRepo.List(filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"number", "status", "issue_date", "due_date", "buyer",
		"buyer_reg_number", "total_net", "total_vat", "total_gross", "currency"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("escribir cabecera CSV: %w", err)
	}
	for _, inv := range invoices {
		row := []string{
			inv.Number,
			string(inv.Status),
			inv.IssueDate.Format(dateLayout),
			inv.DueDate.Format(dateLayout),
			inv.Buyer.Name,
			inv.Buyer.RegNumber,
			inv.TotalNet.StringFixed(2),
			inv.TotalVat.StringFixed(2),
			inv.TotalGross.StringFixed(2),
			inv.Currency,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("escribir fila CSV: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Email envía la factura (PDF adjunto) al comprador, o a la dirección
// indicada en la petición.
func (uc *ExportUseCase) Email(ctx context.Context, id string, in dto.EmailInvoiceRequest) error {
	if uc.mailer == nil {
		return domain.NewValidationError("smtp", "envío de correo no configurado")
	}
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return err
	}
	to := in.To
	if to == "" {
		to = inv.Buyer.Email
	}
	if to == "" {
		return domain.NewValidationError("to", "el comprador no tiene email y no se indicó destinatario")
	}

	pdfBytes, pdfName, err := uc.BuildPDF(ctx, id)
	if err != nil {
		return err
	}
	attachments := []smtp.Attachment{
		{Filename: pdfName, MimeType: "application/pdf", Content: pdfBytes},
	}
	// El XML solo acompaña facturas emitidas.
	if !inv.IsDraft() {
		xmlBytes, xmlName, err := uc.BuildXML(ctx, id)
		if err != nil {
			return err
		}
		attachments = append(attachments, smtp.Attachment{
			Filename: xmlName, MimeType: "application/xml", Content: xmlBytes,
		})
	}

	subject := fmt.Sprintf("Rēķins Nr. %s — %s", inv.Number, inv.Issuer.Name)
	body := fmt.Sprintf("Labdien!\n\nPielikumā rēķins Nr. %s par summu %s %s, apmaksas termiņš %s.\n\nAr cieņu,\n%s",
		inv.Number, inv.TotalGross.StringFixed(2), inv.Currency,
		inv.DueDate.Format("02.01.2006."), inv.Issuer.Name)
	if err := uc.mailer.Send(to, subject, body, attachments); err != nil {
		return err
	}
	uc.log.Info().Str("invoice_id", id).Str("to", to).Msg("factura enviada por correo")
	return nil
}

// Backup sube PDF y XML de una factura emitida a la carpeta de copias.
func (uc *ExportUseCase) Backup(ctx context.Context, id string) error {
	if uc.backup == nil {
		return domain.NewValidationError("backup", "copia de seguridad no configurada")
	}
	pdfBytes, pdfName, err := uc.BuildPDF(ctx, id)
	if err != nil {
		return err
	}
	if _, err := uc.backup.Upload(ctx, pdfName, "application/pdf", pdfBytes); err != nil {
		return err
	}
	xmlBytes, xmlName, err := uc.BuildXML(ctx, id)
	if err != nil {
		return err
	}
	if _, err := uc.backup.Upload(ctx, xmlName, "application/xml", xmlBytes); err != nil {
		return err
	}
	return nil
}

// documentName produce el nombre de fichero del documento: el número con
// el separador sustituido, o el ID para borradores.
func documentName(inv *entity.Invoice, ext string) string {
	base := inv.Number
	if base == "" {
		base = "draft-" + inv.ID
	}
	return strings.ReplaceAll(base, "/", "-") + "." + ext
}
