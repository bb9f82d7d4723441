// Package eds presenta el e-rēķins ante el EDS (Elektroniskā deklarēšanas
// sistēma), la sede electrónica del VID. El documento viaja como
// multipart/form-data con la clave de API en la cabecera X-API-Key.
package eds

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/tu-usuario/factura-lv/pkg/logger"
)

// DefaultBaseURL endpoint de producción del API de e-factura del VID.
const DefaultBaseURL = "https://eds.vid.gov.lv/api/v2/einvoice"

// Result resultado de la presentación.
type Result struct {
	Accepted   bool
	StatusCode int
	Body       string // respuesta cruda del EDS, para diagnóstico
}

// Client cliente HTTP del API del EDS.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

// NewClient construye el cliente. baseURL vacío usa el de producción.
func NewClient(baseURL, apiKey string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log.Component("eds"),
	}
}

// Submit envía el XML de la factura. Un estado 2xx cuenta como aceptado;
// cualquier otro devuelve el cuerpo de la respuesta para que el caller lo
// muestre al operador. La presentación no es idempotente: el caller decide
// sobre reintentos.
func (c *Client) Submit(ctx context.Context, filename string, xmlBytes []byte) (*Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("eds: preparar multipart: %w", err)
	}
	if _, err := part.Write(xmlBytes); err != nil {
		return nil, fmt.Errorf("eds: escribir documento: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("eds: cerrar multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return nil, fmt.Errorf("eds: crear request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eds: conectar con el VID: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	result := &Result{
		Accepted:   resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}

	if result.Accepted {
		c.log.Info().Str("file", filename).Int("status", resp.StatusCode).Msg("e-rēķins presentado ante el EDS")
	} else {
		c.log.Error().Str("file", filename).Int("status", resp.StatusCode).
			Str("body", result.Body).Msg("el EDS rechazó la presentación")
	}
	return result, nil
}
