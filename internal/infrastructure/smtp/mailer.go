// Package smtp envía el rēķins por correo al comprador, con el PDF (y
// opcionalmente el XML) adjuntos.
package smtp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"github.com/tu-usuario/factura-lv/pkg/config"
	"github.com/tu-usuario/factura-lv/pkg/logger"
)

// Attachment es un adjunto del mensaje.
type Attachment struct {
	Filename string
	MimeType string
	Content  []byte
}

// Mailer cliente SMTP con autenticación PLAIN (STARTTLS lo negocia el
// servidor en el puerto 587).
type Mailer struct {
	cfg config.SMTPConfig
	log *logger.Logger
}

// NewMailer construye el mailer.
func NewMailer(cfg config.SMTPConfig, log *logger.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log.Component("smtp")}
}

// Send envía un mensaje multipart/mixed con cuerpo de texto y adjuntos.
func (m *Mailer) Send(to, subject, body string, attachments []Attachment) error {
	var msg bytes.Buffer
	mw := multipart.NewWriter(&msg)

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n"+
		"Content-Type: multipart/mixed; boundary=%q\r\n\r\n",
		m.cfg.From, to, subject, mw.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	textPart, err := mw.CreatePart(textHeader)
	if err != nil {
		return fmt.Errorf("smtp: crear parte de texto: %w", err)
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return fmt.Errorf("smtp: escribir cuerpo: %w", err)
	}

	for _, att := range attachments {
		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", att.MimeType)
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))
		part, err := mw.CreatePart(attHeader)
		if err != nil {
			return fmt.Errorf("smtp: crear adjunto %q: %w", att.Filename, err)
		}
		enc := base64.NewEncoder(base64.StdEncoding, part)
		if _, err := enc.Write(att.Content); err != nil {
			return fmt.Errorf("smtp: codificar adjunto %q: %w", att.Filename, err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("smtp: cerrar adjunto %q: %w", att.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("smtp: cerrar mensaje: %w", err)
	}

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	payload := append([]byte(headers), msg.Bytes()...)
	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.From, []string{to}, payload); err != nil {
		return fmt.Errorf("smtp: enviar a %s: %w", to, err)
	}
	m.log.Info().Str("to", to).Str("subject", subject).
		Int("attachments", len(attachments)).Msg("correo enviado")
	return nil
}
