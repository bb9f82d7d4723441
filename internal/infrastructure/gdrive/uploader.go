// Package gdrive guarda copias de seguridad de los documentos emitidos
// (PDF y XML) en una carpeta de Google Drive del negocio.
package gdrive

import (
	"bytes"
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/tu-usuario/factura-lv/pkg/logger"
)

// Uploader sube documentos a una carpeta fija de Drive.
type Uploader struct {
	svc      *drive.Service
	folderID string
	log      *logger.Logger
}

// NewUploader construye el uploader con las credenciales de una cuenta de
// servicio (JSON) y el ID de la carpeta destino.
func NewUploader(ctx context.Context, credentialsFile, folderID string, log *logger.Logger) (*Uploader, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("gdrive: crear servicio: %w", err)
	}
	return &Uploader{svc: svc, folderID: folderID, log: log.Component("gdrive")}, nil
}

// Upload sube un fichero a la carpeta configurada y devuelve el ID del
// fichero en Drive. Nombres repetidos crean versiones nuevas, no
// sobrescriben: Drive no impone unicidad de nombre.
func (u *Uploader) Upload(ctx context.Context, name, mimeType string, content []byte) (string, error) {
	meta := &drive.File{
		Name:     name,
		MimeType: mimeType,
		Parents:  []string{u.folderID},
	}
	f, err := u.svc.Files.Create(meta).
		Media(bytes.NewReader(content)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("gdrive: subir %q: %w", name, err)
	}
	u.log.Info().Str("file", name).Str("drive_id", f.Id).Msg("copia guardada en Drive")
	return f.Id, nil
}
