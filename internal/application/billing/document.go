package billing

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ContentTypePDF tipo MIME de los documentos generados.
const ContentTypePDF = "application/pdf"

// Document resultado de un renderer: PDF en memoria más, opcionalmente, su vista previa HTML.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
	Preview     []byte // HTML de vista previa; vacío si la estrategia no lo produce
}

// PDFFilename nombre de descarga: facture_<número>.pdf (o ..._preview.pdf).
func PDFFilename(invoiceNumber string, preview bool) string {
	name := strings.NewReplacer("/", "-", "\\", "-", " ", "_").Replace(invoiceNumber)
	if preview {
		return fmt.Sprintf("facture_%s_preview.pdf", name)
	}
	return fmt.Sprintf("facture_%s.pdf", name)
}

// Bytes contenido binario (adjuntos).
func (d *Document) Bytes() []byte { return d.Content }

// WriteTo implementa io.WriterTo (descargas en streaming).
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return bytes.NewReader(d.Content).WriteTo(w)
}

// Save escribe el PDF en dir dentro de fs y devuelve la ruta final.
func (d *Document) Save(fs afero.Fs, dir string) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("document: crear directorio: %w", err)
	}
	path := filepath.Join(dir, d.Filename)
	if err := afero.WriteFile(fs, path, d.Content, 0o644); err != nil {
		return "", fmt.Errorf("document: escribir %s: %w", path, err)
	}
	return path, nil
}

// DataURI representación embebible para la vista previa interactiva.
func (d *Document) DataURI() string {
	ct := d.ContentType
	if ct == "" {
		ct = ContentTypePDF
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(d.Content)
}

// PreviewHTML devuelve la vista previa HTML si la estrategia la generó.
func (d *Document) PreviewHTML() (string, bool) {
	if len(d.Preview) == 0 {
		return "", false
	}
	return string(d.Preview), true
}
