package billing

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

// InvoiceReader lectura de la factura enriquecida (InvoiceUseCase).
type InvoiceReader interface {
	Get(ctx context.Context, userID, id string) (*dto.InvoiceResponse, error)
}

// IssuerSource perfil emisor (ProfileUseCase).
type IssuerSource interface {
	IssuerFor(ctx context.Context, userID string) (*entity.InstructorProfile, error)
}

// PDFConfig selección de renderer y almacenamiento de copias.
type PDFConfig struct {
	DefaultRenderer string
	ArchiveDir      string
}

// PDFUseCase genera los documentos de una factura: PDF (descarga, blob, vista previa),
// copia archivada y factura electrónica UBL.
type PDFUseCase struct {
	invoices  InvoiceReader
	issuers   IssuerSource
	renderers map[string]InvoiceRenderer
	exporter  EInvoiceExporter
	fs        afero.Fs
	cfg       PDFConfig
	metrics   Metrics
}

// NewPDFUseCase construye el caso de uso. Si DefaultRenderer está vacío o no existe
// se usa el primer renderer registrado.
func NewPDFUseCase(
	invoices InvoiceReader,
	issuers IssuerSource,
	renderers []InvoiceRenderer,
	exporter EInvoiceExporter,
	fs afero.Fs,
	cfg PDFConfig,
	metrics Metrics,
) *PDFUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	reg := make(map[string]InvoiceRenderer, len(renderers))
	for _, r := range renderers {
		reg[r.Name()] = r
	}
	if _, ok := reg[cfg.DefaultRenderer]; !ok && len(renderers) > 0 {
		if cfg.DefaultRenderer != "" {
			log.Warn().Str("renderer", cfg.DefaultRenderer).Str("fallback", renderers[0].Name()).
				Msg("renderer por defecto no registrado")
		}
		cfg.DefaultRenderer = renderers[0].Name()
	}
	return &PDFUseCase{
		invoices:  invoices,
		issuers:   issuers,
		renderers: reg,
		exporter:  exporter,
		fs:        fs,
		cfg:       cfg,
		metrics:   metrics,
	}
}

// Renderers nombres registrados, ordenados.
func (uc *PDFUseCase) Renderers() []string {
	out := make([]string, 0, len(uc.renderers))
	for name := range uc.renderers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Download genera el PDF para descarga (facture_<número>.pdf).
func (uc *PDFUseCase) Download(ctx context.Context, userID, invoiceID, renderer string) (*Document, error) {
	return uc.render(ctx, userID, invoiceID, renderer, false)
}

// Blob genera el PDF en memoria para adjuntarlo (mismo contenido que Download).
func (uc *PDFUseCase) Blob(ctx context.Context, userID, invoiceID, renderer string) ([]byte, error) {
	doc, err := uc.render(ctx, userID, invoiceID, renderer, false)
	if err != nil {
		return nil, err
	}
	return doc.Bytes(), nil
}

// Preview genera el documento de vista previa (nombre ..._preview.pdf, HTML si el renderer lo produce).
func (uc *PDFUseCase) Preview(ctx context.Context, userID, invoiceID, renderer string) (*Document, error) {
	return uc.render(ctx, userID, invoiceID, renderer, true)
}

// Archive genera el PDF y guarda una copia en ArchiveDir/<userID>. Devuelve la ruta.
func (uc *PDFUseCase) Archive(ctx context.Context, userID, invoiceID, renderer string) (string, error) {
	doc, err := uc.render(ctx, userID, invoiceID, renderer, false)
	if err != nil {
		return "", err
	}
	path, err := doc.Save(uc.fs, uc.cfg.ArchiveDir+"/"+userID)
	if err != nil {
		log.Error().Err(err).Str("invoice_id", invoiceID).Msg("no se pudo archivar el PDF")
		return "", err
	}
	return path, nil
}

// ExportUBL genera la factura electrónica UBL 2.1.
func (uc *PDFUseCase) ExportUBL(ctx context.Context, userID, invoiceID string) (*EInvoice, error) {
	if uc.exporter == nil {
		return nil, fmt.Errorf("%w: exportación UBL no configurada", domain.ErrInvalidInput)
	}
	inv, issuer, err := uc.load(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	out, err := uc.exporter.Export(ctx, inv, issuer)
	if err != nil {
		log.Error().Err(err).Str("invoice_id", invoiceID).Msg("error generando UBL")
		return nil, err
	}
	return out, nil
}

func (uc *PDFUseCase) render(ctx context.Context, userID, invoiceID, name string, preview bool) (*Document, error) {
	if name == "" {
		name = uc.cfg.DefaultRenderer
	}
	r, ok := uc.renderers[name]
	if !ok {
		return nil, fmt.Errorf("%w: renderer desconocido %q", domain.ErrInvalidInput, name)
	}
	inv, issuer, err := uc.load(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	doc, err := r.Render(ctx, inv, issuer)
	if err != nil {
		uc.metrics.PDFRenderFailed(name)
		log.Error().Err(err).Str("renderer", name).Str("invoice_id", invoiceID).Msg("error generando PDF")
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	doc.Filename = PDFFilename(inv.InvoiceNumber, preview)
	if doc.ContentType == "" {
		doc.ContentType = ContentTypePDF
	}
	uc.metrics.PDFRendered(name)
	return doc, nil
}

func (uc *PDFUseCase) load(ctx context.Context, userID, invoiceID string) (*dto.InvoiceResponse, *entity.InstructorProfile, error) {
	inv, err := uc.invoices.Get(ctx, userID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	issuer, err := uc.issuers.IssuerFor(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return inv, issuer, nil
}
