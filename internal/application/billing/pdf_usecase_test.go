package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caminvoice-api/internal/application/billing"
	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

type stubRenderer struct {
	name   string
	err    error
	issuer *entity.InstructorProfile
}

func (r *stubRenderer) Name() string { return r.name }

func (r *stubRenderer) Render(_ context.Context, inv *dto.InvoiceResponse, issuer *entity.InstructorProfile) (*billing.Document, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.issuer = issuer
	return &billing.Document{Content: []byte("%PDF-" + inv.InvoiceNumber), Preview: []byte("<html></html>")}, nil
}

type stubExporter struct{}

func (stubExporter) Export(_ context.Context, inv *dto.InvoiceResponse, _ *entity.InstructorProfile) (*billing.EInvoice, error) {
	return &billing.EInvoice{Filename: inv.InvoiceNumber + ".xml", Content: []byte("<Invoice/>")}, nil
}

func newPDFFixture(t *testing.T, renderers ...billing.InvoiceRenderer) (*fixture, *billing.PDFUseCase, afero.Fs, string) {
	t.Helper()
	f := newFixture()
	inv, err := f.invoices.Create(context.Background(), testUserID, createReq(lesson("50", "1")))
	require.NoError(t, err)
	fs := afero.NewMemMapFs()
	uc := billing.NewPDFUseCase(f.invoices, f.profiles, renderers, stubExporter{}, fs,
		billing.PDFConfig{DefaultRenderer: "vector", ArchiveDir: "/archive"}, f.metrics)
	return f, uc, fs, inv.ID
}

func TestPDFDownload_RendererPorDefecto(t *testing.T) {
	vector := &stubRenderer{name: "vector"}
	tpl := &stubRenderer{name: "template"}
	f, uc, _, id := newPDFFixture(t, tpl, vector)

	doc, err := uc.Download(context.Background(), testUserID, id, "")
	require.NoError(t, err)
	assert.Equal(t, "facture_2025-06-0001.pdf", doc.Filename)
	assert.Equal(t, billing.ContentTypePDF, doc.ContentType)
	assert.Equal(t, "%PDF-2025-06-0001", string(doc.Bytes()))
	assert.Equal(t, 1, f.metrics.rendered["vector"])
	require.NotNil(t, vector.issuer)
	assert.Equal(t, entity.DefaultBusinessName, vector.issuer.BusinessName)

	assert.Equal(t, []string{"template", "vector"}, uc.Renderers())
}

func TestPDFPreview_NombreYHTML(t *testing.T) {
	_, uc, _, id := newPDFFixture(t, &stubRenderer{name: "template"})

	doc, err := uc.Preview(context.Background(), testUserID, id, "template")
	require.NoError(t, err)
	assert.Equal(t, "facture_2025-06-0001_preview.pdf", doc.Filename)
	html, ok := doc.PreviewHTML()
	assert.True(t, ok)
	assert.Equal(t, "<html></html>", html)
	assert.Contains(t, doc.DataURI(), "data:application/pdf;base64,")
}

func TestPDF_RendererDesconocido(t *testing.T) {
	_, uc, _, id := newPDFFixture(t, &stubRenderer{name: "vector"})

	_, err := uc.Download(context.Background(), testUserID, id, "latex")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestPDF_FalloDeRenderer(t *testing.T) {
	f, uc, _, id := newPDFFixture(t, &stubRenderer{name: "vector", err: errBoom})

	_, err := uc.Blob(context.Background(), testUserID, id, "")
	assert.True(t, errors.Is(err, domain.ErrRenderFailed))
	assert.Equal(t, "PDF generation failed", domain.ErrRenderFailed.Error())
	assert.Equal(t, 1, f.metrics.failed["vector"])
}

func TestPDF_FacturaInexistente(t *testing.T) {
	_, uc, _, _ := newPDFFixture(t, &stubRenderer{name: "vector"})

	_, err := uc.Download(context.Background(), testUserID, "nope", "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPDFArchive_GuardaEnFs(t *testing.T) {
	_, uc, fs, id := newPDFFixture(t, &stubRenderer{name: "vector"})

	path, err := uc.Archive(context.Background(), testUserID, id, "")
	require.NoError(t, err)
	assert.Equal(t, "/archive/"+testUserID+"/facture_2025-06-0001.pdf", path)

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-2025-06-0001", string(content))
}

func TestExportUBL(t *testing.T) {
	_, uc, _, id := newPDFFixture(t, &stubRenderer{name: "vector"})

	out, err := uc.ExportUBL(context.Background(), testUserID, id)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-0001.xml", out.Filename)
}
