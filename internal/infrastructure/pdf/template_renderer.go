// Package pdf implementa las estrategias de renderizado de facturas.
//
// Layout común (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Escuela + instructor  │  Date / Facture #          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ÉMETTEUR                      │  FACTURÉ À                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Description | Prix | Qté. | TVA | HT | TTC       │
//	│  TOTALES: Total HT / TVA / Total TTC                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PAIEMENT: IBAN / BIC / Banque / Référence                   │
//	│  FOOTER: contacto del emisor                                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/caminvoice-api/internal/application/billing"
	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

// RendererTemplate nombre de la estrategia maquetada (PDF + vista previa HTML).
const RendererTemplate = "template"

//go:embed templates/invoice.html
var templateFS embed.FS

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 72, Green: 150, Blue: 150}
	colorDark    = &props.Color{Red: 58, Green: 120, Blue: 120}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// TemplateRenderer maqueta la factura con Maroto v2 y genera además la vista previa HTML.
type TemplateRenderer struct {
	tmpl *template.Template
}

var _ billing.InvoiceRenderer = (*TemplateRenderer)(nil)

// NewTemplateRenderer parsea la plantilla embebida.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/invoice.html")
	if err != nil {
		return nil, fmt.Errorf("pdf: parsear plantilla: %w", err)
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

// Name implementa billing.InvoiceRenderer.
func (r *TemplateRenderer) Name() string { return RendererTemplate }

// Render implementa billing.InvoiceRenderer.
func (r *TemplateRenderer) Render(ctx context.Context, inv *dto.InvoiceResponse, issuer *entity.InstructorProfile) (*billing.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("pdf: factura nil")
	}
	v := buildView(inv, issuer)

	var html bytes.Buffer
	if err := r.tmpl.Execute(&html, v); err != nil {
		return nil, fmt.Errorf("pdf: ejecutar plantilla: %w", err)
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Facture "+v.Number, true).
		WithAuthor(v.Business, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(v))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.8}))
	m.AddRows(row.New(4))
	m.AddRows(addressRow(v))
	m.AddRows(row.New(4))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(v)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(v)...)

	m.AddRows(row.New(6))
	m.AddRows(paymentRows(v)...)
	if v.Notes != "" {
		m.AddRows(notesRows(v.Notes)...)
	}

	m.AddRows(row.New(6))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
	m.AddRows(footerRow(v))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return &billing.Document{
		ContentType: billing.ContentTypePDF,
		Content:     doc.GetBytes(),
		Preview:     html.Bytes(),
	}, nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: escuela + instructor (izq) y fecha + número (der).
func headerRow(v invoiceView) core.Row {
	left := []core.Component{
		text.New(v.Business, props.Text{Style: fontstyle.Bold, Size: 15, Color: colorPrimary, Top: 1}),
		text.New(businessTagline, props.Text{Size: 8, Top: 9, Color: colorGray}),
	}
	if v.Issuer.FullName != "" {
		left = append(left, text.New(v.Issuer.FullName, props.Text{Size: 8, Top: 14, Color: colorGray}))
	}
	return row.New(22).Add(
		col.New(7).Add(left...),
		col.New(5).Add(
			text.New("FACTURE", props.Text{Style: fontstyle.Bold, Size: 14, Align: align.Right, Color: colorDark, Top: 1}),
			text.New("Facture # : "+v.Number, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 9}),
			text.New("Date : "+v.Date, props.Text{Size: 8, Align: align.Right, Top: 15, Color: colorGray}),
		),
	)
}

// addressRow: emisor (izq) y cliente (der).
func addressRow(v invoiceView) core.Row {
	issuer := []string{v.Issuer.Business}
	issuer = append(issuer, nonBlank(v.Issuer.Address, v.Issuer.CityLine, v.Issuer.Country, v.Issuer.Email, v.Issuer.Phone)...)
	if v.Issuer.VATNumber != "" {
		issuer = append(issuer, "TVA : "+v.Issuer.VATNumber)
	}

	customer := []string{placeholderCustomer}
	if c := v.Customer; c != nil {
		customer = []string{c.Name}
		if c.IsCompany && c.ContactPerson != "" {
			customer = append(customer, "À l'attention de "+c.ContactPerson)
		}
		customer = append(customer, nonBlank(c.Address, c.CityLine, c.Country, c.Email, c.Phone)...)
		if c.VATNumber != "" {
			customer = append(customer, "TVA : "+c.VATNumber)
		}
	}

	height := float64(max(len(issuer), len(customer)))*4.5 + 8
	return row.New(height).Add(
		col.New(6).Add(addressBlock("ÉMETTEUR", issuer)...),
		col.New(6).Add(addressBlock("FACTURÉ À", customer)...),
	)
}

func addressBlock(title string, lines []string) []core.Component {
	out := []core.Component{
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	}
	for i, l := range lines {
		style := fontstyle.Normal
		if i == 0 {
			style = fontstyle.Bold
		}
		out = append(out, text.New(l, props.Text{Style: style, Size: 8, Top: 6 + float64(i)*4.5}))
	}
	return out
}

// tableHeaderRow: cabecera de la tabla con fondo de color.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Description du service", 4, align.Left),
		h("Prix", 2, align.Right),
		h("Qté.", 1, align.Center),
		h("TVA", 1, align.Center),
		h("Sous-total", 1, align.Right),
		h("Total TTC", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableItemRows: una fila por prestación, o la fila vacía.
func tableItemRows(v invoiceView) []core.Row {
	if len(v.Items) == 0 {
		return []core.Row{row.New(9).Add(col.New(12).Add(text.New(emptyItemsLabel, props.Text{
			Style: fontstyle.Italic, Size: 8, Align: align.Center, Color: colorGray, Top: 2,
		})))}
	}
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1.5, Left: 1, Right: 1}))
	}
	result := make([]core.Row, 0, len(v.Items))
	for _, it := range v.Items {
		desc := it.Description
		if extra := strings.Join(nonBlank(it.ServiceDate, it.Duration), " · "); extra != "" {
			desc += " (" + extra + ")"
		}
		chunks := splitEvery(desc, 48)
		descCol := col.New(4)
		for i, chunk := range chunks {
			descCol.Add(text.New(chunk, props.Text{Size: 8, Top: 1.5 + float64(i)*3.5, Left: 1}))
		}
		result = append(result, row.New(4+3.5*float64(len(chunks))).Add(
			cell(fmt.Sprint(it.Index), 1, align.Center),
			descCol,
			cell(it.UnitPrice, 2, align.Right),
			cell(it.Quantity, 1, align.Center),
			cell(v.TaxRate+"%", 1, align.Center),
			cell(it.Total, 1, align.Right),
			cell(it.TotalTTC, 2, align.Right),
		))
	}
	return result
}

// totalsRows: Total HT / TVA / Total TTC alineados a la derecha.
func totalsRows(v invoiceView) []core.Row {
	entry := func(label, value string, grand bool) core.Row {
		p := props.Text{Size: 9, Align: align.Right, Top: 1.5, Right: 2}
		if grand {
			p.Style = fontstyle.Bold
			p.Size = 10
			p.Color = colorWhite
		}
		r := row.New(7).Add(
			col.New(6),
			col.New(3).Add(text.New(label, p)),
			col.New(3).Add(text.New(value, p)),
		)
		if grand {
			r.WithStyle(&props.Cell{BackgroundColor: colorPrimary})
		}
		return r
	}
	return []core.Row{
		entry("Total HT :", v.Subtotal, false),
		entry("TVA ("+v.TaxRate+"%) :", v.TaxAmount, false),
		entry("Total TTC :", v.Total, true),
	}
}

// paymentRows: datos bancarios y referencia de pago.
func paymentRows(v invoiceView) []core.Row {
	lines := []string{
		"IBAN : " + orDefault(v.Issuer.IBAN, placeholderIBAN),
		"Banque : " + orDefault(v.Issuer.BankName, placeholderBank),
		"Référence de paiement : " + v.PaymentRef,
	}
	if v.Issuer.BIC != "" {
		lines = append(lines[:1], append([]string{"BIC : " + v.Issuer.BIC}, lines[1:]...)...)
	}
	if v.PaymentTerms != "" {
		lines = append(lines, v.PaymentTerms)
	}
	rows := []core.Row{row.New(6).Add(col.New(12).Add(text.New("INFORMATIONS DE PAIEMENT", props.Text{
		Style: fontstyle.Bold, Size: 9, Color: colorDark, Top: 1,
	})))}
	for _, l := range lines {
		rows = append(rows, row.New(4.5).Add(col.New(12).Add(text.New(l, props.Text{Size: 8, Top: 0.5}))))
	}
	return rows
}

// notesRows: observaciones partidas en líneas de 110 caracteres.
func notesRows(notes string) []core.Row {
	rows := []core.Row{row.New(8).Add(col.New(12).Add(text.New("NOTES", props.Text{
		Style: fontstyle.Bold, Size: 9, Color: colorDark, Top: 3,
	})))}
	for _, chunk := range splitEvery(notes, 110) {
		rows = append(rows, row.New(4).Add(col.New(12).Add(text.New(chunk, props.Text{Size: 8, Color: colorGray}))))
	}
	return rows
}

// footerRow: contacto del emisor centrado.
func footerRow(v invoiceView) core.Row {
	return row.New(8).Add(col.New(12).Add(text.New(strings.Join(v.FooterItems, "  ·  "), props.Text{
		Size: 7, Align: align.Center, Color: colorGray, Top: 2,
	})))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// splitEvery divide s en trozos de max n runas.
func splitEvery(s string, n int) []string {
	var parts []string
	r := []rune(s)
	for len(r) > n {
		parts = append(parts, string(r[:n]))
		r = r[n:]
	}
	if len(r) > 0 {
		parts = append(parts, string(r))
	}
	return parts
}
