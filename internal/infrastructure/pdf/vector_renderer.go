package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/caminvoice-api/internal/application/billing"
	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

// RendererVector nombre de la estrategia de dibujo directo.
const RendererVector = "vector"

// Una sola página A4: las filas que no caben sobre totales, pago y pie se resumen en un aviso.
const (
	itemRowHeight     = 8.0
	itemsBottomMargin = 90.0
	hiddenItemsLabel  = "+ %d prestation(s) non affichée(s), voir le détail de la facture"
)

// ── Paleta ────────────────────────────────────────────────────────────────────

type rgb struct{ r, g, b int }

var (
	tealPrimary = rgb{72, 150, 150}
	tealDark    = rgb{58, 120, 120}
	tealLight   = rgb{118, 194, 194}
	grayText    = rgb{90, 90, 90}
	black       = rgb{0, 0, 0}
	white       = rgb{255, 255, 255}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// VectorRenderer dibuja la factura con primitivas de gofpdf (bandas, polígonos, tabla).
type VectorRenderer struct {
	enc *encoding.Encoder
}

var _ billing.InvoiceRenderer = (*VectorRenderer)(nil)

// NewVectorRenderer construye el renderer. Los textos se convierten a cp1252 (fuentes core).
func NewVectorRenderer() *VectorRenderer {
	return &VectorRenderer{enc: encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())}
}

// Name implementa billing.InvoiceRenderer.
func (r *VectorRenderer) Name() string { return RendererVector }

// Render implementa billing.InvoiceRenderer.
func (r *VectorRenderer) Render(ctx context.Context, inv *dto.InvoiceResponse, issuer *entity.InstructorProfile) (*billing.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("pdf: factura nil")
	}
	v := buildView(inv, issuer)

	d := &vectorDoc{pdf: gofpdf.New("P", "mm", "A4", ""), tr: r.translate}
	d.pdf.SetTitle(d.tr("Facture "+v.Number), false)
	d.pdf.SetAuthor(d.tr(v.Business), false)
	d.pdf.SetAutoPageBreak(false, 0)
	d.pdf.AddPage()
	d.pageW, d.pageH = d.pdf.GetPageSize()

	d.header(v)
	y := d.billTo(v, 95)
	y = d.itemsTable(v, y+8)
	y = d.totals(v, y+6)
	d.payment(v, y+10)
	d.footer(v)

	if err := d.pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf: dibujar documento: %w", err)
	}
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: serializar documento: %w", err)
	}
	return &billing.Document{ContentType: billing.ContentTypePDF, Content: buf.Bytes()}, nil
}

func (r *VectorRenderer) translate(s string) string {
	out, err := r.enc.String(s)
	if err != nil {
		return s
	}
	return out
}

// ── Dibujo ────────────────────────────────────────────────────────────────────

type vectorDoc struct {
	pdf          *gofpdf.Fpdf
	tr           func(string) string
	pageW, pageH float64
}

func (d *vectorDoc) fill(c rgb)  { d.pdf.SetFillColor(c.r, c.g, c.b) }
func (d *vectorDoc) color(c rgb) { d.pdf.SetTextColor(c.r, c.g, c.b) }
func (d *vectorDoc) draw(c rgb)  { d.pdf.SetDrawColor(c.r, c.g, c.b) }

func (d *vectorDoc) font(style string, size float64) { d.pdf.SetFont("Helvetica", style, size) }

func (d *vectorDoc) text(x, y float64, s string) { d.pdf.Text(x, y, d.tr(s)) }

func (d *vectorDoc) textRight(xRight, y float64, s string) {
	s = d.tr(s)
	d.pdf.Text(xRight-d.pdf.GetStringWidth(s), y, s)
}

// header banda superior con triángulos decorativos, logo y recuadro "FACTURE".
func (d *vectorDoc) header(v invoiceView) {
	d.fill(tealPrimary)
	d.pdf.Rect(0, 0, d.pageW, 40, "F")
	d.fill(tealDark)
	d.pdf.Polygon([]gofpdf.PointType{{X: 0, Y: 0}, {X: 70, Y: 0}, {X: 0, Y: 40}}, "F")
	d.fill(tealLight)
	d.pdf.Polygon([]gofpdf.PointType{{X: d.pageW, Y: 0}, {X: d.pageW, Y: 40}, {X: d.pageW - 60, Y: 40}}, "F")

	// logo
	d.fill(white)
	d.pdf.Circle(30, 20, 12, "F")
	d.color(tealDark)
	d.font("B", 7)
	d.pdf.SetXY(18, 17)
	d.pdf.CellFormat(24, 3, d.tr("AUTO"), "", 2, "C", false, 0, "")
	d.pdf.CellFormat(24, 3, d.tr("ÉCOLE"), "", 0, "C", false, 0, "")

	d.color(white)
	d.font("B", 16)
	d.text(48, 20, v.Business)
	d.font("", 9)
	d.text(48, 27, businessTagline)

	// recuadro FACTURE
	x, y := d.pageW-90, 45.0
	d.fill(tealPrimary)
	d.pdf.Rect(x, y, 80, 30, "F")
	d.color(white)
	d.font("B", 20)
	d.pdf.SetXY(x, y+4)
	d.pdf.CellFormat(80, 10, "FACTURE", "", 2, "C", false, 0, "")
	d.font("", 10)
	d.pdf.CellFormat(80, 8, d.tr("Facture N° : "+v.Number), "", 0, "C", false, 0, "")

	d.color(grayText)
	d.font("", 9)
	d.text(15, 52, v.Issuer.FullName)
	if v.Issuer.LicenseNumber != "" {
		d.text(15, 57, "Agrément : "+v.Issuer.LicenseNumber)
	}
	if v.Issuer.VATNumber != "" {
		d.text(15, 62, "TVA : "+v.Issuer.VATNumber)
	}
	if v.DueDate != placeholderDate {
		d.text(15, 67, "Échéance : "+v.DueDate)
	}
}

// billTo barra "FACTURÉ À" y datos del cliente. Devuelve la y final.
func (d *vectorDoc) billTo(v invoiceView, y float64) float64 {
	d.fill(tealPrimary)
	d.pdf.Rect(15, y, d.pageW-30, 9, "F")
	d.color(white)
	d.font("B", 11)
	d.text(18, y+6, "FACTURÉ À")
	d.font("", 10)
	d.textRight(d.pageW-18, y+6, "Date : "+v.Date)

	y += 16
	d.color(black)
	if v.Customer == nil {
		d.font("I", 10)
		d.text(18, y, placeholderCustomer)
		return y + 4
	}
	c := v.Customer
	lines := [][2]string{{"Nom", c.Name}}
	if c.IsCompany && c.ContactPerson != "" {
		lines = append(lines, [2]string{"Contact", c.ContactPerson})
	}
	if addr := strings.TrimSpace(strings.Join(nonBlank(c.Address, c.CityLine, c.Country), ", ")); addr != "" {
		lines = append(lines, [2]string{"Adresse", addr})
	}
	lines = append(lines, [2]string{"Email", c.Email})
	if c.Phone != "" {
		lines = append(lines, [2]string{"Tél", c.Phone})
	}
	if c.VATNumber != "" {
		lines = append(lines, [2]string{"TVA", c.VATNumber})
	}
	for _, l := range lines {
		d.font("B", 10)
		d.text(18, y, l[0]+" :")
		d.font("", 10)
		d.text(42, y, l[1])
		y += 6
	}
	return y
}

// itemsTable cabecera con fondo y una fila por prestación.
func (d *vectorDoc) itemsTable(v invoiceView, y float64) float64 {
	widths := []float64{95, 30, 20, 35}
	heads := []string{"DESCRIPTION PRESTATIONS", "PRIX", "QTÉ.", "TOTAL"}
	aligns := []string{"L", "R", "C", "R"}

	d.fill(tealPrimary)
	d.color(white)
	d.font("B", 10)
	d.pdf.SetXY(15, y)
	for i, h := range heads {
		d.pdf.CellFormat(widths[i], 9, d.tr(h), "", 0, aligns[i], true, 0, "")
	}
	y += 9

	d.color(black)
	d.draw(tealLight)
	d.pdf.SetLineWidth(0.2)
	if len(v.Items) == 0 {
		d.font("I", 10)
		d.pdf.SetXY(15, y)
		d.pdf.CellFormat(180, 9, d.tr(emptyItemsLabel), "B", 0, "C", false, 0, "")
		return y + 9
	}
	shown := fitRows(len(v.Items), y, d.pageH-itemsBottomMargin, itemRowHeight)
	for _, it := range v.Items[:shown] {
		desc := it.Description
		if extra := strings.Join(nonBlank(it.ServiceDate, it.Duration), " · "); extra != "" {
			desc += " (" + extra + ")"
		}
		d.font("", 10)
		d.pdf.SetXY(15, y)
		cells := []string{desc, it.UnitPrice, it.Quantity, it.Total}
		for i, c := range cells {
			d.pdf.CellFormat(widths[i], itemRowHeight, d.tr(c), "B", 0, aligns[i], false, 0, "")
		}
		y += itemRowHeight
	}
	if hidden := len(v.Items) - shown; hidden > 0 {
		d.font("I", 9)
		d.pdf.SetXY(15, y)
		d.pdf.CellFormat(180, itemRowHeight, d.tr(fmt.Sprintf(hiddenItemsLabel, hidden)), "B", 0, "L", false, 0, "")
		y += itemRowHeight
	}
	return y
}

// fitRows número de filas de alto rowH que caben entre y y limit. Si no caben todas,
// reserva una fila para el aviso de prestaciones no mostradas.
func fitRows(n int, y, limit, rowH float64) int {
	capacity := int((limit - y) / rowH)
	if capacity < 0 {
		capacity = 0
	}
	if n <= capacity {
		return n
	}
	if capacity == 0 {
		return 0
	}
	return capacity - 1
}

// totals bloque Sous-total / TVA / TOTAL alineado a la derecha.
func (d *vectorDoc) totals(v invoiceView, y float64) float64 {
	labelX, valueX := d.pageW-80, d.pageW-15
	d.color(black)
	d.font("", 10)
	d.text(labelX, y, "Sous-total :")
	d.textRight(valueX, y, v.Subtotal)
	y += 7
	d.text(labelX, y, fmt.Sprintf("TVA (%s%%) :", v.TaxRate))
	d.textRight(valueX, y, v.TaxAmount)
	y += 4

	d.fill(tealPrimary)
	d.pdf.Rect(labelX-3, y, valueX-labelX+5, 10, "F")
	d.color(white)
	d.font("B", 12)
	d.text(labelX, y+7, "TOTAL :")
	d.textRight(valueX, y+7, v.Total)
	return y + 10
}

// payment datos bancarios y línea de firma.
func (d *vectorDoc) payment(v invoiceView, y float64) {
	d.color(tealDark)
	d.font("B", 11)
	d.text(15, y, "INFORMATIONS DE PAIEMENT :")
	d.color(black)
	d.font("", 10)
	d.text(15, y+7, "Compte : "+orDefault(v.Issuer.IBAN, placeholderIBAN))
	d.text(15, y+13, "Titulaire : "+orDefault(v.Issuer.FullName, v.Business))
	d.text(15, y+19, "Banque : "+orDefault(v.Issuer.BankName, placeholderBank))
	if v.Issuer.BIC != "" {
		d.text(15, y+25, "BIC : "+v.Issuer.BIC)
	}
	if v.PaymentTerms != "" {
		d.font("I", 9)
		d.text(15, y+31, v.PaymentTerms)
	}

	d.draw(black)
	d.pdf.SetLineWidth(0.3)
	d.pdf.Line(d.pageW-75, y+22, d.pageW-15, y+22)
	d.font("", 9)
	d.text(d.pageW-62, y+27, "Signature autorisée")
}

// footer banda inferior con teléfono, email, dirección y TVA del emisor.
func (d *vectorDoc) footer(v invoiceView) {
	y := d.pageH - 35
	d.fill(tealPrimary)
	d.pdf.Rect(0, y, d.pageW, 35, "F")
	d.fill(tealDark)
	d.pdf.Polygon([]gofpdf.PointType{{X: d.pageW, Y: y}, {X: d.pageW, Y: d.pageH}, {X: d.pageW - 70, Y: d.pageH}}, "F")

	d.color(white)
	d.font("", 9)
	colW := (d.pageW - 30) / 2
	for i, s := range v.FooterItems {
		x := 15 + float64(i%2)*colW
		d.text(x, y+13+float64(i/2)*8, s)
	}
}

func nonBlank(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, s := range values {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
