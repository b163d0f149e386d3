// Package render lays an invoice out as a printable PDF.
//
// The renderer is a projection of stored fields: it never recomputes totals
// and never rounds. Amounts print as the configured currency prefix followed
// by the shortest decimal form of the stored number.
//
// Text is set in an embedded UTF-8 TrueType face, so labels and currency
// symbols outside Latin-1 survive. The document is laid out fully in memory
// before it is written: gofpdf has no incremental output.
package render

import (
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/spec-kit/invoice-service/internal/config"
	"github.com/spec-kit/invoice-service/internal/domain"
)

// NotApplicable marks optional fields that are absent.
const NotApplicable = "N/A"

const fontFamily = "InvoiceSans"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	regularFace []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	boldFace []byte
)

// LineStyle selects the font used for a line.
type LineStyle int

const (
	StyleBody LineStyle = iota
	StyleTitle
	StyleHeading
)

// Line is one row of the document in print order.
type Line struct {
	Text  string
	Style LineStyle
}

// InvoiceRenderer writes invoice documents.
type InvoiceRenderer struct {
	currency     string
	pageSize     string
	fontPath     string
	boldFontPath string
}

// NewInvoiceRenderer builds a renderer from configuration.
func NewInvoiceRenderer(cfg config.RenderConfig) *InvoiceRenderer {
	pageSize := cfg.PageSize
	if pageSize == "" {
		pageSize = "A4"
	}
	boldFontPath := cfg.BoldFontPath
	if boldFontPath == "" {
		boldFontPath = cfg.FontPath
	}
	return &InvoiceRenderer{
		currency:     cfg.CurrencySymbol,
		pageSize:     pageSize,
		fontPath:     cfg.FontPath,
		boldFontPath: boldFontPath,
	}
}

// ContentType is the MIME type of Render's output.
func (r *InvoiceRenderer) ContentType() string {
	return "application/pdf"
}

// Lines projects inv onto the ordered document lines.
func (r *InvoiceRenderer) Lines(inv *domain.Invoice) []Line {
	title := inv.InvoiceNumber
	if title == "" {
		title = inv.ID
	}

	poNumber := NotApplicable
	if inv.PONumber != nil && *inv.PONumber != "" {
		poNumber = *inv.PONumber
	}

	dueDate := NotApplicable
	if inv.DueDate != nil && !inv.DueDate.IsZero() {
		dueDate = inv.DueDate.UTC().Format(time.DateOnly)
	}

	lines := []Line{
		{Text: "Invoice " + title, Style: StyleTitle},
		{Text: "From: " + partyLabel(inv.FromUser)},
		{Text: "To: " + partyLabel(inv.ToUser)},
		{Text: "Client: " + inv.Client},
		{Text: "PO Number: " + poNumber},
		{Text: "Due Date: " + dueDate},
		{Text: "Items:", Style: StyleHeading},
	}
	for i, item := range inv.Items {
		lines = append(lines, Line{Text: fmt.Sprintf("%d. %s - Qty: %s - Price: %s",
			i+1, item.Description, number(item.Quantity), r.money(item.Price))})
	}
	lines = append(lines,
		Line{Text: "Shipping: " + r.money(inv.Shipping)},
		Line{Text: "Tax: " + r.money(inv.Tax)},
		Line{Text: "GST: " + r.money(inv.GST)},
		Line{Text: "Total: " + r.money(inv.Total), Style: StyleHeading},
		Line{Text: "Status: " + string(inv.Status)},
	)
	return lines
}

// Document is a laid-out invoice waiting to be written.
type Document struct {
	pdf *gofpdf.Fpdf
}

// Write emits the PDF bytes. A Document can be written once.
func (d *Document) Write(w io.Writer) error {
	return d.pdf.Output(w)
}

// Render lays out inv in a single pass and writes the PDF to w.
func (r *InvoiceRenderer) Render(w io.Writer, inv *domain.Invoice) error {
	doc, err := r.Compose(inv)
	if err != nil {
		return err
	}
	return doc.Write(w)
}

// Compose lays out inv without writing anything, so layout failures can be
// reported before a response is committed.
func (r *InvoiceRenderer) Compose(inv *domain.Invoice) (*Document, error) {
	if inv == nil {
		return nil, fmt.Errorf("render: nil invoice")
	}

	pdf := gofpdf.New("P", "mm", r.pageSize, "")
	pdf.SetCompression(false)
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, true)
	pdf.SetCreator("invoice-service", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	r.addFonts(pdf)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	for _, line := range r.Lines(inv) {
		switch line.Style {
		case StyleTitle:
			pdf.SetFont(fontFamily, "B", 20)
			pdf.MultiCell(0, 10, line.Text, "", "L", false)
			pdf.Ln(4)
		case StyleHeading:
			pdf.SetFont(fontFamily, "B", 12)
			pdf.MultiCell(0, 8, line.Text, "", "L", false)
		default:
			pdf.SetFont(fontFamily, "", 12)
			pdf.MultiCell(0, 7, line.Text, "", "L", false)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.ID, err)
	}
	return &Document{pdf: pdf}, nil
}

// addFonts registers the regular and bold faces, from the configured files
// when set and the embedded DejaVu faces otherwise. Load failures surface
// through pdf.Error.
func (r *InvoiceRenderer) addFonts(pdf *gofpdf.Fpdf) {
	if r.fontPath != "" {
		pdf.AddUTF8Font(fontFamily, "", r.fontPath)
	} else {
		pdf.AddUTF8FontFromBytes(fontFamily, "", regularFace)
	}
	if r.boldFontPath != "" {
		pdf.AddUTF8Font(fontFamily, "B", r.boldFontPath)
	} else {
		pdf.AddUTF8FontFromBytes(fontFamily, "B", boldFace)
	}
}

func (r *InvoiceRenderer) money(v float64) string {
	return r.currency + number(v)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func partyLabel(p domain.Party) string {
	label := p.Email
	if label == "" {
		label = p.Name
	}
	if label == "" {
		label = p.ID
	}
	if p.Role != "" {
		label += " (" + string(p.Role) + ")"
	}
	return label
}
