package render

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/invoice-service/internal/config"
	"github.com/spec-kit/invoice-service/internal/domain"
)

func widgetInvoice() *domain.Invoice {
	return &domain.Invoice{
		ID:            "7f1c",
		InvoiceNumber: "INV-20260101-120000-000-0001",
		FromUser:      domain.Party{ID: "u1", Email: "seller@example.com", Role: domain.UserRoleParticipant},
		ToUser:        domain.Party{ID: "u2", Email: "buyer@example.com", Role: domain.UserRoleAdmin},
		Client:        "Acme Hospital",
		Items:         []domain.InvoiceItem{{Description: "Widget", Quantity: 2, Price: 9.5}},
		Shipping:      1,
		Total:         20,
		Status:        domain.InvoiceStatusUnpaid,
	}
}

// pdfText is s as it appears in an uncompressed content stream set in a
// UTF-8 face: big-endian UTF-16 with PDF string escapes.
func pdfText(s string) string {
	var b strings.Builder
	for _, u := range utf16.Encode([]rune(s)) {
		b.WriteByte(byte(u >> 8))
		b.WriteByte(byte(u))
	}
	return strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`, "\r", `\r`).Replace(b.String())
}

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestLines_Order(t *testing.T) {
	r := NewInvoiceRenderer(config.RenderConfig{CurrencySymbol: "$"})
	due := time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)
	inv := widgetInvoice()
	po := "PO-9"
	inv.PONumber = &po
	inv.DueDate = &due

	assert.Equal(t, []string{
		"Invoice INV-20260101-120000-000-0001",
		"From: seller@example.com (participant)",
		"To: buyer@example.com (admin)",
		"Client: Acme Hospital",
		"PO Number: PO-9",
		"Due Date: 2026-03-15",
		"Items:",
		"1. Widget - Qty: 2 - Price: $9.5",
		"Shipping: $1",
		"Tax: $0",
		"GST: $0",
		"Total: $20",
		"Status: unpaid",
	}, texts(r.Lines(inv)))
}

func TestLines_Fallbacks(t *testing.T) {
	r := NewInvoiceRenderer(config.RenderConfig{CurrencySymbol: "$"})
	inv := widgetInvoice()
	inv.InvoiceNumber = ""
	empty := ""
	inv.PONumber = &empty

	got := texts(r.Lines(inv))
	assert.Equal(t, "Invoice 7f1c", got[0], "title falls back to the internal id")
	assert.Contains(t, got, "PO Number: N/A")
	assert.Contains(t, got, "Due Date: N/A")
}

// Amounts are the prefix plus the raw stored number: no rounding, no
// thousands separators, no fixed decimals.
func TestLines_CurrencyIsRawConcatenation(t *testing.T) {
	r := NewInvoiceRenderer(config.RenderConfig{CurrencySymbol: "$"})
	inv := widgetInvoice()
	inv.Items = []domain.InvoiceItem{{Description: "Bulk", Quantity: 1.25, Price: 1234567.125}}
	a, b := 0.1, 0.2
	inv.Total = a + b

	got := texts(r.Lines(inv))
	assert.Contains(t, got, "1. Bulk - Qty: 1.25 - Price: $1234567.125")
	assert.Contains(t, got, "Total: $0.30000000000000004")
}

func TestRender_PDF(t *testing.T) {
	r := NewInvoiceRenderer(config.RenderConfig{CurrencySymbol: "$"})

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, widgetInvoice()))
	out := buf.String()

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	for _, want := range []string{"Widget", "Qty: 2", "Price: $9.5", "Total: $20", "PO Number: N/A", "Tax: $0", "GST: $0"} {
		assert.Contains(t, out, pdfText(want))
	}
}

func TestRender_DoesNotRecomputeTotal(t *testing.T) {
	r := NewInvoiceRenderer(config.RenderConfig{CurrencySymbol: "$"})
	inv := widgetInvoice()
	inv.Total = 25 // items + shipping would be 20

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, inv))
	assert.Contains(t, buf.String(), pdfText("Total: $25"))
	assert.NotContains(t, buf.String(), pdfText("Total: $20"))
}

func TestRender_Paginates(t *testing.T) {
	r := NewInvoiceRenderer(config.RenderConfig{CurrencySymbol: "$"})
	inv := widgetInvoice()
	for i := 0; i < 120; i++ {
		inv.Items = append(inv.Items, domain.InvoiceItem{Description: "Filler", Quantity: 1, Price: 1})
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, inv))
	assert.Contains(t, buf.String(), pdfText("Page 2/"))
	assert.Contains(t, buf.String(), pdfText("121. Filler"))
}

func TestRender_NilInvoice(t *testing.T) {
	r := NewInvoiceRenderer(config.RenderConfig{})
	assert.Error(t, r.Render(&bytes.Buffer{}, nil))
}

func TestCompose_WritesOnlyOnDemand(t *testing.T) {
	r := NewInvoiceRenderer(config.RenderConfig{CurrencySymbol: "$", PageSize: "A4"})

	doc, err := r.Compose(widgetInvoice())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	_, err = r.Compose(nil)
	assert.Error(t, err)
}

func TestRender_KeepsNonLatinText(t *testing.T) {
	r := NewInvoiceRenderer(config.RenderConfig{CurrencySymbol: "₹"})
	inv := widgetInvoice()
	inv.Client = "Zürich Klinik"
	inv.Items = []domain.InvoiceItem{{Description: "Schraube Ø5 – 日本", Quantity: 2, Price: 9.5}}
	inv.Total = 20.2

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, inv))
	out := buf.String()

	assert.Contains(t, out, pdfText("Client: Zürich Klinik"))
	assert.Contains(t, out, pdfText("1. Schraube Ø5 – 日本 - Qty: 2 - Price: ₹9.5"))
	assert.Contains(t, out, pdfText("Total: ₹20.2"))
	assert.Contains(t, out, "/Encoding /Identity-H", "text is set in an embedded UTF-8 face")
}

func TestCompose_FontPath(t *testing.T) {
	t.Run("configured face", func(t *testing.T) {
		r := NewInvoiceRenderer(config.RenderConfig{CurrencySymbol: "$", FontPath: "fonts/DejaVuSansCondensed.ttf"})
		doc, err := r.Compose(widgetInvoice())
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, doc.Write(&buf))
		assert.Contains(t, buf.String(), pdfText("Total: $20"))
	})

	t.Run("missing file", func(t *testing.T) {
		r := NewInvoiceRenderer(config.RenderConfig{FontPath: "fonts/does-not-exist.ttf"})
		_, err := r.Compose(widgetInvoice())
		assert.Error(t, err)
	})
}
