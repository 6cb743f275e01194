package documents

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// LocalRenderer draws documents in-process with gofpdf. It needs no external
// service and is the default renderer.
type LocalRenderer struct {
	currency string
}

func NewLocalRenderer(currency string) *LocalRenderer {
	return &LocalRenderer{currency: currency}
}

func (l *LocalRenderer) Name() string { return "local" }

type page struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newPage() *page {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	// core fonts are cp1252; dashes and bullets need translating
	return &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (p *page) heading(size float64, text string) {
	p.pdf.SetFont("Helvetica", "B", size)
	p.pdf.CellFormat(0, size/2+2, p.tr(text), "", 1, "L", false, 0, "")
}

func (p *page) line(text string) {
	p.pdf.SetFont("Helvetica", "", 11)
	p.pdf.CellFormat(0, 6, p.tr(text), "", 1, "L", false, 0, "")
}

// row draws one table row; align holds one entry per column.
func (p *page) row(widths []float64, cells []string, align string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	p.pdf.SetFont("Helvetica", style, 10)
	for i, cell := range cells {
		a := "L"
		if i < len(align) {
			a = string(align[i])
		}
		p.pdf.CellFormat(widths[i], 7, p.tr(cell), "1", 0, a, false, 0, "")
	}
	p.pdf.Ln(-1)
}

func (p *page) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l *LocalRenderer) Render(_ context.Context, doc Document) ([]byte, error) {
	switch d := doc.(type) {
	case Brochure:
		return l.brochure(d)
	case ProfitSheet:
		return l.profitSheet(d)
	case Invoice:
		return l.invoice(d)
	case Voucher:
		return l.voucher(d)
	default:
		return nil, fmt.Errorf("local renderer: unsupported document %T", doc)
	}
}

func (l *LocalRenderer) brochure(b Brochure) ([]byte, error) {
	p := newPage()
	p.heading(20, b.Title())
	p.line("Quotation No: " + b.QuotationNumber)
	p.line("Date: " + formatDate(b.Date))
	p.pdf.Ln(4)

	widths := []float64{110, 20, 50}
	p.row(widths, []string{"Service", "Qty", "Amount"}, "LRR", true)
	for _, ln := range b.Lines {
		p.row(widths, []string{ln.Service, strconv.Itoa(ln.Quantity), FormatMoney(l.currency, ln.Amount)}, "LRR", false)
	}
	p.row([]float64{130, 50}, []string{"Total Package Cost", FormatMoney(l.currency, b.Total)}, "LR", true)

	if len(b.Itinerary) > 0 {
		p.pdf.Ln(6)
		p.heading(14, "Day Wise Itinerary")
		for _, day := range b.Itinerary {
			p.pdf.Ln(2)
			p.heading(12, fmt.Sprintf("Day %d – %s", day.Day, formatDate(day.Date)))
			for _, e := range day.Entries {
				p.line(fmt.Sprintf("• %s – %s", e.City, e.Service))
				if e.Text != "" {
					p.pdf.SetFont("Helvetica", "", 10)
					p.pdf.MultiCell(0, 5, p.tr(e.Text), "", "L", false)
				}
			}
		}
	}
	return p.bytes()
}

func (l *LocalRenderer) profitSheet(s ProfitSheet) ([]byte, error) {
	p := newPage()
	p.heading(18, "Profit Sheet")
	p.line("Quotation No: " + s.QuotationNumber)
	p.line("Date: " + formatDate(s.Date))
	p.line("Client: " + s.ClientName)
	p.line("Status: " + s.Status)
	p.pdf.Ln(4)

	widths := []float64{50, 12, 30, 30, 30, 28}
	p.row(widths, []string{"Service", "Qty", "Total Cost", "Total Sell", "Profit", "Vendor"}, "LRRRRL", true)
	for _, ln := range s.Lines {
		p.row(widths, []string{
			ln.Service,
			strconv.Itoa(ln.Quantity),
			FormatMoney(l.currency, ln.TotalCost),
			FormatMoney(l.currency, ln.TotalSell),
			FormatMoney(l.currency, ln.Profit()),
			ln.Vendor,
		}, "LRRRRL", false)
	}
	p.row(widths[:5], []string{
		"Totals", "",
		FormatMoney(l.currency, s.TotalCost),
		FormatMoney(l.currency, s.TotalSell),
		FormatMoney(l.currency, s.TotalProfit),
	}, "LRRRR", true)
	if s.Margin != nil {
		p.pdf.Ln(4)
		p.line("Margin: " + s.Margin.StringFixed(2) + "%")
	}
	return p.bytes()
}

func (l *LocalRenderer) invoice(inv Invoice) ([]byte, error) {
	p := newPage()
	p.heading(18, inv.CompanyName)
	p.heading(16, "INVOICE")
	p.line("Invoice No: " + inv.InvoiceNumber)
	p.line("Date: " + formatDate(inv.Date))
	if inv.DueDate != nil {
		p.line("Due Date: " + formatDate(*inv.DueDate))
	}
	p.line("Client: " + inv.ClientName)
	p.pdf.Ln(4)

	widths := []float64{80, 20, 40, 40}
	p.row(widths, []string{"Service", "Units", "Unit Price", "Total"}, "LRRR", true)
	for _, ln := range inv.Lines {
		p.row(widths, []string{
			ln.Service,
			strconv.Itoa(ln.Units),
			FormatMoney(l.currency, ln.UnitPrice),
			FormatMoney(l.currency, ln.Total),
		}, "LRRR", false)
	}

	p.pdf.Ln(4)
	summary := []float64{140, 40}
	p.row(summary, []string{"Total Amount", FormatMoney(l.currency, inv.Total)}, "LR", true)
	p.row(summary, []string{"Paid Amount", FormatMoney(l.currency, inv.Paid)}, "LR", false)
	p.row(summary, []string{"Due Amount", FormatMoney(l.currency, inv.Due)}, "LR", false)
	p.row(summary, []string{"Status", inv.Status}, "LR", false)

	if len(inv.Payments) > 0 {
		p.pdf.Ln(6)
		p.heading(14, "Payment History")
		cols := []float64{40, 40, 60, 40}
		p.row(cols, []string{"Date", "Method", "Reference", "Amount"}, "LLLR", true)
		for _, pay := range inv.Payments {
			p.row(cols, []string{formatDate(pay.Date), pay.Method, pay.Reference, FormatMoney(l.currency, pay.Amount)}, "LLLR", false)
		}
	}
	return p.bytes()
}

func (l *LocalRenderer) voucher(v Voucher) ([]byte, error) {
	p := newPage()
	p.heading(18, v.CompanyName)
	p.heading(16, "PAYMENT RECEIPT VOUCHER")
	p.pdf.Ln(4)

	widths := []float64{60, 120}
	rows := [][2]string{
		{"Receipt No", v.ReceiptNumber},
		{"Invoice No", v.InvoiceNumber},
		{"Client", v.ClientName},
		{"Payment Date", formatDate(v.PaymentDate)},
		{"Payment Method", v.Method},
		{"Reference No", v.Reference},
		{"Amount Paid", FormatMoney(l.currency, v.Amount)},
	}
	for _, r := range rows {
		p.row(widths, []string{r[0], r[1]}, "LL", r[0] == "Amount Paid")
	}

	p.pdf.Ln(30)
	p.pdf.Line(15, p.pdf.GetY(), 85, p.pdf.GetY())
	p.pdf.Ln(2)
	p.line("Authorized Signature")
	return p.bytes()
}
