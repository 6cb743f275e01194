// Package documents renders customer and internal PDFs from already-priced
// aggregates. Nothing here computes prices or balances.
package documents

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindBrochure    Kind = "quotation"
	KindProfitSheet Kind = "profit_sheet"
	KindInvoice     Kind = "invoice"
	KindVoucher     Kind = "voucher"
)

// Document is one renderable payload.
type Document interface {
	Kind() Kind
	Filename() string
}

// Brochure is the customer-facing holiday package built from a quotation.
type Brochure struct {
	QuotationNumber string
	Date            time.Time
	Country         string
	Lines           []BrochureLine
	Total           decimal.Decimal
	Itinerary       []ItineraryDay
}

type BrochureLine struct {
	Service  string
	Quantity int
	Amount   decimal.Decimal
}

type ItineraryDay struct {
	Day     int
	Date    time.Time
	Entries []ItineraryEntry
}

type ItineraryEntry struct {
	City    string
	Service string
	Text    string
}

// ItineraryItem is a dated quotation line as fed to BuildItinerary.
type ItineraryItem struct {
	StartDate *time.Time
	City      string
	Service   string
	Text      string
}

func (Brochure) Kind() Kind         { return KindBrochure }
func (b Brochure) Filename() string { return b.QuotationNumber + ".pdf" }

// Title reads "<Country> Holiday Package".
func (b Brochure) Title() string {
	return b.Country + " Holiday Package"
}

// BuildItinerary groups items by start date in ascending order and numbers the
// days from 1. Items without a start date are left out; items sharing a date
// keep their input order.
func BuildItinerary(items []ItineraryItem) []ItineraryDay {
	byDate := map[time.Time][]ItineraryEntry{}
	var dates []time.Time
	for _, item := range items {
		if item.StartDate == nil {
			continue
		}
		y, m, d := item.StartDate.Date()
		key := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if _, ok := byDate[key]; !ok {
			dates = append(dates, key)
		}
		byDate[key] = append(byDate[key], ItineraryEntry{City: item.City, Service: item.Service, Text: item.Text})
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	days := make([]ItineraryDay, 0, len(dates))
	for i, date := range dates {
		days = append(days, ItineraryDay{Day: i + 1, Date: date, Entries: byDate[date]})
	}
	return days
}

// ProfitSheet is the internal cost and margin breakdown of a quotation.
type ProfitSheet struct {
	QuotationNumber string
	Date            time.Time
	ClientName      string
	Status          string
	Lines           []ProfitLine
	TotalCost       decimal.Decimal
	TotalSell       decimal.Decimal
	TotalProfit     decimal.Decimal
	Margin          *decimal.Decimal
}

type ProfitLine struct {
	Service   string
	Vendor    string
	Quantity  int
	CostPrice decimal.Decimal
	SellPrice decimal.Decimal
	TotalCost decimal.Decimal
	TotalSell decimal.Decimal
}

func (l ProfitLine) Profit() decimal.Decimal { return l.TotalSell.Sub(l.TotalCost) }

func (ProfitSheet) Kind() Kind         { return KindProfitSheet }
func (p ProfitSheet) Filename() string { return p.QuotationNumber + "-profit.pdf" }

type Invoice struct {
	CompanyName   string
	InvoiceNumber string
	Date          time.Time
	DueDate       *time.Time
	ClientName    string
	Status        string
	Lines         []InvoiceLine
	Total         decimal.Decimal
	Paid          decimal.Decimal
	Due           decimal.Decimal
	Payments      []PaymentLine
}

type InvoiceLine struct {
	Service   string
	Units     int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

type PaymentLine struct {
	Date      time.Time
	Method    string
	Reference string
	Amount    decimal.Decimal
}

func (Invoice) Kind() Kind         { return KindInvoice }
func (i Invoice) Filename() string { return i.InvoiceNumber + ".pdf" }

// Voucher is the receipt handed to the client for a single payment.
type Voucher struct {
	CompanyName   string
	ReceiptNumber string
	InvoiceNumber string
	ClientName    string
	PaymentDate   time.Time
	Method        string
	Reference     string
	Amount        decimal.Decimal
}

func (Voucher) Kind() Kind         { return KindVoucher }
func (v Voucher) Filename() string { return "Voucher-" + v.ReceiptNumber + ".pdf" }
