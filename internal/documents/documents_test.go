package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func sampleBrochure() Brochure {
	return Brochure{
		QuotationNumber: "QT-0007",
		Date:            time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Country:         "Turkey",
		Lines: []BrochureLine{
			{Service: "Hilton Istanbul", Quantity: 2, Amount: decimal.RequireFromString("250")},
			{Service: "Bosphorus Cruise", Quantity: 1, Amount: decimal.RequireFromString("1000.5")},
		},
		Total: decimal.RequireFromString("1250.5"),
		Itinerary: BuildItinerary([]ItineraryItem{
			{StartDate: day("2024-03-10"), City: "Istanbul", Service: "Hilton Istanbul"},
			{StartDate: day("2024-03-11"), City: "Istanbul", Service: "Bosphorus Cruise", Text: "Evening cruise"},
		}),
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "PKR 1,234.50", FormatMoney("PKR", decimal.RequireFromString("1234.5")))
	assert.Equal(t, "PKR 0.00", FormatMoney("PKR", decimal.Zero))
	assert.Equal(t, "USD 1,000,000.00", FormatMoney("USD", decimal.NewFromInt(1000000)))
}

func TestBuildItineraryGroupsByStartDate(t *testing.T) {
	days := BuildItinerary([]ItineraryItem{
		{StartDate: day("2024-05-03"), City: "Dubai", Service: "Desert Safari"},
		{StartDate: nil, City: "Dubai", Service: "Visa"},
		{StartDate: day("2024-05-01"), City: "Dubai", Service: "Airport Pickup"},
		{StartDate: day("2024-05-01"), City: "Dubai", Service: "Atlantis"},
	})
	require.Len(t, days, 2)
	assert.Equal(t, 1, days[0].Day)
	assert.Equal(t, "01 May 2024", formatDate(days[0].Date))
	assert.Equal(t, []ItineraryEntry{
		{City: "Dubai", Service: "Airport Pickup"},
		{City: "Dubai", Service: "Atlantis"},
	}, days[0].Entries)
	assert.Equal(t, 2, days[1].Day)
	assert.Equal(t, "Desert Safari", days[1].Entries[0].Service)
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "QT-0007.pdf", sampleBrochure().Filename())
	assert.Equal(t, "INV-2024-0001.pdf", Invoice{InvoiceNumber: "INV-2024-0001"}.Filename())
	assert.Equal(t, "Voucher-RCPT-2024-0003.pdf", Voucher{ReceiptNumber: "RCPT-2024-0003"}.Filename())
	assert.Equal(t, "voucher/Voucher-RCPT-2024-0003.pdf", ArchiveKey(Voucher{ReceiptNumber: "RCPT-2024-0003"}))
	assert.Equal(t, "Turkey Holiday Package", sampleBrochure().Title())
}

func TestLocalRendererProducesPDFs(t *testing.T) {
	r := NewLocalRenderer("PKR")
	ctx := context.Background()
	due := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	margin := decimal.NewFromInt(25)

	docs := []Document{
		sampleBrochure(),
		ProfitSheet{
			QuotationNumber: "QT-0007", Date: time.Now(), ClientName: "Acme", Status: "DRAFT",
			Lines: []ProfitLine{{Service: "Hotel", Quantity: 2, CostPrice: decimal.NewFromInt(100), SellPrice: decimal.NewFromInt(125),
				TotalCost: decimal.NewFromInt(200), TotalSell: decimal.NewFromInt(250)}},
			TotalCost: decimal.NewFromInt(200), TotalSell: decimal.NewFromInt(250), TotalProfit: decimal.NewFromInt(50), Margin: &margin,
		},
		Invoice{
			CompanyName: "VoyageOS Travel", InvoiceNumber: "INV-2024-0001", Date: time.Now(), DueDate: &due, ClientName: "Acme",
			Status: "PARTIAL", Total: decimal.NewFromInt(250), Paid: decimal.NewFromInt(100), Due: decimal.NewFromInt(150),
			Lines:    []InvoiceLine{{Service: "Hotel", Units: 2, UnitPrice: decimal.NewFromInt(125), Total: decimal.NewFromInt(250)}},
			Payments: []PaymentLine{{Date: time.Now(), Method: "CASH", Amount: decimal.NewFromInt(100)}},
		},
		Voucher{CompanyName: "VoyageOS Travel", ReceiptNumber: "RCPT-2024-0001", InvoiceNumber: "INV-2024-0001",
			ClientName: "Acme", PaymentDate: time.Now(), Method: "CASH", Amount: decimal.NewFromInt(100)},
	}
	for _, doc := range docs {
		out, err := r.Render(ctx, doc)
		require.NoError(t, err, doc.Kind())
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), doc.Kind())
	}
}

func TestHTMLTemplatesRenderBrochure(t *testing.T) {
	tmpl, err := NewHTMLTemplates("PKR")
	require.NoError(t, err)

	html, err := tmpl.Execute(sampleBrochure())
	require.NoError(t, err)
	body := string(html)
	assert.Contains(t, body, "Turkey Holiday Package")
	assert.Contains(t, body, "Total Package Cost")
	assert.Contains(t, body, "PKR 1,250.50")
	assert.Contains(t, body, "Day Wise Itinerary")
	assert.Contains(t, body, "Day 2 – 11 Mar 2024")
	assert.Contains(t, body, "Istanbul – Bosphorus Cruise")
}

func TestHTMLTemplatesRenderVoucher(t *testing.T) {
	tmpl, err := NewHTMLTemplates("PKR")
	require.NoError(t, err)

	html, err := tmpl.Execute(Voucher{CompanyName: "VoyageOS Travel", ReceiptNumber: "RCPT-2024-0002", InvoiceNumber: "INV-2024-0001",
		ClientName: "Acme", PaymentDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Method: "CARD", Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)
	body := string(html)
	assert.Contains(t, body, "PAYMENT RECEIPT VOUCHER")
	assert.Contains(t, body, "RCPT-2024-0002")
	assert.Contains(t, body, "05 Jan 2024")
	assert.Contains(t, body, "PKR 500.00")
}

func TestGotenbergRendererPostsIndexHTML(t *testing.T) {
	var gotFile string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		reader := multipart.NewReader(r.Body, params["boundary"])
		part, err := reader.NextPart()
		require.NoError(t, err)
		gotFile = part.FileName()
		content, _ := io.ReadAll(part)
		require.Contains(t, string(content), "Turkey Holiday Package")
		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer server.Close()

	tmpl, err := NewHTMLTemplates("PKR")
	require.NoError(t, err)
	r := NewGotenbergRenderer(server.URL+"/", tmpl)

	out, err := r.Render(context.Background(), sampleBrochure())
	require.NoError(t, err)
	assert.Equal(t, "index.html", gotFile)
	assert.Equal(t, "%PDF-1.7 fake", string(out))
}

func TestGotenbergRendererSurfacesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tmpl, err := NewHTMLTemplates("PKR")
	require.NoError(t, err)
	_, err = NewGotenbergRenderer(server.URL, tmpl).Render(context.Background(), sampleBrochure())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "503"))
}

type recordingArchiver struct {
	keys []string
	err  error
}

func (a *recordingArchiver) EnqueueArchive(_ context.Context, key string, _ []byte) error {
	a.keys = append(a.keys, key)
	return a.err
}

type countingRecorder struct{ calls map[string]int }

func (c *countingRecorder) ObserveDocument(kind, renderer string) {
	c.calls[kind+"/"+renderer]++
}

func TestGeneratorArchivesCustomerDocumentsOnly(t *testing.T) {
	archiver := &recordingArchiver{err: errors.New("queue down")}
	recorder := &countingRecorder{calls: map[string]int{}}
	g := NewGenerator(NewLocalRenderer("PKR"), WithArchiver(archiver), WithRecorder(recorder))
	ctx := context.Background()

	_, err := g.Render(ctx, sampleBrochure())
	require.NoError(t, err, "archive failures must not fail rendering")
	_, err = g.Render(ctx, ProfitSheet{QuotationNumber: "QT-0007"})
	require.NoError(t, err)

	assert.Equal(t, []string{"quotation/QT-0007.pdf"}, archiver.keys)
	assert.Equal(t, 1, recorder.calls["quotation/local"])
	assert.Equal(t, 1, recorder.calls["profit_sheet/local"])
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3ArchivePut(t *testing.T) {
	putter := &fakePutter{}
	archive := NewS3ArchiveWithClient(putter, "voyageos-docs")

	require.NoError(t, archive.Put(context.Background(), "invoice/INV-2024-0001.pdf", []byte("%PDF")))
	assert.Equal(t, "voyageos-docs", *putter.input.Bucket)
	assert.Equal(t, "invoice/INV-2024-0001.pdf", *putter.input.Key)
	assert.Equal(t, "application/pdf", *putter.input.ContentType)
	assert.Equal(t, []byte("%PDF"), putter.body)
}
