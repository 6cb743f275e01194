package quotations

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/voyageos/voyageos/internal/billing/invoices"
	"github.com/voyageos/voyageos/internal/documents"
	"github.com/voyageos/voyageos/internal/platform/httpx"
	"github.com/voyageos/voyageos/internal/sales/pricing"
	"github.com/voyageos/voyageos/internal/shared"
)

type memoryRepo struct {
	clients    map[int64]bool
	services   map[int64]ServiceRef
	vendors    map[int64]string
	quotations map[int64]Quotation
	deleted    map[int64]string
	items      []Item
	invoices   map[int64]invoices.Invoice
	seq        int64
	itemSeq    int64
}

func newMemoryRepo() *memoryRepo {
	text := "Check-in and dinner"
	return &memoryRepo{
		clients: map[int64]bool{1: true},
		services: map[int64]ServiceRef{
			10: {Name: "Hilton Istanbul", Category: "HOTEL", City: "Istanbul", Country: "Turkey", ItineraryText: &text},
			11: {Name: "Bosphorus Cruise", Category: "TOUR", City: "Istanbul", Country: "Turkey"},
		},
		vendors:    map[int64]string{5: "Skyline"},
		quotations: map[int64]Quotation{},
		deleted:    map[int64]string{},
		invoices:   map[int64]invoices.Invoice{},
	}
}

func (m *memoryRepo) clone() *memoryRepo {
	cp := *m
	cp.quotations = map[int64]Quotation{}
	for k, v := range m.quotations {
		cp.quotations[k] = v
	}
	cp.deleted = map[int64]string{}
	for k, v := range m.deleted {
		cp.deleted[k] = v
	}
	cp.invoices = map[int64]invoices.Invoice{}
	for k, v := range m.invoices {
		cp.invoices[k] = v
	}
	cp.items = append([]Item{}, m.items...)
	return &cp
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	before := m.clone()
	if err := fn(ctx, m); err != nil {
		*m = *before
		return err
	}
	return nil
}

func (m *memoryRepo) ClientExists(_ context.Context, id int64) (bool, error) {
	return m.clients[id], nil
}

func (m *memoryRepo) ServiceExists(_ context.Context, id int64) (bool, error) {
	_, ok := m.services[id]
	return ok, nil
}

func (m *memoryRepo) VendorExists(_ context.Context, id int64) (bool, error) {
	_, ok := m.vendors[id]
	return ok, nil
}

func (m *memoryRepo) NextNumber(context.Context) (string, error) {
	m.seq++
	return shared.FormatQuotationNumber(m.seq), nil
}

func (m *memoryRepo) Insert(_ context.Context, q Quotation) (Quotation, error) {
	q.ID = int64(len(m.quotations) + 1)
	q.CreatedAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	m.quotations[q.ID] = q
	return q, nil
}

func (m *memoryRepo) InsertItem(_ context.Context, item Item) (Item, error) {
	m.itemSeq++
	item.ID = m.itemSeq
	item.Service = m.services[item.ServiceID]
	if item.VendorID != nil {
		name := m.vendors[*item.VendorID]
		item.VendorName = &name
	}
	m.items = append(m.items, item)
	return item, nil
}

func (m *memoryRepo) Items(_ context.Context, quotationID int64) ([]Item, error) {
	out := []Item{}
	for _, it := range m.items {
		if it.QuotationID == quotationID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memoryRepo) UpdateTotals(_ context.Context, id int64, totals pricing.Totals) error {
	q := m.quotations[id]
	q.TotalCost, q.TotalSell, q.TotalProfit, q.MarginPercentage = totals.TotalCost, totals.TotalSell, totals.TotalProfit, totals.Margin
	m.quotations[id] = q
	return nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (Quotation, error) {
	q, ok := m.quotations[id]
	if !ok || m.deleted[id] != "" {
		return Quotation{}, fmt.Errorf("quotation %d: %w", id, httpx.ErrNotFound)
	}
	q.Client = &ClientRef{ID: q.ClientID, CompanyName: "Acme"}
	q.Items, _ = m.Items(ctx, id)
	return q, nil
}

func (m *memoryRepo) GetForUpdate(ctx context.Context, id int64) (Quotation, error) {
	return m.Get(ctx, id)
}

func (m *memoryRepo) List(_ context.Context, filter Filter) ([]Quotation, error) {
	out := []Quotation{}
	for id := int64(len(m.quotations)); id >= 1; id-- {
		q, ok := m.quotations[id]
		if !ok || m.deleted[id] != "" {
			continue
		}
		if filter.Status != nil && q.Status != *filter.Status {
			continue
		}
		if filter.ClientID != nil && q.ClientID != *filter.ClientID {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	q := m.quotations[id]
	q.Status = status
	m.quotations[id] = q
	return nil
}

func (m *memoryRepo) HasInvoice(_ context.Context, id int64) (bool, error) {
	_, ok := m.invoices[id]
	return ok, nil
}

func (m *memoryRepo) CreateInvoice(_ context.Context, seed invoices.Seed) (invoices.Invoice, error) {
	due := invoices.DueDate(seed.IssuedAt, seed.DueDays)
	inv := invoices.Invoice{
		ID:            int64(len(m.invoices) + 1),
		InvoiceNumber: shared.FormatYearlyNumber(shared.DocInvoice, seed.IssuedAt.Year(), int64(len(m.invoices)+1)),
		QuotationID:   seed.QuotationID,
		ClientID:      seed.ClientID,
		TotalAmount:   seed.Total,
		PaidAmount:    decimal.Zero,
		DueAmount:     seed.Total,
		PaymentStatus: invoices.StatusUnpaid,
		DueDate:       &due,
	}
	m.invoices[seed.QuotationID] = inv
	return inv, nil
}

func (m *memoryRepo) SoftDelete(_ context.Context, id int64, actor, reason string, _ time.Time) error {
	m.deleted[id] = actor + ":" + reason
	return nil
}

type recordingAuditor struct{ logs []shared.AuditLog }

func (a *recordingAuditor) Record(_ context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func date(s string) pgtype.Date {
	t, _ := time.Parse("2006-01-02", s)
	return pgtype.Date{Time: t, Valid: true}
}

func newService(repo *memoryRepo, auditor shared.Auditor) *Service {
	return NewService(repo, documents.NewGenerator(documents.NewLocalRenderer("PKR")), Options{
		InvoiceDueDays: 7,
		Auditor:        auditor,
		Now:            func() time.Time { return time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC) },
	})
}

func createSample(t *testing.T, svc *Service) Quotation {
	t.Helper()
	q, err := svc.Create(context.Background(), CreateQuotationRequest{
		ClientID: 1,
		Items: []ItemInput{
			{ServiceID: 10, Quantity: 2, CostPrice: dec("100"), StartDate: date("2024-04-02")},
			{ServiceID: 11, Quantity: 1, CostPrice: dec("40"), ManualMarginPercentage: ptr(dec("50")), StartDate: date("2024-04-01")},
		},
	})
	require.NoError(t, err)
	return q
}

func TestCreateQuotationPricesItems(t *testing.T) {
	svc := newService(newMemoryRepo(), nil)
	q := createSample(t, svc)

	require.Equal(t, "QT-0001", q.QuotationNumber)
	require.Equal(t, StatusDraft, q.Status)
	require.Len(t, q.Items, 2)

	hotel := q.Items[0]
	require.True(t, dec("125").Equal(hotel.SellPrice))
	require.True(t, dec("200").Equal(hotel.TotalCost))
	require.True(t, dec("250").Equal(hotel.TotalSell))

	cruise := q.Items[1]
	require.True(t, dec("60").Equal(cruise.SellPrice), "manual margin wins")

	require.True(t, dec("240").Equal(q.TotalCost))
	require.True(t, dec("310").Equal(q.TotalSell))
	require.True(t, dec("70").Equal(q.TotalProfit))
	require.True(t, q.TotalSell.Sub(q.TotalCost).Equal(q.TotalProfit))
	require.NotNil(t, q.MarginPercentage)
	require.Equal(t, "29.17", q.MarginPercentage.StringFixed(2))
}

func TestCreateQuotationMissingReferences(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateQuotationRequest{ClientID: 9})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = svc.Create(ctx, CreateQuotationRequest{ClientID: 1, Items: []ItemInput{{ServiceID: 99, Quantity: 1, CostPrice: dec("1")}}})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = svc.Create(ctx, CreateQuotationRequest{ClientID: 1, Items: []ItemInput{{ServiceID: 10, VendorID: ptr(int64(77)), Quantity: 1, CostPrice: dec("1")}}})
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.Empty(t, repo.quotations)
}

func TestCreateQuotationWithoutItemsKeepsDefaultMargin(t *testing.T) {
	svc := newService(newMemoryRepo(), nil)
	q, err := svc.Create(context.Background(), CreateQuotationRequest{ClientID: 1})
	require.NoError(t, err)
	require.True(t, q.TotalCost.IsZero())
	require.True(t, DefaultMargin.Equal(*q.MarginPercentage))
}

func TestAddItemRecomputes(t *testing.T) {
	svc := newService(newMemoryRepo(), nil)
	ctx := context.Background()
	q, err := svc.Create(ctx, CreateQuotationRequest{ClientID: 1, MarginPercentage: ptr(dec("10"))})
	require.NoError(t, err)

	q, err = svc.AddItem(ctx, q.ID, ItemInput{ServiceID: 10, Quantity: 3, CostPrice: dec("50")})
	require.NoError(t, err)
	require.Len(t, q.Items, 1)
	require.True(t, dec("55").Equal(q.Items[0].SellPrice))
	require.True(t, dec("165").Equal(q.TotalSell))
	require.True(t, dec("15").Equal(q.TotalProfit))

	_, err = svc.AddItem(ctx, 404, ItemInput{ServiceID: 10, Quantity: 1, CostPrice: dec("1")})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestAddItemUsesCreationMarginNotBlendedMargin(t *testing.T) {
	svc := newService(newMemoryRepo(), nil)
	q := createSample(t, svc)
	require.Equal(t, "29.17", q.MarginPercentage.StringFixed(2))
	require.True(t, DefaultMargin.Equal(q.BaseMargin))

	q, err := svc.AddItem(context.Background(), q.ID, ItemInput{ServiceID: 10, Quantity: 1, CostPrice: dec("100")})
	require.NoError(t, err)
	require.Len(t, q.Items, 3)
	require.True(t, dec("125").Equal(q.Items[2].SellPrice))
	require.True(t, dec("340").Equal(q.TotalCost))
	require.True(t, dec("435").Equal(q.TotalSell))
	require.True(t, DefaultMargin.Equal(q.BaseMargin))
}

func TestStatusWorkflowCreatesInvoiceOnConfirm(t *testing.T) {
	repo := newMemoryRepo()
	auditor := &recordingAuditor{}
	svc := newService(repo, auditor)
	ctx := context.Background()
	q := createSample(t, svc)

	_, err := svc.UpdateStatus(ctx, q.ID, "CONFIRMED")
	require.ErrorIs(t, err, httpx.ErrInvalidState, "DRAFT cannot jump to CONFIRMED")

	_, err = svc.UpdateStatus(ctx, q.ID, "WON")
	require.ErrorIs(t, err, httpx.ErrValidation)

	q, err = svc.UpdateStatus(ctx, q.ID, "SENT")
	require.NoError(t, err)
	require.Equal(t, StatusSent, q.Status)
	require.Empty(t, repo.invoices)

	q, err = svc.UpdateStatus(ctx, q.ID, "CONFIRMED")
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, q.Status)

	inv, ok := repo.invoices[q.ID]
	require.True(t, ok)
	require.True(t, q.TotalSell.Equal(inv.TotalAmount))
	require.True(t, inv.PaidAmount.IsZero())
	require.True(t, inv.DueAmount.Equal(inv.TotalAmount))
	require.Equal(t, invoices.StatusUnpaid, inv.PaymentStatus)
	require.Equal(t, "2024-03-09", inv.DueDate.Format("2006-01-02"))

	q, err = svc.UpdateStatus(ctx, q.ID, "BOOKED")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, q.ID, "CANCELLED")
	require.ErrorIs(t, err, httpx.ErrInvalidState, "BOOKED is terminal")

	require.Len(t, auditor.logs, 3)
	require.Equal(t, "INV-2024-0001", auditor.logs[1].Meta["invoice_number"])
	require.Len(t, repo.invoices, 1)
}

func TestItemsFrozenAfterConfirmation(t *testing.T) {
	svc := newService(newMemoryRepo(), nil)
	ctx := context.Background()
	q := createSample(t, svc)
	_, err := svc.UpdateStatus(ctx, q.ID, "SENT")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, q.ID, "CONFIRMED")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, q.ID, ItemInput{ServiceID: 10, Quantity: 1, CostPrice: dec("1")})
	require.ErrorIs(t, err, httpx.ErrInvalidState)
}

func TestDeleteQuotation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo, &recordingAuditor{})
	ctx := shared.ContextWithPrincipal(context.Background(), shared.Principal{Username: "agent", Role: "staff"})

	q := createSample(t, svc)
	require.ErrorIs(t, svc.Delete(ctx, q.ID, DeleteRequest{Reason: "  "}), httpx.ErrValidation)
	require.NoError(t, svc.Delete(ctx, q.ID, DeleteRequest{Reason: "client withdrew"}))
	require.Equal(t, "agent:client withdrew", repo.deleted[q.ID])

	_, err := svc.Get(ctx, q.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
	list, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Empty(t, list)

	billed := createSample(t, svc)
	_, err = svc.UpdateStatus(ctx, billed.ID, "SENT")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, billed.ID, "CONFIRMED")
	require.NoError(t, err)
	require.ErrorIs(t, svc.Delete(ctx, billed.ID, DeleteRequest{Reason: "oops"}), httpx.ErrInvalidState)
}

func TestBrochureRequiresItems(t *testing.T) {
	svc := newService(newMemoryRepo(), nil)
	ctx := context.Background()

	empty, err := svc.Create(ctx, CreateQuotationRequest{ClientID: 1})
	require.NoError(t, err)
	_, _, err = svc.Brochure(ctx, empty.ID)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.EqualError(t, err, "quotation QT-0001 has no items: "+httpx.ErrValidation.Error())

	q := createSample(t, svc)
	pdf, name, err := svc.Brochure(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, "QT-0002.pdf", name)
	require.Equal(t, "%PDF", string(pdf[:4]))

	_, name, err = svc.ProfitSheet(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, "QT-0002-profit.pdf", name)
}

func TestQuotationHandlers(t *testing.T) {
	svc := newService(newMemoryRepo(), nil)
	r := chi.NewRouter()
	h := NewHandler(nil, svc)
	h.MountRoutes(r)
	h.MountDocumentRoutes(r)

	send := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	rec := send(http.MethodPost, "/quotations", `{"client_id":1,"items":[{"service_id":10,"quantity":0,"cost_price":100}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "items[0].quantity")

	rec = send(http.MethodPost, "/quotations", `{"client_id":1,"items":[{"service_id":10,"quantity":2,"cost_price":100,"start_date":"2024-04-01"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"quotation_number":"QT-0001"`)
	require.Contains(t, rec.Body.String(), `"start_date":"2024-04-01"`)

	rec = send(http.MethodGet, "/quotations?status=BOGUS", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(http.MethodGet, "/quotations?status=DRAFT", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "QT-0001")

	rec = send(http.MethodPut, "/quotations/1/status", `{"status":"BOOKED"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(http.MethodPut, "/quotations/1/status", `{"status":"SENT"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send(http.MethodGet, "/quotations/1/pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `inline; filename="QT-0001.pdf"`, rec.Header().Get("Content-Disposition"))

	rec = send(http.MethodGet, "/quotations/2", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(http.MethodDelete, "/quotations/1", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = send(http.MethodDelete, "/quotations/1", `{"reason":"duplicate"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}
