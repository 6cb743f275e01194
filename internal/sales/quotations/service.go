package quotations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voyageos/voyageos/internal/billing/invoices"
	"github.com/voyageos/voyageos/internal/documents"
	"github.com/voyageos/voyageos/internal/platform/httpx"
	"github.com/voyageos/voyageos/internal/sales/pricing"
	"github.com/voyageos/voyageos/internal/shared"
)

// Recorder receives sales counters.
type Recorder interface {
	QuotationCreated()
	QuotationTransition(from, to string)
	InvoiceCreated()
}

type nopRecorder struct{}

func (nopRecorder) QuotationCreated()                  {}
func (nopRecorder) QuotationTransition(string, string) {}
func (nopRecorder) InvoiceCreated()                    {}

type Options struct {
	InvoiceDueDays int
	Auditor        shared.Auditor
	Invalidator    shared.Invalidator
	Recorder       Recorder
	Logger         *slog.Logger
	Now            func() time.Time
}

type Service struct {
	repo        Repository
	docs        *documents.Generator
	dueDays     int
	auditor     shared.Auditor
	invalidator shared.Invalidator
	recorder    Recorder
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(repo Repository, docs *documents.Generator, opts Options) *Service {
	s := &Service{
		repo:        repo,
		docs:        docs,
		dueDays:     opts.InvoiceDueDays,
		auditor:     opts.Auditor,
		invalidator: opts.Invalidator,
		recorder:    opts.Recorder,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if s.auditor == nil {
		s.auditor = shared.NopAuditor{}
	}
	if s.invalidator == nil {
		s.invalidator = shared.NopInvalidator{}
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create prices every item against the quotation margin, stores the
// quotation in DRAFT and returns it with its items.
func (s *Service) Create(ctx context.Context, req CreateQuotationRequest) (Quotation, error) {
	margin := DefaultMargin
	if req.MarginPercentage != nil {
		margin = *req.MarginPercentage
	}

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		ok, err := tx.ClientExists(ctx, req.ClientID)
		if err != nil {
			return fmt.Errorf("check client: %w", err)
		}
		if !ok {
			return fmt.Errorf("client %d: %w", req.ClientID, httpx.ErrNotFound)
		}
		for _, in := range req.Items {
			if err := checkReferences(ctx, tx, in); err != nil {
				return err
			}
		}

		number, err := tx.NextNumber(ctx)
		if err != nil {
			return err
		}
		items := make([]Item, 0, len(req.Items))
		lines := make([]pricing.Line, 0, len(req.Items))
		for _, in := range req.Items {
			item := priceItem(in, &margin)
			items = append(items, item)
			lines = append(lines, lineOf(item))
		}
		totals := pricing.Summarize(lines, &margin)

		q, err := tx.Insert(ctx, Quotation{
			QuotationNumber:  number,
			ClientID:         req.ClientID,
			TotalCost:        totals.TotalCost,
			TotalSell:        totals.TotalSell,
			TotalProfit:      totals.TotalProfit,
			MarginPercentage: totals.Margin,
			BaseMargin:       margin,
			Status:           StatusDraft,
		})
		if err != nil {
			return err
		}
		for _, item := range items {
			item.QuotationID = q.ID
			if _, err := tx.InsertItem(ctx, item); err != nil {
				return err
			}
		}
		id = q.ID
		return nil
	})
	if err != nil {
		return Quotation{}, fmt.Errorf("create quotation: %w", err)
	}
	s.recorder.QuotationCreated()
	s.invalidator.Invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// AddItem prices one more item with the margin the quotation was created with
// and recomputes the totals.
func (s *Service) AddItem(ctx context.Context, quotationID int64, in ItemInput) (Quotation, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		q, err := tx.GetForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}
		if !editable(q.Status) {
			return fmt.Errorf("quotation %s is %s and can no longer be changed: %w", q.QuotationNumber, q.Status, httpx.ErrInvalidState)
		}
		if err := checkReferences(ctx, tx, in); err != nil {
			return err
		}
		item := priceItem(in, &q.BaseMargin)
		item.QuotationID = q.ID
		if _, err := tx.InsertItem(ctx, item); err != nil {
			return err
		}
		return s.recompute(ctx, tx, q)
	})
	if err != nil {
		return Quotation{}, fmt.Errorf("add quotation item: %w", err)
	}
	s.invalidator.Invalidate(ctx)
	return s.repo.Get(ctx, quotationID)
}

func (s *Service) recompute(ctx context.Context, tx Repository, q Quotation) error {
	items, err := tx.Items(ctx, q.ID)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, lineOf(it))
	}
	return tx.UpdateTotals(ctx, q.ID, pricing.Summarize(lines, q.MarginPercentage))
}

func (s *Service) Get(ctx context.Context, id int64) (Quotation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Quotation, error) {
	return s.repo.List(ctx, filter)
}

// UpdateStatus moves the quotation along the workflow. Entering CONFIRMED
// bills the quotation in the same transaction unless an invoice exists.
func (s *Service) UpdateStatus(ctx context.Context, id int64, raw string) (Quotation, error) {
	target, err := ParseStatus(strings.TrimSpace(raw))
	if err != nil {
		return Quotation{}, err
	}

	var (
		from    Status
		invoice *invoices.Invoice
	)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		q, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		from = q.Status
		if err := checkTransition(q.Status, target); err != nil {
			return err
		}
		if err := tx.UpdateStatus(ctx, id, target); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if target != StatusConfirmed {
			return nil
		}
		billed, err := tx.HasInvoice(ctx, id)
		if err != nil {
			return fmt.Errorf("check invoice: %w", err)
		}
		if billed {
			return nil
		}
		inv, err := tx.CreateInvoice(ctx, invoices.Seed{
			QuotationID: q.ID,
			ClientID:    q.ClientID,
			Total:       q.TotalSell,
			IssuedAt:    s.now(),
			DueDays:     s.dueDays,
		})
		if err != nil {
			return err
		}
		invoice = &inv
		return nil
	})
	if err != nil {
		return Quotation{}, fmt.Errorf("update quotation status: %w", err)
	}

	s.recorder.QuotationTransition(string(from), string(target))
	meta := map[string]any{"from": string(from), "to": string(target)}
	if invoice != nil {
		s.recorder.InvoiceCreated()
		meta["invoice_number"] = invoice.InvoiceNumber
	}
	s.invalidator.Invalidate(ctx)
	s.audit(ctx, "quotation.status", id, meta)
	return s.repo.Get(ctx, id)
}

// Delete soft-deletes a quotation that has not been invoiced.
func (s *Service) Delete(ctx context.Context, id int64, req DeleteRequest) error {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return fmt.Errorf("delete reason is required: %w", httpx.ErrValidation)
	}
	actor := shared.Actor(ctx)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		if _, err := tx.GetForUpdate(ctx, id); err != nil {
			return err
		}
		billed, err := tx.HasInvoice(ctx, id)
		if err != nil {
			return fmt.Errorf("check invoice: %w", err)
		}
		if billed {
			return fmt.Errorf("quotation %d has an invoice: %w", id, httpx.ErrInvalidState)
		}
		return tx.SoftDelete(ctx, id, actor, reason, s.now())
	})
	if err != nil {
		return fmt.Errorf("delete quotation: %w", err)
	}
	s.invalidator.Invalidate(ctx)
	s.audit(ctx, "quotation.delete", id, map[string]any{"reason": reason})
	return nil
}

// Brochure renders the customer-facing package PDF.
func (s *Service) Brochure(ctx context.Context, id int64) ([]byte, string, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if len(q.Items) == 0 {
		return nil, "", fmt.Errorf("quotation %s has no items: %w", q.QuotationNumber, httpx.ErrValidation)
	}

	doc := documents.Brochure{
		QuotationNumber: q.QuotationNumber,
		Date:            q.CreatedAt,
		Country:         q.Items[0].Service.Country,
		Total:           q.TotalSell,
	}
	itinerary := make([]documents.ItineraryItem, 0, len(q.Items))
	for _, it := range q.Items {
		doc.Lines = append(doc.Lines, documents.BrochureLine{Service: it.Service.Name, Quantity: it.Quantity, Amount: it.TotalSell})
		entry := documents.ItineraryItem{City: it.Service.City, Service: it.Service.Name}
		if it.StartDate.Valid {
			start := it.StartDate.Time
			entry.StartDate = &start
		}
		if it.Service.ItineraryText != nil {
			entry.Text = *it.Service.ItineraryText
		}
		itinerary = append(itinerary, entry)
	}
	doc.Itinerary = documents.BuildItinerary(itinerary)

	pdf, err := s.docs.Render(ctx, doc)
	if err != nil {
		return nil, "", err
	}
	return pdf, doc.Filename(), nil
}

// ProfitSheet renders the internal cost and margin breakdown.
func (s *Service) ProfitSheet(ctx context.Context, id int64) ([]byte, string, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc := documents.ProfitSheet{
		QuotationNumber: q.QuotationNumber,
		Date:            q.CreatedAt,
		Status:          string(q.Status),
		TotalCost:       q.TotalCost,
		TotalSell:       q.TotalSell,
		TotalProfit:     q.TotalProfit,
		Margin:          q.MarginPercentage,
	}
	if q.Client != nil {
		doc.ClientName = q.Client.CompanyName
	}
	for _, it := range q.Items {
		line := documents.ProfitLine{
			Service:   it.Service.Name,
			Quantity:  it.Quantity,
			CostPrice: it.CostPrice,
			SellPrice: it.SellPrice,
			TotalCost: it.TotalCost,
			TotalSell: it.TotalSell,
		}
		if it.VendorName != nil {
			line.Vendor = *it.VendorName
		}
		doc.Lines = append(doc.Lines, line)
	}
	pdf, err := s.docs.Render(ctx, doc)
	if err != nil {
		return nil, "", err
	}
	return pdf, doc.Filename(), nil
}

func (s *Service) audit(ctx context.Context, action string, id int64, meta map[string]any) {
	if err := s.auditor.Record(ctx, shared.AuditLog{Action: action, Entity: "quotation", EntityID: id, Meta: meta}); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Int64("quotation_id", id), slog.Any("error", err))
	}
}

func checkReferences(ctx context.Context, tx Repository, in ItemInput) error {
	ok, err := tx.ServiceExists(ctx, in.ServiceID)
	if err != nil {
		return fmt.Errorf("check service: %w", err)
	}
	if !ok {
		return fmt.Errorf("service %d: %w", in.ServiceID, httpx.ErrNotFound)
	}
	if in.VendorID != nil {
		ok, err := tx.VendorExists(ctx, *in.VendorID)
		if err != nil {
			return fmt.Errorf("check vendor: %w", err)
		}
		if !ok {
			return fmt.Errorf("vendor %d: %w", *in.VendorID, httpx.ErrNotFound)
		}
	}
	if in.CostPrice.IsNegative() {
		return fmt.Errorf("cost price must not be negative: %w", httpx.ErrValidation)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %w", httpx.ErrValidation)
	}
	return nil
}

func priceItem(in ItemInput, quotationMargin *decimal.Decimal) Item {
	margin := pricing.ResolveMargin(in.ManualMarginPercentage, quotationMargin)
	line := pricing.PriceLine(in.CostPrice, in.Quantity, margin)
	return Item{
		ServiceID:              in.ServiceID,
		VendorID:               in.VendorID,
		Quantity:               in.Quantity,
		StartDate:              in.StartDate,
		EndDate:                in.EndDate,
		ManualMarginPercentage: in.ManualMarginPercentage,
		CostPrice:              line.CostPrice,
		SellPrice:              line.SellPrice,
		TotalCost:              line.TotalCost,
		TotalSell:              line.TotalSell,
	}
}

func lineOf(it Item) pricing.Line {
	return pricing.Line{
		CostPrice: it.CostPrice,
		SellPrice: it.SellPrice,
		Quantity:  it.Quantity,
		TotalCost: it.TotalCost,
		TotalSell: it.TotalSell,
	}
}
