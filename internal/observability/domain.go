package observability

// ObserveDocument counts a rendered PDF.
func (m *Metrics) ObserveDocument(kind, renderer string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(kind, renderer).Inc()
}

func (m *Metrics) QuotationCreated() {
	if m == nil {
		return
	}
	m.quotations.Inc()
}

func (m *Metrics) QuotationTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) InvoiceCreated() {
	if m == nil {
		return
	}
	m.invoices.Inc()
}

func (m *Metrics) PaymentRecorded(method string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(method).Inc()
}

// OverdueMarked adds the invoices flipped to OVERDUE by one sweep.
func (m *Metrics) OverdueMarked(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.overdue.Add(float64(n))
}
