package shared

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
)

// Document types tracked in document_sequences.
const (
	DocQuotation = "QT"
	DocInvoice   = "INV"
	DocReceipt   = "RCPT"
)

// RowQuerier is the subset of pgx used for sequence allocation.
type RowQuerier interface {
	QueryRow(context.Context, string, ...any) pgx.Row
}

// NextSequence atomically allocates the next counter value for a document
// type and period. Run it inside the transaction that inserts the document so
// a rollback does not burn the number for other writers.
func NextSequence(ctx context.Context, q RowQuerier, docType, period string) (int64, error) {
	var seq int64
	err := q.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, docType, period).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next %s sequence: %w", docType, err)
	}
	return seq, nil
}

// NextQuotationNumber returns QT-0001 style numbers from a single global counter.
func NextQuotationNumber(ctx context.Context, q RowQuerier) (string, error) {
	seq, err := NextSequence(ctx, q, DocQuotation, "")
	if err != nil {
		return "", err
	}
	return FormatQuotationNumber(seq), nil
}

// NextInvoiceNumber returns INV-2025-0001 style numbers; the counter restarts each year.
func NextInvoiceNumber(ctx context.Context, q RowQuerier, at time.Time) (string, error) {
	year := strconv.Itoa(at.Year())
	seq, err := NextSequence(ctx, q, DocInvoice, year)
	if err != nil {
		return "", err
	}
	return FormatYearlyNumber(DocInvoice, at.Year(), seq), nil
}

// NextReceiptNumber returns RCPT-2025-0001 style numbers; the counter restarts each year.
func NextReceiptNumber(ctx context.Context, q RowQuerier, at time.Time) (string, error) {
	year := strconv.Itoa(at.Year())
	seq, err := NextSequence(ctx, q, DocReceipt, year)
	if err != nil {
		return "", err
	}
	return FormatYearlyNumber(DocReceipt, at.Year(), seq), nil
}

// FormatQuotationNumber renders a quotation counter value.
func FormatQuotationNumber(seq int64) string {
	return fmt.Sprintf("%s-%04d", DocQuotation, seq)
}

// FormatYearlyNumber renders a per-year counter value.
func FormatYearlyNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}
