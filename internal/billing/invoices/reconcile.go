package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reconcile derives the outstanding amount and status from the invoice total
// and the sum of its payments. Overpayment yields a negative due and PAID.
// An unsettled invoice whose due date lies before today's date is OVERDUE.
func Reconcile(total, paid decimal.Decimal, dueDate *time.Time, now time.Time) (decimal.Decimal, PaymentStatus) {
	due := total.Sub(paid)

	var status PaymentStatus
	switch {
	case !due.IsPositive():
		status = StatusPaid
	case paid.IsPositive():
		status = StatusPartial
	default:
		status = StatusUnpaid
	}

	if status != StatusPaid && pastDue(dueDate, now) {
		status = StatusOverdue
	}
	return due, status
}

func pastDue(dueDate *time.Time, now time.Time) bool {
	if dueDate == nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := dueDate.Date()
	return today.After(time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC))
}

// DueDate is the calendar date payment is expected, days after issue.
func DueDate(issuedAt time.Time, days int) time.Time {
	y, m, d := issuedAt.AddDate(0, 0, days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
