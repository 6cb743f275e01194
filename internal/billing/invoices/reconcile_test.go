package invoices

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestReconcile(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)
	future := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	past := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	todayDue := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		total   string
		paid    string
		dueDate *time.Time
		due     string
		status  PaymentStatus
	}{
		{"nothing paid", "1000", "0", &future, "1000", StatusUnpaid},
		{"partial", "1000", "400", &future, "600", StatusPartial},
		{"settled", "1000", "1000", &future, "0", StatusPaid},
		{"overpaid keeps negative due", "1000", "1200", &future, "-200", StatusPaid},
		{"unpaid past due", "1000", "0", &past, "1000", StatusOverdue},
		{"partial past due", "1000", "250.5", &past, "749.5", StatusOverdue},
		{"settled past due stays paid", "1000", "1000", &past, "0", StatusPaid},
		{"due today is not overdue", "1000", "0", &todayDue, "1000", StatusUnpaid},
		{"no due date", "500", "100", nil, "400", StatusPartial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			due, status := Reconcile(dec(tc.total), dec(tc.paid), tc.dueDate, now)
			assert.True(t, dec(tc.due).Equal(due), "due %s", due)
			assert.Equal(t, tc.status, status)
		})
	}
}

func TestReconcileDueEqualsTotalMinusPaid(t *testing.T) {
	now := time.Now()
	for _, paid := range []string{"0", "0.01", "333.33", "999.99", "1000", "1500"} {
		due, _ := Reconcile(dec("1000"), dec(paid), nil, now)
		assert.True(t, dec("1000").Sub(dec(paid)).Equal(due))
	}
}

func TestDueDate(t *testing.T) {
	issued := time.Date(2024, 12, 28, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC), DueDate(issued, 7))
	assert.Equal(t, time.Date(2024, 12, 28, 0, 0, 0, 0, time.UTC), DueDate(issued, 0))
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod("")
	assert.NoError(t, err)
	assert.Equal(t, MethodCash, m)

	m, err = ParsePaymentMethod("BANK_TRANSFER")
	assert.NoError(t, err)
	assert.Equal(t, MethodBankTransfer, m)

	_, err = ParsePaymentMethod("CHEQUE")
	assert.Error(t, err)
}
