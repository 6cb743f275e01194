package documents

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders an amount as "PKR 1,234.50".
func FormatMoney(currency string, amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return currency + " " + printer.Sprint(number.Decimal(f, number.Scale(2)))
}

const dateLayout = "02 Jan 2006"

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
