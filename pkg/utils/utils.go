package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places money amounts are kept at.
const MoneyScale = 2

var (
	hundred = decimal.NewFromInt(100)
	cent    = decimal.New(1, -MoneyScale)
)

// RoundMoney rounds half away from zero to MoneyScale places.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyScale)
}

// CalculateFinancedAmount applies simple interest to the principal.
// Formula: principal * (1 + ratePercent/100)
func CalculateFinancedAmount(principal, ratePercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(ratePercent.Div(hundred))
	return RoundMoney(principal.Mul(factor))
}

// SplitAmount divides total into count parts of whole cents. Every part
// gets the share rounded down and the leftover cents go one each to the
// final parts, so parts differ by at most one cent and always add up to
// total.
func SplitAmount(total decimal.Decimal, count int) []decimal.Decimal {
	if count <= 0 {
		return nil
	}

	total = RoundMoney(total)
	n := decimal.NewFromInt(int64(count))
	share := total.Div(n).RoundDown(MoneyScale)
	leftover := int(total.Sub(share.Mul(n)).Div(cent).IntPart())

	parts := make([]decimal.Decimal, count)
	for i := range parts {
		parts[i] = share
		if i >= count-leftover {
			parts[i] = share.Add(cent)
		}
	}

	return parts
}

// AddMonths adds calendar months to t. When the target month is shorter
// than t's day, the result is clamped to the last day of that month, so
// Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, hour, minute, sec, t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// CalculateDueDate returns the due date of installment number n.
// Installment 1 is due one calendar month after the start date.
func CalculateDueDate(startDate time.Time, number int) time.Time {
	return AddMonths(startDate, number)
}

// ShortRef renders the first eight characters of an identifier behind a
// prefix, e.g. "Fin. #1a2b3c4d".
func ShortRef(prefix, id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return prefix + " #" + id
}

// PageCount returns how many pages of size pageSize hold total rows.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
