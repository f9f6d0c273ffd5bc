package helper

import (
	"strconv"

	"easyticket/config"

	"github.com/shopspring/decimal"
)

const defaultServiceFeePercent = 5

var decimalHundred = decimal.NewFromInt(100)

// serviceFeePercent reads SERVICE_FEE_PERCENT, defaulting to 5.
func serviceFeePercent() int64 {
	v := config.Config("SERVICE_FEE_PERCENT")
	if v == "" {
		return defaultServiceFeePercent
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return defaultServiceFeePercent
	}
	return n
}

// ServiceFee returns the platform fee on a subtotal, rounded to cents
// (half up).
func ServiceFee(subtotal decimal.Decimal) decimal.Decimal {
	pct := decimal.NewFromInt(serviceFeePercent()).Div(decimal.NewFromInt(100))
	return subtotal.Mul(pct).Round(2)
}

// OrderTotal is subtotal + fee - discount, floored at zero.
func OrderTotal(subtotal, fee, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Add(fee).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
