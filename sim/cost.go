// Package sim implements the virtual brokerage: the Taiwan equity cost
// model, the account ledger, and the order executor a backtest trades
// through.
package sim

import "github.com/shopspring/decimal"

// Taiwan brokerage fee schedule. Commission is charged on both sides with a
// floor; securities transaction tax is charged on sell proceeds only.
const (
	CommRate     = 0.001425
	CommDiscount = 0.3
	MinFee       = 20.0
	TaxRate      = 0.003
)

var (
	commRate     = decimal.NewFromFloat(CommRate)
	commDiscount = decimal.NewFromFloat(CommDiscount)
	minFee       = decimal.NewFromFloat(MinFee)
	taxRate      = decimal.NewFromFloat(TaxRate)
	hundred      = decimal.NewFromInt(100)
)

func value(price, volume float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(volume))
}

func commission(price, volume float64) decimal.Decimal {
	fee := value(price, volume).Mul(commRate).Mul(commDiscount)
	if fee.LessThan(minFee) {
		return minFee
	}
	return fee
}

func tax(price, volume float64) decimal.Decimal {
	return value(price, volume).Mul(taxRate)
}

// Commission returns the discounted broker fee for one fill, floored at
// MinFee.
func Commission(price, volume float64) float64 {
	return commission(price, volume).InexactFloat64()
}

// Tax returns the securities transaction tax on a sell fill.
func Tax(price, volume float64) float64 {
	return tax(price, volume).InexactFloat64()
}

func netProfit(buyPrice, sellPrice, volume float64) decimal.Decimal {
	gross := value(sellPrice, volume).Sub(value(buyPrice, volume))
	cost := commission(buyPrice, volume).
		Add(commission(sellPrice, volume)).
		Add(tax(sellPrice, volume))
	return gross.Sub(cost).Round(2)
}

// NetProfit returns the realized profit of a round trip after both
// commissions and the sell tax, rounded to 2 decimals (half away from
// zero).
func NetProfit(buyPrice, sellPrice, volume float64) float64 {
	return netProfit(buyPrice, sellPrice, volume).InexactFloat64()
}

// ROI returns the realized return in percent on the invested capital
// (purchase value plus buy commission), rounded to 2 decimals. A zero
// denominator yields 0.
func ROI(buyPrice, sellPrice, volume float64) float64 {
	invested := value(buyPrice, volume).Add(commission(buyPrice, volume))
	if invested.IsZero() {
		return 0
	}
	return netProfit(buyPrice, sellPrice, volume).
		Div(invested).
		Mul(hundred).
		Round(2).
		InexactFloat64()
}
