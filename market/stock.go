// Package market holds the shared Taiwan stock market types: trading day
// helpers, quotes, ticks, order intents, and the common-stock classifier.
package market

// LotSize is the number of shares in one TWSE board lot.
const LotSize = 1000

// TWSE assigns 4-digit codes in this range to listed common stocks. Codes
// outside it are warrants, ETFs, benchmarks, and other instruments.
const (
	minCommonCode = 1001
	maxCommonCode = 9958
)

// IsCommonStock reports whether code names a listed common stock: exactly
// four ASCII digits with an integer value in [1001, 9958]. ETFs ("00050"),
// warrants, and index benchmarks fall outside and are rejected.
func IsCommonStock(code string) bool {
	if len(code) != 4 {
		return false
	}
	n := 0
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
	}
	return n >= minCommonCode && n <= maxCommonCode
}

// FilterCommonStocks returns the subset of codes that are common stocks,
// preserving order.
func FilterCommonStocks(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if IsCommonStock(code) {
			out = append(out, code)
		}
	}
	return out
}
