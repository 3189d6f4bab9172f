package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommission(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		price  float64
		volume float64
		want   float64
	}{
		{"above_floor", 100, 1000, 42.75},
		{"sell_side_example", 110, 1000, 47.025},
		{"floor_applies", 10, 1000, 20.0}, // 4.275 < MinFee
		{"odd_lot_floor", 50, 10, 20.0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Commission(tt.price, tt.volume), 1e-9)
		})
	}
}

func TestTax(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 330.0, Tax(110, 1000), 1e-9)
	assert.InDelta(t, 300.0, Tax(100, 1000), 1e-9)
}

// The canonical round trip: buy 1000 shares at 100, sell at 110.
//
//	buy commission  = max(100000*0.001425*0.3, 20) = 42.75
//	sell commission = max(110000*0.001425*0.3, 20) = 47.025
//	tax             = 110000*0.003                 = 330
//	net profit      = 10000 - 419.775              = 9580.225 -> 9580.23
//	roi             = 9580.23 / 100042.75 * 100    -> 9.58
func TestNetProfitAndROI(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 9580.23, NetProfit(100, 110, 1000))
	assert.Equal(t, 9.58, ROI(100, 110, 1000))
}

func TestNetProfitRoundingHalfAwayFromZero(t *testing.T) {
	t.Parallel()

	// Loss round trip rounds toward the larger absolute value too.
	loss := NetProfit(110, 100, 1000)
	assert.Equal(t, -10389.78, loss) // -10000 - 389.775 = -10389.775
}

func TestROIZeroDenominator(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, ROI(0, 0, 0))
}

func TestROILoss(t *testing.T) {
	t.Parallel()

	roi := ROI(110, 100, 1000)
	assert.Less(t, roi, 0.0)
	// -10389.78 / 110047.025 * 100 = -9.4412... -> -9.44
	assert.Equal(t, -9.44, roi)
}
