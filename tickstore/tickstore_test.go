package tickstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/twquant/trader/market"
)

func TestDayRange(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)
	to := time.Date(2025, 3, 5, 13, 25, 0, 0, time.UTC)

	start, end := dayRange(from, to)
	assert.Equal(t, market.Day(2025, 3, 3), start)
	assert.Equal(t, market.Day(2025, 3, 6), end, "end bound is midnight after the to date")

	// A single day covers exactly that session.
	start, end = dayRange(from, from)
	assert.Equal(t, market.Day(2025, 3, 3), start)
	assert.Equal(t, market.Day(2025, 3, 4), end)
}

func TestOpenRequiresAddr(t *testing.T) {
	t.Parallel()

	_, err := Open(Config{})
	assert.ErrorContains(t, err, "addr is required")
}
