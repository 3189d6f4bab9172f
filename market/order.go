package market

import "time"

// Action is the side of an order intent.
type Action string

const (
	Buy  Action = "Buy"
	Sell Action = "Sell"
)

// Order is an intent emitted by a strategy. The driver forwards buy intents
// to the executor with (code, price, volume) and sell intents with the lot
// id the strategy chose to close.
type Order struct {
	Code   string
	Action Action
	Price  float64
	Volume float64 // shares
	Date   time.Time

	// PositionID names the open lot a sell intent closes. Unused on buys.
	PositionID int

	// Reason tags why the order was emitted ("TakeProfit", "StopLoss", ...).
	Reason string
}

// Quote is one day's OHLCV observation for a single stock.
type Quote struct {
	Code   string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64 // shares
}

// Tick is a single intraday trade observation from the tick store.
type Tick struct {
	Code      string
	Time      time.Time
	Close     float64
	Volume    int64
	BidPrice  float64
	BidVolume int64
	AskPrice  float64
	AskVolume int64
	TickType  int8
}

// Quote converts a tick into a day-quote view for strategies that only
// consume close/volume.
func (t Tick) Quote() Quote {
	return Quote{
		Code:   t.Code,
		Date:   Midnight(t.Time),
		Close:  t.Close,
		Volume: float64(t.Volume),
	}
}
