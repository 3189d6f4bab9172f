package sim

import (
	"sort"
	"time"
)

// Position is one open lot, owned by its Account until closed.
type Position struct {
	ID       int
	Code     string
	Volume   float64 // shares; immutable for the life of the lot
	BuyDate  time.Time
	BuyPrice float64
}

// ClosedTrade is the completed record of a lot. One open-then-close cycle
// per id: the record is seeded at buy time and completed at sell time.
type ClosedTrade struct {
	ID        int
	Code      string
	Volume    float64
	BuyDate   time.Time
	BuyPrice  float64
	SellDate  time.Time
	SellPrice float64
	Profit    float64
	ROI       float64
	Closed    bool
}

// Account is the portfolio ledger: cash balance, open lots keyed by id, and
// the per-id trade history. Like the data cache it is single-owner state;
// concurrent backtests need one Account each.
type Account struct {
	Balance float64

	nextID  int
	open    map[int]*Position
	history map[int]*ClosedTrade
}

// NewAccount returns an empty ledger with the given starting cash.
func NewAccount(balance float64) *Account {
	return &Account{
		Balance: balance,
		open:    make(map[int]*Position),
		history: make(map[int]*ClosedTrade),
	}
}

// PositionCount returns the number of open lots.
func (a *Account) PositionCount() int { return len(a.open) }

// HasPosition reports whether any open lot holds code.
func (a *Account) HasPosition(code string) bool {
	for _, p := range a.open {
		if p.Code == code {
			return true
		}
	}
	return false
}

// Position returns the open lot with the given id.
func (a *Account) Position(id int) (Position, bool) {
	p, ok := a.open[id]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// FirstOpen returns code's earliest open lot (lowest id, FIFO).
func (a *Account) FirstOpen(code string) (Position, bool) {
	var first *Position
	for _, p := range a.open {
		if p.Code != code {
			continue
		}
		if first == nil || p.ID < first.ID {
			first = p
		}
	}
	if first == nil {
		return Position{}, false
	}
	return *first, true
}

// OpenPositions returns all open lots ordered by id.
func (a *Account) OpenPositions() []Position {
	out := make([]Position, 0, len(a.open))
	for _, p := range a.open {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Trades returns the closed trades ordered by id.
func (a *Account) Trades() []ClosedTrade {
	out := make([]ClosedTrade, 0, len(a.history))
	for _, rec := range a.history {
		if rec.Closed {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MarketValue prices the open lots with quote, falling back to a lot's buy
// price when quote has no entry for its code.
func (a *Account) MarketValue(quote func(code string) (float64, bool)) float64 {
	total := 0.0
	for _, p := range a.open {
		price := p.BuyPrice
		if quote != nil {
			if q, ok := quote(p.Code); ok {
				price = q
			}
		}
		total += price * p.Volume
	}
	return total
}
