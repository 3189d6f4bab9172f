package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrInsufficientFunds rejects a buy whose full cost exceeds the
	// account balance. The ledger is left untouched.
	ErrInsufficientFunds = errors.New("sim: insufficient funds")

	// ErrPositionNotFound rejects a sell naming an id with no open lot.
	ErrPositionNotFound = errors.New("sim: position not found")
)

// Executor applies buy and sell orders to an account using the cost model.
// Calls are applied strictly in order; a failed call leaves the account
// exactly as it was.
type Executor struct {
	log *slog.Logger
}

// NewExecutor returns an executor logging through log. A nil log uses the
// default logger.
func NewExecutor(log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{log: log}
}

// Buy opens a new lot of volume shares of code at price on date. The full
// cost (position value plus buy commission) is taken from the balance. The
// new lot's history record is seeded immediately and completed by Sell.
func (e *Executor) Buy(a *Account, code string, price, volume float64, date time.Time) (Position, error) {
	cost := price*volume + Commission(price, volume)
	if a.Balance < cost {
		e.log.Debug("buy rejected",
			"code", code, "cost", cost, "balance", a.Balance)
		return Position{}, fmt.Errorf("buy %s: %w", code, ErrInsufficientFunds)
	}

	a.nextID++
	p := &Position{
		ID:       a.nextID,
		Code:     code,
		Volume:   volume,
		BuyDate:  date,
		BuyPrice: price,
	}
	a.open[p.ID] = p
	a.history[p.ID] = &ClosedTrade{
		ID:       p.ID,
		Code:     code,
		Volume:   volume,
		BuyDate:  date,
		BuyPrice: price,
	}
	a.Balance -= cost

	e.log.Debug("buy filled",
		"id", p.ID, "code", code, "price", price, "volume", volume, "balance", a.Balance)
	return *p, nil
}

// Sell closes the open lot id at price on date, crediting the proceeds net
// of sell commission and transaction tax. The lot's original volume is
// authoritative: partial closes are unsupported, so the volume argument is
// accepted from the order intent but the lot's volume wins.
func (e *Executor) Sell(a *Account, id int, price, volume float64, date time.Time) (ClosedTrade, error) {
	p, ok := a.open[id]
	if !ok {
		return ClosedTrade{}, fmt.Errorf("sell lot %d: %w", id, ErrPositionNotFound)
	}
	rec := a.history[id]

	proceeds := price*p.Volume - Commission(price, p.Volume) - Tax(price, p.Volume)
	a.Balance += proceeds
	delete(a.open, id)

	rec.SellDate = date
	rec.SellPrice = price
	rec.Profit = NetProfit(p.BuyPrice, price, p.Volume)
	rec.ROI = ROI(p.BuyPrice, price, p.Volume)
	rec.Closed = true

	e.log.Debug("sell filled",
		"id", id, "code", p.Code, "price", price, "volume", p.Volume,
		"profit", rec.Profit, "roi", rec.ROI, "balance", a.Balance)
	return *rec, nil
}
