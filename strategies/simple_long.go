package strategies

import (
	"context"
	"math"

	"github.com/twquant/trader/market"
)

// SimpleLongConfig parameterizes the built-in long-only momentum strategy.
type SimpleLongConfig struct {
	// Open when the day's gain vs the prior close reaches this percent
	// and at least MinVolumeLots board lots traded.
	MinChangePct  float64
	MinVolumeLots float64

	// Close after MaxHoldingDays calendar days or at ProfitTargetPct
	// gain; stop out at StopLossPct loss.
	MaxHoldingDays  int
	ProfitTargetPct float64
	StopLossPct     float64

	// MaxHoldings caps the number of simultaneously held codes; zero
	// means no cap.
	MaxHoldings int
}

// DefaultSimpleLongConfig mirrors the parameters the strategy ships with.
func DefaultSimpleLongConfig() SimpleLongConfig {
	return SimpleLongConfig{
		MinChangePct:    8.0,
		MinVolumeLots:   1000,
		MaxHoldingDays:  5,
		ProfitTargetPct: 10.0,
		StopLossPct:     5.0,
		MaxHoldings:     10,
	}
}

// SimpleLong buys strong up-moves on volume and exits on time, target, or
// stop.
type SimpleLong struct {
	cfg SimpleLongConfig
}

func NewSimpleLong(cfg SimpleLongConfig) *SimpleLong {
	return &SimpleLong{cfg: cfg}
}

func (s *SimpleLong) Name() string { return "SimpleLong" }

func (s *SimpleLong) CheckOpenSignal(ctx context.Context, env Env, quotes []market.Quote) ([]market.Order, error) {
	slots := len(quotes)
	if s.cfg.MaxHoldings > 0 {
		slots = s.cfg.MaxHoldings - env.Account.PositionCount()
		if slots <= 0 {
			return nil, nil
		}
	}

	// Prior session's closes for the day-over-day change.
	closes, err := env.Data.Get(ctx, "price", "close", env.Date, 2)
	if err != nil {
		return nil, err
	}
	dates := closes.Dates()
	if len(dates) < 2 {
		return nil, nil
	}
	prevDay := dates[len(dates)-2]

	var picks []market.Quote
	for _, q := range quotes {
		if env.Account.HasPosition(q.Code) {
			continue
		}
		prevClose, ok := closes.Value(prevDay, q.Code)
		if !ok || prevClose == 0 {
			continue
		}
		changePct := (q.Close/prevClose - 1) * 100
		if changePct >= s.cfg.MinChangePct && q.Volume >= s.cfg.MinVolumeLots*market.LotSize {
			picks = append(picks, q)
		}
	}
	if len(picks) > slots {
		picks = picks[:slots]
	}
	return s.sizeOrders(env, picks), nil
}

func (s *SimpleLong) CheckCloseSignal(ctx context.Context, env Env, quotes []market.Quote) ([]market.Order, error) {
	var orders []market.Order
	for _, q := range quotes {
		pos, ok := env.Account.FirstOpen(q.Code)
		if !ok {
			continue
		}

		holdingDays := int(q.Date.Sub(pos.BuyDate).Hours() / 24)
		profitPct := (q.Close/pos.BuyPrice - 1) * 100

		reason := ""
		switch {
		case holdingDays >= s.cfg.MaxHoldingDays:
			reason = "MaxHold"
		case profitPct >= s.cfg.ProfitTargetPct:
			reason = "TakeProfit"
		}
		if reason == "" {
			continue
		}
		orders = append(orders, market.Order{
			Code:       q.Code,
			Action:     market.Sell,
			Price:      q.Close,
			Volume:     pos.Volume,
			Date:       q.Date,
			PositionID: pos.ID,
			Reason:     reason,
		})
	}
	return orders, nil
}

func (s *SimpleLong) CheckStopLossSignal(ctx context.Context, env Env, quotes []market.Quote) ([]market.Order, error) {
	var orders []market.Order
	for _, q := range quotes {
		pos, ok := env.Account.FirstOpen(q.Code)
		if !ok {
			continue
		}
		lossPct := (q.Close/pos.BuyPrice - 1) * 100
		if lossPct > -s.cfg.StopLossPct {
			continue
		}
		orders = append(orders, market.Order{
			Code:       q.Code,
			Action:     market.Sell,
			Price:      q.Close,
			Volume:     pos.Volume,
			Date:       q.Date,
			PositionID: pos.ID,
			Reason:     "StopLoss",
		})
	}
	return orders, nil
}

// sizeOrders splits the available balance evenly across the picks, rounding
// each allocation down to whole board lots.
func (s *SimpleLong) sizeOrders(env Env, picks []market.Quote) []market.Order {
	if len(picks) == 0 {
		return nil
	}
	budget := env.Account.Balance / float64(len(picks))

	var orders []market.Order
	for _, q := range picks {
		if q.Close <= 0 {
			continue
		}
		lots := math.Floor(budget / (q.Close * market.LotSize))
		if lots < 1 {
			continue
		}
		orders = append(orders, market.Order{
			Code:   q.Code,
			Action: market.Buy,
			Price:  q.Close,
			Volume: lots * market.LotSize,
			Date:   q.Date,
			Reason: "Momentum",
		})
	}
	return orders
}
