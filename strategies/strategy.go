// Package strategies defines the strategy contract the backtest driver
// calls, and the built-in strategy implementations.
package strategies

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/twquant/trader/data"
	"github.com/twquant/trader/market"
	"github.com/twquant/trader/sim"
)

// Env bundles what a strategy may consult on one trading day. Strategies
// read the account and the data cache; only the executor mutates them.
type Env struct {
	Date    time.Time
	Data    *data.Cache
	Account *sim.Account
}

// Strategy turns the day's quotes into order intents. Sell intents must
// name the open lot they close via Order.PositionID; which lot to close for
// a code is the strategy's choice, not the executor's.
type Strategy interface {
	Name() string

	// CheckOpenSignal proposes buys from quotes of codes not yet held.
	CheckOpenSignal(ctx context.Context, env Env, quotes []market.Quote) ([]market.Order, error)

	// CheckCloseSignal proposes ordinary closes of held codes.
	CheckCloseSignal(ctx context.Context, env Env, quotes []market.Quote) ([]market.Order, error)

	// CheckStopLossSignal proposes forced closes; the driver runs it
	// before CheckCloseSignal.
	CheckStopLossSignal(ctx context.Context, env Env, quotes []market.Quote) ([]market.Order, error)
}

// ByName constructs a built-in strategy from its registry name.
func ByName(name string, cfg SimpleLongConfig) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil
	case "simple-long", "simplelong":
		return NewSimpleLong(cfg), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, simple-long)", name)
	}
}

// Noop emits no orders; a baseline for plumbing tests.
type Noop struct{}

func (Noop) Name() string { return "Noop" }

func (Noop) CheckOpenSignal(context.Context, Env, []market.Quote) ([]market.Order, error) {
	return nil, nil
}

func (Noop) CheckCloseSignal(context.Context, Env, []market.Quote) ([]market.Order, error) {
	return nil, nil
}

func (Noop) CheckStopLossSignal(context.Context, Env, []market.Quote) ([]market.Order, error) {
	return nil, nil
}
