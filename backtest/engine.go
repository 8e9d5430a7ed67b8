// Package backtest replays historical bars through strategies against a
// simulated broker. One Engine run is strictly sequential: every bar is
// advanced, matched, dispatched, and recorded before the next one starts.
package backtest

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/minitrade/broker"
	"github.com/rustyeddy/minitrade/feed"
	"github.com/rustyeddy/minitrade/journal"
	"github.com/rustyeddy/minitrade/market"
)

var (
	// ErrNoData reports a run attempted with no registered data feed.
	ErrNoData = errors.New("backtest: no data feed registered")

	// ErrNoStrategy reports a run attempted with no registered strategy.
	ErrNoStrategy = errors.New("backtest: no strategy registered")

	// ErrNoGrid reports Optimize called without an optimization grid.
	ErrNoGrid = errors.New("backtest: no optimization grid registered")

	// ErrGridSet reports Run called while an optimization grid is
	// registered; grid and plain registration are mutually exclusive.
	ErrGridSet = errors.New("backtest: optimization grid registered, use Optimize")
)

// StrategyFactory builds a fresh strategy instance for one run. The engine
// calls it once per run (or once per optimization combination), so factories
// must not share mutable state between the instances they produce.
type StrategyFactory func(p Params) Strategy

// AnalyzerFactory builds a fresh analyzer; one set is built per strategy.
type AnalyzerFactory func() Analyzer

// SizerFactory builds the sizer given to each strategy instance.
type SizerFactory func() Sizer

type stratSpec struct {
	factory StrategyFactory
	params  Params
}

type gridSpec struct {
	factory StrategyFactory
	grid    Grid
}

// Engine wires feeds, strategies, sizer, and analyzers together and runs
// the bar loop. Configuration (cash, commission) is copied into a fresh
// Broker at the start of every run.
type Engine struct {
	cash       float64
	commission float64

	feeds     []*feed.Feed
	specs     []stratSpec
	grid      *gridSpec
	sizer     SizerFactory
	analyzers []AnalyzerFactory

	jrnl journal.Journal
	log  *zap.Logger

	bk    *broker.Broker
	curve []EquityPoint
}

// New returns an engine with the defaults the original tool ships: 10000
// cash and a 0.1% commission rate.
func New() *Engine {
	return &Engine{
		cash:       10000,
		commission: 0.001,
		log:        zap.NewNop(),
	}
}

func (e *Engine) SetCash(amount float64)     { e.cash = amount }
func (e *Engine) SetCommission(rate float64) { e.commission = rate }

// SetLogger installs a structured logger; the default discards everything.
func (e *Engine) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	e.log = log
}

// SetJournal persists trades and equity snapshots of plain runs through j.
// Optimization combinations are not journaled.
func (e *Engine) SetJournal(j journal.Journal) { e.jrnl = j }

// AddData registers a feed. An empty name assigns "dataN" by registration
// index. All feeds are assumed index-aligned on an identical calendar; the
// engine does not resynchronize by timestamp.
func (e *Engine) AddData(f *feed.Feed, name string) *feed.Feed {
	if name == "" {
		name = fmt.Sprintf("data%d", len(e.feeds))
	}
	f.SetName(name)
	e.feeds = append(e.feeds, f)
	return f
}

// AddStrategy registers a strategy factory with fixed parameters. It clears
// any previously registered optimization grid.
func (e *Engine) AddStrategy(factory StrategyFactory, params Params) {
	e.specs = append(e.specs, stratSpec{factory: factory, params: params})
	e.grid = nil
}

// OptStrategy registers a parameter grid for one strategy, replacing any
// plain strategy registrations.
func (e *Engine) OptStrategy(factory StrategyFactory, grid Grid) {
	e.grid = &gridSpec{factory: factory, grid: grid}
	e.specs = nil
}

// AddSizer sets the sizer factory for all strategy instances. The default
// is FixedSizer{Stake: 1}.
func (e *Engine) AddSizer(factory SizerFactory) { e.sizer = factory }

// AddAnalyzer registers an analyzer factory; a fresh instance runs against
// each strategy after the bar loop finishes.
func (e *Engine) AddAnalyzer(factory AnalyzerFactory) {
	e.analyzers = append(e.analyzers, factory)
}

// Broker exposes the broker of the last (or current) plain run.
func (e *Engine) Broker() *broker.Broker { return e.bk }

// EquityCurve returns the recorded (timestamp, equity) sequence of the last
// plain run, one entry per processed bar.
func (e *Engine) EquityCurve() []EquityPoint {
	out := make([]EquityPoint, len(e.curve))
	copy(out, e.curve)
	return out
}

// Run executes a single backtest and returns the strategy instances so the
// caller can inspect their state, history, and analyzer results.
func (e *Engine) Run() ([]Strategy, error) {
	if e.grid != nil {
		return nil, ErrGridSet
	}
	if len(e.feeds) == 0 {
		return nil, ErrNoData
	}
	if len(e.specs) == 0 {
		return nil, ErrNoStrategy
	}

	bk := broker.New(e.cash, e.commission)
	e.bk = bk
	sizer := e.newSizer()

	strats := make([]Strategy, 0, len(e.specs))
	hooks := make([]runtimeHooks, 0, len(e.specs))
	for _, spec := range e.specs {
		s, h, err := buildStrategy(spec.factory, spec.params, e.feeds, bk, sizer)
		if err != nil {
			return nil, err
		}
		strats = append(strats, s)
		hooks = append(hooks, h)
	}

	curve, err := e.runLoop(e.feeds, strats, hooks, bk, e.jrnl)
	if err != nil {
		return nil, err
	}
	e.curve = curve
	e.runAnalyzers(strats, hooks, curve)

	e.log.Info("backtest complete",
		zap.Int("bars", len(curve)),
		zap.Float64("final_equity", bk.Value()))

	return strats, nil
}

func (e *Engine) newSizer() Sizer {
	if e.sizer != nil {
		return e.sizer()
	}
	return FixedSizer{Stake: 1}
}

func buildStrategy(factory StrategyFactory, params Params, datas []*feed.Feed, bk *broker.Broker, sizer Sizer) (Strategy, runtimeHooks, error) {
	s := factory(params)
	h, ok := s.(runtimeHooks)
	if !ok {
		return nil, nil, fmt.Errorf("backtest: strategy %T must embed backtest.Base", s)
	}
	h.bind(datas, bk, sizer)
	s.Init()
	return s, h, nil
}

// runLoop drives one complete bar replay: advance feeds, update indicators,
// match pending orders, dispatch events, invoke decisions past warmup, and
// record equity. Feeds, strategies, and broker belong exclusively to this
// run.
func (e *Engine) runLoop(feeds []*feed.Feed, strats []Strategy, hooks []runtimeHooks, bk *broker.Broker, jrnl journal.Journal) ([]EquityPoint, error) {
	bars := feeds[0].Len()
	for _, f := range feeds[1:] {
		if f.Len() < bars {
			bars = f.Len()
		}
	}

	warmup := 0
	for _, h := range hooks {
		if w := h.maxWarmup(); w > warmup {
			warmup = w
		}
	}
	if warmup < 1 {
		warmup = 1
	}

	e.log.Debug("run loop starting",
		zap.Int("bars", bars),
		zap.Int("warmup", warmup),
		zap.Int("strategies", len(strats)))

	for _, s := range strats {
		s.Start()
	}

	curve := make([]EquityPoint, 0, bars)

	for i := 0; i < bars; i++ {
		for _, f := range feeds {
			f.Advance()
		}

		// The primary feed owns the authoritative timestamp.
		now := feeds[0].Time(0)

		for _, h := range hooks {
			h.updateIndicators()
		}

		snapshot := make(map[string]market.Candle, len(feeds))
		for _, f := range feeds {
			snapshot[f.Name()] = f.Candle()
		}

		bk.ExecuteMatching(snapshot, now)
		if err := e.dispatch(bk, strats, hooks, jrnl); err != nil {
			return nil, err
		}

		if i+1 >= warmup {
			for _, s := range strats {
				s.Next()
			}
			// Orders submitted during Next are accepted (or rejected)
			// immediately; surface those events in the same bar.
			if err := e.dispatch(bk, strats, hooks, jrnl); err != nil {
				return nil, err
			}
		}

		point := EquityPoint{Time: now, Equity: bk.Value()}
		curve = append(curve, point)
		if jrnl != nil {
			err := jrnl.RecordEquity(journal.EquitySnapshot{
				Time:   now,
				Cash:   bk.Cash(),
				Equity: bk.Value(),
			})
			if err != nil {
				return nil, fmt.Errorf("backtest: record equity: %w", err)
			}
		}
	}

	for _, s := range strats {
		s.Stop()
	}

	return curve, nil
}

// dispatch broadcasts every pending broker event to every running strategy,
// preserving the order the broker generated them.
func (e *Engine) dispatch(bk *broker.Broker, strats []Strategy, hooks []runtimeHooks, jrnl journal.Journal) error {
	orders := bk.ConsumeOrderEvents()
	trades := bk.ConsumeTradeEvents()
	if len(orders) == 0 && len(trades) == 0 {
		return nil
	}

	for _, o := range orders {
		e.log.Debug("order update",
			zap.Int64("ref", o.Ref),
			zap.String("symbol", o.Symbol),
			zap.Stringer("status", o.Status),
			zap.Float64("exec_price", o.ExecPrice))
	}

	if jrnl != nil {
		for _, t := range trades {
			err := jrnl.RecordTrade(journal.TradeRecord{
				Symbol:    t.Symbol,
				Size:      t.Size,
				PnL:       t.PnL,
				EntryTime: t.EntryTime,
				ExitTime:  t.ExitTime,
			})
			if err != nil {
				return fmt.Errorf("backtest: record trade: %w", err)
			}
		}
	}

	for i, s := range strats {
		for _, o := range orders {
			hooks[i].recordOrder(o)
			s.NotifyOrder(o)
		}
		for _, t := range trades {
			hooks[i].recordTrade(t)
			s.NotifyTrade(t)
		}
	}

	return nil
}

func (e *Engine) runAnalyzers(strats []Strategy, hooks []runtimeHooks, curve []EquityPoint) {
	if len(e.analyzers) == 0 {
		return
	}
	for i := range strats {
		_, trades := hooks[i].history()
		m := make(map[string]Analyzer, len(e.analyzers))
		for _, factory := range e.analyzers {
			a := factory()
			a.Run(curve, trades)
			m[a.Name()] = a
		}
		hooks[i].setAnalyzers(m)
	}
}
