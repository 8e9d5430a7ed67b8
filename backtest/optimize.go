package backtest

import (
	"runtime"
	"sort"

	"github.com/alitto/pond"
	"go.uber.org/zap"

	"github.com/rustyeddy/minitrade/broker"
	"github.com/rustyeddy/minitrade/feed"
)

// OptResult is the outcome of one grid combination: the parameters, the
// final account value, and the finished strategy instance for inspection.
type OptResult struct {
	Params      Params
	FinalEquity float64
	Strategy    Strategy
}

// Optimize runs every combination of the registered grid, each against its
// own cloned feeds and fresh broker, and returns results sorted by final
// equity, highest first. Equal-equity results keep grid generation order.
// Combinations run concurrently; each one is internally sequential and
// shares nothing with its siblings.
func (e *Engine) Optimize() ([]OptResult, error) {
	if len(e.feeds) == 0 {
		return nil, ErrNoData
	}
	if e.grid == nil {
		return nil, ErrNoGrid
	}

	combos := e.grid.grid.combinations()
	results := make([]OptResult, len(combos))
	errs := make([]error, len(combos))

	workers := runtime.NumCPU()
	if workers > len(combos) {
		workers = len(combos)
	}
	if workers < 1 {
		workers = 1
	}

	e.log.Info("optimization starting",
		zap.Int("combinations", len(combos)),
		zap.Int("workers", workers))

	pool := pond.New(workers, len(combos))
	group := pool.Group()
	for i := range combos {
		i := i
		group.Submit(func() {
			results[i], errs[i] = e.runCombination(combos[i])
		})
	}
	group.Wait()
	pool.StopAndWait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalEquity > results[j].FinalEquity
	})

	e.log.Info("optimization complete",
		zap.Float64("best_equity", results[0].FinalEquity))

	return results, nil
}

func (e *Engine) runCombination(params Params) (OptResult, error) {
	feeds := make([]*feed.Feed, len(e.feeds))
	for i, f := range e.feeds {
		feeds[i] = f.Clone()
	}

	bk := broker.New(e.cash, e.commission)
	strat, hooks, err := buildStrategy(e.grid.factory, params, feeds, bk, e.newSizer())
	if err != nil {
		return OptResult{}, err
	}

	curve, err := e.runLoop(feeds, []Strategy{strat}, []runtimeHooks{hooks}, bk, nil)
	if err != nil {
		return OptResult{}, err
	}
	e.runAnalyzers([]Strategy{strat}, []runtimeHooks{hooks}, curve)

	return OptResult{Params: params, FinalEquity: bk.Value(), Strategy: strat}, nil
}
