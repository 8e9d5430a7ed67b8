package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/minitrade/analyzers"
	"github.com/rustyeddy/minitrade/backtest"
	"github.com/rustyeddy/minitrade/broker"
	"github.com/rustyeddy/minitrade/config"
	"github.com/rustyeddy/minitrade/feed"
	"github.com/rustyeddy/minitrade/journal"
	"github.com/rustyeddy/minitrade/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest over CSV bar data",
	Long: `Run replays one or more CSV bar files through a strategy.

Configuration comes from a config file (-c) or from flags. Flag values
override nothing: when a config file is given, the flags are ignored.

Example:
  minitrade run --data bars.csv --strategy sma-cross --param fast=10 --param slow=30`,
	RunE: runBacktest,
}

var (
	runConfigPath string
	runDataPaths  []string
	runStrategy   string
	runCash       float64
	runCommission float64
	runParams     []string
	runDBPath     string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to YAML/JSON config file")
	runCmd.Flags().StringSliceVarP(&runDataPaths, "data", "d", nil, "path to bar CSV (repeatable)")
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "sma-cross", "strategy name")
	runCmd.Flags().Float64Var(&runCash, "cash", 10_000, "starting cash")
	runCmd.Flags().Float64Var(&runCommission, "commission", 0.001, "commission rate per fill")
	runCmd.Flags().StringArrayVarP(&runParams, "param", "p", nil, "strategy parameter key=value (repeatable)")
	runCmd.Flags().StringVar(&runDBPath, "db", "", "journal trades and equity to this SQLite file")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig()
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	engine, cleanup, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	factory, err := strategies.Get(cfg.Strategy.Name)
	if err != nil {
		return err
	}
	engine.AddStrategy(factory, backtest.Params(cfg.Strategy.Params))

	engine.AddAnalyzer(analyzers.NewReturns)
	engine.AddAnalyzer(analyzers.NewSharpe)
	engine.AddAnalyzer(analyzers.NewDrawdown)
	engine.AddAnalyzer(analyzers.NewTrades)

	strats, err := engine.Run()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	bk := engine.Broker()
	fmt.Printf("Backtest complete\n")
	fmt.Printf("  Strategy: %s\n", cfg.Strategy.Name)
	fmt.Printf("  Bars:     %d\n", len(engine.EquityCurve()))
	fmt.Printf("  Cash:     %.2f\n", bk.Cash())
	fmt.Printf("  Equity:   %.2f\n", bk.Value())

	for _, s := range strats {
		if b, ok := s.(interface{ Trades() []broker.Trade }); ok {
			fmt.Printf("  Trades:   %d\n", len(b.Trades()))
		}
		printAnalysis(s)
	}

	return nil
}

func printAnalysis(s backtest.Strategy) {
	withResults, ok := s.(interface {
		AnalyzerResults() map[string]map[string]float64
	})
	if !ok {
		return
	}

	results := withResults.AnalyzerResults()
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("  %s:\n", name)
		keys := make([]string, 0, len(results[name]))
		for k := range results[name] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("    %-22s %.4f\n", k, results[name][k])
		}
	}
}

// effectiveConfig resolves the run configuration: config file if given,
// otherwise flags.
func effectiveConfig() (*config.Config, error) {
	if runConfigPath != "" {
		return config.LoadFromFile(runConfigPath)
	}

	if len(runDataPaths) == 0 {
		return nil, fmt.Errorf("either --config or --data is required")
	}

	cfg := &config.Config{
		Broker:   config.BrokerConfig{Cash: runCash, Commission: runCommission},
		Strategy: config.StrategyConfig{Name: runStrategy, Params: parseParams(runParams)},
	}
	for _, p := range runDataPaths {
		cfg.Data = append(cfg.Data, config.DataConfig{Path: p})
	}
	if runDBPath != "" {
		cfg.Journal = config.JournalConfig{Type: "sqlite", DBPath: runDBPath}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// parseParams turns key=value flags into strategy params, converting values
// to int or float64 when they parse as numbers.
func parseParams(kvs []string) map[string]any {
	if len(kvs) == 0 {
		return nil
	}
	out := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(value); err == nil {
			out[key] = n
		} else if f, err := strconv.ParseFloat(value, 64); err == nil {
			out[key] = f
		} else {
			out[key] = value
		}
	}
	return out
}

// buildEngine wires feeds and journal from config into a fresh engine. The
// returned cleanup closes the journal.
func buildEngine(cfg *config.Config, log *zap.Logger) (*backtest.Engine, func(), error) {
	engine := backtest.New()
	engine.SetCash(cfg.Broker.Cash)
	engine.SetCommission(cfg.Broker.Commission)
	engine.SetLogger(log)

	for _, d := range cfg.Data {
		f, err := feed.FromCSV(d.Name, d.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", d.Path, err)
		}
		engine.AddData(f, d.Name)
	}

	cleanup := func() {}
	switch cfg.Journal.Type {
	case "sqlite":
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open journal: %w", err)
		}
		engine.SetJournal(j)
		cleanup = func() { j.Close() }
	case "csv":
		j, err := journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open journal: %w", err)
		}
		engine.SetJournal(j)
		cleanup = func() { j.Close() }
	}

	return engine, cleanup, nil
}
