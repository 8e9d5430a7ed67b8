package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/minitrade/backtest"
	"github.com/rustyeddy/minitrade/config"
	"github.com/rustyeddy/minitrade/strategies"
)

var optCmd = &cobra.Command{
	Use:   "opt",
	Short: "Grid-search strategy parameters",
	Long: `Opt runs every combination of the given parameter grid and reports
the results ranked by final equity.

Grid values are comma-separated; each --grid flag sweeps one parameter.

Example:
  minitrade opt --data bars.csv --strategy sma-cross --grid fast=5,10,20 --grid slow=30,50`,
	RunE: runOptimize,
}

var (
	optDataPaths  []string
	optStrategy   string
	optCash       float64
	optCommission float64
	optGrid       []string
	optTop        int
)

func init() {
	rootCmd.AddCommand(optCmd)

	optCmd.Flags().StringSliceVarP(&optDataPaths, "data", "d", nil, "path to bar CSV (repeatable)")
	optCmd.Flags().StringVarP(&optStrategy, "strategy", "s", "sma-cross", "strategy name")
	optCmd.Flags().Float64Var(&optCash, "cash", 10_000, "starting cash")
	optCmd.Flags().Float64Var(&optCommission, "commission", 0.001, "commission rate per fill")
	optCmd.Flags().StringArrayVarP(&optGrid, "grid", "g", nil, "parameter sweep name=v1,v2,... (repeatable)")
	optCmd.Flags().IntVarP(&optTop, "top", "n", 10, "number of results to report")

	optCmd.MarkFlagRequired("data")
	optCmd.MarkFlagRequired("grid")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg := &config.Config{
		Broker:   config.BrokerConfig{Cash: optCash, Commission: optCommission},
		Strategy: config.StrategyConfig{Name: optStrategy},
	}
	for _, p := range optDataPaths {
		cfg.Data = append(cfg.Data, config.DataConfig{Path: p})
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	grid, err := parseGrid(optGrid)
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
	engine.OptStrategy(factory, grid)

	results, err := engine.Optimize()
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}

	top := optTop
	if top > len(results) {
		top = len(results)
	}

	fmt.Printf("Optimization complete: %d combinations\n\n", len(results))
	fmt.Printf("%-4s %-12s %s\n", "#", "EQUITY", "PARAMS")
	for i, r := range results[:top] {
		fmt.Printf("%-4d %-12.2f %s\n", i+1, r.FinalEquity, formatParams(grid, r.Params))
	}

	return nil
}

// parseGrid converts name=v1,v2,... flags into an ordered grid. Values are
// ints when every entry parses as one, floats when numeric, else strings.
func parseGrid(kvs []string) (backtest.Grid, error) {
	grid := make(backtest.Grid, 0, len(kvs))
	for _, kv := range kvs {
		name, list, ok := strings.Cut(kv, "=")
		if !ok || list == "" {
			return nil, fmt.Errorf("bad grid flag %q, want name=v1,v2,...", kv)
		}
		values := make([]any, 0, 4)
		for _, raw := range strings.Split(list, ",") {
			raw = strings.TrimSpace(raw)
			if n, err := strconv.Atoi(raw); err == nil {
				values = append(values, n)
			} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
				values = append(values, f)
			} else {
				values = append(values, raw)
			}
		}
		grid = append(grid, backtest.GridParam{Name: name, Values: values})
	}
	return grid, nil
}

// formatParams prints params in grid order so the report columns line up.
func formatParams(grid backtest.Grid, p backtest.Params) string {
	parts := make([]string, 0, len(grid))
	for _, gp := range grid {
		parts = append(parts, fmt.Sprintf("%s=%v", gp.Name, p[gp.Name]))
	}
	return strings.Join(parts, " ")
}
