package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"portfolio-hedger/internal/comparison"
	"portfolio-hedger/internal/logging"
	"portfolio-hedger/internal/marketdata"
	"portfolio-hedger/internal/models"
	"portfolio-hedger/internal/simulation"
	"portfolio-hedger/pkg/utils"
)

func newCompareCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare protective puts against a leveraged inverse fund",
		Long: `Simulate hypothetical market drops and compare the two hedges.

Both instruments commit the same capital: the cost of the sized put
position. The inverse fund is compounded day by day along the chosen
path, so volatility drag shows up in the numbers. Put exits are valued
at a stressed implied volatility that scales with the drop.`,
		Example: `  hedger compare --snapshot quotes.json --scenarios -5,-10,-20,-40
  hedger compare --snapshot quotes.json --scenarios -10,-30 --days 60 --path noisy --seed 42
  hedger compare --snapshot quotes.json --path noisy --price-history closes.csv
  hedger compare --snapshot quotes.json --vol-history vix.csv --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			portfolioValue, _ := cmd.Flags().GetFloat64("portfolio-value")
			scenariosCSV, _ := cmd.Flags().GetString("scenarios")
			days, _ := cmd.Flags().GetInt("days")
			snapshotPath, _ := cmd.Flags().GetString("snapshot")
			volHistoryPath, _ := cmd.Flags().GetString("vol-history")
			priceHistoryPath, _ := cmd.Flags().GetString("price-history")
			pathName, _ := cmd.Flags().GetString("path")
			seed, _ := cmd.Flags().GetInt64("seed")
			dailyVol, _ := cmd.Flags().GetFloat64("daily-vol")

			asOf, err := asOfDate(cmd)
			if err != nil {
				output.Error("Invalid --as-of date. Use YYYY-MM-DD")
				return err
			}

			scenarios, err := parseScenarios(scenariosCSV)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			snap, err := marketdata.LoadSnapshot(snapshotPath)
			if err != nil {
				output.Error("Loading snapshot: %v", err)
				return err
			}

			// A supplied price history calibrates the noise scale from
			// realized returns; an explicit --daily-vol still wins.
			realizedVol := -1.0
			if priceHistoryPath != "" {
				prices, err := marketdata.LoadPriceHistory(priceHistoryPath)
				if err != nil {
					output.Error("Loading price history: %v", err)
					return err
				}
				returns := marketdata.DailyReturns(prices)
				realizedVol = simulation.AnnualizedVolatility(returns)
				if !cmd.Flags().Changed("daily-vol") {
					dailyVol = simulation.DailyVolatility(returns)
				}
			}

			var path simulation.PathStrategy = simulation.LinearPath{}
			if pathName == "noisy" {
				path = simulation.NoisyPath{Seed: seed, DailyVol: dailyVol}
			}

			stress := simulation.DefaultStressModel(app.Config.Market.VolIndexBase)
			if volHistoryPath != "" {
				history, err := marketdata.LoadVolHistory(volHistoryPath)
				if err != nil {
					output.Error("Loading volatility history: %v", err)
					return err
				}
				stress, err = stress.Calibrate(history, "calibrated")
				if err != nil {
					output.Error("Calibrating stress model: %v", err)
					return err
				}
			}

			inputs, err := comparison.BuildInputs(app.Config.Hedging, app.Config.Market,
				snap, portfolioValue, days, path, stress, asOf)
			if err != nil {
				output.Error("Building comparison inputs: %v", err)
				return err
			}

			report, err := comparison.Compare(app.Config.Hedging, scenarios, inputs)
			if err != nil {
				output.Error("Comparison failed: %v", err)
				return err
			}
			logging.LogComparison(app.Logger, len(report.Results),
				report.PathStrategy, report.StressModel)

			if output.IsJSON() {
				return output.JSON(report)
			}

			displayComparison(output, app, inputs, report)
			if realizedVol >= 0 {
				output.Dim("  Realized vol (annualized) from price history: %.1f%%", realizedVol*100)
			}
			return nil
		},
	}

	cmd.Flags().Float64("portfolio-value", 0, "Portfolio value in dollars (default from config)")
	cmd.Flags().String("scenarios", "-5,-10,-20,-40", "Comma-separated drop percentages")
	cmd.Flags().Int("days", 0, "Days over which each drop unfolds (default from config)")
	cmd.Flags().String("snapshot", "", "Path to market snapshot JSON")
	cmd.Flags().String("vol-history", "", "Volatility index history CSV for stress-model calibration")
	cmd.Flags().String("price-history", "", "Daily closing-price history CSV; derives the noisy-path scale from realized returns")
	cmd.Flags().String("path", "linear", "Index path shape: linear or noisy")
	cmd.Flags().Int64("seed", 1, "Random seed for the noisy path")
	cmd.Flags().Float64("daily-vol", 0.012, "Daily noise stddev for the noisy path (overrides --price-history)")
	cmd.Flags().String("as-of", "", "Valuation date (YYYY-MM-DD, default today)")
	cmd.MarkFlagRequired("snapshot")

	return cmd
}

func parseScenarios(csv string) ([]float64, error) {
	var scenarios []float64
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario %q: use drop percentages like -10", part)
		}
		scenarios = append(scenarios, v)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios supplied")
	}
	return scenarios, nil
}

func displayComparison(output *Output, app *App, in comparison.Inputs, report models.ComparisonReport) {
	ticker := app.Config.Hedging.InverseTicker

	output.Bold("Hedge Comparison - %s %s %s vs %s (%.0fx inverse)",
		in.PutSpec.Underlying, utils.FormatStrike(in.PutSpec.Strike)+"P",
		utils.FormatDate(in.PutSpec.Expiry), ticker, in.Leverage)
	output.Printf("  Capital: %s each  (%d contracts @ %s)  Horizon: %d days  Path: %s\n\n",
		utils.FormatUSD(in.PutCapital), in.Contracts,
		utils.FormatUSD(in.EntryPremium), in.Days, report.PathStrategy)

	table := NewTable(output, "Drop", ticker+" P/L", ticker+" Ret", "Drag",
		"Put P/L", "Put Ret", "Stressed IV", "Winner")
	for _, r := range report.Results {
		if r.Invalid {
			table.AddRow(fmt.Sprintf("%.1f%%", r.DropPercent),
				output.Yellow("invalid"), "-", "-", "-", "-", "-", r.Reason)
			continue
		}
		table.AddRow(
			fmt.Sprintf("%.1f%%", r.DropPercent),
			output.PnL(utils.FormatPnL(r.FundPL), r.FundPL),
			utils.FormatPercent(r.FundReturnPct),
			utils.FormatPercent(r.FundDragPct),
			output.PnL(utils.FormatPnL(r.PutPL), r.PutPL),
			utils.FormatPercent(r.PutReturnPct),
			fmt.Sprintf("%.1f%%", r.StressedIV*100),
			winnerLabel(output, r.Winner, ticker),
		)
	}
	table.Render()

	output.Println()
	output.Printf("  %s breakeven drop: %s\n", ticker, breakevenLabel(report.FundBreakevenPct))
	output.Printf("  Put breakeven drop:  %s\n", breakevenLabel(report.PutBreakevenPct))
	output.Println()
	output.Dim("  %s", report.DecayNote)
	output.Disclaimer()
}

func winnerLabel(output *Output, winner, ticker string) string {
	switch winner {
	case models.WinnerSQQQ:
		return output.Green(ticker)
	case models.WinnerPuts:
		return output.Green("PUTS")
	default:
		return "tie"
	}
}

func breakevenLabel(pct float64) string {
	if pct < 0 {
		return "none within -95%"
	}
	if pct == 0 {
		return "immediate"
	}
	return fmt.Sprintf("-%.2f%%", pct)
}
