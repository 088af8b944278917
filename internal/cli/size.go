package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"portfolio-hedger/internal/logging"
	"portfolio-hedger/internal/marketdata"
	"portfolio-hedger/internal/models"
	"portfolio-hedger/internal/sizing"
	"portfolio-hedger/pkg/utils"
)

func newSizeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size",
		Short: "Size a protective put hedge for a portfolio",
		Long: `Compute how many put contracts to hold for a portfolio value.

Allocation follows the configured contracts-per-$50k ratio, split across
the configured underlyings with any remainder on the first. Premium
estimates need a market snapshot (--snapshot); without one the contract
counts are still produced.`,
		Example: `  hedger size --portfolio-value 200000 --snapshot quotes.json
  hedger size --portfolio-value 350000 --dte 60 --underlyings QQQ,SPY --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			portfolioValue, _ := cmd.Flags().GetFloat64("portfolio-value")
			dte, _ := cmd.Flags().GetInt("dte")
			budget, _ := cmd.Flags().GetFloat64("budget")
			underlyingsCSV, _ := cmd.Flags().GetString("underlyings")
			snapshotPath, _ := cmd.Flags().GetString("snapshot")

			asOf, err := asOfDate(cmd)
			if err != nil {
				output.Error("Invalid --as-of date. Use YYYY-MM-DD")
				return err
			}

			snap := &marketdata.Snapshot{AsOf: asOf}
			if snapshotPath != "" {
				snap, err = marketdata.LoadSnapshot(snapshotPath)
				if err != nil {
					output.Error("Loading snapshot: %v", err)
					return err
				}
			}

			opts := sizing.Options{
				PortfolioValue: portfolioValue,
				TargetDTE:      dte,
				MonthlyBudget:  budget,
			}
			if underlyingsCSV != "" {
				for _, u := range strings.Split(underlyingsCSV, ",") {
					if u = strings.TrimSpace(u); u != "" {
						opts.Underlyings = append(opts.Underlyings, strings.ToUpper(u))
					}
				}
			}

			result, warning, err := sizing.Size(app.Config.Hedging, app.Config.Market, snap, asOf, opts)
			if err != nil {
				output.Error("Sizing failed: %v", err)
				return err
			}
			logging.LogSizing(app.Logger, result.PortfolioValue, result.TotalContracts,
				result.TotalMonthlyCost, result.BudgetUtilization)

			if output.IsJSON() {
				payload := map[string]interface{}{"result": result}
				if warning != nil {
					payload["budget_warning"] = warning
				}
				return output.JSON(payload)
			}

			displaySizing(output, result)
			if warning != nil {
				output.Println()
				output.Warning("%v", warning)
			}
			output.Disclaimer()
			return nil
		},
	}

	cmd.Flags().Float64("portfolio-value", 0, "Portfolio value in dollars (default from config)")
	cmd.Flags().Int("dte", 0, "Target days to expiration (default from config)")
	cmd.Flags().Float64("budget", 0, "Monthly hedge budget override")
	cmd.Flags().String("underlyings", "", "Comma-separated underlyings override (e.g. QQQ,SPY)")
	cmd.Flags().String("snapshot", "", "Path to market snapshot JSON")
	cmd.Flags().String("as-of", "", "Valuation date (YYYY-MM-DD, default today)")

	return cmd
}

func displaySizing(output *Output, result models.HedgeSizeResult) {
	output.Bold("Hedge Sizing - Portfolio %s", utils.FormatUSD(result.PortfolioValue))
	output.Printf("  Total Contracts: %d\n\n", result.TotalContracts)

	if result.TotalContracts == 0 {
		output.Info("Portfolio too small for a full contract at the configured ratio.")
		return
	}

	table := NewTable(output, "Underlying", "Contracts", "Strike", "Expiry", "Premium", "Monthly Cost")
	for _, a := range result.Allocations {
		if a.NoData {
			table.AddRow(a.Underlying, fmt.Sprintf("%d", a.Contracts),
				"-", "-", output.Yellow("no data"), "-")
			continue
		}
		table.AddRow(
			a.Underlying,
			fmt.Sprintf("%d", a.Contracts),
			utils.FormatStrike(a.Spec.Strike),
			utils.FormatDate(a.Spec.Expiry),
			utils.FormatUSD(a.EstimatedPremium),
			utils.FormatUSD(a.MonthlyCost),
		)
	}
	table.Render()

	output.Println()
	output.Printf("  Total Monthly Cost: %s\n", utils.FormatUSD(result.TotalMonthlyCost))
	if result.MonthlyBudget > 0 {
		line := fmt.Sprintf("  Budget Utilization: %.1f%% of %s\n",
			result.BudgetUtilization, utils.FormatUSD(result.MonthlyBudget))
		if result.BudgetExceeded {
			output.Printf("%s", output.Red(line))
		} else {
			output.Printf("%s", line)
		}
	}

	for _, a := range result.Allocations {
		if a.NoData {
			output.Dim("  %s: %s", a.Underlying, a.Reason)
		}
	}
}
