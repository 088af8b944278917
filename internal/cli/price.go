package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"portfolio-hedger/internal/logging"
	"portfolio-hedger/internal/models"
	"portfolio-hedger/internal/pricing"
	"portfolio-hedger/pkg/utils"
)

// asOfDate resolves the valuation date: the --as-of flag when supplied,
// otherwise today. All downstream calls receive the date explicitly.
func asOfDate(cmd *cobra.Command) (time.Time, error) {
	asOfStr, _ := cmd.Flags().GetString("as-of")
	if asOfStr == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", asOfStr)
}

func newPriceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a protective put",
		Long: `Price a single put contract with the closed-form kernel.

Reports the theoretical price, intrinsic and time value, and the Greeks.
Deep in-the-money contracts near expiration are floored at intrinsic
value (American exercise).`,
		Example: `  hedger price --underlying QQQ --strike 450 --expiry 2026-06-19 --spot 500 --iv 0.25
  hedger price --underlying SPY --strike 540 --expiry 2026-03-20 --spot 600 --iv 0.18 --dividend 0.013 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			underlying, _ := cmd.Flags().GetString("underlying")
			strike, _ := cmd.Flags().GetFloat64("strike")
			expiryStr, _ := cmd.Flags().GetString("expiry")
			spot, _ := cmd.Flags().GetFloat64("spot")
			iv, _ := cmd.Flags().GetFloat64("iv")
			rate, _ := cmd.Flags().GetFloat64("rate")
			dividend, _ := cmd.Flags().GetFloat64("dividend")

			asOf, err := asOfDate(cmd)
			if err != nil {
				output.Error("Invalid --as-of date. Use YYYY-MM-DD")
				return err
			}

			expiry, err := time.Parse("2006-01-02", expiryStr)
			if err != nil {
				output.Error("Invalid expiry format. Use YYYY-MM-DD")
				return err
			}

			// An explicit --rate 0 is a valid input; only an unset flag
			// falls back to the configured rate.
			if !cmd.Flags().Changed("rate") {
				rate = app.Config.Market.RiskFreeRate
			}

			spec := models.OptionContractSpec{
				Underlying:    strings.ToUpper(underlying),
				Strike:        strike,
				Expiry:        expiry,
				Spot:          spot,
				IV:            iv,
				RiskFree:      rate,
				DividendYield: dividend,
			}

			result, err := pricing.Price(spec, asOf)
			if err != nil {
				output.Error("Pricing failed: %v", err)
				return err
			}
			logging.LogPricing(app.Logger, spec.Underlying, spec.Strike, spec.Spot,
				spec.IV, result.Price, result.FloorApplied)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"spec":   spec,
					"result": result,
				})
			}

			displayPricing(output, spec, result, asOf)
			return nil
		},
	}

	cmd.Flags().String("underlying", "", "Underlying ticker")
	cmd.Flags().Float64("strike", 0, "Strike price")
	cmd.Flags().String("expiry", "", "Expiration date (YYYY-MM-DD)")
	cmd.Flags().Float64("spot", 0, "Spot price at valuation")
	cmd.Flags().Float64("iv", 0, "Implied volatility (annualized decimal, e.g. 0.25)")
	cmd.Flags().Float64("rate", 0, "Risk-free rate (default from config)")
	cmd.Flags().Float64("dividend", 0, "Dividend yield (annualized decimal)")
	cmd.Flags().String("as-of", "", "Valuation date (YYYY-MM-DD, default today)")
	cmd.MarkFlagRequired("underlying")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("expiry")
	cmd.MarkFlagRequired("spot")
	cmd.MarkFlagRequired("iv")

	return cmd
}

func displayPricing(output *Output, spec models.OptionContractSpec,
	result models.PricingResult, asOf time.Time) {

	output.Bold("Put Valuation - %s %s %s", spec.Underlying,
		utils.FormatStrike(spec.Strike)+"P", utils.FormatDate(spec.Expiry))
	output.Printf("  Spot: %s  IV: %.1f%%  DTE: %d\n\n",
		utils.FormatUSD(spec.Spot), spec.IV*100, spec.DTE(asOf))

	output.Printf("  Price:      %s\n", utils.FormatUSD(result.Price))
	output.Printf("  Intrinsic:  %s\n", utils.FormatUSD(result.Intrinsic))
	output.Printf("  Time Value: %s\n", utils.FormatUSD(result.TimeValue))
	output.Println()
	output.Printf("  Delta: %8.4f\n", result.Delta)
	output.Printf("  Gamma: %8.4f\n", result.Gamma)
	output.Printf("  Theta: %8.4f /day\n", result.Theta)
	output.Printf("  Vega:  %8.4f\n", result.Vega)
	output.Printf("  Rho:   %8.4f\n", result.Rho)

	if result.FloorApplied {
		output.Println()
		output.Warning("American-exercise floor applied: closed-form value fell below intrinsic.")
	}

	output.Disclaimer()
}
