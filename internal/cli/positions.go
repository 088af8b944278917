package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"portfolio-hedger/internal/marketdata"
	"portfolio-hedger/internal/models"
	"portfolio-hedger/internal/tracker"
	"portfolio-hedger/pkg/utils"
)

func newPositionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Track held hedge positions",
		Long: `Maintain the local position book: valuation status, roll
suggestions for near-expiration puts, and the roll history log.

Positions live in a local SQLite database. Valuations and roll
suggestions are read-only; only add, close, and roll write.`,
	}

	cmd.AddCommand(newPositionsStatusCmd(app))
	cmd.AddCommand(newPositionsAddCmd(app))
	cmd.AddCommand(newPositionsCloseCmd(app))
	cmd.AddCommand(newPositionsRollCmd(app))
	cmd.AddCommand(newPositionsHistoryCmd(app))

	return cmd
}

func newPositionsStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Value active positions against a market snapshot",
		Example: `  hedger positions status --snapshot quotes.json
  hedger positions status --snapshot quotes.json --as-of 2026-03-02 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

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

			st, err := app.OpenStore()
			if err != nil {
				output.Error("Opening position store: %v", err)
				return err
			}
			positions, err := st.ActivePositions(cmd.Context())
			if err != nil {
				output.Error("Reading positions: %v", err)
				return err
			}

			report := tracker.Status(positions, snap, app.Config.Market, asOf,
				app.Config.Hedging.NearExpiryDTE)

			if output.IsJSON() {
				return output.JSON(report)
			}

			displayStatus(output, report)
			return nil
		},
	}

	cmd.Flags().String("snapshot", "", "Path to market snapshot JSON")
	cmd.Flags().String("as-of", "", "Valuation date (YYYY-MM-DD, default today)")

	return cmd
}

func newPositionsAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new hedge position",
		Example: `  hedger positions add --underlying QQQ --strike 450 --expiry 2026-06-19 --contracts 2 --premium 8.40
  hedger positions add --instrument inverse_fund --underlying SQQQ --nav 9.85 --shares 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			instrument, _ := cmd.Flags().GetString("instrument")
			underlying, _ := cmd.Flags().GetString("underlying")
			strike, _ := cmd.Flags().GetFloat64("strike")
			expiryStr, _ := cmd.Flags().GetString("expiry")
			contracts, _ := cmd.Flags().GetInt("contracts")
			premium, _ := cmd.Flags().GetFloat64("premium")
			nav, _ := cmd.Flags().GetFloat64("nav")
			shares, _ := cmd.Flags().GetFloat64("shares")

			asOf, err := asOfDate(cmd)
			if err != nil {
				output.Error("Invalid --as-of date. Use YYYY-MM-DD")
				return err
			}

			pos := models.HedgePosition{
				Instrument: models.InstrumentType(instrument),
				Underlying: strings.ToUpper(underlying),
				EntryDate:  asOf,
			}

			switch pos.Instrument {
			case models.InstrumentPut:
				expiry, err := time.Parse("2006-01-02", expiryStr)
				if err != nil {
					output.Error("Invalid expiry format. Use YYYY-MM-DD")
					return err
				}
				pos.Strike = strike
				pos.Expiry = expiry
				pos.Contracts = contracts
				pos.EntryPremium = premium
			case models.InstrumentInverseFund:
				pos.EntryNAV = nav
				pos.Shares = shares
			default:
				err := fmt.Errorf("unknown instrument %q: use put or inverse_fund", instrument)
				output.Error("%v", err)
				return err
			}

			st, err := app.OpenStore()
			if err != nil {
				output.Error("Opening position store: %v", err)
				return err
			}
			id, err := st.AddPosition(cmd.Context(), pos)
			if err != nil {
				output.Error("Adding position: %v", err)
				return err
			}
			pos.ID = id

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"id": id, "position": pos})
			}
			output.Success("Added %s (#%d)", pos.Key(), id)
			return nil
		},
	}

	cmd.Flags().String("instrument", "put", "Instrument: put or inverse_fund")
	cmd.Flags().String("underlying", "", "Underlying or fund ticker")
	cmd.Flags().Float64("strike", 0, "Strike price (put)")
	cmd.Flags().String("expiry", "", "Expiration date YYYY-MM-DD (put)")
	cmd.Flags().Int("contracts", 1, "Number of contracts (put)")
	cmd.Flags().Float64("premium", 0, "Entry premium per share (put)")
	cmd.Flags().Float64("nav", 0, "Entry NAV per share (inverse fund)")
	cmd.Flags().Float64("shares", 0, "Share count (inverse fund)")
	cmd.Flags().String("as-of", "", "Entry date (YYYY-MM-DD, default today)")
	cmd.MarkFlagRequired("underlying")

	return cmd
}

func newPositionsCloseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "close <id>",
		Short:   "Close a position",
		Args:    cobra.ExactArgs(1),
		Example: `  hedger positions close 3 --reason "took profit after drawdown"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var id int64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				output.Error("Invalid position id %q", args[0])
				return err
			}
			reason, _ := cmd.Flags().GetString("reason")

			st, err := app.OpenStore()
			if err != nil {
				output.Error("Opening position store: %v", err)
				return err
			}
			if err := st.ClosePosition(cmd.Context(), id, time.Now(), reason); err != nil {
				output.Error("Closing position: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"closed": id})
			}
			output.Success("Closed position #%d", id)
			return nil
		},
	}

	cmd.Flags().String("reason", "manual close", "Reason recorded with the close")

	return cmd
}

func newPositionsRollCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roll",
		Short: "Suggest rolls for near-expiration puts",
		Long: `Scan active puts at or below the DTE threshold and suggest a
replacement from an options-chain snapshot. With --execute, the first
suggestion is applied: old position closed, new one opened, and the roll
appended to the history log in a single transaction.`,
		Example: `  hedger positions roll --chains chains.json
  hedger positions roll --chains chains.json --execute --reason "monthly roll"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			chainsPath, _ := cmd.Flags().GetString("chains")
			threshold, _ := cmd.Flags().GetInt("dte-threshold")
			execute, _ := cmd.Flags().GetBool("execute")
			reason, _ := cmd.Flags().GetString("reason")

			asOf, err := asOfDate(cmd)
			if err != nil {
				output.Error("Invalid --as-of date. Use YYYY-MM-DD")
				return err
			}
			if threshold <= 0 {
				threshold = app.Config.Hedging.NearExpiryDTE
			}

			chains, err := marketdata.LoadChains(chainsPath)
			if err != nil {
				output.Error("Loading chains: %v", err)
				return err
			}

			st, err := app.OpenStore()
			if err != nil {
				output.Error("Opening position store: %v", err)
				return err
			}
			positions, err := st.ActivePositions(cmd.Context())
			if err != nil {
				output.Error("Reading positions: %v", err)
				return err
			}

			report := tracker.SuggestRoll(positions, chains, app.Config.Hedging,
				app.Config.Market, asOf, threshold)

			if execute && len(report.Suggestions) > 0 {
				s := report.Suggestions[0]
				replacement := models.HedgePosition{
					Instrument:   models.InstrumentPut,
					Underlying:   s.Position.Underlying,
					EntryDate:    asOf,
					Strike:       s.Candidate.Strike,
					Expiry:       s.Candidate.Expiry,
					Contracts:    s.Position.Contracts,
					EntryPremium: s.NewPremium,
				}
				tr := &tracker.Tracker{Store: st, Logger: app.Logger}
				if err := tr.LogRoll(cmd.Context(), s.Position, replacement,
					s.NetCost, reason, time.Now()); err != nil {
					output.Error("Executing roll: %v", err)
					return err
				}
				if !output.IsJSON() {
					output.Success("Rolled %s -> %s (net cost %s)",
						s.Position.Key(), replacement.Key(), utils.FormatUSD(s.NetCost))
				}
			}

			if output.IsJSON() {
				return output.JSON(report)
			}

			displayRollReport(output, report)
			return nil
		},
	}

	cmd.Flags().String("chains", "", "Path to options-chain snapshot JSON")
	cmd.Flags().Int("dte-threshold", 0, "Roll puts at or below this DTE (default from config)")
	cmd.Flags().Bool("execute", false, "Apply the first suggestion to the position book")
	cmd.Flags().String("reason", "near expiration", "Reason recorded with an executed roll")
	cmd.Flags().String("as-of", "", "Valuation date (YYYY-MM-DD, default today)")
	cmd.MarkFlagRequired("chains")

	return cmd
}

func newPositionsHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the roll history log",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			limit, _ := cmd.Flags().GetInt("limit")

			st, err := app.OpenStore()
			if err != nil {
				output.Error("Opening position store: %v", err)
				return err
			}
			records, err := st.RollHistory(cmd.Context(), limit)
			if err != nil {
				output.Error("Reading roll history: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"rolls": records})
			}

			if len(records) == 0 {
				output.Info("No rolls recorded.")
				return nil
			}

			output.Bold("Roll History")
			table := NewTable(output, "Date", "Closed", "Opened", "Net Cost", "Reason")
			for _, r := range records {
				table.AddRow(
					utils.FormatDate(r.RolledAt),
					r.ClosedSummary,
					r.OpenedSummary,
					utils.FormatUSD(r.NetCost),
					r.Reason,
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum entries to show")

	return cmd
}

func displayStatus(output *Output, report tracker.StatusReport) {
	output.Bold("Position Status - %s", utils.FormatDate(report.AsOf))

	if len(report.Positions) == 0 {
		output.Info("No active positions.")
		return
	}

	table := NewTable(output, "Position", "State", "DTE", "Value", "P/L")
	for _, ps := range report.Positions {
		dte := "-"
		if ps.DTE >= 0 {
			dte = fmt.Sprintf("%d", ps.DTE)
		}
		if ps.NoData {
			table.AddRow(ps.Position.Key(), stateLabel(output, ps.State), dte,
				output.Yellow("no data"), "-")
			continue
		}
		table.AddRow(
			ps.Position.Key(),
			stateLabel(output, ps.State),
			dte,
			utils.FormatUSD(ps.CurrentValue),
			output.PnL(utils.FormatPnL(ps.UnrealizedPL), ps.UnrealizedPL),
		)
	}
	table.Render()

	for _, ps := range report.Positions {
		if ps.NoData {
			output.Dim("  %s: %s", ps.Position.Key(), ps.Reason)
		}
	}
	output.Disclaimer()
}

func displayRollReport(output *Output, report tracker.RollReport) {
	output.Bold("Roll Suggestions - %s", utils.FormatDate(report.AsOf))

	if len(report.Suggestions) == 0 {
		output.Info("No positions at or below the roll threshold.")
	}

	for _, s := range report.Suggestions {
		output.Println()
		output.Printf("  %s -> %s %s %s\n",
			s.Position.Key(), s.Candidate.Underlying,
			utils.FormatStrike(s.Candidate.Strike)+"P",
			utils.FormatDate(s.Candidate.Expiry))
		output.Printf("    New premium:  %s/share\n", utils.FormatUSD(s.NewPremium))
		output.Printf("    Old residual: %s/share\n", utils.FormatUSD(s.OldResidual))
		output.Printf("    Cost to roll: %s/share  (net %s)\n",
			utils.FormatUSD(s.CostToRoll), utils.FormatUSD(s.NetCost))
	}

	for _, sk := range report.Skipped {
		output.Println()
		output.Warning("Skipped %s: %s", sk.Key, sk.Reason)
	}

	output.Disclaimer()
}

func stateLabel(output *Output, state models.PositionState) string {
	switch state {
	case models.StateNearExpiration:
		return output.Yellow(string(state))
	case models.StateExpired:
		return output.Red(string(state))
	default:
		return string(state)
	}
}
